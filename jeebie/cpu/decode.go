package cpu

// Decode peeks at the byte(s) at pc without advancing it, records the full
// opcode (CB-prefixed opcodes are packed as 0xCBxx) in currentOpcode, and
// returns the function that executes it.
func Decode(c *CPU) Opcode {
	first := c.bus.Read(c.pc)

	if first == 0xCB {
		second := c.bus.Read(c.pc + 1)
		c.currentOpcode = 0xCB00 | uint16(second)
	} else {
		c.currentOpcode = uint16(first)
	}

	return decode(c.currentOpcode)
}
