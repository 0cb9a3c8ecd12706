package cpu

import "github.com/valerio/go-jeebie/jeebie/bit"

// pushStack decrements sp twice, writing the high byte first so the final
// (lowest) address holds the low byte.
func (c *CPU) pushStack(r uint16) {
	c.sp--
	c.bus.Write(c.sp, bit.High(r))
	c.sp--
	c.bus.Write(c.sp, bit.Low(r))
}

func (c *CPU) popStack() uint16 {
	low := c.bus.Read(c.sp)
	c.sp++
	high := c.bus.Read(c.sp)
	c.sp++

	return bit.Combine(high, low)
}

// readImmediate reads the byte at pc and advances pc past it.
func (c *CPU) readImmediate() uint8 {
	value := c.bus.Read(c.pc)
	c.pc++
	return value
}

// readSignedImmediate reads a signed byte at pc and advances pc past it.
func (c *CPU) readSignedImmediate() int8 {
	return int8(c.readImmediate())
}

// readImmediateWord reads the 16 bit little-endian value at pc and advances
// pc past both bytes.
func (c *CPU) readImmediateWord() uint16 {
	low := c.readImmediate()
	high := c.readImmediate()
	return bit.Combine(high, low)
}

func (c *CPU) inc(r *uint8) {
	*r++
	value := *r

	c.setFlagToCondition(zeroFlag, value == 0)
	c.setFlagToCondition(halfCarryFlag, (value&0xF) == 0)
	c.resetFlag(subFlag)
}

func (c *CPU) dec(r *uint8) {
	*r--
	value := *r

	c.setFlagToCondition(zeroFlag, value == 0)
	c.setFlagToCondition(halfCarryFlag, (value&0xF) == 0xF)
	c.setFlag(subFlag)
}

// rlc rotates r left circularly. Register A never reflects the result in
// the zero flag: this is the one difference between the plain RLCA opcode
// and the CB-prefixed RLC r family, which share this helper.
func (c *CPU) rlc(r *uint8) {
	value := *r
	carry := value > 0x7F

	value = (value << 1) | (value >> 7)
	*r = value

	c.setFlagToCondition(carryFlag, carry)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	if r == &c.a {
		c.resetFlag(zeroFlag)
	} else {
		c.setFlagToCondition(zeroFlag, value == 0)
	}
}

func (c *CPU) rl(r *uint8) {
	value := *r
	oldCarry := c.flagToBit(carryFlag)
	carry := value > 0x7F

	value = (value << 1) | oldCarry
	*r = value

	c.setFlagToCondition(carryFlag, carry)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	if r == &c.a {
		c.resetFlag(zeroFlag)
	} else {
		c.setFlagToCondition(zeroFlag, value == 0)
	}
}

func (c *CPU) rrc(r *uint8) {
	value := *r
	carry := value&0x01 != 0

	value = (value >> 1) | ((value & 1) << 7)
	*r = value

	c.setFlagToCondition(carryFlag, carry)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	if r == &c.a {
		c.resetFlag(zeroFlag)
	} else {
		c.setFlagToCondition(zeroFlag, value == 0)
	}
}

func (c *CPU) rr(r *uint8) {
	value := *r
	oldCarry := c.flagToBit(carryFlag) << 7
	carry := value&0x01 != 0

	value = (value >> 1) | oldCarry
	*r = value

	c.setFlagToCondition(carryFlag, carry)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	if r == &c.a {
		c.resetFlag(zeroFlag)
	} else {
		c.setFlagToCondition(zeroFlag, value == 0)
	}
}

func (c *CPU) sla(r *uint8) {
	value := *r
	carry := value&0x80 != 0

	value <<= 1
	*r = value

	c.setFlagToCondition(carryFlag, carry)
	c.setFlagToCondition(zeroFlag, value == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
}

func (c *CPU) sra(r *uint8) {
	value := *r
	carry := value&0x01 != 0
	msb := value & 0x80

	value = (value >> 1) | msb
	*r = value

	c.setFlagToCondition(carryFlag, carry)
	c.setFlagToCondition(zeroFlag, value == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
}

func (c *CPU) srl(r *uint8) {
	value := *r
	carry := value&0x01 != 0

	value >>= 1
	*r = value

	c.setFlagToCondition(carryFlag, carry)
	c.setFlagToCondition(zeroFlag, value == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
}

func (c *CPU) swap(r *uint8) {
	value := *r
	value = (value << 4) | (value >> 4)
	*r = value

	c.setFlagToCondition(zeroFlag, value == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

func (c *CPU) bit(idx uint8, value uint8) {
	c.setFlagToCondition(zeroFlag, !bit.IsSet(idx, value))
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
}

func (c *CPU) set(idx uint8, r *uint8) {
	*r = bit.Set(idx, *r)
}

func (c *CPU) res(idx uint8, r *uint8) {
	*r = bit.Reset(idx, *r)
}

// flagToBit returns 1 if flag is set, 0 otherwise.
func (c *CPU) flagToBit(flag Flag) uint8 {
	if c.isSetFlag(flag) {
		return 1
	}
	return 0
}

// addToA adds value to register A, setting all relevant flags.
func (c *CPU) addToA(value uint8) {
	a := c.a
	result := a + value

	carry := (uint16(a) + uint16(value)) > 0xFF
	halfCarry := (a&0xF)+(value&0xF) > 0xF

	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(carryFlag, carry)
	c.setFlagToCondition(halfCarryFlag, halfCarry)

	c.a = result
}

// adc adds value and the carry flag to register A.
func (c *CPU) adc(value uint8) {
	a := c.a
	carry := c.flagToBit(carryFlag)
	result := uint16(a) + uint16(value) + uint16(carry)

	halfCarry := (a&0xF)+(value&0xF)+carry > 0xF

	c.a = uint8(result)

	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(carryFlag, result > 0xFF)
	c.setFlagToCondition(halfCarryFlag, halfCarry)
}

// addToHL adds reg to HL, setting relevant flags (zero flag is untouched).
func (c *CPU) addToHL(reg uint16) {
	hl := c.getHL()
	result := hl + reg

	carry := (uint32(hl) + uint32(reg)) > 0xFFFF
	halfCarry := (hl&0xFFF)+(reg&0xFFF) > 0xFFF

	c.resetFlag(subFlag)
	c.setFlagToCondition(carryFlag, carry)
	c.setFlagToCondition(halfCarryFlag, halfCarry)

	c.setHL(result)
}

// sub subtracts value from register A and sets all relevant flags.
func (c *CPU) sub(value uint8) {
	a := c.a
	c.a = a - value

	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(carryFlag, a < value)
	c.setFlagToCondition(halfCarryFlag, (a&0xF) < (value&0xF))
}

// sbc subtracts value and the carry flag from register A.
func (c *CPU) sbc(value uint8) {
	a := c.a
	carry := uint8(0)
	if c.isSetFlag(carryFlag) {
		carry = 1
	}

	result := int(a) - int(value) - int(carry)
	c.a = uint8(result)

	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(carryFlag, result < 0)
	c.setFlagToCondition(halfCarryFlag, (int(a)&0xF)-(int(value)&0xF)-int(carry) < 0)
}

// cp compares value against register A without storing the result.
func (c *CPU) cp(value uint8) {
	a := c.a

	c.setFlagToCondition(zeroFlag, a == value)
	c.setFlag(subFlag)
	c.setFlagToCondition(carryFlag, a < value)
	c.setFlagToCondition(halfCarryFlag, (a&0xF) < (value&0xF))
}

func (c *CPU) and(value uint8) {
	c.a &= value
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

func (c *CPU) or(value uint8) {
	c.a |= value
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.resetFlag(carryFlag)
	c.resetFlag(halfCarryFlag)
}

func (c *CPU) xor(value uint8) {
	c.a ^= value
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.resetFlag(carryFlag)
	c.resetFlag(halfCarryFlag)
}

// daa adjusts A into packed BCD form after an 8 bit add or subtract.
func (c *CPU) daa() {
	a := c.a
	sub := c.isSetFlag(subFlag)
	half := c.isSetFlag(halfCarryFlag)
	carry := c.isSetFlag(carryFlag)

	adjust := uint8(0)
	newCarry := carry

	if !sub {
		if half || (a&0x0F) > 0x09 {
			adjust |= 0x06
		}
		if carry || a > 0x99 {
			adjust |= 0x60
			newCarry = true
		}
		a += adjust
	} else {
		if half {
			adjust |= 0x06
		}
		if carry {
			adjust |= 0x60
		}
		a -= adjust
	}

	c.a = a
	c.setFlagToCondition(zeroFlag, a == 0)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, newCarry)
}

// jr performs a relative jump using the signed immediate byte at pc.
func (c *CPU) jr() {
	offset := int32(c.readSignedImmediate())
	c.pc = uint16(int32(c.pc) + offset)
}

// jp performs an absolute jump using the 16 bit immediate word at pc.
func (c *CPU) jp() {
	c.pc = c.readImmediateWord()
}

// call pushes the return address (right after the immediate word) and
// jumps to the 16 bit immediate word at pc.
func (c *CPU) call() {
	target := c.readImmediateWord()
	c.pushStack(c.pc)
	c.pc = target
}

// ret pops the return address off the stack into pc.
func (c *CPU) ret() {
	c.pc = c.popStack()
}

// rst pushes pc and jumps to the fixed vector addr.
func (c *CPU) rst(vector uint16) {
	c.pushStack(c.pc)
	c.pc = vector
}
