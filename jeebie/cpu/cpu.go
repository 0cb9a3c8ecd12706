package cpu

import (
	"github.com/valerio/go-jeebie/jeebie/addr"
	"github.com/valerio/go-jeebie/jeebie/bit"
	"github.com/valerio/go-jeebie/jeebie/interrupt"
	"github.com/valerio/go-jeebie/jeebie/memory"
)

// Flag is one of the 4 possible flags used in the flag register (low byte of AF).
type Flag uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

// CPU is the main struct holding Sharp LR35902 state.
type CPU struct {
	bus *memory.MMU

	a, f uint8
	b, c uint8
	d, e uint8
	h, l uint8

	sp uint16
	pc uint16

	// interruptsEnabled mirrors the IME flip-flop. eiPending models EI's
	// one-instruction delay: it is promoted to interruptsEnabled at the
	// start of the Tick after EI executes.
	interruptsEnabled bool
	eiPending         bool

	halted  bool
	haltBug bool
	stopped bool

	currentOpcode uint16
	cycles        uint64
}

// New returns a CPU wired to bus, initialized to the state the hardware is
// in right after the boot ROM hands off control.
func New(bus *memory.MMU) *CPU {
	return &CPU{
		bus: bus,
		a:   0x01, f: 0xB0,
		b: 0x00, c: 0x13,
		d: 0x00, e: 0xD8,
		h: 0x01, l: 0x4D,
		sp: 0xFFFE,
		pc: 0x100,
	}
}

// Tick executes a single instruction (or a halted no-op step) and returns
// the number of T-cycles it took.
func (c *CPU) Tick() int {
	if c.eiPending {
		c.eiPending = false
		c.interruptsEnabled = true
	}

	cyclesBeforeInterrupt := c.cycles
	interruptPending := c.handleInterrupts()
	if c.halted && interruptPending {
		c.halted = false
		if !c.interruptsEnabled {
			c.haltBug = true
		}
	}

	if dispatched := c.cycles - cyclesBeforeInterrupt; dispatched > 0 {
		// Interrupt dispatch (push pc, jump to vector) is its own bus
		// transaction; the ISR's first instruction is fetched on the
		// next Tick, same as real hardware.
		return int(dispatched)
	}

	if c.halted {
		c.cycles += 4
		return 4
	}

	opcode := Decode(c)

	if c.haltBug {
		// The byte right after HALT was already fetched but PC fails to
		// advance, so the next Decode reads it again.
		c.haltBug = false
	} else {
		c.advancePC()
	}

	cycles := opcode(c)
	c.cycles += uint64(cycles)

	return cycles
}

// GetPC returns the current program counter.
func (c *CPU) GetPC() uint16 { return c.pc }

// GetSP returns the current stack pointer.
func (c *CPU) GetSP() uint16 { return c.sp }

// GetA, GetF, GetB, GetC, GetD, GetE, GetH, GetL expose the individual
// 8-bit registers, used by debug/disassembly tooling.
func (c *CPU) GetA() uint8 { return c.a }
func (c *CPU) GetF() uint8 { return c.f }
func (c *CPU) GetB() uint8 { return c.b }
func (c *CPU) GetC() uint8 { return c.c }
func (c *CPU) GetD() uint8 { return c.d }
func (c *CPU) GetE() uint8 { return c.e }
func (c *CPU) GetH() uint8 { return c.h }
func (c *CPU) GetL() uint8 { return c.l }

// GetCycles returns the total T-cycles executed since the CPU was created.
func (c *CPU) GetCycles() uint64 { return c.cycles }

// IME reports whether the interrupt master enable flip-flop is currently set.
func (c *CPU) IME() bool { return c.interruptsEnabled }

// GetFlagString renders the Z/N/H/C flags as a 4-character string, '-' for unset.
func (c *CPU) GetFlagString() string {
	flags := [4]byte{'-', '-', '-', '-'}
	if c.isSetFlag(zeroFlag) {
		flags[0] = 'Z'
	}
	if c.isSetFlag(subFlag) {
		flags[1] = 'N'
	}
	if c.isSetFlag(halfCarryFlag) {
		flags[2] = 'H'
	}
	if c.isSetFlag(carryFlag) {
		flags[3] = 'C'
	}
	return string(flags[:])
}

// advancePC moves pc past the opcode byte(s) that were just decoded.
func (c *CPU) advancePC() {
	if (c.currentOpcode & 0xCB00) == 0xCB00 {
		c.pc += 2
	} else {
		c.pc++
	}
}

func (c *CPU) setFlag(flag Flag) {
	c.f |= uint8(flag)
}

func (c *CPU) resetFlag(flag Flag) {
	c.f &^= uint8(flag)
}

func (c *CPU) isSetFlag(flag Flag) bool {
	return c.f&uint8(flag) != 0
}

func (c *CPU) setFlagToCondition(flag Flag, condition bool) {
	if condition {
		c.setFlag(flag)
	} else {
		c.resetFlag(flag)
	}
}

func (c *CPU) getAF() uint16 { return uint16(c.a)<<8 | uint16(c.f&0xF0) }
func (c *CPU) getBC() uint16 { return uint16(c.b)<<8 | uint16(c.c) }
func (c *CPU) getDE() uint16 { return uint16(c.d)<<8 | uint16(c.e) }
func (c *CPU) getHL() uint16 { return uint16(c.h)<<8 | uint16(c.l) }

func (c *CPU) setAF(v uint16) {
	c.a = uint8(v >> 8)
	c.f = uint8(v) & 0xF0
}
func (c *CPU) setBC(v uint16) {
	c.b = uint8(v >> 8)
	c.c = uint8(v)
}
func (c *CPU) setDE(v uint16) {
	c.d = uint8(v >> 8)
	c.e = uint8(v)
}
func (c *CPU) setHL(v uint16) {
	c.h = uint8(v >> 8)
	c.l = uint8(v)
}

// handleInterrupts reports whether any enabled interrupt is currently
// requested, and services the highest-priority one if IME is set.
func (c *CPU) handleInterrupts() bool {
	ie := c.bus.Read(addr.IE)
	ifReg := c.bus.Read(addr.IF)

	pending := interrupt.Any(ie, ifReg)
	if !pending || !c.interruptsEnabled {
		return pending
	}

	source, ok := interrupt.Pending(ie, ifReg)
	if !ok {
		return pending
	}

	c.interruptsEnabled = false
	c.bus.Write(addr.IF, bit.Reset(source.Bit(), ifReg))
	c.pushStack(c.pc)
	c.pc = source.Vector()

	c.cycles += 20

	return pending
}
