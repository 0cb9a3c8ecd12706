// Package interrupt resolves pending interrupts by hardware priority.
//
// It holds no state of its own: IE and IF live in the MMU's I/O space, and
// the CPU is responsible for the actual service sequence (push PC, clear
// IME, jump to vector). This package only answers "which one, if any".
package interrupt

import "github.com/valerio/go-jeebie/jeebie/addr"

// Source identifies one of the five interrupt lines, ordered by priority
// (lowest value wins when more than one is pending).
type Source uint8

const (
	VBlank Source = iota
	LCDStat
	Timer
	Serial
	Joypad
)

// Vector returns the address the CPU jumps to when servicing this interrupt.
func (s Source) Vector() uint16 {
	switch s {
	case VBlank:
		return 0x40
	case LCDStat:
		return 0x48
	case Timer:
		return 0x50
	case Serial:
		return 0x58
	case Joypad:
		return 0x60
	default:
		panic("interrupt: invalid source")
	}
}

// Bit returns the bit position of this interrupt in IE/IF.
func (s Source) Bit() uint8 {
	return uint8(s)
}

// sources in priority order, lowest bit index first.
var sources = [...]Source{VBlank, LCDStat, Timer, Serial, Joypad}

// Pending returns the highest-priority interrupt that is both enabled (IE)
// and requested (IF), or ok=false if none is.
func Pending(ie, ifReg byte) (source Source, ok bool) {
	masked := ie & ifReg & 0x1F
	if masked == 0 {
		return 0, false
	}
	for _, s := range sources {
		if masked&(1<<s.Bit()) != 0 {
			return s, true
		}
	}
	panic("interrupt: masked bits set but no source matched")
}

// Any reports whether any enabled interrupt is currently requested, without
// identifying which. Used by HALT to decide whether to wake up.
func Any(ie, ifReg byte) bool {
	return ie&ifReg&0x1F != 0
}

// RequestBit returns the IF bit position that addr.Interrupt corresponds to.
func RequestBit(i addr.Interrupt) uint8 {
	switch i {
	case addr.VBlankInterrupt:
		return 0
	case addr.LCDSTATInterrupt:
		return 1
	case addr.TimerInterrupt:
		return 2
	case addr.SerialInterrupt:
		return 3
	case addr.JoypadInterrupt:
		return 4
	default:
		panic("interrupt: unknown addr.Interrupt")
	}
}
