package memory

import "log/slog"

const titleLength = 16

// header field offsets, see https://gbdev.io/pandocs/The_Cartridge_Header.html
const (
	titleAddress         = 0x134
	cgbFlagAddress       = 0x143
	cartridgeTypeAddress = 0x147
	romSizeAddress       = 0x148
	ramSizeAddress       = 0x149
)

// MBCType identifies which bank-controller family a cartridge uses.
type MBCType uint8

const (
	NoMBCType MBCType = iota
	MBC1Type
	MBC2Type
	MBC3Type
)

// Cartridge wraps a ROM image and the header fields needed to build the
// right MBC and size its external RAM.
type Cartridge struct {
	data []byte

	title        string
	mbcType      MBCType
	hasBattery   bool
	hasRTC       bool
	hasRumble    bool
	romBankCount int
	ramBankCount uint8
	cgbSupported bool
}

// NewCartridge creates an empty cartridge, useful only for booting without a ROM.
func NewCartridge() *Cartridge {
	return &Cartridge{
		data:         make([]byte, 0x8000),
		mbcType:      NoMBCType,
		romBankCount: 2,
	}
}

// NewCartridgeWithData parses a ROM image's header and builds a Cartridge
// describing it. Unknown cartridge types fall back to NoMBC with a warning.
func NewCartridgeWithData(bytes []byte) *Cartridge {
	cart := &Cartridge{
		data: make([]byte, len(bytes)),
	}
	copy(cart.data, bytes)

	if len(bytes) > titleAddress+titleLength {
		cart.title = cleanGameboyTitle(bytes[titleAddress : titleAddress+titleLength])
	}
	if len(bytes) > cgbFlagAddress {
		flag := bytes[cgbFlagAddress]
		cart.cgbSupported = flag == 0x80 || flag == 0xC0
	}

	cart.romBankCount = decodeROMBankCount(readHeaderByte(bytes, romSizeAddress))
	cart.ramBankCount = decodeRAMBankCount(readHeaderByte(bytes, ramSizeAddress))
	cart.mbcType, cart.hasBattery, cart.hasRTC, cart.hasRumble = decodeCartridgeType(readHeaderByte(bytes, cartridgeTypeAddress))

	slog.Info("loaded cartridge", "title", cart.title, "mbc", cart.mbcType,
		"romBanks", cart.romBankCount, "ramBanks", cart.ramBankCount, "cgb", cart.cgbSupported)

	return cart
}

func readHeaderByte(data []byte, addr int) byte {
	if addr >= len(data) {
		return 0
	}
	return data[addr]
}

// decodeCartridgeType maps header byte 0x147 to an MBC family. Unknown
// values are treated as NoMBC.
func decodeCartridgeType(b byte) (t MBCType, battery bool, rtc bool, rumble bool) {
	switch b {
	case 0x00:
		return NoMBCType, false, false, false
	case 0x01, 0x02:
		return MBC1Type, false, false, false
	case 0x03:
		return MBC1Type, true, false, false
	case 0x05:
		return MBC2Type, false, false, false
	case 0x06:
		return MBC2Type, true, false, false
	case 0x0F, 0x10:
		return MBC3Type, true, true, false
	case 0x11, 0x12:
		return MBC3Type, false, false, false
	case 0x13:
		return MBC3Type, true, false, false
	default:
		slog.Warn("unknown cartridge type, falling back to NoMBC", "type", b)
		return NoMBCType, false, false, false
	}
}

// decodeROMBankCount maps header byte 0x148 to a bank count.
func decodeROMBankCount(b byte) int {
	switch b {
	case 0x52:
		return 72
	case 0x53:
		return 80
	case 0x54:
		return 96
	default:
		if b <= 0x08 {
			return 2 << b
		}
		slog.Warn("unknown ROM size byte, defaulting to 2 banks", "value", b)
		return 2
	}
}

// decodeRAMBankCount maps header byte 0x149 to a count of 8KB RAM banks.
func decodeRAMBankCount(b byte) uint8 {
	switch b {
	case 0x00:
		return 0
	case 0x01:
		return 1 // unofficial: 2KB, treated as a partial bank
	case 0x02:
		return 1
	case 0x03:
		return 4
	case 0x04:
		return 16
	case 0x05:
		return 8
	default:
		return 0
	}
}

// Data returns the raw ROM bytes backing this cartridge.
func (c *Cartridge) Data() []byte { return c.data }

// Title returns the cleaned cartridge title from the header.
func (c *Cartridge) Title() string { return c.title }

// MBCType returns the detected bank-controller family.
func (c *Cartridge) MBCType() MBCType { return c.mbcType }

// HasBattery reports whether save RAM should be persisted across runs.
func (c *Cartridge) HasBattery() bool { return c.hasBattery }

// HasRTC reports whether this cartridge's MBC carries a real-time clock (MBC3).
func (c *Cartridge) HasRTC() bool { return c.hasRTC }

// HasRumble reports whether this cartridge carries a rumble motor.
func (c *Cartridge) HasRumble() bool { return c.hasRumble }

// ROMBankCount returns the number of 16KB ROM banks on the cartridge.
func (c *Cartridge) ROMBankCount() int { return c.romBankCount }

// RAMBankCount returns the number of 8KB external RAM banks on the cartridge.
func (c *Cartridge) RAMBankCount() uint8 { return c.ramBankCount }

// CGBSupported reports whether the cartridge header advertises CGB support.
func (c *Cartridge) CGBSupported() bool { return c.cgbSupported }
