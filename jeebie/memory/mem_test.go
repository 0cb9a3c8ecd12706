package memory

import (
	"testing"

	"github.com/valerio/go-jeebie/jeebie/addr"
)

func TestMMU_WRAMReadWrite(t *testing.T) {
	mmu := New()

	mmu.Write(0xC000, 0x42)
	if got := mmu.Read(0xC000); got != 0x42 {
		t.Errorf("Read(0xC000) = 0x%02X; want 0x42", got)
	}
}

func TestMMU_EchoRAMMirrorsWRAM(t *testing.T) {
	mmu := New()

	mmu.Write(0xC050, 0x7A)
	if got := mmu.Read(0xE050); got != 0x7A {
		t.Errorf("Read(0xE050) = 0x%02X; want 0x7A (mirrored from 0xC050)", got)
	}

	mmu.Write(0xE060, 0x55)
	if got := mmu.Read(0xC060); got != 0x55 {
		t.Errorf("Read(0xC060) = 0x%02X; want 0x55 (written via echo)", got)
	}
}

func TestMMU_HRAMReadWrite(t *testing.T) {
	mmu := New()

	mmu.Write(0xFF90, 0x11)
	if got := mmu.Read(0xFF90); got != 0x11 {
		t.Errorf("Read(0xFF90) = 0x%02X; want 0x11", got)
	}
}

func TestMMU_VRAMGatedDuringPPUModeVRAM(t *testing.T) {
	mmu := New()

	mmu.Write(0x8000, 0x99)
	mmu.SetPPUMode(PPUModeVRAM)

	if got := mmu.Read(0x8000); got != 0xFF {
		t.Errorf("Read(0x8000) during VRAM mode = 0x%02X; want 0xFF", got)
	}

	// Writes during VRAM mode are dropped entirely.
	mmu.Write(0x8000, 0x11)
	mmu.SetPPUMode(PPUModeHBlank)
	if got := mmu.Read(0x8000); got != 0x99 {
		t.Errorf("Read(0x8000) after blocked write = 0x%02X; want unchanged 0x99", got)
	}
}

func TestMMU_OAMGatedDuringOAMAndVRAMModes(t *testing.T) {
	tests := []struct {
		name string
		mode uint8
		want uint8
	}{
		{"HBlank allows access", PPUModeHBlank, 0x42},
		{"VBlank allows access", PPUModeVBlank, 0x42},
		{"OAM mode blocks access", PPUModeOAM, 0xFF},
		{"VRAM mode blocks access", PPUModeVRAM, 0xFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mmu := New()
			mmu.SetPPUMode(PPUModeHBlank)
			mmu.Write(0xFE10, 0x42)

			mmu.SetPPUMode(tt.mode)
			if got := mmu.Read(0xFE10); got != tt.want {
				t.Errorf("Read(0xFE10) during mode %d = 0x%02X; want 0x%02X", tt.mode, got, tt.want)
			}
		})
	}
}

func TestMMU_RequestInterruptSetsIFBit(t *testing.T) {
	mmu := New()

	mmu.RequestInterrupt(addr.TimerInterrupt)
	if got := mmu.Read(addr.IF); got&0x04 == 0 {
		t.Errorf("Read(addr.IF) = 0x%02X; expected timer bit (0x04) set", got)
	}

	mmu.RequestInterrupt(addr.VBlankInterrupt)
	if got := mmu.Read(addr.IF); got != 0x05 {
		t.Errorf("Read(addr.IF) = 0x%02X; want 0x05 (vblank|timer)", got)
	}
}

func TestMMU_IFRegisterRoundTrips(t *testing.T) {
	mmu := New()

	mmu.Write(addr.IF, 0x1F)
	mmu.Write(addr.IF, 0x1E)

	if got := mmu.Read(addr.IF); got != 0x1E {
		t.Errorf("Read(addr.IF) = 0x%02X; want 0x1E", got)
	}
}

func TestMMU_DMATransferCopiesToOAM(t *testing.T) {
	mmu := New()

	for i := uint16(0); i < 160; i++ {
		mmu.Write(0xC000+i, uint8(i))
	}

	mmu.Write(addr.DMA, 0xC0)

	for i := uint16(0); i < 160; i++ {
		want := uint8(i)
		if got := mmu.Read(0xFE00 + i); got != want {
			t.Errorf("Read(0x%04X) after DMA = 0x%02X; want 0x%02X", 0xFE00+i, got, want)
		}
	}
}

func TestMMU_JoypadSelectionAndPress(t *testing.T) {
	mmu := New()

	// Select d-pad (bit 4 low), no press yet: all low nibble bits high.
	mmu.Write(addr.P1, 0b11101111)
	if got := mmu.Read(addr.P1); got&0x0F != 0x0F {
		t.Errorf("Read(addr.P1) = 0x%02X; want low nibble all 1 (no keys pressed)", got)
	}

	mmu.HandleKeyPress(JoypadRight)
	if got := mmu.Read(addr.P1); got&0x01 != 0 {
		t.Errorf("Read(addr.P1) after pressing right = 0x%02X; want bit 0 cleared", got)
	}

	mmu.HandleKeyRelease(JoypadRight)
	if got := mmu.Read(addr.P1); got&0x01 == 0 {
		t.Errorf("Read(addr.P1) after releasing right = 0x%02X; want bit 0 set", got)
	}
}

func TestMMU_JoypadInterruptOnKeyPress(t *testing.T) {
	mmu := New()

	mmu.Write(addr.IF, 0x00)
	mmu.HandleKeyPress(JoypadA)

	if got := mmu.Read(addr.IF); got&0x10 == 0 {
		t.Errorf("Read(addr.IF) = 0x%02X; expected joypad bit (0x10) set after key press", got)
	}
}

func TestMMU_NoCartridgeReadsReturnHighImpedance(t *testing.T) {
	mmu := New()
	mmu.mbc = nil

	if got := mmu.Read(0x0100); got != 0xFF {
		t.Errorf("Read(0x0100) with no MBC = 0x%02X; want 0xFF", got)
	}
}

func TestMMU_DIVAdvancesWithTick(t *testing.T) {
	mmu := New()
	mmu.SetTimerSeed(0)

	before := mmu.Read(addr.DIV)
	if before != 0 {
		t.Fatalf("Read(addr.DIV) after seeding with 0 = 0x%02X; want 0x00", before)
	}

	// DIV is the upper 8 bits of a 16-bit counter; 256 T-cycles should
	// advance it by exactly 1.
	mmu.Tick(256)

	if got := mmu.Read(addr.DIV); got != 1 {
		t.Errorf("Read(addr.DIV) after Tick(256) = 0x%02X; want 0x01", got)
	}

	// Many more ticks should keep advancing it, not get stuck.
	for range 300 {
		mmu.Tick(256)
	}

	if got := mmu.Read(addr.DIV); got == 1 {
		t.Errorf("Read(addr.DIV) after repeated ticking is still 0x01; DIV is not advancing")
	}
}

func TestMMU_WriteToDIVResetsIt(t *testing.T) {
	mmu := New()
	mmu.SetTimerSeed(0)
	mmu.Tick(256 * 10)

	if got := mmu.Read(addr.DIV); got == 0 {
		t.Fatalf("Read(addr.DIV) after ticking = 0x00; test setup didn't advance DIV")
	}

	// Real hardware: any write to DIV, regardless of value, resets it to 0.
	mmu.Write(addr.DIV, 0xFF)

	if got := mmu.Read(addr.DIV); got != 0 {
		t.Errorf("Read(addr.DIV) after writing to it = 0x%02X; want 0x00 (any write resets DIV)", got)
	}
}
