package jeebie

import (
	"fmt"
	"io/ioutil"
	"log/slog"
	"sync"

	"github.com/valerio/go-jeebie/jeebie/addr"
	"github.com/valerio/go-jeebie/jeebie/cpu"
	"github.com/valerio/go-jeebie/jeebie/debug"
	"github.com/valerio/go-jeebie/jeebie/input/action"
	"github.com/valerio/go-jeebie/jeebie/memory"
	"github.com/valerio/go-jeebie/jeebie/timing"
	"github.com/valerio/go-jeebie/jeebie/video"
)

// DebuggerState represents the current debugger mode
type DebuggerState int

const (
	DebuggerRunning   DebuggerState = iota // Normal execution
	DebuggerPaused                         // Paused, waiting for commands
	DebuggerStep                           // Execute one instruction then pause
	DebuggerStepFrame                      // Execute one frame then pause
)

// DMG is the root struct and entry point for running the emulation of an
// original Game Boy (DMG model).
type DMG struct {
	cpu     *cpu.CPU
	gpu     *video.GPU
	mem     *memory.MMU
	limiter timing.Limiter

	// Debugger state
	debuggerState    DebuggerState
	debuggerMutex    sync.RWMutex
	stepRequested    bool
	frameRequested   bool
	instructionCount uint64
	frameCount       uint64
}

func (e *DMG) init(mem *memory.MMU) {
	e.cpu = cpu.New(mem)
	e.gpu = video.NewGpu(mem)
	e.mem = mem
	e.limiter = timing.NewNoOpLimiter()

	mem.SetTimerSeed(0xABCC)
}

// New creates a new emulator instance
func New() *DMG {
	e := &DMG{}
	e.init(memory.NewWithCartridge(memory.NewCartridge()))

	return e
}

// NewWithFile creates a new emulator instance and loads the file specified into it.
func NewWithFile(path string) (*DMG, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	slog.Debug("Loaded ROM data", "size", len(data))

	e := &DMG{}
	e.init(memory.NewWithCartridge(memory.NewCartridgeWithData(data)))

	return e, nil
}

func (e *DMG) RunUntilFrame() error {
	e.debuggerMutex.RLock()
	state := e.debuggerState
	e.debuggerMutex.RUnlock()

	// Handle paused state - don't execute anything
	if state == DebuggerPaused {
		return nil
	}

	// Handle step instruction - execute one instruction then pause
	if state == DebuggerStep {
		e.debuggerMutex.Lock()
		if e.stepRequested {
			e.stepRequested = false
			e.debuggerMutex.Unlock()

			// Execute one CPU instruction
			oldPC := e.cpu.GetPC()
			cycles := e.cpu.Tick()
			e.mem.Tick(cycles)
			e.gpu.Tick(cycles)
			e.instructionCount++

			// Log the executed instruction
			slog.Debug("Step executed", "pc", fmt.Sprintf("0x%04X", oldPC), "new_pc", fmt.Sprintf("0x%04X", e.cpu.GetPC()))

			// Pause after execution
			e.SetDebuggerState(DebuggerPaused)
		} else {
			e.debuggerMutex.Unlock()
		}
		return nil
	}

	// Handle step frame - execute one frame then pause
	if state == DebuggerStepFrame {
		e.debuggerMutex.Lock()
		frameRequested := e.frameRequested
		if frameRequested {
			e.frameRequested = false
		}
		e.debuggerMutex.Unlock()

		if frameRequested {
			// Execute one full frame
			total := 0
			for {
				cycles := e.cpu.Tick()
				e.mem.Tick(cycles)
				e.gpu.Tick(cycles)
				e.instructionCount++
				total += cycles

				if total >= 70224 {
					break
				}
			}
			e.frameCount++
			slog.Debug("Frame step completed", "frame", e.frameCount, "instructions", e.instructionCount)
			e.SetDebuggerState(DebuggerPaused)
		}
		return nil
	}

	// Normal execution (DebuggerRunning)
	total := 0
	for {
		cycles := e.cpu.Tick()
		e.mem.Tick(cycles)
		e.gpu.Tick(cycles)
		e.instructionCount++

		total += cycles

		if total >= 70224 {
			e.frameCount++
			// Log every 60 frames (once per second at 60 FPS) only when running
			if e.frameCount%60 == 0 {
				slog.Debug("Frame completed", "frame", e.frameCount, "pc", fmt.Sprintf("0x%04X", e.cpu.GetPC()))
			}
			e.limiter.WaitForNextFrame()
			return nil
		}
	}
}

func (e *DMG) GetCurrentFrame() *video.FrameBuffer {
	return e.gpu.GetFrameBuffer()
}

func (e *DMG) HandleKeyPress(key memory.JoypadKey) {
	e.mem.HandleKeyPress(key)
}

func (e *DMG) HandleKeyRelease(key memory.JoypadKey) {
	e.mem.HandleKeyRelease(key)
}

func (e *DMG) GetCPU() *cpu.CPU {
	return e.cpu
}

// Debugger control methods
func (e *DMG) SetDebuggerState(state DebuggerState) {
	e.debuggerMutex.Lock()
	defer e.debuggerMutex.Unlock()
	e.debuggerState = state
	slog.Debug("Debugger state changed", "state", state)
}

func (e *DMG) GetDebuggerState() DebuggerState {
	e.debuggerMutex.RLock()
	defer e.debuggerMutex.RUnlock()
	return e.debuggerState
}

func (e *DMG) DebuggerPause() {
	e.SetDebuggerState(DebuggerPaused)
	slog.Info("Emulator paused")
}

func (e *DMG) DebuggerResume() {
	e.SetDebuggerState(DebuggerRunning)
	slog.Info("Emulator resumed")
}

func (e *DMG) DebuggerStepInstruction() {
	e.debuggerMutex.Lock()
	defer e.debuggerMutex.Unlock()
	e.stepRequested = true
	e.debuggerState = DebuggerStep
	slog.Info("Step instruction requested")
}

func (e *DMG) DebuggerStepFrame() {
	e.debuggerMutex.Lock()
	defer e.debuggerMutex.Unlock()
	e.frameRequested = true
	e.debuggerState = DebuggerStepFrame
	slog.Info("Step frame requested")
}

func (e *DMG) GetInstructionCount() uint64 {
	return e.instructionCount
}

func (e *DMG) GetFrameCount() uint64 {
	return e.frameCount
}

func (e *DMG) GetMMU() *memory.MMU {
	return e.mem
}

// gbButtonKeys maps the hardware-input subset of action.Action to the
// joypad key the MMU understands.
var gbButtonKeys = map[action.Action]memory.JoypadKey{
	action.GBButtonA:      memory.JoypadA,
	action.GBButtonB:      memory.JoypadB,
	action.GBButtonStart:  memory.JoypadStart,
	action.GBButtonSelect: memory.JoypadSelect,
	action.GBDPadUp:       memory.JoypadUp,
	action.GBDPadDown:     memory.JoypadDown,
	action.GBDPadLeft:     memory.JoypadLeft,
	action.GBDPadRight:    memory.JoypadRight,
}

// HandleAction routes game-input actions to the joypad; non-input actions
// (debug toggles, backend features) are ignored here, as they are handled
// by the backend layer.
func (e *DMG) HandleAction(act action.Action, pressed bool) {
	key, ok := gbButtonKeys[act]
	if !ok {
		return
	}
	if pressed {
		e.mem.HandleKeyPress(key)
	} else {
		e.mem.HandleKeyRelease(key)
	}
}

// SetFrameLimiter installs the timing strategy RunUntilFrame waits on
// after completing a frame. A nil limiter disables pacing.
func (e *DMG) SetFrameLimiter(limiter timing.Limiter) {
	if limiter == nil {
		e.limiter = timing.NewNoOpLimiter()
		return
	}
	e.limiter = limiter
}

// ResetFrameTiming resets the frame limiter's internal clock, used after
// the debugger pauses and resumes execution.
func (e *DMG) ResetFrameTiming() {
	e.limiter.Reset()
}

// ExtractDebugData snapshots CPU, memory, OAM and VRAM state for debug
// displays. Returns nil if the emulator hasn't been initialized.
func (e *DMG) ExtractDebugData() *debug.CompleteDebugData {
	if e.cpu == nil || e.mem == nil {
		return nil
	}

	pc := e.cpu.GetPC()
	snapshotSize := uint16(200)
	if uint32(pc)+uint32(snapshotSize) > 0xFFFF {
		snapshotSize = uint16(0x10000 - uint32(pc))
	}
	snapshotBytes := make([]uint8, snapshotSize)
	for i := range snapshotBytes {
		snapshotBytes[i] = e.mem.Read(pc + uint16(i))
	}

	var debuggerState debug.DebuggerState
	switch e.GetDebuggerState() {
	case DebuggerPaused:
		debuggerState = debug.DebuggerPaused
	case DebuggerStep:
		debuggerState = debug.DebuggerStepInstruction
	case DebuggerStepFrame:
		debuggerState = debug.DebuggerStepFrame
	default:
		debuggerState = debug.DebuggerRunning
	}

	return &debug.CompleteDebugData{
		OAM:  debug.ExtractOAMDataFromReader(e.mem, 0, 16),
		VRAM: debug.ExtractVRAMDataFromReader(e.mem),
		CPU: &debug.CPUState{
			A: e.cpu.GetA(), F: e.cpu.GetF(),
			B: e.cpu.GetB(), C: e.cpu.GetC(),
			D: e.cpu.GetD(), E: e.cpu.GetE(),
			H: e.cpu.GetH(), L: e.cpu.GetL(),
			SP:     e.cpu.GetSP(),
			PC:     pc,
			IME:    e.cpu.IME(),
			Cycles: e.cpu.GetCycles(),
		},
		Memory: &debug.MemorySnapshot{
			StartAddr: pc,
			Bytes:     snapshotBytes,
		},
		DebuggerState:   debuggerState,
		InterruptEnable: e.mem.Read(addr.IE),
		InterruptFlags:  e.mem.Read(addr.IF),
	}
}
