// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"log"
	"time"

	"github.com/ezrec/triad/cpu"
	"github.com/ezrec/triad/io"
	"github.com/ezrec/triad/object"
)

// Emulator state. CPU + memory mapped terminal and timer.
type Emulator struct {
	Verbose  bool // If set, enables verbose logging.
	*cpu.Cpu      // Reference to the CPU simulation.

	Terminal io.Terminal // Terminal device.
	Timer    io.Timer    // Interval timer device.

	Clock   func() time.Time   // Time source for the timer; time.Now if nil.
	Program *object.Executable // Currently loaded program image.
}

// NewEmulator creates a new emulator with its devices mapped.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu: cpu.NewCpu(),
	}

	emu.Timer.Clock = emu.now

	emu.Cpu.SetDevice(cpu.MMIO_TERM_OUT, io.TERMINAL_SIZE, &emu.Terminal)
	emu.Cpu.SetDevice(cpu.MMIO_TIM_CFG, io.TIMER_SIZE, &emu.Timer)

	emu.Timer.Reset()

	return
}

func (emu *Emulator) now() time.Time {
	if emu.Clock == nil {
		return time.Now()
	}
	return emu.Clock()
}

// Load replaces the program image, and resets the emulator.
func (emu *Emulator) Load(exe *object.Executable) {
	emu.Program = exe
	emu.Reset()
}

// Reset the processor and devices, and reload the program image.
func (emu *Emulator) Reset() {
	emu.Cpu.Reset()
	emu.Terminal.Reset()
	emu.Timer.Reset()

	if emu.Program == nil {
		return
	}

	for _, seg := range emu.Program.Segments {
		if emu.Verbose {
			log.Printf("emulator: load 0x%08x: %d bytes", seg.Address, len(seg.Data))
		}
		emu.Cpu.Memory.SetBytes(seg.Address, seg.Data)
	}
}

// Tick performs a single instruction cycle: execute, then advance the
// timer, poll the terminal, and dispatch at most one interrupt.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.Register[cpu.REG_PC]
	cycle := emu.Cpu.Cycles
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, Cycle: cycle, Err: err}
		}
	}()

	err = emu.Cpu.Step()
	if errors.Is(err, cpu.ErrHalted) {
		err = nil
		done = true
		return
	}

	// A fault is already pending; the dispatcher turns it into a halt.
	if err == nil {
		if emu.Timer.Expired() {
			emu.Cpu.Raise(cpu.CAUSE_TIMER)
		}

		var ok bool
		_, ok, err = emu.Terminal.Poll()
		if err != nil {
			return
		}
		if ok {
			emu.Cpu.Raise(cpu.CAUSE_TERMINAL)
		}
	}

	_, err = emu.Cpu.Dispatch()
	done = emu.Cpu.Halted

	return
}

// Run ticks until the program halts or faults.
func (emu *Emulator) Run() (err error) {
	for {
		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}
}
