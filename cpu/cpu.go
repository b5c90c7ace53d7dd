// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"log"

	"github.com/ezrec/triad/internal"
	"github.com/ezrec/triad/io"
)

// Device is a memory mapped I/O device.
type Device io.Device

// mapping is a device attached to a range of the MMIO region.
type mapping struct {
	Base   uint32
	Size   uint32
	Device Device
}

// Cpu is the processor simulation state.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Register [REG_COUNT]uint32 // General purpose registers; r14 is sp, r15 is pc.
	Csr      [CSR_COUNT]uint32 // Control registers.
	Memory   internal.Sparse   // Main memory.

	Halted bool  // Set by halt, or by a fault.
	Fault  error // The fault that halted the processor.
	Cycles int   // Instruction cycles since reset.

	pending map[Cause]bool // Raised, not yet dispatched, interrupts.
	mmio    []mapping
}

// NewCpu creates a reset processor with empty memory.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}
	cpu.Reset()

	return
}

// Reset clears the registers, memory and pending interrupts.
// Attached devices are kept.
func (cpu *Cpu) Reset() {
	cpu.Register = [REG_COUNT]uint32{}
	cpu.Csr = [CSR_COUNT]uint32{}
	cpu.Memory = internal.Sparse{}
	cpu.Halted = false
	cpu.Fault = nil
	cpu.Cycles = 0
	cpu.pending = map[Cause]bool{}

	cpu.Register[REG_PC] = MEMORY_START
	cpu.Register[REG_SP] = MEMORY_MMIO
}

// SetDevice maps a device to size bytes at base.
func (cpu *Cpu) SetDevice(base uint32, size uint32, dev Device) {
	cpu.mmio = append(cpu.mmio, mapping{Base: base, Size: size, Device: dev})
}

func (cpu *Cpu) device(addr uint32) (dev Device, offset uint32, ok bool) {
	for _, m := range cpu.mmio {
		if addr >= m.Base && addr-m.Base < m.Size {
			return m.Device, addr - m.Base, true
		}
	}
	return
}

// String returns the register state.
func (cpu *Cpu) String() (text string) {
	for n := range REG_COUNT {
		text += fmt.Sprintf("%5s=0x%08x", fmt.Sprintf("r%d", n), cpu.Register[n])
		if n%4 == 3 {
			text += "\n"
		} else {
			text += " "
		}
	}
	for n := range CSR_COUNT {
		text += fmt.Sprintf("%9s=0x%08x", Csr(n).String(), cpu.Csr[n])
		if n < CSR_COUNT-1 {
			text += " "
		}
	}
	text += "\n"

	return
}

// Load reads a word from memory or a device.
func (cpu *Cpu) Load(addr uint32) (value uint32, err error) {
	dev, offset, ok := cpu.device(addr)
	if ok {
		return dev.Load(offset)
	}

	value, ok = cpu.Memory.Word(addr)
	if !ok {
		err = fmt.Errorf("%w: 0x%08x", ErrMemoryUnmapped, addr)
	}

	return
}

// Store writes a word to memory or a device.
func (cpu *Cpu) Store(addr uint32, value uint32) (err error) {
	dev, offset, ok := cpu.device(addr)
	if ok {
		return dev.Store(offset, value)
	}

	switch {
	case addr > MEMORY_LAST-(CODE_SIZE-1):
		err = ErrMemoryBounds
	case addr+(CODE_SIZE-1) >= MEMORY_MMIO:
		err = ErrMemoryMmio
	}
	if err != nil {
		err = fmt.Errorf("%w: 0x%08x", err, addr)
		return
	}

	cpu.Memory.SetWord(addr, value)
	return
}

// Fetch decodes the instruction at pc, and advances pc past its first word.
// An atomic pair is returned as a single Atomic instruction.
func (cpu *Cpu) Fetch() (inst Instruction, err error) {
	pc := cpu.Register[REG_PC]

	word, ok := cpu.Memory.Word(pc)
	if !ok {
		err = fmt.Errorf("%w: 0x%08x", ErrMemoryUnmapped, pc)
		return
	}

	inst, err = Decode(CodeOf(word))
	if err != nil {
		return
	}

	cpu.Register[REG_PC] = pc + CODE_SIZE

	word, ok = cpu.Memory.Word(pc + CODE_SIZE)
	if ok {
		if pair, is_pair := Pair(inst, CodeOf(word)); is_pair {
			inst = pair
		}
	}

	return
}

// Step fetches and executes one instruction, or one atomic pair.
// A fault halts the processor and is returned as an *ErrFault.
func (cpu *Cpu) Step() (err error) {
	if cpu.Halted {
		return ErrHalted
	}

	pc := cpu.Register[REG_PC]

	inst, err := cpu.Fetch()
	if err == nil {
		if cpu.Verbose {
			log.Printf("cpu: %08x: %v", pc, inst)
		}
		err = cpu.Execute(inst)
	}

	cpu.Cycles++

	if err != nil {
		err = &ErrFault{Pc: pc, Err: err}
		cpu.Raise(CAUSE_FAULT)
		cpu.Csr[CSR_CAUSE] = uint32(CAUSE_FAULT)
		cpu.Fault = err
	}

	return
}

// Raise marks an interrupt as pending.
func (cpu *Cpu) Raise(cause Cause) {
	cpu.pending[cause] = true
}

// Pending returns true if the interrupt is raised and not yet taken.
func (cpu *Cpu) Pending(cause Cause) bool {
	return cpu.pending[cause]
}

// Dispatch takes at most one pending interrupt.
// A pending fault halts the processor.
func (cpu *Cpu) Dispatch() (taken Cause, err error) {
	if cpu.pending[CAUSE_FAULT] {
		delete(cpu.pending, CAUSE_FAULT)
		cpu.Halted = true
		err = cpu.Fault
		return
	}

	if cpu.Halted {
		return
	}

	status := cpu.Csr[CSR_STATUS]
	if (status & STATUS_GLOBAL) != 0 {
		return
	}

	for _, irq := range []struct {
		cause Cause
		mask  uint32
	}{
		{CAUSE_TIMER, STATUS_TIMER},
		{CAUSE_TERMINAL, STATUS_TERMINAL},
	} {
		if !cpu.pending[irq.cause] || (status&irq.mask) != 0 {
			continue
		}

		delete(cpu.pending, irq.cause)
		if cpu.Verbose {
			log.Printf("cpu: interrupt %v", irq.cause)
		}

		err = cpu.interrupt(irq.cause)
		if err != nil {
			pc := cpu.Register[REG_PC]
			err = &ErrFault{Pc: pc, Err: err}
			cpu.Csr[CSR_CAUSE] = uint32(CAUSE_FAULT)
			cpu.Fault = err
			cpu.Halted = true
			return
		}

		taken = irq.cause
		return
	}

	return
}

// interrupt enters the handler: push status, push pc, mask everything.
func (cpu *Cpu) interrupt(cause Cause) (err error) {
	cpu.Csr[CSR_CAUSE] = uint32(cause)

	err = cpu.push(cpu.Csr[CSR_STATUS])
	if err != nil {
		return
	}

	err = cpu.push(cpu.Register[REG_PC])
	if err != nil {
		return
	}

	cpu.Register[REG_PC] = cpu.Csr[CSR_HANDLER]
	cpu.Csr[CSR_STATUS] |= STATUS_MASK

	return
}
