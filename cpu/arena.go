package cpu

// Memory map.
const (
	MEMORY_START = 0x4000_0000 // Initial program counter.
	MEMORY_MMIO  = 0xFFFF_FF00 // Start of memory mapped I/O, and the initial stack pointer.
	MEMORY_LAST  = 0xFFFF_FFFF // Last addressable byte.

	MMIO_TERM_OUT = 0xFFFF_FF00 // Terminal output register.
	MMIO_TERM_IN  = 0xFFFF_FF04 // Terminal input register.
	MMIO_TIM_CFG  = 0xFFFF_FF10 // Timer configuration register.
)

// STATUS register mask bits.
const (
	STATUS_TIMER    = uint32(1 << 0) // Timer interrupts masked.
	STATUS_TERMINAL = uint32(1 << 1) // Terminal interrupts masked.
	STATUS_GLOBAL   = uint32(1 << 2) // All external interrupts masked.

	STATUS_MASK = STATUS_TIMER | STATUS_TERMINAL | STATUS_GLOBAL
)

// Cause is the reason for entering the interrupt handler.
type Cause uint32

//go:generate go tool stringer -linecomment -type=Cause
const (
	CAUSE_NONE     = Cause(0) // none
	CAUSE_FAULT    = Cause(1) // fault
	CAUSE_TIMER    = Cause(2) // timer
	CAUSE_TERMINAL = Cause(3) // terminal
	CAUSE_SOFTWARE = Cause(4) // software
)
