// Package cpu implements the processor and the assembler of the triad
// toolchain.
//
// The processor has sixteen 32-bit general purpose registers (r14 is the
// stack pointer, r15 the program counter), three control registers (status,
// handler and cause), a sparse 32-bit address space and a memory mapped I/O
// region at its top. Instructions are single 32-bit words holding an opcode,
// three register fields and a signed 12-bit displacement. Words are decoded
// once into a closed set of Instruction variants; two word idioms that must
// not be interrupted are decoded as a single Atomic instruction.
//
// The assembler is a two pass assembler producing relocatable objects. Values
// too wide for a displacement are placed in a per-section literal pool and
// reached pc relative.
package cpu
