package emulator

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/triad/cpu"
	"github.com/ezrec/triad/linker"
	"github.com/ezrec/triad/object"
)

// build assembles and links a program with the named section at the
// processor start address.
func build(t *testing.T, section string, program ...string) (exe *object.Executable) {
	asm := &cpu.Assembler{}
	obj, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatalf("%v", err)
	}

	ctx := linker.NewContext()
	ctx.Placements = []linker.Placement{{Section: section, Address: cpu.MEMORY_START}}
	ctx.Add(obj)
	exe, err = ctx.Executable()
	if err != nil {
		t.Fatalf("%v", err)
	}

	return
}

// run ticks until done, with an upper bound on the cycles.
func run(t *testing.T, emu *Emulator, cycles int) {
	for range cycles {
		done, err := emu.Tick()
		if err != nil {
			t.Log(emu.Cpu.String())
			t.Fatalf("%v", err)
		}
		if done {
			return
		}
	}
	t.Fatalf("did not halt in %d cycles", cycles)
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.Equal(uint32(cpu.MEMORY_START), emu.Register[cpu.REG_PC])

	// Nothing loaded
	err := emu.Run()
	assert.ErrorIs(err, cpu.ErrMemoryUnmapped)
	assert.True(emu.Halted)
}

func TestEmulatorHalt(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Load(build(t, "text", ".section text", "halt"))

	assert.NoError(emu.Run())
	assert.True(emu.Halted)
	assert.Equal(1, emu.Cycles)

	for n := range cpu.REG_SP {
		assert.Equal(uint32(0), emu.Register[n])
	}
	assert.Equal(uint32(cpu.MEMORY_MMIO), emu.Register[cpu.REG_SP])

	// Ticking a halted emulator is done.
	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)
}

func TestEmulatorScenario(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Load(build(t, "main",
		".section main",
		"    add %r1, %r2",
		"    halt",
	))

	assert.NoError(emu.Run())
	assert.Equal(2, emu.Cycles)
	assert.Equal(uint32(0x4000_0008), emu.Register[cpu.REG_PC])

	// Reset reloads the program.
	emu.Reset()
	assert.False(emu.Halted)
	assert.Equal(0, emu.Cycles)
	assert.Equal(uint32(cpu.MEMORY_START), emu.Register[cpu.REG_PC])
	assert.NoError(emu.Run())
	assert.Equal(2, emu.Cycles)
}

func TestEmulatorTerminalOutput(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	output := &bytes.Buffer{}
	emu.Terminal.Output = output

	emu.Load(build(t, "text",
		".equ TERM_OUT, 0xFFFFFF00",
		".section text",
		"    ld $72, %r1",
		"    st %r1, TERM_OUT",
		"    ld $105, %r1",
		"    st %r1, TERM_OUT",
		"    halt",
	))

	run(t, emu, 100)
	assert.Equal("Hi", output.String())
}

func TestEmulatorTerminalInput(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Clock = func() time.Time { return time.Time{} }

	emu.Load(build(t, "text",
		".equ TERM_IN, 0xFFFFFF04",
		".section text",
		"    ld $handler, %r1",
		"    csrwr %r1, %handler",
		"    ld $1, %r2         # mask the timer",
		"    csrwr %r2, %status",
		"    ld $0, %r3",
		"wait:",
		"    beq %r3, %r0, wait",
		"    halt",
		"handler:",
		"    ld TERM_IN, %r3",
		"    iret",
	))

	for range 5 {
		done, err := emu.Tick()
		assert.NoError(err)
		assert.False(done)
	}

	emu.Terminal.Input = strings.NewReader("A")
	run(t, emu, 100)

	assert.Equal(uint32('A'), emu.Register[3])
	assert.Equal(uint32(1), emu.Csr[cpu.CSR_STATUS])
	assert.Equal(uint32(cpu.CAUSE_NONE), emu.Csr[cpu.CSR_CAUSE])
	assert.Equal(uint32(cpu.MEMORY_MMIO), emu.Register[cpu.REG_SP])
}

func TestEmulatorTimer(t *testing.T) {
	assert := assert.New(t)

	now := time.Unix(1000, 0)

	emu := NewEmulator()
	emu.Clock = func() time.Time { return now }

	emu.Load(build(t, "text",
		".section text",
		"    ld $handler, %r1",
		"    csrwr %r1, %handler",
		"    ld $0, %r3",
		"wait:",
		"    beq %r3, %r0, wait",
		"    halt",
		"handler:",
		"    csrrd %cause, %r5",
		"    ld $1, %r3",
		"    iret",
	))

	for range 10 {
		done, err := emu.Tick()
		assert.NoError(err)
		assert.False(done)
	}
	assert.Equal(uint32(0), emu.Register[5])

	// The default period is 500ms.
	now = now.Add(600 * time.Millisecond)
	run(t, emu, 100)

	assert.Equal(uint32(cpu.CAUSE_TIMER), emu.Register[5])
	assert.Equal(uint32(1), emu.Register[3])
	assert.Equal(uint32(0), emu.Csr[cpu.CSR_STATUS])
}

func TestEmulatorFault(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Load(build(t, "text",
		".section text",
		"    ld $0, %r1",
		"    div %r1, %r1",
		"    halt",
	))

	err := emu.Run()
	assert.ErrorIs(err, cpu.ErrDivideZero)
	assert.True(emu.Halted)
	assert.Equal(uint32(cpu.CAUSE_FAULT), emu.Csr[cpu.CSR_CAUSE])

	var er *ErrRuntime
	if assert.True(errors.As(err, &er)) {
		assert.Equal(uint32(cpu.MEMORY_START+4), er.Pc)
		assert.Equal(1, er.Cycle)
	}

	var ef *cpu.ErrFault
	if assert.True(errors.As(err, &ef)) {
		assert.Equal(uint32(cpu.MEMORY_START+4), ef.Pc)
	}
}
