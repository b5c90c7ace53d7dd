package cpu

// STACK_LIMIT is the lowest address sp may be decremented to.
const STACK_LIMIT = CODE_SIZE

// push decrements sp by a word, then stores value at sp.
func (cpu *Cpu) push(value uint32) (err error) {
	sp := cpu.Register[REG_SP]
	if sp < STACK_LIMIT {
		return ErrStackFull
	}

	sp -= CODE_SIZE
	err = cpu.Store(sp, value)
	if err != nil {
		return
	}

	cpu.Register[REG_SP] = sp
	return
}

// peek loads the word at sp. The stack is empty when sp is in the MMIO region.
func (cpu *Cpu) peek() (value uint32, err error) {
	sp := cpu.Register[REG_SP]
	if sp >= MEMORY_MMIO {
		return 0, ErrStackEmpty
	}

	return cpu.Load(sp)
}

// pop loads the word at sp, then increments sp.
func (cpu *Cpu) pop() (value uint32, err error) {
	value, err = cpu.peek()
	if err != nil {
		return
	}

	cpu.Register[REG_SP] += CODE_SIZE
	return
}
