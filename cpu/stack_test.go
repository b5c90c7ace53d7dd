package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStack(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()

	_, err := cpu.pop()
	assert.ErrorIs(err, ErrStackEmpty)

	for n := range uint32(4) {
		assert.NoError(cpu.push(n + 10))
	}
	assert.Equal(uint32(MEMORY_MMIO-16), cpu.Register[REG_SP])

	value, err := cpu.peek()
	assert.NoError(err)
	assert.Equal(uint32(13), value)

	for n := range uint32(4) {
		value, err = cpu.pop()
		assert.NoError(err)
		assert.Equal(13-n, value)
	}

	_, err = cpu.pop()
	assert.ErrorIs(err, ErrStackEmpty)
	assert.Equal(uint32(MEMORY_MMIO), cpu.Register[REG_SP])
}

func TestStackLimit(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Register[REG_SP] = 8

	assert.NoError(cpu.push(1))
	assert.NoError(cpu.push(2))
	assert.Equal(uint32(0), cpu.Register[REG_SP])
	assert.ErrorIs(cpu.push(3), ErrStackFull)
	assert.Equal(uint32(0), cpu.Register[REG_SP])
}
