package io

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// pollWithin polls the terminal, failing if Poll blocks.
func pollWithin(t *testing.T, term *Terminal) (value byte, ok bool, err error) {
	done := make(chan struct{})
	go func() {
		value, ok, err = term.Poll()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Poll blocked")
	}
	return
}

func TestTerminal_PollIdlePipe(t *testing.T) {
	assert := assert.New(t)

	pr, pw := io.Pipe()
	defer pr.Close()
	term := &Terminal{Input: NewStream(pr)}

	for range 3 {
		_, ok, err := pollWithin(t, term)
		assert.NoError(err)
		assert.False(ok)
	}

	go func() {
		pw.Write([]byte("zq"))
		pw.Close()
	}()

	var got []byte
	deadline := time.Now().Add(time.Second)
	for len(got) < 2 && time.Now().Before(deadline) {
		value, ok, err := pollWithin(t, term)
		assert.NoError(err)
		if ok {
			got = append(got, value)
		} else {
			time.Sleep(time.Millisecond)
		}
	}
	assert.Equal([]byte("zq"), got)

	value, err := term.Load(TERMINAL_IN)
	assert.NoError(err)
	assert.Equal(uint32('q'), value)

	// Drained and closed
	_, ok, err := pollWithin(t, term)
	assert.NoError(err)
	assert.False(ok)
}

func TestStream_Read(t *testing.T) {
	assert := assert.New(t)

	pr, pw := io.Pipe()
	stream := NewStream(pr)

	buf := make([]byte, 4)
	n, err := stream.Read(buf)
	assert.NoError(err)
	assert.Equal(0, n)

	broken := errors.New("broken")
	go func() {
		pw.Write([]byte("abc"))
		pw.CloseWithError(broken)
	}()

	var got []byte
	deadline := time.Now().Add(time.Second)
	for err == nil && time.Now().Before(deadline) {
		n, err = stream.Read(buf)
		got = append(got, buf[:n]...)
		if n == 0 {
			time.Sleep(time.Millisecond)
		}
	}
	assert.ErrorIs(err, broken)
	assert.Equal([]byte("abc"), got)

	count, err := stream.Available()
	assert.NoError(err)
	assert.Equal(0, count)
}
