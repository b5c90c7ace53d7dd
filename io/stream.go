package io

import (
	"errors"
	"io"
)

// STREAM_BUFFER is the number of bytes a Stream reads ahead.
const STREAM_BUFFER = 4096

// Stream adapts a blocking reader, such as a pipe, for polling. A
// goroutine drains the reader into a buffer; Available and Read never
// block.
type Stream struct {
	data chan byte
	err  error // Set before data is closed.
}

var _ availabler = (*Stream)(nil)

// NewStream starts reading r in the background.
func NewStream(r io.Reader) (stream *Stream) {
	stream = &Stream{
		data: make(chan byte, STREAM_BUFFER),
	}

	go stream.fill(r)

	return
}

func (stream *Stream) fill(r io.Reader) {
	buf := make([]byte, 256)
	for {
		n, err := r.Read(buf)
		for _, value := range buf[:n] {
			stream.data <- value
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				stream.err = err
			}
			close(stream.data)
			return
		}
	}
}

// Available returns the number of bytes that can be read immediately.
func (stream *Stream) Available() (count int, err error) {
	count = len(stream.data)
	return
}

// Read copies the buffered bytes into p. It returns 0 bytes without an
// error when nothing is buffered yet, and io.EOF once the reader is
// drained.
func (stream *Stream) Read(p []byte) (n int, err error) {
	for n < len(p) {
		select {
		case value, ok := <-stream.data:
			if !ok {
				if n == 0 {
					err = stream.err
					if err == nil {
						err = io.EOF
					}
				}
				return
			}
			p[n] = value
			n++
		default:
			return
		}
	}

	return
}
