package sse

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrInterrupted means the stream broke before it ended normally. The text
// returned alongside it is whatever arrived before the break.
var ErrInterrupted = errors.New("stream interrupted")

const readSize = 4096

// Consume reads r to the end, calling onUpdate with the accumulated text after
// every read that produced at least one delta. Reading continues after [DONE]
// until the body closes.
func Consume(ctx context.Context, r io.Reader, onUpdate func(text string)) (string, error) {
	d := NewDecoder()
	buf := make([]byte, readSize)
	for {
		if err := ctx.Err(); err != nil {
			return d.Text(), fmt.Errorf("%w: %v", ErrInterrupted, err)
		}

		n, err := r.Read(buf)
		if n > 0 {
			if events := d.Feed(buf[:n]); len(events) > 0 && onUpdate != nil {
				onUpdate(d.Text())
			}
		}
		if errors.Is(err, io.EOF) {
			return d.Text(), nil
		}
		if err != nil {
			return d.Text(), fmt.Errorf("%w: %v", ErrInterrupted, err)
		}
	}
}
