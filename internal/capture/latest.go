package capture

import (
	"context"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Latest holds the most recent frame as JPEG so preview clients never touch
// the camera the game loop is reading from.
type Latest struct {
	mu      sync.Mutex
	jpeg    []byte
	seq     uint64
	updated chan struct{}
}

// NewLatest creates an empty frame holder.
func NewLatest() *Latest {
	return &Latest{updated: make(chan struct{})}
}

// Publish encodes frame and replaces the held image.
func (l *Latest) Publish(frame *gocv.Mat) error {
	if frame == nil || frame.Empty() {
		return ErrEmptyFrame
	}
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	defer buf.Close()

	l.Store(append([]byte(nil), buf.GetBytes()...))
	return nil
}

// Store replaces the held image with already encoded JPEG bytes.
func (l *Latest) Store(jpeg []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jpeg = jpeg
	l.seq++
	close(l.updated)
	l.updated = make(chan struct{})
}

// Get returns the held image and its sequence number, 0 before the first frame.
func (l *Latest) Get() ([]byte, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.jpeg, l.seq
}

// Next blocks until a frame newer than after is available.
func (l *Latest) Next(ctx context.Context, after uint64) ([]byte, uint64, error) {
	for {
		l.mu.Lock()
		if l.seq > after {
			jpeg, seq := l.jpeg, l.seq
			l.mu.Unlock()
			return jpeg, seq, nil
		}
		wait := l.updated
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, after, ctx.Err()
		case <-wait:
		}
	}
}
