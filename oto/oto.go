// Package oto plays audio through ebitengine/oto.
package oto

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/motifvae/motif"
)

type (
	Context struct {
		ctx *oto.Context
	}

	// playback pulls audio from the source whenever oto asks for more.
	playback struct {
		player *oto.Player
		source motif.AudioSource
		buffer motif.AudioBuffer
		err    error
		done   chan struct{}
		once   sync.Once
	}
)

const bytesPerFrame = 8

const bufferDuration = 50 * time.Millisecond

// NewContext creates the oto context, float32 stereo output at
// motif.SampleRate, and waits until the device is ready. Only one context can
// exist per process.
func NewContext() (*Context, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   motif.SampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufferDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Context{ctx: ctx}, nil
}

func (c *Context) Play(source motif.AudioSource) motif.CloserWaiter {
	p := &playback{source: source, done: make(chan struct{})}
	p.player = c.ctx.NewPlayer(p)
	p.player.Play()
	return p
}

// Close suspends the device; oto contexts cannot be disposed.
func (c *Context) Close() error {
	if err := c.ctx.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

// Read implements io.Reader for the oto player.
func (p *playback) Read(b []byte) (int, error) {
	frames := len(b) / bytesPerFrame
	if cap(p.buffer) < frames {
		p.buffer = make(motif.AudioBuffer, frames)
	}
	p.buffer = p.buffer[:frames]
	if err := p.source(p.buffer); err != nil {
		p.err = fmt.Errorf("audio source failed: %w", err)
		p.finish()
		return 0, io.EOF
	}
	floatBufferToBytes(p.buffer, b)
	return frames * bytesPerFrame, nil
}

func (p *playback) finish() {
	p.once.Do(func() { close(p.done) })
}

func (p *playback) Close() error {
	p.finish()
	if err := p.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}

// Wait blocks until the playback is closed or the source fails.
func (p *playback) Wait() error {
	<-p.done
	return p.err
}
