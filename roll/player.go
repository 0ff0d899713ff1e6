package roll

import (
	"math"
	"slices"

	"github.com/motifvae/motif"
)

type (
	// Player plays schedules sent by the model. It runs on the audio
	// goroutine: Process is called whenever the audio device needs more
	// samples, and all communication with the model goes through the broker
	// without ever blocking.
	Player struct {
		synth  motif.Synth
		broker *Broker

		schedule   []motif.ScheduledNote
		events     []playerEvent // sorted by frame
		next       int           // index of the next event to fire
		frame      int           // frames played since the start of the schedule
		loopFrames int           // 0: not looping
		endFrame   int
		qpm        float64
		playing    bool
		metronome  bool
		finished   bool
	}

	playerEvent struct {
		frame    int
		voice    int
		pitch    int
		on       bool
		velocity float32
	}
)

const (
	metronomeVoice    = -1
	metronomePitch    = 84
	metronomeVelocity = 0.6
	noteVelocity      = 0.8
)

func NewPlayer(broker *Broker, synth motif.Synth) *Player {
	return &Player{broker: broker, synth: synth, qpm: motif.DefaultQPM}
}

// Process fills the buffer with audio, firing the note events that fall
// within it at their exact frames.
func (p *Player) Process(buffer motif.AudioBuffer) {
	p.processMessages()
	for len(buffer) > 0 {
		if !p.playing {
			p.synth.Render(buffer)
			break
		}
		for p.next < len(p.events) && p.events[p.next].frame <= p.frame {
			p.fire(p.events[p.next])
			p.next++
		}
		end := p.endFrame
		if p.loopFrames > 0 {
			end = p.loopFrames
		}
		if p.frame >= end {
			if p.loopFrames > 0 {
				p.rewind()
				continue
			}
			p.stop()
			p.finished = true
			continue
		}
		n := min(len(buffer), end-p.frame)
		if p.next < len(p.events) {
			n = min(n, p.events[p.next].frame-p.frame)
		}
		p.synth.Render(buffer[:n])
		buffer = buffer[n:]
		p.frame += n
	}
	p.send()
}

func (p *Player) processMessages() {
	for {
		select {
		case msg := <-p.broker.ToPlayer:
			switch m := msg.(type) {
			case PlayMsg:
				p.schedule, p.qpm = m.Schedule, m.QPM
				if p.qpm <= 0 {
					p.qpm = motif.DefaultQPM
				}
				p.loopFrames = int(math.Round(m.LoopQuarters * p.framesPerQuarter()))
				if m.Restart || (p.loopFrames > 0 && p.frame >= p.loopFrames) {
					p.frame = 0
				}
				p.synth.ReleaseAll()
				p.playing, p.finished = true, false
				p.buildEvents()
			case PauseMsg:
				p.stop()
			case StopMsg:
				p.stop()
				p.frame = 0
			case MetronomeMsg:
				p.metronome = m.On
				p.buildEvents()
			}
		default:
			return
		}
	}
}

func (p *Player) framesPerQuarter() float64 {
	return motif.SampleRate * 60 / p.qpm
}

// buildEvents converts the schedule into note on and off events, plus the
// metronome clicks, and finds the first event at or after the current frame.
func (p *Player) buildEvents() {
	p.events = p.events[:0]
	p.endFrame = 0
	toFrames := func(seconds float64) int { return int(math.Round(seconds * motif.SampleRate)) }
	for i, n := range p.schedule {
		on := toFrames(n.Offset)
		off := max(toFrames(n.Offset+n.Duration), on+1)
		p.events = append(p.events,
			playerEvent{frame: on, voice: i, pitch: n.Pitch, on: true, velocity: noteVelocity},
			playerEvent{frame: off, voice: i})
		p.endFrame = max(p.endFrame, off)
	}
	if p.metronome {
		fpq := p.framesPerQuarter()
		end := p.loopFrames
		if end == 0 {
			end = p.endFrame
		}
		for q := 0; ; q++ {
			on := int(math.Round(float64(q) * fpq))
			if on >= end {
				break
			}
			p.events = append(p.events,
				playerEvent{frame: on, voice: metronomeVoice, pitch: metronomePitch, on: true, velocity: metronomeVelocity},
				playerEvent{frame: on + int(fpq/2), voice: metronomeVoice})
		}
	}
	// offs before ons on the same frame, so a note can follow itself
	slices.SortStableFunc(p.events, func(a, b playerEvent) int {
		if a.frame != b.frame {
			return a.frame - b.frame
		}
		switch {
		case a.on == b.on:
			return 0
		case !a.on:
			return -1
		}
		return 1
	})
	p.next, _ = slices.BinarySearchFunc(p.events, p.frame, func(e playerEvent, frame int) int {
		return e.frame - frame
	})
}

func (p *Player) fire(e playerEvent) {
	if e.on {
		p.synth.Trigger(e.voice, e.pitch, e.velocity)
	} else {
		p.synth.Release(e.voice)
	}
}

func (p *Player) rewind() {
	p.synth.ReleaseAll()
	p.frame, p.next = 0, 0
}

func (p *Player) stop() {
	p.playing = false
	p.synth.ReleaseAll()
}

// send reports the status to the model. It never blocks, so that the audio
// goroutine cannot deadlock.
func (p *Player) send() {
	status := PlayerStatus{
		Playing:  p.playing,
		Position: float64(p.frame) / p.framesPerQuarter(),
		Finished: p.finished,
	}
	if TrySend(p.broker.ToModel, MsgToModel{HasPlayerStatus: true, PlayerStatus: status}) {
		p.finished = false
	}
}
