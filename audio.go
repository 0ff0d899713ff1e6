package motif

type (
	// AudioBuffer is a buffer of stereo audio samples of variable length,
	// each sample represented by [2]float32. [0] is left channel, [1] is
	// right.
	AudioBuffer [][2]float32

	// AudioSource is called by an AudioContext whenever it needs more audio;
	// it should fill the whole buffer.
	AudioSource func(buf AudioBuffer) error

	// AudioContext represents the low-level audio drivers. There should be at
	// most one AudioContext at a time. Play starts pulling audio from the
	// source until the returned CloserWaiter is closed.
	AudioContext interface {
		Play(source AudioSource) CloserWaiter
		Close() error
	}

	CloserWaiter interface {
		Close() error
		Wait() error
	}

	// Synth renders the voices of the playback transport. Voices are
	// identified by arbitrary integers chosen by the caller.
	Synth interface {
		Render(buffer AudioBuffer)
		Trigger(voice int, pitch int, velocity float32)
		Release(voice int)
		ReleaseAll()
	}
)

// SampleRate is the sample rate of all rendered audio.
const SampleRate = 44100

