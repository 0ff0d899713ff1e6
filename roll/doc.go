// Package roll implements the interactive piano roll session: the note grid
// with its no-overlap invariant, the pointer interaction state machine, the
// session model owned by the user interface goroutine and the audio player
// running on the audio goroutine. The model and the player only communicate
// through the channels of a Broker.
//
// The model exposes its state to a user interface through small views: Int,
// Bool and Action values that know their valid range and whether they are
// enabled, e.g. m.BPM(), m.Metronome() or m.Generate().
package roll
