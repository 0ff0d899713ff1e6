package roll

import "time"

type (
	// Broker carries the messages between the model, owned by the user
	// interface goroutine, and the player, owned by the audio goroutine.
	// Generation requests running on their own goroutines report back to the
	// model through the same ToModel channel. The model and the player never
	// block on sending: they use TrySend. The goroutines of generation and
	// initialization block instead, since the model waits for their single
	// result and would otherwise stay busy forever.
	Broker struct {
		ToModel  chan MsgToModel
		ToPlayer chan any
	}

	// MsgToModel is a message to the model. The player status is sent after
	// every processed audio buffer, so it is kept unboxed; everything else is
	// in Data.
	MsgToModel struct {
		HasPlayerStatus bool
		PlayerStatus    PlayerStatus

		Data any
	}

	PlayerStatus struct {
		Playing  bool
		Position float64 // in quarter notes from the start of the schedule
		// Finished is set once, when a schedule that is not looped has
		// played to its end.
		Finished bool
	}
)

func NewBroker() *Broker {
	return &Broker{
		ToModel:  make(chan MsgToModel, 1024),
		ToPlayer: make(chan any, 1024),
	}
}

// TrySend sends v to c if c is not full and reports whether it was sent. It
// never blocks.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive blocks until a value is received from c or t has passed.
// ok is false on timeout or if the channel is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
