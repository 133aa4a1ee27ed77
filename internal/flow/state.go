package flow

// State is the explicit position of a registration flow. Each transition is
// driven by exactly one user interaction (or by expiry), and no event row is
// written before StateDone is reached.
type State int

const (
	// StateChoosingAction: the seven action buttons are on screen.
	StateChoosingAction State = iota
	// StateChoosingPlayer: an action was picked, the player menu is up.
	StateChoosingPlayer
	// StateAwaitingAmount: amount-bearing action and player picked, waiting
	// for the initiating user to type a number in the same channel.
	StateAwaitingAmount
	// StateDone: the event was appended and confirmed.
	StateDone
	// StateExpired: a bounded wait elapsed; nothing was written.
	StateExpired
	// StateFailed: a configuration or storage problem ended the flow;
	// nothing was written.
	StateFailed
)

// Terminal reports whether the flow can no longer advance.
func (s State) Terminal() bool {
	switch s {
	case StateDone, StateExpired, StateFailed:
		return true
	}
	return false
}

func (s State) String() string {
	switch s {
	case StateChoosingAction:
		return "choosing_action"
	case StateChoosingPlayer:
		return "choosing_player"
	case StateAwaitingAmount:
		return "awaiting_amount"
	case StateDone:
		return "done"
	case StateExpired:
		return "expired"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}
