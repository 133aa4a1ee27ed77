package flow

import (
	"context"
	"errors"
	"time"

	"mestre-tatu/internal/domain"
)

var (
	// ErrUnknownFlow means the flow id is not (or no longer) tracked.
	ErrUnknownFlow = errors.New("unknown or finished flow")

	// ErrNotFlowOwner rejects interactions from anyone but the user who
	// started the flow. The flow state is left untouched.
	ErrNotFlowOwner = errors.New("only the user who started the flow may drive it")

	// ErrBadTransition rejects an interaction that does not match the
	// flow's current state (a stale button press, for instance).
	ErrBadTransition = errors.New("interaction does not match flow state")

	// ErrUnknownPlayer rejects a player selection outside the roster the
	// flow was presented with.
	ErrUnknownPlayer = errors.New("selected player is not eligible")
)

// Player is one role-eligible guild member offered in the selection menu.
type Player struct {
	ID   string
	Name string
}

// Roster lists the role-eligible players of a guild.
type Roster interface {
	EligiblePlayers(ctx context.Context, guildID string) ([]Player, error)
}

// Recorder appends one completed event tuple to the store.
type Recorder interface {
	Record(ctx context.Context, guildID, playerID, playerName string, action domain.Action, amount int) (*domain.Event, error)
}

// Flow holds one in-progress registration. Fields past `state` are only
// meaningful in the states that set them: action from StateChoosingPlayer
// on, player and roster from StateAwaitingAmount on.
type Flow struct {
	id        string
	guildID   string
	channelID string
	ownerID   string
	messageID string

	state    State
	deadline time.Time

	action domain.Action
	roster []Player
	player Player
}

func (f *Flow) ID() string        { return f.id }
func (f *Flow) GuildID() string   { return f.guildID }
func (f *Flow) ChannelID() string { return f.channelID }
func (f *Flow) OwnerID() string   { return f.ownerID }
func (f *Flow) State() State      { return f.state }

// ResultKind tells the caller what to render after a successful step.
type ResultKind int

const (
	// ResultPromptPlayer: show the player select menu.
	ResultPromptPlayer ResultKind = iota
	// ResultPromptAmount: ask the user to type the numeric amount.
	ResultPromptAmount
	// ResultRecorded: the event was appended; show the confirmation.
	ResultRecorded
)

// StepResult is the outcome of one accepted flow transition.
type StepResult struct {
	Kind      ResultKind
	FlowID    string
	ChannelID string
	MessageID string
	Action    domain.Action
	Player    Player
	Players   []Player
	Event     *domain.Event
}

// Expired describes a flow that was swept after its deadline, so the UI
// message can be disabled.
type Expired struct {
	FlowID    string
	ChannelID string
	MessageID string
	State     State
}
