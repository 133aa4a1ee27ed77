package domain

import (
	"time"
)

// Event is one immutable recorded game occurrence. Rows are append-only;
// the only way one leaves the store is the owner-restricted dellog command.
type Event struct {
	ID            int64
	Timestamp     time.Time
	GuildID       string
	SessionNumber int
	PlayerID      string
	PlayerName    string
	Action        Action
	Amount        int
}

// SessionMeta is the closing summary of a numbered session. At most one row
// exists per (guild, session); closing again overwrites it.
type SessionMeta struct {
	GuildID       string
	SessionNumber int
	Title         string
	Description   string
	ClosedAt      time.Time
}

// PlayerTotals maps every action of the vocabulary to a summed amount.
// Actions with no recorded events are present with value 0.
type PlayerTotals map[Action]int

// NewPlayerTotals returns a zero-filled totals map covering the whole
// vocabulary.
func NewPlayerTotals() PlayerTotals {
	t := make(PlayerTotals, len(Actions()))
	for _, a := range Actions() {
		t[a] = 0
	}
	return t
}

// PlayerSummary is one player's slice of a session summary.
type PlayerSummary struct {
	PlayerID   string
	PlayerName string
	Totals     PlayerTotals
}

// SessionSummary aggregates one session: the per-player breakdown plus the
// session-wide totals. Players is deterministically ordered (damage dealt
// descending, name ascending as tie-break).
type SessionSummary struct {
	GuildID       string
	SessionNumber int
	Totals        PlayerTotals
	Players       []PlayerSummary
}

// RecordHolder is one player's lifetime total for a single action. A
// leaderboard query returns every player tied at the maximum.
type RecordHolder struct {
	PlayerID   string
	PlayerName string
	Total      int
}
