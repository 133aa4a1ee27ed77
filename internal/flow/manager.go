package flow

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"mestre-tatu/internal/constants"
	"mestre-tatu/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// Manager tracks every live registration flow. All transitions go through
// the manager under one mutex; the mutex is never held across a storage
// write or any other blocking call that matters to a user interaction.
type Manager struct {
	mu    sync.Mutex
	flows map[string]*Flow

	roster   Roster
	recorder Recorder
	logger   zerolog.Logger

	selectTimeout time.Duration
	amountTimeout time.Duration
	now           func() time.Time
}

func NewManager(roster Roster, recorder Recorder, logger zerolog.Logger) *Manager {
	return &Manager{
		flows:         make(map[string]*Flow),
		roster:        roster,
		recorder:      recorder,
		logger:        logger,
		selectTimeout: constants.FlowSelectTimeout,
		amountTimeout: constants.FlowAmountTimeout,
		now:           time.Now,
	}
}

// Start opens a new flow for the given user and returns it in
// StateChoosingAction.
func (m *Manager) Start(guildID, channelID, ownerID string) (*Flow, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate flow id: %w", err)
	}

	f := &Flow{
		id:        id,
		guildID:   guildID,
		channelID: channelID,
		ownerID:   ownerID,
		state:     StateChoosingAction,
		deadline:  m.now().Add(m.selectTimeout),
	}

	m.mu.Lock()
	m.flows[id] = f
	m.mu.Unlock()

	m.logger.Debug().
		Str("flow_id", id).
		Str("guild_id", guildID).
		Str("owner_id", ownerID).
		Msg("registration flow started")
	return f, nil
}

// BindMessage records the id of the Discord message carrying the flow UI so
// it can be edited on expiry.
func (m *Manager) BindMessage(flowID, messageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.flows[flowID]; ok {
		f.messageID = messageID
	}
}

// ChooseAction handles the action button press. For an empty roster the flow
// fails with domain.ErrNoEligiblePlayers: a missing role is a configuration
// problem and is reported, never swallowed.
func (m *Manager) ChooseAction(ctx context.Context, flowID, userID string, action domain.Action) (*StepResult, error) {
	if !action.Valid() {
		return nil, domain.ErrUnknownAction
	}

	f, err := m.claim(flowID, userID, StateChoosingAction)
	if err != nil {
		return nil, err
	}

	// roster lookup happens outside the lock; the flow is parked in
	// StateChoosingAction until the transition below
	players, rosterErr := m.roster.EligiblePlayers(ctx, f.guildID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.flows[flowID]; !ok {
		// swept while the roster lookup ran
		return nil, ErrUnknownFlow
	}
	if rosterErr != nil {
		f.state = StateFailed
		delete(m.flows, flowID)
		m.logger.Error().Err(rosterErr).Str("flow_id", flowID).Msg("roster lookup failed")
		return nil, rosterErr
	}
	if len(players) == 0 {
		f.state = StateFailed
		delete(m.flows, flowID)
		m.logger.Warn().Str("flow_id", flowID).Str("guild_id", f.guildID).Msg("no eligible players in guild")
		return nil, domain.ErrNoEligiblePlayers
	}
	if len(players) > constants.MaxSelectPlayers {
		players = players[:constants.MaxSelectPlayers]
	}

	f.action = action
	f.roster = players
	f.state = StateChoosingPlayer
	f.deadline = m.now().Add(m.selectTimeout)

	return &StepResult{
		Kind:      ResultPromptPlayer,
		FlowID:    f.id,
		ChannelID: f.channelID,
		MessageID: f.messageID,
		Action:    f.action,
		Players:   players,
	}, nil
}

// ChoosePlayer handles the select-menu choice. Pure occurrence actions are
// recorded immediately with amount 1; amount-bearing ones park the flow in
// StateAwaitingAmount.
func (m *Manager) ChoosePlayer(ctx context.Context, flowID, userID, playerID string) (*StepResult, error) {
	f, err := m.claim(flowID, userID, StateChoosingPlayer)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if _, ok := m.flows[flowID]; !ok {
		m.mu.Unlock()
		return nil, ErrUnknownFlow
	}
	var player Player
	found := false
	for _, p := range f.roster {
		if p.ID == playerID {
			player = p
			found = true
			break
		}
	}
	if !found {
		m.mu.Unlock()
		return nil, ErrUnknownPlayer
	}
	f.player = player

	if f.action.BearsAmount() {
		f.state = StateAwaitingAmount
		f.deadline = m.now().Add(m.amountTimeout)
		res := &StepResult{
			Kind:      ResultPromptAmount,
			FlowID:    f.id,
			ChannelID: f.channelID,
			MessageID: f.messageID,
			Action:    f.action,
			Player:    player,
		}
		m.mu.Unlock()
		return res, nil
	}

	// detach before the storage call: a duplicate press racing this one must
	// not find the flow still in StateChoosingPlayer
	delete(m.flows, flowID)
	m.mu.Unlock()

	return m.record(ctx, f, 1)
}

// HandleMessage offers a free-form channel message to the flows waiting on
// an amount. It returns false when no flow consumed the message. Replies
// that are not a plain non-negative integer are ignored and the wait
// continues, exactly like the original menu. A reply landing after the
// deadline is ignored too; the flow is left for the sweeper.
func (m *Manager) HandleMessage(ctx context.Context, guildID, channelID, userID, content string) (*StepResult, bool, error) {
	amount, ok := parseAmount(content)
	if !ok {
		return nil, false, nil
	}

	m.mu.Lock()
	var f *Flow
	for _, candidate := range m.flows {
		if candidate.state == StateAwaitingAmount &&
			candidate.guildID == guildID &&
			candidate.channelID == channelID &&
			candidate.ownerID == userID &&
			m.now().Before(candidate.deadline) {
			f = candidate
			break
		}
	}
	if f == nil {
		m.mu.Unlock()
		return nil, false, nil
	}

	// detach before the storage call: a concurrent duplicate reply must not
	// find the flow still waiting
	delete(m.flows, f.id)
	m.mu.Unlock()

	res, err := m.record(ctx, f, amount)
	if err != nil {
		return nil, true, err
	}
	return res, true, nil
}

// CollectExpired sweeps every flow past its deadline into StateExpired and
// returns them so the caller can disable their UI messages. Expired flows
// never reach the store.
func (m *Manager) CollectExpired(now time.Time) []Expired {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expired []Expired
	for id, f := range m.flows {
		if f.state.Terminal() || now.Before(f.deadline) {
			continue
		}
		f.state = StateExpired
		delete(m.flows, id)
		expired = append(expired, Expired{
			FlowID:    f.id,
			ChannelID: f.channelID,
			MessageID: f.messageID,
			State:     StateExpired,
		})
		m.logger.Debug().Str("flow_id", id).Msg("registration flow expired")
	}
	return expired
}

// claim validates ownership and the expected state without mutating the
// flow. Deadline checks also happen here so a stale interaction cannot race
// the sweeper into a write.
func (m *Manager) claim(flowID, userID string, want State) (*Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.flows[flowID]
	if !ok {
		return nil, ErrUnknownFlow
	}
	if f.ownerID != userID {
		return nil, ErrNotFlowOwner
	}
	if !m.now().Before(f.deadline) {
		return nil, ErrUnknownFlow
	}
	if f.state != want {
		return nil, ErrBadTransition
	}
	return f, nil
}

// record performs the single append of a detached flow and settles it.
// Callers remove the flow from the map under the mutex before calling, so
// the append can happen at most once; the lock is not held across the
// storage call.
func (m *Manager) record(ctx context.Context, f *Flow, amount int) (*StepResult, error) {
	event, err := m.recorder.Record(ctx, f.guildID, f.player.ID, f.player.Name, f.action, amount)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		f.state = StateFailed
		m.logger.Error().Err(err).Str("flow_id", f.id).Msg("failed to record session event")
		return nil, err
	}
	f.state = StateDone

	return &StepResult{
		Kind:      ResultRecorded,
		FlowID:    f.id,
		ChannelID: f.channelID,
		MessageID: f.messageID,
		Action:    f.action,
		Player:    f.player,
		Event:     event,
	}, nil
}

func parseAmount(content string) (int, bool) {
	content = strings.TrimSpace(content)
	if content == "" {
		return 0, false
	}
	for _, r := range content {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(content)
	if err != nil {
		return 0, false
	}
	return n, true
}
