package service

import (
	"context"
	"sort"
	"sync"

	"mestre-tatu/internal/constants"
	"mestre-tatu/internal/domain"
	"mestre-tatu/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// StatsService is the read side of the event store: pure aggregations,
// no state of its own.
type StatsService struct {
	events *repository.EventRepository
	logger zerolog.Logger
}

func NewStatsService(events *repository.EventRepository, logger zerolog.Logger) *StatsService {
	return &StatsService{events: events, logger: logger}
}

// PlayerTotals sums a player's lifetime amounts per action. Every action of
// the vocabulary is present in the result; unrecorded ones are 0. A player
// with no events yields an all-zero map, not an error.
func (s *StatsService) PlayerTotals(ctx context.Context, guildID, playerID string) (domain.PlayerTotals, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	events, err := s.events.EventsForPlayer(ctx, guildID, playerID)
	if err != nil {
		return nil, err
	}

	totals := domain.NewPlayerTotals()
	for _, e := range events {
		totals[e.Action] += e.Amount
	}
	return totals, nil
}

// SessionSummary builds the per-player and session-wide breakdown of one
// session. Players are ordered by damage dealt descending, name ascending on
// ties, so repeated renders are identical.
func (s *StatsService) SessionSummary(ctx context.Context, guildID string, sessionNumber int) (*domain.SessionSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	events, err := s.events.EventsForSession(ctx, guildID, sessionNumber)
	if err != nil {
		return nil, err
	}

	summary := &domain.SessionSummary{
		GuildID:       guildID,
		SessionNumber: sessionNumber,
		Totals:        domain.NewPlayerTotals(),
	}

	perPlayer := make(map[string]domain.PlayerTotals)
	names := make(map[string]string)
	for _, e := range events {
		summary.Totals[e.Action] += e.Amount
		if _, ok := perPlayer[e.PlayerID]; !ok {
			perPlayer[e.PlayerID] = domain.NewPlayerTotals()
		}
		perPlayer[e.PlayerID][e.Action] += e.Amount
		// events come oldest first, so the last write wins and the most
		// recent display name sticks
		names[e.PlayerID] = e.PlayerName
	}

	for id, totals := range perPlayer {
		summary.Players = append(summary.Players, domain.PlayerSummary{
			PlayerID:   id,
			PlayerName: names[id],
			Totals:     totals,
		})
	}
	sort.Slice(summary.Players, func(i, j int) bool {
		a, b := summary.Players[i], summary.Players[j]
		if a.Totals[domain.ActionDamageDealt] != b.Totals[domain.ActionDamageDealt] {
			return a.Totals[domain.ActionDamageDealt] > b.Totals[domain.ActionDamageDealt]
		}
		return a.PlayerName < b.PlayerName
	})

	return summary, nil
}

// Leaderboard returns the record holder(s) for one action: every player tied
// at the maximum lifetime total. A maximum of 0 means nobody has recorded
// anything meaningful yet and yields an empty result.
func (s *StatsService) Leaderboard(ctx context.Context, guildID string, action domain.Action) ([]domain.RecordHolder, error) {
	if !action.Valid() {
		return nil, domain.ErrUnknownAction
	}

	totals, err := s.events.ActionTotals(ctx, guildID, action)
	if err != nil {
		return nil, err
	}
	if len(totals) == 0 || totals[0].Total <= 0 {
		return nil, nil
	}

	max := totals[0].Total
	var holders []domain.RecordHolder
	for _, h := range totals {
		if h.Total != max {
			break
		}
		holders = append(holders, h)
	}
	return holders, nil
}

// Records computes the leaderboard of every action in the vocabulary. The
// seven queries are independent, so they run concurrently.
func (s *StatsService) Records(ctx context.Context, guildID string) (map[domain.Action][]domain.RecordHolder, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	var mu sync.Mutex
	records := make(map[domain.Action][]domain.RecordHolder, len(domain.Actions()))

	g, ctx := errgroup.WithContext(ctx)
	for _, action := range domain.Actions() {
		g.Go(func() error {
			holders, err := s.Leaderboard(ctx, guildID, action)
			if err != nil {
				return err
			}
			mu.Lock()
			records[action] = holders
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}
