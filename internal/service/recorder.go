package service

import (
	"context"
	"time"

	"mestre-tatu/internal/constants"
	"mestre-tatu/internal/domain"
	"mestre-tatu/internal/repository"

	"github.com/rs/zerolog"
)

// RecorderService is the single write path into the event store. It stamps
// each new event with the guild's active session number, read at write time:
// a setsession that lands mid-flow does not retroactively apply.
type RecorderService struct {
	events   *repository.EventRepository
	registry *repository.RegistryRepository
	logger   zerolog.Logger
}

func NewRecorderService(events *repository.EventRepository, registry *repository.RegistryRepository, logger zerolog.Logger) *RecorderService {
	return &RecorderService{
		events:   events,
		registry: registry,
		logger:   logger,
	}
}

// Record validates and appends exactly one event row.
func (s *RecorderService) Record(ctx context.Context, guildID, playerID, playerName string, action domain.Action, amount int) (*domain.Event, error) {
	if !action.Valid() {
		return nil, domain.ErrUnknownAction
	}
	if amount < 0 {
		return nil, domain.ErrNegativeAmount
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	session, err := s.registry.GetCurrent(ctx, guildID)
	if err != nil {
		return nil, err
	}

	event := &domain.Event{
		Timestamp:     time.Now().UTC(),
		GuildID:       guildID,
		SessionNumber: session,
		PlayerID:      playerID,
		PlayerName:    playerName,
		Action:        action,
		Amount:        amount,
	}

	id, err := s.events.Append(ctx, event)
	if err != nil {
		return nil, err
	}
	event.ID = id
	return event, nil
}
