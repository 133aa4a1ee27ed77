package service

import (
	"context"
	"time"

	"mestre-tatu/internal/constants"
	"mestre-tatu/internal/domain"
	"mestre-tatu/internal/repository"

	"github.com/rs/zerolog"
)

// SessionService owns the session lifecycle: the per-guild active session
// pointer and the closing summaries.
type SessionService struct {
	registry *repository.RegistryRepository
	meta     *repository.SessionMetaRepository
	events   *repository.EventRepository
	logger   zerolog.Logger
}

func NewSessionService(registry *repository.RegistryRepository, meta *repository.SessionMetaRepository, events *repository.EventRepository, logger zerolog.Logger) *SessionService {
	return &SessionService{
		registry: registry,
		meta:     meta,
		events:   events,
		logger:   logger,
	}
}

// Current returns the guild's active session number.
func (s *SessionService) Current(ctx context.Context, guildID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.registry.GetCurrent(ctx, guildID)
}

// SetCurrent moves the guild's active session pointer. It fails closed on a
// non-positive number and never rewrites events already recorded.
func (s *SessionService) SetCurrent(ctx context.Context, guildID string, sessionNumber int) error {
	if sessionNumber <= 0 {
		return domain.ErrInvalidSession
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.registry.SetCurrent(ctx, guildID, sessionNumber)
}

// Close records (or overwrites) the closing summary of a session. A session
// may be closed with no events, and events may exist with no closing
// summary; the two are deliberately independent.
func (s *SessionService) Close(ctx context.Context, guildID string, sessionNumber int, title, description string) error {
	if sessionNumber <= 0 {
		return domain.ErrInvalidSession
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.meta.Upsert(ctx, &domain.SessionMeta{
		GuildID:       guildID,
		SessionNumber: sessionNumber,
		Title:         title,
		Description:   description,
		ClosedAt:      time.Now().UTC(),
	})
}

// Meta returns the closing summary of a session, or nil when none exists.
func (s *SessionService) Meta(ctx context.Context, guildID string, sessionNumber int) (*domain.SessionMeta, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.meta.Get(ctx, guildID, sessionNumber)
}

// AvailableSessions lists the sessions that have at least one recorded
// event, ascending.
func (s *SessionService) AvailableSessions(ctx context.Context, guildID string) ([]int, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.events.DistinctSessions(ctx, guildID)
}
