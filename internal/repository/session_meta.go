package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mestre-tatu/internal/domain"

	"github.com/rs/zerolog"
)

type SessionMetaRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSessionMetaRepository(sqlDB *sql.DB, logger zerolog.Logger) *SessionMetaRepository {
	return &SessionMetaRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// Upsert writes the closing summary for (guild, session), overwriting any
// previous one.
func (r *SessionMetaRepository) Upsert(ctx context.Context, meta *domain.SessionMeta) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (guild_id, session_number, title, description, closed_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (guild_id, session_number) DO UPDATE SET
		   title = excluded.title,
		   description = excluded.description,
		   closed_at = excluded.closed_at`,
		meta.GuildID, meta.SessionNumber, meta.Title, meta.Description, meta.ClosedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).
			Str("guild_id", meta.GuildID).
			Int("session", meta.SessionNumber).
			Msg("failed to upsert session meta")
		return fmt.Errorf("failed to upsert session meta: %w", err)
	}

	r.logger.Info().
		Str("guild_id", meta.GuildID).
		Int("session", meta.SessionNumber).
		Str("title", meta.Title).
		Msg("session closed")
	return nil
}

// Get returns the closing summary for (guild, session), or nil when the
// session was never closed.
func (r *SessionMetaRepository) Get(ctx context.Context, guildID string, sessionNumber int) (*domain.SessionMeta, error) {
	var meta domain.SessionMeta
	err := r.db.QueryRowContext(ctx,
		`SELECT guild_id, session_number, title, description, closed_at
		 FROM sessions WHERE guild_id = ? AND session_number = ?`,
		guildID, sessionNumber,
	).Scan(&meta.GuildID, &meta.SessionNumber, &meta.Title, &meta.Description, &meta.ClosedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session meta: %w", err)
	}
	return &meta, nil
}
