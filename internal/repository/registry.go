package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mestre-tatu/internal/constants"

	"github.com/rs/zerolog"
)

// RegistryRepository holds the single mutable "active session number" per
// guild. Changing it never touches previously recorded events.
type RegistryRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewRegistryRepository(sqlDB *sql.DB, logger zerolog.Logger) *RegistryRepository {
	return &RegistryRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// GetCurrent returns the active session number for a guild, defaulting to
// constants.DefaultSessionNumber for guilds that never set one.
func (r *RegistryRepository) GetCurrent(ctx context.Context, guildID string) (int, error) {
	var current int
	err := r.db.QueryRowContext(ctx,
		`SELECT current_session FROM session_registry WHERE guild_id = ?`,
		guildID,
	).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return constants.DefaultSessionNumber, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query session registry: %w", err)
	}
	return current, nil
}

// SetCurrent overwrites the active session number for a guild.
func (r *RegistryRepository) SetCurrent(ctx context.Context, guildID string, sessionNumber int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO session_registry (guild_id, current_session)
		 VALUES (?, ?)
		 ON CONFLICT (guild_id) DO UPDATE SET current_session = excluded.current_session`,
		guildID, sessionNumber,
	)
	if err != nil {
		r.logger.Error().Err(err).
			Str("guild_id", guildID).
			Int("session", sessionNumber).
			Msg("failed to set current session")
		return fmt.Errorf("failed to set current session: %w", err)
	}

	r.logger.Info().
		Str("guild_id", guildID).
		Int("session", sessionNumber).
		Msg("active session updated")
	return nil
}
