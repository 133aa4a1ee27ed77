package repository

import (
	"context"
	"database/sql"
	"fmt"

	"mestre-tatu/internal/domain"

	"github.com/rs/zerolog"
)

// EventRepository is the durable side of the event store. Rows in
// session_stats are append-only; the single delete path exists for the
// owner-restricted dellog command and is not part of the statistics design.
type EventRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewEventRepository(sqlDB *sql.DB, logger zerolog.Logger) *EventRepository {
	return &EventRepository{
		db:     sqlDB,
		logger: logger,
	}
}

const eventColumns = "id, timestamp, guild_id, session_number, player_id, player_name, action, amount"

// Append inserts one immutable event row and returns its id. Repeated
// identical calls create repeated rows; every call is a distinct game event.
func (r *EventRepository) Append(ctx context.Context, e *domain.Event) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO session_stats (timestamp, guild_id, session_number, player_id, player_name, action, amount)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Timestamp, e.GuildID, e.SessionNumber, e.PlayerID, e.PlayerName, string(e.Action), e.Amount,
	)
	if err != nil {
		r.logger.Error().Err(err).
			Str("guild_id", e.GuildID).
			Str("player_id", e.PlayerID).
			Str("action", string(e.Action)).
			Msg("failed to append event")
		return 0, fmt.Errorf("failed to append event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read event id: %w", err)
	}

	r.logger.Info().
		Int64("event_id", id).
		Str("guild_id", e.GuildID).
		Int("session", e.SessionNumber).
		Str("player", e.PlayerName).
		Str("action", string(e.Action)).
		Int("amount", e.Amount).
		Msg("session event recorded")
	return id, nil
}

// EventsForPlayer returns every event of one player in a guild, oldest first.
func (r *EventRepository) EventsForPlayer(ctx context.Context, guildID, playerID string) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM session_stats
		 WHERE guild_id = ? AND player_id = ? ORDER BY id ASC`,
		guildID, playerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query player events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// EventsForSession returns every event of one session in a guild, in
// insertion (chronological) order.
func (r *EventRepository) EventsForSession(ctx context.Context, guildID string, sessionNumber int) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM session_stats
		 WHERE guild_id = ? AND session_number = ? ORDER BY id ASC`,
		guildID, sessionNumber,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query session events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// DistinctSessions returns the session numbers that have at least one event,
// ascending.
func (r *EventRepository) DistinctSessions(ctx context.Context, guildID string) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT session_number FROM session_stats
		 WHERE guild_id = ? ORDER BY session_number ASC`,
		guildID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan session number: %w", err)
		}
		sessions = append(sessions, n)
	}
	return sessions, rows.Err()
}

// ActionTotals returns every player's lifetime total for one action in a
// guild. The display name is resolved from the player's most recent event so
// renames do not split history.
func (r *EventRepository) ActionTotals(ctx context.Context, guildID string, action domain.Action) ([]domain.RecordHolder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.player_id,
		        (SELECT n.player_name FROM session_stats n
		          WHERE n.guild_id = s.guild_id AND n.player_id = s.player_id
		          ORDER BY n.id DESC LIMIT 1) AS player_name,
		        SUM(s.amount) AS total
		 FROM session_stats s
		 WHERE s.guild_id = ? AND s.action = ?
		 GROUP BY s.player_id
		 ORDER BY total DESC, player_name ASC`,
		guildID, string(action),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query action totals: %w", err)
	}
	defer rows.Close()

	var holders []domain.RecordHolder
	for rows.Next() {
		var h domain.RecordHolder
		if err := rows.Scan(&h.PlayerID, &h.PlayerName, &h.Total); err != nil {
			return nil, fmt.Errorf("failed to scan action total: %w", err)
		}
		holders = append(holders, h)
	}
	return holders, rows.Err()
}

// DeleteByID removes a single event row. Returns false when no row matched.
func (r *EventRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM session_stats WHERE id = ?`, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("event_id", id).Msg("failed to delete event")
		return false, fmt.Errorf("failed to delete event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected > 0 {
		r.logger.Warn().Int64("event_id", id).Msg("event permanently deleted")
	}
	return affected > 0, nil
}

func scanEvents(rows *sql.Rows) ([]domain.Event, error) {
	var events []domain.Event
	for rows.Next() {
		var (
			e      domain.Event
			action string
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.GuildID, &e.SessionNumber,
			&e.PlayerID, &e.PlayerName, &action, &e.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Action = domain.Action(action)
		events = append(events, e)
	}
	return events, rows.Err()
}
