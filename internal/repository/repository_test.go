package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"mestre-tatu/internal/config"
	"mestre-tatu/internal/database"
	"mestre-tatu/internal/domain"

	"github.com/rs/zerolog"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "stats.db")}
	db, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func newEvent(guildID string, session int, playerID, playerName string, action domain.Action, amount int) *domain.Event {
	return &domain.Event{
		Timestamp:     time.Now().UTC(),
		GuildID:       guildID,
		SessionNumber: session,
		PlayerID:      playerID,
		PlayerName:    playerName,
		Action:        action,
		Amount:        amount,
	}
}

func TestAppendAndEventsForSession(t *testing.T) {
	repo := NewEventRepository(setupDB(t), zerolog.Nop())
	ctx := context.Background()

	id, err := repo.Append(ctx, newEvent("g1", 3, "p1", "Alice", domain.ActionDamageDealt, 17))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}

	events, err := repo.EventsForSession(ctx, "g1", 3)
	if err != nil {
		t.Fatalf("events for session: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.GuildID != "g1" || e.SessionNumber != 3 || e.PlayerID != "p1" ||
		e.PlayerName != "Alice" || e.Action != domain.ActionDamageDealt || e.Amount != 17 {
		t.Fatalf("unexpected event: %+v", e)
	}

	// a different session has no rows
	others, err := repo.EventsForSession(ctx, "g1", 4)
	if err != nil {
		t.Fatalf("events for session: %v", err)
	}
	if len(others) != 0 {
		t.Fatalf("expected no events for session 4, got %d", len(others))
	}
}

func TestEventsForPlayerDoesNotMerge(t *testing.T) {
	repo := NewEventRepository(setupDB(t), zerolog.Nop())
	ctx := context.Background()

	for _, amount := range []int{5, 3} {
		if _, err := repo.Append(ctx, newEvent("g1", 1, "p1", "Alice", domain.ActionHealing, amount)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	events, err := repo.EventsForPlayer(ctx, "g1", "p1")
	if err != nil {
		t.Fatalf("events for player: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(events))
	}
	if events[0].Amount != 5 || events[1].Amount != 3 {
		t.Fatalf("expected insertion order 5 then 3, got %d then %d", events[0].Amount, events[1].Amount)
	}
}

func TestEventsForPlayerScopedByGuild(t *testing.T) {
	repo := NewEventRepository(setupDB(t), zerolog.Nop())
	ctx := context.Background()

	if _, err := repo.Append(ctx, newEvent("g1", 1, "p1", "Alice", domain.ActionElimination, 1)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := repo.Append(ctx, newEvent("g2", 1, "p1", "Alice", domain.ActionElimination, 1)); err != nil {
		t.Fatalf("append: %v", err)
	}

	events, err := repo.EventsForPlayer(ctx, "g1", "p1")
	if err != nil {
		t.Fatalf("events for player: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 row for g1, got %d", len(events))
	}
}

func TestDistinctSessions(t *testing.T) {
	repo := NewEventRepository(setupDB(t), zerolog.Nop())
	ctx := context.Background()

	for _, session := range []int{4, 1, 4, 2} {
		if _, err := repo.Append(ctx, newEvent("g1", session, "p1", "Alice", domain.ActionDamageDealt, 1)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	sessions, err := repo.DistinctSessions(ctx, "g1")
	if err != nil {
		t.Fatalf("distinct sessions: %v", err)
	}
	want := []int{1, 2, 4}
	if len(sessions) != len(want) {
		t.Fatalf("expected %v, got %v", want, sessions)
	}
	for i := range want {
		if sessions[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, sessions)
		}
	}
}

func TestActionTotalsResolvesLatestName(t *testing.T) {
	repo := NewEventRepository(setupDB(t), zerolog.Nop())
	ctx := context.Background()

	if _, err := repo.Append(ctx, newEvent("g1", 1, "p1", "Alice", domain.ActionDamageDealt, 10)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := repo.Append(ctx, newEvent("g1", 2, "p1", "Alicia", domain.ActionDamageDealt, 5)); err != nil {
		t.Fatalf("append: %v", err)
	}

	totals, err := repo.ActionTotals(ctx, "g1", domain.ActionDamageDealt)
	if err != nil {
		t.Fatalf("action totals: %v", err)
	}
	if len(totals) != 1 {
		t.Fatalf("expected one player after rename, got %d", len(totals))
	}
	if totals[0].Total != 15 {
		t.Fatalf("expected merged total 15, got %d", totals[0].Total)
	}
	if totals[0].PlayerName != "Alicia" {
		t.Fatalf("expected latest name Alicia, got %q", totals[0].PlayerName)
	}
}

func TestDeleteByID(t *testing.T) {
	repo := NewEventRepository(setupDB(t), zerolog.Nop())
	ctx := context.Background()

	id, err := repo.Append(ctx, newEvent("g1", 1, "p1", "Alice", domain.ActionCritFailure, 1))
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	deleted, err := repo.DeleteByID(ctx, id)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Fatal("expected delete to report a removed row")
	}

	deleted, err = repo.DeleteByID(ctx, id)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted {
		t.Fatal("expected second delete to find nothing")
	}
}

func TestRegistryDefaultsAndOverwrite(t *testing.T) {
	repo := NewRegistryRepository(setupDB(t), zerolog.Nop())
	ctx := context.Background()

	current, err := repo.GetCurrent(ctx, "g1")
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if current != 1 {
		t.Fatalf("expected default session 1, got %d", current)
	}

	if err := repo.SetCurrent(ctx, "g1", 5); err != nil {
		t.Fatalf("set current: %v", err)
	}
	if err := repo.SetCurrent(ctx, "g1", 7); err != nil {
		t.Fatalf("set current: %v", err)
	}

	current, err = repo.GetCurrent(ctx, "g1")
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if current != 7 {
		t.Fatalf("expected session 7, got %d", current)
	}

	// other guilds keep their default
	other, err := repo.GetCurrent(ctx, "g2")
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if other != 1 {
		t.Fatalf("expected default session 1 for g2, got %d", other)
	}
}

func TestSessionMetaUpsertOverwrites(t *testing.T) {
	repo := NewSessionMetaRepository(setupDB(t), zerolog.Nop())
	ctx := context.Background()

	meta, err := repo.Get(ctx, "g1", 2)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if meta != nil {
		t.Fatalf("expected no meta, got %+v", meta)
	}

	first := &domain.SessionMeta{
		GuildID:       "g1",
		SessionNumber: 2,
		Title:         "A Queda da Torre",
		Description:   "O grupo enfrentou o necromante.",
		ClosedAt:      time.Now().UTC(),
	}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	second := &domain.SessionMeta{
		GuildID:       "g1",
		SessionNumber: 2,
		Title:         "A Queda da Torre, Parte 2",
		Description:   "Versão corrigida do resumo.",
		ClosedAt:      time.Now().UTC(),
	}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	meta, err = repo.Get(ctx, "g1", 2)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if meta == nil {
		t.Fatal("expected meta after upsert")
	}
	if meta.Title != second.Title || meta.Description != second.Description {
		t.Fatalf("expected overwritten meta, got %+v", meta)
	}
}
