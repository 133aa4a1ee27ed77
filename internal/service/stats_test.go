package service

import (
	"context"
	"path/filepath"
	"testing"

	"mestre-tatu/internal/config"
	"mestre-tatu/internal/database"
	"mestre-tatu/internal/domain"
	"mestre-tatu/internal/repository"

	"github.com/rs/zerolog"
)

func setupRepos(t *testing.T) (*repository.EventRepository, *repository.RegistryRepository, *repository.SessionMetaRepository) {
	t.Helper()

	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "stats.db")}
	db, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return repository.NewEventRepository(db, zerolog.Nop()),
		repository.NewRegistryRepository(db, zerolog.Nop()),
		repository.NewSessionMetaRepository(db, zerolog.Nop())
}

func mustRecord(t *testing.T, rec *RecorderService, guildID, playerID, playerName string, action domain.Action, amount int) *domain.Event {
	t.Helper()
	event, err := rec.Record(context.Background(), guildID, playerID, playerName, action, amount)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	return event
}

func TestPlayerTotalsZeroFilled(t *testing.T) {
	events, _, _ := setupRepos(t)
	stats := NewStatsService(events, zerolog.Nop())

	totals, err := stats.PlayerTotals(context.Background(), "g2", "nobody")
	if err != nil {
		t.Fatalf("player totals: %v", err)
	}
	if len(totals) != len(domain.Actions()) {
		t.Fatalf("expected %d actions, got %d", len(domain.Actions()), len(totals))
	}
	for _, action := range domain.Actions() {
		if totals[action] != 0 {
			t.Fatalf("expected 0 for %s, got %d", action, totals[action])
		}
	}
}

func TestPlayerTotalsAccumulate(t *testing.T) {
	events, registry, _ := setupRepos(t)
	stats := NewStatsService(events, zerolog.Nop())
	rec := NewRecorderService(events, registry, zerolog.Nop())
	ctx := context.Background()

	mustRecord(t, rec, "g1", "p1", "Alice", domain.ActionDamageDealt, 5)
	mustRecord(t, rec, "g1", "p1", "Alice", domain.ActionDamageDealt, 3)
	mustRecord(t, rec, "g1", "p1", "Alice", domain.ActionHealing, 4)

	totals, err := stats.PlayerTotals(ctx, "g1", "p1")
	if err != nil {
		t.Fatalf("player totals: %v", err)
	}
	if totals[domain.ActionDamageDealt] != 8 {
		t.Fatalf("expected 8 damage dealt, got %d", totals[domain.ActionDamageDealt])
	}
	if totals[domain.ActionHealing] != 4 {
		t.Fatalf("expected 4 healing, got %d", totals[domain.ActionHealing])
	}
	if totals[domain.ActionDamageTaken] != 0 {
		t.Fatalf("expected damage taken untouched, got %d", totals[domain.ActionDamageTaken])
	}

	rows, err := events.EventsForPlayer(ctx, "g1", "p1")
	if err != nil {
		t.Fatalf("events for player: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, no merging, got %d", len(rows))
	}
}

func TestLeaderboardReturnsAllTied(t *testing.T) {
	events, registry, _ := setupRepos(t)
	stats := NewStatsService(events, zerolog.Nop())
	rec := NewRecorderService(events, registry, zerolog.Nop())
	ctx := context.Background()

	mustRecord(t, rec, "g1", "p1", "Alice", domain.ActionElimination, 1)
	mustRecord(t, rec, "g1", "p2", "Bob", domain.ActionElimination, 1)
	mustRecord(t, rec, "g1", "p3", "Carol", domain.ActionElimination, 1)
	mustRecord(t, rec, "g1", "p4", "Dave", domain.ActionDamageDealt, 10)

	holders, err := stats.Leaderboard(ctx, "g1", domain.ActionElimination)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(holders) != 3 {
		t.Fatalf("expected all 3 tied holders, got %d", len(holders))
	}
	for _, h := range holders {
		if h.Total != 1 {
			t.Fatalf("expected tied total 1, got %d", h.Total)
		}
	}
}

func TestLeaderboardEmptyWithoutData(t *testing.T) {
	events, _, _ := setupRepos(t)
	stats := NewStatsService(events, zerolog.Nop())

	holders, err := stats.Leaderboard(context.Background(), "g1", domain.ActionCritSuccess)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(holders) != 0 {
		t.Fatalf("expected no record holders, got %d", len(holders))
	}
}

func TestRecordsCoverWholeVocabulary(t *testing.T) {
	events, registry, _ := setupRepos(t)
	stats := NewStatsService(events, zerolog.Nop())
	rec := NewRecorderService(events, registry, zerolog.Nop())

	mustRecord(t, rec, "g1", "p1", "Alice", domain.ActionDamageDealt, 12)

	records, err := stats.Records(context.Background(), "g1")
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(records) != len(domain.Actions()) {
		t.Fatalf("expected an entry per action, got %d", len(records))
	}
	if len(records[domain.ActionDamageDealt]) != 1 {
		t.Fatalf("expected one damage record holder, got %d", len(records[domain.ActionDamageDealt]))
	}
	if len(records[domain.ActionHealing]) != 0 {
		t.Fatalf("expected no healing record holder, got %d", len(records[domain.ActionHealing]))
	}
}

func TestSessionSummaryDeterministicOrder(t *testing.T) {
	events, registry, _ := setupRepos(t)
	stats := NewStatsService(events, zerolog.Nop())
	rec := NewRecorderService(events, registry, zerolog.Nop())
	ctx := context.Background()

	mustRecord(t, rec, "g1", "p1", "Alice", domain.ActionDamageDealt, 10)
	mustRecord(t, rec, "g1", "p2", "Bob", domain.ActionDamageDealt, 25)
	mustRecord(t, rec, "g1", "p3", "Carol", domain.ActionHealing, 9)
	mustRecord(t, rec, "g1", "p4", "Ana", domain.ActionCritFailure, 1)

	summary, err := stats.SessionSummary(ctx, "g1", 1)
	if err != nil {
		t.Fatalf("session summary: %v", err)
	}

	if summary.Totals[domain.ActionDamageDealt] != 35 {
		t.Fatalf("expected session damage 35, got %d", summary.Totals[domain.ActionDamageDealt])
	}

	// damage dealt descending, then name ascending for the zero-damage pair
	wantOrder := []string{"Bob", "Alice", "Ana", "Carol"}
	if len(summary.Players) != len(wantOrder) {
		t.Fatalf("expected %d players, got %d", len(wantOrder), len(summary.Players))
	}
	for i, name := range wantOrder {
		if summary.Players[i].PlayerName != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, summary.Players[i].PlayerName)
		}
	}
}

func TestSessionSummaryEmptySession(t *testing.T) {
	events, _, _ := setupRepos(t)
	stats := NewStatsService(events, zerolog.Nop())

	summary, err := stats.SessionSummary(context.Background(), "g1", 99)
	if err != nil {
		t.Fatalf("session summary: %v", err)
	}
	if len(summary.Players) != 0 {
		t.Fatalf("expected no players, got %d", len(summary.Players))
	}
	for _, action := range domain.Actions() {
		if summary.Totals[action] != 0 {
			t.Fatalf("expected all-zero totals, got %d for %s", summary.Totals[action], action)
		}
	}
}
