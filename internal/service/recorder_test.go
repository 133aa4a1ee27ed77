package service

import (
	"context"
	"errors"
	"testing"

	"mestre-tatu/internal/domain"

	"github.com/rs/zerolog"
)

func TestRecordStampsCurrentSession(t *testing.T) {
	events, registry, _ := setupRepos(t)
	rec := NewRecorderService(events, registry, zerolog.Nop())
	sessions := NewSessionService(registry, nil, events, zerolog.Nop())
	ctx := context.Background()

	if err := sessions.SetCurrent(ctx, "g1", 5); err != nil {
		t.Fatalf("set current: %v", err)
	}

	event := mustRecord(t, rec, "g1", "p1", "Alice", domain.ActionDamageDealt, 17)
	if event.SessionNumber != 5 {
		t.Fatalf("expected event stamped with session 5, got %d", event.SessionNumber)
	}
}

func TestSetCurrentDoesNotRewriteHistory(t *testing.T) {
	events, registry, _ := setupRepos(t)
	rec := NewRecorderService(events, registry, zerolog.Nop())
	sessions := NewSessionService(registry, nil, events, zerolog.Nop())
	ctx := context.Background()

	old := mustRecord(t, rec, "g1", "p1", "Alice", domain.ActionHealing, 8)
	if old.SessionNumber != 1 {
		t.Fatalf("expected default session 1, got %d", old.SessionNumber)
	}

	if err := sessions.SetCurrent(ctx, "g1", 9); err != nil {
		t.Fatalf("set current: %v", err)
	}

	rows, err := events.EventsForSession(ctx, "g1", 1)
	if err != nil {
		t.Fatalf("events for session: %v", err)
	}
	if len(rows) != 1 || rows[0].SessionNumber != 1 {
		t.Fatalf("expected history untouched in session 1, got %+v", rows)
	}

	fresh := mustRecord(t, rec, "g1", "p1", "Alice", domain.ActionHealing, 2)
	if fresh.SessionNumber != 9 {
		t.Fatalf("expected new event in session 9, got %d", fresh.SessionNumber)
	}
}

func TestRecordRejectsInvalidInput(t *testing.T) {
	events, registry, _ := setupRepos(t)
	rec := NewRecorderService(events, registry, zerolog.Nop())
	ctx := context.Background()

	if _, err := rec.Record(ctx, "g1", "p1", "Alice", domain.Action("banho"), 1); !errors.Is(err, domain.ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
	if _, err := rec.Record(ctx, "g1", "p1", "Alice", domain.ActionHealing, -1); !errors.Is(err, domain.ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}

	rows, err := events.EventsForPlayer(ctx, "g1", "p1")
	if err != nil {
		t.Fatalf("events for player: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rejected records must not write rows, got %d", len(rows))
	}
}

func TestSetCurrentValidation(t *testing.T) {
	_, registry, _ := setupRepos(t)
	sessions := NewSessionService(registry, nil, nil, zerolog.Nop())
	ctx := context.Background()

	for _, n := range []int{0, -3} {
		if err := sessions.SetCurrent(ctx, "g1", n); !errors.Is(err, domain.ErrInvalidSession) {
			t.Fatalf("expected ErrInvalidSession for %d, got %v", n, err)
		}
	}

	// rejected before any state mutation
	current, err := sessions.Current(ctx, "g1")
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current != 1 {
		t.Fatalf("expected registry untouched at 1, got %d", current)
	}
}

func TestCloseSessionRoundTrip(t *testing.T) {
	events, registry, meta := setupRepos(t)
	sessions := NewSessionService(registry, meta, events, zerolog.Nop())
	ctx := context.Background()

	if err := sessions.Close(ctx, "g1", 3, "O Covil", "O grupo venceu o dragão."); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := sessions.Meta(ctx, "g1", 3)
	if err != nil {
		t.Fatalf("meta: %v", err)
	}
	if got == nil || got.Title != "O Covil" || got.Description != "O grupo venceu o dragão." {
		t.Fatalf("unexpected meta: %+v", got)
	}
	if got.ClosedAt.IsZero() {
		t.Fatal("expected closed_at to be set")
	}

	// a session can be closed with no events at all
	rows, err := events.EventsForSession(ctx, "g1", 3)
	if err != nil {
		t.Fatalf("events for session: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no events, got %d", len(rows))
	}
}
