package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"mestre-tatu/internal/domain"
	"mestre-tatu/internal/service"

	"github.com/rs/zerolog"
)

// StatsServer exposes the aggregation engine read-only over JSON, for
// dashboards and campaign archives outside Discord.
type StatsServer struct {
	stats    *service.StatsService
	sessions *service.SessionService
	logger   zerolog.Logger
}

func NewStatsServer(stats *service.StatsService, sessions *service.SessionService, logger zerolog.Logger) *StatsServer {
	return &StatsServer{
		stats:    stats,
		sessions: sessions,
		logger:   logger,
	}
}

func (s *StatsServer) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/guilds/{guild}/players/{player}/totals", s.handlePlayerTotals)
	mux.HandleFunc("GET /v1/guilds/{guild}/sessions/{session}/summary", s.handleSessionSummary)
	mux.HandleFunc("GET /v1/guilds/{guild}/records", s.handleRecords)
	return mux
}

func (s *StatsServer) handlePlayerTotals(w http.ResponseWriter, r *http.Request) {
	guildID := r.PathValue("guild")
	playerID := r.PathValue("player")

	totals, err := s.stats.PlayerTotals(r.Context(), guildID, playerID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.respond(w, map[string]any{
		"guild_id":  guildID,
		"player_id": playerID,
		"totals":    totals,
	})
}

func (s *StatsServer) handleSessionSummary(w http.ResponseWriter, r *http.Request) {
	guildID := r.PathValue("guild")
	number, err := strconv.Atoi(r.PathValue("session"))
	if err != nil || number <= 0 {
		http.Error(w, "invalid session number", http.StatusBadRequest)
		return
	}

	summary, err := s.stats.SessionSummary(r.Context(), guildID, number)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	meta, err := s.sessions.Meta(r.Context(), guildID, number)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	type playerJSON struct {
		PlayerID   string              `json:"player_id"`
		PlayerName string              `json:"player_name"`
		Totals     domain.PlayerTotals `json:"totals"`
	}
	players := make([]playerJSON, 0, len(summary.Players))
	for _, p := range summary.Players {
		players = append(players, playerJSON{PlayerID: p.PlayerID, PlayerName: p.PlayerName, Totals: p.Totals})
	}

	body := map[string]any{
		"guild_id":       guildID,
		"session_number": number,
		"totals":         summary.Totals,
		"players":        players,
	}
	if meta != nil {
		body["title"] = meta.Title
		body["description"] = meta.Description
		body["closed_at"] = meta.ClosedAt
	}
	s.respond(w, body)
}

func (s *StatsServer) handleRecords(w http.ResponseWriter, r *http.Request) {
	guildID := r.PathValue("guild")

	records, err := s.stats.Records(r.Context(), guildID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	type holderJSON struct {
		PlayerID   string `json:"player_id"`
		PlayerName string `json:"player_name"`
		Total      int    `json:"total"`
	}
	body := make(map[string][]holderJSON, len(records))
	for action, holders := range records {
		hs := make([]holderJSON, 0, len(holders))
		for _, h := range holders {
			hs = append(hs, holderJSON{PlayerID: h.PlayerID, PlayerName: h.PlayerName, Total: h.Total})
		}
		body[string(action)] = hs
	}
	s.respond(w, map[string]any{"guild_id": guildID, "records": body})
}

func (s *StatsServer) respond(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode response")
	}
}

func (s *StatsServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("stats query failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}
