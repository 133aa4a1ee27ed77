package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"mestre-tatu/internal/config"
	"mestre-tatu/internal/flow"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// GuildRoster resolves the role-eligible players of a guild: every non-bot
// member holding the configured player role, matched case-insensitively by
// role name.
type GuildRoster struct {
	session  *discordgo.Session
	roleName string
	logger   zerolog.Logger
}

func NewGuildRoster(session *discordgo.Session, cfg *config.Config, logger zerolog.Logger) *GuildRoster {
	return &GuildRoster{
		session:  session,
		roleName: cfg.PlayerRole,
		logger:   logger,
	}
}

var _ flow.Roster = (*GuildRoster)(nil)

func (r *GuildRoster) EligiblePlayers(ctx context.Context, guildID string) ([]flow.Player, error) {
	roles, err := r.session.GuildRoles(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guild roles: %w", err)
	}

	var roleID string
	for _, role := range roles {
		if strings.EqualFold(role.Name, r.roleName) {
			roleID = role.ID
			break
		}
	}
	if roleID == "" {
		r.logger.Warn().
			Str("guild_id", guildID).
			Str("role", r.roleName).
			Msg("player role not found in guild")
		return nil, nil
	}

	members, err := r.members(guildID)
	if err != nil {
		return nil, err
	}

	var players []flow.Player
	for _, m := range members {
		if m.User == nil || m.User.Bot {
			continue
		}
		for _, id := range m.Roles {
			if id == roleID {
				players = append(players, flow.Player{
					ID:   m.User.ID,
					Name: m.DisplayName(),
				})
				break
			}
		}
	}

	sort.Slice(players, func(i, j int) bool { return players[i].Name < players[j].Name })
	return players, nil
}

// members prefers the gateway state cache and falls back to the REST list.
func (r *GuildRoster) members(guildID string) ([]*discordgo.Member, error) {
	if guild, err := r.session.State.Guild(guildID); err == nil && len(guild.Members) > 0 {
		return guild.Members, nil
	}

	members, err := r.session.GuildMembers(guildID, "", 1000)
	if err != nil {
		return nil, fmt.Errorf("failed to list guild members: %w", err)
	}
	return members, nil
}
