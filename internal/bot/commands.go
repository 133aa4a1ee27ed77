package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"mestre-tatu/internal/domain"
	"mestre-tatu/internal/flow"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	ctx := context.Background()

	// a flow parked on AwaitingAmount gets first claim on the message
	res, consumed, err := b.flows.HandleMessage(ctx, m.GuildID, m.ChannelID, m.Author.ID, m.Content)
	if consumed {
		if err != nil {
			b.logger.Error().Err(err).Msg("failed to record amount reply")
			b.send(m.ChannelID, msgStorageFailure)
			return
		}
		b.finishAmountFlow(s, m, res)
		return
	}

	if !strings.HasPrefix(m.Content, b.cfg.CommandPrefix) {
		return
	}
	fields := strings.Fields(strings.TrimPrefix(m.Content, b.cfg.CommandPrefix))
	if len(fields) == 0 {
		return
	}
	command, args := strings.ToLower(fields[0]), fields[1:]

	switch command {
	case "log", "dano":
		b.handleLog(s, m)
	case "stats", "estatisticas":
		b.handleStats(ctx, s, m)
	case "sessionstats", "sessao":
		b.handleSessionStats(ctx, s, m)
	case "setsession":
		b.handleSetSession(ctx, s, m, args)
	case "encerrar", "closesession":
		b.handleCloseSession(ctx, s, m, args)
	case "recordes", "records":
		b.handleRecords(ctx, m)
	case "sessionlogs":
		b.handleSessionLogs(ctx, m, args)
	case "dellog":
		b.handleDelLog(ctx, m, args)
	}
}

// handleLog opens the interactive registration flow.
func (b *Bot) handleLog(_ *discordgo.Session, m *discordgo.MessageCreate) {
	f, err := b.flows.Start(m.GuildID, m.ChannelID, m.Author.ID)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to start registration flow")
		b.send(m.ChannelID, msgStorageFailure)
		return
	}

	msg, err := b.session.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{flowEmbed("Selecione o tipo de evento que deseja registrar:", colorBlue)},
		Components: actionButtons(f.ID()),
	})
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to send flow menu")
		return
	}
	b.flows.BindMessage(f.ID(), msg.ID)
}

// handleStats opens the player picker for lifetime totals.
func (b *Bot) handleStats(ctx context.Context, _ *discordgo.Session, m *discordgo.MessageCreate) {
	players, err := b.roster.EligiblePlayers(ctx, m.GuildID)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to list eligible players")
		b.send(m.ChannelID, msgStorageFailure)
		return
	}
	if len(players) == 0 {
		b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
			Title: "Visualizador de Estatísticas",
			Description: fmt.Sprintf(
				"Não encontrei nenhum membro com o cargo '%s'.\nCrie o cargo e atribua-o aos jogadores para usar este comando.",
				b.cfg.PlayerRole),
			Color: colorRed,
		})
		return
	}

	_, err = b.session.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "Visualizador de Estatísticas",
			Description: "Selecione um jogador no menu abaixo para ver suas estatísticas totais.",
			Color:       colorGold,
		}},
		Components: playerSelect(
			fmt.Sprintf("tatu:stats:%s", m.Author.ID),
			"Selecione um jogador para ver as estatísticas...",
			players,
		),
	})
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to send stats menu")
	}
}

// handleSessionStats opens the session picker for a per-session breakdown.
func (b *Bot) handleSessionStats(ctx context.Context, _ *discordgo.Session, m *discordgo.MessageCreate) {
	sessions, err := b.sessions.AvailableSessions(ctx, m.GuildID)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to list sessions")
		b.send(m.ChannelID, msgStorageFailure)
		return
	}
	if len(sessions) == 0 {
		b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
			Title:       "Visualizador de Estatísticas de Sessão",
			Description: "Nenhum dado de sessão foi registrado neste servidor ainda. Use o comando `.log` para começar.",
			Color:       colorRed,
		})
		return
	}

	_, err = b.session.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "Visualizador de Estatísticas de Sessão",
			Description: "Selecione uma sessão no menu abaixo para ver seus detalhes.",
			Color:       colorPurple,
		}},
		Components: sessionSelect(fmt.Sprintf("tatu:sessao:%s", m.Author.ID), sessions),
	})
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to send session menu")
	}
}

// handleSetSession moves the guild's active session pointer. Restricted to
// members with Manage Server.
func (b *Bot) handleSetSession(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if !b.hasManageGuild(s, m) {
		b.send(m.ChannelID, msgNoPermission)
		return
	}
	if len(args) < 1 {
		b.send(m.ChannelID, fmt.Sprintf("🤔 Uso: `%ssetsession <número>`", b.cfg.CommandPrefix))
		return
	}
	number, err := strconv.Atoi(args[0])
	if err != nil {
		b.send(m.ChannelID, "🤔 O número da sessão deve ser um número inteiro.")
		return
	}

	if err := b.sessions.SetCurrent(ctx, m.GuildID, number); err != nil {
		if err == domain.ErrInvalidSession {
			b.send(m.ChannelID, "O número da sessão deve ser maior que zero.")
			return
		}
		b.logger.Error().Err(err).Msg("failed to set current session")
		b.send(m.ChannelID, msgStorageFailure)
		return
	}

	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title:       "Sessão Atualizada",
		Description: fmt.Sprintf("A sessão ativa para registro de eventos foi definida como **Sessão %d**.", number),
		Color:       colorPurple,
	})
}

// handleCloseSession records the closing summary of a session:
// .encerrar <número> <título> | <resumo>
func (b *Bot) handleCloseSession(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if !b.hasManageGuild(s, m) {
		b.send(m.ChannelID, msgNoPermission)
		return
	}
	if len(args) < 1 {
		b.send(m.ChannelID, fmt.Sprintf("🤔 Uso: `%sencerrar <número> <título> | <resumo>`", b.cfg.CommandPrefix))
		return
	}
	number, err := strconv.Atoi(args[0])
	if err != nil {
		b.send(m.ChannelID, "🤔 O número da sessão deve ser um número inteiro.")
		return
	}

	title, description := "", ""
	if len(args) > 1 {
		rest := strings.Join(args[1:], " ")
		if before, after, found := strings.Cut(rest, "|"); found {
			title = strings.TrimSpace(before)
			description = strings.TrimSpace(after)
		} else {
			title = strings.TrimSpace(rest)
		}
	}

	if err := b.sessions.Close(ctx, m.GuildID, number, title, description); err != nil {
		if err == domain.ErrInvalidSession {
			b.send(m.ChannelID, "O número da sessão deve ser maior que zero.")
			return
		}
		b.logger.Error().Err(err).Msg("failed to close session")
		b.send(m.ChannelID, msgStorageFailure)
		return
	}

	desc := fmt.Sprintf("A **Sessão %d** foi encerrada.", number)
	if title != "" {
		desc = fmt.Sprintf("A **Sessão %d — %s** foi encerrada.", number, title)
	}
	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title:       "Sessão Encerrada",
		Description: desc,
		Color:       colorGreen,
	})
}

// handleRecords renders the record holder of every action, ties included.
func (b *Bot) handleRecords(ctx context.Context, m *discordgo.MessageCreate) {
	records, err := b.stats.Records(ctx, m.GuildID)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to compute records")
		b.send(m.ChannelID, msgStorageFailure)
		return
	}
	b.sendEmbed(m.ChannelID, recordsEmbed(records))
}

// handleSessionLogs lists every stored row of one session with its id, so a
// bad entry can be removed with dellog. Owner only.
func (b *Bot) handleSessionLogs(ctx context.Context, m *discordgo.MessageCreate, args []string) {
	if m.Author.ID != b.cfg.OwnerID {
		b.send(m.ChannelID, msgNoPermission)
		return
	}
	if len(args) < 1 {
		b.send(m.ChannelID, fmt.Sprintf("🤔 Uso: `%ssessionlogs <número>`", b.cfg.CommandPrefix))
		return
	}
	number, err := strconv.Atoi(args[0])
	if err != nil {
		b.send(m.ChannelID, "🤔 O ID fornecido deve ser um número inteiro.")
		return
	}

	events, err := b.events.EventsForSession(ctx, m.GuildID, number)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to list session logs")
		b.send(m.ChannelID, msgStorageFailure)
		return
	}
	if len(events) == 0 {
		b.send(m.ChannelID, fmt.Sprintf("Nenhum log encontrado para a sessão `%d`.", number))
		return
	}

	lines := []string{fmt.Sprintf("**📜 Logs da Sessão `%d`**\n---", number)}
	for _, e := range events {
		lines = append(lines, fmt.Sprintf(
			"**ID do Log: `%d`** | `%s` | **%s** - `%s: %d`",
			e.ID, e.Timestamp.Format("02/01 15:04"), e.PlayerName, e.Action.Label(), e.Amount,
		))
	}
	for _, page := range paginate(lines, 2000) {
		b.send(m.ChannelID, page)
	}
}

// handleDelLog permanently removes one stored row by id. Owner only.
func (b *Bot) handleDelLog(ctx context.Context, m *discordgo.MessageCreate, args []string) {
	if m.Author.ID != b.cfg.OwnerID {
		b.send(m.ChannelID, msgNoPermission)
		return
	}
	if len(args) < 1 {
		b.send(m.ChannelID, fmt.Sprintf("🤔 Uso: `%sdellog <id>`", b.cfg.CommandPrefix))
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.send(m.ChannelID, "🤔 O ID fornecido deve ser um número inteiro.")
		return
	}

	deleted, err := b.events.DeleteByID(ctx, id)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to delete log entry")
		b.send(m.ChannelID, msgStorageFailure)
		return
	}
	if !deleted {
		b.send(m.ChannelID, fmt.Sprintf("❌ Erro: Nenhuma entrada de log encontrada com o ID `%d`.", id))
		return
	}
	b.send(m.ChannelID, fmt.Sprintf("✅ Sucesso! A entrada de log com ID `%d` foi permanentemente deletada.", id))
}

// finishAmountFlow confirms a completed amount flow: edits the menu message
// and clears the typed reply so the channel stays tidy.
func (b *Bot) finishAmountFlow(s *discordgo.Session, m *discordgo.MessageCreate, res *flow.StepResult) {
	if res.MessageID != "" {
		_, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel:    res.ChannelID,
			ID:         res.MessageID,
			Embeds:     &[]*discordgo.MessageEmbed{recordedEmbed(res)},
			Components: &[]discordgo.MessageComponent{},
		})
		if err != nil {
			b.logger.Warn().Err(err).Msg("failed to edit flow message")
		}
	}
	if err := s.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
		// missing Manage Messages permission, not worth surfacing
		b.logger.Debug().Err(err).Msg("could not delete amount reply")
	}
}

func (b *Bot) hasManageGuild(s *discordgo.Session, m *discordgo.MessageCreate) bool {
	perms, err := s.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		b.logger.Warn().Err(err).Msg("failed to resolve permissions")
		return false
	}
	return perms&discordgo.PermissionManageGuild != 0
}

func (b *Bot) send(channelID, content string) {
	if _, err := b.session.ChannelMessageSend(channelID, content); err != nil {
		b.logger.Warn().Err(err).Msg("failed to send message")
	}
}

func (b *Bot) sendEmbed(channelID string, embed *discordgo.MessageEmbed) {
	if _, err := b.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		b.logger.Warn().Err(err).Msg("failed to send embed")
	}
}

func paginate(lines []string, limit int) []string {
	var pages []string
	var current strings.Builder
	for _, line := range lines {
		if current.Len()+len(line)+1 > limit {
			pages = append(pages, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		pages = append(pages, current.String())
	}
	return pages
}
