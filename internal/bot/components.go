package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"mestre-tatu/internal/domain"
	"mestre-tatu/internal/flow"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	parts := strings.Split(i.MessageComponentData().CustomID, ":")
	if len(parts) < 3 || parts[0] != "tatu" {
		return
	}

	ctx := context.Background()
	switch parts[1] {
	case "flow":
		b.handleFlowComponent(ctx, s, i, parts)
	case "stats":
		b.handleStatsSelect(ctx, s, i, parts[2])
	case "sessao":
		b.handleSessionSelect(ctx, s, i, parts[2])
	}
}

// handleFlowComponent routes flow button presses and player selections:
// tatu:flow:<id>:action:<action> and tatu:flow:<id>:player.
func (b *Bot) handleFlowComponent(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, parts []string) {
	if len(parts) < 4 {
		return
	}
	flowID, step := parts[2], parts[3]
	userID := interactionUserID(i)

	// the message carrying the interaction is the flow's UI message
	if i.Message != nil {
		b.flows.BindMessage(flowID, i.Message.ID)
	}

	var (
		res *flow.StepResult
		err error
	)
	switch step {
	case "action":
		if len(parts) < 5 {
			return
		}
		res, err = b.flows.ChooseAction(ctx, flowID, userID, domain.Action(parts[4]))
	case "player":
		values := i.MessageComponentData().Values
		if len(values) == 0 {
			return
		}
		res, err = b.flows.ChoosePlayer(ctx, flowID, userID, values[0])
	default:
		return
	}

	if err != nil {
		b.respondFlowError(s, i, err)
		return
	}

	switch res.Kind {
	case flow.ResultPromptPlayer:
		b.updateMessage(s, i,
			flowEmbed(actionPrompt[res.Action], colorBlue),
			playerSelect(fmt.Sprintf("tatu:flow:%s:player", res.FlowID), "Selecione o jogador...", res.Players),
		)
	case flow.ResultPromptAmount:
		b.updateMessage(s, i, amountPromptEmbed(res), []discordgo.MessageComponent{})
	case flow.ResultRecorded:
		b.updateMessage(s, i, recordedEmbed(res), []discordgo.MessageComponent{})
	}
}

func (b *Bot) respondFlowError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	switch {
	case errors.Is(err, flow.ErrNotFlowOwner):
		b.respondEphemeral(s, i, msgOnlyOwner)
	case errors.Is(err, flow.ErrUnknownFlow):
		b.updateMessage(s, i, flowEmbed(msgExpired, colorOrange), []discordgo.MessageComponent{})
	case errors.Is(err, domain.ErrNoEligiblePlayers):
		b.updateMessage(s, i, flowEmbed(fmt.Sprintf(
			"Não encontrei nenhum membro com o cargo '%s'. Crie o cargo e atribua-o aos jogadores.",
			b.cfg.PlayerRole), colorRed), []discordgo.MessageComponent{})
	case errors.Is(err, flow.ErrBadTransition), errors.Is(err, flow.ErrUnknownPlayer):
		b.respondEphemeral(s, i, "Essa interação não é mais válida.")
	default:
		b.logger.Error().Err(err).Msg("registration flow failed")
		b.updateMessage(s, i, flowEmbed(msgStorageFailure, colorRed), []discordgo.MessageComponent{})
	}
}

// handleStatsSelect resolves a player pick from the totals viewer:
// tatu:stats:<authorID>.
func (b *Bot) handleStatsSelect(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, authorID string) {
	if interactionUserID(i) != authorID {
		b.respondEphemeral(s, i, msgOnlyOwner)
		return
	}
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return
	}
	playerID := values[0]

	totals, err := b.stats.PlayerTotals(ctx, i.GuildID, playerID)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to compute player totals")
		b.respondEphemeral(s, i, msgStorageFailure)
		return
	}

	name, avatarURL := playerID, ""
	if member, err := s.GuildMember(i.GuildID, playerID); err == nil {
		name = member.DisplayName()
		avatarURL = member.AvatarURL("")
	}

	b.updateMessage(s, i, totalsEmbed(name, avatarURL, totals), []discordgo.MessageComponent{})
}

// handleSessionSelect resolves a session pick from the session viewer:
// tatu:sessao:<authorID>. When chart rendering is available the summary is
// sent with the dashboard attached; otherwise text-only.
func (b *Bot) handleSessionSelect(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, authorID string) {
	if interactionUserID(i) != authorID {
		b.respondEphemeral(s, i, msgOnlyOwner)
		return
	}
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return
	}
	number, err := strconv.Atoi(values[0])
	if err != nil {
		return
	}

	summary, err := b.stats.SessionSummary(ctx, i.GuildID, number)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to compute session summary")
		b.respondEphemeral(s, i, msgStorageFailure)
		return
	}
	meta, err := b.sessions.Meta(ctx, i.GuildID, number)
	if err != nil {
		b.logger.Warn().Err(err).Msg("failed to load session meta")
	}

	embed := sessionSummaryEmbed(summary, meta)
	response := &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{},
	}

	if b.charts.Enabled() && len(summary.Players) > 0 {
		if png, chartErr := b.charts.SessionChart(summary); chartErr == nil {
			filename := fmt.Sprintf("dashboard_session_%d.png", number)
			embed.Image = &discordgo.MessageEmbedImage{URL: "attachment://" + filename}
			response.Files = []*discordgo.File{{
				Name:        filename,
				ContentType: "image/png",
				Reader:      bytes.NewReader(png),
			}}
		} else {
			b.logger.Warn().Err(chartErr).Int("session", number).Msg("failed to render session chart")
		}
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: response,
	})
	if err != nil {
		b.logger.Warn().Err(err).Msg("failed to respond to session select")
	}
}

func (b *Bot) updateMessage(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
	if err != nil {
		b.logger.Warn().Err(err).Msg("failed to update interaction message")
	}
}

func (b *Bot) respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Warn().Err(err).Msg("failed to send ephemeral reply")
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
