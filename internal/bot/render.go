package bot

import (
	"fmt"
	"strings"

	"mestre-tatu/internal/domain"
	"mestre-tatu/internal/flow"

	"github.com/bwmarrin/discordgo"
)

const (
	colorBlue   = 0x3498DB
	colorGreen  = 0x2ECC71
	colorRed    = 0xE74C3C
	colorOrange = 0xE67E22
	colorGold   = 0xF1C40F
	colorPurple = 0x9B59B6
)

const (
	msgOnlyOwner      = "Apenas quem iniciou o comando pode interagir com ele."
	msgStorageFailure = "🔥 Ocorreu um erro ao acessar os registros. Tente novamente."
	msgExpired        = "Este menu expirou."
	msgNoPermission   = "🚫 Você não tem permissão para usar este comando."
)

var actionEmoji = map[domain.Action]string{
	domain.ActionDamageDealt: "⚔️",
	domain.ActionDamageTaken: "🛡️",
	domain.ActionHealing:     "❤️",
	domain.ActionCritSuccess: "✨",
	domain.ActionCritFailure: "💥",
	domain.ActionPlayerDown:  "💀",
	domain.ActionElimination: "🎯",
}

var actionPrompt = map[domain.Action]string{
	domain.ActionDamageDealt: "Dano **causado**. Agora, selecione o jogador:",
	domain.ActionDamageTaken: "Dano **recebido**. Agora, selecione o jogador:",
	domain.ActionHealing:     "Cura **realizada**. Agora, selecione o jogador:",
	domain.ActionCritSuccess: "Um **sucesso crítico**! Selecione o jogador:",
	domain.ActionCritFailure: "Uma **falha crítica**! Selecione o jogador:",
	domain.ActionPlayerDown:  "Um jogador **caiu em combate** (HP 0). Selecione o jogador:",
	domain.ActionElimination: "Um inimigo foi **eliminado**. Selecione o jogador responsável:",
}

var eventConfirmation = map[domain.Action]string{
	domain.ActionCritSuccess: "teve um **Sucesso Crítico**",
	domain.ActionCritFailure: "teve uma **Falha Crítica**",
	domain.ActionPlayerDown:  "**caiu em combate** (HP 0)",
	domain.ActionElimination: "**eliminou um inimigo**",
}

func flowEmbed(description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Registro de Evento de Sessão",
		Description: description,
		Color:       color,
	}
}

// actionButtons builds the seven action buttons of a fresh flow, laid out in
// three rows like the original menu.
func actionButtons(flowID string) []discordgo.MessageComponent {
	button := func(action domain.Action, style discordgo.ButtonStyle) discordgo.Button {
		return discordgo.Button{
			Label:    action.Label(),
			Style:    style,
			CustomID: fmt.Sprintf("tatu:flow:%s:action:%s", flowID, action),
		}
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			button(domain.ActionDamageDealt, discordgo.SuccessButton),
			button(domain.ActionDamageTaken, discordgo.DangerButton),
			button(domain.ActionHealing, discordgo.PrimaryButton),
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			button(domain.ActionCritSuccess, discordgo.SuccessButton),
			button(domain.ActionCritFailure, discordgo.DangerButton),
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			button(domain.ActionPlayerDown, discordgo.DangerButton),
			button(domain.ActionElimination, discordgo.SuccessButton),
		}},
	}
}

func playerSelect(customID, placeholder string, players []flow.Player) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(players))
	for _, p := range players {
		options = append(options, discordgo.SelectMenuOption{
			Label: p.Name,
			Value: p.ID,
		})
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    customID,
				Placeholder: placeholder,
				Options:     options,
			},
		}},
	}
}

func sessionSelect(customID string, sessions []int) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(sessions))
	for _, n := range sessions {
		options = append(options, discordgo.SelectMenuOption{
			Label: fmt.Sprintf("Sessão %d", n),
			Value: fmt.Sprintf("%d", n),
		})
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    customID,
				Placeholder: "Selecione uma sessão para ver os detalhes...",
				Options:     options,
			},
		}},
	}
}

func totalsEmbed(playerName, avatarURL string, totals domain.PlayerTotals) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Estatísticas Totais de %s", playerName),
		Color: colorGold,
	}
	if avatarURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: avatarURL}
	}
	for _, action := range domain.Actions() {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("%s %s", actionEmoji[action], action.Label()),
			Value:  fmt.Sprintf("`%d`", totals[action]),
			Inline: true,
		})
	}
	return embed
}

func sessionSummaryEmbed(summary *domain.SessionSummary, meta *domain.SessionMeta) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Estatísticas da Sessão %d", summary.SessionNumber),
		Color: colorPurple,
	}
	if meta != nil {
		if meta.Title != "" {
			embed.Title = fmt.Sprintf("Estatísticas da Sessão %d — %s", summary.SessionNumber, meta.Title)
		}
		if meta.Description != "" {
			embed.Description = meta.Description
		}
	}

	general := fmt.Sprintf(
		"⚔️ **Dano Total:** `%d`\n"+
			"❤️ **Cura Total:** `%d`\n"+
			"🎯 **Eliminações:** `%d`\n"+
			"💀 **Quedas:** `%d`\n"+
			"✨ **Críticos (Sucesso):** `%d`\n"+
			"💥 **Críticos (Falha):** `%d`",
		summary.Totals[domain.ActionDamageDealt],
		summary.Totals[domain.ActionHealing],
		summary.Totals[domain.ActionElimination],
		summary.Totals[domain.ActionPlayerDown],
		summary.Totals[domain.ActionCritSuccess],
		summary.Totals[domain.ActionCritFailure],
	)
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "Resumo Geral da Sessão",
		Value: general,
	})

	if len(summary.Players) > 0 {
		var lines []string
		for _, p := range summary.Players {
			lines = append(lines, fmt.Sprintf(
				"**%s**:\n"+
					"> Dano: `%d` | Cura: `%d` | Kills: `%d`\n"+
					"> Quedas: `%d` | Crits: `%d` | Fails: `%d`",
				p.PlayerName,
				p.Totals[domain.ActionDamageDealt],
				p.Totals[domain.ActionHealing],
				p.Totals[domain.ActionElimination],
				p.Totals[domain.ActionPlayerDown],
				p.Totals[domain.ActionCritSuccess],
				p.Totals[domain.ActionCritFailure],
			))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Desempenho dos Jogadores",
			Value: strings.Join(lines, "\n"),
		})
	}
	return embed
}

func recordsEmbed(records map[domain.Action][]domain.RecordHolder) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "🏆 Recordes da Campanha",
		Description: "Os maiores feitos registrados até hoje. Empates compartilham o recorde.",
		Color:       colorGold,
	}
	for _, action := range domain.Actions() {
		holders := records[action]
		value := "— sem registros ainda"
		if len(holders) > 0 {
			var names []string
			for _, h := range holders {
				names = append(names, fmt.Sprintf("**%s**", h.PlayerName))
			}
			value = fmt.Sprintf("%s (`%d`)", strings.Join(names, ", "), holders[0].Total)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("%s %s", actionEmoji[action], action.Label()),
			Value:  value,
			Inline: true,
		})
	}
	return embed
}

// recordedEmbed is the green confirmation shown when a flow completes.
func recordedEmbed(res *flow.StepResult) *discordgo.MessageEmbed {
	var text string
	if res.Action.BearsAmount() {
		text = fmt.Sprintf("✅ Registrado: **%s** — **%d** de %s.",
			res.Player.Name, res.Event.Amount, strings.ToLower(res.Action.Label()))
	} else {
		text = fmt.Sprintf("✅ Registrado: **%s** %s.", res.Player.Name, eventConfirmation[res.Action])
	}
	return flowEmbed(text, colorGreen)
}

func amountPromptEmbed(res *flow.StepResult) *discordgo.MessageEmbed {
	return flowEmbed(fmt.Sprintf(
		"Qual foi o valor de **%s** para **%s**? Digite apenas o número.",
		strings.ToLower(res.Action.Label()), res.Player.Name,
	), colorBlue)
}
