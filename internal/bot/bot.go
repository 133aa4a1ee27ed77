package bot

import (
	"fmt"
	"time"

	"mestre-tatu/internal/chart"
	"mestre-tatu/internal/config"
	"mestre-tatu/internal/constants"
	"mestre-tatu/internal/flow"
	"mestre-tatu/internal/repository"
	"mestre-tatu/internal/service"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// NewSession builds the gateway session. Members and message content are
// needed for role-based rosters and the typed amount replies.
func NewSession(cfg *config.Config) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentMessageContent

	return session, nil
}

// Bot wires the Discord surface to the statistics services: prefix commands,
// the component-driven registration flow and the viewer menus.
type Bot struct {
	cfg      *config.Config
	logger   zerolog.Logger
	session  *discordgo.Session
	flows    *flow.Manager
	roster   *GuildRoster
	stats    *service.StatsService
	sessions *service.SessionService
	events   *repository.EventRepository
	charts   *chart.Renderer

	stopSweep chan struct{}
}

func New(
	session *discordgo.Session,
	cfg *config.Config,
	flows *flow.Manager,
	roster *GuildRoster,
	stats *service.StatsService,
	sessions *service.SessionService,
	events *repository.EventRepository,
	charts *chart.Renderer,
	logger zerolog.Logger,
) *Bot {
	b := &Bot{
		cfg:       cfg,
		logger:    logger,
		session:   session,
		flows:     flows,
		roster:    roster,
		stats:     stats,
		sessions:  sessions,
		events:    events,
		charts:    charts,
		stopSweep: make(chan struct{}),
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessageCreate)
	session.AddHandler(b.onInteractionCreate)

	return b
}

// Open connects to the gateway and starts the flow expiry sweeper.
func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord connection: %w", err)
	}
	go b.sweepLoop()
	return nil
}

// Close stops the sweeper and closes the gateway connection.
func (b *Bot) Close() error {
	close(b.stopSweep)
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("failed to close discord connection: %w", err)
	}
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	b.logger.Info().
		Str("user", s.State.User.Username).
		Msg("discord connection ready")

	if err := s.UpdateGameStatus(0, "rolando dados | .log"); err != nil {
		b.logger.Warn().Err(err).Msg("failed to update game status")
	}
}

// sweepLoop disables the UI of flows whose bounded wait elapsed. Expired
// flows never touch the store; the sweep only edits messages.
func (b *Bot) sweepLoop() {
	ticker := time.NewTicker(constants.FlowSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopSweep:
			return
		case now := <-ticker.C:
			for _, expired := range b.flows.CollectExpired(now) {
				if expired.MessageID == "" {
					continue
				}
				embed := flowEmbed(msgExpired, colorOrange)
				_, err := b.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
					Channel:    expired.ChannelID,
					ID:         expired.MessageID,
					Embeds:     &[]*discordgo.MessageEmbed{embed},
					Components: &[]discordgo.MessageComponent{},
				})
				if err != nil {
					b.logger.Warn().Err(err).
						Str("flow_id", expired.FlowID).
						Msg("failed to disable expired flow message")
				}
			}
		}
	}
}
