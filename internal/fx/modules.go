package fx

import (
	"mestre-tatu/internal/bot"
	"mestre-tatu/internal/chart"
	"mestre-tatu/internal/config"
	"mestre-tatu/internal/database"
	"mestre-tatu/internal/flow"
	"mestre-tatu/internal/logger"
	"mestre-tatu/internal/repository"
	"mestre-tatu/internal/server"
	"mestre-tatu/internal/service"

	"go.uber.org/fx"
)

func ProvideRoster(roster *bot.GuildRoster) flow.Roster {
	return roster
}

func ProvideRecorder(recorder *service.RecorderService) flow.Recorder {
	return recorder
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewEventRepository),
	fx.Provide(repository.NewSessionMetaRepository),
	fx.Provide(repository.NewRegistryRepository),
	// svc
	fx.Provide(service.NewStatsService),
	fx.Provide(service.NewRecorderService),
	fx.Provide(service.NewSessionService),
	// discord surface
	fx.Provide(bot.NewSession),
	fx.Provide(bot.NewGuildRoster),
	fx.Provide(ProvideRoster),
	fx.Provide(ProvideRecorder),
	fx.Provide(flow.NewManager),
	fx.Provide(chart.NewRenderer),
	fx.Provide(bot.New),
	// http surface
	fx.Provide(server.NewStatsServer),
)
