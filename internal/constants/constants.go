package constants

import "time"

const (
	// FlowSelectTimeout bounds how long a registration flow waits on a
	// button or select-menu step before it expires.
	FlowSelectTimeout = 2 * time.Minute
	// FlowAmountTimeout bounds the wait for the typed numeric reply.
	FlowAmountTimeout = 60 * time.Second
	// FlowSweepInterval is how often expired flows are collected.
	FlowSweepInterval = 15 * time.Second
)

const (
	DatabaseTimeout = 5 * time.Second
	RequestTimeout  = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// DefaultSessionNumber is the registry value assumed for a guild that
	// never ran setsession.
	DefaultSessionNumber = 1

	// MaxSelectPlayers caps the player select menu; Discord allows at most
	// 25 options per select component.
	MaxSelectPlayers = 25
)
