package abuseguard

import "time"

type Config struct {
	// MaxCommands is how many non-blocked events a user may produce within one
	// counting window. The event that pushes the counter past this threshold
	// triggers a hard block.
	MaxCommands int

	// BlockDuration is the length of a hard block.
	BlockDuration time.Duration

	// NotifyWindow suppresses repeated block notices: while a user stays
	// blocked, at most one notice is emitted per window.
	NotifyWindow time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxCommands:   5,
		BlockDuration: 30 * time.Second,
		NotifyWindow:  10 * time.Second,
	}
}

func normalizeConfig(cfg Config) Config {
	def := DefaultConfig()
	if cfg.MaxCommands <= 0 {
		cfg.MaxCommands = def.MaxCommands
	}
	if cfg.BlockDuration <= 0 {
		cfg.BlockDuration = def.BlockDuration
	}
	if cfg.NotifyWindow <= 0 {
		cfg.NotifyWindow = def.NotifyWindow
	}
	return cfg
}
