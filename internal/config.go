package internal

import (
	"chat-session/commands"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

type Config struct {
	DefaultNick       string        `env:"DEFAULT_NICK,default=guest" validate:"required,max=32,excludesall=<>#/"`
	DefaultChannel    string        `env:"DEFAULT_CHANNEL,default=#welcome" validate:"required,startswith=#,min=2"`
	LimitMessages     *int          `env:"LIMIT_MESSAGES"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,default=5s" validate:"gt=0"`
	LoopBufferSize    int           `env:"LOOP_BUFFER_SIZE,default=256" validate:"gt=0"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gt=0"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,default=./data/badger"`
	BlugeFilepath     string        `env:"BLUGE_FILEPATH,default=./data/bluge"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR"`
	RemoteCommands    string        `env:"REMOTE_COMMANDS,default=sysmsg topic"`
	LegacyPeers       bool          `env:"LEGACY_PEERS,default=false"`
	Colours           bool          `env:"COLOURS,default=true"`
	HubAddress        string        `env:"HUB_ADDRESS"`
	HubListenAddress  string        `env:"HUB_LISTEN_ADDRESS,default=0.0.0.0:50051" validate:"required,hostname_port"`
	HubTimeout        time.Duration `env:"HUB_TIMEOUT,default=5s" validate:"gt=0"`
	HubStreamBuffer   int           `env:"HUB_STREAM_BUFFER,default=64" validate:"gt=0"`
}

// Validate checks the loaded values.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.LimitMessages != nil && *c.LimitMessages <= 0 {
		return fmt.Errorf("invalid config: LIMIT_MESSAGES must be positive, got %d", *c.LimitMessages)
	}
	return nil
}

// Whitelist returns the commands accepted from peers.
// REMOTE_COMMANDS can only narrow the fixed remote set, legacy peers only
// ever accept sysmsg.
func (c Config) Whitelist() []string {
	if c.LegacyPeers {
		return commands.LegacyRemoteCommands
	}
	return lo.Filter(lo.Uniq(strings.Fields(c.RemoteCommands)), func(name string, _ int) bool {
		return lo.Contains(commands.RemoteCommands, name)
	})
}
