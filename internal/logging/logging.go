package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"

	"coffeechat-scheduler/internal/config"
)

// New builds the root logger. Components take named children of it.
func New(cfg config.LoggingConfig, out io.Writer) hclog.Logger {
	if out == nil {
		out = os.Stderr
	}
	level := hclog.LevelFromString(cfg.Level)
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       "coffeechat",
		Level:      level,
		Output:     out,
		JSONFormat: cfg.JSON,
	})
}
