package history

import (
	"log/slog"

	"github.com/stacklok/mbean-bridge/internal/config"
)

// NewSink opens the configured history store, or a NopSink when history is disabled.
func NewSink(cfg *config.Config) (Sink, error) {
	if !cfg.IsHistoryEnabled() {
		slog.Info("Property history disabled")
		return NopSink{}, nil
	}

	path := cfg.GetHistoryPath()
	sink, err := OpenBadgerSink(path)
	if err != nil {
		return nil, err
	}
	slog.Info("Property history enabled", "path", path)
	return sink, nil
}
