package pipeline

import (
	"log/slog"

	"glossaudio/internal/cdrstore"
	"glossaudio/internal/config"
	"glossaudio/internal/media/probe"
)

// FromConfig builds a pipeline backed by store, using the configured probe
// backend. The store's user is the session account.
func FromConfig(cfg *config.Config, store *cdrstore.Store, logger *slog.Logger) (*Pipeline, error) {
	prober, err := probe.New(cfg)
	if err != nil {
		return nil, err
	}
	return New(Dependencies{
		Session:  store,
		Docs:     store,
		Settings: store,
		Links:    store,
		Prober:   prober,
		Logger:   logger,
	}, OptionsFromConfig(cfg)), nil
}
