package main

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/taskflowr/taskflowr/internal/api"
	"github.com/taskflowr/taskflowr/internal/config"
	"github.com/taskflowr/taskflowr/internal/engine"
	"github.com/taskflowr/taskflowr/internal/events"
	"github.com/taskflowr/taskflowr/internal/session"
	"github.com/taskflowr/taskflowr/internal/tone"
)

// buildEngine assembles the engine and its collaborators from config.
// The returned cleanup closes the store, the emitter, and the event sink.
func buildEngine(cfg *config.Config) (*engine.Engine, *session.Store, func(), error) {
	client, err := api.NewClient(api.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.Anthropic.UseAWSBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create API client: %w", err)
	}
	runner := api.NewRunner(client)

	tones := tone.NewCatalog()
	if cfg.Tone.PresetsPath != "" {
		if err := tones.LoadPresets(cfg.Tone.PresetsPath); err != nil {
			return nil, nil, nil, fmt.Errorf("load tone presets: %w", err)
		}
	}

	dbPath := cfg.Session.DBPath
	if dbPath == "" {
		dbPath = session.DefaultDBPath()
	}
	store, err := session.Open(dbPath, cfg.Session.HistoryLimit)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open session store: %w", err)
	}

	eng := engine.New(cfg, runner, store, tones)

	emitter := events.NewEmitter(cfg.Events.BufferSize)
	eng.SetEmitter(emitter)

	var sink *events.FileSink
	sinkDone := make(chan struct{})
	if cfg.Events.LogPath != "" {
		sink, err = events.NewFileSink(cfg.Events.LogPath)
		if err != nil {
			store.Close()
			return nil, nil, nil, fmt.Errorf("open event log: %w", err)
		}
		go func() {
			sink.Consume(emitter.Events())
			close(sinkDone)
		}()
	} else {
		// Drain so a full buffer never slows the engine down.
		go func() {
			for range emitter.Events() {
			}
			close(sinkDone)
		}()
	}

	cleanup := func() {
		emitter.Close()
		<-sinkDone
		if sink != nil {
			sink.Close()
		}
		store.Close()
	}
	return eng, store, cleanup, nil
}
