package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dvloznov/lifeos/internal/assistant"
	"github.com/dvloznov/lifeos/internal/config"
	"github.com/dvloznov/lifeos/internal/gcs"
	"github.com/dvloznov/lifeos/internal/ledger"
	"github.com/dvloznov/lifeos/internal/notionsync"
	"github.com/dvloznov/lifeos/internal/store"
	"github.com/dvloznov/lifeos/internal/warehouse"
)

// Runtime is an App together with the clients it was opened with.
type Runtime struct {
	*App
	Reports []store.Report

	closers []func() error
}

// Open builds an App from configuration. Integrations without credentials are left
// disabled and report ErrNotConfigured when used.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Runtime, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}

	var kv store.KV
	switch cfg.Store.Kind {
	case config.StoreMemory:
		kv = store.NewMemoryKV(nil)
	default:
		kv, err = store.OpenBolt(cfg.Store.DBPath)
		if err != nil {
			return nil, fmt.Errorf("Open: %w", err)
		}
	}

	sections, err := config.LoadSections(cfg.Sections)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.Sections).Msg("Failed to load section keywords, using defaults")
		sections = config.DefaultSections()
	}

	rt := &Runtime{}
	deps := Deps{
		Store:          store.New(kv, log),
		Ledger:         ledger.NewEngine(loc),
		Sections:       sections,
		Log:            log,
		NetworkTimeout: cfg.Network.Timeout,
	}

	var asker assistant.Asker
	if cfg.Gemini.APIKey != "" {
		g, err := assistant.NewGeminiAsker(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.Warn().Err(err).Msg("Gemini unavailable, assistant will reply offline")
		} else {
			asker = g
		}
	}
	deps.Assistant = assistant.NewService(asker, cfg.Network.Timeout, log)

	if cfg.GCS.Bucket != "" {
		client, err := gcs.NewClient(ctx, cfg.GCS.Bucket, cfg.GCS.Prefix, cfg.CredsFile)
		if err != nil {
			log.Warn().Err(err).Str("bucket", cfg.GCS.Bucket).Msg("Remote storage unavailable, sync disabled")
		} else {
			deps.Blobs = client
			rt.closers = append(rt.closers, client.Close)
		}
	}

	if cfg.BigQuery.Project != "" {
		client, err := warehouse.NewClient(ctx, cfg.BigQuery.Project, cfg.BigQuery.Dataset, cfg.CredsFile)
		if err != nil {
			log.Warn().Err(err).Str("project", cfg.BigQuery.Project).Msg("BigQuery unavailable, ledger export disabled")
		} else {
			deps.Warehouse = client.Exporter(cfg.UserID)
			rt.closers = append(rt.closers, client.Close)
		}
	}

	if cfg.Notion.Token != "" && cfg.Notion.NotesDBID != "" {
		deps.Notion = notionsync.NewClient(cfg.Notion.Token)
		deps.NotionDBID = cfg.Notion.NotesDBID
	}

	rt.App, rt.Reports = New(deps)
	return rt, nil
}

// Close flushes and closes the App, then the integration clients.
func (rt *Runtime) Close() error {
	errs := []error{rt.App.Close()}
	for _, c := range rt.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
