package commands

import (
	"context"
	"database/sql"
	"fmt"
	"indicadores-backend/internal/chrono"
	"indicadores-backend/internal/config"
	"indicadores-backend/internal/scrapers/previred"
	"indicadores-backend/internal/scrapers/sii"
	"indicadores-backend/internal/service"
	"indicadores-backend/internal/store"
	"indicadores-backend/internal/store/cached"
	"indicadores-backend/internal/store/sqlite"
	"indicadores-backend/internal/telemetry"
	"indicadores-backend/lib/restyutil"
	"log/slog"
)

// app is everything a command needs, wired from the configuration.
type app struct {
	config  config.Config
	conn    *sql.DB
	time    chrono.StandardTime
	tel     telemetry.API
	service service.Service
}

func newApp(ctx context.Context) (app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return app{}, err
	}
	tel := telemetry.SlogAPI{Logger: slog.Default().With("timezone", cfg.Timezone)}

	clock, err := chrono.NewStandardTime(cfg.Timezone)
	if err != nil {
		return app{}, fmt.Errorf("load timezone: %w", err)
	}

	var output restyutil.InstrumentOutput
	if dumpDir != "" {
		fsOutput, err := restyutil.NewFilesystemOutput(dumpDir)
		if err != nil {
			return app{}, err
		}
		output = fsOutput
	}

	siiClient, err := sii.NewClient(cfg.ClientOptions(cfg.SII.BaseURL), output, tel)
	if err != nil {
		return app{}, err
	}
	previredOpts := cfg.ClientOptions("")
	previredOpts.BypassCloudflare = cfg.Previred.BypassCloudflare
	previredClient, err := previred.NewClient(cfg.Previred.URL, previredOpts, output, tel)
	if err != nil {
		return app{}, err
	}

	conn, err := cfg.Database.OpenDB()
	if err != nil {
		return app{}, fmt.Errorf("open database: %w", err)
	}
	var st store.Store = sqlite.New(conn, tel)
	err = st.EnsureSchema(ctx)
	if err != nil {
		conn.Close()
		return app{}, err
	}
	if cfg.CacheSeconds > 0 {
		st = cached.New(st, cfg.CacheTTL())
	}

	svc, err := service.NewService(
		st, clock, tel,
		sii.NewSource(siiClient, cfg.SII.Years, tel),
		previred.NewSource(previredClient, tel),
	)
	if err != nil {
		conn.Close()
		return app{}, err
	}

	return app{
		config:  cfg,
		conn:    conn,
		time:    clock,
		tel:     tel,
		service: svc,
	}, nil
}

func (a app) Close() error {
	return a.conn.Close()
}
