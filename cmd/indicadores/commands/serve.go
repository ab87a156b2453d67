package commands

import (
	"context"
	"errors"
	"indicadores-backend/internal/api"
	"indicadores-backend/internal/chrono"
	"indicadores-backend/internal/service"
	"indicadores-backend/lib/serviceutil"
	"indicadores-backend/lib/telemetry"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

const report_scheduled_update = "scheduled-update"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the indicators over http, updating them on the configured schedule.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		err = telemetry.InstrumentPerfStats(ctx, 30*time.Second)
		if err != nil {
			a.tel.ReportWarning("perf-stats", err)
		}

		if a.config.Schedule != "" {
			cron := chrono.NewStandardCron(a.time, a.tel)
			defer func() {
				<-cron.Stop().Done()
			}()
			err = cron.Cron(a.config.Schedule, func() {
				scheduledUpdate(ctx, a)
			})
			if err != nil {
				return err
			}
			slog.Info("scheduled updates", "spec", a.config.Schedule, "timezone", a.config.Timezone)
		}

		router := api.NewRouter(a.service, a.config.DonationURL, a.tel)
		return serviceutil.StartHttpServer(ctx, a.config.Port, router)
	},
}

func scheduledUpdate(ctx context.Context, a app) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	summary, err := a.service.UpdateAll(ctx)
	if errors.Is(err, service.ErrNoData) {
		a.tel.ReportWarning(report_scheduled_update, err)
		return
	}
	if err != nil {
		a.tel.ReportBroken(report_scheduled_update, err)
		return
	}
	slog.Info("scheduled update finished", "total", summary.Total, "inserted", summary.Inserted)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
