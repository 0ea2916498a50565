/*
main.go - Application entry point

PURPOSE:
  Starts the work-time alert service and offers small operator commands
  over the same configuration and database.

COMMANDS:
  serve      Run the HTTP API and background alert scanner
  workdays   Print the workable days between two dates
  alerts     Aggregate a user's year and print the alerts it triggers

CONFIGURATION:
  Defaults < config.yaml (., ./config) < WORKTIME_* env < flags.
  e.g. WORKTIME_DATABASE_PATH=":memory:" WORKTIME_SERVER_PORT=3000

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the alert scanner
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  ./server serve --port=3000 --db=":memory:"
  ./server workdays --start=2025-01-01 --end=2025-01-31
  ./server alerts --user=alice --year=2025
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/warp/worktime-engine/alerts"
	"github.com/warp/worktime-engine/api"
	"github.com/warp/worktime-engine/calendar"
	"github.com/warp/worktime-engine/config"
	"github.com/warp/worktime-engine/store/sqlite"
	"github.com/warp/worktime-engine/worktime"
)

func main() {
	if err := newRootCmd(config.New()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:           "server",
		Short:         "Work-time alert service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("db", "", "SQLite database path (\":memory:\" for in-memory)")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	v.BindPFlag("database.path", root.PersistentFlags().Lookup("db"))
	v.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(newServeCmd(v))
	root.AddCommand(newWorkdaysCmd(v))
	root.AddCommand(newAlertsCmd(v))
	return root
}

// app is everything a command needs, built from configuration.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *sqlite.Store
	service *worktime.Service
}

func newApp(v *viper.Viper) (*app, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	service := worktime.NewService(store, cfg.RoleFilter(),
		worktime.WithWorkday(cfg.WorkdayLength()),
		worktime.WithLogger(logger.Named("worktime")))

	return &app{cfg: cfg, logger: logger, store: store, service: service}, nil
}

func (a *app) Close() {
	a.store.Close()
	a.logger.Sync()
}

// =============================================================================
// SERVE
// =============================================================================

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(v)
			if err != nil {
				return err
			}
			defer a.Close()
			return serve(cmd.Context(), a)
		},
	}
	cmd.Flags().Int("port", 0, "HTTP server port")
	v.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	return cmd
}

func serve(ctx context.Context, a *app) error {
	registry := alerts.DefaultRegistry()
	handler := api.NewHandler(a.store, a.service, registry, a.logger.Named("api"))

	scanner := api.NewAlertScanner(a.store, a.service, registry, a.logger)
	scanner.Interval = a.cfg.Scanner.Interval
	scanner.Enabled = a.cfg.Scanner.Enabled
	handler.Scanner = scanner
	scanner.Start()
	defer scanner.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:      api.NewRouter(handler, a.cfg.Server.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting",
			zap.Int("port", a.cfg.Server.Port),
			zap.String("database", a.cfg.Database.Path))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	a.logger.Info("server stopped")
	return nil
}

// =============================================================================
// WORKDAYS
// =============================================================================

func newWorkdaysCmd(v *viper.Viper) *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "workdays",
		Short: "List workable days in an inclusive date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := calendar.ParseDate(start)
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			to, err := calendar.ParseDate(end)
			if err != nil {
				return fmt.Errorf("--end: %w", err)
			}

			a, err := newApp(v)
			if err != nil {
				return err
			}
			defer a.Close()

			days, err := a.service.WorkableDays(cmd.Context(), from, to)
			if err != nil {
				return err
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"#", "Date", "Weekday"})
			for i, d := range days {
				tw.AppendRow(table.Row{i + 1, d.Format(calendar.DateLayout), d.Weekday()})
			}
			tw.AppendFooter(table.Row{"", "Total", len(days)})
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "First day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "Last day, inclusive (YYYY-MM-DD)")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")
	return cmd
}

// =============================================================================
// ALERTS
// =============================================================================

func newAlertsCmd(v *viper.Viper) *cobra.Command {
	var user string
	var year int
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Aggregate a user's year and print triggered alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(v)
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.service.AnnualSummary(cmd.Context(), worktime.UserID(user), year)
			if err != nil {
				return err
			}
			triggered := alerts.DefaultRegistry().Evaluate(summary)

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.SetTitle(fmt.Sprintf("%s / %d", user, year))
			tw.AppendHeader(table.Row{"Metric", "Hours"})
			tw.AppendRows([]table.Row{
				{"Target", calendar.DurationToDecimalHours(summary.TargetWorkingTime).StringFixed(2)},
				{"Worked", calendar.DurationToDecimalHours(summary.WorkedTime).StringFixed(2)},
				{"Earned vacation", calendar.DurationToDecimalHours(summary.EarnedVacations).StringFixed(2)},
				{"Consumed vacation", calendar.DurationToDecimalHours(summary.ConsumedVacations).StringFixed(2)},
			})
			tw.AppendSeparator()
			if len(triggered) == 0 {
				tw.AppendRow(table.Row{"Alerts", "none"})
			}
			for _, al := range triggered {
				tw.AppendRow(table.Row{"Alert", al.Label})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "User id")
	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "Calendar year")
	cmd.MarkFlagRequired("user")
	return cmd
}
