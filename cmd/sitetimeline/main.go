package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/sitetimeline/internal/config"
	"github.com/mtlprog/sitetimeline/internal/database"
	"github.com/mtlprog/sitetimeline/internal/domain"
	"github.com/mtlprog/sitetimeline/internal/handler"
	"github.com/mtlprog/sitetimeline/internal/logger"
	"github.com/mtlprog/sitetimeline/internal/repository"
	"github.com/mtlprog/sitetimeline/internal/service"
	"github.com/mtlprog/sitetimeline/internal/timeline"
)

func main() {
	app := &cli.App{
		Name:  "sitetimeline",
		Usage: "Construction schedule timeline with drag-to-reschedule validation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "database-url",
				Aliases: []string{"d"},
				Value:   config.DefaultDatabaseURL,
				Usage:   "PostgreSQL database URL",
				EnvVars: []string{"DATABASE_URL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the web server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Value:   config.DefaultPort,
						Usage:   "HTTP server port",
						EnvVars: []string{"PORT"},
					},
					&cli.DurationFlag{
						Name:    "save-timeout",
						Value:   config.DefaultSaveTimeout,
						Usage:   "Timeout of a single save attempt",
						EnvVars: []string{"SAVE_TIMEOUT"},
					},
					&cli.IntFlag{
						Name:    "save-attempts",
						Value:   config.DefaultSaveAttempts,
						Usage:   "Attempts per batch save, including the first",
						EnvVars: []string{"SAVE_ATTEMPTS"},
					},
					&cli.IntFlag{
						Name:    "drop-zone-step",
						Value:   config.DefaultDropZoneStepDays,
						Usage:   "Drop zone sampling interval in days",
						EnvVars: []string{"DROP_ZONE_STEP_DAYS"},
					},
					&cli.Float64Flag{
						Name:    "viewport-width",
						Value:   config.DefaultViewportWidthPx,
						Usage:   "Initial viewport width in pixels",
						EnvVars: []string{"VIEWPORT_WIDTH"},
					},
					&cli.StringFlag{
						Name:    "view-mode",
						Value:   config.DefaultViewMode,
						Usage:   "Initial zoom level (days, weeks, months)",
						EnvVars: []string{"VIEW_MODE"},
					},
				},
				Action: runServe,
			},
			{
				Name:  "check-schedule",
				Usage: "Validate every task of a project where it currently sits",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "project",
						Usage:    "Project ID",
						Required: true,
					},
				},
				Action: runCheckSchedule,
			},
			{
				Name:  "plan-window",
				Usage: "Print the rows to render for a scroll position",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "scroll-top", Usage: "Scroll offset in pixels"},
					&cli.Float64Flag{Name: "viewport-height", Value: 600, Usage: "Viewport height in pixels"},
					&cli.Float64Flag{Name: "row-height", Value: config.DefaultRowHeightPx, Usage: "Row height in pixels"},
					&cli.IntFlag{Name: "total-rows", Required: true, Usage: "Number of task rows"},
					&cli.IntFlag{Name: "buffer", Value: config.DefaultBufferRows, Usage: "Extra rows above and below the viewport"},
					&cli.IntFlag{Name: "threshold", Value: config.DefaultVirtualizeThreshold, Usage: "Row count above which the list is virtualized"},
				},
				Action: runPlanWindow,
			},
		},
		Action: runServe,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// connect opens the database and applies migrations.
func connect(c *cli.Context) (*database.DB, error) {
	databaseURL := c.String("database-url")
	if databaseURL == "" {
		return nil, errors.New("database URL is required (--database-url or DATABASE_URL)")
	}

	db, err := database.New(c.Context, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(c.Context, db.Pool()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func runServe(c *cli.Context) error {
	ctx := c.Context

	port := c.String("port")
	if port == "" {
		port = config.DefaultPort
	}

	mode := domain.ViewMode(c.String("view-mode"))
	if mode != "" && !mode.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidViewMode, mode)
	}

	db, err := connect(c)
	if err != nil {
		return err
	}
	defer db.Close()

	h := handler.New(db.Pool(), service.Options{
		SaveTimeout:      c.Duration("save-timeout"),
		SaveAttempts:     c.Int("save-attempts"),
		DropZoneStepDays: c.Int("drop-zone-step"),
		ViewportWidthPx:  c.Float64("viewport-width"),
		ViewMode:         mode,
	})

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           h.Routes(),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "server_addr", "http://localhost:"+port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-done:
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Let committed drops finish saving before the pool closes.
	h.Wait()

	slog.Info("server stopped")
	return nil
}

func runCheckSchedule(c *cli.Context) error {
	ctx := c.Context
	projectID := c.String("project")

	db, err := connect(c)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := service.NewTimelineService(
		repository.NewTaskRepository(db.Pool()),
		repository.NewProjectRepository(db.Pool()),
		service.Options{},
	)

	reports, err := svc.CheckSchedule(ctx, projectID)
	if err != nil {
		return fmt.Errorf("check schedule: %w", err)
	}

	for _, report := range reports {
		for _, v := range report.Violations {
			slog.Warn("schedule violation",
				"project_id", projectID,
				"task_id", report.Task.ID,
				"kind", v.Kind,
				"severity", v.Severity,
				"message", v.Message,
			)
		}
	}

	if len(reports) == 0 {
		slog.Info("schedule is clean", "project_id", projectID)
	}
	return nil
}

func runPlanWindow(c *cli.Context) error {
	window, virtualized := timeline.PlanWindow(
		c.Float64("scroll-top"),
		c.Float64("viewport-height"),
		c.Float64("row-height"),
		c.Int("total-rows"),
		c.Int("buffer"),
		c.Int("threshold"),
	)

	out := struct {
		StartIndex  int  `json:"start_index"`
		EndIndex    int  `json:"end_index"`
		Rows        int  `json:"rows"`
		Virtualized bool `json:"virtualized"`
	}{window.StartIndex, window.EndIndex, window.Len(), virtualized}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
