package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"sermonbench/internal/catalog"
	"sermonbench/internal/config"
	"sermonbench/internal/history"
	"sermonbench/internal/metrics"
	"sermonbench/internal/progress"
	"sermonbench/internal/report"
	"sermonbench/internal/scenario"
	"sermonbench/internal/uploadapi"
)

// Quick-mode caps so a smoke run finishes inside a coffee break.
const (
	quickFileCount = 5
	quickDuration  = 90 * time.Second
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		outputPath string
		quick      bool
		pattern    string
		fileCount  int
	)

	cmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "Run upload stress scenarios against the API",
		Long: "Run executes the merged built-in and configured scenario set in order,\n" +
			"or a single scenario when one is named. Results are saved to the run\n" +
			"history and written to a JSON report.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			var only string
			if len(args) == 1 {
				only = strings.TrimSpace(args[0])
			}
			overrides := scenarioOverrides{
				pattern:   strings.TrimSpace(pattern),
				fileCount: fileCount,
				quick:     quick,
			}
			return runScenarios(cmd, cfg, logger, only, outputPath, overrides)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Report file path (default: timestamped file in the report directory)")
	cmd.Flags().BoolVar(&quick, "quick", false, "Cap file counts and durations for a fast smoke run")
	cmd.Flags().StringVar(&pattern, "pattern", "", "Override the submission pattern (immediate, staggered, random)")
	cmd.Flags().IntVar(&fileCount, "files", 0, "Override the file count for every scenario")
	return cmd
}

// scenarioOverrides carries the run flags that reshape the scenario set.
type scenarioOverrides struct {
	pattern   string
	fileCount int
	quick     bool
}

func runScenarios(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, only, outputPath string, overrides scenarioOverrides) error {
	runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	out := cmd.OutOrStdout()

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return errors.New("another sermonbench run is already in progress")
	}
	defer func() {
		_ = lock.Unlock()
	}()

	scenarios, err := selectScenarios(cfg, only, overrides)
	if err != nil {
		return err
	}

	api := uploadapi.New(cfg.API, logger)
	if health := api.Health(runCtx); !health.Success {
		return fmt.Errorf("api health check failed: %s", health.Err)
	}
	fmt.Fprintf(out, "API healthy at %s\n", cfg.API.BaseURL)

	client, err := catalog.Connect(cfg.Remote, logger)
	if err != nil {
		return err
	}
	files, err := client.Discover()
	closeErr := client.Close()
	if err != nil {
		return err
	}
	if closeErr != nil {
		logger.Warn("close discovery connection", slog.String("error", closeErr.Error()))
	}
	fmt.Fprintf(out, "Discovered %d test files on %s (%s)\n",
		len(files), cfg.Remote.Host, catalog.Distribute(files))

	pool, err := catalog.OpenSourcePool(cfg.Remote, poolSize(cfg, scenarios), logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	store, err := history.Open(cfg)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer store.Close()

	messenger := progress.NewMessenger(cfg.Notifications, logger)
	tracker := progress.NewTracker(messenger, time.Duration(cfg.Notifications.RetentionHours)*time.Hour, logger)
	defer tracker.Cleanup()

	orch := scenario.New(api, pool, tracker, nil, logger)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	cooldown := time.Duration(cfg.Testing.CooldownSeconds) * time.Second

	var runs []report.RunMetrics
	for i, s := range scenarios {
		if i > 0 && cooldown > 0 {
			fmt.Fprintf(out, "Cooling down %s before %s\n", cooldown, s.Name)
			if err := sleepCtx(runCtx, cooldown); err != nil {
				return err
			}
		}

		selected := scenario.SelectFiles(files, s, rng)
		if len(selected) == 0 {
			logger.Warn("no files match scenario, skipping",
				slog.String("scenario", s.Name),
				slog.String("preference", s.SizePreference),
			)
			continue
		}

		fmt.Fprintf(out, "Running %s: %d files, concurrency %d, pattern %s\n",
			s.Name, len(selected), s.MaxConcurrency, s.Pattern)

		run := orch.Run(runCtx, s, selected)
		m := metrics.Aggregate(s.Name, run.StartedAt, run.EndedAt, run.Results)
		if err := store.SaveRun(runCtx, run, m); err != nil {
			logger.Warn("save run history",
				slog.String("run", run.ID),
				slog.String("error", err.Error()),
			)
		}
		runs = append(runs, report.RunMetrics{Run: run, Metrics: m})

		fmt.Fprintf(out, "  %d/%d succeeded (%.1f%%), avg %.2f MB/s\n",
			m.SuccessfulUploads, m.TotalFiles, m.SuccessRate, m.AvgThroughputMBps)

		if err := runCtx.Err(); err != nil {
			return err
		}
	}

	if len(runs) == 0 {
		return errors.New("no scenario produced results")
	}

	rep := report.Build(report.Environment{
		APIEndpoint: cfg.API.BaseURL,
		RemoteHost:  cfg.Remote.Host,
	}, runs)

	path := strings.TrimSpace(outputPath)
	if path == "" {
		path = report.DefaultPath(cfg.Report.OutputDir, time.Now())
	} else if path, err = config.ExpandPath(path); err != nil {
		return fmt.Errorf("resolve report path: %w", err)
	}
	if err := rep.Write(path); err != nil {
		return err
	}

	fmt.Fprintln(out, report.Summary(rep))
	fmt.Fprintf(out, "Report written to %s\n", path)

	return checkThresholds(cfg.Testing, runs)
}

// selectScenarios resolves the scenario list for this invocation and applies
// flag overrides and quick-mode caps.
func selectScenarios(cfg *config.Config, only string, overrides scenarioOverrides) ([]scenario.Scenario, error) {
	var scenarios []scenario.Scenario
	if only != "" {
		s, err := scenario.Find(cfg, only)
		if err != nil {
			return nil, err
		}
		scenarios = []scenario.Scenario{s}
	} else {
		scenarios = scenario.All(cfg)
	}

	if p := overrides.pattern; p != "" {
		switch p {
		case scenario.PatternImmediate, scenario.PatternStaggered, scenario.PatternRandom:
		default:
			return nil, fmt.Errorf("--pattern %q must be one of immediate, staggered, random", p)
		}
		for i := range scenarios {
			scenarios[i].Pattern = p
		}
	}
	if n := overrides.fileCount; n > 0 {
		for i := range scenarios {
			scenarios[i].FileCount = n
		}
	}

	if overrides.quick {
		for i := range scenarios {
			if scenarios[i].FileCount > quickFileCount {
				scenarios[i].FileCount = quickFileCount
			}
			if scenarios[i].Duration > quickDuration {
				scenarios[i].Duration = quickDuration
			}
			if limit := cfg.Testing.MaxConcurrentUploads; limit > 0 && scenarios[i].MaxConcurrency > limit {
				scenarios[i].MaxConcurrency = limit
			}
		}
	}
	return scenarios, nil
}

// poolSize picks how many SFTP connections to open: the configured session
// pool if set, otherwise enough to feed the widest scenario.
func poolSize(cfg *config.Config, scenarios []scenario.Scenario) int {
	if cfg.Remote.SessionPool > 0 {
		return cfg.Remote.SessionPool
	}
	size := cfg.Testing.MaxConcurrentUploads
	for _, s := range scenarios {
		if s.MaxConcurrency > size {
			size = s.MaxConcurrency
		}
	}
	return size
}

// checkThresholds turns the aggregate outcome into the process exit status.
func checkThresholds(t config.Testing, runs []report.RunMetrics) error {
	var totalFiles, totalOK int
	var throughputSum float64
	var throughputRuns int
	for _, rm := range runs {
		totalFiles += rm.Metrics.TotalFiles
		totalOK += rm.Metrics.SuccessfulUploads
		if rm.Metrics.SuccessfulUploads > 0 {
			throughputSum += rm.Metrics.AvgThroughputMBps
			throughputRuns++
		}
	}
	if totalFiles == 0 {
		return errors.New("no uploads were attempted")
	}

	successRate := float64(totalOK) / float64(totalFiles) * 100
	if successRate < t.MinSuccessRate {
		return fmt.Errorf("success rate %.1f%% below required %.1f%%", successRate, t.MinSuccessRate)
	}
	if t.MinThroughputMBps > 0 && throughputRuns > 0 {
		avg := throughputSum / float64(throughputRuns)
		if avg < t.MinThroughputMBps {
			return fmt.Errorf("average throughput %.2f MB/s below required %.2f MB/s", avg, t.MinThroughputMBps)
		}
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
