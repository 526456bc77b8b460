package synchronizer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/oshokin/thinkscript-sync/internal/cache"
	"github.com/oshokin/thinkscript-sync/internal/config"
	"github.com/oshokin/thinkscript-sync/internal/fetcher"
	"github.com/oshokin/thinkscript-sync/internal/logger"
	"github.com/oshokin/thinkscript-sync/internal/process"
	"github.com/oshokin/thinkscript-sync/internal/settings"
)

// Options are inputs accepted by the synchronizer entry point.
// Empty string fields keep the values from the options file.
type Options struct {
	// ConfigPath is the optional path to the YAML options file.
	ConfigPath string
	// SettingsFile overrides the application settings file.
	SettingsFile string
	// ScriptsFile overrides the script settings file.
	ScriptsFile string
	// DownloadDir overrides the download directory.
	DownloadDir string
	// LogLevel overrides the log level.
	LogLevel string
	// DryRun disables writing the cache file when set.
	DryRun bool
	// HTTPClient replaces the default HTTP client used for downloads.
	HTTPClient *http.Client
	// Detector replaces the process table inspection.
	Detector *process.Detector
}

// runner holds the inputs of a single synchronization.
// It is intentionally unexported: call Run(ctx, Options) from callers.
type runner struct {
	// cfg holds the tool options.
	cfg *config.Config
	// app tells where the cache lives.
	app *settings.Application
	// scripts maps script names to URLs, in file order.
	scripts *settings.Settings
	// fetcher downloads scripts.
	fetcher *fetcher.Fetcher
	// detector looks for the trading application.
	detector *process.Detector
	// save persists the cache document.
	save func(*cache.Document) error
}

// Run executes one synchronization and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		logger.ErrorKV(ctx, "Unable to load options", "error", err)
		return err
	}

	ctx, closeLog, err := setupLogging(ctx, cfg)
	if err != nil {
		logger.ErrorKV(ctx, "Unable to open log file", "error", err)
		return err
	}

	defer closeLog()

	// Set context with logger name and run id for tracking.
	ctx = logger.WithName(ctx, "thinkscript-sync")
	ctx = logger.WithKV(ctx, "run_id", uuid.NewString())

	r, err := newRunner(cfg, opts)
	if err != nil {
		logger.ErrorKV(ctx, "Unable to read settings", "error", err)
		return err
	}

	release, err := acquireMarker(ctx, cfg.DownloadDir)
	if err != nil {
		logger.ErrorKV(ctx, "Unable to start synchronization", "error", err)
		return err
	}

	defer release()

	if err = r.Run(ctx); err != nil {
		logger.ErrorKV(ctx, "Synchronization failed", "error", err)
		return err
	}

	return nil
}

// loadConfig reads the options file and applies the overrides.
func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if opts.SettingsFile != "" {
		cfg.SettingsFile = opts.SettingsFile
	}

	if opts.ScriptsFile != "" {
		cfg.ScriptsFile = opts.ScriptsFile
	}

	if opts.DownloadDir != "" {
		cfg.DownloadDir = opts.DownloadDir
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	if opts.DryRun {
		cfg.DryRun = true
	}

	if err = config.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setupLogging applies the configured level and tees the log file when one is set.
func setupLogging(ctx context.Context, cfg *config.Config) (context.Context, func(), error) {
	level, _ := logger.ParseLogLevel(cfg.LogLevel)
	logger.SetLevel(level)

	fileWriter, err := logger.NewFileWriter(cfg.LogFile)
	if err != nil {
		return ctx, nil, err
	}

	if fileWriter == nil {
		return ctx, func() {}, nil
	}

	ctx = logger.ToContext(ctx, logger.FromContext(ctx).WithOptions(logger.TeeWriter(fileWriter, level)))

	return ctx, func() {
		if err := fileWriter.Close(); err != nil {
			logger.Warnf(ctx, "Unable to close log file: %v", err)
		}
	}, nil
}

// newRunner loads both settings files and prepares the collaborators.
func newRunner(cfg *config.Config, opts *Options) (*runner, error) {
	appSettings, err := settings.Load(cfg.SettingsFile)
	if err != nil {
		return nil, err
	}

	app, err := settings.NewApplication(appSettings)
	if err != nil {
		return nil, err
	}

	scripts, err := settings.Load(cfg.ScriptsFile)
	if err != nil {
		return nil, err
	}

	detector := opts.Detector
	if detector == nil {
		detector = process.NewDetector()
	}

	return &runner{
		cfg:      cfg,
		app:      app,
		scripts:  scripts,
		fetcher:  fetcher.New(cfg.DownloadDir, fetcher.WithHTTPClient(opts.HTTPClient), fetcher.WithTimeout(cfg.Timeout)),
		detector: detector,
		save:     (*cache.Document).Save,
	}, nil
}

// Run executes the workflow for this runner instance:
// 1) Warn when the trading application is running.
// 2) Resolve the cache file.
// 3) Download the scripts.
// 4) Parse and validate the cache.
// 5) Apply script updates.
// 6) Persist the cache once if anything changed.
func (r *runner) Run(ctx context.Context) error {
	r.warnIfApplicationRunning(ctx)

	cachePath, err := cache.Locate(ctx, r.app)
	if err != nil {
		return err
	}

	logger.Infof(ctx, "Using cache file %s", cachePath)
	logger.Infof(ctx, "Found %d script entries", r.scripts.Len())

	downloads, err := r.fetcher.Fetch(ctx, r.scripts)
	if err != nil {
		return fmt.Errorf("download scripts: %w", err)
	}

	doc, err := cache.Open(cachePath)
	if err != nil {
		return err
	}

	if err = doc.Validate(); err != nil {
		logger.Error(ctx, "Cache file does not look valid. Unable to continue")
		return err
	}

	result, err := cache.ApplyScripts(ctx, doc, downloads)
	if err != nil {
		return fmt.Errorf("apply scripts: %w", err)
	}

	return r.persist(ctx, doc, result)
}

// persist writes the document back only when at least one script changed.
func (r *runner) persist(ctx context.Context, doc *cache.Document, result *cache.Result) error {
	if !result.Changed() {
		logger.Infof(ctx, "No updates made to %s", doc.Path())
		return nil
	}

	if r.cfg.DryRun {
		logger.InfoKV(ctx, fmt.Sprintf("Dry run, not writing %s", doc.Path()), "updated", result.Updated)
		return nil
	}

	if err := r.save(doc); err != nil {
		return err
	}

	logger.InfoKV(ctx, fmt.Sprintf("Successfully updated %s", doc.Path()), "updated", result.Updated)

	return nil
}

// warnIfApplicationRunning logs a warning when the trading application is running.
// It exits with its own copy of the cache and may overwrite the update.
func (r *runner) warnIfApplicationRunning(ctx context.Context) {
	if r.cfg.ProcessName == "" {
		return
	}

	running, err := r.detector.IsRunning(r.cfg.ProcessName)
	if err != nil {
		logger.Warnf(ctx, "Unable to inspect running processes: %v", err)
		return
	}

	if running {
		logger.WarnKV(ctx, "The trading application is running and may overwrite the cache on exit, close it before syncing",
			"process", r.cfg.ProcessName)
	}
}
