package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/runlens/runlens/internal/config"
	"github.com/runlens/runlens/internal/github"
	"github.com/runlens/runlens/internal/logcache"
	"github.com/runlens/runlens/internal/logging"
	runsignal "github.com/runlens/runlens/internal/signal"
	"github.com/runlens/runlens/internal/tui"
)

var (
	// rootCtx holds the signal-cancellable context for the application
	rootCtx    context.Context
	rootCancel context.CancelFunc

	flagRepo     string
	flagWorkflow string
	flagRunID    int64
	flagRunURL   string
	flagLatest   bool
	flagJobID    int64
	flagLimit    int
	flagConfig   string
	flagNoMouse  bool
)

var rootCmd = &cobra.Command{
	Use:   "runlens [owner/repo]",
	Short: "Inspect GitHub Actions workflow logs in the terminal",
	Long: `runlens browses the workflows, runs, and jobs of a GitHub repository
and decomposes each job log into sections: test outcome summary, slowest
tests, warnings, coverage, and the raw log. It talks to GitHub through the
gh CLI, so gh must be installed and authenticated.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Create a cancellable context with signal handling
		rootCtx, rootCancel = runsignal.WithSignalCancel(context.Background())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		// Clean up the signal handler
		if rootCancel != nil {
			rootCancel()
		}
	},
	RunE:          runRoot,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

// GetContext returns the root context that is cancelled on SIGINT/SIGTERM.
// This should be used by all subcommands instead of context.Background().
func GetContext() context.Context {
	if rootCtx == nil {
		// Fallback if called before PersistentPreRun (shouldn't happen in normal use)
		return context.Background()
	}
	return rootCtx
}

func init() {
	rootCmd.Flags().StringVar(&flagRepo, "repo", "", "repository as owner/repo (default: RUNLENS_REPO or the git origin remote)")
	rootCmd.Flags().StringVarP(&flagWorkflow, "workflow", "w", "", "workflow name, skips the workflow picker")
	rootCmd.Flags().Int64Var(&flagRunID, "run-id", 0, "run id, jumps straight to the job view")
	rootCmd.Flags().StringVar(&flagRunURL, "run-url", "", "run page URL, jumps straight to the job view")
	rootCmd.Flags().BoolVar(&flagLatest, "latest", false, "open the latest run of --workflow")
	rootCmd.Flags().Int64Var(&flagJobID, "job-id", 0, "job id to preselect inside the run")
	rootCmd.Flags().IntVar(&flagLimit, "limit", 0, "runs listed per workflow (default from config, 20)")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "config file (default ~/.config/runlens/config.toml)")
	rootCmd.Flags().BoolVar(&flagNoMouse, "no-mouse", false, "disable mouse support in the TUI")
}

func runRoot(cmd *cobra.Command, args []string) error {
	ctx := GetContext()

	if flagLatest && flagWorkflow == "" {
		return fmt.Errorf("--latest requires --workflow")
	}
	if flagRunID != 0 && flagRunURL != "" {
		return fmt.Errorf("--run-id and --run-url are mutually exclusive")
	}
	if flagJobID != 0 && flagRunID == 0 && flagRunURL == "" && !flagLatest {
		return fmt.Errorf("--job-id requires --run-id, --run-url, or --latest")
	}

	explicit := flagRepo
	if len(args) > 0 {
		explicit = args[0]
	}

	stateDir := config.StateDir()
	if err := logging.Init(stateDir); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer logging.Close()

	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return err
	}
	if flagLimit > 0 {
		cfg.GitHub.RunLimit = &flagLimit
	}

	if err := github.Validate(ctx); err != nil {
		return err
	}
	repo, err := github.ResolveRepo(ctx, explicit)
	if err != nil {
		return err
	}
	logging.Info("starting", "repo", repo, "config", cfgPath)

	// A broken log cache degrades to fetching every log, never a refusal
	// to start.
	var logs *logcache.Cache
	if stateDir != "" {
		cache, err := logcache.Open(ctx, filepath.Join(stateDir, logcache.DBFileName))
		if err != nil {
			logging.Warn("log cache disabled", "error", err)
		} else {
			logs = cache
			defer logs.Close()
		}
	}

	client := github.NewClient(github.Options{
		Repo:          repo,
		ListingTTL:    cfg.GitHub.GetCacheTTL(),
		MaxCachedLogs: cfg.Cache.GetMaxLogs(),
		Logs:          logs,
	})

	var updates <-chan *config.Config
	if cfgPath != "" {
		if ch, err := config.Watch(ctx, cfgPath); err != nil {
			logging.Warn("config watch disabled", "error", err)
		} else {
			updates = ch
		}
	}

	opts := tui.Options{
		Client:        client,
		Config:        *cfg,
		ConfigUpdates: updates,
		Workflow:      flagWorkflow,
		RunID:         flagRunID,
		RunURL:        flagRunURL,
		Latest:        flagLatest,
		JobID:         flagJobID,
		Mouse:         cfg.UI.MouseEnabled() && !flagNoMouse,
	}
	if err := tui.Run(ctx, opts); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// loadConfig resolves the config path from --config or the default
// location and loads it. A missing file yields the defaults.
func loadConfig() (*config.Config, string, error) {
	path := flagConfig
	if path == "" {
		path = config.DefaultPath()
	}
	if path == "" {
		return &config.Config{}, "", nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}
