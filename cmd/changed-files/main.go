package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nahidhasan98/changed-files/internal/app"
	"github.com/nahidhasan98/changed-files/internal/baseline"
	"github.com/nahidhasan98/changed-files/internal/builds"
	"github.com/nahidhasan98/changed-files/internal/classifier"
	"github.com/nahidhasan98/changed-files/internal/config"
	"github.com/nahidhasan98/changed-files/internal/errors"
	"github.com/nahidhasan98/changed-files/internal/git"
	"github.com/nahidhasan98/changed-files/internal/handlers"
	"github.com/nahidhasan98/changed-files/internal/logger"
	"github.com/nahidhasan98/changed-files/internal/server"
	"github.com/spf13/cobra"
)

// Global variables for configuration and services
var (
	cfg *config.Config
	log *logger.Logger
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout))
}

// execute runs the command line and returns the process exit code
func execute(args []string, stdout io.Writer) int {
	root := newRootCmd(stdout)
	root.SetArgs(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		// Flag parsing fails before any logger exists
		if log == nil {
			fmt.Fprintln(os.Stderr, err)
		}
		return errors.As(err).ExitCode
	}
	return 0
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "changed-files",
		Short: "Report which rule categories have changed files since the last successful build",
		Long: `changed-files compares the current revision with the last successful build of
the pipeline (or with a reference branch) and sets one boolean variable per
rule category telling whether any changed file matches the category's globs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, stdout)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("variable", "", "Name of the default category variable (INPUT_VARIABLE)")
	flags.String("rules", "", "Rule text: glob patterns grouped by [Category] headers (INPUT_RULES)")
	flags.String("rules-file", "", "Read the rule text from a file (INPUT_RULESFILE)")
	flags.Bool("is-output", false, "Publish variables as output variables (INPUT_ISOUTPUT)")
	flags.String("cwd", "", "Repository working directory (INPUT_CWD)")
	flags.BoolP("verbose", "v", false, "Print the matching details (INPUT_VERBOSE)")
	flags.String("ref-branch", "", "Compare against this branch instead of the last successful build (INPUT_REFBRANCH)")
	flags.String("branch-filter", "", "Only consider previous builds of this branch (INPUT_BRANCHFILTER)")
	flags.String("output", "", "Result format: azure|json|env (INPUT_OUTPUT)")
	flags.String("log-format", "", "Log format: text|json|azure (LOG_FORMAT)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP classification service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, stdout)
		},
	}
	serveCmd.Flags().Int("port", 0, "Listen port (SERVER_PORT)")

	rootCmd.AddCommand(serveCmd)
	return rootCmd
}

// initialize loads configuration, applies flag overrides and builds the
// logger. The logger is always set, even when validation fails.
func initialize(cmd *cobra.Command, mode config.Mode, stdout io.Writer) error {
	var err error

	cfg, err = config.Load()
	if err != nil {
		log = logger.NewWithWriter("info", "text", os.Stderr)
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to load config")
	}
	applyFlags(cmd, cfg)

	// Machine-readable run formats keep stdout for the result only
	logOut := stdout
	if mode == config.ModeRun && cfg.Inputs.Output != app.FormatAzure {
		logOut = os.Stderr
	}
	log = logger.NewWithWriter(cfg.LogLevel(), cfg.Log.Format, logOut)

	return cfg.Validate(mode)
}

// applyFlags overrides configuration with explicitly set flags
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	str := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	boolean := func(name string, dst *bool) {
		if flags.Changed(name) {
			*dst, _ = flags.GetBool(name)
		}
	}

	str("variable", &cfg.Inputs.Variable)
	str("rules", &cfg.Inputs.Rules)
	str("rules-file", &cfg.Inputs.RulesFile)
	boolean("is-output", &cfg.Inputs.IsOutput)
	str("cwd", &cfg.Inputs.Cwd)
	boolean("verbose", &cfg.Inputs.Verbose)
	str("ref-branch", &cfg.Inputs.RefBranch)
	str("branch-filter", &cfg.Inputs.BranchFilter)
	str("output", &cfg.Inputs.Output)
	str("log-format", &cfg.Log.Format)

	if flags.Lookup("port") != nil && flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}
}

func runDetect(cmd *cobra.Command, stdout io.Writer) error {
	err := initialize(cmd, config.ModeRun, stdout)

	reporter := app.NewReporter(stdout, app.FormatAzure, false, false, log)
	if cfg != nil {
		reporter = app.NewReporter(stdout, cfg.Inputs.Output, cfg.Inputs.IsOutput, cfg.Inputs.Verbose, log)
	}
	if err != nil {
		reporter.Fail(err)
		return err
	}

	ctx := cmd.Context()
	if cfg.API.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.API.RunTimeout)
		defer cancel()
	}

	result, err := detect(ctx)
	if err == nil {
		err = reporter.Publish(result)
	}
	if err != nil {
		reporter.Fail(err)
		return err
	}
	return nil
}

// detect wires the run's collaborators and performs one detection
func detect(ctx context.Context) (classifier.Result, error) {
	text, err := cfg.RuleText()
	if err != nil {
		return nil, err
	}
	inputs, err := cfg.BaselineInputs()
	if err != nil {
		return nil, err
	}

	gitClient := git.New(cfg.Git.Binary, cfg.Inputs.Cwd, log)
	buildClient := builds.NewClient(cfg.Pipeline.CollectionURI, cfg.Pipeline.AccessToken, cfg.API.Timeout, log)

	detector := app.NewDetector(
		baseline.NewResolver(buildClient, gitClient, log),
		classifier.New(gitClient, cfg.Git.Parallelism, log),
		log,
	)

	log.Debugf("working directory: %s", cfg.Inputs.Cwd)
	return detector.Detect(ctx, app.Request{
		Rules:    text,
		Variable: cfg.Inputs.Variable,
		Baseline: inputs,
	})
}

func runServe(cmd *cobra.Command, stdout io.Writer) error {
	if err := initialize(cmd, config.ModeServe, stdout); err != nil {
		log.Error("Invalid configuration", err)
		return err
	}
	log.Info("Starting changed-files classification service")

	// Initialize HTTP handlers
	httpHandler := handlers.New(
		classifier.New(git.New(cfg.Git.Binary, cfg.Inputs.Cwd, log), cfg.Git.Parallelism, log),
		handlers.Options{
			DefaultRules:        cfg.Inputs.Rules,
			DefaultVariable:     cfg.Inputs.Variable,
			GitHubWebhookSecret: cfg.Security.GitHubWebhookSecret,
			GiteaWebhookSecret:  cfg.Security.GiteaWebhookSecret,
		},
		log,
	)

	// Initialize and start HTTP server
	httpServer := server.New(cfg, httpHandler, log)
	errCh, err := httpServer.Start()
	if err != nil {
		return errors.InternalError(err)
	}

	// Wait for either the server to fail or for a shutdown signal
	ctx := cmd.Context()
	select {
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server failed", err)
			return errors.InternalError(err)
		}
	case <-ctx.Done():
		log.Info("Received shutdown signal")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during HTTP server shutdown", err)
		return errors.InternalError(err)
	}

	log.Info("Application stopped")
	return nil
}
