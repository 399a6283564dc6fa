package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexheretic/cargo-ab-lint/internal/config"
	"github.com/alexheretic/cargo-ab-lint/internal/lint"
	"github.com/alexheretic/cargo-ab-lint/internal/rules"
	"github.com/alexheretic/cargo-ab-lint/internal/ui"
	"github.com/alexheretic/cargo-ab-lint/internal/workspace"
)

// errFindings makes the process exit 1 without printing an error.
var errFindings = errors.New("findings remain")

func runLint(cmd *cobra.Command, _ []string) error {
	fix, _ := cmd.Flags().GetBool("fix")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	manifestPath, _ := cmd.Flags().GetString("manifest-path")
	useCargo, _ := cmd.Flags().GetBool("cargo-metadata")
	configPath, _ := cmd.Flags().GetString("config")
	colorFlag, _ := cmd.Flags().GetString("color")
	diffFlag, _ := cmd.Flags().GetString("diff")
	confirm, _ := cmd.Flags().GetBool("confirm")
	showSummary, _ := cmd.Flags().GetBool("summary")
	verbose, _ := cmd.Flags().GetBool("verbose")

	errOut := cmd.ErrOrStderr()
	setupLogging(errOut, verbose)

	colorMode, err := ui.ParseColorMode(colorFlag)
	if err != nil {
		return err
	}
	diffFormat, err := ui.ParseDiffFormat(diffFlag)
	if err != nil {
		return err
	}
	if confirm && !fix {
		return fmt.Errorf("--confirm requires --fix")
	}

	ws, err := loadWorkspace(cmd, manifestPath, useCargo)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(ws.Root, configPath)
	if err != nil {
		return err
	}

	reporter := ui.NewReporter(errOut, ui.NewStyles(ui.NewRenderer(errOut, colorMode)), diffFormat)
	opts := lint.Options{
		Fix:          fix,
		DryRun:       dryRun,
		Disabled:     disabledRules(cfg),
		IgnoreUnused: cfg.IgnoreUnused,
		Collapse:     cfg.Collapse(),
	}
	if confirm && !dryRun {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("--confirm needs an interactive terminal on stdin")
		}
		opts.Confirm = func(path string) (bool, error) {
			return promptConfirm(fmt.Sprintf("Write %s?", reporter.Display(path)))
		}
	}

	root, err := lint.LoadFile(ws.ManifestPath)
	if err != nil {
		return err
	}
	summary, err := lint.New(opts, reporter).Run(root, ws.Members)
	if err != nil {
		return err
	}

	if showSummary {
		if err := reporter.Summary(summary); err != nil {
			return err
		}
	}
	if !fix && summary.HasFindings() {
		reporter.Hint()
		return errFindings
	}
	reporter.AllGood()
	return nil
}

func setupLogging(out io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
}

func loadWorkspace(cmd *cobra.Command, start string, useCargo bool) (*workspace.Context, error) {
	if useCargo {
		dir, err := filepath.Abs(start)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", start, err)
		}
		if filepath.Base(dir) == workspace.ManifestName {
			dir = filepath.Dir(dir)
		}
		return workspace.LoadWithCargo(cmd.Context(), dir)
	}
	root, err := workspace.FindRoot(start)
	if err != nil {
		return nil, err
	}
	return workspace.Load(root)
}

func loadConfig(root, path string) (*config.Config, error) {
	if path != "" {
		slog.Debug("using config", "path", path)
		return config.Load(path, false)
	}
	return config.LoadFromRoot(root)
}

func disabledRules(cfg *config.Config) []rules.RuleID {
	var ids []rules.RuleID
	for _, id := range rules.All {
		if !cfg.Enabled(id) {
			ids = append(ids, id)
		}
	}
	return ids
}
