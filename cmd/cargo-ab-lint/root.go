package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// subcommandName is the argument cargo passes when run as `cargo ab-lint`.
const subcommandName = "ab-lint"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cargo-ab-lint [ab-lint]",
		Short: "Lint a Cargo workspace for redundant dependency declarations",
		Long: `Checks every workspace member for inherited dependencies that repeat
features or default-features already set in [workspace.dependencies], and the
workspace root for shared dependencies no member uses.`,
		Example: `  cargo ab-lint
  cargo ab-lint --fix
  cargo ab-lint --fix --dry-run --diff unified`,
		Version:       version,
		Args:          cargoSubcommandArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          runLint,
	}

	f := cmd.Flags()
	f.Bool("fix", false, "Apply fixes to the manifests")
	f.Bool("dry-run", false, "With --fix, show the changes without writing them")
	f.String("manifest-path", ".", "Directory or Cargo.toml to start the workspace search from")
	f.Bool("cargo-metadata", false, "Discover members with `cargo metadata` instead of expanding globs")
	f.String("config", "", "Config file (default: .cargo-ab-lint.yaml in the workspace root)")
	f.String("color", "auto", "Colour output: auto, always, or never")
	f.String("diff", "lines", "Diff format: lines or unified")
	f.Bool("confirm", false, "With --fix, ask before writing each file")
	f.Bool("summary", false, "Print a table of all findings at the end")
	f.BoolP("verbose", "v", false, "Print debug logs")

	return cmd
}

func cargoSubcommandArgs(_ *cobra.Command, args []string) error {
	switch {
	case len(args) == 0:
		return nil
	case len(args) == 1 && args[0] == subcommandName:
		return nil
	default:
		return fmt.Errorf("unexpected arguments: %v", args)
	}
}
