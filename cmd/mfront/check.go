package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thelfer/tfel-sub013/internal/build"
	"github.com/thelfer/tfel-sub013/internal/cli"
	"github.com/thelfer/tfel-sub013/internal/cmdutil"
)

var (
	flagHints  bool
	flagWatch  bool
	flagJobs   int
	flagStrict bool
	flagFormat string
	flagOutput string
)

var checkCmd = &cobra.Command{
	Use:   "check [file|dir]...",
	Short: "Check source files",
	Long: `Parse every selected file and report its diagnostics. Without arguments
all files matching the configured patterns below the project root are
checked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyBatchFlags(cmd)
		if err := validate(); err != nil {
			return err
		}
		opts := cmdutil.BatchOptions{Hints: flagHints, Logger: logger}
		if flagWatch {
			return watch(cmd, args, opts)
		}
		return cli.RunCancellable(context.Background(), cmd.ErrOrStderr(), func(ctx context.Context) error {
			_, err := cmdutil.RunBatch(ctx, cfg, args, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return err
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [file|dir]...",
	Short: "Check source files and write their descriptions",
	Long: `Check every selected file and write the description of each valid one
below the output directory, as YAML or JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyBatchFlags(cmd)
		if cmd.Flags().Changed("format") {
			cfg.Format = flagFormat
		}
		if cmd.Flags().Changed("output") {
			cfg.OutputDir = flagOutput
		}
		if err := validate(); err != nil {
			return err
		}
		opts := cmdutil.BatchOptions{Export: true, Hints: flagHints, Logger: logger}
		return cli.RunCancellable(context.Background(), cmd.ErrOrStderr(), func(ctx context.Context) error {
			_, err := cmdutil.RunBatch(ctx, cfg, args, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return err
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{checkCmd, exportCmd} {
		c.Flags().BoolVar(&flagHints, "hints", false, "also print hints")
		c.Flags().IntVarP(&flagJobs, "jobs", "j", 0, "number of files processed in parallel")
		c.Flags().BoolVar(&flagStrict, "strict", false, "fail when a variable is described differently in two modelling hypotheses instead of joining the descriptions")
		rootCmd.AddCommand(c)
	}
	checkCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "check again whenever a file changes")
	exportCmd.Flags().StringVarP(&flagFormat, "format", "f", "", "output format (yaml or json)")
	exportCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output directory")
	_ = exportCmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
}

func applyBatchFlags(cmd *cobra.Command) {
	if cmd.Flags().Changed("jobs") {
		cfg.Jobs = flagJobs
	}
	if cmd.Flags().Changed("strict") {
		cfg.StrictMerge = flagStrict
	}
}

// watch checks the selection once, then again for each batch of changed
// files until interrupted.
func watch(cmd *cobra.Command, args []string, opts cmdutil.BatchOptions) error {
	ctx, cancel := commandContext()
	defer cancel()

	root, files, err := cmdutil.ResolveFiles(cfg, args)
	if err != nil {
		return err
	}
	if _, err := cmdutil.RunBatch(ctx, cfg, args, opts, cmd.OutOrStdout(), cmd.ErrOrStderr()); err != nil && ctx.Err() != nil {
		cli.Cancelled(cmd.ErrOrStderr(), err)
		return nil
	}

	w, err := build.NewWatcher(build.WatchOptions{
		Root:     root,
		Patterns: cfg.Patterns,
		Excludes: cfg.Excludes,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}
	w.Seed(files)
	fmt.Fprintln(cmd.ErrOrStderr(), cli.Muted("Watching for changes. Press Ctrl+C to stop."))

	err = w.Run(ctx, func(changed []string) {
		var existing []string
		for _, f := range changed {
			if _, err := os.Stat(f); err == nil {
				existing = append(existing, f)
			} else {
				rel, _ := filepath.Rel(root, f)
				fmt.Fprintln(cmd.ErrOrStderr(), cli.Muted("removed "+rel))
			}
		}
		if len(existing) == 0 {
			return
		}
		fmt.Fprintln(cmd.ErrOrStderr())
		// failures are already printed
		_, _ = cmdutil.RunBatch(ctx, cfg, existing, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	})
	if errors.Is(err, context.Canceled) {
		cli.Cancelled(cmd.ErrOrStderr(), err)
		return nil
	}
	return err
}
