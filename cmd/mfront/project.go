package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thelfer/tfel-sub013/internal/cli"
	"github.com/thelfer/tfel-sub013/internal/cmdutil"
	"github.com/thelfer/tfel-sub013/internal/config"
	"github.com/thelfer/tfel-sub013/internal/ir"
	"github.com/thelfer/tfel-sub013/internal/version"
)

var flagForce bool

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a project configuration and a starter law",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		if _, err := cmdutil.InitProject(dir, cfg, flagForce, cmd.OutOrStdout()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.Hint("Run 'mfront check' to check the project."))
		return nil
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the environment, configuration and project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if n := cmdutil.RunDoctor(cmd.OutOrStdout(), cfg); n > 0 {
			return fmt.Errorf("%d check%s failed", n, cmdutil.Plural(n))
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := cfg.YAML()
		if err != nil {
			return err
		}
		if len(cfg.Sources) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), cli.Muted("# built-in defaults"))
		}
		for _, src := range cfg.Sources {
			fmt.Fprintln(cmd.OutOrStdout(), cli.Muted("# from " + src))
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <document>",
	Short: "Show an exported description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var doc *ir.Document
		if strings.EqualFold(filepath.Ext(args[0]), ".json") {
			doc, err = ir.FromJSON(data)
		} else {
			doc, err = ir.FromYAML(data)
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		if version.WrittenByNewer(doc.Generator) {
			fmt.Fprintln(cmd.ErrOrStderr(), cli.Warn(fmt.Sprintf("%s was written by %s, newer than this mfront (%s)", args[0], doc.Generator, version.Info())))
		}
		cmdutil.PrintDocument(cmd.OutOrStdout(), doc)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mfront %s\n", version.Info())
	},
}

func init() {
	initCmd.Flags().BoolVar(&flagForce, "force", false, "overwrite an existing "+config.FileName)
	rootCmd.AddCommand(initCmd, doctorCmd, configCmd, inspectCmd, versionCmd)
}
