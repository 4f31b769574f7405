package main

import (
	"github.com/spf13/cobra"

	"github.com/thelfer/tfel-sub013/internal/cmdutil"
)

var flagDryRun bool

var fixCmd = &cobra.Command{
	Use:   "fix [file|dir]...",
	Short: "Replace misspelt keywords and rule names",
	Long: `Replace every misspelt keyword, rule name, algorithm or method by the name
suggested in the diagnostic. The original content of a changed file is kept
next to it with a .bak suffix.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validate(); err != nil {
			return err
		}
		return cmdutil.RunFix(cfg, args, flagDryRun, cmd.OutOrStdout())
	},
}

func init() {
	fixCmd.Flags().BoolVarP(&flagDryRun, "dry-run", "n", false, "print the fixes without writing them")
	rootCmd.AddCommand(fixCmd)
}
