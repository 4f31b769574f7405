package main

import (
	"github.com/spf13/cobra"

	"github.com/thelfer/tfel-sub013/internal/bricks"
	"github.com/thelfer/tfel-sub013/internal/cmdutil"
	"github.com/thelfer/tfel-sub013/internal/dsl"
)

var keywordsOpts cmdutil.KeywordsOptions

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Show the keyword reference",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmdutil.RunKeywords(cmd.OutOrStdout(), keywordsOpts)
	},
}

var explainCmd = &cobra.Command{
	Use:   "explain [topic]",
	Short: "Explain a topic of the languages",
	Args:  cobra.MaximumNArgs(1),
	ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return cmdutil.ExplainTopicNames(), cobra.ShellCompDirectiveNoFileComp
	},
	Run: func(cmd *cobra.Command, args []string) {
		topic := ""
		if len(args) > 0 {
			topic = args[0]
		}
		cmdutil.RunExplain(cmd.OutOrStdout(), topic)
	},
}

var bricksCmd = &cobra.Command{
	Use:   "bricks [rule]",
	Short: "List the registered bricks and rules",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		return cmdutil.RunBricks(cmd.OutOrStdout(), bricks.Global(), name)
	},
}

func init() {
	f := keywordsCmd.Flags()
	f.StringVarP(&keywordsOpts.DSL, "dsl", "d", "", "restrict to the keywords of a DSL")
	f.StringVarP(&keywordsOpts.Search, "search", "s", "", "search the reference")
	f.StringVar(&keywordsOpts.Section, "section", "", "show one category or topic")
	f.StringVar(&keywordsOpts.Complete, "complete", "", "complete a keyword prefix")
	f.BoolVar(&keywordsOpts.Raw, "raw", false, "print the keywords of --dsl, one per line")
	f.BoolVar(&keywordsOpts.Pager, "pager", false, "page the full reference")
	_ = keywordsCmd.RegisterFlagCompletionFunc("dsl", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return dsl.Names(), cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(keywordsCmd, explainCmd, bricksCmd)
}
