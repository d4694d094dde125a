package cli

import (
	"fmt"
	"os"

	"github.com/forPelevin/vodclip/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := newRootCmd()
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vodclip",
		Short:         "Find highlights in long coding videos and cut them into clips",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			format, _ := cmd.Flags().GetString("log-format")
			return logging.Init(cmd.ErrOrStderr(), verbose, format)
		},
	}
	root.PersistentFlags().String("config", "", "Config file (default ./vodclip.yaml or ~/.vodclip/config.yaml)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Debug logging")
	root.PersistentFlags().String("log-format", logging.FormatConsole, "Log output on stderr: console or json")

	root.AddCommand(
		newDetectCmd(),
		newQuickCmd(),
		newExtractCmd(),
		newRunCmd(),
		newConfigCmd(),
	)
	return root
}
