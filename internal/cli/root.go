package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotmod/internal/version"
	"github.com/arthur-debert/dotmod/pkg/logging"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	rt := &runtime{}

	rootCmd := &cobra.Command{
		Use:     "dotmod",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLoggerTo(cmd.ErrOrStderr(), rt.verbosity, "")
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&rt.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().BoolVar(&rt.noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&rt.format, "format", "text", "Output format (text, yaml)")

	rootCmd.AddCommand(newEnableCmd(rt))
	rootCmd.AddCommand(newDisableCmd(rt))
	rootCmd.AddCommand(newUpdateCmd(rt))
	rootCmd.AddCommand(newListCmd(rt))
	rootCmd.AddCommand(newOwnedCmd(rt))
	rootCmd.AddCommand(newHashCmd(rt))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}
