package cli

import (
	stderrors "errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotmod/pkg/engine"
)

func newEnableCmd(rt *runtime) *cobra.Command {
	var opts engine.EnableOptions

	cmd := &cobra.Command{
		Use:     "enable <module|pattern>...",
		Short:   MsgEnableShort,
		Long:    MsgEnableLong,
		Example: MsgEnableExample,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.setup(cmd); err != nil {
				return err
			}
			log.Info().Strs("modules", args).Bool("force", opts.Force).Bool("refetch", opts.Refetch).Msg("Enabling modules")
			return rt.finish(rt.engine.Enable(args, opts))
		},
	}
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Replace existing files that no module owns")
	cmd.Flags().BoolVar(&opts.Refetch, "refetch", false, "Fetch sources again even when cached")
	return cmd
}

func newDisableCmd(rt *runtime) *cobra.Command {
	var opts engine.DisableOptions

	cmd := &cobra.Command{
		Use:     "disable <module|pattern>...",
		Short:   MsgDisableShort,
		Long:    MsgDisableLong,
		Example: MsgDisableExample,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.setup(cmd); err != nil {
				return err
			}
			log.Info().Strs("modules", args).Bool("prune", opts.Prune).Msg("Disabling modules")
			return rt.finish(rt.engine.Disable(args, opts))
		},
	}
	cmd.Flags().BoolVar(&opts.Prune, "prune", false, "Forget recorded paths that no longer exist")
	return cmd
}

func newUpdateCmd(rt *runtime) *cobra.Command {
	var (
		opts engine.UpdateOptions
		all  bool
	)

	cmd := &cobra.Command{
		Use:     "update [module|pattern]...",
		Short:   MsgUpdateShort,
		Long:    MsgUpdateLong,
		Example: MsgUpdateExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return stderrors.New(MsgErrUpdateNoArgs)
			}
			if err := rt.setup(cmd); err != nil {
				return err
			}
			log.Info().Strs("modules", args).Bool("all", all).Msg("Updating modules")
			return rt.finish(rt.engine.Update(args, all, opts))
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Update every enabled module")
	cmd.Flags().BoolVar(&opts.Refetch, "refetch", false, "Fetch sources again even when cached")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Replace existing files that no module owns")
	return cmd
}
