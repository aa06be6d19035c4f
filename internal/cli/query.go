package cli

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotmod/pkg/engine"
)

func newListCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: MsgListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.setup(cmd); err != nil {
				return err
			}
			modules := rt.engine.List()
			if len(modules) == 0 {
				return rt.renderer.RenderMessage("Muted", MsgNoModules)
			}
			return rt.renderer.RenderModules(modules)
		},
	}
}

func newOwnedCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "owned [module|pattern]...",
		Short: MsgOwnedShort,
		Long:  MsgOwnedLong,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.setup(cmd); err != nil {
				return err
			}
			owned, err := rt.engine.OwnedPaths(args)
			if err != nil {
				return err
			}
			if len(owned) == 0 {
				return rt.renderer.RenderMessage("Muted", MsgNoOwnedPaths)
			}
			return rt.renderer.RenderOwned(owned)
		},
	}
}

func newHashCmd(rt *runtime) *cobra.Command {
	var opts engine.HashOptions

	cmd := &cobra.Command{
		Use:   "hash [source|pattern]...",
		Short: MsgHashShort,
		Long:  MsgHashLong,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.setup(cmd); err != nil {
				return err
			}
			digests, err := rt.engine.Hash(args, opts)
			if err != nil {
				return err
			}
			if len(digests) == 0 {
				return rt.renderer.RenderMessage("Muted", MsgNoSources)
			}
			if err := rt.renderer.RenderDigests(digests); err != nil {
				return err
			}
			for _, d := range digests {
				if d.Status == engine.DigestMismatch {
					return errDigestMismatch
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.Fetch, "fetch", false, "Refresh sources before hashing")
	return cmd
}
