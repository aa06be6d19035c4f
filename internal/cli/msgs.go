package cli

// Command descriptions
const (
	MsgRootShort = "Provision dotfiles from declarative modules"
	MsgRootLong  = `dotmod installs files into your home directory from modules declared in
~/.config/dotmod. Every path it creates is recorded, so disabling a module
removes exactly what it installed and leaves anything you changed alone.`

	MsgEnableShort = "Enable module(s) and create their files"
	MsgEnableLong  = `Enable resolves each module's imports, fetches its sources and creates
every declared link. If any link fails, everything created for that module
is rolled back.

Arguments are module names or glob patterns (e.g. 'shell-*').`
	MsgEnableExample = `  # Enable one module
  dotmod enable git

  # Replace files that exist but are not owned by dotmod
  dotmod enable --force git

  # Download url sources again
  dotmod enable --refetch 'editor-*'`

	MsgDisableShort = "Disable module(s) and remove their files"
	MsgDisableLong  = `Disable removes the paths a module created, newest first. Paths that were
modified since they were created are kept and reported. A module stays
enabled until all of its paths are gone.`
	MsgDisableExample = `  # Disable a module
  dotmod disable git

  # Forget paths that were already deleted by hand
  dotmod disable --prune git`

	MsgUpdateShort = "Re-apply enabled module(s) from their current definitions"
	MsgUpdateLong  = `Update disables and re-enables modules so the files on disk follow the
current configuration. Modules removed from the configuration are disabled.`
	MsgUpdateExample = `  # Update every enabled module
  dotmod update --all

  # Update and download url sources again
  dotmod update --refetch git`

	MsgListShort  = "List modules and whether they are enabled"
	MsgOwnedShort = "Show the paths owned by enabled modules"
	MsgOwnedLong  = `Owned lists every recorded path and whether it is still as dotmod left it
(owned), was modified (changed) or was deleted (missing).`
	MsgHashShort = "Show digests of named sources"
	MsgHashLong  = `Hash computes the digest of every named source slot and compares it with
the declared digest. Use the digest it prints to pin a source.`

	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
)

// Status messages
const (
	MsgNoModules       = "No modules defined."
	MsgNoOwnedPaths    = "No owned paths."
	MsgNoSources       = "No named sources."
	MsgVersionFormat   = "dotmod version %s\n"
	MsgCommitFormat    = "Commit: %s\n"
	MsgBuiltFormat     = "Built:  %s\n"
	MsgErrUpdateNoArgs = "specify modules to update or use --all"
)
