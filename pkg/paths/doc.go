// Package paths owns the on-disk layout of dotmod.
//
// Three roots are used:
//
//	config  $DOTMOD_CONFIG_DIR or $XDG_CONFIG_HOME/dotmod
//	        dotmod.toml, modules.d/, sources/<name>
//	cache   $DOTMOD_CACHE_DIR or $XDG_CACHE_HOME/dotmod
//	        anonymous/<key>, markers/<key>.cbor
//	state   $DOTMOD_STATE_DIR or $XDG_STATE_HOME/dotmod
//	        state.toml, dotmod.log
//
// None of these directories is created here; the components writing into
// them create what they need on first use.
//
// The Expander resolves declared link destinations and local source paths
// (~, ~user, home-relative) against a users.Resolver.
package paths
