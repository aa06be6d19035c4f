// Package config loads dotmod settings and the module registry.
//
// Sources, in increasing precedence:
//
//  1. built-in defaults (embedded/defaults.toml)
//  2. <config>/dotmod.toml
//  3. <config>/modules.d/*.toml, *.yaml, *.yml in lexical order
//  4. DOTMOD_<SECTION>_<KEY> environment variables
//  5. overrides passed by the caller
//
// Registry schema:
//
//	[sources.gitconfig]
//	url = "https://example.com/gitconfig"
//	digest = "blake3:..."
//
//	[modules.git]
//	imports = ["base"]
//
//	[[modules.git.links]]
//	path = "~/.gitconfig"
//	source = "gitconfig"
//
//	[[modules.git.links]]
//	path = ".config/git/ignore"
//	kind = "symlink"
//	text = "*.swp\n"
//
// A source table with none of text, file, symlink or url is static: its
// content is expected in <config>/sources/<name>. Module and source names
// may not contain dots.
package config
