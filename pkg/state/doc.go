// Package state records which module owns which filesystem path.
//
// Every enabled module has an append-only log of the paths it created, in
// creation order, each with the fingerprint taken right after creation.
// Disable walks the log backwards so files go before the directories that
// hold them. A reverse index answers "who owns this path" in O(1) and
// enforces that no path has two owners.
//
// The state lives in one TOML file:
//
//	version = 1
//
//	[[modules]]
//	  name = "shell"
//
//	  [[modules.entries]]
//	    path = "/home/me/.config/zsh"
//	    kind = "directory"
//
//	  [[modules.entries]]
//	    path = "/home/me/.config/zsh/.zshrc"
//	    kind = "file"
//	    size = 812
//	    digest = "5e1c..."
//
// Load is tolerant (missing or corrupt means empty) and Save replaces the
// file atomically.
package state
