// Package config loads keyflow configuration files.
//
// A configuration file is TOML or YAML, chosen by extension, and declares
// key mappings and command signatures:
//
//	[settings]
//	timeout_ms = 1000
//	count_modes = ["normal", "visual", "op-pending"]
//
//	[log]
//	level = "info"
//	file = "~/.local/state/keyflow/keyflow.log"
//
//	[[map]]
//	mode = "insert"
//	lhs = "jk"
//	rhs = "<Esc>"
//
//	[[command]]
//	keys = "gg"
//	name = "cursor.documentStart"
//	script = "return 'top'"
//
// Load decodes a file, Apply installs it into a remap.Table and
// command.Matcher, and Watcher reloads it when it changes on disk.
// Unknown keys are rejected with a *ParseError carrying the line number.
// Entries that cannot be applied are reported as *EntryError values
// joined into one error while the remaining entries still take effect.
package config
