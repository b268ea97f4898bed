// Package script runs command handlers written in Lua.
//
// An Engine owns one sandboxed gopher-lua state. Compile turns a Lua
// chunk into a command.Handler; when the command runs, the chunk is
// called with a table describing the invocation:
//
//	local inv = ...
//	-- inv.name      command name
//	-- inv.keys      matched keys in Vim notation
//	-- inv.argument  argument key, or nil
//	-- inv.count     repeat count (1 when none was typed)
//	return inv.name .. " x" .. inv.count
//
// The chunk's first return value becomes the command result. A Lua error
// becomes the handler's error. Only the base, table, string and math
// libraries are available, and the keyflow module provides log(msg).
//
// Lua states are not goroutine-safe. Handlers from one Engine must be run
// from the goroutine that owns the matcher.
package script
