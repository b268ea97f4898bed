// Package command matches typed keystrokes against registered multi-key
// command signatures such as "gg", "<C-w>v" or "f{char}".
//
// Keys are fed one at a time. After each key the Matcher reports whether
// the buffered keys match nothing (NoMatch), could still match
// (NeedsMoreInput), completed a signature (Ran or Errored), or completed
// one signature while still being a prefix of a longer one
// (AmbiguousPrefix). In the ambiguous case the caller keeps feeding keys
// or calls Flush to settle on the earliest registered candidate.
//
// Matching compares keystrokes structurally, so modifiers are significant.
package command
