// Package remap implements per-mode key remapping in the style of Vim's
// :map and :noremap.
//
// A Table holds, for every Mode, a set of entries mapping a left-hand
// side key sequence to a right-hand side. Resolve is called with the keys
// buffered so far and answers one of:
//
//	NoMapping         use the keys literally
//	NeedsMoreInput    buffer and resolve again with one more key
//	Mapped            Keys is the final expansion
//	RecursiveMapping  expansion looped; Keys is the unexpanded RHS
//
// Entries created with recursion allowed have their RHS expanded again
// through the same mode's table until no mapping applies. A left-hand
// side that reappears in its own expansion chain stops the expansion.
//
// Usage:
//
//	t := remap.New()
//	t.Set(remap.ModeInsert, key.FromString("jk"), key.MustParseSequence("<Esc>"), false)
//
//	res := t.Resolve(remap.ModeInsert, key.FromString("j"))
//	// res.Kind == remap.NeedsMoreInput
package remap
