package remap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/dshills/keyflow/internal/input/key"
)

// Limits on recursive expansion. Exceeding either is reported as
// RecursiveMapping.
const (
	// MaxExpansionDepth bounds how deeply right-hand sides nest.
	MaxExpansionDepth = 1000

	// MaxExpansionLength bounds the number of keys one expansion emits.
	MaxExpansionLength = 10000
)

// Registration errors.
var (
	ErrEmptyLHS    = errors.New("remap: empty left-hand side")
	ErrEmptyRHS    = errors.New("remap: empty right-hand side")
	ErrUnknownMode = errors.New("remap: unknown mode")
)

// Entry is a single mapping from LHS to RHS.
type Entry struct {
	Mode Mode
	LHS  key.Sequence
	RHS  key.Sequence

	// AllowRecursion re-resolves the RHS through the table.
	AllowRecursion bool
}

// String renders the entry in :map listing form.
func (e Entry) String() string {
	cmd := e.Mode.Letter() + "map"
	if !e.AllowRecursion {
		cmd = e.Mode.Letter() + "noremap"
	}
	return fmt.Sprintf("%s %s %s", cmd, e.LHS.VimString(), e.RHS.VimString())
}

// Table holds the remap entries of every mode.
//
// Table is not safe for concurrent use. Callers serialize mutation and
// resolution.
type Table struct {
	trees  [numModes]*prefixTree
	logger *slog.Logger
}

// Option configures a Table.
type Option func(*Table)

// WithLogger sets the logger used for table diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(t *Table) {
		if l != nil {
			t.logger = l
		}
	}
}

// New creates an empty remap table.
func New(opts ...Option) *Table {
	t := &Table{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for i := range t.trees {
		t.trees[i] = newPrefixTree()
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Set maps lhs to rhs in mode, replacing any existing mapping for lhs.
func (t *Table) Set(mode Mode, lhs, rhs key.Sequence, allowRecursion bool) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownMode, mode)
	}
	if len(lhs) == 0 {
		return ErrEmptyLHS
	}
	if len(rhs) == 0 {
		return fmt.Errorf("%w for %s", ErrEmptyRHS, lhs.VimString())
	}

	t.trees[mode].insert(&Entry{
		Mode:           mode,
		LHS:            lhs.Clone(),
		RHS:            rhs.Clone(),
		AllowRecursion: allowRecursion,
	})
	t.logger.Debug("remap set",
		"mode", mode.String(),
		"lhs", lhs.VimString(),
		"rhs", rhs.VimString(),
		"recursive", allowRecursion)
	return nil
}

// Remove deletes the mapping for lhs in mode. It reports whether a
// mapping existed.
func (t *Table) Remove(mode Mode, lhs key.Sequence) bool {
	if !mode.Valid() {
		return false
	}
	removed := t.trees[mode].remove(lhs)
	if removed {
		t.logger.Debug("remap removed", "mode", mode.String(), "lhs", lhs.VimString())
	}
	return removed
}

// Clear removes every mapping in mode.
func (t *Table) Clear(mode Mode) {
	if !mode.Valid() {
		return
	}
	t.trees[mode] = newPrefixTree()
}

// ClearAll removes every mapping in every mode.
func (t *Table) ClearAll() {
	for i := range t.trees {
		t.trees[i] = newPrefixTree()
	}
}

// Len returns the number of mappings in mode.
func (t *Table) Len(mode Mode) int {
	if !mode.Valid() {
		return 0
	}
	return t.trees[mode].size
}

// Lookup returns the mapping whose LHS is exactly lhs.
func (t *Table) Lookup(mode Mode, lhs key.Sequence) (Entry, bool) {
	if !mode.Valid() || len(lhs) == 0 {
		return Entry{}, false
	}
	node := t.trees[mode].find(lhs)
	if node == nil || node.entry == nil {
		return Entry{}, false
	}
	return *node.entry, true
}

// Entries returns the mappings of mode sorted by LHS notation.
func (t *Table) Entries(mode Mode) []Entry {
	if !mode.Valid() {
		return nil
	}
	entries := make([]Entry, 0, t.trees[mode].size)
	t.trees[mode].each(func(e *Entry) {
		entries = append(entries, *e)
	})
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LHS.VimString() < entries[j].LHS.VimString()
	})
	return entries
}

// Resolve looks up input, the keys buffered so far, in the table for mode.
//
// An exact match is provisional while a longer LHS could still match: the
// result is NeedsMoreInput and the caller either feeds another key or
// calls Flush once it gives up waiting. When the longest matching LHS is
// shorter than input, the unmatched tail is returned in Remainder.
func (t *Table) Resolve(mode Mode, input key.Sequence) Result {
	if !mode.Valid() || len(input) == 0 {
		return Result{Kind: NoMapping}
	}

	tree := t.trees[mode]
	longest, pending := tree.walk(input)
	if pending {
		return Result{Kind: NeedsMoreInput}
	}
	if longest == nil {
		return Result{Kind: NoMapping}
	}
	return t.expandEntry(tree, longest, input)
}

// Flush resolves input as complete: the longest LHS prefixing input wins
// even when longer mappings remain possible.
func (t *Table) Flush(mode Mode, input key.Sequence) Result {
	if !mode.Valid() || len(input) == 0 {
		return Result{Kind: NoMapping}
	}

	tree := t.trees[mode]
	longest, _ := tree.walk(input)
	if longest == nil {
		return Result{Kind: NoMapping}
	}
	return t.expandEntry(tree, longest, input)
}

func (t *Table) expandEntry(tree *prefixTree, e *Entry, input key.Sequence) Result {
	res := Result{
		Kind: Mapped,
		LHS:  e.LHS.Clone(),
	}
	if len(input) > len(e.LHS) {
		res.Remainder = input.Tail(len(e.LHS))
	}

	if !e.AllowRecursion {
		res.Keys = e.RHS.Clone()
		return res
	}

	x := expander{
		tree:    tree,
		visited: map[string]bool{e.LHS.Key(): true},
	}
	keys, ok := x.expand(e.RHS, 1)
	if !ok {
		t.logger.Debug("recursive mapping",
			"mode", e.Mode.String(),
			"lhs", e.LHS.VimString(),
			"at", x.cycle.VimString(),
			"emitted", x.emitted)
		res.Kind = RecursiveMapping
		res.Keys = e.RHS.Clone()
		return res
	}
	res.Keys = keys
	return res
}

// expander re-resolves recursive right-hand sides. visited holds the
// LHS keys of the current expansion chain only, so the same mapping may
// be expanded several times side by side.
type expander struct {
	tree    *prefixTree
	visited map[string]bool
	cycle   key.Sequence
	emitted int
}

// emit counts n output keys against MaxExpansionLength.
func (x *expander) emit(n int) bool {
	x.emitted += n
	return x.emitted <= MaxExpansionLength
}

// expand rewrites seq left to right, replacing the longest LHS at each
// position. It returns false when the chain revisits an LHS, nests
// deeper than MaxExpansionDepth or emits more than MaxExpansionLength
// keys.
func (x *expander) expand(seq key.Sequence, depth int) (key.Sequence, bool) {
	if depth > MaxExpansionDepth {
		return nil, false
	}

	out := make(key.Sequence, 0, len(seq))
	for i := 0; i < len(seq); {
		e, _ := x.tree.walk(seq[i:])
		if e == nil {
			if !x.emit(1) {
				return nil, false
			}
			out = append(out, seq[i])
			i++
			continue
		}

		id := e.LHS.Key()
		if x.visited[id] {
			x.cycle = e.LHS
			return nil, false
		}

		if !e.AllowRecursion {
			if !x.emit(len(e.RHS)) {
				return nil, false
			}
			out = append(out, e.RHS...)
		} else {
			x.visited[id] = true
			sub, ok := x.expand(e.RHS, depth+1)
			if !ok {
				return nil, false
			}
			delete(x.visited, id)
			out = append(out, sub...)
		}
		i += len(e.LHS)
	}
	return out, true
}
