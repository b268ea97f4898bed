package remap

import (
	"fmt"

	"github.com/dshills/keyflow/internal/input/key"
)

// Kind classifies the outcome of resolving input against a remap table.
type Kind uint8

const (
	// NoMapping means no LHS prefixes the input and the input prefixes
	// no LHS. The input should be used literally.
	NoMapping Kind = iota

	// NeedsMoreInput means the input is a strict prefix of at least one
	// LHS. The caller buffers it and resolves again with one more key.
	NeedsMoreInput

	// Mapped means an LHS matched and Keys holds the final expansion.
	Mapped

	// RecursiveMapping means recursive expansion revisited an LHS of the
	// current chain. Keys holds the matched entry's RHS unexpanded.
	RecursiveMapping
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case NoMapping:
		return "NoMapping"
	case NeedsMoreInput:
		return "NeedsMoreInput"
	case Mapped:
		return "Mapped"
	case RecursiveMapping:
		return "RecursiveMapping"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Result is the outcome of Table.Resolve or Table.Flush.
type Result struct {
	Kind Kind

	// Keys is the expansion for Mapped and the first unexpanded step for
	// RecursiveMapping. It is nil otherwise.
	Keys key.Sequence

	// LHS is the left-hand side that matched, for Mapped and
	// RecursiveMapping.
	LHS key.Sequence

	// Remainder holds input keys after the matched LHS. They have not been
	// looked up and must be resolved again by the caller.
	Remainder key.Sequence
}

// IsMatch reports whether an entry matched the input.
func (r Result) IsMatch() bool {
	return r.Kind == Mapped || r.Kind == RecursiveMapping
}

// String returns a compact description for logs and traces.
func (r Result) String() string {
	switch r.Kind {
	case Mapped, RecursiveMapping:
		s := fmt.Sprintf("%s(%s -> %s)", r.Kind, r.LHS.VimString(), r.Keys.VimString())
		if len(r.Remainder) > 0 {
			s += " rest " + r.Remainder.VimString()
		}
		return s
	default:
		return r.Kind.String()
	}
}
