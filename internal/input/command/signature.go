package command

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/keyflow/internal/input/key"
)

// Handler executes a matched command. The returned value is passed back
// to the caller in Result.Value.
type Handler func(inv Invocation) (any, error)

// Signature describes a registered command: the keys that invoke it and
// what runs when they are typed.
type Signature struct {
	// ID is assigned by Register.
	ID uuid.UUID

	// Keys is the sequence that invokes the command.
	Keys key.Sequence

	// Name identifies the command, e.g. "cursor.documentStart".
	Name string

	// TakesArgument requires one more keystroke after Keys, as with
	// "f{char}" or "m{mark}".
	TakesArgument bool

	// Handler runs when the signature is matched. It may be nil.
	Handler Handler

	order int
}

// String renders the signature as notation plus name, with "{arg}"
// marking an argument slot.
func (s Signature) String() string {
	keys := s.Keys.VimString()
	if s.TakesArgument {
		keys += "{arg}"
	}
	return fmt.Sprintf("%s %s", keys, s.Name)
}

// sameShape reports whether two signatures accept exactly the same input.
func (s Signature) sameShape(other Signature) bool {
	return s.TakesArgument == other.TakesArgument && s.Keys.Equals(other.Keys)
}

// satisfiedBy reports whether buf completes the signature.
func (s Signature) satisfiedBy(buf key.Sequence) bool {
	if s.TakesArgument {
		return len(buf) == len(s.Keys)+1 && buf.HasPrefix(s.Keys)
	}
	return s.Keys.Equals(buf)
}

// extendsBeyond reports whether more keys after buf could still complete
// the signature.
func (s Signature) extendsBeyond(buf key.Sequence) bool {
	if s.TakesArgument {
		return s.Keys.HasPrefix(buf)
	}
	return buf.IsStrictPrefixOf(s.Keys)
}

// Invocation is passed to a Handler.
type Invocation struct {
	Signature Signature

	// Keys are the keys that matched, including the argument.
	Keys key.Sequence

	// Argument is the trailing keystroke for argument-taking signatures.
	Argument    key.Event
	HasArgument bool

	// Count is the repeat count set with Matcher.SetCount, 1 by default.
	Count int
}
