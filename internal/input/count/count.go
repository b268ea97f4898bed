// Package count parses the numeric repeat count typed before a command,
// one keystroke at a time.
//
// Begin takes the first keystroke. While digits arrive the result is
// NeedsMore and its Next state takes the following keystroke. The first
// non-digit completes the count and is returned as the terminator. A
// leading '0' is not a count digit.
//
//	res := count.Begin(ev)
//	for res.Kind == count.NeedsMore {
//	    res = res.Next.Feed(nextKey())
//	}
package count

import (
	"errors"
	"fmt"
	"math"

	"github.com/dshills/keyflow/internal/input/key"
)

// MaxCount is the largest count accepted.
const MaxCount = math.MaxInt32

// ErrOverflow is reported when a count exceeds MaxCount.
var ErrOverflow = errors.New("count: exceeds maximum")

// Kind classifies a parse step.
type Kind uint8

const (
	// Complete means the count is known and Terminator ended it.
	Complete Kind = iota

	// NeedsMore means a digit was consumed; feed the next key to Next.
	NeedsMore

	// Overflow means the digits exceeded MaxCount. Terminator is the
	// digit that overflowed.
	Overflow
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Complete:
		return "Complete"
	case NeedsMore:
		return "NeedsMore"
	case Overflow:
		return "Overflow"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Result is the outcome of one parse step.
type Result struct {
	Kind Kind

	// Count is the parsed count for Complete, at least 1. For Overflow it
	// holds the value accumulated before the offending digit.
	Count int

	// Digits is the number of digit keys consumed so far.
	Digits int

	// Terminator is the key that ended the count.
	Terminator key.Event

	// Next continues the parse when Kind is NeedsMore.
	Next *State

	// Err is ErrOverflow for Overflow.
	Err error
}

// Explicit reports whether the user typed a count.
func (r Result) Explicit() bool {
	return r.Digits > 0
}

// State is an in-progress count. States are immutable: Feed returns a
// new state, so an abandoned or repeated step has no side effects.
type State struct {
	value  int
	digits int
}

// Value returns the count accumulated so far.
func (s *State) Value() int {
	return s.value
}

// Begin starts parsing with the first keystroke.
func Begin(first key.Event) Result {
	d, ok := first.Digit()
	if !ok || d == 0 {
		return Result{Kind: Complete, Count: 1, Terminator: first}
	}
	return (&State{}).accept(d, first)
}

// Feed continues the parse with the next keystroke.
func (s *State) Feed(ki key.Event) Result {
	d, ok := ki.Digit()
	if !ok {
		return Result{Kind: Complete, Count: s.value, Digits: s.digits, Terminator: ki}
	}
	return s.accept(d, ki)
}

func (s *State) accept(d int, ki key.Event) Result {
	// Guard against exceeding MaxCount
	if s.value > (MaxCount-d)/10 {
		return Result{
			Kind:       Overflow,
			Count:      s.value,
			Digits:     s.digits,
			Terminator: ki,
			Err:        fmt.Errorf("%w: %d%d", ErrOverflow, s.value, d),
		}
	}
	next := &State{value: s.value*10 + d, digits: s.digits + 1}
	return Result{Kind: NeedsMore, Count: next.value, Digits: next.digits, Next: next}
}
