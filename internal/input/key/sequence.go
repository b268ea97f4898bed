package key

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Sequence is an ordered series of key events, such as "g g", "d i w" or
// "<C-x><C-s>". Equality is structural and order-sensitive.
//
// Sequence values are treated as immutable once shared: methods never
// modify the receiver and always return fresh slices.
type Sequence []Event

// NewSequence creates a sequence from the given events.
func NewSequence(events ...Event) Sequence {
	seq := make(Sequence, len(events))
	copy(seq, events)
	return seq
}

// String returns a human-readable representation.
// Examples: "g g", "d i w", "C-s"
func (s Sequence) String() string {
	parts := make([]string, len(s))
	for i, e := range s {
		parts[i] = e.String()
	}
	return strings.Join(parts, " ")
}

// VimString returns the Vim notation for the sequence.
// Examples: "gg", "diw", "<C-s>"
func (s Sequence) VimString() string {
	var sb strings.Builder
	for _, e := range s {
		sb.WriteString(e.VimString())
	}
	return sb.String()
}

// Key returns a canonical encoding of the sequence suitable for use as a
// map key. Equal sequences have equal keys.
func (s Sequence) Key() string {
	var sb strings.Builder
	sb.Grow(len(s) * 8)
	for _, e := range s {
		sb.WriteString(strconv.FormatUint(uint64(e.Key), 36))
		sb.WriteByte('.')
		sb.WriteString(strconv.FormatInt(int64(e.Rune), 36))
		sb.WriteByte('.')
		sb.WriteString(strconv.FormatUint(uint64(e.Modifiers), 36))
		sb.WriteByte(';')
	}
	return sb.String()
}

// Equals returns true if two sequences are identical.
func (s Sequence) Equals(other Sequence) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix returns true if this sequence starts with the given prefix.
// Every sequence has the empty prefix.
func (s Sequence) HasPrefix(prefix Sequence) bool {
	if len(prefix) > len(s) {
		return false
	}
	return s[:len(prefix)].Equals(prefix)
}

// IsStrictPrefixOf returns true if other starts with s and is longer.
func (s Sequence) IsStrictPrefixOf(other Sequence) bool {
	return len(s) < len(other) && other.HasPrefix(s)
}

// Clone returns a copy of the sequence.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	return NewSequence(s...)
}

// Slice returns a copy of the events from start to end (exclusive).
// Out of range bounds are clamped.
func (s Sequence) Slice(start, end int) Sequence {
	if start < 0 {
		start = 0
	}
	if end > len(s) {
		end = len(s)
	}
	if start >= end {
		return Sequence{}
	}
	return NewSequence(s[start:end]...)
}

// Tail returns a copy without the first n events.
func (s Sequence) Tail(n int) Sequence {
	return s.Slice(n, len(s))
}

// Append returns a new sequence with the given events appended.
func (s Sequence) Append(events ...Event) Sequence {
	out := make(Sequence, len(s), len(s)+len(events))
	copy(out, s)
	return append(out, events...)
}

// Concat returns a new sequence made of s followed by other.
func (s Sequence) Concat(other Sequence) Sequence {
	return s.Append(other...)
}

// ParseSequence parses key notation into a Sequence.
// The string can contain space-separated keys or a continuous Vim-style
// sequence. Examples: "g g", "d i w", "<C-x><C-s>", "dd", "jk<Esc>".
func ParseSequence(s string) (Sequence, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Sequence{}, nil
	}

	if strings.Contains(s, " ") {
		parts := strings.Fields(s)
		seq := make(Sequence, 0, len(parts))
		for _, part := range parts {
			event, err := Parse(part)
			if err != nil {
				return nil, err
			}
			seq = append(seq, event)
		}
		return seq, nil
	}

	seq := make(Sequence, 0, len(s))
	for i := 0; i < len(s); {
		if s[i] == '<' {
			if end := strings.IndexByte(s[i:], '>'); end > 1 {
				event, err := Parse(s[i : i+end+1])
				if err != nil {
					return nil, err
				}
				seq = append(seq, event)
				i += end + 1
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		seq = append(seq, FromRune(r))
		i += size
	}
	return seq, nil
}

// MustParseSequence parses key notation and panics on error.
// Use only for known-valid sequences in initialization code and tests.
func MustParseSequence(s string) Sequence {
	seq, err := ParseSequence(s)
	if err != nil {
		panic("invalid key sequence: " + s + ": " + err.Error())
	}
	return seq
}
