package count

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dshills/keyflow/internal/input/key"
)

// run feeds keys until the parse stops asking for more.
func run(t *testing.T, keys key.Sequence) Result {
	t.Helper()
	require.NotEmpty(t, keys)
	res := Begin(keys[0])
	for _, ki := range keys[1:] {
		require.Equal(t, NeedsMore, res.Kind, "parse ended before %s", ki)
		res = res.Next.Feed(ki)
	}
	return res
}

func TestBegin(t *testing.T) {
	tests := []struct {
		name  string
		input string
		count int
		term  key.Event
	}{
		{"no count", "x", 1, key.FromRune('x')},
		{"uppercase terminator", "1A", 1, key.FromRune('A')},
		{"two digits", "23B", 23, key.FromRune('B')},
		{"inner zero", "205j", 205, key.FromRune('j')},
		{"leading zero is a motion", "0", 1, key.FromRune('0')},
		{"special terminator", "7<Esc>", 7, key.NewSpecialEvent(key.KeyEscape, key.ModNone)},
		{"modified digit terminates", "4<C-5>", 4, key.NewRuneEvent('5', key.ModCtrl)},
		{"keypad digit terminates", "3<k4>", 3, key.NewSpecialEvent(key.KeyKP4, key.ModNone)},
		{"max", "2147483647w", MaxCount, key.FromRune('w')},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, key.MustParseSequence(tt.input))
			assert.Equal(t, Complete, res.Kind)
			assert.Equal(t, tt.count, res.Count)
			assert.Equal(t, tt.term, res.Terminator)
			assert.Nil(t, res.Next)
			assert.NoError(t, res.Err)
		})
	}
}

func TestExplicit(t *testing.T) {
	assert.False(t, Begin(key.FromRune('j')).Explicit())
	assert.True(t, run(t, key.FromString("1j")).Explicit())
	assert.Equal(t, 2, run(t, key.FromString("10j")).Digits)
}

func TestOverflow(t *testing.T) {
	res := run(t, key.FromString("2147483648"))
	assert.Equal(t, Overflow, res.Kind)
	assert.ErrorIs(t, res.Err, ErrOverflow)
	assert.Equal(t, 214748364, res.Count)
	assert.Equal(t, key.FromRune('8'), res.Terminator)
	assert.Nil(t, res.Next)
}

func TestStateIsImmutable(t *testing.T) {
	res := Begin(key.FromRune('4'))
	require.Equal(t, NeedsMore, res.Kind)
	st := res.Next

	a := st.Feed(key.FromRune('2'))
	b := st.Feed(key.FromRune('x'))

	require.Equal(t, NeedsMore, a.Kind)
	assert.Equal(t, 42, a.Next.Value())
	assert.Equal(t, Complete, b.Kind)
	assert.Equal(t, 4, b.Count)
	assert.Equal(t, 4, st.Value())
	assert.Equal(t, 1, b.Digits)
}

var terminators = []key.Event{
	key.FromRune('a'),
	key.FromRune('G'),
	key.FromRune('$'),
	key.FromRune(' '),
	key.NewRuneEvent('1', key.ModCtrl),
	key.NewSpecialEvent(key.KeyEscape, key.ModNone),
	key.NewSpecialEvent(key.KeyEnter, key.ModNone),
}

func TestPropertyDigitsThenTerminator(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, MaxCount).Draw(t, "count")
		term := rapid.SampledFrom(terminators).Draw(t, "terminator")

		input := key.FromString(strconv.Itoa(n)).Append(term)
		res := Begin(input[0])
		for _, ki := range input[1:] {
			if res.Kind != NeedsMore {
				t.Fatalf("parse of %q stopped early: %s", input.VimString(), res.Kind)
			}
			res = res.Next.Feed(ki)
		}

		if res.Kind != Complete || res.Count != n || res.Terminator != term {
			t.Fatalf("parse of %q = %s(%d, %v), want Complete(%d, %v)",
				input.VimString(), res.Kind, res.Count, res.Terminator, n, term)
		}
	})
}

func TestPropertyNoLeadingDigit(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		first := rapid.SampledFrom(append(terminators, key.FromRune('0'))).Draw(t, "first")
		res := Begin(first)
		if res.Kind != Complete || res.Count != 1 || res.Terminator != first {
			t.Fatalf("Begin(%v) = %s(%d, %v), want Complete(1, %v)", first, res.Kind, res.Count, res.Terminator, first)
		}
	})
}

func TestPropertyLongRunsOverflow(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		digits := rapid.StringMatching(`[1-9][0-9]{10,20}`).Draw(t, "digits")
		input := key.FromString(digits + "x")
		res := Begin(input[0])
		for _, ki := range input[1:] {
			if res.Kind != NeedsMore {
				break
			}
			res = res.Next.Feed(ki)
		}
		if res.Kind != Overflow {
			t.Fatalf("parse of %q = %s, want Overflow", digits, res.Kind)
		}
	})
}
