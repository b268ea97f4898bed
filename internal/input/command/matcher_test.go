package command

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dshills/keyflow/internal/input/key"
)

func register(t *testing.T, m *Matcher, keys, name string, arg bool, h Handler) Signature {
	t.Helper()
	sig, err := m.Register(Signature{
		Keys:          key.MustParseSequence(keys),
		Name:          name,
		TakesArgument: arg,
		Handler:       h,
	})
	require.NoError(t, err)
	return sig
}

func returns(v any) Handler {
	return func(Invocation) (any, error) { return v, nil }
}

func feed(m *Matcher, keys string) []Result {
	var out []Result
	for _, ev := range key.MustParseSequence(keys) {
		out = append(out, m.Feed(ev))
	}
	return out
}

func TestRegisterValidation(t *testing.T) {
	m := NewMatcher()

	_, err := m.Register(Signature{Name: "x"})
	assert.ErrorIs(t, err, ErrEmptySignature)

	_, err = m.Register(Signature{Keys: key.FromString("gg")})
	assert.ErrorIs(t, err, ErrNoName)

	sig := register(t, m, "gg", "top", false, nil)
	assert.NotEqual(t, uuid.Nil, sig.ID)

	_, err = m.Register(Signature{Keys: key.FromString("gg"), Name: "other"})
	assert.ErrorIs(t, err, ErrDuplicateSignature)

	// Same keys with an argument slot accept different input.
	register(t, m, "gg", "top-arg", true, nil)
	assert.Equal(t, 2, m.Len())
}

func TestRegisterKeepsGivenID(t *testing.T) {
	m := NewMatcher()
	id := uuid.New()
	sig, err := m.Register(Signature{ID: id, Keys: key.FromString("x"), Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, id, sig.ID)
}

func TestFeedTwoKeySignature(t *testing.T) {
	m := NewMatcher()
	register(t, m, "aa", "double", false, returns("ok"))

	res := m.Feed(key.FromRune('a'))
	assert.Equal(t, NeedsMoreInput, res.Kind)
	assert.True(t, m.IsWaiting())
	assert.Equal(t, "a", m.Pending().VimString())

	res = m.Feed(key.FromRune('a'))
	assert.Equal(t, Ran, res.Kind)
	assert.Equal(t, "double", res.Signature.Name)
	assert.Equal(t, "ok", res.Value)
	assert.Equal(t, 1, res.Count)
	assert.False(t, m.IsWaiting())
}

func TestFeedNoMatch(t *testing.T) {
	m := NewMatcher()
	register(t, m, "gg", "top", false, nil)

	results := feed(m, "gx")
	assert.Equal(t, NeedsMoreInput, results[0].Kind)
	assert.Equal(t, NoMatch, results[1].Kind)
	assert.Equal(t, "gx", results[1].Keys.VimString())
	assert.False(t, m.IsWaiting())

	res := m.Feed(key.FromRune('q'))
	assert.Equal(t, NoMatch, res.Kind)
	assert.Equal(t, "q", res.Keys.VimString())
}

func TestFeedModifiersAreSignificant(t *testing.T) {
	m := NewMatcher()
	register(t, m, "<C-w>v", "split", false, nil)

	assert.Equal(t, NoMatch, m.Feed(key.FromRune('w')).Kind)
	assert.Equal(t, NoMatch, m.Feed(key.NewRuneEvent('w', key.ModAlt)).Kind)

	results := feed(m, "<C-w>v")
	assert.Equal(t, NeedsMoreInput, results[0].Kind)
	assert.Equal(t, Ran, results[1].Kind)
}

func TestFeedAmbiguousPrefix(t *testing.T) {
	m := NewMatcher()
	register(t, m, "d", "delete-line", false, returns(1))
	register(t, m, "dd", "delete-two", false, returns(2))
	register(t, m, "ddd", "delete-three", false, returns(3))

	res := m.Feed(key.FromRune('d'))
	assert.Equal(t, AmbiguousPrefix, res.Kind)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "delete-line", res.Candidates[0].Name)
	assert.True(t, m.IsWaiting())

	res = m.Feed(key.FromRune('d'))
	assert.Equal(t, AmbiguousPrefix, res.Kind)
	assert.Equal(t, "delete-two", res.Candidates[0].Name)

	res = m.Feed(key.FromRune('d'))
	assert.Equal(t, Ran, res.Kind)
	assert.Equal(t, 3, res.Value)
}

func TestFlushRunsEarliestCandidate(t *testing.T) {
	m := NewMatcher()
	register(t, m, "g", "goto", false, returns("g"))
	register(t, m, "gg", "top", false, returns("gg"))

	require.Equal(t, AmbiguousPrefix, m.Feed(key.FromRune('g')).Kind)
	res := m.Flush()
	assert.Equal(t, Ran, res.Kind)
	assert.Equal(t, "g", res.Value)
	assert.False(t, m.IsWaiting())
}

func TestFlushWithoutCandidate(t *testing.T) {
	m := NewMatcher()
	register(t, m, "gg", "top", false, nil)

	m.Feed(key.FromRune('g'))
	res := m.Flush()
	assert.Equal(t, NoMatch, res.Kind)
	assert.Equal(t, "g", res.Keys.VimString())

	res = m.Flush()
	assert.Equal(t, NoMatch, res.Kind)
	assert.Empty(t, res.Keys)
}

func TestFeedArgument(t *testing.T) {
	m := NewMatcher()
	var got Invocation
	register(t, m, "f", "find-char", true, func(inv Invocation) (any, error) {
		got = inv
		return nil, nil
	})

	results := feed(m, "fx")
	assert.Equal(t, NeedsMoreInput, results[0].Kind)
	require.Equal(t, Ran, results[1].Kind)
	assert.True(t, results[1].HasArgument)
	assert.Equal(t, key.FromRune('x'), results[1].Argument)

	assert.True(t, got.HasArgument)
	assert.Equal(t, key.FromRune('x'), got.Argument)
	assert.Equal(t, "fx", got.Keys.VimString())
	assert.Equal(t, "find-char", got.Signature.Name)
}

func TestFeedArgumentAfterLongerSignature(t *testing.T) {
	m := NewMatcher()
	register(t, m, "m", "mark", true, returns("mark"))
	register(t, m, "mm", "double-m", false, returns("mm"))

	res := m.Feed(key.FromRune('m'))
	assert.Equal(t, NeedsMoreInput, res.Kind)

	res = m.Feed(key.FromRune('m'))
	assert.Equal(t, Ran, res.Kind)
	assert.Equal(t, "mark", res.Value, "earliest registered wins")
}

func TestHandlerErrors(t *testing.T) {
	boom := errors.New("boom")
	m := NewMatcher()
	register(t, m, "x", "fails", false, func(Invocation) (any, error) { return nil, boom })
	register(t, m, "y", "panics", false, func(Invocation) (any, error) { panic("bad") })
	register(t, m, "zz", "ok", false, returns(true))

	res := m.Feed(key.FromRune('x'))
	assert.Equal(t, Errored, res.Kind)
	assert.ErrorIs(t, res.Err, boom)
	assert.Equal(t, "fails", res.Signature.Name)
	assert.False(t, m.IsWaiting())

	res = m.Feed(key.FromRune('y'))
	assert.Equal(t, Errored, res.Kind)
	assert.ErrorIs(t, res.Err, ErrHandlerPanic)
	assert.Nil(t, res.Value)

	// The matcher still works after failures.
	results := feed(m, "zz")
	assert.Equal(t, Ran, results[1].Kind)
}

func TestCount(t *testing.T) {
	m := NewMatcher()
	var counts []int
	register(t, m, "j", "down", false, func(inv Invocation) (any, error) {
		counts = append(counts, inv.Count)
		return nil, nil
	})

	m.SetCount(5)
	res := m.Feed(key.FromRune('j'))
	assert.Equal(t, 5, res.Count)

	m.Feed(key.FromRune('j'))
	assert.Equal(t, []int{5, 1}, counts)

	m.SetCount(3)
	m.Reset()
	m.Feed(key.FromRune('j'))
	assert.Equal(t, []int{5, 1, 1}, counts)
}

func TestUnregister(t *testing.T) {
	m := NewMatcher()
	register(t, m, "gg", "top", false, nil)
	register(t, m, "gg", "top-arg", true, nil)
	register(t, m, "G", "bottom", false, nil)

	assert.False(t, m.Unregister(key.FromString("zz")))
	assert.True(t, m.Unregister(key.FromString("gg")))
	assert.Equal(t, 1, m.Len())

	assert.Equal(t, NoMatch, m.Feed(key.FromRune('g')).Kind)
	assert.Equal(t, Ran, m.Feed(key.FromRune('G')).Kind)
}

func TestResetIsIdempotent(t *testing.T) {
	m := NewMatcher()
	register(t, m, "ab", "ab", false, nil)

	m.Reset()
	m.Reset()
	assert.False(t, m.IsWaiting())

	m.Feed(key.FromRune('a'))
	m.Reset()
	results := feed(m, "ab")
	assert.Equal(t, NeedsMoreInput, results[0].Kind)
	assert.Equal(t, Ran, results[1].Kind)
}

func TestSignaturesInRegistrationOrder(t *testing.T) {
	m := NewMatcher()
	register(t, m, "b", "second-key", false, nil)
	register(t, m, "a", "first-key", false, nil)

	sigs := m.Signatures()
	require.Len(t, sigs, 2)
	assert.Equal(t, "second-key", sigs[0].Name)
	assert.Equal(t, "first-key", sigs[1].Name)
	assert.Equal(t, "a first-key", sigs[1].String())
}

func TestPropertyRegisteredSequencesRun(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := NewMatcher()
		words := rapid.SliceOfNDistinct(
			rapid.StringMatching(`[abc]{1,4}`), 1, 6, rapid.ID[string],
		).Draw(t, "words")

		for _, w := range words {
			if _, err := m.Register(Signature{Keys: key.FromString(w), Name: w, Handler: returns(w)}); err != nil {
				t.Fatalf("Register(%q): %v", w, err)
			}
		}

		w := rapid.SampledFrom(words).Draw(t, "typed")
		var last Result
		for _, ev := range key.FromString(w) {
			last = m.Feed(ev)
			if last.Kind == NoMatch || last.Kind == Errored {
				t.Fatalf("typing %q hit %s", w, last.Kind)
			}
		}

		switch last.Kind {
		case Ran:
			if last.Value != w {
				t.Fatalf("typing %q ran %v", w, last.Value)
			}
		case AmbiguousPrefix:
			if last.Candidates[0].Name != w {
				t.Fatalf("typing %q offered %s", w, last.Candidates[0].Name)
			}
			if res := m.Flush(); res.Kind != Ran || res.Value != w {
				t.Fatalf("flushing %q = %s %v", w, res.Kind, res.Value)
			}
		default:
			t.Fatalf("typing %q ended with %s", w, last.Kind)
		}
		if m.IsWaiting() {
			t.Fatalf("matcher still waiting after %q", w)
		}
	})
}
