package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keyflow/internal/input/command"
	"github.com/dshills/keyflow/internal/input/key"
	"github.com/dshills/keyflow/internal/input/remap"
)

func nameHandlers() HandlerSource {
	return HandlerSourceFunc(func(spec CommandSpec) (command.Handler, error) {
		return func(command.Invocation) (any, error) { return spec.Name, nil }, nil
	})
}

func findSignature(m *command.Matcher, name string) (command.Signature, bool) {
	for _, sig := range m.Signatures() {
		if sig.Name == name {
			return sig, true
		}
	}
	return command.Signature{}, false
}

func TestApply(t *testing.T) {
	f, err := Parse("sample", FormatTOML, []byte(sampleTOML))
	require.NoError(t, err)

	target, err := Build(f, nameHandlers(), nil)
	require.NoError(t, err)

	e, ok := target.Table.Lookup(remap.ModeInsert, key.FromString("jk"))
	require.True(t, ok)
	assert.Equal(t, "<Esc>", e.RHS.VimString())
	assert.False(t, e.AllowRecursion)

	for _, mode := range []remap.Mode{remap.ModeNormal, remap.ModeVisual} {
		e, ok := target.Table.Lookup(mode, key.FromString("Q"))
		require.True(t, ok, mode.String())
		assert.True(t, e.AllowRecursion)
	}
	assert.Zero(t, target.Table.Len(remap.ModeSelect))

	assert.Equal(t, 2, target.Matcher.Len())
	sig, ok := findSignature(target.Matcher, "cursor.findChar")
	require.True(t, ok)
	assert.True(t, sig.TakesArgument)

	target.Matcher.Feed(key.FromRune('g'))
	res := target.Matcher.Feed(key.FromRune('g'))
	assert.Equal(t, command.Ran, res.Kind)
	assert.Equal(t, "cursor.documentStart", res.Value)
}

func TestApplyDefaultMapModes(t *testing.T) {
	f := &File{Maps: []MapSpec{{LHS: "x", RHS: "y"}}}
	target, err := Build(f, nil, nil)
	require.NoError(t, err)

	for _, mode := range remap.Modes() {
		_, ok := target.Table.Lookup(mode, key.FromString("x"))
		want := mode == remap.ModeNormal || mode == remap.ModeVisual ||
			mode == remap.ModeSelect || mode == remap.ModeOperatorPending
		assert.Equal(t, want, ok, mode.String())
	}
}

func TestApplyModeMatchers(t *testing.T) {
	f := &File{Commands: []CommandSpec{
		{Keys: "<C-w>", Name: "delete-word", Mode: "insert"},
		{Keys: "dd", Name: "delete-line"},
	}}
	target, err := Build(f, nameHandlers(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, target.Matcher.Len())
	insert := target.ModeMatchers[remap.ModeInsert]
	require.NotNil(t, insert)
	_, ok := findSignature(insert, "delete-word")
	assert.True(t, ok)
}

func TestApplyReportsBadEntries(t *testing.T) {
	f := &File{
		Maps: []MapSpec{
			{Mode: "normal", LHS: "a", RHS: "b"},
			{Mode: "nowhere", LHS: "a", RHS: "b"},
			{Mode: "normal", LHS: "c", RHS: ""},
			{Mode: "normal", LHS: "<C->", RHS: "d"},
		},
		Commands: []CommandSpec{
			{Keys: "gg", Name: "top"},
			{Keys: "gg", Name: "top-again"},
			{Keys: "zz"},
		},
	}
	target, err := Build(f, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidEntry)
	assert.ErrorIs(t, err, remap.ErrUnknownMode)
	assert.ErrorIs(t, err, remap.ErrEmptyRHS)
	assert.ErrorIs(t, err, key.ErrInvalidSpec)
	assert.ErrorIs(t, err, command.ErrDuplicateSignature)
	assert.ErrorIs(t, err, command.ErrNoName)

	var entryErr *EntryError
	require.True(t, errors.As(err, &entryErr))
	assert.Equal(t, "map", entryErr.Section)
	assert.Equal(t, 1, entryErr.Index)

	// Good entries still apply.
	assert.Equal(t, 1, target.Table.Len(remap.ModeNormal))
	assert.Equal(t, 1, target.Matcher.Len())
}

func TestApplyHandlerError(t *testing.T) {
	boom := errors.New("no such script")
	handlers := HandlerSourceFunc(func(CommandSpec) (command.Handler, error) {
		return nil, boom
	})
	target, err := Build(&File{Commands: []CommandSpec{{Keys: "x", Name: "x"}}}, handlers, nil)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, target.Matcher.Len())
}

func TestParseCountModes(t *testing.T) {
	modes, err := Settings{}.ParseCountModes()
	require.NoError(t, err)
	assert.Nil(t, modes)

	modes, err = Settings{CountModes: []string{"normal", "insert"}}.ParseCountModes()
	require.NoError(t, err)
	assert.Equal(t, []remap.Mode{remap.ModeNormal, remap.ModeInsert}, modes)

	_, err = Settings{CountModes: []string{"bogus"}}.ParseCountModes()
	assert.ErrorIs(t, err, remap.ErrUnknownMode)
}
