package key

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRuneEvent(t *testing.T) {
	e := NewRuneEvent('a', ModNone)
	assert.Equal(t, KeyRune, e.Key)
	assert.Equal(t, 'a', e.Rune)
	assert.Equal(t, ModNone, e.Modifiers)
}

func TestNewSpecialEventDropsRune(t *testing.T) {
	e := NewEvent(KeyEscape, 'x', ModNone)
	assert.Zero(t, e.Rune)
}

func TestEventCanonicalEquality(t *testing.T) {
	tests := []struct {
		name string
		a, b Event
	}{
		{"space", FromRune(' '), NewSpecialEvent(KeySpace, ModNone)},
		{"enter from CR", FromRune('\r'), NewSpecialEvent(KeyEnter, ModNone)},
		{"enter from LF", FromRune('\n'), NewSpecialEvent(KeyEnter, ModNone)},
		{"tab", FromRune('\t'), NewSpecialEvent(KeyTab, ModNone)},
		{"escape", FromRune(0x1b), NewSpecialEvent(KeyEscape, ModNone)},
		{"backspace", FromRune(0x7f), NewSpecialEvent(KeyBackspace, ModNone)},
		{"uppercase implies shift", FromRune('A'), NewRuneEvent('A', ModShift)},
		{"shift uppercases", NewRuneEvent('a', ModShift), FromRune('A')},
		{"shift ignored on symbols", NewRuneEvent('!', ModShift), FromRune('!')},
		{"parsed and constructed", mustParse(t, "<C-w>"), NewRuneEvent('w', ModCtrl)},
		{"named space", mustParse(t, "Space"), FromRune(' ')},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.a, tt.b)
		})
	}
}

func TestEventUppercaseCarriesShift(t *testing.T) {
	e := FromRune('A')
	assert.Equal(t, ModShift, e.Modifiers)
	assert.False(t, e.IsModified(), "Shift alone should not count as modified for characters")
}

func TestEventIsRune(t *testing.T) {
	tests := []struct {
		event Event
		want  bool
	}{
		{NewRuneEvent('a', ModNone), true},
		{NewRuneEvent('A', ModShift), true},
		{NewSpecialEvent(KeyEscape, ModNone), false},
		{NewSpecialEvent(KeyEnter, ModNone), false},
		{Event{Key: KeyRune, Rune: 0}, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.event.IsRune(), "%v", tt.event)
	}
}

func TestEventIsModified(t *testing.T) {
	tests := []struct {
		event Event
		want  bool
	}{
		{NewRuneEvent('a', ModNone), false},
		{NewRuneEvent('A', ModShift), false},
		{NewRuneEvent('a', ModCtrl), true},
		{NewRuneEvent('a', ModAlt), true},
		{NewSpecialEvent(KeyEscape, ModNone), false},
		{NewSpecialEvent(KeyEscape, ModShift), true},
		{NewSpecialEvent(KeyEnter, ModCtrl), true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.event.IsModified(), "%v", tt.event)
	}
}

func TestEventDigit(t *testing.T) {
	tests := []struct {
		event  Event
		want   int
		wantOK bool
	}{
		{FromRune('0'), 0, true},
		{FromRune('7'), 7, true},
		{NewRuneEvent('7', ModCtrl), 0, false},
		{NewSpecialEvent(KeyKP7, ModNone), 0, false},
		{FromRune('a'), 0, false},
	}

	for _, tt := range tests {
		got, ok := tt.event.Digit()
		assert.Equal(t, tt.want, got, "%v", tt.event)
		assert.Equal(t, tt.wantOK, ok, "%v", tt.event)
	}
}

func TestEventString(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{NewRuneEvent('a', ModNone), "a"},
		{NewRuneEvent('A', ModShift), "A"},
		{NewRuneEvent('s', ModCtrl), "C-s"},
		{NewRuneEvent('f', ModCtrl|ModAlt), "C-A-f"},
		{NewSpecialEvent(KeyEscape, ModNone), "Esc"},
		{NewSpecialEvent(KeyEnter, ModNone), "Enter"},
		{NewSpecialEvent(KeyEnter, ModCtrl), "C-Enter"},
		{NewSpecialEvent(KeyTab, ModShift), "S-Tab"},
		{NewRuneEvent(' ', ModNone), "Space"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.event.String())
	}
}

func TestEventVimString(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{NewRuneEvent('a', ModNone), "a"},
		{NewRuneEvent('A', ModShift), "A"},
		{NewRuneEvent('s', ModCtrl), "<C-s>"},
		{NewRuneEvent('f', ModCtrl|ModAlt), "<C-A-f>"},
		{NewRuneEvent('p', ModCtrl|ModShift), "<C-S-p>"},
		{NewSpecialEvent(KeyEscape, ModNone), "<Esc>"},
		{NewSpecialEvent(KeyEnter, ModNone), "<CR>"},
		{NewSpecialEvent(KeyEnter, ModCtrl), "<C-CR>"},
		{NewRuneEvent(' ', ModNone), "<Space>"},
		{NewRuneEvent('<', ModNone), "<lt>"},
		{NewRuneEvent('-', ModCtrl), "<C-minus>"},
		{NewSpecialEvent(KeyKPAdd, ModNone), "<kPlus>"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.event.VimString())
	}
}

func TestEventUsableAsMapKey(t *testing.T) {
	seen := map[Event]int{}
	seen[FromRune(' ')]++
	seen[NewSpecialEvent(KeySpace, ModNone)]++
	assert.Equal(t, map[Event]int{FromRune(' '): 2}, seen)
}
