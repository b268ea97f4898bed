package key

import (
	"strings"
	"unicode"
)

// Event is a single keystroke: a key identity, its modifiers and, for
// character keys, the literal character.
//
// Event is an immutable comparable value. Constructors canonicalize their
// input so that two events describing the same physical key press compare
// equal with == no matter how they were built: the ' ' rune and KeySpace,
// '\r' and KeyEnter, '\t' and KeyTab, ESC and KeyEscape, DEL and
// KeyBackspace all collapse to one form, and an uppercase letter always
// carries ModShift.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events and zero otherwise.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier
}

// NewEvent creates a canonical key event.
func NewEvent(k Key, r rune, mods Modifier) Event {
	return canonical(Event{Key: k, Rune: r, Modifiers: mods})
}

// NewRuneEvent creates a key event for a character.
func NewRuneEvent(r rune, mods Modifier) Event {
	return NewEvent(KeyRune, r, mods)
}

// NewSpecialEvent creates a key event for a named key.
func NewSpecialEvent(k Key, mods Modifier) Event {
	return NewEvent(k, 0, mods)
}

// FromRune creates an unmodified key event for a typed character.
func FromRune(r rune) Event {
	return NewRuneEvent(r, ModNone)
}

// FromString converts each character of s into an unmodified key event.
// It does not interpret key notation; use ParseSequence for that.
func FromString(s string) Sequence {
	seq := make(Sequence, 0, len(s))
	for _, r := range s {
		seq = append(seq, FromRune(r))
	}
	return seq
}

func canonical(e Event) Event {
	switch e.Key {
	case KeySpace:
		e.Key, e.Rune = KeyRune, ' '
	case KeyRune:
		switch e.Rune {
		case '\r', '\n':
			e.Key, e.Rune = KeyEnter, 0
		case '\t':
			e.Key, e.Rune = KeyTab, 0
		case 0x1b:
			e.Key, e.Rune = KeyEscape, 0
		case 0x7f, '\b':
			e.Key, e.Rune = KeyBackspace, 0
		case 0:
			e.Key = KeyNone
		}
	default:
		e.Rune = 0
	}

	if e.Key != KeyRune {
		return e
	}
	// Shift is part of the character: it is implied by uppercase letters
	// and meaningless for other characters.
	switch {
	case !unicode.IsLetter(e.Rune):
		e.Modifiers = e.Modifiers.Without(ModShift)
	case unicode.IsUpper(e.Rune):
		e.Modifiers = e.Modifiers.With(ModShift)
	case e.Modifiers.HasShift() && unicode.IsLower(e.Rune):
		e.Rune = unicode.ToUpper(e.Rune)
	}
	return e
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsChar returns true if this is a printable character.
func (e Event) IsChar() bool {
	return e.IsRune() && unicode.IsPrint(e.Rune)
}

// IsModified returns true if any modifier is pressed.
// For character events, Shift alone is not considered modified
// since Shift changes the character itself.
func (e Event) IsModified() bool {
	if e.IsRune() {
		return e.Modifiers&(ModCtrl|ModAlt|ModMeta) != 0
	}
	return e.Modifiers != ModNone
}

// Digit returns the decimal value of an unmodified ASCII digit key.
func (e Event) Digit() (int, bool) {
	if !e.IsRune() || e.IsModified() || e.Rune < '0' || e.Rune > '9' {
		return 0, false
	}
	return int(e.Rune - '0'), true
}

// String returns a readable representation.
// Examples: "a", "A", "C-s", "Esc", "C-Enter", "Space"
func (e Event) String() string {
	var parts []string
	if e.Modifiers.HasCtrl() {
		parts = append(parts, "C")
	}
	if e.Modifiers.HasAlt() {
		parts = append(parts, "A")
	}
	if e.Modifiers.HasMeta() {
		parts = append(parts, "M")
	}
	if e.Modifiers.HasShift() && !e.IsRune() {
		parts = append(parts, "S")
	}
	return strings.Join(append(parts, e.shortName()), "-")
}

// VimString returns the Vim key notation for the event. The result is
// accepted by Parse and round-trips to an equal Event.
// Examples: "a", "A", "<Esc>", "<C-s>", "<C-S-p>", "<CR>", "<lt>"
func (e Event) VimString() string {
	if e.IsRune() && !e.IsModified() {
		switch e.Rune {
		case ' ':
			return "<Space>"
		case '<':
			return "<lt>"
		}
		return string(e.Rune)
	}

	var parts []string
	if e.Modifiers.HasCtrl() {
		parts = append(parts, "C")
	}
	if e.Modifiers.HasAlt() {
		parts = append(parts, "A")
	}
	if e.Modifiers.HasMeta() {
		parts = append(parts, "D")
	}
	if e.Modifiers.HasShift() {
		parts = append(parts, "S")
	}

	var keyName string
	switch e.Key {
	case KeyRune:
		switch e.Rune {
		case ' ':
			keyName = "Space"
		case '<':
			keyName = "lt"
		case '>':
			keyName = "gt"
		case '-':
			keyName = "minus"
		default:
			keyName = string(unicode.ToLower(e.Rune))
		}
	case KeyEnter:
		keyName = "CR"
	case KeyEscape:
		keyName = "Esc"
	default:
		keyName = e.shortName()
	}

	return "<" + strings.Join(append(parts, keyName), "-") + ">"
}

func (e Event) shortName() string {
	if e.Key != KeyRune {
		return e.Key.ShortName()
	}
	if e.Rune == ' ' {
		return "Space"
	}
	return string(e.Rune)
}
