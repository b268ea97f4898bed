package key

import (
	"fmt"
	"strings"
)

// Key represents the logical identity of a keyboard key.
// Character keys use KeyRune and carry the character in Event.Rune.
type Key uint16

const (
	// KeyNone represents no key.
	KeyNone Key = iota

	// Special keys
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyInsert
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	// Arrow keys
	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	// Function keys
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	// KeySpace is accepted by constructors but canonicalized to the
	// ' ' rune, so it never appears in a constructed Event.
	KeySpace
	KeyPause
	KeyPrintScreen
	KeyScrollLock
	KeyNumLock
	KeyCapsLock

	// Keypad keys
	KeyKP0
	KeyKP1
	KeyKP2
	KeyKP3
	KeyKP4
	KeyKP5
	KeyKP6
	KeyKP7
	KeyKP8
	KeyKP9
	KeyKPAdd
	KeyKPSubtract
	KeyKPMultiply
	KeyKPDivide
	KeyKPDecimal
	KeyKPEnter

	// KeyRune is used for character keys (letters, digits, punctuation).
	KeyRune
)

type keyName struct {
	name    string
	short   string
	aliases []string
}

// keyNames holds, per key, its display name, the short form used in key
// notation and any extra spellings accepted by KeyFromName.
var keyNames = map[Key]keyName{
	KeyNone:        {name: "None"},
	KeyEscape:      {name: "Escape", short: "Esc"},
	KeyEnter:       {name: "Enter", aliases: []string{"return", "cr"}},
	KeyTab:         {name: "Tab"},
	KeyBackspace:   {name: "Backspace", short: "BS"},
	KeyDelete:      {name: "Delete", short: "Del"},
	KeyInsert:      {name: "Insert", short: "Ins"},
	KeyHome:        {name: "Home"},
	KeyEnd:         {name: "End"},
	KeyPageUp:      {name: "PageUp", short: "PgUp"},
	KeyPageDown:    {name: "PageDown", short: "PgDn"},
	KeyUp:          {name: "Up"},
	KeyDown:        {name: "Down"},
	KeyLeft:        {name: "Left"},
	KeyRight:       {name: "Right"},
	KeySpace:       {name: "Space"},
	KeyPause:       {name: "Pause"},
	KeyPrintScreen: {name: "PrintScreen"},
	KeyScrollLock:  {name: "ScrollLock"},
	KeyNumLock:     {name: "NumLock"},
	KeyCapsLock:    {name: "CapsLock"},
	KeyKPAdd:       {name: "kPlus"},
	KeyKPSubtract:  {name: "kMinus"},
	KeyKPMultiply:  {name: "kMultiply"},
	KeyKPDivide:    {name: "kDivide"},
	KeyKPDecimal:   {name: "kPoint"},
	KeyKPEnter:     {name: "kEnter"},
	KeyRune:        {name: "Rune"},
}

// nameToKey maps every lowercase name, short form and alias to its key.
var nameToKey = map[string]Key{}

func init() {
	for i := 0; i < 12; i++ {
		keyNames[KeyF1+Key(i)] = keyName{name: fmt.Sprintf("F%d", i+1)}
	}
	for i := 0; i < 10; i++ {
		keyNames[KeyKP0+Key(i)] = keyName{name: fmt.Sprintf("k%d", i)}
	}

	for k, n := range keyNames {
		if k == KeyRune {
			continue
		}
		nameToKey[strings.ToLower(n.name)] = k
		if n.short != "" {
			nameToKey[strings.ToLower(n.short)] = k
		}
		for _, a := range n.aliases {
			nameToKey[a] = k
		}
	}
}

// String returns a human-readable name for the key.
func (k Key) String() string {
	if n, ok := keyNames[k]; ok {
		return n.name
	}
	return fmt.Sprintf("Key(%d)", k)
}

// ShortName returns the name used inside key notation, such as "Esc" for
// KeyEscape. Keys without a short form use String.
func (k Key) ShortName() string {
	if n, ok := keyNames[k]; ok && n.short != "" {
		return n.short
	}
	return k.String()
}

// KeyFromName returns the Key for a given name (case-insensitive).
// Returns KeyNone if the name is not recognized.
func KeyFromName(name string) Key {
	return nameToKey[strings.ToLower(strings.TrimSpace(name))]
}
