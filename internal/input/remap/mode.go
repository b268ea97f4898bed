package remap

import (
	"fmt"
	"strings"
)

// Mode identifies which remap table a mapping belongs to.
// Tables for different modes are fully independent.
type Mode uint8

// Remap modes.
const (
	ModeNormal Mode = iota
	ModeVisual
	ModeSelect
	ModeOperatorPending
	ModeInsert
	ModeCommand
	ModeLanguage

	numModes
)

// String returns the lowercase mode name.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeVisual:
		return "visual"
	case ModeSelect:
		return "select"
	case ModeOperatorPending:
		return "operator-pending"
	case ModeInsert:
		return "insert"
	case ModeCommand:
		return "command"
	case ModeLanguage:
		return "language"
	default:
		return fmt.Sprintf("Mode(%d)", m)
	}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m < numModes
}

// Letter returns the single-letter prefix Vim uses for the mode in
// commands like nmap and imap.
func (m Mode) Letter() string {
	switch m {
	case ModeNormal:
		return "n"
	case ModeVisual:
		return "x"
	case ModeSelect:
		return "s"
	case ModeOperatorPending:
		return "o"
	case ModeInsert:
		return "i"
	case ModeCommand:
		return "c"
	case ModeLanguage:
		return "l"
	default:
		return "?"
	}
}

// Modes returns every mode in declaration order.
func Modes() []Mode {
	modes := make([]Mode, 0, numModes)
	for m := Mode(0); m < numModes; m++ {
		modes = append(modes, m)
	}
	return modes
}

var modeNames = map[string]Mode{
	"normal":           ModeNormal,
	"n":                ModeNormal,
	"visual":           ModeVisual,
	"x":                ModeVisual,
	"select":           ModeSelect,
	"s":                ModeSelect,
	"operator-pending": ModeOperatorPending,
	"operatorpending":  ModeOperatorPending,
	"op-pending":       ModeOperatorPending,
	"op":               ModeOperatorPending,
	"o":                ModeOperatorPending,
	"insert":           ModeInsert,
	"i":                ModeInsert,
	"command":          ModeCommand,
	"cmdline":          ModeCommand,
	"c":                ModeCommand,
	"language":         ModeLanguage,
	"lang":             ModeLanguage,
	"l":                ModeLanguage,
}

// ParseMode returns the mode for a name such as "normal", "insert" or a
// Vim mode letter ("n", "i", "x"). Matching is case-insensitive.
func ParseMode(name string) (Mode, error) {
	if m, ok := modeNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, name)
}
