package key

import "github.com/gdamore/tcell/v2"

// FromTcell converts a terminal key event into a canonical Event.
// Control-letter codes are reported as the lowercase letter with ModCtrl
// so that terminal input matches notation such as "<C-w>".
func FromTcell(ev *tcell.EventKey) Event {
	mods := convertTcellMod(ev.Modifiers())
	k := ev.Key()

	switch {
	case k == tcell.KeyRune:
		return NewRuneEvent(ev.Rune(), mods)
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		return NewRuneEvent(rune('a'+(k-tcell.KeyCtrlA)), mods.With(ModCtrl))
	case k == tcell.KeyCtrlSpace:
		return NewRuneEvent(' ', mods.With(ModCtrl))
	}

	if k == tcell.KeyBacktab {
		return NewSpecialEvent(KeyTab, mods.With(ModShift))
	}
	if named, ok := tcellKeys[k]; ok {
		return NewSpecialEvent(named, mods)
	}
	return NewSpecialEvent(KeyNone, mods)
}

var tcellKeys = map[tcell.Key]Key{
	tcell.KeyEscape:     KeyEscape,
	tcell.KeyEnter:      KeyEnter,
	tcell.KeyTab:        KeyTab,
	tcell.KeyBackspace:  KeyBackspace,
	tcell.KeyBackspace2: KeyBackspace,
	tcell.KeyDelete:     KeyDelete,
	tcell.KeyInsert:     KeyInsert,
	tcell.KeyHome:       KeyHome,
	tcell.KeyEnd:        KeyEnd,
	tcell.KeyPgUp:       KeyPageUp,
	tcell.KeyPgDn:       KeyPageDown,
	tcell.KeyUp:         KeyUp,
	tcell.KeyDown:       KeyDown,
	tcell.KeyLeft:       KeyLeft,
	tcell.KeyRight:      KeyRight,
	tcell.KeyF1:         KeyF1,
	tcell.KeyF2:         KeyF2,
	tcell.KeyF3:         KeyF3,
	tcell.KeyF4:         KeyF4,
	tcell.KeyF5:         KeyF5,
	tcell.KeyF6:         KeyF6,
	tcell.KeyF7:         KeyF7,
	tcell.KeyF8:         KeyF8,
	tcell.KeyF9:         KeyF9,
	tcell.KeyF10:        KeyF10,
	tcell.KeyF11:        KeyF11,
	tcell.KeyF12:        KeyF12,
	tcell.KeyPause:      KeyPause,
	tcell.KeyPrint:      KeyPrintScreen,
}

func convertTcellMod(m tcell.ModMask) Modifier {
	var mods Modifier
	if m&tcell.ModShift != 0 {
		mods = mods.With(ModShift)
	}
	if m&tcell.ModCtrl != 0 {
		mods = mods.With(ModCtrl)
	}
	if m&tcell.ModAlt != 0 {
		mods = mods.With(ModAlt)
	}
	if m&tcell.ModMeta != 0 {
		mods = mods.With(ModMeta)
	}
	return mods
}
