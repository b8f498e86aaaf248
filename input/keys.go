package input

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lixenwraith/color-wall/terminal"
)

// KeyBinding matches one terminal key; Rune is only compared for KeyRune
type KeyBinding struct {
	Key  terminal.Key
	Rune rune
}

// KeySet is a list of bindings, any of which matches
type KeySet []KeyBinding

// DefaultQuitKeys is 'q' plus Ctrl+C, which raw mode turns into a plain key
func DefaultQuitKeys() KeySet {
	return KeySet{
		{Key: terminal.KeyRune, Rune: 'q'},
		{Key: terminal.KeyCtrlC},
	}
}

// Match reports whether ev is a key event bound in the set
func (s KeySet) Match(ev terminal.Event) bool {
	if ev.Type != terminal.EventKey {
		return false
	}
	for _, b := range s {
		if b.Key != ev.Key {
			continue
		}
		if b.Key != terminal.KeyRune || b.Rune == ev.Rune {
			return true
		}
	}
	return false
}

var namedKeys = map[string]terminal.Key{
	"escape":    terminal.KeyEscape,
	"esc":       terminal.KeyEscape,
	"enter":     terminal.KeyEnter,
	"tab":       terminal.KeyTab,
	"backspace": terminal.KeyBackspace,
	"delete":    terminal.KeyDelete,
	"f1":        terminal.KeyF1,
	"f2":        terminal.KeyF2,
	"f3":        terminal.KeyF3,
	"f4":        terminal.KeyF4,
	"f5":        terminal.KeyF5,
	"f6":        terminal.KeyF6,
	"f7":        terminal.KeyF7,
	"f8":        terminal.KeyF8,
	"f9":        terminal.KeyF9,
	"f10":       terminal.KeyF10,
	"f11":       terminal.KeyF11,
	"f12":       terminal.KeyF12,
}

// ParseKeySet parses names like "q", "ctrl+c", "escape", "f10", "space"
func ParseKeySet(names []string) (KeySet, error) {
	set := make(KeySet, 0, len(names))
	for _, raw := range names {
		b, err := parseBinding(raw)
		if err != nil {
			return nil, err
		}
		set = append(set, b)
	}
	return set, nil
}

func parseBinding(raw string) (KeyBinding, error) {
	name := strings.TrimSpace(raw)
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		return KeyBinding{Key: terminal.KeyRune, Rune: r}, nil
	}

	lower := strings.ToLower(name)
	if lower == "space" {
		return KeyBinding{Key: terminal.KeyRune, Rune: ' '}, nil
	}
	if k, ok := namedKeys[lower]; ok {
		return KeyBinding{Key: k}, nil
	}
	if letter, ok := strings.CutPrefix(lower, "ctrl+"); ok && len(letter) == 1 && letter[0] >= 'a' && letter[0] <= 'z' {
		return KeyBinding{Key: terminal.KeyCtrlA + terminal.Key(letter[0]-'a')}, nil
	}
	return KeyBinding{}, fmt.Errorf("unknown key %q", raw)
}
