package keys

import (
	"math"
	"sort"
	"strings"
)

// Code is a raw key code as produced by a display/input provider
type Code int

const (
	// None is returned by a provider when no key arrived before the poll timeout
	None Code = -1

	// Invalid is what an unknown symbolic key name resolves to. No provider ever
	// produces it, so a binding that resolves to Invalid can never fire.
	Invalid Code = math.MinInt32
)

// Named key codes for the non-printable keys
const (
	Backspace Code = 8
	Tab       Code = 9
	Enter     Code = 13
	Escape    Code = 27
	Space     Code = 32
	Delete    Code = 127
)

// table is built once at init and never written afterwards
var table = buildTable()

func buildTable() map[string]Code {
	t := map[string]Code{
		"BACK":      Backspace,
		"BACKSPACE": Backspace,
		"TAB":       Tab,
		"ENTER":     Enter,
		"RETURN":    Enter,
		"ESC":       Escape,
		"ESCAPE":    Escape,
		"SPACE":     Space,
		"DEL":       Delete,
		"DELETE":    Delete,
	}

	// Letters bind to their lowercase ASCII code, which is what an unshifted
	// key press yields.
	for c := 'A'; c <= 'Z'; c++ {
		t[string(c)] = Code(c - 'A' + 'a')
	}
	for c := '0'; c <= '9'; c++ {
		t[string(c)] = Code(c)
	}

	return t
}

// Resolve maps a symbolic key name to its code. Names are matched case-insensitively.
// The second return value reports whether the name was known; unknown names yield Invalid.
func Resolve(name string) (Code, bool) {
	code, ok := table[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return Invalid, false
	}
	return code, true
}

// Name returns the canonical symbolic name of a code, or "" when the code has none
func Name(code Code) string {
	switch code {
	case Backspace:
		return "BACKSPACE"
	case Tab:
		return "TAB"
	case Enter:
		return "ENTER"
	case Escape:
		return "ESC"
	case Space:
		return "SPACE"
	case Delete:
		return "DELETE"
	}
	switch {
	case code >= 'a' && code <= 'z':
		return string(rune(code - 'a' + 'A'))
	case code >= '0' && code <= '9':
		return string(rune(code))
	}
	return ""
}

// Names returns every symbolic name the table knows, sorted
func Names() []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
