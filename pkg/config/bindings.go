package config

import (
	"fmt"
	"sort"

	apperrors "runnotate/pkg/errors"
	"runnotate/pkg/keys"
)

// Action is a navigation control
type Action string

const (
	ActionQuit   Action = "quit"
	ActionNext   Action = "next"
	ActionBack   Action = "back"
	ActionDelete Action = "delete"
)

// KeySet is an unordered set of key codes
type KeySet map[keys.Code]struct{}

func newKeySet(codes []keys.Code) KeySet {
	s := make(KeySet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// Contains reports whether code is in the set
func (s KeySet) Contains(code keys.Code) bool {
	_, ok := s[code]
	return ok
}

// Codes returns the set's members in ascending order
func (s KeySet) Codes() []keys.Code {
	codes := make([]keys.Code, 0, len(s))
	for c := range s {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Bindings is the resolved key code to label/action table
type Bindings struct {
	labelByKey map[keys.Code]string
	labelKeys  map[string][]keys.Code
	colors     map[string]Color
	controls   map[Action]KeySet

	// Unresolved holds "<where>: <name>" for every key name the table did not know
	Unresolved []string
}

// Resolve builds the lookup tables from the declared labels and controls.
// Unknown key names resolve to keys.Invalid and are recorded, not rejected.
func Resolve(labels map[string]LabelSpec, controls ControlsSpec) (*Bindings, error) {
	b := &Bindings{
		labelByKey: make(map[keys.Code]string),
		labelKeys:  make(map[string][]keys.Code),
		colors:     make(map[string]Color),
		controls:   make(map[Action]KeySet),
	}

	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, label := range names {
		spec := labels[label]
		codes := b.resolveAll("labels."+label, spec.Keys)
		b.labelKeys[label] = codes

		for _, code := range codes {
			if code == keys.Invalid {
				continue
			}
			if other, taken := b.labelByKey[code]; taken && other != label {
				return nil, apperrors.Config("key %s is bound to both %q and %q", describe(code), other, label)
			}
			b.labelByKey[code] = label
		}

		if spec.Color != "" {
			color, err := ParseColor(spec.Color)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.ErrorTypeConfig, fmt.Sprintf("label %q", label), err)
			}
			b.colors[label] = color
		}
	}

	b.controls[ActionQuit] = newKeySet(b.resolveAll("controls.quit", controls.Quit))
	b.controls[ActionNext] = newKeySet(b.resolveAll("controls.next", controls.Next))
	b.controls[ActionBack] = newKeySet(b.resolveAll("controls.back", controls.Back))
	b.controls[ActionDelete] = newKeySet(b.resolveAll("controls.delete", controls.Delete))

	return b, nil
}

func (b *Bindings) resolveAll(where string, names []string) []keys.Code {
	codes := make([]keys.Code, 0, len(names))
	for _, name := range names {
		code, ok := keys.Resolve(name)
		if !ok {
			b.Unresolved = append(b.Unresolved, fmt.Sprintf("%s: %q", where, name))
		}
		codes = append(codes, code)
	}
	return codes
}

func describe(code keys.Code) string {
	if name := keys.Name(code); name != "" {
		return name
	}
	return fmt.Sprintf("code %d", code)
}

// LabelKeys returns every code bound to some label
func (b *Bindings) LabelKeys() KeySet {
	s := make(KeySet, len(b.labelByKey))
	for code := range b.labelByKey {
		s[code] = struct{}{}
	}
	return s
}

// KeysFor returns the codes declared for a label, in declaration order
func (b *Bindings) KeysFor(label string) []keys.Code {
	return b.labelKeys[label]
}

// QuitKeys returns the codes that end the session
func (b *Bindings) QuitKeys() KeySet { return b.controls[ActionQuit] }

// NextKeys returns the codes that advance without labeling
func (b *Bindings) NextKeys() KeySet { return b.controls[ActionNext] }

// BackKeys returns the codes that step back one image
func (b *Bindings) BackKeys() KeySet { return b.controls[ActionBack] }

// DeleteKeys returns the codes that clear the current image's label
func (b *Bindings) DeleteKeys() KeySet { return b.controls[ActionDelete] }

// IsLabelKey reports whether code is bound to a label
func (b *Bindings) IsLabelKey(code keys.Code) bool {
	_, ok := b.labelByKey[code]
	return ok
}

// LabelFor returns the label bound to code. Callers check IsLabelKey first;
// an unbound code returns "", false.
func (b *Bindings) LabelFor(code keys.Code) (string, bool) {
	label, ok := b.labelByKey[code]
	return label, ok
}

// ColorFor returns the overlay color of a label, or DefaultColor when none was configured
func (b *Bindings) ColorFor(label string) Color {
	if c, ok := b.colors[label]; ok {
		return c
	}
	return DefaultColor
}

// Labels returns the declared label names, sorted
func (b *Bindings) Labels() []string {
	names := make([]string, 0, len(b.labelKeys))
	for name := range b.labelKeys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Overlaps lists codes bound to more than one category. Dispatch order decides
// which one wins, so these are reported rather than rejected.
func (b *Bindings) Overlaps() []string {
	var out []string
	order := []Action{ActionQuit, ActionBack, ActionNext, ActionDelete}
	seen := make(map[keys.Code]Action)
	for _, action := range order {
		for _, code := range b.controls[action].Codes() {
			if code == keys.Invalid {
				continue
			}
			if first, ok := seen[code]; ok {
				out = append(out, fmt.Sprintf("%s is bound to %s and %s; %s wins", describe(code), first, action, first))
				continue
			}
			seen[code] = action
		}
	}
	for _, code := range b.LabelKeys().Codes() {
		if first, ok := seen[code]; ok {
			out = append(out, fmt.Sprintf("%s is bound to %s and label %q; %s wins", describe(code), first, b.labelByKey[code], first))
		}
	}
	return out
}
