package core

import (
	"slices"
	"strings"
)

// TypeHint tells consumers how to interpret a custom setting value.
type TypeHint string

const (
	HintString  TypeHint = "String"
	HintNumber  TypeHint = "Number"
	HintBoolean TypeHint = "Boolean"
)

// ParseTypeHint normalizes a hint case-insensitively. Anything unrecognized is a String.
func ParseTypeHint(s string) TypeHint {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "number":
		return HintNumber
	case "boolean":
		return HintBoolean
	default:
		return HintString
	}
}

// Setting is a single custom key/value pair.
type Setting struct {
	Name  string
	Value string
	Hint  TypeHint
}

// CustomSettings is an insertion-ordered set of vehicle specific settings.
type CustomSettings []Setting

// Get returns the value stored under name.
func (c CustomSettings) Get(name string) (string, bool) {
	for _, s := range c {
		if s.Name == name {
			return s.Value, true
		}
	}
	return "", false
}

// HintOf returns the type hint stored under name.
func (c CustomSettings) HintOf(name string) (TypeHint, bool) {
	for _, s := range c {
		if s.Name == name {
			return s.Hint, true
		}
	}
	return "", false
}

// Set stores value under name, keeping the original position if the name already exists.
func (c *CustomSettings) Set(name, value string, hint TypeHint) {
	for i := range *c {
		if (*c)[i].Name == name {
			(*c)[i].Value = value
			(*c)[i].Hint = hint
			return
		}
	}
	*c = append(*c, Setting{Name: name, Value: value, Hint: hint})
}

// Delete removes name if present.
func (c *CustomSettings) Delete(name string) {
	*c = slices.DeleteFunc(*c, func(s Setting) bool { return s.Name == name })
}

// Names returns the setting names in insertion order.
func (c CustomSettings) Names() []string {
	names := make([]string, len(c))
	for i, s := range c {
		names[i] = s.Name
	}
	return names
}

// Clone returns an independent copy.
func (c CustomSettings) Clone() CustomSettings {
	if c == nil {
		return nil
	}
	return slices.Clone(c)
}

// Param is a named action parameter.
type Param struct {
	Name  string
	Value string
}

// Action is a trigger executed at the start or end of a maneuver.
type Action struct {
	Name   string
	Params []Param
}

// CloneActions deep copies an action list.
func CloneActions(actions []Action) []Action {
	if actions == nil {
		return nil
	}
	out := make([]Action, len(actions))
	for i, a := range actions {
		out[i] = Action{Name: a.Name, Params: slices.Clone(a.Params)}
	}
	return out
}

// OffsetPoint is a north/east/down offset in meters with a time in seconds, -1 if unused.
type OffsetPoint struct {
	North float64
	East  float64
	Down  float64
	Time  float64
}

// NoTime marks an OffsetPoint without a time dimension.
const NoTime = -1.0
