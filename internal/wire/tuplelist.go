package wire

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/seaplan/mplan/pkg/core"
)

// ErrInvalidTuple is returned when a custom setting cannot be represented in a tuple list.
var ErrInvalidTuple = errors.New("invalid tuple list entry")

const (
	tupleSep   = ";"
	tupleAssig = "="
)

// EncodeTupleList joins settings as key=value pairs separated by semicolons, in order.
// Keys may not contain '=' or ';' and values may not contain ';'.
func EncodeTupleList(settings core.CustomSettings) (string, error) {
	var b strings.Builder
	for i, s := range settings {
		if s.Name == "" || strings.ContainsAny(s.Name, tupleSep+tupleAssig) {
			return "", fmt.Errorf("%w: key %q", ErrInvalidTuple, s.Name)
		}
		if strings.Contains(s.Value, tupleSep) {
			return "", fmt.Errorf("%w: value of %q contains %q", ErrInvalidTuple, s.Name, tupleSep)
		}
		if i > 0 {
			b.WriteString(tupleSep)
		}
		b.WriteString(s.Name)
		b.WriteString(tupleAssig)
		b.WriteString(s.Value)
	}
	return b.String(), nil
}

// DecodeTupleList parses a tuple list. Entries without '=' or with an empty key are skipped.
// The wire form carries no type hints, so they are inferred from the values.
func DecodeTupleList(s string) core.CustomSettings {
	var out core.CustomSettings
	for _, entry := range strings.Split(s, tupleSep) {
		key, value, ok := strings.Cut(entry, tupleAssig)
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		out.Set(key, value, InferHint(value))
	}
	return out
}

// InferHint guesses the type hint of a wire value.
func InferHint(value string) core.TypeHint {
	switch strings.ToLower(value) {
	case "true", "false":
		return core.HintBoolean
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return core.HintNumber
	}
	return core.HintString
}
