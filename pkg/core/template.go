package core

import (
	"errors"
	"time"
)

// ErrTemplateNotFound is returned when no template is stored under a name.
var ErrTemplateNotFound = errors.New("template not found")

// ErrInvalidTemplate is returned when a template misses its name or document.
var ErrInvalidTemplate = errors.New("invalid template")

// Template is a named maneuver kept in the template library. Document holds the
// maneuver in its XML node form.
type Template struct {
	Name      string
	Vehicle   string
	Kind      string
	Document  []byte
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the fields every backend requires.
func (t Template) Validate() error {
	if t.Name == "" {
		return errors.Join(ErrInvalidTemplate, errors.New("missing name"))
	}
	if len(t.Document) == 0 {
		return errors.Join(ErrInvalidTemplate, errors.New("missing document"))
	}
	return nil
}
