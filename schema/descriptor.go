// Package schema declares the per-entity field constraints and the
// validation gate that checks candidate records against them. One
// generic descriptor type serves both entity families; the named
// presets in this package carry the field lists.
package schema

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Evolvus/evolvus-application/domain"
)

type Kind int

const (
	String Kind = iota
	Int
	Bool
	DateTime
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "integer"
	case Bool:
		return "boolean"
	case DateTime:
		return "date-time"
	}
	return "unknown"
}

type Field struct {
	Name     string
	Kind     Kind
	Required bool
	MinLen   int
	MaxLen   int
	Pattern  *regexp.Regexp
	// PatternMsg describes the pattern in the violation message.
	PatternMsg string
	// Immutable fields are set once at creation and rejected in patches.
	Immutable bool
	// Unique marks the business code field; uniqueness itself is
	// enforced by the store's index, not by the gate.
	Unique  bool
	Default any
}

type Descriptor struct {
	Title  string
	Fields []Field
}

func (d *Descriptor) field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// UniqueField returns the name of the field the store must keep unique,
// or "" when the descriptor has none.
func (d *Descriptor) UniqueField() string {
	for _, f := range d.Fields {
		if f.Unique {
			return f.Name
		}
	}
	return ""
}

// ApplyDefaults fills absent fields that declare a default value.
func (d *Descriptor) ApplyDefaults(doc map[string]any) {
	if doc == nil {
		return
	}
	for _, f := range d.Fields {
		if f.Default == nil {
			continue
		}
		if _, ok := doc[f.Name]; !ok {
			doc[f.Name] = f.Default
		}
	}
}

type Violation struct {
	Field      string
	Constraint string
	Message    string
}

// ValidationError carries every violated constraint, not just the
// first, so callers can report all problems at once.
type ValidationError struct {
	Title      string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return fmt.Sprintf("%s validation failed: %s", e.Title, strings.Join(msgs, "; "))
}

// Validate checks a full candidate record. A nil candidate fails with
// domain.ErrInvalidArgument; otherwise all violated constraints are
// collected into a *ValidationError. Validate has no side effects.
func (d *Descriptor) Validate(doc map[string]any) error {
	if doc == nil {
		return fmt.Errorf("%s: candidate record is nil: %w", d.Title, domain.ErrInvalidArgument)
	}
	var violations []Violation
	for _, f := range d.Fields {
		value, present := doc[f.Name]
		if !present {
			if f.Required {
				violations = append(violations, Violation{f.Name, "required", "is required"})
			}
			continue
		}
		violations = append(violations, checkValue(f, value)...)
	}
	violations = append(violations, d.unknownFields(doc)...)
	if len(violations) > 0 {
		return &ValidationError{Title: d.Title, Violations: violations}
	}
	return nil
}

// ValidatePatch checks the fields a partial update carries. Absent
// fields keep their stored values, so required-ness only applies when a
// patch explicitly empties a required field. Unknown and immutable
// fields are rejected outright.
func (d *Descriptor) ValidatePatch(patch map[string]any) error {
	if len(patch) == 0 {
		return fmt.Errorf("%s: patch is empty: %w", d.Title, domain.ErrInvalidArgument)
	}
	var violations []Violation
	for name, value := range patch {
		f, ok := d.field(name)
		if !ok {
			violations = append(violations, Violation{name, "unknown", "is not a declared field"})
			continue
		}
		if f.Immutable {
			violations = append(violations, Violation{name, "immutable", "is set at creation and cannot be updated"})
			continue
		}
		if f.Required && isEmpty(value) {
			violations = append(violations, Violation{name, "required", "is required and cannot be emptied"})
			continue
		}
		violations = append(violations, checkValue(f, value)...)
	}
	if len(violations) > 0 {
		return &ValidationError{Title: d.Title, Violations: violations}
	}
	return nil
}

func (d *Descriptor) unknownFields(doc map[string]any) []Violation {
	var violations []Violation
	for name := range doc {
		if _, ok := d.field(name); !ok {
			violations = append(violations, Violation{name, "unknown", "is not a declared field"})
		}
	}
	return violations
}

func checkValue(f Field, value any) []Violation {
	switch f.Kind {
	case String:
		s, ok := value.(string)
		if !ok {
			return []Violation{{f.Name, "type", fmt.Sprintf("must be a %s", f.Kind)}}
		}
		return checkString(f, s)
	case Int:
		if _, ok := asInt(value); !ok {
			return []Violation{{f.Name, "type", fmt.Sprintf("must be an %s", f.Kind)}}
		}
	case Bool:
		if _, ok := value.(bool); !ok {
			return []Violation{{f.Name, "type", fmt.Sprintf("must be a %s", f.Kind)}}
		}
	case DateTime:
		if !isDateTime(value) {
			return []Violation{{f.Name, "type", fmt.Sprintf("must be a %s", f.Kind)}}
		}
	}
	return nil
}

func checkString(f Field, s string) []Violation {
	var violations []Violation
	if len(s) < f.MinLen {
		violations = append(violations, Violation{f.Name, "minLength",
			fmt.Sprintf("must be at least %d characters", f.MinLen)})
	}
	if f.MaxLen > 0 && len(s) > f.MaxLen {
		violations = append(violations, Violation{f.Name, "maxLength",
			fmt.Sprintf("must be at most %d characters", f.MaxLen)})
	}
	if f.Pattern != nil && !f.Pattern.MatchString(s) {
		msg := f.PatternMsg
		if msg == "" {
			msg = fmt.Sprintf("must match %s", f.Pattern)
		}
		violations = append(violations, Violation{f.Name, "pattern", msg})
	}
	return violations
}

// asInt accepts the integer shapes a field map can carry: native ints,
// the BSON int widths, and integral float64 values from decoded JSON.
func asInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	}
	return 0, false
}

func isDateTime(value any) bool {
	switch v := value.(type) {
	case time.Time:
		return true
	case string:
		_, err := time.Parse(time.RFC3339, v)
		return err == nil
	}
	return false
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case time.Time:
		return v.IsZero()
	}
	return false
}
