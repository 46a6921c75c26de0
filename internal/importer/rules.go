package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RuleKind is the expected data type for a schema field.
type RuleKind int

const (
	RuleText RuleKind = iota
	RuleFloat
	RuleInt
	RuleBool
	RuleEnum
	RuleList
	RuleDate
)

// Rule defines the coercion and validation applied to a single field.
// The zero value of every optional knob means "no constraint".
type Rule struct {
	Field    string
	Kind     RuleKind
	Required bool

	// Default substitutes for an empty raw value before any other check.
	Default string

	// Positive requires numeric values to be strictly greater than zero.
	Positive bool

	// Min/Max are inclusive integer bounds, active when Max > 0.
	Min, Max int

	// FallbackOnBadInt makes an unparseable integer coerce to IntFallback
	// instead of failing. Range checks only apply to parsed values.
	FallbackOnBadInt bool
	IntFallback      int

	// Enum is the closed set of accepted values for RuleEnum.
	Enum []string

	// ListSep separates RuleList segments. Empty means ";".
	ListSep string
}

// FieldError is a single field-level validation failure within one row.
type FieldError struct {
	Field   string
	Message string
	Value   string
}

// Values holds the typed output of evaluating a rule set against one row.
// Value types by kind: Text/Enum/Date-normalized fields are looked up via
// the typed getters below.
type Values map[string]any

func (v Values) Str(field string) string     { s, _ := v[field].(string); return s }
func (v Values) Float(field string) float64  { f, _ := v[field].(float64); return f }
func (v Values) Int(field string) int        { i, _ := v[field].(int); return i }
func (v Values) Bool(field string) bool      { b, _ := v[field].(bool); return b }
func (v Values) List(field string) []string  { l, _ := v[field].([]string); return l }
func (v Values) Time(field string) time.Time { t, _ := v[field].(time.Time); return t }

// Eval applies a declarative rule set to one mapped row. Validation is
// field-granular: every failing field contributes its own error and
// evaluation continues, so a row reports all of its problems at once.
func Eval(fields Fields, rules []Rule) (Values, []FieldError) {
	out := make(Values, len(rules))
	var errs []FieldError

	fail := func(r Rule, msg, raw string) {
		errs = append(errs, FieldError{Field: r.Field, Message: msg, Value: raw})
	}

	for _, r := range rules {
		raw := fields.Get(r.Field)
		if raw == "" && r.Default != "" {
			raw = r.Default
		}

		if raw == "" {
			if r.Required {
				fail(r, fmt.Sprintf("%s is required", r.Field), raw)
				continue
			}
			// Optional empties land as the kind's zero value.
			switch r.Kind {
			case RuleList:
				out[r.Field] = []string{}
			case RuleBool:
				out[r.Field] = false
			case RuleInt:
				out[r.Field] = r.IntFallback
			default:
				out[r.Field] = ""
			}
			continue
		}

		switch r.Kind {
		case RuleText:
			out[r.Field] = raw

		case RuleFloat:
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				fail(r, fmt.Sprintf("%s must be a number", r.Field), raw)
				continue
			}
			if r.Positive && v <= 0 {
				fail(r, fmt.Sprintf("%s must be greater than zero", r.Field), raw)
				continue
			}
			out[r.Field] = v

		case RuleInt:
			v, err := strconv.Atoi(raw)
			if err != nil {
				if r.FallbackOnBadInt {
					out[r.Field] = r.IntFallback
					continue
				}
				fail(r, fmt.Sprintf("%s must be a whole number", r.Field), raw)
				continue
			}
			if r.Positive && v <= 0 {
				fail(r, fmt.Sprintf("%s must be greater than zero", r.Field), raw)
				continue
			}
			if r.Max > 0 && (v < r.Min || v > r.Max) {
				fail(r, fmt.Sprintf("%s must be between %d and %d", r.Field, r.Min, r.Max), raw)
				continue
			}
			out[r.Field] = v

		case RuleBool:
			out[r.Field] = strings.EqualFold(raw, "true") || raw == "1"

		case RuleEnum:
			matched := false
			for _, ev := range r.Enum {
				if raw == ev {
					matched = true
					break
				}
			}
			if !matched {
				fail(r, fmt.Sprintf("%s must be one of: %s", r.Field, strings.Join(r.Enum, ", ")), raw)
				continue
			}
			out[r.Field] = raw

		case RuleList:
			sep := r.ListSep
			if sep == "" {
				sep = ";"
			}
			parts := strings.Split(raw, sep)
			list := make([]string, 0, len(parts))
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					list = append(list, p)
				}
			}
			out[r.Field] = list

		case RuleDate:
			t, ok := parseDate(raw)
			if !ok {
				fail(r, fmt.Sprintf("%s is not a valid date", r.Field), raw)
				continue
			}
			out[r.Field] = t
		}
	}

	return out, errs
}

// dateLayouts are tried in order. Timestamp layouts come first because
// import files usually carry full instants; bare dates parse as midnight.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
