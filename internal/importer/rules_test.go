package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsFrom(m map[string]string) Fields {
	header := make([]string, 0, len(m))
	raw := make([]string, 0, len(m))
	for k, v := range m {
		header = append(header, k)
		raw = append(raw, v)
	}
	return MapRow(raw, header)
}

func TestMapRowShortRow(t *testing.T) {
	f := MapRow([]string{" a ", "b"}, []string{"one", " two ", "three"})

	assert.Equal(t, "a", f.Get("one"))
	assert.Equal(t, "b", f.Get("two"))
	assert.Equal(t, "", f.Get("three"))
	assert.Equal(t, "", f.Get("missing"))
	assert.Equal(t, "", f.At(5))
	assert.Equal(t, 2, f.Len())
}

func TestEvalDefaultSubstitution(t *testing.T) {
	rules := []Rule{{Field: "urgency", Kind: RuleEnum, Default: "medium", Enum: []string{"low", "medium", "high"}}}

	vals, errs := Eval(fieldsFrom(map[string]string{"urgency": ""}), rules)
	require.Empty(t, errs)
	assert.Equal(t, "medium", vals.Str("urgency"))

	_, errs = Eval(fieldsFrom(map[string]string{"urgency": "banana"}), rules)
	require.Len(t, errs, 1)
	assert.Equal(t, "urgency", errs[0].Field)
	assert.Equal(t, "urgency must be one of: low, medium, high", errs[0].Message)
}

func TestEvalOptionalEmptyZeroValues(t *testing.T) {
	rules := []Rule{
		{Field: "tags", Kind: RuleList},
		{Field: "flag", Kind: RuleBool},
		{Field: "count", Kind: RuleInt, IntFallback: 1},
		{Field: "note", Kind: RuleText},
	}

	vals, errs := Eval(fieldsFrom(map[string]string{}), rules)
	require.Empty(t, errs)
	assert.Equal(t, []string{}, vals.List("tags"))
	assert.False(t, vals.Bool("flag"))
	assert.Equal(t, 1, vals.Int("count"))
	assert.Equal(t, "", vals.Str("note"))
}

func TestEvalIntRangeAndFallback(t *testing.T) {
	rules := []Rule{{Field: "n", Kind: RuleInt, Min: 1, Max: 50, FallbackOnBadInt: true, IntFallback: 1}}

	tests := []struct {
		raw     string
		want    int
		wantErr string
	}{
		{raw: "1", want: 1},
		{raw: "50", want: 50},
		{raw: "abc", want: 1},
		{raw: "0", wantErr: "n must be between 1 and 50"},
		{raw: "51", wantErr: "n must be between 1 and 50"},
	}
	for _, tc := range tests {
		vals, errs := Eval(fieldsFrom(map[string]string{"n": tc.raw}), rules)
		if tc.wantErr != "" {
			require.Len(t, errs, 1, "raw %q", tc.raw)
			assert.Equal(t, tc.wantErr, errs[0].Message)
			assert.Equal(t, tc.raw, errs[0].Value)
			continue
		}
		require.Empty(t, errs, "raw %q", tc.raw)
		assert.Equal(t, tc.want, vals.Int("n"))
	}
}

func TestEvalBool(t *testing.T) {
	rules := []Rule{{Field: "f", Kind: RuleBool}}

	for raw, want := range map[string]bool{
		"true": true, "TRUE": true, "True": true, "1": true,
		"false": false, "yes": false, "0": false,
	} {
		vals, errs := Eval(fieldsFrom(map[string]string{"f": raw}), rules)
		require.Empty(t, errs)
		assert.Equal(t, want, vals.Bool("f"), "raw %q", raw)
	}
}

func TestEvalListTrimsAndDropsEmpties(t *testing.T) {
	rules := []Rule{{Field: "req", Kind: RuleList}}

	vals, errs := Eval(fieldsFrom(map[string]string{"req": " ladder ; ; gloves ;;"}), rules)
	require.Empty(t, errs)
	assert.Equal(t, []string{"ladder", "gloves"}, vals.List("req"))
}

func TestEvalDateLayouts(t *testing.T) {
	rules := []Rule{{Field: "d", Kind: RuleDate, Required: true}}

	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2024-01-15T09:00:00Z", time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)},
		{"2024-01-15 09:30:00", time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)},
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"01/15/2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"Jan 15, 2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		vals, errs := Eval(fieldsFrom(map[string]string{"d": tc.raw}), rules)
		require.Empty(t, errs, "raw %q", tc.raw)
		assert.True(t, tc.want.Equal(vals.Time("d")), "raw %q parsed as %v", tc.raw, vals.Time("d"))
	}

	_, errs := Eval(fieldsFrom(map[string]string{"d": "someday"}), rules)
	require.Len(t, errs, 1)
	assert.Equal(t, "d is not a valid date", errs[0].Message)
}

func TestEvalReportsAllFailingFields(t *testing.T) {
	rules := []Rule{
		{Field: "a", Kind: RuleText, Required: true},
		{Field: "b", Kind: RuleFloat, Required: true},
		{Field: "c", Kind: RuleText},
	}

	_, errs := Eval(fieldsFrom(map[string]string{"a": "", "b": "oops", "c": "fine"}), rules)
	require.Len(t, errs, 2)
	assert.Equal(t, "a is required", errs[0].Message)
	assert.Equal(t, "b must be a number", errs[1].Message)
}
