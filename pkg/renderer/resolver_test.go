package renderer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveValueGlobalPrecedence(t *testing.T) {
	data := map[string]any{"total_amount": 999.0}
	globals := map[string]float64{"total_amount": 25}

	// A global named like a data field always wins.
	assert.Equal(t, "25", ResolveValue("total_amount", data, globals))
	assert.Equal(t, "999", ResolveValue("total_amount", data, nil))
}

func TestResolveValueDottedPath(t *testing.T) {
	data := map[string]any{
		"client": map[string]any{
			"address": map[string]any{"city": "Nairobi"},
		},
		"amount": 12.5,
	}

	assert.Equal(t, "Nairobi", ResolveValue("client.address.city", data, nil))
	assert.Equal(t, "12.5", ResolveValue("amount", data, nil))
}

func TestResolveValueMissing(t *testing.T) {
	data := map[string]any{
		"amount": 10.0,
		"client": map[string]any{"name": "Acme"},
		"note":   nil,
	}

	tests := []struct {
		name string
		path string
	}{
		{"absent key", "nothing"},
		{"absent nested key", "client.phone"},
		{"path through primitive", "amount.cents"},
		{"explicit null", "note"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, "N/A", ResolveValue(tt.path, data, nil))
		})
	}
}

func TestFormatValue(t *testing.T) {
	issued := time.Date(2026, time.March, 7, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "hello", "hello"},
		{"int", 42, "42"},
		{"float", 19.99, "19.99"},
		{"whole float", 25.0, "25"},
		{"bool", true, "true"},
		{"date drops time", issued, "3/7/2026"},
		{"date pointer", &issued, "3/7/2026"},
		{"nil", nil, "N/A"},
		{"array", []any{"a", 2, true}, "[a, 2, true]"},
		{"string array", []string{"x", "y"}, "[x, y]"},
		{"object", map[string]any{"code": "DEV"}, `{"code":"DEV"}`},
		{"unknown", struct{ X int }{1}, "Unknown value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.in))
		})
	}
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"int", 3, 3, true},
		{"float", 2.5, 2.5, true},
		{"numeric string", "200", 200, true},
		{"padded numeric string", " 15.5 ", 15.5, true},
		{"empty string is zero", "", 0, true},
		{"bool true", true, 1, true},
		{"word", "abc", 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := toNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLooseCompare(t *testing.T) {
	tests := []struct {
		name  string
		left  any
		op    string
		right any
		want  bool
	}{
		{"number equals numeric string", 200, "==", "200", true},
		{"string equals number", "200", "==", 200.0, true},
		{"bool equals one", true, "==", 1, true},
		{"not equal", 200, "!=", "404", true},
		{"greater", 10.0, ">", "5", true},
		{"less or equal", 5, "<=", 5, true},
		{"string relational", "beta", ">", "alpha", true},
		{"word never numeric", "overdue", ">", 1, false},
		{"nil equals nil", nil, "==", nil, true},
		{"nil not equals value", nil, "==", 0, false},
		{"unknown operator", 1, "~", 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, looseCompare(tt.left, tt.op, tt.right))
		})
	}
}
