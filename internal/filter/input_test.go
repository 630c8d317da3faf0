package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Trim", input: "  Acme  ", expected: "Acme"},
		{name: "Collapse whitespace", input: "Backend\t\n  Engineer", expected: "Backend Engineer"},
		{name: "Compose accents", input: "Postulacio\u0301n", expected: "Postulaci\u00f3n"},
		{name: "Drop control chars", input: "Ac\u0000me", expected: "Acme"},
		{name: "Blank", input: " \n\t ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanInput(tt.input))
		})
	}
}
