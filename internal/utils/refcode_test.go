package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPersonInitials(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"Garcia Marquez, Gabriel", "GG"}, // comma form: one letter per segment
		{"Doe, John, Quincy", "DJQ"},
		{"John Doe", "JD"},
		{"john doe", "JD"}, // uppercased
		{"John Michael Doe", "JD"}, // first and last word only
		{"Cher", "C"},
		{"  Doe ,  John ", "DJ"}, // segment whitespace trimmed
		{"Ólafur Arnalds", "ÓA"}, // leading rune, not leading byte
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PersonInitials(tt.name))
		})
	}
}

func TestGroupCode(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"Road Trip Crew", "ROADT"}, // whitespace removed, capped at 5
		{"The Krew", "THEKR"},
		{"Ops", "OPS"}, // shorter than cap, no padding
		{"ab", "AB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GroupCode(tt.name))
		})
	}
}

func TestReferenceBase(t *testing.T) {
	t.Run("Person borrower", func(t *testing.T) {
		assert.Equal(t, "DJAL", ReferenceBase("Doe, John", false, "Ann Lee"))
	})

	t.Run("Group borrower", func(t *testing.T) {
		assert.Equal(t, "ROADTJS", ReferenceBase("Road Trip Crew", true, "Jane Smith"))
	})
}
