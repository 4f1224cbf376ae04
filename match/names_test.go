package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Geoffrey Hinton", "geoffrey hinton"},
		{"reorders last-comma-first", "Hinton, Geoffrey", "geoffrey hinton"},
		{"strips periods from initials", "G. E. Hinton", "g e hinton"},
		{"strips hyphens", "Yann Le-Cun", "yann lecun"},
		{"strips apostrophes", "O'Brien", "obrien"},
		{"collapses internal spaces", "Yoshua   Bengio", "yoshua bengio"},
		{"trims surrounding whitespace", "  Ada Lovelace  ", "ada lovelace"},
		{"comma with empty first part", "Hinton,", "hinton"},
		{"empty input", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.input))
		})
	}
}

func TestNameSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"exact match", "Geoffrey Hinton", "Geoffrey Hinton", 1.0},
		{"case and punctuation differences", "Hinton, Geoffrey", "geoffrey hinton", 1.0},
		{"matching initial", "G. Hinton", "Geoffrey Hinton", 0.9},
		{"last name only on one side", "Hinton", "Geoffrey Hinton", 0.7},
		{"same last different first", "Robert Hinton", "Geoffrey Hinton", 0.3},
		{"different last names", "Geoffrey Hinton", "Yann LeCun", 0.0},
		{"empty name", "", "Geoffrey Hinton", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NameSimilarity(tt.a, tt.b))
		})
	}

	t.Run("is symmetric", func(t *testing.T) {
		assert.Equal(t,
			NameSimilarity("G. Hinton", "Geoffrey Hinton"),
			NameSimilarity("Geoffrey Hinton", "G. Hinton"))
	})
}
