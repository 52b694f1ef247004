package extract

import "testing"

func TestIsHumanName(t *testing.T) {
	tests := []struct {
		first, last string
		want        bool
	}{
		{"Jane", "Smith", true},
		{"Mario", "Rossi", true},
		{"José", "García", true},
		{"", "Smith", false},
		{"Jane", "", false},
		{"JANE", "SMITH", false},
		{"Jane", "SMITH", false},
		{"jane", "smith", false},  // not capitalized
		{"Jane", "Li", false},     // last under 3 runes
		{"Jane", "Sales", false},  // stop word
		{"Contact", "Us", false},  // stop word
		{"Jane", "Things", false}, // ends in s
		{"Jane", "Hiking", false}, // ends in ing
		{"Xyz", "Qwrtk", false},   // no vowel in last
		{"Learn", "More", false},  // blocked phrase vocabulary
		{"Privacy", "Policy", false},
		{"Anna", "Bell", true},
	}
	for _, tt := range tests {
		if got := IsHumanName(tt.first, tt.last); got != tt.want {
			t.Errorf("IsHumanName(%q, %q) = %v, want %v", tt.first, tt.last, got, tt.want)
		}
	}
}

func TestNormalizeToken(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"García", "garcia"},
		{"O'Brien", "obrien"},
		{"Müller", "muller"},
		{"Jean-Luc", "jeanluc"},
		{"SMITH", "smith"},
	}
	for _, tt := range tests {
		if got := NormalizeToken(tt.in); got != tt.want {
			t.Errorf("NormalizeToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
