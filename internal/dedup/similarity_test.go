package dedup

import "testing"

func TestDescriptionSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		min  float64
		max  float64
	}{
		{"identical", "Grocery Store", "Grocery Store", 1, 1},
		{"case and punctuation insensitive", "BigBasket, Grocery!", "bigbasket grocery", 1, 1},
		{"reordered tokens", "Grocery BigBasket", "BigBasket Grocery", 1, 1},
		{"partial overlap", "BigBasket Grocery", "Grocery Store", 0.2, 0.7},
		{"small typo", "Electricity Bill", "Electricty Bill", 0.8, 1},
		{"unrelated", "Salary credit", "Uber ride", 0, 0.4},
		{"empty side", "", "Grocery", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DescriptionSimilarity(tt.a, tt.b)
			if got < tt.min || got > tt.max {
				t.Errorf("DescriptionSimilarity(%q, %q) = %.3f, want within [%.2f, %.2f]",
					tt.a, tt.b, got, tt.min, tt.max)
			}
			if sym := DescriptionSimilarity(tt.b, tt.a); sym != got {
				t.Errorf("similarity not symmetric: %.3f vs %.3f", got, sym)
			}
		})
	}
}
