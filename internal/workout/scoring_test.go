package workout

import "testing"

// TestSetPointsBase verifies the base formula round(multiplier * weight)
// for sets outside the bonus window.
func TestSetPointsBase(t *testing.T) {
	tests := []struct {
		name       string
		multiplier float64
		weight     int
		starIndex  int
		want       int
	}{
		{"unit multiplier", 1.0, 100, 1, 100},
		{"fractional rounds up", 1.25, 90, 3, 113}, // 112.5 rounds half up
		{"fractional rounds down", 1.10, 49, 5, 54},
		{"zero weight", 1.6, 0, 2, 0},
		{"last star before bonus", 1.0, 100, 10, 100},
		{"first star after bonus", 1.0, 100, 16, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SetPoints(tt.multiplier, tt.weight, tt.starIndex); got != tt.want {
				t.Errorf("SetPoints(%v, %d, %d) = %d, want %d",
					tt.multiplier, tt.weight, tt.starIndex, got, tt.want)
			}
		})
	}
}

// TestSetPointsBonusWindow verifies that exactly star indices 11 through 15
// earn the 1.5x bonus, rounded after the multiplication.
func TestSetPointsBonusWindow(t *testing.T) {
	for star := 1; star <= 20; star++ {
		got := SetPoints(1.0, 100, star)
		want := 100
		if star >= 11 && star <= 15 {
			want = 150
		}
		if got != want {
			t.Errorf("SetPoints(1.0, 100, %d) = %d, want %d", star, got, want)
		}
	}

	// Bonus rounds the already-rounded base: base = round(1.25*90) = 113,
	// bonus = round(113*1.5) = round(169.5) = 170.
	if got := SetPoints(1.25, 90, 11); got != 170 {
		t.Errorf("SetPoints(1.25, 90, 11) = %d, want 170", got)
	}
}
