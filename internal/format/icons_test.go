package format

import "testing"

func TestDetermineIcon(t *testing.T) {
	tests := []struct {
		name     string
		input    IconInput
		expected IconType
	}{
		{
			name:     "no icon by default",
			input:    IconInput{},
			expected: IconNone,
		},
		{
			name:     "favorite",
			input:    IconInput{Favorite: true},
			expected: IconFavorite,
		},
		{
			name:     "popular at threshold",
			input:    IconInput{Stars: 100, PopularThreshold: 100},
			expected: IconPopular,
		},
		{
			name:     "below threshold",
			input:    IconInput{Stars: 99, PopularThreshold: 100},
			expected: IconNone,
		},
		{
			name:     "zero threshold disables popular",
			input:    IconInput{Stars: 1000000},
			expected: IconNone,
		},
		{
			name:     "favorite takes precedence over popular",
			input:    IconInput{Favorite: true, Stars: 500, PopularThreshold: 100},
			expected: IconFavorite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetermineIcon(tt.input)
			if got != tt.expected {
				t.Errorf("DetermineIcon() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIconWidths(t *testing.T) {
	for _, icon := range []IconType{IconFavorite, IconPopular} {
		if w := DisplayWidth(icon.String()); w != 2 {
			t.Errorf("DisplayWidth(%q) = %d, want 2", icon.String(), w)
		}
	}
	if IconNone.String() != "" {
		t.Errorf("IconNone.String() = %q, want empty", IconNone.String())
	}
}
