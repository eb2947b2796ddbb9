package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMALID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"plain integer", "1", 1, false},
		{"float form", "30276.0", 30276, false},
		{"truncates fraction", "12.9", 12, false},
		{"scientific notation", "1e3", 1000, false},
		{"surrounding whitespace", " 42 ", 42, false},
		{"negative stored verbatim", "-5", -5, false},
		{"empty", "", 0, true},
		{"blank", "   ", 0, true},
		{"text", "abc", 0, true},
		{"digits with suffix", "12 eps", 0, true},
		{"nan", "NaN", 0, true},
		{"infinity", "inf", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMALID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   float64
		absent bool
	}{
		{"plain float", "8.5", 8.5, false},
		{"integer score", "9", 9, false},
		{"zero is a value", "0", 0, false},
		{"surrounding whitespace", " 7.77 ", 7.77, false},
		{"not available", "N/A", 0, true},
		{"empty", "", 0, true},
		{"comma decimal", "9,1", 0, true},
		{"no digit scan for scores", "8.5/10", 0, true},
		{"text", "great", 0, true},
		{"nan", "nan", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseScore(tt.input)
			if tt.absent {
				assert.False(t, got.Valid, "expected absent score")
				return
			}
			require.True(t, got.Valid, "expected present score")
			assert.Equal(t, tt.want, got.Float64)
		})
	}
}

func TestParseEpisodes(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   int64
		absent bool
	}{
		{"plain integer", "12", 12, false},
		{"float form", "12.0", 12, false},
		{"truncates toward zero", "3.9", 3, false},
		{"digit scan fallback", "12 eps", 12, false},
		{"digit scan mid-text", "approx. 24 episodes", 24, false},
		{"first digit run wins", "13 of 26", 13, false},
		{"surrounding whitespace", " 26 ", 26, false},
		{"unknown", "unknown", 0, true},
		{"empty", "", 0, true},
		{"spelled out", "Twelve", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseEpisodes(tt.input)
			if tt.absent {
				assert.False(t, got.Valid, "expected absent episode count")
				return
			}
			require.True(t, got.Valid, "expected present episode count")
			assert.Equal(t, tt.want, got.Int64)
		})
	}
}
