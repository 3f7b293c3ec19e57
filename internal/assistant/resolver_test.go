package assistant

import (
	"testing"

	"viaggio/internal/core"
)

func TestResolveTrip(t *testing.T) {
	trips := []core.Trip{
		{ID: 9, Name: "Japan 2026", Destination: "Tokyo"},
		{ID: 7, Name: "Weekend in Rome", Destination: "Rome"},
		{ID: 2, Name: "Ski trip", Destination: "Zermatt"},
	}

	tests := []struct {
		name       string
		explicitID int64
		hint       string
		trips      []core.Trip
		fallback   bool
		wantID     int64
		wantOK     bool
	}{
		{
			name:       "explicit ID wins over matching hint",
			explicitID: 7,
			hint:       "japan",
			trips:      trips,
			wantID:     7,
			wantOK:     true,
		},
		{
			name:   "hint matches trip name",
			hint:   "rome",
			trips:  trips,
			wantID: 7,
			wantOK: true,
		},
		{
			name:   "hint matches destination",
			hint:   "zermatt",
			trips:  trips,
			wantID: 2,
			wantOK: true,
		},
		{
			name:   "first match in list order wins",
			hint:   "trip", // "Ski trip" only; names are checked in order
			trips:  trips,
			wantID: 2,
			wantOK: true,
		},
		{
			name:     "no hint falls back to latest when allowed",
			trips:    trips,
			fallback: true,
			wantID:   9,
			wantOK:   true,
		},
		{
			name:   "no hint and no fallback resolves nothing",
			trips:  trips,
			wantID: 0,
			wantOK: false,
		},
		{
			name:     "unmatched hint falls back to latest when allowed",
			hint:     "patagonia",
			trips:    trips,
			fallback: true,
			wantID:   9,
			wantOK:   true,
		},
		{
			name:     "empty trip list never resolves",
			hint:     "japan",
			fallback: true,
			wantID:   0,
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ResolveTrip(tt.explicitID, tt.hint, tt.trips, tt.fallback)
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("ResolveTrip() = (%d, %v), want (%d, %v)", id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestMatchesHint(t *testing.T) {
	tests := []struct {
		hint      string
		candidate string
		want      bool
	}{
		{"japan", "Japan 2026", true},
		{"JAPAN", "japan 2026", true},
		{"  rome ", "Weekend in Rome", true},
		{"tokyo", "Japan 2026", false},
		{"", "Japan 2026", false},
		{"japan", "", false},
	}
	for _, tt := range tests {
		if got := MatchesHint(tt.hint, tt.candidate); got != tt.want {
			t.Errorf("MatchesHint(%q, %q) = %v, want %v", tt.hint, tt.candidate, got, tt.want)
		}
	}
}
