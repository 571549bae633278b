package utils

import (
	"testing"
	"time"

	"github.com/MpenduloXulu/TTI-Website/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestDeriveAvailability(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	tests := []struct {
		name    string
		opening *time.Time
		closing *time.Time
		want    string
	}{
		{"both nil is open", nil, nil, types.AvailabilityOpen},
		{"future opening is upcoming", &future, nil, types.AvailabilityUpcoming},
		{"past closing is closed", nil, &past, types.AvailabilityClosed},
		{"inside window is open", &past, &future, types.AvailabilityOpen},
		{"closed wins over upcoming", &future, &past, types.AvailabilityClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveAvailability(tt.opening, tt.closing, now))
		})
	}
}

func TestAvailabilityRank(t *testing.T) {
	assert.Equal(t, 0, AvailabilityRank(types.AvailabilityOpen))
	assert.Equal(t, 1, AvailabilityRank(types.AvailabilityUpcoming))
	assert.Equal(t, 2, AvailabilityRank(types.AvailabilityClosed))
	assert.Equal(t, 3, AvailabilityRank("archived"))
}
