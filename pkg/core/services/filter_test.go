package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jakechorley/calibration-allocator/internal/config"
	"github.com/jakechorley/calibration-allocator/pkg/core/allocator"
	"github.com/jakechorley/calibration-allocator/pkg/db"
)

func calendarConfig(layouts ...string) *config.Config {
	cfg := testConfig()
	cfg.Optimizer.DueDateOrder = allocator.DueDateOrderCalendar
	if len(layouts) > 0 {
		cfg.Optimizer.DueDateLayouts = layouts
	}
	return cfg
}

func TestValidateFilter(t *testing.T) {
	window := db.ItemFilter{Division: "FA", DueFrom: "2024-01-01", DueTo: "2024-01-31"}

	tests := []struct {
		name    string
		cfg     *config.Config
		filter  db.ItemFilter
		wantErr bool
	}{
		{"empty filter", testConfig(), db.ItemFilter{}, false},
		{"iso window, lexical order", testConfig(), window, false},
		{"iso window, iso calendar order", calendarConfig(), window, false},
		{"iso window, mixed calendar layouts", calendarConfig("2006-01-02", "02/01/2006"), window, true},
		{"division only, mixed calendar layouts", calendarConfig("02/01/2006"), db.ItemFilter{Division: "FA"}, false},
		{"non-iso bound", testConfig(), db.ItemFilter{DueTo: "31/01/2024"}, true},
		{"unpadded bound", nil, db.ItemFilter{DueFrom: "2024-1-1"}, true},
		{"reversed window", testConfig(), db.ItemFilter{DueFrom: "2024-02-01", DueTo: "2024-01-01"}, true},
		{"open-ended window, nil config", nil, db.ItemFilter{DueFrom: "2024-01-01"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilter(tt.cfg, tt.filter)
			if tt.wantErr {
				assert.ErrorIs(t, err, allocator.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
