package services

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jakechorley/calibration-allocator/internal/config"
	"github.com/jakechorley/calibration-allocator/pkg/core/allocator"
	"github.com/jakechorley/calibration-allocator/pkg/db"
)

var filterValidator = validator.New()

// ValidateFilter rejects equipment filters the store cannot apply faithfully.
// Stores compare due dates as text, which matches calendar order only for ISO dates,
// so a due-date window is refused when the calendar order is configured with other layouts.
func ValidateFilter(cfg *config.Config, filter db.ItemFilter) error {
	if err := filterValidator.Struct(filter); err != nil {
		return fmt.Errorf("%w: due-date window bounds must be YYYY-MM-DD: %v", allocator.ErrInvalidInput, err)
	}
	if filter.DueFrom != "" && filter.DueTo != "" && filter.DueFrom > filter.DueTo {
		return fmt.Errorf("%w: due-date window starts (%s) after it ends (%s)", allocator.ErrInvalidInput, filter.DueFrom, filter.DueTo)
	}

	if !filter.HasDueWindow() || cfg == nil || cfg.Optimizer.DueDateOrder != allocator.DueDateOrderCalendar {
		return nil
	}
	for _, layout := range cfg.Optimizer.DueDateLayouts {
		if layout != time.DateOnly {
			return fmt.Errorf("%w: due-date window needs ISO due dates but the calendar order accepts layout %q",
				allocator.ErrInvalidInput, layout)
		}
	}
	return nil
}
