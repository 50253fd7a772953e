package memory

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/lisanmuaddib/pagesync/pkg/db/models"
)

// GetSettings returns the auto-reply settings, creating the row with
// defaults on first use.
func (s *Store) GetSettings(ctx context.Context) (*models.AutoReplySettings, error) {
	defaults := models.DefaultAutoReplySettings()
	defaults.UpdatedAt = s.now()

	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&defaults).Error; err != nil {
		return nil, fmt.Errorf("failed to initialize settings: %w", err)
	}

	var settings models.AutoReplySettings
	if err := s.db.WithContext(ctx).First(&settings, models.SettingsID).Error; err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if settings.ExcludedKeywords == nil {
		settings.ExcludedKeywords = []string{}
	}
	return &settings, nil
}

func (s *Store) UpdateSettings(ctx context.Context, settings *models.AutoReplySettings) error {
	if settings.MinConfidence < 0 || settings.MinConfidence > 1 {
		return fmt.Errorf("min confidence must be within [0, 1], got %v", settings.MinConfidence)
	}
	if settings.MaxDailyReplies < 0 {
		return fmt.Errorf("max daily replies cannot be negative")
	}
	if settings.ExcludedKeywords == nil {
		settings.ExcludedKeywords = []string{}
	}

	settings.ID = models.SettingsID
	settings.UpdatedAt = s.now()
	if err := s.db.WithContext(ctx).Save(settings).Error; err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
