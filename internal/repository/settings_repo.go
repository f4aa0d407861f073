package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/manan-api/internal/models"
)

// SettingsRepository stores the single risk settings row.
type SettingsRepository interface {
	Get(ctx context.Context) (models.RiskSettings, error)
	Save(ctx context.Context, settings *models.RiskSettings) error
}

type settingsRepository struct {
	db       *gorm.DB
	defaults models.RiskSettings
}

// NewSettingsRepository constructs the repository. Defaults are returned
// until the first save.
func NewSettingsRepository(db *gorm.DB, defaults models.RiskSettings) SettingsRepository {
	defaults.ID = models.RiskSettingsID
	return &settingsRepository{db: db, defaults: defaults}
}

func (r *settingsRepository) Get(ctx context.Context) (models.RiskSettings, error) {
	var settings models.RiskSettings
	err := r.db.WithContext(ctx).First(&settings, models.RiskSettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.defaults, nil
	}
	if err != nil {
		return models.RiskSettings{}, err
	}
	return settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *models.RiskSettings) error {
	settings.ID = models.RiskSettingsID
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(settings).Error
}
