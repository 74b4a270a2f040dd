package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/dharti/dharti/bridge/internal/domain/entity"
	"github.com/dharti/dharti/bridge/internal/domain/repository"
	"github.com/dharti/dharti/bridge/internal/infrastructure/persistence/models"
)

// GormInteractionRepository stores the audit trail in the database.
type GormInteractionRepository struct {
	db *gorm.DB
}

// NewGormInteractionRepository creates the repository.
func NewGormInteractionRepository(db *gorm.DB) *GormInteractionRepository {
	return &GormInteractionRepository{db: db}
}

var _ repository.InteractionRepository = (*GormInteractionRepository)(nil)

// Save stores one completed interaction.
func (r *GormInteractionRepository) Save(ctx context.Context, in *entity.Interaction) error {
	model := models.FromEntity(in)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("save interaction: %w", err)
	}
	return nil
}

// FindRecent returns the newest interactions, most recent first.
func (r *GormInteractionRepository) FindRecent(ctx context.Context, limit int) ([]*entity.Interaction, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []models.InteractionModel
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find recent interactions: %w", err)
	}

	result := make([]*entity.Interaction, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].ToEntity())
	}
	return result, nil
}
