package repository

import (
	"context"

	"github.com/dharti/dharti/bridge/internal/domain/entity"
)

// InteractionRepository persists the local audit trail of prompt runs.
type InteractionRepository interface {
	// Save stores one completed interaction.
	Save(ctx context.Context, in *entity.Interaction) error
	// FindRecent returns the newest interactions, most recent first.
	FindRecent(ctx context.Context, limit int) ([]*entity.Interaction, error)
}
