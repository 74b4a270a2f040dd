package persistence

import (
	"context"
	"sync"

	"github.com/dharti/dharti/bridge/internal/domain/entity"
	"github.com/dharti/dharti/bridge/internal/domain/repository"
)

// MemoryInteractionRepository keeps the audit trail in memory. Used by
// tests and by deployments that run with database.type "memory".
type MemoryInteractionRepository struct {
	mu   sync.RWMutex
	rows []*entity.Interaction
}

// NewMemoryInteractionRepository creates an empty in-memory repository.
func NewMemoryInteractionRepository() *MemoryInteractionRepository {
	return &MemoryInteractionRepository{}
}

var _ repository.InteractionRepository = (*MemoryInteractionRepository)(nil)

// Save stores one completed interaction.
func (r *MemoryInteractionRepository) Save(ctx context.Context, in *entity.Interaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *in
	r.rows = append(r.rows, &clone)
	return nil
}

// FindRecent returns the newest interactions, most recent first.
func (r *MemoryInteractionRepository) FindRecent(ctx context.Context, limit int) ([]*entity.Interaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	result := make([]*entity.Interaction, 0, limit)
	for i := len(r.rows) - 1; i >= 0 && len(result) < limit; i-- {
		clone := *r.rows[i]
		result = append(result, &clone)
	}
	return result, nil
}
