// Package videos implements the publishing side: uploaded media records,
// view counting, and removal with remote object reclamation.
package videos

import (
	"context"

	"github.com/dsmirnovs/clipvault/internal/server/models"
)

// Repository is the media record store contract.
type Repository interface {
	Create(ctx context.Context, video *models.Video) (*models.Video, error)
	GetByID(ctx context.Context, id string) (*models.Video, error)

	// GetByTitle resolves a record by its exact title. Titles are unique
	// across the catalog.
	GetByTitle(ctx context.Context, title string) (*models.Video, error)
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
