package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mr1hm/go-quake-impact/internal/models"
)

var ErrNotFound = errors.New("assessment not found")

type Filter struct {
	Limit         int
	Offset        int
	Since         *time.Time
	MinFatalities *int64
	Status        *models.Status
}

// AssessmentRepository stores assessments. List returns summaries only: the
// grid is loaded by GetByID.
type AssessmentRepository interface {
	Add(ctx context.Context, a *models.Assessment) error
	GetByID(ctx context.Context, id string) (*models.Assessment, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, opts Filter) ([]models.Assessment, error)
}
