package ports

import (
	"context"

	"github.com/jberros/btcvol-cli/internal/domain"
)

type ModelConfigRepository interface {
	GetByID(ctx context.Context, id domain.ModelID) (domain.ConfigEntry, error)
	List(ctx context.Context) ([]domain.ConfigEntry, error)
	Upsert(ctx context.Context, entry domain.ConfigEntry) error
}
