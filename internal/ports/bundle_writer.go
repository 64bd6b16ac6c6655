package ports

import (
	"context"
	"time"

	"github.com/jberros/btcvol-cli/internal/domain"
)

type BundleWriter interface {
	Write(ctx context.Context, sub domain.Submission, createdAt time.Time) (string, error)
}
