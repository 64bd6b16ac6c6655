package ports

import (
	"context"
	"time"

	"github.com/jberros/btcvol-cli/internal/domain"
)

type Orchestrator interface {
	Restart(ctx context.Context) error
	Logs(ctx context.Context, tail int) (string, error)
	WaitForModel(ctx context.Context, id domain.ModelID, timeout time.Duration) (domain.DeployStatus, error)
}
