// Package docker drives the model orchestrator container through the
// docker CLI: restart to pick up a new submission, logs to observe it.
package docker

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/jberros/btcvol-cli/internal/domain"
	"github.com/jberros/btcvol-cli/internal/ports"
)

const (
	// DefaultContainer is the orchestrator container started by the local
	// deployment compose file.
	DefaultContainer = "dvol-model-orchestrator-local"

	pollInterval  = 3 * time.Second
	statusLogTail = 100
	failureTail   = 20
)

var errStatusPending = errors.New("model status not reported yet")

type runnerFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

type Orchestrator struct {
	container string
	run       runnerFunc
}

var _ ports.Orchestrator = (*Orchestrator)(nil)

func New(container string) *Orchestrator {
	if container == "" {
		container = DefaultContainer
	}

	return &Orchestrator{container: container, run: runCombined}
}

func runCombined(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Restart bounces the orchestrator container so it rescans the submissions
// directory. A non-zero exit surfaces the command's last output lines.
func (o *Orchestrator) Restart(ctx context.Context) error {
	out, err := o.run(ctx, "docker", "restart", o.container)
	if err != nil {
		return fmt.Errorf("%w: docker restart %s: %s",
			domain.ErrDeploymentFailed, o.container, lastLines(string(out), failureTail))
	}

	return nil
}

func (o *Orchestrator) Logs(ctx context.Context, tail int) (string, error) {
	out, err := o.run(ctx, "docker", "logs", o.container, "--tail", strconv.Itoa(tail))
	if err != nil {
		return "", fmt.Errorf("fetch orchestrator logs: %s: %w", lastLines(string(out), failureTail), err)
	}

	return string(out), nil
}

// WaitForModel polls the orchestrator logs until the model is reported
// RUNNING or FAILED. A model that never shows up within the timeout is
// StatusUnknown, not an error; the orchestrator may still be building it.
func (o *Orchestrator) WaitForModel(ctx context.Context, id domain.ModelID, timeout time.Duration) (domain.DeployStatus, error) {
	retries := uint64(timeout / pollInterval)
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(pollInterval), retries), ctx)

	status := domain.StatusUnknown
	err := backoff.Retry(func() error {
		logs, err := o.Logs(ctx, statusLogTail)
		if err != nil {
			return backoff.Permanent(err)
		}

		switch {
		case strings.Contains(logs, fmt.Sprintf("Model %s is RUNNING", id)):
			status = domain.StatusRunning
			return nil
		case strings.Contains(logs, fmt.Sprintf("Model %s", id)) && strings.Contains(logs, "FAILED"):
			status = domain.StatusFailed
			return nil
		}

		return errStatusPending
	}, policy)

	if err != nil {
		if errors.Is(err, errStatusPending) {
			return domain.StatusUnknown, nil
		}
		return domain.StatusUnknown, err
	}

	return status, nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
