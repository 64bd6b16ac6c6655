package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jberros/btcvol-cli/internal/domain"
)

type deployWaitDoneMsg struct {
	err error
}

// deployWaitModel renders the deployment wait: which model is being polled
// and how far into the wait window the poll is.
type deployWaitModel struct {
	spinner spinner.Model
	modelID domain.ModelID
	timeout time.Duration
	started time.Time
	wait    tea.Cmd
	err     error
	done    bool
}

func newDeployWaitModel(modelID domain.ModelID, timeout time.Duration, wait tea.Cmd) deployWaitModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return deployWaitModel{
		spinner: s,
		modelID: modelID,
		timeout: timeout,
		started: time.Now(),
		wait:    wait,
	}
}

func (m deployWaitModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.wait)
}

func (m deployWaitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case deployWaitDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m deployWaitModel) View() string {
	if m.done {
		return ""
	}

	elapsed := time.Since(m.started).Round(time.Second)
	if elapsed > m.timeout {
		elapsed = m.timeout
	}

	return fmt.Sprintf("%s Waiting for model %s to deploy... %s of %s",
		m.spinner.View(), m.modelID, elapsed, m.timeout)
}

func runDeployWaitSpinner(ctx context.Context, output io.Writer, modelID domain.ModelID, timeout time.Duration, wait func(context.Context) error) error {
	waitCmd := func() tea.Msg {
		return deployWaitDoneMsg{err: wait(ctx)}
	}

	p := tea.NewProgram(
		newDeployWaitModel(modelID, timeout, waitCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(deployWaitModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}
