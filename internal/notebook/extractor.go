// Package notebook converts Jupyter notebooks into plain Python sources by
// concatenating their code cells.
package notebook

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jberros/btcvol-cli/internal/domain"
)

type document struct {
	Cells []cell `json:"cells"`
}

type cell struct {
	CellType string          `json:"cell_type"`
	Source   json.RawMessage `json:"source"`
}

// skipMarkers identify cells that only make sense inside the notebook:
// local test-harness calls, install commands, and demo sections.
var skipMarkers = []string{
	"test_model_locally",
	"pip install",
	"# Test",
}

// Extract produces a single Python source from the notebook's code cells,
// preserving cell order and the line order within each cell. Markdown
// cells, magic and shell-escape lines, and test/demo cells are dropped;
// kept statements are never rewritten.
func Extract(r io.Reader) (string, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return "", fmt.Errorf("decode notebook: %w", err)
	}

	var kept []string
	for _, c := range doc.Cells {
		if c.CellType != "code" {
			continue
		}

		code, err := c.text()
		if err != nil {
			return "", err
		}
		if skipCell(code) {
			continue
		}

		code = strings.TrimRight(stripMagicLines(code), "\n")
		if strings.TrimSpace(code) == "" {
			continue
		}
		kept = append(kept, code)
	}

	if len(kept) == 0 {
		return "", domain.ErrEmptyNotebook
	}

	return strings.Join(kept, "\n\n"), nil
}

// nbformat stores cell sources either as a single string or a list of
// lines with embedded newlines.
func (c cell) text() (string, error) {
	if len(c.Source) == 0 {
		return "", nil
	}

	var lines []string
	if err := json.Unmarshal(c.Source, &lines); err == nil {
		return strings.Join(lines, ""), nil
	}

	var joined string
	if err := json.Unmarshal(c.Source, &joined); err != nil {
		return "", fmt.Errorf("decode cell source: %w", err)
	}

	return joined, nil
}

func skipCell(code string) bool {
	stripped := strings.TrimSpace(code)
	if stripped == "" || strings.HasPrefix(stripped, "%") || strings.HasPrefix(stripped, "!") {
		return true
	}

	for _, marker := range skipMarkers {
		if strings.Contains(code, marker) {
			return true
		}
	}

	return false
}

func stripMagicLines(code string) string {
	lines := strings.Split(code, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "%") || strings.HasPrefix(trimmed, "!") {
			continue
		}
		kept = append(kept, line)
	}

	return strings.Join(kept, "\n")
}
