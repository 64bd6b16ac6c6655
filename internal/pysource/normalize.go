// Package pysource prepares and structurally validates user-submitted
// Python model sources. Everything here is a read-only text scan; the
// user's code is never imported or executed.
package pysource

import "strings"

const (
	trackerImport = "from btcvol.tracker import TrackerBase"
	numpyImport   = "import numpy as np"
)

// Normalize rewrites the import forms the orchestrator image expects,
// prepends imports the source clearly relies on but does not declare, and
// strips the local `if __name__` test entrypoint. Statements themselves
// are left untouched.
func Normalize(code string) string {
	code = strings.ReplaceAll(code, "from btcvol import TrackerBase", trackerImport)
	code = truncateAtMainBlock(code)

	var prelude []string
	if strings.Contains(code, "TrackerBase") && !strings.Contains(code, trackerImport) {
		prelude = append(prelude, trackerImport)
	}
	if strings.Contains(code, "np.") && !strings.Contains(code, numpyImport) {
		prelude = append(prelude, numpyImport)
	}
	if len(prelude) > 0 {
		code = strings.Join(prelude, "\n") + "\n\n\n" + code
	}

	return code
}

func truncateAtMainBlock(code string) string {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		indented := strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
		if !indented && strings.HasPrefix(strings.TrimSpace(line), "if __name__") {
			return strings.TrimRight(strings.Join(lines[:i], "\n"), "\n")
		}
	}

	return code
}
