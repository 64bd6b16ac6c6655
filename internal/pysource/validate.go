package pysource

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jberros/btcvol-cli/internal/domain"
)

var (
	classDefRe   = regexp.MustCompile(`^class\s+([A-Za-z_]\w*)\s*\(([^)]*)\)\s*:`)
	predictDefRe = regexp.MustCompile(`^\s+def\s+predict\s*\(`)
)

var predictParams = []string{"asset", "horizon", "step"}

type trackerClass struct {
	name string
	body []string
}

// Validate confirms the source defines exactly one TrackerBase subclass
// with a predict(asset, horizon, step) method and returns its class name.
// The check is purely structural.
func Validate(code string) (string, error) {
	classes := trackerClasses(code)
	switch {
	case len(classes) == 0:
		return "", domain.ErrTrackerNotFound
	case len(classes) > 1:
		names := make([]string, len(classes))
		for i, c := range classes {
			names[i] = c.name
		}
		return "", fmt.Errorf("%w: %s", domain.ErrAmbiguousTracker, strings.Join(names, ", "))
	}

	cls := classes[0]
	sig, ok := predictSignature(cls.body)
	if !ok {
		return "", fmt.Errorf("%w: class %s", domain.ErrMissingPredictMethod, cls.name)
	}
	for _, param := range predictParams {
		if !hasParam(sig, param) {
			return "", fmt.Errorf("%w: class %s predict() lacks parameter %q",
				domain.ErrMissingPredictMethod, cls.name, param)
		}
	}

	return cls.name, nil
}

// trackerClasses collects top-level class definitions whose base list
// names TrackerBase, each with the indented lines that form its body.
func trackerClasses(code string) []trackerClass {
	lines := strings.Split(code, "\n")

	var classes []trackerClass
	var current *trackerClass
	for _, line := range lines {
		if m := classDefRe.FindStringSubmatch(line); m != nil {
			current = nil
			if baseListNames(m[2], "TrackerBase") {
				classes = append(classes, trackerClass{name: m[1]})
				current = &classes[len(classes)-1]
			}
			continue
		}

		if current == nil {
			continue
		}
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			current.body = append(current.body, line)
			continue
		}
		// Unindented statement ends the class block.
		current = nil
	}

	return classes
}

func baseListNames(bases, want string) bool {
	for _, base := range strings.Split(bases, ",") {
		base = strings.TrimSpace(base)
		// Accept both TrackerBase and dotted forms like btcvol.tracker.TrackerBase.
		if base == want || strings.HasSuffix(base, "."+want) {
			return true
		}
	}

	return false
}

// predictSignature returns the text between the parentheses of the class's
// predict definition, following continuation lines until they balance.
func predictSignature(body []string) (string, bool) {
	for i, line := range body {
		if !predictDefRe.MatchString(line) {
			continue
		}

		var sig strings.Builder
		depth := 0
		for j := i; j < len(body); j++ {
			for _, r := range body[j] {
				switch r {
				case '(':
					depth++
					if depth == 1 {
						continue
					}
				case ')':
					depth--
					if depth == 0 {
						return sig.String(), true
					}
				}
				if depth >= 1 {
					sig.WriteRune(r)
				}
			}
			sig.WriteRune(' ')
		}
		return sig.String(), true
	}

	return "", false
}

func hasParam(sig, name string) bool {
	for _, param := range strings.Split(sig, ",") {
		param = strings.TrimSpace(param)
		// Strip annotations and defaults.
		if i := strings.IndexAny(param, ":="); i >= 0 {
			param = strings.TrimSpace(param[:i])
		}
		param = strings.TrimLeft(param, "*")
		if param == name {
			return true
		}
	}

	return false
}
