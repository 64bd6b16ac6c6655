package pysource

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jberros/btcvol-cli/internal/domain"
)

var importRe = regexp.MustCompile(`^(?:import|from)\s+([A-Za-z_][\w.]*)`)

// pinnedVersions maps importable module names to the requirement lines the
// orchestrator image is known to build with.
var pinnedVersions = map[string]domain.Requirement{
	"numpy":       {Package: "numpy", Constraint: ">=1.24.0"},
	"pandas":      {Package: "pandas", Constraint: ">=2.0.0"},
	"scipy":       {Package: "scipy", Constraint: ">=1.10.0"},
	"sklearn":     {Package: "scikit-learn", Constraint: ">=1.3.0"},
	"statsmodels": {Package: "statsmodels", Constraint: ">=0.14.0"},
	"arch":        {Package: "arch", Constraint: ">=6.0.0"},
}

// stdlibModules are Python standard-library modules commonly imported by
// models; they never become requirements.
var stdlibModules = map[string]struct{}{
	"abc": {}, "collections": {}, "dataclasses": {}, "datetime": {},
	"functools": {}, "itertools": {}, "json": {}, "math": {}, "os": {},
	"pathlib": {}, "random": {}, "re": {}, "statistics": {}, "sys": {},
	"time": {}, "typing": {}, "warnings": {},
}

// ScanImports returns the top-level module name of every import statement,
// in first-seen order.
func ScanImports(code string) []string {
	seen := make(map[string]struct{})
	var modules []string
	for _, line := range strings.Split(code, "\n") {
		m := importRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		module, _, _ := strings.Cut(m[1], ".")
		if _, ok := seen[module]; ok {
			continue
		}
		seen[module] = struct{}{}
		modules = append(modules, module)
	}

	return modules
}

// Requirements maps imported modules to pinned requirement lines. Modules
// without a pinned version are listed unconstrained and reported back as
// warnings; the btcvol package ships inside every bundle and Python
// standard-library modules are skipped. An empty result defaults to numpy,
// which the base tracker needs anyway.
func Requirements(imports []string) ([]domain.Requirement, []string) {
	var reqs []domain.Requirement
	var warnings []string
	for _, module := range imports {
		if module == "btcvol" {
			continue
		}
		if _, ok := stdlibModules[module]; ok {
			continue
		}

		if req, ok := pinnedVersions[module]; ok {
			reqs = append(reqs, req)
			continue
		}
		reqs = append(reqs, domain.Requirement{Package: module})
		warnings = append(warnings, fmt.Sprintf("no pinned version for %q; listed unpinned", module))
	}

	if len(reqs) == 0 {
		reqs = append(reqs, pinnedVersions["numpy"])
	}

	sort.Slice(reqs, func(i, j int) bool { return reqs[i].Package < reqs[j].Package })

	return dedupe(reqs), warnings
}

func dedupe(reqs []domain.Requirement) []domain.Requirement {
	out := reqs[:0]
	var last string
	for _, req := range reqs {
		if req.Package == last {
			continue
		}
		out = append(out, req)
		last = req.Package
	}

	return out
}
