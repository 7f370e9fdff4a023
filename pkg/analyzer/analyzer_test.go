package analyzer_test

import (
	"path/filepath"
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"

	"lockcheck/pkg/analyzer"
)

func TestAnalyzer(t *testing.T) {
	testdata := analysistest.TestData()
	if err := analyzer.Analyzer.Flags.Set("lockcheck.config", filepath.Join(testdata, "lockcheck.toml")); err != nil {
		t.Fatal(err)
	}
	analysistest.Run(t, testdata, analyzer.Analyzer,
		"direct_cycle",
		"transitive_cycle",
		"branch_no_cycle",
		"branch_same_class",
		"self_cycle",
		"interprocedural_return",
		"suppressed",
		"crosspkg/pkga",
		"crosspkg/pkgb",
	)
}
