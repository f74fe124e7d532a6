package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Golden comparison states reported per scenario.
const (
	GoldenMatch    = "match"
	GoldenMismatch = "mismatch"
	GoldenUpdated  = "updated"
	GoldenNone     = "none"
)

// SuiteOptions controls RunSuite.
type SuiteOptions struct {
	// GoldenDir holds golden files. Empty means a "golden" directory next
	// to each scenario file.
	GoldenDir string

	// Update rewrites golden files instead of comparing them.
	Update bool
}

// ScenarioReport is the outcome of one scenario file.
type ScenarioReport struct {
	Name   string   `json:"name"`
	Path   string   `json:"path"`
	Pass   bool     `json:"pass"`
	Golden string   `json:"golden"`
	Errors []string `json:"errors,omitempty"`
}

// SuiteResult summarizes a suite run.
type SuiteResult struct {
	Scenarios []ScenarioReport `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// FindScenarioFiles walks dir for .yaml and .yml files whose base name
// (without extension) matches the glob filter. An empty filter matches all.
// Files under a "golden" directory are skipped.
func FindScenarioFiles(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != dir && info.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// RunSuite loads, runs and golden-checks every scenario file.
// A scenario passes when it loads, runs, satisfies its expectations and
// matches (or, with Update, rewrites) its golden file. Scenarios without a
// golden file are judged on expectations alone.
func RunSuite(files []string, opts SuiteOptions) *SuiteResult {
	result := &SuiteResult{
		Scenarios: make([]ScenarioReport, 0, len(files)),
		Total:     len(files),
	}

	for _, path := range files {
		report := runFile(path, opts)
		if report.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Scenarios = append(result.Scenarios, report)
	}

	return result
}

func runFile(path string, opts SuiteOptions) ScenarioReport {
	report := ScenarioReport{
		Name:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Path:   path,
		Golden: GoldenNone,
	}

	scenario, err := LoadScenario(path)
	if err != nil {
		report.Errors = []string{fmt.Sprintf("failed to load scenario: %v", err)}
		return report
	}
	report.Name = scenario.Name

	result, err := Run(scenario)
	if err != nil {
		report.Errors = []string{fmt.Sprintf("execution failed: %v", err)}
		return report
	}
	report.Errors = result.Errors

	goldenDir := opts.GoldenDir
	if goldenDir == "" {
		goldenDir = filepath.Join(filepath.Dir(path), "golden")
	}

	switch {
	case opts.Update:
		if err := WriteGolden(goldenDir, scenario.Name, result); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("failed to update golden file: %v", err))
			return report
		}
		report.Golden = GoldenUpdated

	default:
		if _, err := os.Stat(GoldenPath(goldenDir, scenario.Name)); os.IsNotExist(err) {
			break
		}
		match, err := CompareGolden(goldenDir, scenario.Name, result)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("golden comparison failed: %v", err))
			return report
		}
		if !match {
			report.Golden = GoldenMismatch
			report.Errors = append(report.Errors, "trace does not match golden file (run with --update to regenerate)")
			return report
		}
		report.Golden = GoldenMatch
	}

	report.Pass = len(report.Errors) == 0
	return report
}
