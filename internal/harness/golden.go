package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario, fails on any assertion error, and
// compares the rendered file against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	if !result.Pass {
		return fmt.Errorf("scenario %s failed:\n%s", scenario.Name, strings.Join(result.Errors, "\n"))
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares a result's rendered output against a golden file.
// A result without output (a rejected record) cannot be compared.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	if result.Output == "" {
		return fmt.Errorf("scenario %s produced no output", scenarioName)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, []byte(result.Output))
	return nil
}
