package cucumber

import (
	"testing"

	"github.com/cucumber/godog"
)

// TestFeatures runs every smoke scenario under features/.
func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "redactbench",
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			Tags:     "@smoke",
			TestingT: t,
			Strict:   true,
		},
	}
	if status := suite.Run(); status != 0 {
		t.Fatalf("feature suite exited with status %d", status)
	}
}
