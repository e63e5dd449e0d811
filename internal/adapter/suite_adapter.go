package adapter

import (
	"fmt"

	"gopkg.in/yaml.v3"
	m "mend.dev/pkg/mend/internal/model"
)

// SuiteAdapter loads test suites from disk.
type SuiteAdapter interface {
	Load(path m.Path) (m.Suite, error)
}

// YAMLSuiteAdapter reads YAML test suites via the filesystem adapter.
type YAMLSuiteAdapter struct {
	fs SourceFSAdapter
}

// NewYAMLSuiteAdapter constructs a YAMLSuiteAdapter.
func NewYAMLSuiteAdapter(fs SourceFSAdapter) *YAMLSuiteAdapter {
	return &YAMLSuiteAdapter{fs: fs}
}

// Load parses the suite file and checks the parts the engine cannot recover
// from later: a named entry function and uniquely named tests.
func (a *YAMLSuiteAdapter) Load(path m.Path) (m.Suite, error) {
	content, err := a.fs.ReadFile(path)
	if err != nil {
		return m.Suite{}, fmt.Errorf("read suite file: %w", err)
	}

	var suite m.Suite
	if err := yaml.Unmarshal(content, &suite); err != nil {
		return m.Suite{}, m.NewEngineFault("suite", "%s: %v", path, err)
	}

	if suite.Entry == "" {
		return m.Suite{}, m.NewEngineFault("suite", "%s: missing entry function", path)
	}

	if len(suite.Tests) == 0 {
		return m.Suite{}, m.NewEngineFault("suite", "%s: no test cases", path)
	}

	seen := make(map[string]struct{}, len(suite.Tests))

	for i, test := range suite.Tests {
		if test.Name == "" {
			return m.Suite{}, m.NewEngineFault("suite", "%s: test %d has no name", path, i)
		}

		if _, dup := seen[test.Name]; dup {
			return m.Suite{}, m.NewEngineFault("suite", "%s: duplicate test name %s", path, test.Name)
		}

		seen[test.Name] = struct{}{}
	}

	return suite, nil
}
