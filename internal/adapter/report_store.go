package adapter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	m "mend.dev/pkg/mend/internal/model"
)

const reportFileName = "mend-report.yaml"

// ReportStore persists repair reports to the reports directory.
type ReportStore interface {
	SaveReport(dir m.Path, report m.RepairReport) error
	LoadReport(dir m.Path) (m.RepairReport, error)
}

// YAMLReportStore stores the latest report as YAML.
type YAMLReportStore struct {
	fs SourceFSAdapter
}

// NewYAMLReportStore constructs a YAMLReportStore.
func NewYAMLReportStore(fs SourceFSAdapter) *YAMLReportStore {
	return &YAMLReportStore{fs: fs}
}

// SaveReport writes the report into dir, creating it when missing.
func (s *YAMLReportStore) SaveReport(dir m.Path, report m.RepairReport) error {
	if err := s.fs.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create reports dir: %w", err)
	}

	content, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	path := s.fs.JoinPath(string(dir), reportFileName)
	if err := s.fs.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// LoadReport reads the latest report from dir.
func (s *YAMLReportStore) LoadReport(dir m.Path) (m.RepairReport, error) {
	path := s.fs.JoinPath(string(dir), reportFileName)

	content, err := s.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m.RepairReport{}, fmt.Errorf("no report found in %s", dir)
		}

		return m.RepairReport{}, fmt.Errorf("read report: %w", err)
	}

	var report m.RepairReport
	if err := yaml.Unmarshal(content, &report); err != nil {
		return m.RepairReport{}, fmt.Errorf("decode report: %w", err)
	}

	return report, nil
}
