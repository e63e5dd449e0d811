package model

import "time"

// RepairReport is the persisted form of a repair run, written to the reports
// directory so outcomes can be reviewed later with `mend view`.
type RepairReport struct {
	Entry        string            `yaml:"entry"`
	Formula      string            `yaml:"formula"`
	Policy       string            `yaml:"policy"`
	Scope        string            `yaml:"scope"`
	Phase        string            `yaml:"phase"`
	TargetsTried int               `yaml:"targets_tried"`
	PatchesTried int               `yaml:"patches_tried"`
	BestPassRate float64           `yaml:"best_pass_rate"`
	Operations   []string          `yaml:"operations,omitempty"`
	Verdicts     map[string]string `yaml:"verdicts,omitempty"`
	Diff         string            `yaml:"diff,omitempty"`
	CreatedAt    time.Time         `yaml:"created_at"`
}
