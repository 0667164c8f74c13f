package model

// TestReport records the outcome of generating assertions for one test.
type TestReport struct {
	Suite      string   `yaml:"suite"`
	Test       string   `yaml:"test"`
	Assertions []string `yaml:"assertions,omitempty"`
	Killed     []int    `yaml:"killed,omitempty"`
	Touched    int      `yaml:"touched"`
	Candidates int      `yaml:"candidates"`
	Selected   int      `yaml:"selected"`
	Skipped    bool     `yaml:"skipped,omitempty"`
	Reason     string   `yaml:"reason,omitempty"`
	Diff       string   `yaml:"diff,omitempty"`
}

// SuiteReport records the outcome of a generation session for one suite.
type SuiteReport struct {
	Session string       `yaml:"session"`
	Suite   string       `yaml:"suite"`
	Tests   []TestReport `yaml:"tests"`
	Killed  int          `yaml:"killed"`
	Total   int          `yaml:"total"`
	Score   float64      `yaml:"score"`
}
