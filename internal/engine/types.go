package engine

// Runtime is one (language, version) pair supported by the execution
// backend, taken verbatim from its catalog.
type Runtime struct {
	Language string   `json:"language"`
	Version  string   `json:"version"`
	Aliases  []string `json:"aliases,omitempty"`
}

type ExecuteRequest struct {
	Language  string `json:"language"`
	Code      string `json:"code"`
	Stdin     string `json:"stdin"`
	TimeoutMs int64  `json:"timeoutMs"`
}

// Job is a fully resolved unit of work handed to a Backend: the language
// has been normalized and a concrete version picked.
type Job struct {
	Language string
	Version  string
	Code     string
	Stdin    string
}

// Outcome is the normalized result of one backend run. Pointer fields
// stay nil when the backend did not report the value.
type Outcome struct {
	Stdout   string
	Stderr   string
	Output   string
	ExitCode *int
	Signal   *string
	Time     *float64
	Memory   *int64
}

type ExecuteResult struct {
	Language string   `json:"language"`
	Version  string   `json:"version"`
	Stdout   string   `json:"stdout"`
	Stderr   string   `json:"stderr"`
	Output   string   `json:"output"`
	ExitCode *int     `json:"exitCode"`
	Signal   *string  `json:"signal"`
	Time     *float64 `json:"time"`
	Memory   *int64   `json:"memory"`
}
