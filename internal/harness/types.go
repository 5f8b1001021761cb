package harness

// TraceEvent records one step of a scenario run.
type TraceEvent struct {
	Seq  int64  `json:"seq"`
	Step string `json:"step"`

	// Target is the channel path for channel steps and the signer name for
	// meta steps.
	Target string `json:"target,omitempty"`

	// Rendered lists the titles this step rendered, in order.
	Rendered []string `json:"rendered"`

	// Queue is the suspend queue length after the step.
	Queue int `json:"queue"`
}

// Totals summarizes the end state of a run.
type Totals struct {
	Rendered []string `json:"rendered"`
	Queue    int      `json:"queue"`
	Dropped  int64    `json:"dropped"`
	Alerts   int      `json:"alerts"`
}

// Result is the outcome of a scenario run.
type Result struct {
	Pass   bool         `json:"pass"`
	Trace  []TraceEvent `json:"trace"`
	Errors []string     `json:"errors,omitempty"`
	Final  Totals       `json:"final"`

	// HTML is the container content at the end of the run.
	HTML string `json:"html"`
}

// NewResult creates a passing result with no trace.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Final:  Totals{Rendered: []string{}},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step event.
func (r *Result) AddTrace(event TraceEvent) {
	if event.Rendered == nil {
		event.Rendered = []string{}
	}
	r.Trace = append(r.Trace, event)
	r.Final.Rendered = append(r.Final.Rendered, event.Rendered...)
}
