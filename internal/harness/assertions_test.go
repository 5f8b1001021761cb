package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func count(n int) *int { return &n }

func sampleResult() *Result {
	r := NewResult()
	r.AddTrace(TraceEvent{Seq: 1, Step: StepChannel, Target: "/channel/moments.js", Queue: 2})
	r.AddTrace(TraceEvent{Seq: 2, Step: StepLoad, Rendered: []string{"a", "b", "c"}, Queue: 1})
	r.Final.Queue = 1
	r.Final.Dropped = 1
	return r
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertQueueLength, Count: count(1)},
		{Type: AssertRenderedCount, Count: count(3)},
		{Type: AssertDroppedCount, Count: count(1)},
		{Type: AssertRenderedContains, Title: "b"},
		{Type: AssertRenderedOrder, Titles: []string{"a", "c"}},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{"queue", Assertion{Type: AssertQueueLength, Count: count(0)}, "Actual: 1"},
		{"rendered", Assertion{Type: AssertRenderedCount, Count: count(2)}, "Expected: 2"},
		{"dropped", Assertion{Type: AssertDroppedCount, Count: count(0)}, "dropped_count"},
		{"contains", Assertion{Type: AssertRenderedContains, Title: "z"}, `title "z" rendered`},
		{"order reversed", Assertion{Type: AssertRenderedOrder, Titles: []string{"c", "a"}}, `"a" not rendered after position 3`},
		{"order missing", Assertion{Type: AssertRenderedOrder, Titles: []string{"a", "x"}}, `"x" never rendered`},
		{"unknown", Assertion{Type: "bogus"}, `unknown assertion type "bogus"`},
		{"nil count", Assertion{Type: AssertQueueLength}, "requires count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleResult(), []Assertion{tt.assertion})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.want)
		})
	}
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := &AssertionError{
		Type:     AssertQueueLength,
		Expected: "0",
		Actual:   "2",
		Trace:    sampleResult().Trace,
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: queue_length")
	assert.Contains(t, msg, "[1] channel /channel/moments.js")
	assert.Contains(t, msg, "rendered=[a b c] queue=1")
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)

	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
