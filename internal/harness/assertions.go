package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError describes a failed assertion with the trace for context.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s rendered=%v queue=%d\n",
				event.Seq, event.Step, event.Target, event.Rendered, event.Queue)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns one
// message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %s", i, err.Error()))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertQueueLength:
		return assertCount(result, a, result.Final.Queue)
	case AssertRenderedCount:
		return assertCount(result, a, len(result.Final.Rendered))
	case AssertDroppedCount:
		return assertCount(result, a, int(result.Final.Dropped))
	case AssertRenderedContains:
		return assertRenderedContains(result, a)
	case AssertRenderedOrder:
		return assertRenderedOrder(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertCount(result *Result, a Assertion, actual int) error {
	if a.Count == nil {
		return fmt.Errorf("%s assertion requires count", a.Type)
	}
	if actual != *a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d", *a.Count),
			Actual:   fmt.Sprintf("%d", actual),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertRenderedContains(result *Result, a Assertion) error {
	if slices.Contains(result.Final.Rendered, a.Title) {
		return nil
	}
	return &AssertionError{
		Type:     AssertRenderedContains,
		Expected: fmt.Sprintf("title %q rendered", a.Title),
		Actual:   fmt.Sprintf("rendered %v", result.Final.Rendered),
		Trace:    result.Trace,
	}
}

// assertRenderedOrder checks that titles appear in the given relative order.
// Other titles may be interleaved.
func assertRenderedOrder(result *Result, a Assertion) error {
	rendered := result.Final.Rendered
	pos := 0
	for _, want := range a.Titles {
		idx := slices.Index(rendered[pos:], want)
		if idx < 0 {
			actual := fmt.Sprintf("%q not rendered after position %d in %v", want, pos, rendered)
			if !slices.Contains(rendered, want) {
				actual = fmt.Sprintf("%q never rendered in %v", want, rendered)
			}
			return &AssertionError{
				Type:     AssertRenderedOrder,
				Expected: fmt.Sprintf("titles in order: %v", a.Titles),
				Actual:   actual,
				Trace:    result.Trace,
			}
		}
		pos += idx + 1
	}
	return nil
}
