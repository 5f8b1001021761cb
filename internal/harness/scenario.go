package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted page session.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Signers lists the seed names of every identity the scenario uses.
	Signers []string `yaml:"signers"`

	// Known lists signers whose metas are registered before the first step.
	Known []string `yaml:"known,omitempty"`

	// Ready starts the session with the framework already loaded.
	Ready bool `yaml:"ready,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one inbound event. Exactly one field is set.
type Step struct {
	Channel *ChannelStep `yaml:"channel,omitempty"`

	// Meta delivers the named signer's meta.
	Meta string `yaml:"meta,omitempty"`

	// Load signals that the framework finished loading.
	Load bool `yaml:"load,omitempty"`
}

// ChannelStep delivers a channel event.
type ChannelStep struct {
	// Name is the channel resource name; defaults to "moments".
	Name  string        `yaml:"name,omitempty"`
	Items []ChannelItem `yaml:"items"`
}

// ChannelItem describes one message in a channel event.
type ChannelItem struct {
	From   string `yaml:"from,omitempty"`
	Text   string `yaml:"text,omitempty"`
	Title  string `yaml:"title,omitempty"`
	Sender string `yaml:"sender,omitempty"`
	Tamper bool   `yaml:"tamper,omitempty"`
	Null   bool   `yaml:"null,omitempty"`
}

// Assertion checks the final outcome of a scenario.
type Assertion struct {
	Type string `yaml:"type"`

	// Count is used by queue_length, rendered_count and dropped_count.
	Count *int `yaml:"count,omitempty"`

	// Title is used by rendered_contains.
	Title string `yaml:"title,omitempty"`

	// Titles is used by rendered_order.
	Titles []string `yaml:"titles,omitempty"`
}

// Assertion type constants.
const (
	AssertQueueLength      = "queue_length"
	AssertRenderedCount    = "rendered_count"
	AssertDroppedCount     = "dropped_count"
	AssertRenderedContains = "rendered_contains"
	AssertRenderedOrder    = "rendered_order"
)

// Step kinds recorded in the trace.
const (
	StepChannel = "channel"
	StepMeta    = "meta"
	StepLoad    = "load"
)

const defaultChannelName = "moments"

// LoadScenario reads and validates a scenario file. Unknown YAML fields are
// rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	signers := make(map[string]bool, len(s.Signers))
	for _, name := range s.Signers {
		if signers[name] {
			return fmt.Errorf("signer %q listed twice", name)
		}
		signers[name] = true
	}
	for _, name := range s.Known {
		if !signers[name] {
			return fmt.Errorf("known: unknown signer %q", name)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step, signers); err != nil {
			return err
		}
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step Step, signers map[string]bool) error {
	set := 0
	if step.Channel != nil {
		set++
	}
	if step.Meta != "" {
		set++
	}
	if step.Load {
		set++
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of channel, meta, load is required", index)
	}

	if step.Meta != "" && !signers[step.Meta] {
		return fmt.Errorf("steps[%d]: meta for unknown signer %q", index, step.Meta)
	}
	if step.Channel == nil {
		return nil
	}
	for j, item := range step.Channel.Items {
		switch {
		case item.Null:
		case item.Sender != "":
		case item.From == "":
			return fmt.Errorf("steps[%d].items[%d]: from, sender or null is required", index, j)
		case !signers[item.From]:
			return fmt.Errorf("steps[%d].items[%d]: unknown signer %q", index, j, item.From)
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertQueueLength, AssertRenderedCount, AssertDroppedCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for %s", index, a.Type)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertRenderedContains:
		if a.Title == "" {
			return fmt.Errorf("assertions[%d]: title is required for rendered_contains", index)
		}
	case AssertRenderedOrder:
		if len(a.Titles) == 0 {
			return fmt.Errorf("assertions[%d]: titles list is required for rendered_order", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
