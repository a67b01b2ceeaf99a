package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/keepline/internal/engine"
)

// Scenario defines a gesture scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Duration is the video duration. Begin and finalize steps without an
	// explicit duration use it.
	Duration float64 `yaml:"duration"`

	// Initial seeds the partition through ReplaceSegments before the steps.
	Initial []Span `yaml:"initial,omitempty"`

	// Steps are engine commands applied in order.
	Steps []engine.Command `yaml:"steps"`

	// Expect describes the final state. Nil fields are not checked.
	Expect *Expectation `yaml:"expect,omitempty"`

	// Assertions are additional checks on the final state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Expectation describes the final engine state.
type Expectation struct {
	// Segments is compared positionally; IDs only when given.
	Segments      []Span   `yaml:"segments,omitempty"`
	TotalIncluded *float64 `yaml:"total_included,omitempty"`
	IncludedCount *int     `yaml:"included_count,omitempty"`
	Recording     *bool    `yaml:"recording,omitempty"`
}

// Assertion is a single typed check on the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// At is the lookup time (segment_at).
	At *float64 `yaml:"at,omitempty"`

	// Included is the expected tag at At (segment_at).
	Included *bool `yaml:"included,omitempty"`

	// Absent expects no segment at At (segment_at).
	Absent bool `yaml:"absent,omitempty"`

	// Value is the expected total (total_included).
	Value *float64 `yaml:"value,omitempty"`

	// Count is the expected number of included segments (included_count).
	Count *int `yaml:"count,omitempty"`

	// Hash is the expected partition hash (hash).
	Hash string `yaml:"hash,omitempty"`
}

// Assertion type constants.
const (
	AssertInvariants    = "invariants"
	AssertSegmentAt     = "segment_at"
	AssertTotalIncluded = "total_included"
	AssertIncludedCount = "included_count"
	AssertHash          = "hash"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Duration <= 0 {
		return fmt.Errorf("duration must be positive")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if s.Expect == nil && len(s.Assertions) == 0 {
		return fmt.Errorf("expect or assertions is required")
	}

	for i, step := range s.Steps {
		if err := step.Validate(); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertInvariants:
	case AssertSegmentAt:
		if a.At == nil {
			return fmt.Errorf("assertions[%d]: at is required for segment_at", index)
		}
		if a.Included == nil && !a.Absent {
			return fmt.Errorf("assertions[%d]: included or absent is required for segment_at", index)
		}
	case AssertTotalIncluded:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for total_included", index)
		}
	case AssertIncludedCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for included_count", index)
		}
	case AssertHash:
		if a.Hash == "" {
			return fmt.Errorf("assertions[%d]: hash is required for hash", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
