// Package stage defines the fixed five-phase extraction sequence and the
// behavioral contract (persona) each phase's reasoning pass must follow.
package stage

import (
	"encoding/json"
	"fmt"
)

// Stage is one phase of the fixed extraction sequence. Stages are ordered;
// Sequence returns the traversal order.
type Stage string

const (
	// StageSearch locates candidate source material for the subject
	StageSearch Stage = "search"

	// StageSelect narrows the candidates to one authoritative document
	StageSelect Stage = "select"

	// StageRead extracts free-text security findings from the document
	StageRead Stage = "read"

	// StageProcess restructures the findings into the fixed tabular schema
	StageProcess Stage = "process"

	// StageValidate checks and re-emits the final table
	StageValidate Stage = "validate"
)

// Sequence returns the fixed stage traversal order.
func Sequence() []Stage {
	return []Stage{StageSearch, StageSelect, StageRead, StageProcess, StageValidate}
}

// String returns the string representation of the Stage
func (s Stage) String() string {
	return string(s)
}

// IsValid checks if the stage is a valid value
func (s Stage) IsValid() bool {
	switch s {
	case StageSearch, StageSelect, StageRead, StageProcess, StageValidate:
		return true
	default:
		return false
	}
}

// MarshalJSON implements json.Marshaler
func (s Stage) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler
func (s *Stage) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	stage := Stage(str)
	if !stage.IsValid() {
		return fmt.Errorf("invalid stage: %s", str)
	}

	*s = stage
	return nil
}
