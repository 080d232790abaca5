package stage

import "fmt"

// Kind classifies a per-table failure so the coordinator can decide
// whether the run continues with other tables or exits non-zero.
type Kind int

const (
	// KindExtraction covers missing/unreadable page files, a malformed
	// count file, or malformed JSON. Fatal for the table.
	KindExtraction Kind = iota
	// KindInference covers a TypeChooser conflict the caller's strictness
	// level refuses to resolve. Fatal for the table.
	KindInference
	// KindExecution covers a SQL failure during DDL, load, index, or
	// publish. Fatal for the table; the transaction rolls back.
	KindExecution
)

func (k Kind) String() string {
	switch k {
	case KindExtraction:
		return "extraction"
	case KindInference:
		return "inference"
	case KindExecution:
		return "execution"
	default:
		return "unknown"
	}
}

// StageError reports a per-table failure with enough context for the
// coordinator to log and skip the table without losing the run.
type StageError struct {
	Table string
	Phase string
	Kind  Kind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage: table %s: %s (%s): %v", e.Table, e.Phase, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// newStageError builds a StageError, wrapping err with table/phase context.
func newStageError(table, phase string, kind Kind, err error) *StageError {
	return &StageError{Table: table, Phase: phase, Kind: kind, Err: err}
}
