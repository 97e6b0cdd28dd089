package pipeline

import (
	"errors"
	"fmt"
)

type Stage string

const (
	StageStructuring Stage = "structuring"
	StageExtracting  Stage = "extracting"
)

type Kind string

const (
	KindProvider Kind = "provider_failure"
	KindSchema   Kind = "schema_error"
)

// PipelineError tags a stage failure with the stage it happened in and the
// broad failure kind, so callers can report both without unwrapping.
type PipelineError struct {
	Stage Stage
	Kind  Kind
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline stage %s failed (%s): %v", e.Stage, e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// SchemaError reports model output that parsed as JSON but failed schema
// validation, naming the offending field.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema violation in field %q: %s", e.Field, e.Reason)
}

// PersistenceError reports a storage write failure. After the LLM calls have
// succeeded it degrades the result instead of failing the run.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func stageError(stage Stage, err error) *PipelineError {
	kind := KindProvider
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		kind = KindSchema
	}
	return &PipelineError{Stage: stage, Kind: kind, Err: err}
}
