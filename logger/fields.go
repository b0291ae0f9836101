package logger

import (
	"time"
)

// Field keys shared across refinekit log lines, so a run's output can be
// filtered and correlated consistently.
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldCallID    = "call_id"
	FieldProvider  = "provider"
	FieldModel     = "model"
	FieldChunk     = "chunk"
	FieldChunks    = "chunks"
	FieldBatch     = "batch"
	FieldSegments  = "segments"
	FieldSentences = "sentences"
	FieldFragments = "fragments"
	FieldWatermark = "watermark"
	FieldOperation = "operation"
	FieldStatus    = "status"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
// Non-string keys and a dangling last value are dropped.
//
//	logger.Info("done", logger.Fields(logger.FieldChunks, 4))
func Fields(kvs ...interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		key, ok := kvs[i].(string)
		if !ok {
			continue
		}
		fields[key] = kvs[i+1]
	}
	return fields
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(op string, err error) map[string]interface{} {
	return Fields(FieldOperation, op, FieldError, err.Error())
}

// DurationFields creates fields for a timed operation.
func DurationFields(op string, d time.Duration) map[string]interface{} {
	return Fields(FieldOperation, op, FieldDuration, d.Milliseconds())
}

// MergeWithError adds an error field to an existing map, allocating one
// when fields is nil.
func MergeWithError(fields map[string]interface{}, err error) map[string]interface{} {
	if fields == nil {
		return Fields(FieldError, err.Error())
	}
	fields[FieldError] = err.Error()
	return fields
}
