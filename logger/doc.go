// Package logger provides structured logging for refinekit components
// using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields. Engine stages attach
// run and call identifiers through the context so every log line of a
// refinement run can be correlated.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("refine")
//	log.Info("dispatch complete", logger.Fields(logger.FieldChunks, 4))
package logger
