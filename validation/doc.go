// Package validation provides struct tag validation for refinekit
// configuration types, using the validator library.
//
// # Usage
//
//	type Config struct {
//	    BaseURL string `json:"base_url" validate:"required,url"`
//	    Model   string `json:"model" validate:"required"`
//	}
//	err := validation.Validate(cfg)
//
// Validation failures are returned as *validation.Error with a per-field
// breakdown, using json tag names in messages.
package validation
