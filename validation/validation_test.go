package validation

import (
	"errors"
	"strings"
	"testing"
)

type testConfig struct {
	BaseURL     string  `json:"base_url" validate:"required,url"`
	Model       string  `json:"model" validate:"required"`
	Concurrency int     `json:"concurrency" validate:"gt=0"`
	Overlap     int     `json:"overlap" validate:"gte=0"`
	Temperature float64 `json:"temperature" validate:"gte=0,lte=2"`
}

func validConfig() testConfig {
	return testConfig{
		BaseURL:     "http://localhost:11434",
		Model:       "qwen2.5:1.5b",
		Concurrency: 3,
		Temperature: 0.1,
	}
}

func TestValidateOK(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRequired(t *testing.T) {
	cfg := validConfig()
	cfg.Model = ""
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error for missing model")
	}
	if !strings.Contains(err.Error(), "model is required") {
		t.Errorf("expected 'model is required' in %q", err.Error())
	}
}

func TestValidateURL(t *testing.T) {
	cfg := validConfig()
	cfg.BaseURL = "not a url"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error for invalid URL")
	}
	if !strings.Contains(err.Error(), "base_url") {
		t.Errorf("expected json tag name in %q", err.Error())
	}
}

func TestValidateBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Concurrency = 0
	cfg.Temperature = 3.0
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error for out-of-bounds values")
	}

	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *validation.Error, got %T", err)
	}
	if len(verr.Fields) != 2 {
		t.Errorf("expected 2 field errors, got %d: %v", len(verr.Fields), verr.Fields)
	}
}

func TestValidateMultipleFields(t *testing.T) {
	err := Validate(testConfig{})
	if err == nil {
		t.Fatal("expected errors for zero config")
	}
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *validation.Error, got %T", err)
	}
	fields := make(map[string]bool)
	for _, f := range verr.Fields {
		fields[f.Field] = true
	}
	for _, want := range []string{"base_url", "model", "concurrency"} {
		if !fields[want] {
			t.Errorf("expected field error for %q, got %v", want, verr.Fields)
		}
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct{ in, want string }{
		{"BaseURL", "base_u_r_l"},
		{"Model", "model"},
		{"MaxChunkSegments", "max_chunk_segments"},
	}
	for _, tt := range tests {
		if got := toSnakeCase(tt.in); got != tt.want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
