package validation

import (
	"testing"
)

func TestValidatePriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   string
		wantErr bool
	}{
		{"P0", false},
		{"P1", false},
		{"P2", false},
		{"P3", true},
		{"p1", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()
			err := ValidatePriority(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePriority(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTaskStatus(t *testing.T) {
	t.Parallel()

	if err := ValidateTaskStatus("open"); err != nil {
		t.Errorf("open: %v", err)
	}
	if err := ValidateTaskStatus("done"); err != nil {
		t.Errorf("done: %v", err)
	}
	if err := ValidateTaskStatus("pending"); err == nil {
		t.Error("pending should be rejected")
	}
}

func TestStructTags(t *testing.T) {
	t.Parallel()

	type request struct {
		Theme    string `validate:"required,theme"`
		Priority string `validate:"omitempty,priority"`
		Status   string `validate:"omitempty,task_status"`
	}

	tests := []struct {
		name    string
		req     request
		wantErr bool
	}{
		{name: "valid", req: request{Theme: "dark", Priority: "P0", Status: "done"}},
		{name: "optional fields empty", req: request{Theme: "light"}},
		{name: "bad theme", req: request{Theme: "blue"}, wantErr: true},
		{name: "bad priority", req: request{Theme: "light", Priority: "urgent"}, wantErr: true},
		{name: "bad status", req: request{Theme: "light", Status: "archived"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Struct(tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("Struct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	if got := SanitizeText("  hello\x00 world\n "); got != "hello world" {
		t.Errorf("SanitizeText = %q", got)
	}
	if got := SanitizeText("a\tb\nc"); got != "a\tb\nc" {
		t.Errorf("SanitizeText kept = %q", got)
	}
}
