package errors

import (
	"strings"
	"testing"
)

func TestValidateLayoutName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"balanced", "balanced", false},
		{"sequential", "sequential", false},
		{"force", "force", false},

		{"empty", "", true},
		{"unknown", "radial", true},
		{"case sensitive", "Balanced", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLayoutName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLayoutName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidLayout) {
				t.Errorf("ValidateLayoutName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidLayout)
			}
		})
	}
}

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"provider", "provider-Acme", false},
		{"category", "category-Data", false},
		{"technique with spaces", "technique-Data-Red teaming", false},
		{"long name", "technique-" + strings.Repeat("C", 300) + "-" + strings.Repeat("T", 300), false},
		{"duplicate suffix", "technique-Data-Filtering~2", false},

		{"empty", "", true},
		{"no prefix", "Acme", true},
		{"kind without dash", "provider", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateStoreKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"default key", "unified-chart-layout", false},
		{"scoped", "user:123:unified-chart-layout", false},
		{"dotted", "layout.v2", false},

		{"empty", "", true},
		{"slash", "a/b", true},
		{"space", "a b", true},
		{"too long", string(make([]byte, 300)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStoreKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStoreKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple file", "dataset.yaml", false},
		{"nested", "data/techniques.json", false},
		{"absolute", "/tmp/dataset.toml", false},
		{"dots in name", "my..file.json", false},

		{"empty", "", true},
		{"traversal", "../etc/passwd", true},
		{"nested traversal", "data/../../x", true},
		{"null byte", "data\x00.json", true},
		{"newline", "data\n.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{"svg", "png", "pdf", "json", "dot"} {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%q) = %v, want nil", f, err)
		}
	}
	if err := ValidateFormat("gif"); !Is(err, ErrCodeInvalidFormat) {
		t.Errorf("ValidateFormat(gif) = %v, want %s", err, ErrCodeInvalidFormat)
	}
}
