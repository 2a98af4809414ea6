package security

import (
	"strings"
	"testing"
)

func TestValidateInstallName(t *testing.T) {
	tests := []struct {
		name        string
		installName string
		wantErr     bool
	}{
		{name: "simple", installName: "ripgrep", wantErr: false},
		{name: "dashes and dots", installName: "install.sh", wantErr: false},
		{name: "plus sign", installName: "g++-wrapper", wantErr: false},
		{name: "empty", installName: "", wantErr: true},
		{name: "dot", installName: ".", wantErr: true},
		{name: "parent", installName: "..", wantErr: true},
		{name: "traversal", installName: "../../etc/passwd", wantErr: true},
		{name: "absolute", installName: "/usr/bin/tool", wantErr: true},
		{name: "backslash", installName: `bin\tool`, wantErr: true},
		{name: "space", installName: "my tool", wantErr: true},
		{name: "null byte", installName: "tool\x00", wantErr: true},
		{name: "too long", installName: strings.Repeat("a", 300), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInstallName(tt.installName)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInstallName(%q) error = %v, wantErr %v", tt.installName, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSearchQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr bool
	}{
		{name: "simple", query: "ripgrep", wantErr: false},
		{name: "with qualifier", query: "bat language:rust", wantErr: false},
		{name: "blank", query: "   ", wantErr: true},
		{name: "newline", query: "rg\nfoo", wantErr: true},
		{name: "too long", query: strings.Repeat("q", 257), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSearchQuery(tt.query)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSearchQuery(%q) error = %v, wantErr %v", tt.query, err, tt.wantErr)
			}
		})
	}
}
