package main

import (
	"strings"
	"testing"
)

func TestRunEnv_requiresTTY(t *testing.T) {
	// Test stdin is never a TTY.
	root := newRootCmd()
	root.SetArgs([]string{"env"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "TTY") {
		t.Fatalf("expected TTY error, got %v", err)
	}
}

func TestValidateRepo(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"org/repo", false},
		{"allenai/beaker", false},
		{"", true},
		{"norepo", true},
		{"/repo", true},
		{"org/", true},
	}
	for _, tt := range tests {
		err := validateRepo(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateRepo(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}
