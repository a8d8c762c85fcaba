package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func captureUsage(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := usageOut
	usageOut = &buf
	t.Cleanup(func() { usageOut = old })
	return &buf
}

// TestExecute_Version verifies --version prints a version string.
func TestExecute_Version(t *testing.T) {
	out := captureUsage(t)
	if err := Execute(context.Background(), []string{"--version"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out.String(), "dialup ") {
		t.Errorf("got %q", out.String())
	}
}

// TestExecute_Help verifies --help prints usage and returns.
func TestExecute_Help(t *testing.T) {
	out := captureUsage(t)
	if err := Execute(context.Background(), []string{"--help"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"--listen", "--ssh", "--web", "--auto-login", "Examples:"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("usage missing %q", want)
		}
	}
}

// TestExecute_DryRun verifies --dry-run validates, builds and exits.
func TestExecute_DryRun(t *testing.T) {
	tests := []struct {
		args []string
		mode string
	}{
		{[]string{"--dry-run"}, "*core.LocalMode"},
		{[]string{"-l", "2323", "--web", ":8080", "--dry-run"}, "*core.ServeMode"},
		{[]string{"-f", "-a", "guest", "--dry-run"}, "*core.LocalMode"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out := captureUsage(t)
			if err := Execute(context.Background(), tt.args); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(out.String(), tt.mode) {
				t.Errorf("got %q, want mode %s", out.String(), tt.mode)
			}
		})
	}
}

// TestExecute_DryRunInvalid verifies --dry-run still catches bad configs.
func TestExecute_DryRunInvalid(t *testing.T) {
	tests := []struct {
		args    []string
		wantSub string
	}{
		{[]string{"--host-key", "k", "--dry-run"}, "--host-key"},
		{[]string{"-a", "guest", "-l", ":2323", "--dry-run"}, "--auto-login"},
		{[]string{"-a", "nobody", "--dry-run"}, "no such account"},
		{[]string{"--queue-depth", "0", "--dry-run"}, "--queue-depth"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			captureUsage(t)
			err := Execute(context.Background(), tt.args)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q should mention %q", err.Error(), tt.wantSub)
			}
		})
	}
}

// TestExecute_EnvAndFlags verifies flags win over the environment.
func TestExecute_EnvAndFlags(t *testing.T) {
	t.Setenv("DIALUP_QUEUE_DEPTH", "0")
	captureUsage(t)
	if err := Execute(context.Background(), []string{"--dry-run"}); err == nil {
		t.Error("invalid environment value should fail validation")
	}
	if err := Execute(context.Background(), []string{"--queue-depth", "4", "--dry-run"}); err != nil {
		t.Errorf("flag should override the environment: %v", err)
	}
}

// TestExecute_InvalidFlags verifies unknown flags produce an error.
func TestExecute_InvalidFlags(t *testing.T) {
	captureUsage(t)
	if err := Execute(context.Background(), []string{"--nonexistent-flag"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

// TestExecute_StrayArgument verifies positional arguments are rejected.
func TestExecute_StrayArgument(t *testing.T) {
	captureUsage(t)
	if err := Execute(context.Background(), []string{"localhost"}); err == nil {
		t.Fatal("expected error for positional argument")
	}
}
