package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

// runWithArgs calls run with a fresh flag set and the given arguments.
func runWithArgs(t *testing.T, args ...string) int {
	t.Helper()
	oldArgs, oldFlags := os.Args, pflag.CommandLine
	t.Cleanup(func() {
		os.Args, pflag.CommandLine = oldArgs, oldFlags
	})
	os.Args = append([]string{"monotextdemo"}, args...)
	pflag.CommandLine = pflag.NewFlagSet("monotextdemo", pflag.ContinueOnError)
	return run()
}

func TestRunWritesPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.png")
	if code := runWithArgs(t, "--cpu", "-w", "64", "--height", "32", "-o", out); code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}
	if fi, err := os.Stat(out); err != nil || fi.Size() == 0 {
		t.Errorf("output %s missing or empty: %v", out, err)
	}
}

func TestRunReportsErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
	}{
		{"missing scene", []string{"--cpu", "-s", filepath.Join(dir, "none.yaml")}},
		{"unwritable output", []string{"--cpu", "-w", "16", "--height", "16", "-o", filepath.Join(dir, "no", "such", "dir.png")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := runWithArgs(t, tt.args...); code != 1 {
				t.Errorf("run() = %d, want 1", code)
			}
		})
	}
}
