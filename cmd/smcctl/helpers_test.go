package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// writeConfig writes a configuration with NVRAM under a temp directory and
// returns its path.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	body := fmt.Sprintf(`nvram:
  enabled: true
  path: %q
  sync_writes: false
oem:
  manufacturer: Apple Inc.
  product: Macmini6,2
%s`, filepath.Join(dir, "nvram"), extra)
	path := filepath.Join(dir, "smckit.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// resetFlags restores every command flag variable to its default.
func resetFlags() {
	verbose, quiet, jsonOut, logEnabled = false, false, false, false
	configPath = ""
	getIndex = -1
	setType, setText, setNumber, setCreate = "", false, false, false
	slotsSensors = false
}

// runCLI executes smcctl with args and returns captured stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	return captureOutput(t, func() error {
		rootCmd.SetArgs(args)
		return rootCmd.Execute()
	})
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	return string(<-done), fnErr
}

// assertJSON checks that output is valid JSON and decodes it
func assertJSON(t *testing.T, output string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(output), v); err != nil {
		t.Fatalf("output is not valid JSON: %v\nOutput: %s", err, output)
	}
}
