package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeysCommand(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := runCLI(t, "keys", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "#KEY")
	assert.Contains(t, out, "FNum")
	assert.Contains(t, out, `"Apple"`)
	assert.Contains(t, out, "Total: 4 keys")

	out, err = runCLI(t, "keys", "--config", cfg, "--json")
	require.NoError(t, err)
	var resp struct {
		Count int `json:"count"`
		Keys  []struct {
			Name string `json:"name"`
			Hex  string `json:"hex"`
		} `json:"keys"`
	}
	assertJSON(t, out, &resp)
	require.Equal(t, 4, resp.Count)
	assert.Equal(t, "00000004", resp.Keys[0].Hex)
	assert.Equal(t, "HWS1", resp.Keys[3].Name)
}

func TestSetGetCommands_PersistAcrossRuns(t *testing.T) {
	cfg := writeConfig(t, "")

	_, err := runCLI(t, "set", "NATJ", "02", "--config", cfg)
	require.ErrorContains(t, err, "does not exist")

	out, err := runCLI(t, "set", "NATJ", "02", "--create", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "NATJ = 02")

	out, err = runCLI(t, "set", "TC0P", "41.5", "--number", "--create", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "TC0P = 29 80")

	out, err = runCLI(t, "get", "natj", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "NATJ")
	assert.Contains(t, out, "[ui8 ]")

	out, err = runCLI(t, "get", "TC0P", "--config", cfg, "--json")
	require.NoError(t, err)
	var key struct {
		Type    string `json:"type"`
		Decoded string `json:"decoded"`
	}
	assertJSON(t, out, &key)
	assert.Equal(t, "sp78", key.Type)
	assert.Equal(t, "41.5", key.Decoded)

	out, err = runCLI(t, "get", "--index", "0", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "#KEY")

	_, err = runCLI(t, "get", "NOPE", "--config", cfg)
	require.ErrorContains(t, err, "not_found")

	_, err = runCLI(t, "set", "#KEY", "00000001", "--config", cfg)
	require.ErrorContains(t, err, "rejected")
}

func TestImportCommand(t *testing.T) {
	cfg := writeConfig(t, "")
	keys := filepath.Join(t.TempDir(), "keys.yaml")
	require.NoError(t, os.WriteFile(keys, []byte(`
keys:
  FNum: {value: "05"}
  RPlt: {type: "ch8*", text: "j43"}
  MSAL: {value: "01"}
`), 0o600))

	out, err := runCLI(t, "import", keys, "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 keys")

	out, err = runCLI(t, "get", "RPlt", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, `"j43"`)
}

func TestTypesCommand(t *testing.T) {
	out, err := runCLI(t, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "TC0P  sp78")

	out, err = runCLI(t, "types", "--json")
	require.NoError(t, err)
	var table map[string]string
	assertJSON(t, out, &table)
	assert.Equal(t, "fpe2", table["F0Ac"])
}

func TestSlotsCommand(t *testing.T) {
	cfg := writeConfig(t, `sensors:
  fans:
    - {name: cpu, min: 800, max: 1600}
    - {name: sys, min: 600, max: 1200}
  gpus:
    - {name: gpu0, base: 40}
`)
	out, err := runCLI(t, "slots", "--sensors", "--config", cfg)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "fan  ##..............  (2 taken)  FNum=2", lines[0])
	assert.Equal(t, "gpu  #...............  (1 taken)", lines[1])
}

func TestGetCommand_Arguments(t *testing.T) {
	_, err := runCLI(t, "get")
	require.Error(t, err)
	_, err = runCLI(t, "get", "NATJ", "--index", "1")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "smcctl ")
	assert.Contains(t, out, runtime.Version())

	out, err = runCLI(t, "version", "--json")
	require.NoError(t, err)
	var info buildInfo
	assertJSON(t, out, &info)
	assert.NotEmpty(t, info.Version)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}
