package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCustody = "0x0000000000000000000000000000000000000abc"
	testSender  = "0x0000000000000000000000000000000000000def"
	testToken   = "0x00000000000000000000000000000000000000aa"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf("storePath: %s\nsyncWrites: false\ncustody: %q\nlogLevel: error\n", filepath.Join(dir, "db"), testCustody)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func runCLI(t *testing.T, cfgPath string, args ...string) (map[string]any, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(append([]string{"--config", cfgPath}, args...), &stdout, &stderr, prometheus.NewRegistry())
	if err != nil {
		return nil, err
	}
	var out map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	return out, nil
}

func TestRunLifecycle(t *testing.T) {
	cfgPath := writeConfig(t)

	out, err := runCLI(t, cfgPath, "init", "--asset1", "native:uatom", "--asset2", "token:"+testToken)
	require.NoError(t, err)
	assert.Equal(t, "instantiate", out["operation"])

	out, err = runCLI(t, cfgPath, "provide", "--sender", testSender, "--amount1", "100", "--amount2", "300")
	require.NoError(t, err)
	assert.Equal(t, "provide_liquidity", out["operation"])

	out, err = runCLI(t, cfgPath, "quote", "--input", "token1", "--amount", "50")
	require.NoError(t, err)
	assert.Equal(t, "token1", out["input"])
	assert.Equal(t, "100", out["outputAmount"])

	out, err = runCLI(t, cfgPath, "swap", "--sender", testSender, "--input", "token1", "--amount", "50", "--min-output", "100")
	require.NoError(t, err)
	assert.Equal(t, "100", out["outputAmount"])

	out, err = runCLI(t, cfgPath, "show")
	require.NoError(t, err)
	token1 := out["token1"].(map[string]any)
	token2 := out["token2"].(map[string]any)
	assert.Equal(t, "150", token1["amount"])
	assert.Equal(t, "200", token2["amount"])
}

func TestRunErrors(t *testing.T) {
	cfgPath := writeConfig(t)

	testCases := []struct {
		name string
		args []string
	}{
		{name: "no command", args: nil},
		{name: "unknown command", args: []string{"burn"}},
		{name: "bad asset", args: []string{"init", "--asset1", "coin:x", "--asset2", "native:b"}},
		{name: "bad sender", args: []string{"provide", "--sender", "nope", "--amount1", "1", "--amount2", "1"}},
		{name: "bad amount", args: []string{"swap", "--sender", testSender, "--amount", "-5"}},
		{name: "missing amount", args: []string{"quote", "--input", "token2"}},
		{name: "bad selection", args: []string{"quote", "--input", "token3", "--amount", "1"}},
		{name: "not initialized", args: []string{"show"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runCLI(t, cfgPath, tc.args...)
			assert.Error(t, err)
		})
	}
}

func TestRunMissingConfig(t *testing.T) {
	_, err := runCLI(t, filepath.Join(t.TempDir(), "absent.yaml"), "show")
	assert.Error(t, err)
}
