package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/symcalc"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

const cube = `{"type":"pow","base":{"type":"sym","name":"x"},"exp":{"type":"num","value":3}}`

func TestDiff_JSONOutput(t *testing.T) {
	out, err := execute(t, "", "diff", "--var", "x", "-o", "json", cube)
	require.NoError(t, err)

	var resp symcalc.ToolResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "3*x^2", resp.String)
	assert.NotEmpty(t, resp.Steps)
	assert.Nil(t, resp.Result)
}

func TestIntegrate_DefiniteFromYAMLStdin(t *testing.T) {
	in := "type: sym\nname: x\n"
	out, err := execute(t, in, "integrate", "--lower", "0", "--upper", "1", "--no-steps", "-")
	require.NoError(t, err)

	var resp symcalc.ToolResponse
	require.NoError(t, yaml.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "1/2", resp.String)
	assert.Empty(t, resp.Steps)
}

func TestLimit_AtInfinityFromFile(t *testing.T) {
	// (3x^2 + 1) / (x^2 - 5)
	body := `
type: mul
factors:
  - type: add
    terms:
      - {type: mul, factors: [{type: num, value: 3}, {type: pow, base: {type: sym, name: x}, exp: {type: num, value: 2}}]}
      - {type: num, value: 1}
  - type: pow
    base:
      type: add
      terms:
        - {type: pow, base: {type: sym, name: x}, exp: {type: num, value: 2}}
        - {type: num, value: -5}
    exp: {type: num, value: -1}
`
	path := filepath.Join(t.TempDir(), "rational.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	out, err := execute(t, "", "limit", "--at", "Infinity", "-o", "json", "@"+path)
	require.NoError(t, err)
	var resp symcalc.ToolResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "3", resp.String)
}

func TestErrors(t *testing.T) {
	_, err := execute(t, "", "diff", "not: [valid")
	assert.Error(t, err)

	_, err = execute(t, "", "diff", "-o", "xml", cube)
	assert.ErrorContains(t, err, "unknown output format")

	_, err = execute(t, "", "integrate", "--lower", "0", cube)
	assert.Error(t, err, "bounds must be given together")
}

func TestDiff_OrderAboveLimitIsLeftUnevaluated(t *testing.T) {
	out, err := execute(t, "", "diff", "--order", "9", "-o", "json", cube)
	require.NoError(t, err)
	var resp symcalc.ToolResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.NotEmpty(t, resp.Failures)
	assert.Contains(t, resp.String, "x^3")
}
