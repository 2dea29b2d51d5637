package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"netqoe/internal/core/domain"
	"netqoe/internal/core/services"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execRoot runs qoectl with args and returns stdout, stderr and the error.
func execRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func TestCalculate_TableOutput(t *testing.T) {
	out, _, err := execRoot(t, "calculate")
	require.NoError(t, err)

	for _, want := range []string{"QoE score:", "74.1", "Fair", "ran", "Download", "No recommendations."} {
		assert.Contains(t, out, want)
	}
}

func TestCalculate_JSONMatchesEngine(t *testing.T) {
	out, _, err := execRoot(t, "calculate", "--sinr", "5", "--prb-utilization", "90", "-o", "json")
	require.NoError(t, err)

	var got domain.QoEResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	want := services.NewQoEEngine().Compute(domain.Parameters{
		domain.ParamSINR:           5,
		domain.ParamPRBUtilization: 90,
	})
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("calculate -o json mismatch (-want +got):\n%s", diff)
	}
	assert.NotEmpty(t, got.Recommendations)
}

func TestCalculate_OnlyChangedFlagsAreSubmitted(t *testing.T) {
	cmd := CalculateCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--bler", "12"}))

	params, err := collectParameters(cmd)
	require.NoError(t, err)
	assert.Equal(t, domain.Parameters{domain.ParamBLER: 12}, params)
}

func TestCalculate_FileWithFlagOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cell.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sinr": 3, "mpls_utilization": "92", "site": "A12"}`), 0o600))

	cmd := CalculateCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-f", path, "--sinr", "20"}))

	params, err := collectParameters(cmd)
	require.NoError(t, err)
	assert.Equal(t, domain.Parameters{
		domain.ParamSINR:            20,
		domain.ParamMPLSUtilization: 92,
	}, params)
}

func TestCalculate_Errors(t *testing.T) {
	_, _, err := execRoot(t, "calculate", "-o", "yaml")
	assert.ErrorContains(t, err, "unsupported output format")

	_, _, err = execRoot(t, "calculate", "--sinr", "loud")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sinr": "loud"}`), 0o600))
	_, _, err = execRoot(t, "calculate", "-f", path)
	assert.ErrorContains(t, err, "must be numeric")

	_, _, err = execRoot(t, "calculate", "-f", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to read parameter file")
}

func TestParameters_Table(t *testing.T) {
	out, _, err := execRoot(t, "parameters")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Greater(t, len(lines), 10)
	assert.True(t, strings.HasPrefix(lines[0], "PARAMETER"))
	for _, spec := range services.ParameterTable() {
		assert.Contains(t, out, string(spec.Name))
	}
	assert.Contains(t, out, "0.40")
}

func TestParameters_JSON(t *testing.T) {
	out, _, err := execRoot(t, "parameters", "-o", "json")
	require.NoError(t, err)

	var got services.ParameterCatalog
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	if diff := cmp.Diff(services.Catalog(), got); diff != "" {
		t.Errorf("parameters -o json mismatch (-want +got):\n%s", diff)
	}
}

func TestImpact_TableOutput(t *testing.T) {
	out, _, err := execRoot(t, "impact")
	require.NoError(t, err)

	for _, want := range []string{"QoE score:", "53.0", "Poor", "Packet Core", "Application", "75.0"} {
		assert.Contains(t, out, want)
	}
}

func TestImpact_JSONMatchesEstimator(t *testing.T) {
	out, _, err := execRoot(t, "impact", "--tx-power", "50", "--qci", "QCI 5", "--congestion", "-o", "json")
	require.NoError(t, err)

	var got domain.WhatIfResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	want, err := services.EstimateWhatIf(domain.WhatIfInput{
		TxPower:        50,
		LinkCapacity:   1000,
		MMECapacity:    50000,
		CoreCongestion: true,
		QCIClass:       "QCI 5",
	})
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("impact -o json mismatch (-want +got):\n%s", diff)
	}
}

func TestImpact_UnknownQCI(t *testing.T) {
	_, _, err := execRoot(t, "impact", "--qci", "QCI 4")
	assert.ErrorIs(t, err, domain.ErrUnknownQCIClass)
}
