package tui

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotshift/slotshift/internal/config"
	"github.com/slotshift/slotshift/internal/domain"
)

func TestNewOutputSelectsFormat(t *testing.T) {
	var buf bytes.Buffer

	assert.IsType(t, &JSONOutput{}, NewOutput(&buf, config.OutputJSON))
	assert.IsType(t, &TTYOutput{}, NewOutput(&buf, config.OutputText))
	assert.IsType(t, &TTYOutput{}, NewOutput(&buf, ""), "unknown formats fall back to text")
}

func TestTTYOutputMessages(t *testing.T) {
	var buf bytes.Buffer
	out := NewTTYOutput(&buf)

	out.Success("swap completed")
	out.Warning("no validation URL configured")
	out.Error(errors.New("swap conflict"))
	out.Info("3 targets")

	text := buf.String()
	assert.Contains(t, text, "swap completed")
	assert.Contains(t, text, "no validation URL configured")
	assert.Contains(t, text, "swap conflict")
	assert.Contains(t, text, "3 targets")
}

func TestJSONOutputSuppressesChatter(t *testing.T) {
	var buf bytes.Buffer
	out := NewJSONOutput(&buf)

	out.Success("ignored")
	out.Warning("ignored")
	out.Info("ignored")

	assert.Empty(t, buf.String())
}

func TestJSONOutputEncodesReport(t *testing.T) {
	var buf bytes.Buffer
	out := NewJSONOutput(&buf)

	report := domain.Report{
		RunID: "run-1",
		Total: 1,
		Succeeded: []domain.Outcome{
			{Target: "rg-prod/orders-api/staging", Success: true, Message: "completed"},
		},
	}
	require.NoError(t, out.JSON(report))

	var decoded domain.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	require.Len(t, decoded.Succeeded, 1)
	assert.Equal(t, "completed", decoded.Succeeded[0].Message)
}

func TestJSONOutputError(t *testing.T) {
	var buf bytes.Buffer
	out := NewJSONOutput(&buf)

	out.Error(errors.New("run aborted by user"))

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run aborted by user", decoded["error"])
}
