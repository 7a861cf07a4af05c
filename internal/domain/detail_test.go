package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetailRoundTrip_Scanner(t *testing.T) {
	detail := &ScannerDetail{
		UniverseSize: 8,
		MarketDate:   "2025-03-03",
		Checks: []ScannerCheck{
			{Symbol: "SPY", Signal: "S1 long breakout"},
			{Symbol: "QQQ"},
			{Symbol: "USO", Error: "no indicator snapshot"},
		},
	}

	data, err := EncodeDetail(detail)
	require.NoError(t, err)

	decoded, err := DecodeDetail(TaskScanner, data)
	require.NoError(t, err)
	assert.Equal(t, detail, decoded)
}

func TestDetailRoundTrip_Monitor(t *testing.T) {
	detail := &MonitorDetail{
		Connected: true,
		Checks: []MonitorCheck{
			{Symbol: "GLD", Action: "refresh indicators (last 2025-02-27)"},
		},
	}

	data, err := EncodeDetail(detail)
	require.NoError(t, err)

	decoded, err := DecodeDetail(TaskMonitor, data)
	require.NoError(t, err)
	assert.Equal(t, detail, decoded)
}

func TestDecodeDetail_EmptyPayload(t *testing.T) {
	decoded, err := DecodeDetail(TaskScanner, nil)
	require.NoError(t, err)
	assert.Equal(t, &ScannerDetail{}, decoded)
}

func TestDecodeDetail_UnknownTaskType(t *testing.T) {
	_, err := DecodeDetail(TaskType("reporter"), []byte("{}"))
	assert.Error(t, err)
}

func TestEncodeDetail_NilIsEmptyDocument(t *testing.T) {
	data, err := EncodeDetail(nil)
	require.NoError(t, err)
	assert.JSONEq(t, "{}", string(data))
}
