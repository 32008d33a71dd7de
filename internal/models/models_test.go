package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDay(t *testing.T) {
	ts := time.Date(2026, 3, 15, 23, 59, 59, 999, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), Day(ts))

	// Non-UTC timestamps convert to UTC before truncation.
	late := time.Date(2026, 3, 15, 22, 0, 0, 0, time.FixedZone("UTC-5", -5*3600))
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), Day(late))
}

func TestTransferEvent_Direction(t *testing.T) {
	in := TransferEvent{ValueSat: 100, USDValue: decimal.NewFromInt(1)}
	out := TransferEvent{ValueSat: -100, USDValue: decimal.NewFromInt(1)}

	assert.True(t, in.Inbound())
	assert.False(t, out.Inbound())
}

func TestTransferEvent_Date(t *testing.T) {
	ev := TransferEvent{Timestamp: time.Date(2026, 1, 5, 18, 30, 0, 0, time.UTC)}
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), ev.Date())
}

func TestAddressFilter_Empty(t *testing.T) {
	assert.True(t, AddressFilter{}.Empty())

	v := 0.5
	assert.False(t, AddressFilter{Profit2BTCMin: &v}.Empty())
}

func TestAddressStats_NilSharpeMarshalsAsNull(t *testing.T) {
	data, err := json.Marshal(AddressStats{Address: "addr1"})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	val, present := decoded["sharpe_ratio"]
	assert.True(t, present)
	assert.Nil(t, val)
}
