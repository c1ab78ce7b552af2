package ta

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decs(vals ...float64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vals))
	for i, v := range vals {
		out[i] = decimal.NewFromFloat(v)
	}
	return out
}

func TestSMA(t *testing.T) {
	got, err := SMA(decs(1, 2, 3, 100), 3)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(2)), got.String())

	_, err = SMA(decs(1), 2)
	assert.ErrorIs(t, err, ErrNotEnoughData)
	_, err = SMA(decs(1), 0)
	assert.ErrorIs(t, err, ErrBadPeriod)
}

func TestEMASeriesAlignedAndSeeded(t *testing.T) {
	series, err := EMASeries(decs(2, 4, 6, 8, 10), 3)
	require.NoError(t, err)
	require.Len(t, series, 5)

	// seed = (2+4+6)/3 = 4, k = 0.5
	assert.True(t, series[0].Equal(decimal.NewFromInt(4)))
	assert.True(t, series[1].Equal(decimal.NewFromInt(4)))
	assert.True(t, series[2].Equal(decimal.NewFromInt(4)))
	// 4 + (8-4)*0.5 = 6; 6 + (10-6)*0.5 = 8
	assert.True(t, series[3].Equal(decimal.NewFromInt(6)), series[3].String())
	assert.True(t, series[4].Equal(decimal.NewFromInt(8)), series[4].String())
}

func TestEMASeriesConstantInput(t *testing.T) {
	series, err := EMASeries(decs(5, 5, 5, 5, 5, 5, 5), 4)
	require.NoError(t, err)
	for _, v := range series {
		assert.True(t, v.Equal(decimal.NewFromInt(5)))
	}
}

func TestEMASeriesExactlyPeriodValues(t *testing.T) {
	series, err := EMASeries(decs(1, 2, 3), 3)
	require.NoError(t, err)
	assert.Len(t, series, 3)
	assert.True(t, series[2].Equal(decimal.NewFromInt(2)))
}

func TestEMASeriesErrors(t *testing.T) {
	_, err := EMASeries(decs(1, 2), 3)
	assert.ErrorIs(t, err, ErrNotEnoughData)
	_, err = EMASeries(decs(1, 2), -1)
	assert.ErrorIs(t, err, ErrBadPeriod)
}
