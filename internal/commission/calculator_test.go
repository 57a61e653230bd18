package commission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCalculatorRejectsBadPolicy(t *testing.T) {
	cases := []struct {
		name    string
		rate    string
		minimum int64
	}{
		{name: "unparseable rate", rate: "one percent", minimum: 500},
		{name: "rate above one", rate: "1.5", minimum: 500},
		{name: "negative rate", rate: "-0.01", minimum: 500},
		{name: "negative minimum", rate: "0.01", minimum: -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCalculator(tc.rate, tc.minimum)
			assert.Error(t, err)
		})
	}
}

func TestFee(t *testing.T) {
	calc, err := NewCalculator("0.01", 500)
	require.NoError(t, err)

	cases := []struct {
		name   string
		amount int64
		want   int64
	}{
		{name: "zero amount falls back to minimum", amount: 0, want: 500},
		{name: "negative amount falls back to minimum", amount: -100, want: 500},
		{name: "small order hits minimum floor", amount: 500, want: 500},
		{name: "just below break-even", amount: 49999, want: 500},
		{name: "break-even", amount: 50000, want: 500},
		{name: "proportional beyond minimum", amount: 100000, want: 1000},
		{name: "half paise rounds up", amount: 50050, want: 501},
		{name: "sub-half paise rounds down", amount: 50040, want: 500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, calc.Fee(tc.amount))
		})
	}
}

func TestFeeOnePaisaMinimum(t *testing.T) {
	calc, err := NewCalculator("0.01", 1)
	require.NoError(t, err)

	cases := []struct {
		name   string
		amount int64
		want   int64
	}{
		{name: "1% of 500", amount: 500, want: 5},
		{name: "sub-paisa fee rounds to minimum", amount: 40, want: 1},
		{name: "half paisa rounds up", amount: 50, want: 1},
		{name: "zero amount", amount: 0, want: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, calc.Fee(tc.amount))
		})
	}
}

func TestFeeZeroRate(t *testing.T) {
	calc, err := NewCalculator("0", 0)
	require.NoError(t, err)
	assert.Zero(t, calc.Fee(100000))
}

func TestCalculatorAccessors(t *testing.T) {
	calc, err := NewCalculator("0.02", 300)
	require.NoError(t, err)
	assert.Equal(t, "0.02", calc.Rate().String())
	assert.Equal(t, int64(300), calc.MinimumPaise())
}
