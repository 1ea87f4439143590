package change

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountString(t *testing.T) {
	assert.Equal(t, "0", Amount(0).String())
	assert.Equal(t, "20", Major(20).String())
	assert.Equal(t, "0.5", Amount(50).String())
	assert.Equal(t, "0.25", Amount(25).String())
	assert.Equal(t, "12.05", Amount(1205).String())
	assert.Equal(t, "-3.1", Amount(-310).String())
}

func TestParseAmount(t *testing.T) {
	a, err := ParseAmount("20")
	require.NoError(t, err)
	assert.Equal(t, Major(20), a)

	a, err = ParseAmount("0.256")
	require.NoError(t, err)
	assert.Equal(t, Amount(26), a)

	_, err = ParseAmount("twenty")
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ParseAmount("NaN")
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ParseAmount("1e30")
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestNewAmount(t *testing.T) {
	a, err := NewAmount(12.5)
	require.NoError(t, err)
	assert.Equal(t, Amount(1250), a)

	for _, f := range []float64{1e30, -1e30, MaxMajor + 1, math.Inf(1), math.NaN()} {
		_, err := NewAmount(f)
		assert.ErrorIs(t, err, ErrInvalidAmount, "value %v", f)
	}
}

func TestInventoryApply(t *testing.T) {
	inv := stockedInventory()
	b := Breakdown{Coins: Counts{Major(5): 1, Major(1): 2}, Banknotes: Counts{Major(50): 1}}

	out, err := inv.Apply(b)
	require.NoError(t, err)
	assert.Equal(t, 9, out.Coins[Major(5)])
	assert.Equal(t, 8, out.Coins[Major(1)])
	assert.Equal(t, 4, out.Banknotes[Major(50)])
	assert.Equal(t, inv.Total()-b.Total(), out.Total())

	// the source inventory is untouched
	assert.Equal(t, stockedInventory(), inv)
}

func TestInventoryApply_Insufficient(t *testing.T) {
	inv := Inventory{Coins: Counts{Major(1): 1}}

	_, err := inv.Apply(Breakdown{Coins: Counts{Major(1): 2}})
	require.ErrorIs(t, err, ErrInsufficientUnits)

	_, err = inv.Apply(Breakdown{Banknotes: Counts{Major(20): 1}})
	require.ErrorIs(t, err, ErrInsufficientUnits)

	_, err = inv.Apply(Breakdown{Coins: Counts{Major(1): -1}})
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestInventoryCredit(t *testing.T) {
	inv := Inventory{}
	out, err := inv.Credit(Breakdown{Coins: Counts{Major(10): 2}, Banknotes: Counts{Major(100): 1}})
	require.NoError(t, err)

	assert.Equal(t, Major(120), out.Total())
	assert.Nil(t, inv.Coins)
}

func TestInventoryCredit_Bounds(t *testing.T) {
	inv := Inventory{Coins: Counts{Major(1): 10}}

	_, err := inv.Credit(Breakdown{Coins: Counts{Major(1): math.MaxInt}})
	require.ErrorIs(t, err, ErrTooManyUnits)

	_, err = inv.Credit(Breakdown{Coins: Counts{Major(1): MaxUnits - 9}})
	require.ErrorIs(t, err, ErrTooManyUnits)

	_, err = inv.Credit(Breakdown{Banknotes: Counts{Major(20): -1}})
	require.ErrorIs(t, err, ErrInvalidAmount)

	out, err := inv.Credit(Breakdown{Coins: Counts{Major(1): MaxUnits - 10}})
	require.NoError(t, err)
	assert.Equal(t, MaxUnits, out.Coins[Major(1)])
	assert.Equal(t, 10, inv.Coins[Major(1)])
}

func TestBreakdownMerge(t *testing.T) {
	a := Single(Denomination{Category: Coin, Value: Major(10)})
	b := Single(Denomination{Category: Banknote, Value: Major(20)}).
		Merge(Single(Denomination{Category: Coin, Value: Major(10)}))

	merged := a.Merge(b)
	assert.Equal(t, Counts{Major(10): 2}, merged.Coins)
	assert.Equal(t, Counts{Major(20): 1}, merged.Banknotes)
	assert.Equal(t, 3, merged.Units())
	assert.Equal(t, Counts{Major(10): 1}, a.Coins)
}

func TestValidateDenominations(t *testing.T) {
	require.NoError(t, ValidateDenominations(testCoins, testBanknotes))
	require.ErrorIs(t, ValidateDenominations([]Amount{0}, nil), ErrInvalidDenomination)
	require.ErrorIs(t, ValidateDenominations([]Amount{Major(1), Major(1)}, nil), ErrInvalidDenomination)
	require.ErrorIs(t, ValidateDenominations([]Amount{Major(20)}, []Amount{Major(20)}), ErrInvalidDenomination)
}

func TestLookup(t *testing.T) {
	d, ok := Lookup(Major(20), testCoins, testBanknotes)
	require.True(t, ok)
	assert.Equal(t, Denomination{Category: Banknote, Value: Major(20)}, d)

	d, ok = Lookup(Major(5), testCoins, testBanknotes)
	require.True(t, ok)
	assert.Equal(t, Coin, d.Category)

	_, ok = Lookup(Major(2), testCoins, testBanknotes)
	assert.False(t, ok)
}
