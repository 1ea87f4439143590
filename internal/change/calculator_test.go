package change

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testCoins     = []Amount{Major(1), Major(5), Major(10)}
	testBanknotes = []Amount{Major(20), Major(50), Major(100), Major(500), Major(1000)}
)

func stockedInventory() Inventory {
	return Inventory{
		Coins:     Counts{Major(1): 10, Major(5): 10, Major(10): 10},
		Banknotes: Counts{Major(20): 5, Major(50): 5, Major(100): 5, Major(500): 2, Major(1000): 1},
	}
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name      string
		amount    Amount
		inv       Inventory
		coins     Counts
		banknotes Counts
	}{
		{
			name:      "mixed denominations",
			amount:    Major(77),
			inv:       stockedInventory(),
			coins:     Counts{Major(5): 1, Major(1): 2},
			banknotes: Counts{Major(50): 1, Major(20): 1},
		},
		{
			name:      "largest denomination first",
			amount:    Major(100),
			inv:       stockedInventory(),
			banknotes: Counts{Major(100): 1},
		},
		{
			name:      "large amount",
			amount:    Major(1570),
			inv:       stockedInventory(),
			banknotes: Counts{Major(1000): 1, Major(500): 1, Major(50): 1, Major(20): 1},
		},
		{
			name:   "coins only",
			amount: Major(7),
			inv:    stockedInventory(),
			coins:  Counts{Major(5): 1, Major(1): 2},
		},
		{
			name:      "twenty and ten",
			amount:    Major(30),
			inv:       stockedInventory(),
			coins:     Counts{Major(10): 1},
			banknotes: Counts{Major(20): 1},
		},
		{
			name:   "ten and ones",
			amount: Major(13),
			inv:    stockedInventory(),
			coins:  Counts{Major(10): 1, Major(1): 3},
		},
		{
			name:   "five and ones",
			amount: Major(8),
			inv:    stockedInventory(),
			coins:  Counts{Major(5): 1, Major(1): 3},
		},
		{
			name:   "falls back to smaller units when large ones run out",
			amount: Major(200),
			inv: Inventory{
				Coins:     Counts{Major(10): 10},
				Banknotes: Counts{Major(100): 1, Major(50): 1, Major(20): 1},
			},
			coins:     Counts{Major(10): 3},
			banknotes: Counts{Major(100): 1, Major(50): 1, Major(20): 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Calculate(tt.amount, tt.inv, testCoins, testBanknotes)
			require.NoError(t, err)
			assert.Equal(t, Breakdown{Coins: tt.coins, Banknotes: tt.banknotes}, got)
			assert.Equal(t, tt.amount, got.Total())
		})
	}
}

func TestCalculate_OneSatangResidueIsWrittenOff(t *testing.T) {
	got, err := Calculate(FromFloat(0.01), stockedInventory(), testCoins, testBanknotes)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())

	got, err = Calculate(FromFloat(77.01), stockedInventory(), testCoins, testBanknotes)
	require.NoError(t, err)
	assert.Equal(t, Counts{Major(5): 1, Major(1): 2}, got.Coins)
	assert.Equal(t, Counts{Major(50): 1, Major(20): 1}, got.Banknotes)

	_, err = Calculate(FromFloat(77.02), stockedInventory(), testCoins, testBanknotes)
	require.ErrorIs(t, err, ErrChangeUnavailable)
}

func TestCalculate_ZeroAmount(t *testing.T) {
	got, err := Calculate(0, stockedInventory(), testCoins, testBanknotes)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
	assert.Nil(t, got.Coins)
	assert.Nil(t, got.Banknotes)
}

func TestCalculate_Unavailable(t *testing.T) {
	tests := []struct {
		name   string
		amount Amount
		inv    Inventory
	}{
		{
			name:   "only a ten for seven",
			amount: Major(7),
			inv: Inventory{
				Coins:     Counts{Major(1): 0, Major(5): 0, Major(10): 1},
				Banknotes: Counts{Major(20): 0, Major(50): 0, Major(100): 0, Major(500): 0, Major(1000): 0},
			},
		},
		{
			name:   "out of coins",
			amount: Major(15),
			inv: Inventory{
				Coins:     Counts{Major(1): 0, Major(5): 0, Major(10): 0},
				Banknotes: Counts{Major(20): 5, Major(50): 5, Major(100): 5, Major(500): 2, Major(1000): 1},
			},
		},
		{
			name:   "more than the machine holds",
			amount: stockedInventory().Total() + Major(1),
			inv:    stockedInventory(),
		},
		{
			name:   "empty inventory",
			amount: Major(1),
			inv:    Inventory{},
		},
		{
			name:   "fraction below the smallest coin",
			amount: FromFloat(3.5),
			inv:    stockedInventory(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Calculate(tt.amount, tt.inv, testCoins, testBanknotes)
			require.ErrorIs(t, err, ErrChangeUnavailable)
			assert.True(t, got.IsEmpty())
		})
	}
}

func TestCalculate_NegativeAmount(t *testing.T) {
	_, err := Calculate(-Major(5), stockedInventory(), testCoins, testBanknotes)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestCalculate_DoesNotMutateInventory(t *testing.T) {
	inv := stockedInventory()
	before := inv.Clone()

	_, err := Calculate(Major(1577), inv, testCoins, testBanknotes)
	require.NoError(t, err)
	assert.Equal(t, before, inv)
}

func TestCalculate_Deterministic(t *testing.T) {
	first, err := Calculate(Major(688), stockedInventory(), testCoins, testBanknotes)
	require.NoError(t, err)
	second, err := Calculate(Major(688), stockedInventory(), testCoins, testBanknotes)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCalculate_FloatDriftIsNormalised(t *testing.T) {
	// 0.1 + 0.2 != 0.3 in binary floating point.
	amount := FromFloat((0.1 + 0.2) * 10)
	require.Equal(t, Major(3), amount)

	got, err := Calculate(amount, stockedInventory(), testCoins, testBanknotes)
	require.NoError(t, err)
	assert.Equal(t, Counts{Major(1): 3}, got.Coins)
}

func TestCalculate_FractionalDenominations(t *testing.T) {
	coins := []Amount{FromFloat(0.25), FromFloat(0.5), Major(1)}
	inv := Inventory{Coins: Counts{FromFloat(0.25): 4, FromFloat(0.5): 2, Major(1): 1}}

	got, err := Calculate(FromFloat(1.75), inv, coins, nil)
	require.NoError(t, err)
	assert.Equal(t, Counts{Major(1): 1, FromFloat(0.5): 1, FromFloat(0.25): 1}, got.Coins)
	assert.Nil(t, got.Banknotes)
}

func TestCalculate_GreedyOnNonCanonicalSet(t *testing.T) {
	// {1, 3, 4}: greedy pays 6 as 4+1+1 although 3+3 uses fewer units.
	coins := []Amount{Major(1), Major(3), Major(4)}
	inv := Inventory{Coins: Counts{Major(1): 5, Major(3): 5, Major(4): 5}}

	got, err := Calculate(Major(6), inv, coins, nil)
	require.NoError(t, err)
	assert.Equal(t, Counts{Major(4): 1, Major(1): 2}, got.Coins)

	// Without ones greedy takes the 4 and is stuck, even though 3+3 works.
	inv = Inventory{Coins: Counts{Major(3): 5, Major(4): 5}}
	_, err = Calculate(Major(6), inv, coins, nil)
	require.ErrorIs(t, err, ErrChangeUnavailable)
}

func TestCalculate_ValueCollisionPrefersBanknote(t *testing.T) {
	coins := []Amount{Major(10)}
	banknotes := []Amount{Major(10)}
	inv := Inventory{Coins: Counts{Major(10): 5}, Banknotes: Counts{Major(10): 1}}

	got, err := Calculate(Major(30), inv, coins, banknotes)
	require.NoError(t, err)
	assert.Equal(t, Counts{Major(10): 1}, got.Banknotes)
	assert.Equal(t, Counts{Major(10): 2}, got.Coins)
}

func FuzzCalculate(f *testing.F) {
	f.Add(int64(0), 10, 10, 10, 5, 5)
	f.Add(int64(7700), 10, 10, 10, 5, 5)
	f.Add(int64(157000), 0, 0, 1, 1, 0)
	f.Add(int64(700), 0, 0, 1, 0, 0)

	f.Fuzz(func(t *testing.T, amount int64, ones, fives, tens, twenties, fifties int) {
		if amount < 0 || amount > 1_000_000 {
			t.Skip()
		}
		clamp := func(n int) int {
			if n < 0 {
				return -n % 100
			}
			return n % 100
		}
		inv := Inventory{
			Coins:     Counts{Major(1): clamp(ones), Major(5): clamp(fives), Major(10): clamp(tens)},
			Banknotes: Counts{Major(20): clamp(twenties), Major(50): clamp(fifties)},
		}
		before := inv.Clone()

		got, err := Calculate(Amount(amount), inv, testCoins, testBanknotes)
		require.Equal(t, before, inv)
		if err != nil {
			require.ErrorIs(t, err, ErrChangeUnavailable)
			return
		}

		require.LessOrEqual(t, got.Total(), Amount(amount))
		require.LessOrEqual(t, Amount(amount)-got.Total(), residueTolerance)
		for v, n := range got.Coins {
			require.GreaterOrEqual(t, n, 1)
			require.LessOrEqual(t, n, inv.Coins[v])
		}
		for v, n := range got.Banknotes {
			require.GreaterOrEqual(t, n, 1)
			require.LessOrEqual(t, n, inv.Banknotes[v])
		}
		_, err = inv.Apply(got)
		require.NoError(t, err)
	})
}
