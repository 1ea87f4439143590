// Package change computes and describes the change a vending machine hands back.
//
// Calculate uses a greedy largest-first strategy. It is optimal for canonical
// denomination systems such as 1, 5, 10, 20, 50, 100, 500, 1000 but can miss a
// representable amount, or use more units than necessary, on non-canonical sets.
package change

import (
	"errors"
	"fmt"
	"sort"
)

// ErrChangeUnavailable means the amount cannot be paid out exactly from the inventory.
var ErrChangeUnavailable = errors.New("exact change unavailable")

// residueTolerance is the shortfall written off as rounding: one satang.
const residueTolerance Amount = 1

// Calculate breaks amount into units available in inv, largest denomination first.
// inv is only read. A zero amount yields an empty breakdown and no error, and a
// shortfall of at most residueTolerance still counts as paid.
func Calculate(amount Amount, inv Inventory, coins, banknotes []Amount) (Breakdown, error) {
	if amount < 0 {
		return Breakdown{}, fmt.Errorf("%w: negative amount %s", ErrInvalidAmount, amount)
	}

	remaining := amount
	var result Breakdown

	for _, d := range descending(coins, banknotes) {
		if d.Value <= 0 {
			continue
		}
		available := inv.Available(d)
		if available <= 0 {
			continue
		}

		use := min(int(remaining/d.Value), available)
		if use > 0 {
			result = result.add(d, use)
			remaining -= d.Value * Amount(use)
		}
	}

	if remaining > residueTolerance {
		return Breakdown{}, fmt.Errorf("%w: %s short of %s", ErrChangeUnavailable, remaining, amount)
	}
	return result, nil
}

// descending merges both sets into one list ordered by value. The sort is
// stable with banknotes listed first, so category never outranks value.
func descending(coins, banknotes []Amount) []Denomination {
	all := make([]Denomination, 0, len(coins)+len(banknotes))
	for _, v := range banknotes {
		all = append(all, Denomination{Category: Banknote, Value: v})
	}
	for _, v := range coins {
		all = append(all, Denomination{Category: Coin, Value: v})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Value > all[j].Value })
	return all
}
