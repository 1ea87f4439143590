package change

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// MinorUnits is the number of minor units (satang) in one major unit (baht).
const MinorUnits = 100

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidDenomination = errors.New("invalid denomination")
	ErrInsufficientUnits   = errors.New("insufficient units in inventory")
	ErrTooManyUnits        = errors.New("too many units of one denomination")
)

// Amount is a sum of money counted in minor units, e.g. 12.50฿ = 1250.
type Amount int64

// Major builds an Amount from a whole number of major units.
func Major(v int64) Amount {
	return Amount(v * MinorUnits)
}

// MaxMajor bounds the magnitude of a major-unit value accepted from input, well
// inside the range of an int64 count of minor units.
const MaxMajor = 1e12

// MaxUnits is the most units of a single denomination an inventory may hold.
const MaxUnits = 1_000_000

// FromFloat normalises a floating point major-unit value to the nearest minor
// unit. f must be within MaxMajor; use NewAmount for untrusted input.
func FromFloat(f float64) Amount {
	return Amount(math.Round(f * MinorUnits))
}

// NewAmount is FromFloat for untrusted input.
func NewAmount(f float64) (Amount, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > MaxMajor {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, f)
	}
	return FromFloat(f), nil
}

// ParseAmount parses a major-unit decimal string such as "20" or "0.50".
func ParseAmount(s string) (Amount, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	a, err := NewAmount(f)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return a, nil
}

// Float returns the amount in major units.
func (a Amount) Float() float64 {
	return float64(a) / MinorUnits
}

// String renders the amount in major units without trailing zeros: "20", "0.5", "12.05".
func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	if v%MinorUnits == 0 {
		return fmt.Sprintf("%s%d", sign, v/MinorUnits)
	}
	frac := v % MinorUnits
	if frac%10 == 0 {
		return fmt.Sprintf("%s%d.%d", sign, v/MinorUnits, frac/10)
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/MinorUnits, frac)
}

type Category string

const (
	Coin     Category = "coin"
	Banknote Category = "banknote"
)

type Denomination struct {
	Category Category
	Value    Amount
}

// Counts maps a denomination value to a number of units.
type Counts map[Amount]int

// Total is the sum of value*count over all entries.
func (c Counts) Total() Amount {
	var sum Amount
	for v, n := range c {
		sum += v * Amount(n)
	}
	return sum
}

// Descending returns the values present in c, largest first.
func (c Counts) Descending() []Amount {
	values := make([]Amount, 0, len(c))
	for v := range c {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] > values[j] })
	return values
}

func (c Counts) clone() Counts {
	if c == nil {
		return nil
	}
	out := make(Counts, len(c))
	for v, n := range c {
		out[v] = n
	}
	return out
}

// Inventory is the money a machine holds, per denomination.
type Inventory struct {
	Coins     Counts
	Banknotes Counts
}

// Breakdown is a set of units to dispense. Entries always have a count of at
// least one; an empty breakdown means no change is due.
type Breakdown struct {
	Coins     Counts
	Banknotes Counts
}

func (b Breakdown) IsEmpty() bool {
	return len(b.Coins) == 0 && len(b.Banknotes) == 0
}

func (b Breakdown) Total() Amount {
	return b.Coins.Total() + b.Banknotes.Total()
}

// Units is the number of coins and banknotes in the breakdown.
func (b Breakdown) Units() int {
	n := 0
	for _, c := range b.Coins {
		n += c
	}
	for _, c := range b.Banknotes {
		n += c
	}
	return n
}

func (b Breakdown) add(d Denomination, n int) Breakdown {
	switch d.Category {
	case Banknote:
		if b.Banknotes == nil {
			b.Banknotes = Counts{}
		}
		b.Banknotes[d.Value] += n
	default:
		if b.Coins == nil {
			b.Coins = Counts{}
		}
		b.Coins[d.Value] += n
	}
	return b
}

// Single is a breakdown holding one unit of d.
func Single(d Denomination) Breakdown {
	return Breakdown{}.add(d, 1)
}

// Merge returns a new breakdown with the units of both b and other.
func (b Breakdown) Merge(other Breakdown) Breakdown {
	out := Breakdown{Coins: b.Coins.clone(), Banknotes: b.Banknotes.clone()}
	for v, n := range other.Coins {
		out = out.add(Denomination{Category: Coin, Value: v}, n)
	}
	for v, n := range other.Banknotes {
		out = out.add(Denomination{Category: Banknote, Value: v}, n)
	}
	return out
}

func (inv Inventory) Clone() Inventory {
	return Inventory{
		Coins:     inv.Coins.clone(),
		Banknotes: inv.Banknotes.clone(),
	}
}

func (inv Inventory) Total() Amount {
	return inv.Coins.Total() + inv.Banknotes.Total()
}

// Available reports how many units of d the inventory holds.
func (inv Inventory) Available(d Denomination) int {
	if d.Category == Banknote {
		return inv.Banknotes[d.Value]
	}
	return inv.Coins[d.Value]
}

// Apply returns a copy of inv with the units of b removed. inv is left as is.
func (inv Inventory) Apply(b Breakdown) (Inventory, error) {
	out := inv.Clone()
	if err := subtract(&out.Coins, b.Coins); err != nil {
		return Inventory{}, fmt.Errorf("coins: %w", err)
	}
	if err := subtract(&out.Banknotes, b.Banknotes); err != nil {
		return Inventory{}, fmt.Errorf("banknotes: %w", err)
	}
	return out, nil
}

// Credit returns a copy of inv with the units of b added. No count may exceed
// MaxUnits; inv is left as is.
func (inv Inventory) Credit(b Breakdown) (Inventory, error) {
	out := inv.Clone()
	if err := add(&out.Coins, b.Coins); err != nil {
		return Inventory{}, fmt.Errorf("coins: %w", err)
	}
	if err := add(&out.Banknotes, b.Banknotes); err != nil {
		return Inventory{}, fmt.Errorf("banknotes: %w", err)
	}
	return out, nil
}

func add(dst *Counts, put Counts) error {
	if *dst == nil && len(put) > 0 {
		*dst = Counts{}
	}
	for v, n := range put {
		if n < 0 {
			return fmt.Errorf("%w: negative count %d for %s", ErrInvalidAmount, n, v)
		}
		have := (*dst)[v]
		if n > MaxUnits-have {
			return fmt.Errorf("%w: %s would hold more than %d", ErrTooManyUnits, v, MaxUnits)
		}
		(*dst)[v] = have + n
	}
	return nil
}

func subtract(dst *Counts, take Counts) error {
	for v, n := range take {
		if n < 0 {
			return fmt.Errorf("%w: negative count %d for %s", ErrInvalidAmount, n, v)
		}
		if n == 0 {
			continue
		}
		have := (*dst)[v]
		if n > have {
			return fmt.Errorf("%w: %s needs %d, have %d", ErrInsufficientUnits, v, n, have)
		}
		(*dst)[v] = have - n
	}
	return nil
}

// ValidateDenominations checks that both sets hold distinct positive values
// and that no value appears as both a coin and a banknote.
func ValidateDenominations(coins, banknotes []Amount) error {
	seen := make(map[Amount]Category, len(coins)+len(banknotes))
	check := func(values []Amount, cat Category) error {
		for _, v := range values {
			if v <= 0 {
				return fmt.Errorf("%w: %s %s is not positive", ErrInvalidDenomination, cat, v)
			}
			if prev, ok := seen[v]; ok {
				return fmt.Errorf("%w: %s %s already listed as %s", ErrInvalidDenomination, cat, v, prev)
			}
			seen[v] = cat
		}
		return nil
	}
	if err := check(banknotes, Banknote); err != nil {
		return err
	}
	return check(coins, Coin)
}

// Lookup finds the denomination with value v in the given sets.
func Lookup(v Amount, coins, banknotes []Amount) (Denomination, bool) {
	for _, b := range banknotes {
		if b == v {
			return Denomination{Category: Banknote, Value: v}, true
		}
	}
	for _, c := range coins {
		if c == v {
			return Denomination{Category: Coin, Value: v}, true
		}
	}
	return Denomination{}, false
}
