package charge

import (
	"sort"

	"github.com/shopspring/decimal"

	ierr "github.com/vidinfra/metering/internal/errors"
	"github.com/vidinfra/metering/internal/types"
)

// Well-known pricing property keys. Properties are kept as a loose mapping
// so filter overrides can replace them key-by-key.
const (
	PropertyAmount                  = "amount"
	PropertyMinPrice                = "min_price"
	PropertyMaxPrice                = "max_price"
	PropertyGraduatedRanges         = "graduated_ranges"
	PropertyVolumeRanges            = "volume_ranges"
	PropertyPackageSize             = "package_size"
	PropertyFreeUnits               = "free_units"
	PropertyRate                    = "rate"
	PropertyBaseAmount              = "base_amount"
	PropertyFixedAmount             = "fixed_amount"
	PropertyFreeUnitsPerEvents      = "free_units_per_events"
	PropertyPerTransactionMinAmount = "per_transaction_min_amount"
	PropertyPerTransactionMaxAmount = "per_transaction_max_amount"
	PropertyGraduatedPctRanges      = "graduated_percentage_ranges"
	PropertyPriceField              = "price_field"
	PropertyQuantityField           = "quantity_field"
	PropertyCustomAmount            = "custom_amount"
)

// LookupDecimal reads a pricing property as a decimal. The second return
// reports presence; a present but non-numeric value is a configuration
// error, never a silent zero.
func LookupDecimal(props map[string]interface{}, key string) (decimal.Decimal, bool, error) {
	raw, ok := props[key]
	if !ok || raw == nil {
		return decimal.Zero, false, nil
	}
	d, ok := types.DecimalFromAny(raw)
	if !ok {
		return decimal.Zero, false, ierr.NewErrorf("property %q is not a number", key).
			WithHint("Charge pricing properties are invalid").
			Mark(ierr.ErrConfiguration)
	}
	return d, true, nil
}

// GetDecimal reads a pricing property as a decimal, falling back to the
// given default when the property is absent.
func GetDecimal(props map[string]interface{}, key string, fallback decimal.Decimal) (decimal.Decimal, error) {
	d, ok, err := LookupDecimal(props, key)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		return fallback, nil
	}
	return d, nil
}

// GetString reads a pricing property as a string, falling back to the
// given default when the property is absent or not a string.
func GetString(props map[string]interface{}, key string, fallback string) string {
	if raw, ok := props[key]; ok {
		if s, ok := raw.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// Tier is one contiguous usage range with its own rate and flat fee.
// Bounds are inclusive; a nil ToValue marks the final unbounded tier.
type Tier struct {
	FromValue     decimal.Decimal  `json:"from_value"`
	ToValue       *decimal.Decimal `json:"to_value,omitempty"`
	PerUnitAmount decimal.Decimal  `json:"per_unit_amount"`
	FlatAmount    decimal.Decimal  `json:"flat_amount"`
}

// Capacity returns the number of units the tier can absorb. The bounds are
// inclusive so a (0, 5) tier holds 6 units. The second return is false for
// the unbounded final tier.
func (t Tier) Capacity() (decimal.Decimal, bool) {
	if t.ToValue == nil {
		return decimal.Zero, false
	}
	return t.ToValue.Sub(t.FromValue).Add(decimal.NewFromInt(1)), true
}

// Contains reports whether the total usage falls inside the tier's range
func (t Tier) Contains(usage decimal.Decimal) bool {
	if usage.LessThan(t.FromValue) {
		return false
	}
	if t.ToValue == nil {
		return true
	}
	return usage.LessThanOrEqual(*t.ToValue)
}

// PercentageTier is a tier whose rate is a percentage of the monetary base
// falling inside the tier instead of a per-unit amount.
type PercentageTier struct {
	FromValue  decimal.Decimal  `json:"from_value"`
	ToValue    *decimal.Decimal `json:"to_value,omitempty"`
	Rate       decimal.Decimal  `json:"rate"`
	FlatAmount decimal.Decimal  `json:"flat_amount"`
}

// Capacity returns the number of units the tier can absorb, false when
// unbounded.
func (t PercentageTier) Capacity() (decimal.Decimal, bool) {
	if t.ToValue == nil {
		return decimal.Zero, false
	}
	return t.ToValue.Sub(t.FromValue).Add(decimal.NewFromInt(1)), true
}

// ParseTiers decodes a tier list property. Two formats are accepted:
// the explicit form {from_value, to_value, per_unit_amount, flat_amount}
// and the shorthand form {up_to, unit_price} where each tier's lower bound
// is the previous tier's up_to and the flat amount is zero. Tiers come back
// sorted ascending by lower bound with the unbounded tier last.
func ParseTiers(raw interface{}) ([]Tier, error) {
	if tiers, ok := raw.([]Tier); ok {
		return sortTiers(tiers)
	}

	entries, err := tierEntries(raw)
	if err != nil {
		return nil, err
	}

	tiers := make([]Tier, 0, len(entries))
	prevUpTo := decimal.Zero
	for _, entry := range entries {
		if isShorthandTier(entry) {
			upTo, hasUpTo, err := LookupDecimal(entry, "up_to")
			if err != nil {
				return nil, err
			}
			unitPrice, err := GetDecimal(entry, "unit_price", decimal.Zero)
			if err != nil {
				return nil, err
			}
			tier := Tier{
				FromValue:     prevUpTo,
				PerUnitAmount: unitPrice,
				FlatAmount:    decimal.Zero,
			}
			if hasUpTo {
				tier.ToValue = &upTo
				prevUpTo = upTo
			}
			tiers = append(tiers, tier)
			continue
		}

		tier := Tier{}
		if tier.FromValue, err = GetDecimal(entry, "from_value", decimal.Zero); err != nil {
			return nil, err
		}
		if to, hasTo, err := LookupDecimal(entry, "to_value"); err != nil {
			return nil, err
		} else if hasTo {
			tier.ToValue = &to
		}
		if tier.PerUnitAmount, err = GetDecimal(entry, "per_unit_amount", decimal.Zero); err != nil {
			return nil, err
		}
		if tier.FlatAmount, err = GetDecimal(entry, "flat_amount", decimal.Zero); err != nil {
			return nil, err
		}
		tiers = append(tiers, tier)
	}

	return sortTiers(tiers)
}

// ParsePercentageTiers decodes a percentage tier list property in the
// explicit form {from_value, to_value, rate, flat_amount}.
func ParsePercentageTiers(raw interface{}) ([]PercentageTier, error) {
	if tiers, ok := raw.([]PercentageTier); ok {
		return sortPercentageTiers(tiers)
	}

	entries, err := tierEntries(raw)
	if err != nil {
		return nil, err
	}

	tiers := make([]PercentageTier, 0, len(entries))
	for _, entry := range entries {
		tier := PercentageTier{}
		if tier.FromValue, err = GetDecimal(entry, "from_value", decimal.Zero); err != nil {
			return nil, err
		}
		if to, hasTo, err := LookupDecimal(entry, "to_value"); err != nil {
			return nil, err
		} else if hasTo {
			tier.ToValue = &to
		}
		if tier.Rate, err = GetDecimal(entry, "rate", decimal.Zero); err != nil {
			return nil, err
		}
		if tier.FlatAmount, err = GetDecimal(entry, "flat_amount", decimal.Zero); err != nil {
			return nil, err
		}
		tiers = append(tiers, tier)
	}

	return sortPercentageTiers(tiers)
}

func isShorthandTier(entry map[string]interface{}) bool {
	if _, ok := entry["up_to"]; ok {
		return true
	}
	_, ok := entry["unit_price"]
	return ok
}

func tierEntries(raw interface{}) ([]map[string]interface{}, error) {
	switch list := raw.(type) {
	case []map[string]interface{}:
		return list, nil
	case []interface{}:
		entries := make([]map[string]interface{}, 0, len(list))
		for _, item := range list {
			entry, ok := item.(map[string]interface{})
			if !ok {
				return nil, tierFormatError()
			}
			entries = append(entries, entry)
		}
		return entries, nil
	default:
		return nil, tierFormatError()
	}
}

func sortTiers(tiers []Tier) ([]Tier, error) {
	if len(tiers) == 0 {
		return nil, ierr.NewError("at least one tier is required").
			WithHint("Charge pricing properties are invalid").
			Mark(ierr.ErrConfiguration)
	}
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FromValue.LessThan(sorted[j].FromValue)
	})
	for i, t := range sorted {
		if t.ToValue == nil && i != len(sorted)-1 {
			return nil, ierr.NewError("only the final tier may be unbounded").
				WithHint("Charge pricing properties are invalid").
				Mark(ierr.ErrConfiguration)
		}
	}
	return sorted, nil
}

func sortPercentageTiers(tiers []PercentageTier) ([]PercentageTier, error) {
	if len(tiers) == 0 {
		return nil, ierr.NewError("at least one tier is required").
			WithHint("Charge pricing properties are invalid").
			Mark(ierr.ErrConfiguration)
	}
	sorted := make([]PercentageTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FromValue.LessThan(sorted[j].FromValue)
	})
	for i, t := range sorted {
		if t.ToValue == nil && i != len(sorted)-1 {
			return nil, ierr.NewError("only the final tier may be unbounded").
				WithHint("Charge pricing properties are invalid").
				Mark(ierr.ErrConfiguration)
		}
	}
	return sorted, nil
}

func tierFormatError() error {
	return ierr.NewError("tiers must be a list of tier objects").
		WithHint("Charge pricing properties are invalid").
		Mark(ierr.ErrConfiguration)
}
