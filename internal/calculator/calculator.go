package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/vidinfra/metering/internal/domain/charge"
	"github.com/vidinfra/metering/internal/domain/events"
	ierr "github.com/vidinfra/metering/internal/errors"
	"github.com/vidinfra/metering/internal/types"
)

// Input carries everything a charge model calculator may read: the
// aggregated usage, the matched event count, the raw matched events (only
// DYNAMIC reads them) and the merged pricing properties.
type Input struct {
	Quantity    decimal.Decimal
	EventsCount int
	Events      []*events.Event
	Properties  map[string]interface{}
}

// Calculator maps one Input to a money amount. Calculators are pure: no
// I/O, no logging, no shared state.
type Calculator func(in Input) (decimal.Decimal, error)

// Registry resolves charge models to calculators. The model set is closed;
// extending it means registering a new tag and a pure function here, not
// branching at call sites.
type Registry struct {
	calculators map[types.ChargeModel]Calculator
}

// NewRegistry builds the registry with all supported charge models
func NewRegistry() *Registry {
	return &Registry{
		calculators: map[types.ChargeModel]Calculator{
			types.CHARGE_MODEL_STANDARD:             calculateStandard,
			types.CHARGE_MODEL_GRADUATED:            calculateGraduated,
			types.CHARGE_MODEL_VOLUME:               calculateVolume,
			types.CHARGE_MODEL_PACKAGE:              calculatePackage,
			types.CHARGE_MODEL_PERCENTAGE:           calculatePercentage,
			types.CHARGE_MODEL_GRADUATED_PERCENTAGE: calculateGraduatedPercentage,
			types.CHARGE_MODEL_DYNAMIC:              calculateDynamic,
			types.CHARGE_MODEL_CUSTOM:               calculateCustom,
		},
	}
}

// Calculate computes the amount for the given charge model
func (r *Registry) Calculate(model types.ChargeModel, in Input) (decimal.Decimal, error) {
	calc, ok := r.calculators[model]
	if !ok {
		return decimal.Zero, ierr.NewErrorf("unknown charge model: %s", model).
			WithHint("The charge references a pricing model the engine does not support").
			Mark(ierr.ErrConfiguration)
	}
	return calc(in)
}

// calculateStandard bills every unit at a single unit price, optionally
// clamping the result into [min_price, max_price].
func calculateStandard(in Input) (decimal.Decimal, error) {
	unitPrice, err := charge.GetDecimal(in.Properties, charge.PropertyAmount, decimal.Zero)
	if err != nil {
		return decimal.Zero, err
	}

	amount := in.Quantity.Mul(unitPrice)

	if min, ok, err := charge.LookupDecimal(in.Properties, charge.PropertyMinPrice); err != nil {
		return decimal.Zero, err
	} else if ok && amount.LessThan(min) {
		amount = min
	}
	if max, ok, err := charge.LookupDecimal(in.Properties, charge.PropertyMaxPrice); err != nil {
		return decimal.Zero, err
	} else if ok && amount.GreaterThan(max) {
		amount = max
	}

	return amount, nil
}

// calculateGraduated fills tiers progressively. A bounded tier absorbs up
// to to_value - from_value + 1 units (inclusive bounds); the unbounded
// final tier absorbs the rest. The flat amount is charged once per
// non-empty tier, never prorated.
func calculateGraduated(in Input) (decimal.Decimal, error) {
	tiers, err := charge.ParseTiers(in.Properties[charge.PropertyGraduatedRanges])
	if err != nil {
		return decimal.Zero, err
	}

	amount := decimal.Zero
	remaining := in.Quantity
	for _, tier := range tiers {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}

		unitsInTier := remaining
		if capacity, bounded := tier.Capacity(); bounded && remaining.GreaterThan(capacity) {
			unitsInTier = capacity
		}

		amount = amount.Add(unitsInTier.Mul(tier.PerUnitAmount)).Add(tier.FlatAmount)
		remaining = remaining.Sub(unitsInTier)
	}

	return amount, nil
}

// calculateVolume bills the entire usage at the single tier whose range
// contains the total.
func calculateVolume(in Input) (decimal.Decimal, error) {
	tiers, err := charge.ParseTiers(in.Properties[charge.PropertyVolumeRanges])
	if err != nil {
		return decimal.Zero, err
	}

	for _, tier := range tiers {
		if tier.Contains(in.Quantity) {
			return in.Quantity.Mul(tier.PerUnitAmount).Add(tier.FlatAmount), nil
		}
	}

	// tiers are contiguous from zero per configuration, a gap means the
	// usage is below the first tier
	return decimal.Zero, nil
}

// calculatePackage bills usage in fixed-size packages after deducting free
// units, always rounding the package count up.
func calculatePackage(in Input) (decimal.Decimal, error) {
	size, ok, err := charge.LookupDecimal(in.Properties, charge.PropertyPackageSize)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok || size.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ierr.NewError("package_size must be a positive number").
			WithHint("PACKAGE pricing requires a positive package_size property").
			Mark(ierr.ErrConfiguration)
	}

	packagePrice, err := charge.GetDecimal(in.Properties, charge.PropertyAmount, decimal.Zero)
	if err != nil {
		return decimal.Zero, err
	}
	freeUnits, err := charge.GetDecimal(in.Properties, charge.PropertyFreeUnits, decimal.Zero)
	if err != nil {
		return decimal.Zero, err
	}

	billable := in.Quantity.Sub(freeUnits)
	if billable.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, nil
	}

	packages := billable.Div(size).Ceil()
	return packages.Mul(packagePrice), nil
}

// calculatePercentage bills rate% of a monetary base (defaulting to the
// aggregated usage), optionally clamped per transaction, plus a fixed
// amount per billable event beyond the free allowance.
func calculatePercentage(in Input) (decimal.Decimal, error) {
	rate, err := charge.GetDecimal(in.Properties, charge.PropertyRate, decimal.Zero)
	if err != nil {
		return decimal.Zero, err
	}
	base, err := charge.GetDecimal(in.Properties, charge.PropertyBaseAmount, in.Quantity)
	if err != nil {
		return decimal.Zero, err
	}

	rated := base.Mul(rate).Div(decimal.NewFromInt(100))

	if min, ok, err := charge.LookupDecimal(in.Properties, charge.PropertyPerTransactionMinAmount); err != nil {
		return decimal.Zero, err
	} else if ok && rated.LessThan(min) {
		rated = min
	}
	if max, ok, err := charge.LookupDecimal(in.Properties, charge.PropertyPerTransactionMaxAmount); err != nil {
		return decimal.Zero, err
	} else if ok && rated.GreaterThan(max) {
		rated = max
	}

	fixedAmount, err := charge.GetDecimal(in.Properties, charge.PropertyFixedAmount, decimal.Zero)
	if err != nil {
		return decimal.Zero, err
	}
	freeEvents, err := charge.GetDecimal(in.Properties, charge.PropertyFreeUnitsPerEvents, decimal.Zero)
	if err != nil {
		return decimal.Zero, err
	}

	billableEvents := decimal.NewFromInt(int64(in.EventsCount)).Sub(freeEvents)
	if billableEvents.LessThan(decimal.Zero) {
		billableEvents = decimal.Zero
	}

	return rated.Add(fixedAmount.Mul(billableEvents)), nil
}

// calculateGraduatedPercentage fills tiers with the monetary base the same
// way GRADUATED fills them with units, applying each tier's percentage
// rate to the portion falling inside it plus a flat amount per non-empty
// tier.
func calculateGraduatedPercentage(in Input) (decimal.Decimal, error) {
	tiers, err := charge.ParsePercentageTiers(in.Properties[charge.PropertyGraduatedPctRanges])
	if err != nil {
		return decimal.Zero, err
	}

	base, err := charge.GetDecimal(in.Properties, charge.PropertyBaseAmount, in.Quantity)
	if err != nil {
		return decimal.Zero, err
	}

	amount := decimal.Zero
	remaining := base
	for _, tier := range tiers {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}

		portion := remaining
		if capacity, bounded := tier.Capacity(); bounded && remaining.GreaterThan(capacity) {
			portion = capacity
		}

		amount = amount.Add(portion.Mul(tier.Rate).Div(decimal.NewFromInt(100))).Add(tier.FlatAmount)
		remaining = remaining.Sub(portion)
	}

	return amount, nil
}

// calculateDynamic prices each raw event from its own properties and
// ignores the aggregated usage entirely.
func calculateDynamic(in Input) (decimal.Decimal, error) {
	priceField := charge.GetString(in.Properties, charge.PropertyPriceField, "unit_price")
	quantityField := charge.GetString(in.Properties, charge.PropertyQuantityField, "quantity")

	amount := decimal.Zero
	for _, e := range in.Events {
		price, ok := e.DecimalProperty(priceField)
		if !ok {
			price = decimal.Zero
		}
		quantity, ok := e.DecimalProperty(quantityField)
		if !ok {
			quantity = decimal.Zero
		}
		amount = amount.Add(price.Mul(quantity))
	}
	return amount, nil
}

// calculateCustom returns the fixed configured amount when present,
// regardless of usage; otherwise falls back to usage times the unit price.
func calculateCustom(in Input) (decimal.Decimal, error) {
	if fixed, ok, err := charge.LookupDecimal(in.Properties, charge.PropertyCustomAmount); err != nil {
		return decimal.Zero, err
	} else if ok {
		return fixed, nil
	}

	if unitPrice, ok, err := charge.LookupDecimal(in.Properties, charge.PropertyAmount); err != nil {
		return decimal.Zero, err
	} else if ok {
		return in.Quantity.Mul(unitPrice), nil
	}

	return decimal.Zero, nil
}
