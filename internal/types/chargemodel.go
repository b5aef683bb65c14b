package types

// ChargeModel is the pricing model applied to aggregated usage
// ex STANDARD, GRADUATED, PACKAGE
type ChargeModel string

const (
	// CHARGE_MODEL_STANDARD bills every unit at a single unit price
	CHARGE_MODEL_STANDARD ChargeModel = "STANDARD"

	// CHARGE_MODEL_GRADUATED bills units progressively across tiers as
	// usage fills each tier's capacity
	CHARGE_MODEL_GRADUATED ChargeModel = "GRADUATED"

	// CHARGE_MODEL_VOLUME bills the entire usage at the rate of the single
	// tier whose range contains the total
	CHARGE_MODEL_VOLUME ChargeModel = "VOLUME"

	// CHARGE_MODEL_PACKAGE bills usage in fixed-size packages ex 1000
	// emails for $100
	CHARGE_MODEL_PACKAGE ChargeModel = "PACKAGE"

	// CHARGE_MODEL_PERCENTAGE bills a rate over a monetary base plus a
	// fixed amount per billable event
	CHARGE_MODEL_PERCENTAGE ChargeModel = "PERCENTAGE"

	// CHARGE_MODEL_GRADUATED_PERCENTAGE applies per-tier percentage rates
	// to the portion of the base falling in each tier
	CHARGE_MODEL_GRADUATED_PERCENTAGE ChargeModel = "GRADUATED_PERCENTAGE"

	// CHARGE_MODEL_DYNAMIC prices each raw event from its own properties,
	// ignoring the aggregated usage
	CHARGE_MODEL_DYNAMIC ChargeModel = "DYNAMIC"

	// CHARGE_MODEL_CUSTOM returns a fixed configured amount or falls back
	// to a unit price
	CHARGE_MODEL_CUSTOM ChargeModel = "CUSTOM"
)

func (m ChargeModel) Validate() bool {
	switch m {
	case CHARGE_MODEL_STANDARD, CHARGE_MODEL_GRADUATED, CHARGE_MODEL_VOLUME,
		CHARGE_MODEL_PACKAGE, CHARGE_MODEL_PERCENTAGE, CHARGE_MODEL_GRADUATED_PERCENTAGE,
		CHARGE_MODEL_DYNAMIC, CHARGE_MODEL_CUSTOM:
		return true
	default:
		return false
	}
}

// UsesRawEvents returns true if the charge model reads raw events instead
// of the aggregated quantity
func (m ChargeModel) UsesRawEvents() bool {
	return m == CHARGE_MODEL_DYNAMIC
}
