package types

type AggregationType string

const (
	AggregationCount       AggregationType = "COUNT"
	AggregationSum         AggregationType = "SUM"
	AggregationMax         AggregationType = "MAX"
	AggregationLatest      AggregationType = "LATEST"
	AggregationUniqueCount AggregationType = "UNIQUE_COUNT"
	AggregationWeightedSum AggregationType = "WEIGHTED_SUM"
	AggregationCustom      AggregationType = "CUSTOM"
)

func (t AggregationType) Validate() bool {
	switch t {
	case AggregationCount, AggregationSum, AggregationMax, AggregationLatest,
		AggregationUniqueCount, AggregationWeightedSum, AggregationCustom:
		return true
	default:
		return false
	}
}

// RequiresField returns true if the aggregation type requires a field
// from $event.properties to aggregate on
func (t AggregationType) RequiresField() bool {
	switch t {
	case AggregationCount, AggregationCustom:
		return false
	default:
		return true
	}
}

// RequiresExpression returns true if the aggregation type evaluates a
// formula per event instead of reading a single field
func (t AggregationType) RequiresExpression() bool {
	return t == AggregationCustom
}
