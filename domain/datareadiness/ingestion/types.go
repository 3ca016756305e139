// Package ingestion names the types a raw cell can coerce to.
package ingestion

// ValueType is the type a cell coerced to
type ValueType string

const (
	ValueTypeString    ValueType = "string"
	ValueTypeNumeric   ValueType = "numeric"
	ValueTypeTimestamp ValueType = "timestamp"
	ValueTypeMissing   ValueType = "missing"
)
