package types

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

const (
	UUID_PREFIX_EVENT  = "event"
	UUID_PREFIX_METER  = "meter"
	UUID_PREFIX_CHARGE = "charge"
	UUID_PREFIX_FEE    = "fee"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex meter_0ujsswThIGTUYm2K8FjOOfXtY1K
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}
