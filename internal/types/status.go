package types

// Status is a type for the lifecycle status of a catalogue resource
// (e.g. meter, charge). Deleted resources stay addressable so that charges
// referencing them can be skipped instead of failing.
type Status string

const (
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
	StatusDeleted   Status = "deleted"
)
