package meter

import "context"

// Repository is the meter-catalogue collaborator. A deleted meter is
// reported via a not-found error, which the engine treats as
// catalogue drift rather than a failure.
type Repository interface {
	CreateMeter(ctx context.Context, meter *Meter) error
	GetMeter(ctx context.Context, id string) (*Meter, error)
	GetAllMeters(ctx context.Context) ([]*Meter, error)
	DeleteMeter(ctx context.Context, id string) error
}
