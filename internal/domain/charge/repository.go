package charge

import "context"

// Repository is the charge-catalogue collaborator
type Repository interface {
	CreateCharge(ctx context.Context, charge *Charge) error
	GetCharge(ctx context.Context, id string) (*Charge, error)
	GetChargesForMeter(ctx context.Context, meterID string) ([]*Charge, error)
	DeleteCharge(ctx context.Context, id string) error
}
