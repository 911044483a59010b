package domain

import (
	"context"
	"strings"
	"time"
)

// ServiceArea is one declared coverage zone of a delivery partner.
// City "All India" covers the whole country; State "All States" covers
// every state for the declared city. An optional pincode whitelist
// restricts the area further.
type ServiceArea struct {
	City     string   `json:"city"`
	State    string   `json:"state"`
	Pincodes []string `json:"pincodes,omitempty"`
}

// Matches reports whether this area serves the given destination.
func (a ServiceArea) Matches(city, state, pincode string) bool {
	allIndia := strings.EqualFold(a.City, ServiceAreaAllIndia)

	cityOK := allIndia || strings.EqualFold(a.City, city)
	stateOK := allIndia || strings.EqualFold(a.State, state) || strings.EqualFold(a.State, ServiceAreaAllStates)
	if !cityOK || !stateOK {
		return false
	}

	// A declared whitelist only constrains when the caller supplies a pincode.
	if pincode != "" && len(a.Pincodes) > 0 {
		for _, p := range a.Pincodes {
			if p == pincode {
				return true
			}
		}
		return false
	}
	return true
}

type DeliveryPartner struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	Phone               string        `json:"phone"`
	Email               string        `json:"email,omitempty"`
	VehicleType         string        `json:"vehicleType,omitempty"`
	Active              bool          `json:"active"`
	IsAvailable         bool          `json:"isAvailable"`
	ServiceAreas        []ServiceArea `json:"serviceAreas"`
	Rating              float64       `json:"rating,omitempty"`
	CompletedDeliveries int           `json:"completedDeliveries"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}

// ServesArea reports whether any declared service area covers the
// destination.
func (p *DeliveryPartner) ServesArea(city, state, pincode string) bool {
	for _, area := range p.ServiceAreas {
		if area.Matches(city, state, pincode) {
			return true
		}
	}
	return false
}

type PartnerRepository interface {
	Create(ctx context.Context, partner *DeliveryPartner) error
	GetByID(ctx context.Context, id string) (*DeliveryPartner, error)
	GetAll(ctx context.Context) ([]DeliveryPartner, error)
	// GetActiveAvailable returns partners with active and is_available set.
	GetActiveAvailable(ctx context.Context) ([]DeliveryPartner, error)
	SetAvailability(ctx context.Context, id string, available bool) error
	IncrementCompletedDeliveries(ctx context.Context, id string) error
}
