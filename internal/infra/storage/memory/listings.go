package memory

import (
	"context"
	"sync"

	domainlistings "quietsummit/internal/domain/listings"
)

// ListingRepository is an in-memory implementation for demo purposes. It
// stores both properties and trip packages behind the common contract.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]domainlistings.Reservable
}

// NewListingRepository builds an empty repository.
func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		items: make(map[domainlistings.ListingID]domainlistings.Reservable),
	}
}

// ByID returns a reservable or the domain's not-found error.
func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (domainlistings.Reservable, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrListingNotFound
	}
	return item, nil
}

// Save stores/updates a reservable entry.
func (r *ListingRepository) Save(ctx context.Context, item domainlistings.Reservable) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ReservableID()] = item
	return nil
}

// ListApproved returns reservables waiting for activation.
func (r *ListingRepository) ListApproved(ctx context.Context) ([]domainlistings.Reservable, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domainlistings.Reservable
	for _, item := range r.items {
		switch v := item.(type) {
		case *domainlistings.Listing:
			if v.State == domainlistings.StateApproved {
				out = append(out, v)
			}
		case *domainlistings.TripPackage:
			if v.State == domainlistings.StateApproved {
				out = append(out, v)
			}
		}
	}
	return out, nil
}

var _ domainlistings.Repository = (*ListingRepository)(nil)
