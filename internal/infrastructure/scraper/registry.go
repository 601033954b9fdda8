package scraper

import (
	"coverly-core-importer-layer/internal/domain"
	"coverly-core-importer-layer/internal/ports"
)

// Registry maps retailer names to their drivers.
type Registry struct {
	drivers map[string]ports.RetailerDriver
}

// NewRegistry creates a driver registry.
func NewRegistry(drivers ...ports.RetailerDriver) *Registry {
	r := &Registry{drivers: make(map[string]ports.RetailerDriver, len(drivers))}
	for _, d := range drivers {
		r.drivers[d.Retailer()] = d
	}
	return r
}

// Resolve returns the driver for a retailer. Names outside the known set
// resolve to ErrUnsupportedRetailer; known retailers without a driver (not
// yet implemented) resolve to ErrRetailerNotImplemented.
func (r *Registry) Resolve(retailer string) (ports.RetailerDriver, error) {
	name := domain.NormalizeRetailer(retailer)
	if !domain.IsKnownRetailer(name) {
		return nil, domain.ErrUnsupportedRetailer
	}
	driver, ok := r.drivers[name]
	if !ok {
		return nil, domain.ErrRetailerNotImplemented
	}
	return driver, nil
}
