package models

import (
	"github.com/samber/mo"
)

// DefaultSurfaceUnit is the unit stored when a card does not state one.
const DefaultSurfaceUnit = "m²"

// Listing is one normalized card scraped from a results page.
type Listing struct {
	URL          string
	Title        string
	Price        mo.Option[float64]
	Rooms        mo.Option[int32]
	Bathrooms    mo.Option[int32]
	Surface      mo.Option[float64]
	SurfaceUnit  mo.Option[string]
	City         string
	Region       string
	PropertyType mo.Option[string]
	Description  mo.Option[string]
	ImageURLs    []string
}

// Batch is the set of listings extracted from a single page.
type Batch struct {
	Page     int
	Listings []Listing
}
