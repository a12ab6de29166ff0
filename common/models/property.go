package models

import "time"

type PropertyResponse struct {
	ID           int64     `json:"id"`
	URL          string    `json:"url"`
	Title        *string   `json:"title"`
	Price        *float64  `json:"price"`
	Rooms        *int32    `json:"rooms"`
	Bathrooms    *int32    `json:"bathrooms"`
	Surface      *float64  `json:"surface"`
	SurfaceUnit  *string   `json:"surface_unit"`
	City         *string   `json:"city"`
	Region       *string   `json:"region"`
	Description  *string   `json:"description"`
	PropertyType *string   `json:"property_type"`
	ImageURLs    []string  `json:"image_urls"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CityCount struct {
	City  string `json:"city"`
	Count int64  `json:"count"`
}

type CityAvgPrice struct {
	City     string  `json:"city"`
	AvgPrice float64 `json:"avg_price"`
}

type PropertyStats struct {
	Total     int64          `json:"total"`
	ByCity    []CityCount    `json:"by_city"`
	AvgPrices []CityAvgPrice `json:"avg_prices"`
}
