package domain

type Hotel struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   *string  `json:"description,omitempty"`
	Location      string   `json:"location"`
	City          string   `json:"city"`
	PricePerNight Money    `json:"price_per_night"`
	Rating        float64  `json:"rating"`    // 0..5
	Amenities     []string `json:"amenities"` // ordered as curated
	ImageURL      *string  `json:"image_url,omitempty"`
	TotalRooms    int      `json:"total_rooms"`
}

// HotelsQuery filters the catalog. An empty City means no filter.
type HotelsQuery struct {
	City string
}
