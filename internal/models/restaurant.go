package models

type Restaurant struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	CuisineType string   `json:"cuisine_type"`
	Location    Location `json:"location"`
}
