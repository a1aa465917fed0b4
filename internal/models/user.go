package models

import "time"

type User struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	JoinDate time.Time `json:"join_date"`
	IsActive bool      `json:"is_active"`
	Location Location  `json:"location"`
}
