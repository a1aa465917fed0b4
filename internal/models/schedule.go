package models

import "time"

type ScheduleKey struct {
	Date     time.Time
	TimeSlot string
}

type DeliverySchedule struct {
	ID                 string         `json:"id"`
	Date               time.Time      `json:"date"`
	TimeSlot           string         `json:"time_slot"`
	PredictedOrders    int            `json:"predicted_orders"`
	ActualOrders       *int           `json:"actual_orders,omitempty"`
	IsPeakTime         bool           `json:"is_peak_time"`
	CapacityStatus     CapacityStatus `json:"capacity_status"`
	RecommendedDrivers int            `json:"recommended_drivers"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

func (s DeliverySchedule) Key() ScheduleKey {
	return ScheduleKey{Date: s.Date, TimeSlot: s.TimeSlot}
}

type StaffingEntry struct {
	TimeSlot string         `json:"time_slot"`
	Drivers  int            `json:"drivers"`
	Status   CapacityStatus `json:"status"`
}

type CapacityRecommendation struct {
	Date               time.Time       `json:"date"`
	TotalDriversNeeded int             `json:"total_drivers_needed"`
	PeakHours          []string        `json:"peak_hours"`
	LowActivityHours   []string        `json:"low_activity_hours"`
	StaffingPlan       []StaffingEntry `json:"staffing_plan"`
}

type Route struct {
	RouteID          string   `json:"route_id"`
	Orders           []Order  `json:"orders"`
	EstimatedMinutes int      `json:"estimated_minutes"`
	TotalDistanceKm  float64  `json:"total_distance_km"`
	StartPoint       Location `json:"start_point"`
}
