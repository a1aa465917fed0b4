package models

const (
	OrderStatusPending         = "PENDING"
	OrderStatusConfirmed       = "CONFIRMED"
	OrderStatusPreparing       = "PREPARING"
	OrderStatusOutForDelivery  = "OUT_FOR_DELIVERY"
	OrderStatusDelivered       = "DELIVERED"
	OrderStatusCancelled       = "CANCELLED"
	OrderTypeRegular           = "REGULAR"
	DefaultSuggestionListLimit = 10
	DefaultReportListLimit     = 10
)

const (
	TopicSuggestionEvents = "suggestion_events"
	TopicReportEvents     = "demand_report_events"
	TopicScheduleEvents   = "delivery_schedule_events"
)

const (
	EventSuggestionCreated   = "SuggestionCreated"
	EventSuggestionResponded = "SuggestionResponded"
	EventReportSent          = "ReportSent"
	EventReportResponded     = "ReportResponded"
	EventSchedulePredicted   = "SchedulePredicted"
)

// DeliveryStageStatuses are the order statuses counted as delivery load.
var DeliveryStageStatuses = []string{OrderStatusDelivered, OrderStatusOutForDelivery}
