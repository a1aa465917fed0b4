package models

type PatternType string

const (
	PatternWeekly PatternType = "WEEKLY"
	PatternDaily  PatternType = "DAILY"
)

type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "PENDING"
	SuggestionAccepted SuggestionStatus = "ACCEPTED"
	SuggestionModified SuggestionStatus = "MODIFIED"
	SuggestionRejected SuggestionStatus = "REJECTED"
	SuggestionExpired  SuggestionStatus = "EXPIRED"
)

var suggestionTransitions = map[SuggestionStatus][]SuggestionStatus{
	SuggestionPending: {SuggestionAccepted, SuggestionModified, SuggestionRejected, SuggestionExpired},
}

func (s SuggestionStatus) CanTransitionTo(next SuggestionStatus) bool {
	return allowed(suggestionTransitions[s], next)
}

func (s SuggestionStatus) Terminal() bool {
	return len(suggestionTransitions[s]) == 0
}

type ReportStatus string

const (
	ReportGenerated   ReportStatus = "GENERATED"
	ReportSent        ReportStatus = "SENT"
	ReportNegotiating ReportStatus = "NEGOTIATING"
	ReportAgreed      ReportStatus = "AGREED"
	ReportRejected    ReportStatus = "REJECTED"
)

var reportTransitions = map[ReportStatus][]ReportStatus{
	ReportGenerated:   {ReportSent},
	ReportSent:        {ReportSent, ReportNegotiating, ReportAgreed, ReportRejected},
	ReportNegotiating: {ReportNegotiating, ReportAgreed, ReportRejected},
}

func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	return allowed(reportTransitions[s], next)
}

func (s ReportStatus) Terminal() bool {
	return len(reportTransitions[s]) == 0
}

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportGenerated, ReportSent, ReportNegotiating, ReportAgreed, ReportRejected:
		return true
	}
	return false
}

type CapacityStatus string

const (
	CapacityLow      CapacityStatus = "LOW"
	CapacityNormal   CapacityStatus = "NORMAL"
	CapacityHigh     CapacityStatus = "HIGH"
	CapacityCritical CapacityStatus = "CRITICAL"
)

// CapacityFor classifies a predicted order count: <5 LOW, <10 NORMAL, <20 HIGH, else CRITICAL.
func CapacityFor(predictedOrders int) CapacityStatus {
	switch {
	case predictedOrders < 5:
		return CapacityLow
	case predictedOrders < 10:
		return CapacityNormal
	case predictedOrders < 20:
		return CapacityHigh
	default:
		return CapacityCritical
	}
}

type ReportPeriod string

const (
	PeriodWeekly  ReportPeriod = "weekly"
	PeriodMonthly ReportPeriod = "monthly"
)

// Days is the length of the forecast window, 0 for unknown periods.
func (p ReportPeriod) Days() int {
	switch p {
	case PeriodWeekly:
		return 7
	case PeriodMonthly:
		return 30
	}
	return 0
}

func allowed[T comparable](targets []T, next T) bool {
	for _, t := range targets {
		if t == next {
			return true
		}
	}
	return false
}
