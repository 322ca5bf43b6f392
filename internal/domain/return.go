package domain

import (
	"strings"
	"time"
)

type ReturnStatus string

const (
	ReturnStatusScheduled ReturnStatus = "scheduled"
	ReturnStatusPickedUp  ReturnStatus = "picked_up"
	ReturnStatusInspected ReturnStatus = "inspected"
	ReturnStatusCompleted ReturnStatus = "completed"
)

var returnTransitions = map[ReturnStatus]ReturnStatus{
	ReturnStatusScheduled: ReturnStatusPickedUp,
	ReturnStatusPickedUp:  ReturnStatusInspected,
	ReturnStatusInspected: ReturnStatusCompleted,
}

// returnCascades maps a return status to the rental status it drives.
var returnCascades = map[ReturnStatus]RentalStatus{
	ReturnStatusScheduled: RentalStatusReturnScheduled,
	ReturnStatusPickedUp:  RentalStatusReturned,
	ReturnStatusCompleted: RentalStatusCompleted,
}

func ParseReturnStatus(s string) (ReturnStatus, error) {
	st := ReturnStatus(strings.TrimSpace(s))
	switch st {
	case ReturnStatusScheduled, ReturnStatusPickedUp, ReturnStatusInspected, ReturnStatusCompleted:
		return st, nil
	}
	return "", Validation("invalid return status: %q", s)
}

func (s ReturnStatus) CanTransition(to ReturnStatus) bool {
	next, ok := returnTransitions[s]
	return ok && next == to
}

type TimeSlot string

const (
	TimeSlotMorning   TimeSlot = "9AM-12PM"
	TimeSlotAfternoon TimeSlot = "12PM-3PM"
	TimeSlotEvening   TimeSlot = "3PM-6PM"
	TimeSlotNight     TimeSlot = "6PM-9PM"
)

func ParseTimeSlot(s string) (TimeSlot, error) {
	ts := TimeSlot(strings.TrimSpace(s))
	switch ts {
	case TimeSlotMorning, TimeSlotAfternoon, TimeSlotEvening, TimeSlotNight:
		return ts, nil
	}
	return "", Validation("invalid time slot: %q", s)
}

type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
)

func ParseCondition(s string) (Condition, error) {
	c := Condition(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return c, nil
	}
	return "", Validation("invalid condition: %q", s)
}

type QualityIssue string

const (
	QualityIssueStains           QualityIssue = "stains"
	QualityIssueTears            QualityIssue = "tears"
	QualityIssueMissingParts     QualityIssue = "missing_parts"
	QualityIssueBrokenComponents QualityIssue = "broken_components"
	QualityIssueOdor             QualityIssue = "odor"
	QualityIssueColorFade        QualityIssue = "color_fade"
)

// ParseQualityIssues validates each tag and drops duplicates, keeping first-seen order.
func ParseQualityIssues(raw []string) ([]QualityIssue, error) {
	issues := make([]QualityIssue, 0, len(raw))
	seen := make(map[QualityIssue]bool)
	for _, r := range raw {
		q := QualityIssue(strings.ToLower(strings.TrimSpace(r)))
		if q == "" {
			continue
		}
		switch q {
		case QualityIssueStains, QualityIssueTears, QualityIssueMissingParts,
			QualityIssueBrokenComponents, QualityIssueOdor, QualityIssueColorFade:
		default:
			return nil, Validation("invalid quality issue: %q", r)
		}
		if seen[q] {
			continue
		}
		seen[q] = true
		issues = append(issues, q)
	}
	return issues, nil
}

type Inspection struct {
	Condition     Condition      `json:"condition"`
	QualityIssues []QualityIssue `json:"qualityIssues"`
	Comments      string         `json:"comments,omitempty"`
	Images        []string       `json:"images"`
	InspectedAt   time.Time      `json:"inspectedAt"`
}

type Return struct {
	ID                int64        `json:"id"`
	ReturnID          string       `json:"returnId"`
	RentalID          int64        `json:"-"`
	Rental            *Rental      `json:"rental,omitempty"`
	UserID            string       `json:"user"`
	Customer          *User        `json:"customer,omitempty"`
	ProductID         string       `json:"productId"`
	Product           *Product     `json:"product,omitempty"`
	PickupDate        time.Time    `json:"pickupDate"`
	TimeSlot          TimeSlot     `json:"timeSlot"`
	AdditionalNotes   string       `json:"additionalNotes,omitempty"`
	Status            ReturnStatus `json:"status"`
	DeliveryPartnerID *string      `json:"deliveryPartner,omitempty"`
	Inspection        *Inspection  `json:"inspection,omitempty"`
	Version           int32        `json:"-"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// NewReturnID generates the human readable return reference, e.g. RET-1A2B3C4D.
func NewReturnID() string {
	return "RET-" + shortCode()
}

// AssignedTo reports whether partnerID is the delivery partner recorded on the return.
func (r *Return) AssignedTo(partnerID string) bool {
	return r.DeliveryPartnerID != nil && partnerID != "" && *r.DeliveryPartnerID == partnerID
}

func (r *Return) Inspected() bool {
	return r.Inspection != nil && r.Inspection.Condition != ""
}

// TransitionTo validates the edge, moves the return and reports the rental change
// the move requires, if any.
func (r *Return) TransitionTo(next ReturnStatus) (*RentalStatusChange, error) {
	if !r.Status.CanTransition(next) {
		return nil, InvalidState("return %s cannot move from %s to %s", r.ReturnID, r.Status, next)
	}
	if (next == ReturnStatusInspected || next == ReturnStatusCompleted) && !r.Inspected() {
		return nil, InvalidState("inspection must be completed before finalizing return")
	}
	r.Status = next
	return r.cascade(), nil
}

// Scheduled returns the rental change that accompanies creating the return.
func (r *Return) Scheduled() *RentalStatusChange {
	return r.cascade()
}

func (r *Return) cascade() *RentalStatusChange {
	to, ok := returnCascades[r.Status]
	if !ok {
		return nil
	}
	return &RentalStatusChange{RentalID: r.RentalID, To: to, ReturnID: r.ReturnID}
}
