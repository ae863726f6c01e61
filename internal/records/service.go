package records

import (
	"time"

	"github.com/nsynca/nsynca/internal/models"
	"github.com/nsynca/nsynca/internal/notion"
)

// Service statuses.
const (
	StatusActive     = "Active"
	StatusComingSoon = "Coming Soon"
	StatusOverdue    = "Overdue"
	StatusCancelled  = "Cancelled"
)

// Service is a row of the services database with Entry Type "Service Profile".
type Service struct {
	ID           string
	Name         string
	EntryType    string
	BillingCycle string

	LastPayment    time.Time
	HasLastPayment bool
	EndDate        time.Time
	HasEndDate     bool
}

// ParseService reads a service profile row. The last payment date is
// usually a rollup over the service's charges, but a plain date works too.
func ParseService(page *notion.Page, props models.ServiceProperties) Service {
	s := Service{
		ID:           page.ID,
		Name:         notion.PlainText(page, props.Name),
		EntryType:    notion.SelectName(page, props.EntryType),
		BillingCycle: notion.SelectName(page, props.BillingCycle),
	}
	if s.Name == "" {
		s.Name = Untitled
	}
	s.LastPayment, _, s.HasLastPayment = notion.DateStart(page, props.LastPayment)
	s.EndDate, _, s.HasEndDate = notion.DateStart(page, props.EndDate)
	return s
}

// Cycle returns the parsed billing cycle.
func (s Service) Cycle() Cycle {
	return ParseCycle(s.BillingCycle)
}

// NextDueDate returns the last payment plus one billing cycle.
func (s Service) NextDueDate() (time.Time, bool) {
	months := s.Cycle().Months()
	if !s.HasLastPayment || months == 0 {
		return time.Time{}, false
	}
	return Day(AddMonths(Day(s.LastPayment), months)), true
}

// Status derives the service status on today. A service with an end date is
// cancelled; otherwise the next due date decides.
func (s Service) Status(today time.Time, dueSoonDays int) string {
	if s.HasEndDate {
		return StatusCancelled
	}
	due, ok := s.NextDueDate()
	if !ok {
		return StatusActive
	}
	today = Day(today)
	switch {
	case due.Before(today):
		return StatusOverdue
	case int(due.Sub(today).Hours()/24) <= dueSoonDays:
		return StatusComingSoon
	}
	return StatusActive
}

// ServiceUpdates returns the service properties derived on today. The next
// due date is only written when it can be computed.
func ServiceUpdates(props models.ServiceProperties, s Service, today time.Time) notion.Properties {
	updates := notion.Properties{
		props.Status: notion.Select(s.Status(today, props.DueSoonDays)),
	}
	if due, ok := s.NextDueDate(); ok {
		updates[props.NextDueDate] = notion.DateOf(due)
	}
	return updates
}
