package records

import (
	"errors"
	"fmt"
	"time"

	"github.com/nsynca/nsynca/internal/models"
	"github.com/nsynca/nsynca/internal/notion"
)

// Errors returned when a service's charges cannot be extended.
var (
	ErrNoCharges = errors.New("no existing charges to start from")
	ErrNoPrice   = errors.New("no existing charge with a price")
)

// Charge is a row of the services database with Entry Type "Charge".
type Charge struct {
	ID               string
	Name             string
	Date             time.Time
	HasDate          bool
	Price            float64
	HasPrice         bool
	LinkedServiceIDs []string
}

// ParseCharge reads a charge row.
func ParseCharge(page *notion.Page, props models.ServiceProperties) Charge {
	c := Charge{
		ID:               page.ID,
		Name:             notion.PlainText(page, props.Name),
		LinkedServiceIDs: notion.RelationIDs(page, props.LinkedService),
	}
	c.Date, _, c.HasDate = notion.DateStart(page, props.Date)
	if c.HasDate {
		c.Date = Day(c.Date)
	}
	c.Price, c.HasPrice = notion.NumberValue(page, props.Price)
	return c
}

// ChargesForService returns the charges linked to serviceID.
func ChargesForService(serviceID string, charges []Charge) []Charge {
	want := notion.NormalizeID(serviceID)
	var out []Charge
	for _, c := range charges {
		for _, id := range c.LinkedServiceIDs {
			if notion.NormalizeID(id) == want {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// ExpectedChargeDates returns one date per billing period from earliest up
// to and including today. Each date is one cycle after the previous one, so
// a clamped month end carries forward (Jan 31, Feb 28, Mar 28).
func ExpectedChargeDates(cycle Cycle, earliest, today time.Time) []time.Time {
	months := cycle.Months()
	if months == 0 {
		return nil
	}
	today = Day(today)
	var dates []time.Time
	for d := Day(earliest); !d.After(today); d = AddMonths(d, months) {
		dates = append(dates, d)
	}
	return dates
}

// EarliestCharge returns the date of the earliest dated charge.
func EarliestCharge(charges []Charge) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, c := range charges {
		if c.HasDate && (!found || c.Date.Before(earliest)) {
			earliest, found = c.Date, true
		}
	}
	return earliest, found
}

// ChargePrice returns the price of the latest dated charge.
func ChargePrice(charges []Charge) (float64, error) {
	var latest *Charge
	for i := range charges {
		c := &charges[i]
		if c.HasDate && (latest == nil || c.Date.After(latest.Date)) {
			latest = c
		}
	}
	if latest == nil || !latest.HasPrice {
		return 0, ErrNoPrice
	}
	return latest.Price, nil
}

// ChargeName names a charge "<Service> Jan25".
func ChargeName(serviceName string, date time.Time) string {
	return fmt.Sprintf("%s %s", serviceName, date.Format("Jan06"))
}

// ChargeProperties returns the properties of a new charge row.
func ChargeProperties(props models.ServiceProperties, s Service, date time.Time, price float64) notion.Properties {
	return notion.Properties{
		props.Name:          notion.Title(ChargeName(s.Name, date)),
		props.EntryType:     notion.Select(props.ChargeEntry),
		props.Date:          notion.DateOf(date),
		props.Price:         notion.Number(price),
		props.LinkedService: notion.Relation(s.ID),
	}
}

// PlannedCharge is a charge that should exist for a service.
type PlannedCharge struct {
	Name       string
	Date       time.Time
	Properties notion.Properties
}

// MissingCharges returns the expected charges of s whose billing period has
// no linked charge yet, priced like the latest one.
func MissingCharges(props models.ServiceProperties, s Service, charges []Charge, today time.Time) ([]PlannedCharge, error) {
	if s.Cycle() == CycleUnknown {
		return nil, nil
	}
	earliest, ok := EarliestCharge(charges)
	if !ok {
		return nil, fmt.Errorf("service %q: %w", s.Name, ErrNoCharges)
	}

	// A period is covered when a linked charge carries its name or is dated
	// in it, whatever the day of the payment.
	existing := make(map[string]bool, 2*len(charges))
	for _, c := range charges {
		if c.Name != "" {
			existing[c.Name] = true
		}
		if c.HasDate {
			existing[ChargeName(s.Name, c.Date)] = true
		}
	}

	var missing []time.Time
	for _, d := range ExpectedChargeDates(s.Cycle(), earliest, today) {
		if !existing[ChargeName(s.Name, d)] {
			missing = append(missing, d)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}

	price, err := ChargePrice(charges)
	if err != nil {
		return nil, fmt.Errorf("service %q: %w", s.Name, err)
	}

	planned := make([]PlannedCharge, 0, len(missing))
	for _, d := range missing {
		planned = append(planned, PlannedCharge{
			Name:       ChargeName(s.Name, d),
			Date:       d,
			Properties: ChargeProperties(props, s, d, price),
		})
	}
	return planned, nil
}
