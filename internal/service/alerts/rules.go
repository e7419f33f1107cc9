// Package alerts raises and retracts document expiry alerts for employees
// and trucks.
package alerts

import (
	"fmt"
	"time"

	"github.com/mamadbah2/fleetbook/internal/domain/models"
	"github.com/mamadbah2/fleetbook/internal/parse"
	"github.com/mamadbah2/fleetbook/internal/repository"
)

// Horizon is how far ahead an expiry date raises an alert.
const Horizon = 30 * 24 * time.Hour

const expiryLayout = "2006-01-02"

type subjectKind int

const (
	subjectEmployee subjectKind = iota
	subjectTruck
)

// Subject is an employee or truck under evaluation.
type Subject struct {
	ID     string
	Number string
	Name   string
	Expiry any
}

// Rule describes one expiry check. Rules share no state; each owns the
// alerts of its Type.
type Rule struct {
	Type        models.AlertType
	Collection  string
	ExpiryField string
	kind        subjectKind
	compose     func(s Subject, expiry time.Time) (title, message string)
}

// Rules returns the license, insurance and fitness certificate rules.
func Rules() []Rule {
	return []Rule{
		{
			Type:        models.AlertLicenseExpiry,
			Collection:  models.CollectionEmployees,
			ExpiryField: models.FieldLicenseExpiry,
			kind:        subjectEmployee,
			compose: func(s Subject, expiry time.Time) (string, string) {
				return fmt.Sprintf("License expiring soon for %s", s.Name),
					fmt.Sprintf("License for %s expires on %s. Please renew.", s.Name, expiry.Format(expiryLayout))
			},
		},
		{
			Type:        models.AlertInsuranceExpiry,
			Collection:  models.CollectionTrucks,
			ExpiryField: models.FieldInsuranceExp,
			kind:        subjectTruck,
			compose: func(s Subject, expiry time.Time) (string, string) {
				return fmt.Sprintf("Insurance expiring soon for %s", s.Name),
					fmt.Sprintf("Insurance for %s expires on %s. Please renew.", s.Name, expiry.Format(expiryLayout))
			},
		},
		{
			Type:        models.AlertFCExpiry,
			Collection:  models.CollectionTrucks,
			ExpiryField: models.FieldFCExpiry,
			kind:        subjectTruck,
			compose: func(s Subject, expiry time.Time) (string, string) {
				return fmt.Sprintf("FC expiring soon for %s", s.Name),
					fmt.Sprintf("Fitness Certificate for %s expires on %s. Please renew.", s.Name, expiry.Format(expiryLayout))
			},
		},
	}
}

// ActiveStatus is the status value of subjects the rule evaluates.
func (r Rule) ActiveStatus() string {
	if r.kind == subjectEmployee {
		return models.EmployeeStatusActive
	}
	return models.TruckStatusActive
}

// SubjectFrom extracts the fields the rule needs from a stored record.
func (r Rule) SubjectFrom(doc repository.Document) Subject {
	s := Subject{ID: doc.ID(), Expiry: doc[r.ExpiryField]}
	switch r.kind {
	case subjectEmployee:
		s.Number = doc.String(models.FieldEmployeeNum)
		s.Name = repository.DisplayName(doc)
	default:
		s.Number = doc.String(models.FieldTruckNumber)
		s.Name = s.Number
	}
	return s
}

// MutationKind is the change Evaluate asks the caller to apply.
type MutationKind int

const (
	// Create inserts a new active alert.
	Create MutationKind = iota
	// Deactivate moves an existing active alert to inactive.
	Deactivate
)

// Mutation is one alert change produced by Evaluate.
type Mutation struct {
	Kind  MutationKind
	Alert models.Alert
}

// Evaluate decides which alerts of rule's type to create or retract. active
// holds the currently active alerts of that type. A subject triggers when
// its expiry parses and falls on or before now plus Horizon. Alerts of
// subjects not in the list are left untouched.
func Evaluate(rule Rule, subjects []Subject, active []models.Alert, now time.Time) []Mutation {
	bySubject := make(map[string][]models.Alert, len(active))
	for _, a := range active {
		if a.Type != rule.Type || a.Status != models.AlertStatusActive {
			continue
		}
		bySubject[a.SubjectID()] = append(bySubject[a.SubjectID()], a)
	}

	soon := now.UTC().Add(Horizon)
	var mutations []Mutation

	for _, subject := range subjects {
		existing := bySubject[subject.ID]
		expiry := parse.Date(subject.Expiry)
		triggered := expiry.OK && !expiry.Value.After(soon)

		if !triggered {
			for _, a := range existing {
				a.Status = models.AlertStatusInactive
				mutations = append(mutations, Mutation{Kind: Deactivate, Alert: a})
			}
			continue
		}

		if len(existing) > 0 {
			continue
		}

		mutations = append(mutations, Mutation{Kind: Create, Alert: rule.newAlert(subject, expiry.Value)})
		// a subject listed twice still yields a single alert
		bySubject[subject.ID] = []models.Alert{{}}
	}

	return mutations
}

func (r Rule) newAlert(s Subject, expiry time.Time) models.Alert {
	title, message := r.compose(s, expiry)
	a := models.Alert{
		Type:      r.Type,
		Severity:  models.AlertSeverityWarning,
		Title:     title,
		Message:   message,
		Status:    models.AlertStatusActive,
		AlertDate: expiry,
	}
	if r.kind == subjectEmployee {
		a.EmployeeID = s.ID
		a.EmployeeNumber = s.Number
	} else {
		a.TruckID = s.ID
		a.TruckNumber = s.Number
	}
	return a
}
