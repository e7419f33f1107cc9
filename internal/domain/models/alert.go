package models

import "time"

// AlertType identifies the expiry rule that raised an alert.
type AlertType string

const (
	AlertLicenseExpiry   AlertType = "license_expiry"
	AlertInsuranceExpiry AlertType = "insurance_expiry"
	AlertFCExpiry        AlertType = "fc_expiry"
)

// Alert lifecycle statuses.
const (
	AlertStatusActive   = "active"
	AlertStatusInactive = "inactive"
)

// AlertSeverityWarning is the only severity expiry rules emit.
const AlertSeverityWarning = "warning"

// Alert is a dashboard notice about an expiring document. Exactly one of
// EmployeeID or TruckID is set.
type Alert struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	Type           AlertType `bson:"type" json:"type"`
	EmployeeID     string    `bson:"employee_id,omitempty" json:"employee_id,omitempty"`
	EmployeeNumber string    `bson:"employee_number,omitempty" json:"employee_number,omitempty"`
	TruckID        string    `bson:"truck_id,omitempty" json:"truck_id,omitempty"`
	TruckNumber    string    `bson:"truck_number,omitempty" json:"truck_number,omitempty"`
	Severity       string    `bson:"severity" json:"severity"`
	Title          string    `bson:"title" json:"title"`
	Message        string    `bson:"message" json:"message"`
	Status         string    `bson:"status" json:"status"`
	AlertDate      time.Time `bson:"alert_date" json:"alert_date"`
}

// SubjectID returns the employee or truck the alert is about.
func (a Alert) SubjectID() string {
	if a.EmployeeID != "" {
		return a.EmployeeID
	}
	return a.TruckID
}
