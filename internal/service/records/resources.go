package records

import (
	"time"

	"github.com/mamadbah2/fleetbook/internal/domain/models"
)

// FieldKind controls how an incoming value is coerced before storage.
type FieldKind int

const (
	// Text fields must be strings.
	Text FieldKind = iota
	// Number fields are parsed leniently; unparseable input stores 0.
	Number
	// Date fields accept YYYY-MM-DD or RFC3339 and are stored as dates.
	Date
	// Raw fields are stored as received.
	Raw
)

// Resource describes one collection served through the generic CRUD
// operations.
type Resource struct {
	Name       string
	Collection string
	Fields     map[string]FieldKind
	Required   []string
	Unique     []string
	// UniqueMessages overrides the duplicate error for a unique field.
	UniqueMessages map[string]string
	// Updatable limits the fields accepted on update; nil accepts all Fields.
	Updatable   []string
	NonNegative []string
	// Formats maps fields to validator tags checked on write.
	Formats     map[string]string
	Defaults    map[string]func(now time.Time) any
	ListFilters []string
	// DateRange is the field the start_date/end_date list parameters bound.
	DateRange string
	// DateOrder names a pair of fields where the first may not be after the
	// second.
	DateOrder     [2]string
	DeletedStatus string
	Timestamps    bool
}

func constant(v any) func(time.Time) any {
	return func(time.Time) any { return v }
}

func stamp(now time.Time) any { return now }

func (r Resource) updatable(field string) bool {
	if _, ok := r.Fields[field]; !ok {
		return false
	}
	if r.Updatable == nil {
		return true
	}
	for _, f := range r.Updatable {
		if f == field {
			return true
		}
	}
	return false
}

// Trucks is the fleet vehicle register.
var Trucks = Resource{
	Name:       "Truck",
	Collection: models.CollectionTrucks,
	Fields: map[string]FieldKind{
		"truck_number":     Text,
		"make":             Text,
		"model":            Text,
		"year":             Raw,
		"license_plate":    Text,
		"insurance_expiry": Date,
		"insurance_number": Text,
		"fc_number":        Text,
		"fc_expiry":        Date,
		"vin":              Text,
		"fuel_capacity":    Raw,
		"status":           Text,
		"region":           Text,
	},
	Required: []string{
		"truck_number", "make", "model", "year", "license_plate", "insurance_expiry",
		"vin", "fuel_capacity", "fc_expiry", "fc_number", "insurance_number",
	},
	Unique:        []string{"truck_number", "license_plate", "vin"},
	Defaults:      map[string]func(time.Time) any{"status": constant(models.TruckStatusActive), "views": constant(int64(0))},
	ListFilters:   []string{"status", "region"},
	DeletedStatus: models.TruckStatusInactive,
}

// Employees holds drivers and other staff.
var Employees = Resource{
	Name:       "Employee",
	Collection: models.CollectionEmployees,
	Fields: map[string]FieldKind{
		"employee_number":         Text,
		"first_name":              Text,
		"last_name":               Text,
		"position":                Text,
		"email":                   Text,
		"phone":                   Text,
		"hire_date":               Date,
		"license_number":          Text,
		"license_expiry":          Date,
		"emergency_contact_name":  Text,
		"emergency_contact_phone": Text,
		"salary":                  Raw,
		"status":                  Text,
		"region":                  Text,
		"notes":                   Text,
	},
	Required: []string{"employee_number", "first_name", "last_name", "position", "email", "phone"},
	Unique:   []string{"employee_number", "email"},
	Formats:  map[string]string{"email": "email"},
	Defaults: map[string]func(time.Time) any{
		"status":    constant(models.EmployeeStatusActive),
		"hire_date": stamp,
	},
	ListFilters:   []string{"position", "region", "status"},
	DeletedStatus: models.EmployeeStatusInactive,
	Timestamps:    true,
}

// Trips are truck journeys. Revenue is absent from Fields: it is owned by
// the sub-trip reconciliation.
var Trips = Resource{
	Name:       "Trip",
	Collection: models.CollectionTrips,
	Fields: map[string]FieldKind{
		"trip_number":    Text,
		"truck_id":       Text,
		"driver_id":      Text,
		"start_date":     Date,
		"end_date":       Date,
		"distance_km":    Number,
		"mileage":        Number,
		"fuel_consumed":  Number,
		"fuel_cost":      Number,
		"toll":           Number,
		"rto":            Number,
		"adblue":         Number,
		"driver_salary":  Number,
		"labour_charges": Number,
		"extra_expense":  Number,
		"other_expenses": Number,
		"profit":         Number,
		"status":         Text,
		"notes":          Text,
	},
	Required: []string{"trip_number", "truck_id", "driver_id", "start_date"},
	Unique:   []string{"trip_number"},
	Defaults: map[string]func(time.Time) any{
		"status":  constant(models.TripStatusPlanned),
		"revenue": constant(0.0),
	},
	ListFilters:   []string{"truck_id", "driver_id", "status"},
	DateRange:     models.FieldStartDate,
	DateOrder:     [2]string{"start_date", "end_date"},
	DeletedStatus: models.TripStatusCancelled,
}

// SubTrips are the billable legs of a trip.
var SubTrips = Resource{
	Name:       "Sub Trip",
	Collection: models.CollectionSubTrips,
	Fields: map[string]FieldKind{
		"date":         Date,
		"end_date":     Date,
		"origin":       Text,
		"destination":  Text,
		"client_name":  Text,
		"cargo_weight": Number,
		"cost":         Number,
	},
	Required:    []string{"date", "end_date", "origin", "destination", "client_name", "cargo_weight", "cost"},
	NonNegative: []string{"cargo_weight", "cost"},
	DateOrder:   [2]string{"date", "end_date"},
}

// Expenses are operating costs optionally tied to a truck or trip.
var Expenses = Resource{
	Name:       "Expense",
	Collection: models.CollectionExpenses,
	Fields: map[string]FieldKind{
		"expense_number": Text,
		"truck_id":       Text,
		"trip_id":        Text,
		"category":       Text,
		"amount":         Number,
		"expense_date":   Date,
		"vendor_name":    Text,
		"receipt_number": Text,
		"payment_method": Text,
		"location":       Text,
		"description":    Text,
		"status":         Text,
		"submitted_date": Date,
		"approved_date":  Date,
	},
	Required:      []string{"expense_number", "category", "amount", "expense_date"},
	Unique:        []string{"expense_number"},
	NonNegative:   []string{"amount"},
	Defaults:      map[string]func(time.Time) any{"status": constant(models.ExpenseStatusPending)},
	ListFilters:   []string{"truck_id", "category", "status"},
	DateRange:     "expense_date",
	DeletedStatus: models.ExpenseStatusCancelled,
}

// ClientPayments track what each client owes. One record per client name.
var ClientPayments = Resource{
	Name:       "Client payment",
	Collection: models.CollectionClientPayments,
	Fields: map[string]FieldKind{
		"client_name":     Text,
		"cost":            Number,
		"advance_payment": Number,
		"balance":         Number,
		"status":          Text,
	},
	Required:       []string{"client_name", "cost", "advance_payment", "balance", "status"},
	Unique:         []string{"client_name"},
	UniqueMessages: map[string]string{"client_name": "Payment for this client already exists"},
	Updatable:      []string{"advance_payment", "balance", "status"},
	ListFilters:    []string{"status", "client_name"},
	DeletedStatus:  models.ClientPaymentStatusCancelled,
	Timestamps:     true,
}
