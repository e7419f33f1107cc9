package models

// Collection names as stored in the document database.
const (
	CollectionTrucks         = "trucks"
	CollectionEmployees      = "employees"
	CollectionTrips          = "trips"
	CollectionSubTrips       = "subtrips"
	CollectionExpenses       = "expenses"
	CollectionClientPayments = "client_payments"
	CollectionAlerts         = "alerts"
)

// FieldID is the primary key of every stored document.
const FieldID = "_id"

// Truck statuses. Retired trucks keep the capitalised value historical
// records were written with.
const (
	TruckStatusActive   = "active"
	TruckStatusInactive = "Inactive"
)

// Employee statuses.
const (
	EmployeeStatusActive   = "active"
	EmployeeStatusInactive = "inactive"
)

// PositionDriver marks employees that can be assigned to trips.
const PositionDriver = "driver"

// Trip statuses.
const (
	TripStatusPlanned   = "planned"
	TripStatusCompleted = "completed"
	TripStatusCancelled = "cancelled"
)

// Expense statuses.
const (
	ExpenseStatusPending   = "pending"
	ExpenseStatusCancelled = "cancelled"
)

// ClientPaymentStatusCancelled marks a withdrawn payment record.
const ClientPaymentStatusCancelled = "cancelled"

// Trip and sub-trip document fields referenced outside the CRUD layer.
const (
	FieldTripID        = "trip_id"
	FieldTruckID       = "truck_id"
	FieldDriverID      = "driver_id"
	FieldStatus        = "status"
	FieldType          = "type"
	FieldRegion        = "region"
	FieldPosition      = "position"
	FieldStartDate     = "start_date"
	FieldRevenue       = "revenue"
	FieldCost          = "cost"
	FieldDistanceKm    = "distance_km"
	FieldFuelCost      = "fuel_cost"
	FieldFuelConsumed  = "fuel_consumed"
	FieldOtherExpenses = "other_expenses"
	FieldTruckNumber   = "truck_number"
	FieldClientName    = "client_name"
	FieldFirstName     = "first_name"
	FieldLastName      = "last_name"
	FieldEmployeeNum   = "employee_number"
	FieldLicenseExpiry = "license_expiry"
	FieldInsuranceExp  = "insurance_expiry"
	FieldFCExpiry      = "fc_expiry"
	FieldViews         = "views"
)
