package models

// AnalyticsQuery selects the trips an analytics report is computed over.
type AnalyticsQuery struct {
	Days     int
	TruckID  string
	DriverID string
	Region   string
}

// AnalyticsReport is the dashboard payload served under "analytics".
type AnalyticsReport struct {
	Summary              AnalyticsSummary  `json:"summary"`
	ProfitTrends         []ProfitPoint     `json:"profit_trends"`
	FuelUsage            []TruckFuelUsage  `json:"fuel_usage"`
	FuelEfficiency       []EfficiencyPoint `json:"fuel_efficiency"`
	HighPerformingTrucks []TruckStats      `json:"high_performing_trucks"`
}

// AnalyticsSummary totals completed trips in the window.
type AnalyticsSummary struct {
	TotalTrips         int     `json:"total_trips"`
	TotalDistance      float64 `json:"total_distance"`
	TotalRevenue       float64 `json:"total_revenue"`
	TotalFuelCost      float64 `json:"total_fuel_cost"`
	TotalFuelConsumed  float64 `json:"total_fuel_consumed"`
	TotalOtherExpenses float64 `json:"total_other_expenses"`
	TotalProfit        float64 `json:"total_profit"`
	AvgFuelEfficiency  float64 `json:"avg_fuel_efficiency"`
}

// ProfitPoint is one calendar day of the profit trend.
type ProfitPoint struct {
	Date     string  `json:"date"`
	Profit   float64 `json:"profit"`
	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
}

// EfficiencyPoint is one calendar day of distance per unit of fuel.
type EfficiencyPoint struct {
	Date       string  `json:"date"`
	Efficiency float64 `json:"efficiency"`
}

// TruckFuelUsage is the fuel one truck consumed over the window.
type TruckFuelUsage struct {
	TruckNumber  string  `json:"truck_number"`
	FuelConsumed float64 `json:"fuel_consumed"`
}

// TruckStats ranks a truck by the profit of its completed trips.
type TruckStats struct {
	TruckNumber      string  `json:"truck_number"`
	Trips            int     `json:"trips"`
	Revenue          float64 `json:"revenue"`
	Profit           float64 `json:"profit"`
	Distance         float64 `json:"distance"`
	AvgProfitPerTrip float64 `json:"avg_profit_per_trip"`
}

// FilterOption is one selectable dashboard filter value.
type FilterOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// DashboardFilters lists the values the analytics filters accept.
type DashboardFilters struct {
	Trucks  []FilterOption `json:"trucks"`
	Drivers []FilterOption `json:"drivers"`
	Regions []FilterOption `json:"regions"`
}
