package models

import "time"

// ConsumptionErrorValue is the sentinel some DCC-sourced meters report when a
// reading could not be taken. Rows carrying it are stored but excluded from
// every read and aggregate.
const ConsumptionErrorValue = 16777.215

// ConsumptionRecord is one metered interval reading in kWh.
type ConsumptionRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// DailyTotal is the summed consumption for one calendar day.
type DailyTotal struct {
	Date  time.Time `json:"date"`
	Total float64   `json:"total"`
}

// MonthlyTotal is the summed consumption for one calendar month.
type MonthlyTotal struct {
	Month string  `json:"month"` // YYYY-MM
	Total float64 `json:"total"`
}

// DailyCost is the derived spend for one calendar day in pence.
type DailyCost struct {
	Date      time.Time `json:"date"`
	CostPence float64   `json:"cost_pence"`
}
