package models

import "time"

// StandingCharge is a daily fixed charge effective from StartDate.
type StandingCharge struct {
	StartDate time.Time `json:"start_date"`
	Pence     float64   `json:"standing_charge_pence"`
}

// UnitPrice is a per-kWh price effective from EffectiveTime.
type UnitPrice struct {
	EffectiveTime time.Time `json:"price_effective_time"`
	Pence         float64   `json:"unit_price_pence"`
}

// TariffPlan is an opaque provider plan document. Plan holds the provider's
// JSON verbatim; prices are extracted from it at read time.
type TariffPlan struct {
	TariffID      string    `json:"tariff_id"`
	Plan          string    `json:"plan"`
	EffectiveDate time.Time `json:"effective_date"`
	DisplayName   string    `json:"display_name"`
}

// TariffData is the union a provider returns for one utility.
type TariffData struct {
	StandingCharges []StandingCharge `json:"standing_charges"`
	UnitPrices      []UnitPrice      `json:"unit_prices"`
	Plans           []TariffPlan     `json:"plans"`
}

// TariffHistory is the collapsed charge/price series served to the UI.
type TariffHistory struct {
	StandingCharges []StandingCharge `json:"standing_charges"`
	UnitPrices      []UnitPrice      `json:"unit_prices"`
}
