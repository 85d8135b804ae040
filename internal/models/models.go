package models

import "fmt"

// Utility identifies an energy stream.
type Utility string

const (
	UtilityElectricity Utility = "electricity"
	UtilityGas         Utility = "gas"
)

// Utilities lists the supported streams in the order they are synced.
func Utilities() []Utility {
	return []Utility{UtilityElectricity, UtilityGas}
}

// ParseUtility validates a utility name from user input.
func ParseUtility(s string) (Utility, error) {
	switch Utility(s) {
	case UtilityElectricity:
		return UtilityElectricity, nil
	case UtilityGas:
		return UtilityGas, nil
	default:
		return "", fmt.Errorf("unknown utility %q", s)
	}
}
