package domain

import (
	"fmt"
	"strings"
)

// CabinClass represents the requested travel cabin.
type CabinClass string

const (
	CabinEconomy        CabinClass = "M"
	CabinPremiumEconomy CabinClass = "W"
	CabinBusiness       CabinClass = "C"
	CabinFirst          CabinClass = "F"
	// CabinAny means no cabin preference and is omitted from provider queries.
	CabinAny CabinClass = ""
)

func (c CabinClass) String() string { return string(c) }

func (c CabinClass) IsValid() bool {
	switch c {
	case CabinEconomy, CabinPremiumEconomy, CabinBusiness, CabinFirst, CabinAny:
		return true
	}
	return false
}

func ParseCabinClassFromString(s string) (CabinClass, error) {
	c := CabinClass(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: invalid cabin class %q", ErrValidation, s)
	}
	return c, nil
}

// Subscription is a single price watch owned by a phone record. ID is unique
// within the owning record and never reused after removal.
type Subscription struct {
	ID             int        `json:"id"`
	FlyFrom        string     `json:"fly_from"`
	FlyTo          string     `json:"fly_to"`
	DateFrom       string     `json:"date_from"`
	ReturnFrom     string     `json:"return_from"`
	Adults         int        `json:"adults"`
	Children       int        `json:"children"`
	Infants        int        `json:"infants"`
	SelectedCabins CabinClass `json:"selected_cabins"`
	NonStop        bool       `json:"non_stop"`
	Currency       string     `json:"curr"`
	PriceTo        int        `json:"price_to"`
	Limit          int        `json:"limit"`
}

func (s *Subscription) Validate() error {
	if strings.TrimSpace(s.FlyFrom) == "" {
		return fmt.Errorf("%w: origin is required", ErrValidation)
	}
	if strings.TrimSpace(s.FlyTo) == "" {
		return fmt.Errorf("%w: destination is required", ErrValidation)
	}
	if strings.TrimSpace(s.DateFrom) == "" {
		return fmt.Errorf("%w: departure date is required", ErrValidation)
	}
	if s.Adults < 1 {
		return fmt.Errorf("%w: at least one adult is required", ErrValidation)
	}
	if s.Children < 0 || s.Infants < 0 {
		return fmt.Errorf("%w: passenger counts must not be negative", ErrValidation)
	}
	if !s.SelectedCabins.IsValid() {
		return fmt.Errorf("%w: invalid cabin class %q", ErrValidation, s.SelectedCabins)
	}
	if s.PriceTo <= 0 {
		return fmt.Errorf("%w: price ceiling must be positive", ErrValidation)
	}
	if s.Limit < 0 {
		return fmt.Errorf("%w: result limit must not be negative", ErrValidation)
	}
	return nil
}
