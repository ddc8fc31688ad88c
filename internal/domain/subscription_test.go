package domain

import (
	"errors"
	"testing"
)

func TestParseCabinClassFromString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    CabinClass
		wantErr bool
	}{
		{name: "economy", input: "M", want: CabinEconomy},
		{name: "lowercase with spaces", input: " c ", want: CabinBusiness},
		{name: "empty means any", input: "", want: CabinAny},
		{name: "invalid", input: "Z", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseCabinClassFromString(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("ParseCabinClassFromString() error = %v, want ErrValidation", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseCabinClassFromString() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseCabinClassFromString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSubscriptionValidate(t *testing.T) {
	t.Parallel()

	base := Subscription{
		FlyFrom:        "NYC",
		FlyTo:          "LAX",
		DateFrom:       "2025-06-01",
		ReturnFrom:     "2025-06-10",
		Adults:         1,
		SelectedCabins: CabinEconomy,
		Currency:       "USD",
		PriceTo:        200,
		Limit:          10,
	}

	tests := []struct {
		name    string
		mutate  func(*Subscription)
		wantErr bool
	}{
		{
			name:   "valid subscription",
			mutate: func(s *Subscription) {},
		},
		{
			name: "missing origin",
			mutate: func(s *Subscription) {
				s.FlyFrom = " "
			},
			wantErr: true,
		},
		{
			name: "missing destination",
			mutate: func(s *Subscription) {
				s.FlyTo = ""
			},
			wantErr: true,
		},
		{
			name: "missing departure date",
			mutate: func(s *Subscription) {
				s.DateFrom = ""
			},
			wantErr: true,
		},
		{
			name: "no adults",
			mutate: func(s *Subscription) {
				s.Adults = 0
			},
			wantErr: true,
		},
		{
			name: "negative children",
			mutate: func(s *Subscription) {
				s.Children = -1
			},
			wantErr: true,
		},
		{
			name: "invalid cabin",
			mutate: func(s *Subscription) {
				s.SelectedCabins = CabinClass("Y")
			},
			wantErr: true,
		},
		{
			name: "no cabin preference accepted",
			mutate: func(s *Subscription) {
				s.SelectedCabins = CabinAny
			},
		},
		{
			name: "zero price ceiling",
			mutate: func(s *Subscription) {
				s.PriceTo = 0
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			current := base
			tt.mutate(&current)

			err := current.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("Validate() error = %v, want ErrValidation", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Validate() unexpected error = %v", err)
			}
		})
	}
}
