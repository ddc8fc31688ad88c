package domain

// FlightOffer is one flight returned by the search provider for a
// subscription. Offers are ephemeral: produced per sweep, never persisted.
type FlightOffer struct {
	ID          string
	FlyFrom     string
	FlyTo       string
	CityFrom    string
	CityTo      string
	CountryFrom string
	CountryTo   string
	Price       float64
	DeepLink    string
}
