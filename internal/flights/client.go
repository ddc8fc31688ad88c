package flights

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/flightme/flightme/internal/domain"
	"github.com/go-resty/resty/v2"
)

const (
	defaultAPITimeout    = 15 * time.Second
	locationSearchLimit  = 50
	searchEndpoint       = "/v2/search"
	locationsEndpoint    = "/locations/query"
	apiKeyHeader         = "apikey"
	defaultSearchLocale  = "en"
	defaultSearchSorting = "price"
)

var locationTypes = []string{"city", "country", "airport", "subdivision"}

// Location is a city/airport lookup result used by the search form.
type Location struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	SubdivisionName string `json:"subdivisionName,omitempty"`
	CountryName     string `json:"countryName,omitempty"`
	Type            string `json:"type"`
}

// Client talks to a Tequila-style flight search API.
type Client struct {
	client *resty.Client
	apiKey string
}

func NewClient(baseURL, apiKey string) (*Client, error) {
	client := resty.New()
	client.SetTimeout(defaultAPITimeout)
	client.SetRetryCount(0)

	return NewClientWithClient(baseURL, apiKey, client)
}

func NewClientWithClient(baseURL, apiKey string, client *resty.Client) (*Client, error) {
	trimmedBaseURL := strings.TrimSpace(baseURL)
	if trimmedBaseURL == "" {
		return nil, fmt.Errorf("flight api base url is required")
	}
	if _, err := url.ParseRequestURI(trimmedBaseURL); err != nil {
		return nil, fmt.Errorf("invalid flight api base url: %w", err)
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("flight api key is required")
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultAPITimeout)
	}
	client.SetBaseURL(trimmedBaseURL)
	client.SetRetryCount(0)

	return &Client{
		client: client,
		apiKey: apiKey,
	}, nil
}

type countryRef struct {
	Name string `json:"name"`
}

type searchOffer struct {
	ID          string     `json:"id"`
	FlyFrom     string     `json:"flyFrom"`
	FlyTo       string     `json:"flyTo"`
	CityFrom    string     `json:"cityFrom"`
	CityTo      string     `json:"cityTo"`
	CountryFrom countryRef `json:"countryFrom"`
	CountryTo   countryRef `json:"countryTo"`
	Price       float64    `json:"price"`
	DeepLink    string     `json:"deep_link"`
}

type searchResponse struct {
	Data []searchOffer `json:"data"`
}

// Search runs one exact-date flight search for a subscription. Departure and
// return dates are pinned as both the lower and upper bound, and results are
// requested sorted by ascending price so callers can take a cheap top-N.
func (c *Client) Search(ctx context.Context, sub domain.Subscription) ([]domain.FlightOffer, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("flight client is not initialized")
	}

	params := url.Values{}
	params.Set("fly_from", sub.FlyFrom)
	params.Set("fly_to", sub.FlyTo)
	params.Set("date_from", sub.DateFrom)
	params.Set("date_to", sub.DateFrom)
	params.Set("return_from", sub.ReturnFrom)
	params.Set("return_to", sub.ReturnFrom)
	params.Set("adults", strconv.Itoa(sub.Adults))
	params.Set("children", strconv.Itoa(sub.Children))
	params.Set("infants", strconv.Itoa(sub.Infants))
	params.Set("curr", sub.Currency)
	params.Set("price_to", strconv.Itoa(sub.PriceTo))
	params.Set("limit", strconv.Itoa(sub.Limit))
	params.Set("locale", defaultSearchLocale)
	params.Set("sort", defaultSearchSorting)
	if sub.SelectedCabins != domain.CabinAny {
		params.Set("selected_cabins", sub.SelectedCabins.String())
	}
	if sub.NonStop {
		params.Set("max_stopovers", "0")
	}

	var result searchResponse
	response, err := c.client.R().
		SetContext(ctx).
		SetHeader(apiKeyHeader, c.apiKey).
		SetQueryParamsFromValues(params).
		SetResult(&result).
		Get(searchEndpoint)
	if err := classifyResponse(response, err); err != nil {
		return nil, err
	}

	offers := make([]domain.FlightOffer, 0, len(result.Data))
	for _, offer := range result.Data {
		offers = append(offers, domain.FlightOffer{
			ID:          offer.ID,
			FlyFrom:     offer.FlyFrom,
			FlyTo:       offer.FlyTo,
			CityFrom:    offer.CityFrom,
			CityTo:      offer.CityTo,
			CountryFrom: offer.CountryFrom.Name,
			CountryTo:   offer.CountryTo.Name,
			Price:       offer.Price,
			DeepLink:    offer.DeepLink,
		})
	}

	return offers, nil
}

type locationRef struct {
	Name    string              `json:"name"`
	Country *locationRefCountry `json:"country,omitempty"`
}

type locationRefCountry struct {
	Name string `json:"name"`
}

type locationEntry struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Type        string       `json:"type"`
	Subdivision *locationRef `json:"subdivision,omitempty"`
	Country     *locationRef `json:"country,omitempty"`
	City        *locationRef `json:"city,omitempty"`
}

type locationsResponse struct {
	Locations []locationEntry `json:"locations"`
}

// SearchLocations looks up cities, countries, airports and subdivisions
// matching a free-text term, for the search form's route pickers.
func (c *Client) SearchLocations(ctx context.Context, term string) ([]Location, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("flight client is not initialized")
	}

	params := url.Values{}
	params.Set("term", term)
	params.Set("limit", strconv.Itoa(locationSearchLimit))
	params.Set("active_only", "true")
	for _, locationType := range locationTypes {
		params.Add("location_types", locationType)
	}

	var result locationsResponse
	response, err := c.client.R().
		SetContext(ctx).
		SetHeader(apiKeyHeader, c.apiKey).
		SetQueryParamsFromValues(params).
		SetResult(&result).
		Get(locationsEndpoint)
	if err := classifyResponse(response, err); err != nil {
		return nil, err
	}

	locations := make([]Location, 0, len(result.Locations))
	for _, entry := range result.Locations {
		location := Location{
			ID:   entry.ID,
			Name: entry.Name,
			Type: entry.Type,
		}
		if entry.Subdivision != nil {
			location.SubdivisionName = entry.Subdivision.Name
		}
		switch {
		case entry.Country != nil:
			location.CountryName = entry.Country.Name
		case entry.City != nil && entry.City.Country != nil:
			location.CountryName = entry.City.Country.Name
		}
		locations = append(locations, location)
	}

	return locations, nil
}

func classifyResponse(response *resty.Response, err error) error {
	if err != nil {
		return &ProviderError{
			Message:   "flight api request failed",
			Transient: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}
	if response == nil {
		return &ProviderError{
			Message:   "flight api returned empty response",
			Transient: true,
		}
	}

	statusCode := response.StatusCode()
	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return nil
	}

	return &ProviderError{
		StatusCode: statusCode,
		Message:    fmt.Sprintf("flight api returned status %d", statusCode),
		Transient:  isTransientHTTPStatus(statusCode),
	}
}

func isTransientHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || (statusCode >= http.StatusInternalServerError && statusCode <= 599)
}
