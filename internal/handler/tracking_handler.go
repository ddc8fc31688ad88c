package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/flightme/flightme/internal/domain"
	"github.com/flightme/flightme/internal/flights"
	"github.com/gofiber/fiber/v2"
)

const (
	unsubscribeSuccessPath = "/unsubscribed/success"
	unsubscribeFailurePath = "/unsubscribed/unsuccessful"
)

type TrackingService interface {
	Subscribe(ctx context.Context, phoneNumber string, sub domain.Subscription) error
	Unsubscribe(ctx context.Context, phoneNumber string, subscriptionID int) error
	Sweep(ctx context.Context) error
	SearchLocations(ctx context.Context, term string) []flights.Location
}

type TrackingHandler struct {
	service TrackingService
}

func NewTrackingHandler(service TrackingService) (*TrackingHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("tracking service is required")
	}
	return &TrackingHandler{service: service}, nil
}

func RegisterTrackingRoutes(router fiber.Router, service TrackingService) error {
	h, err := NewTrackingHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/subscriptions", h.CreateSubscription)
	v1.Post("/alerts/dispatch", h.DispatchAlerts)
	v1.Get("/locations", h.SearchLocations)

	// Public links embedded in text messages.
	router.Get("/unsubscribe", h.Unsubscribe)
	router.Get("/unsubscribed/:status", h.UnsubscribedPage)

	return nil
}

type createSubscriptionRequest struct {
	PhoneNumber    string `json:"phoneNumber"`
	FlyFrom        string `json:"flyFrom"`
	FlyTo          string `json:"flyTo"`
	DateFrom       string `json:"dateFrom"`
	ReturnFrom     string `json:"returnFrom"`
	Adults         int    `json:"adults"`
	Children       int    `json:"children"`
	Infants        int    `json:"infants"`
	SelectedCabins string `json:"selectedCabins"`
	NonStop        bool   `json:"nonStop"`
	Currency       string `json:"currency"`
	PriceTo        int    `json:"priceTo"`
	Limit          int    `json:"limit"`
}

type locationResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	SubdivisionName string `json:"subdivisionName,omitempty"`
	CountryName     string `json:"countryName,omitempty"`
	Type            string `json:"type"`
}

func (h *TrackingHandler) CreateSubscription(c *fiber.Ctx) error {
	var req createSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	sub, err := requestToDomainSubscription(req)
	if err != nil {
		return toHTTPError(err)
	}

	if err := h.service.Subscribe(c.Context(), strings.TrimSpace(req.PhoneNumber), sub); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "subscribed",
	})
}

// Unsubscribe handles the link delivered inside alert texts. Browsers follow
// it blind, so every outcome is a redirect to a human-readable page rather
// than a JSON error.
func (h *TrackingHandler) Unsubscribe(c *fiber.Ctx) error {
	phone := strings.TrimSpace(c.Query("phone"))
	rawSID := strings.TrimSpace(c.Query("sid"))
	if phone == "" || rawSID == "" {
		return c.Redirect(unsubscribeFailurePath, fiber.StatusFound)
	}

	sid, err := strconv.Atoi(rawSID)
	if err != nil {
		return c.Redirect(unsubscribeFailurePath, fiber.StatusFound)
	}

	if err := h.service.Unsubscribe(c.Context(), phone, sid); err != nil {
		return c.Redirect(unsubscribeFailurePath, fiber.StatusFound)
	}

	return c.Redirect(unsubscribeSuccessPath, fiber.StatusFound)
}

func (h *TrackingHandler) UnsubscribedPage(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	if c.Params("status") == "success" {
		return c.SendString("<html><body><h1>You are unsubscribed.</h1><p>You will no longer receive alerts for this flight.</p></body></html>")
	}
	return c.SendString("<html><body><h1>Something went wrong.</h1><p>We could not process your unsubscribe request. Please try the link again.</p></body></html>")
}

func (h *TrackingHandler) DispatchAlerts(c *fiber.Ctx) error {
	if err := h.service.Sweep(c.Context()); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "completed",
	})
}

func (h *TrackingHandler) SearchLocations(c *fiber.Ctx) error {
	term := strings.TrimSpace(c.Query("term"))
	if term == "" {
		return toHTTPError(fmt.Errorf("%w: term is required", domain.ErrValidation))
	}

	locations := h.service.SearchLocations(c.Context(), term)
	responses := make([]locationResponse, 0, len(locations))
	for _, location := range locations {
		responses = append(responses, locationResponse{
			ID:              location.ID,
			Name:            location.Name,
			SubdivisionName: location.SubdivisionName,
			CountryName:     location.CountryName,
			Type:            location.Type,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": responses,
	})
}

func requestToDomainSubscription(req createSubscriptionRequest) (domain.Subscription, error) {
	cabin, err := domain.ParseCabinClassFromString(req.SelectedCabins)
	if err != nil {
		return domain.Subscription{}, err
	}

	return domain.Subscription{
		FlyFrom:        strings.TrimSpace(req.FlyFrom),
		FlyTo:          strings.TrimSpace(req.FlyTo),
		DateFrom:       strings.TrimSpace(req.DateFrom),
		ReturnFrom:     strings.TrimSpace(req.ReturnFrom),
		Adults:         req.Adults,
		Children:       req.Children,
		Infants:        req.Infants,
		SelectedCabins: cabin,
		NonStop:        req.NonStop,
		Currency:       strings.ToUpper(strings.TrimSpace(req.Currency)),
		PriceTo:        req.PriceTo,
		Limit:          req.Limit,
	}, nil
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}
