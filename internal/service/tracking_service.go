package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/flightme/flightme/internal/domain"
	"github.com/flightme/flightme/internal/flights"
	"github.com/flightme/flightme/internal/observability"
	"github.com/flightme/flightme/internal/ratelimit"
	"github.com/flightme/flightme/internal/repository"
	"github.com/flightme/flightme/internal/sms"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	minSweepConcurrency = 1
	maxLinksPerMessage  = 3
	// maxWriteAttempts bounds the optimistic-concurrency retry loop around
	// the record read-modify-write in Subscribe and Unsubscribe.
	maxWriteAttempts = 3

	smsRateKey            = "sms"
	productionEnvironment = "production"
)

// FlightAPI is the outbound flight search port.
type FlightAPI interface {
	Search(ctx context.Context, sub domain.Subscription) ([]domain.FlightOffer, error)
	SearchLocations(ctx context.Context, term string) ([]flights.Location, error)
}

// LinkShortener turns an absolute URL into a short one; best-effort.
type LinkShortener interface {
	Shorten(ctx context.Context, longURL string) (string, error)
}

// MessageSender delivers one text message to a phone number.
type MessageSender interface {
	SendMessage(ctx context.Context, to, body string) (*sms.Receipt, error)
}

// TrackingService owns subscription lifecycle and the price-tracking sweep.
// It is stateless between calls; every operation re-reads the store.
type TrackingService struct {
	records     repository.PhoneRecordRepository
	flightAPI   FlightAPI
	shortener   LinkShortener
	sender      MessageSender
	rateLimiter ratelimit.RateLimiter
	logger      *zap.Logger
	metrics     *observability.Metrics

	baseURL     string
	environment string
	concurrency int
	now         func() time.Time
}

func NewTrackingService(
	records repository.PhoneRecordRepository,
	flightAPI FlightAPI,
	shortener LinkShortener,
	sender MessageSender,
	rateLimiter ratelimit.RateLimiter,
	baseURL string,
	environment string,
	concurrency int,
	logger *zap.Logger,
) (*TrackingService, error) {
	if records == nil {
		return nil, fmt.Errorf("phone record repository is required")
	}
	if flightAPI == nil {
		return nil, fmt.Errorf("flight api client is required")
	}
	if shortener == nil {
		return nil, fmt.Errorf("link shortener is required")
	}
	if sender == nil {
		return nil, fmt.Errorf("message sender is required")
	}
	if rateLimiter == nil {
		return nil, fmt.Errorf("rate limiter is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("app base url is required")
	}
	if concurrency < minSweepConcurrency {
		concurrency = minSweepConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TrackingService{
		records:     records,
		flightAPI:   flightAPI,
		shortener:   shortener,
		sender:      sender,
		rateLimiter: rateLimiter,
		logger:      logger,
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		environment: strings.ToLower(strings.TrimSpace(environment)),
		concurrency: concurrency,
		now:         time.Now,
	}, nil
}

func (s *TrackingService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Subscribe adds one price watch for a phone number, creating the phone
// record on first use. Lost optimistic-concurrency races are retried with a
// fresh read.
func (s *TrackingService) Subscribe(ctx context.Context, phoneNumber string, sub domain.Subscription) error {
	if ctx == nil {
		ctx = context.Background()
	}

	phoneNumber = strings.TrimSpace(phoneNumber)
	if phoneNumber == "" {
		return fmt.Errorf("%w: phone number is required", domain.ErrValidation)
	}
	if err := sub.Validate(); err != nil {
		return err
	}

	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		record, err := s.records.GetByPhoneNumber(ctx, phoneNumber)
		if errors.Is(err, domain.ErrNotFound) {
			record = &domain.PhoneSubscriptionRecord{
				ID:          uuid.NewString(),
				PhoneNumber: phoneNumber,
			}
			record.Append(sub)
			return s.records.Create(ctx, record)
		}
		if err != nil {
			return fmt.Errorf("failed to look up phone record: %w", err)
		}

		record.Append(sub)
		err = s.records.Replace(ctx, record)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("subscribe lost a write race, retrying",
				zap.String("phoneNumber", phoneNumber),
				zap.Int("attempt", attempt),
			)
			continue
		}
		return fmt.Errorf("failed to replace phone record: %w", err)
	}

	return fmt.Errorf("%w: subscribe for %s kept losing write races", domain.ErrConflict, phoneNumber)
}

// Unsubscribe removes one price watch. It is idempotent: an unknown phone
// number or subscription id, or a record that vanished mid-write, is a no-op.
// The phone record is deleted outright when its last subscription goes.
func (s *TrackingService) Unsubscribe(ctx context.Context, phoneNumber string, subscriptionID int) error {
	if ctx == nil {
		ctx = context.Background()
	}

	phoneNumber = strings.TrimSpace(phoneNumber)
	if phoneNumber == "" {
		return fmt.Errorf("%w: phone number is required", domain.ErrValidation)
	}

	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		record, err := s.records.GetByPhoneNumber(ctx, phoneNumber)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to look up phone record: %w", err)
		}

		if !record.Remove(subscriptionID) {
			return nil
		}

		if record.Empty() {
			err = s.records.Delete(ctx, record)
		} else {
			err = s.records.Replace(ctx, record)
		}
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrNotFound) {
			// Record vanished concurrently; the subscription is already gone.
			return nil
		}
		if errors.Is(err, domain.ErrConflict) {
			s.logger.Warn("unsubscribe lost a write race, retrying",
				zap.String("phoneNumber", phoneNumber),
				zap.Int("subscriptionId", subscriptionID),
				zap.Int("attempt", attempt),
			)
			continue
		}
		return fmt.Errorf("failed to write phone record: %w", err)
	}

	return fmt.Errorf("%w: unsubscribe for %s kept losing write races", domain.ErrConflict, phoneNumber)
}

// Sweep checks every persisted subscription against the flight API and texts
// matches. Records fan out across a bounded worker pool; subscriptions within
// one record run sequentially. Each (record, subscription) unit is its own
// failure domain: a provider or transport failure is logged and the sweep
// moves on.
func (s *TrackingService) Sweep(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	sweepID := uuid.NewString()
	ctx = observability.WithCorrelationID(ctx, sweepID)
	logger := s.logger.With(zap.String("sweepId", sweepID))

	s.metrics.IncSweep()

	records, err := s.records.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load phone subscription records: %w", err)
	}
	if len(records) == 0 {
		logger.Info("sweep found no subscriptions")
		return nil
	}

	logger.Info("sweep started", zap.Int("records", len(records)))

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range records {
		record := records[i]
		g.Go(func() error {
			s.trackRecord(groupCtx, logger, record)
			return nil
		})
	}
	// Workers never return errors; per-unit failures are logged in place.
	_ = g.Wait()

	logger.Info("sweep completed", zap.Int("records", len(records)))
	return nil
}

func (s *TrackingService) trackRecord(ctx context.Context, logger *zap.Logger, record domain.PhoneSubscriptionRecord) {
	for _, sub := range record.Subscriptions {
		s.metrics.IncSubscriptionChecked()

		offers := s.SearchFlights(ctx, sub)
		if len(offers) == 0 {
			continue
		}
		s.metrics.AddOffersFound(len(offers))

		if err := s.notify(ctx, record.PhoneNumber, sub, offers); err != nil {
			logger.Warn("failed to notify subscriber",
				zap.String("phoneNumber", record.PhoneNumber),
				zap.Int("subscriptionId", sub.ID),
				zap.Error(err),
			)
			s.metrics.IncNotificationFailed("sms_error")
			continue
		}
		s.metrics.IncNotificationSent()
	}
}

// SearchFlights runs one provider search for a subscription. Provider and
// transport failures are normalized to an empty result set so a flaky
// provider can never corrupt subscription state or abort a sweep; the typed
// error is still logged with its transient classification.
func (s *TrackingService) SearchFlights(ctx context.Context, sub domain.Subscription) []domain.FlightOffer {
	offers, err := s.flightAPI.Search(ctx, sub)
	if err != nil {
		s.metrics.IncProviderError()
		observability.WithContextLogger(s.logger, ctx).Warn("flight search failed, treating as no matches",
			zap.String("flyFrom", sub.FlyFrom),
			zap.String("flyTo", sub.FlyTo),
			zap.Int("subscriptionId", sub.ID),
			zap.Bool("transient", flights.IsTransient(err)),
			zap.Error(err),
		)
		return nil
	}
	return offers
}

// SearchLocations resolves a free-text place query for the search form.
// Provider errors degrade to an empty list, matching SearchFlights.
func (s *TrackingService) SearchLocations(ctx context.Context, term string) []flights.Location {
	locations, err := s.flightAPI.SearchLocations(ctx, term)
	if err != nil {
		s.metrics.IncProviderError()
		s.logger.Warn("location search failed",
			zap.String("term", term),
			zap.Error(err),
		)
		return nil
	}
	return locations
}

func (s *TrackingService) notify(ctx context.Context, phoneNumber string, sub domain.Subscription, offers []domain.FlightOffer) error {
	links := make([]string, 0, maxLinksPerMessage)
	for _, offer := range offers {
		if len(links) == maxLinksPerMessage {
			break
		}
		links = append(links, s.shortenOrFallback(ctx, offer.DeepLink))
	}

	unsubscribeLink := s.buildUnsubscribeLink(ctx, phoneNumber, sub.ID)
	body := composeMessage(sub, links, unsubscribeLink)

	if err := s.rateLimiter.Wait(ctx, smsRateKey); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	sendStart := s.now()
	receipt, err := s.sender.SendMessage(ctx, phoneNumber, body)
	s.metrics.ObserveSMSSendDuration(s.now().Sub(sendStart))
	if err != nil {
		return err
	}

	observability.WithContextLogger(s.logger, ctx).Info("price alert sent",
		zap.String("phoneNumber", phoneNumber),
		zap.Int("subscriptionId", sub.ID),
		zap.String("messageSid", receipt.SID),
		zap.Int("links", len(links)),
	)
	return nil
}

func (s *TrackingService) shortenOrFallback(ctx context.Context, longURL string) string {
	short, err := s.shortener.Shorten(ctx, longURL)
	if err != nil {
		observability.WithContextLogger(s.logger, ctx).Warn("url shortening failed, using long url",
			zap.Error(err),
		)
		return longURL
	}
	return short
}

// buildUnsubscribeLink encodes (phone, sid) into the public unsubscribe
// endpoint. Outside production the long URL is returned unshortened as a
// debugging aid.
func (s *TrackingService) buildUnsubscribeLink(ctx context.Context, phoneNumber string, subscriptionID int) string {
	query := url.Values{}
	query.Set("phone", phoneNumber)
	query.Set("sid", strconv.Itoa(subscriptionID))
	longURL := fmt.Sprintf("%s/unsubscribe?%s", s.baseURL, query.Encode())

	if s.environment != productionEnvironment {
		return longURL
	}
	return s.shortenOrFallback(ctx, longURL)
}

func composeMessage(sub domain.Subscription, links []string, unsubscribeLink string) string {
	var b strings.Builder
	b.WriteString("Heyo, Flight.Me here!\n")
	fmt.Fprintf(&b, "We found flights for %s to %s on dates DEPARTURE: %s RETURN: %s.\n\n",
		sub.FlyFrom, sub.FlyTo, sub.DateFrom, sub.ReturnFrom)
	b.WriteString("Check them out!\n")
	b.WriteString(strings.Join(links, "\n\n"))
	fmt.Fprintf(&b, "\n\nUnsubscribe: %s", unsubscribeLink)
	return b.String()
}
