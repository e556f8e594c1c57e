package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/climate-alert-service/internal/domain"
	"github.com/couchcryptid/climate-alert-service/internal/observability"
)

// WeatherProvider fetches conditions for one coordinate pair.
type WeatherProvider interface {
	Current(ctx context.Context, lat, lon float64) (domain.CurrentConditions, error)
	Forecast(ctx context.Context, lat, lon float64) ([]domain.ForecastEntry, error)
}

// Store is the persistence boundary for reference data, alert events, and
// subscriptions.
type Store interface {
	ListCities(ctx context.Context) ([]domain.City, error)
	GetAlertType(ctx context.Context, id string) (*domain.AlertType, error)
	InsertAlert(ctx context.Context, cand domain.CandidateAlert) (int64, bool, error)
	SubscriberEmails(ctx context.Context, cityID string) ([]string, error)
}

// Notifier delivers one grouped digest per recipient.
type Notifier interface {
	SendDigest(to string, alerts []domain.AlertDetail) error
}

// AlertPublisher emits newly created alert events to an external sink.
// Optional; a nil publisher disables the fan-out.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, event domain.AlertEvent) error
}

// ErrRunInProgress is returned when a run is requested while another is
// still in flight. At most one evaluation cycle runs at a time.
var ErrRunInProgress = errors.New("alert generation run already in progress")

// RunReport summarizes one completed evaluation cycle.
type RunReport struct {
	RunID               string        `json:"run_id"`
	StartedAt           time.Time     `json:"started_at"`
	Duration            time.Duration `json:"duration"`
	CitiesProcessed     int           `json:"cities_processed"`
	CitiesSkipped       int           `json:"cities_skipped"`
	AlertsGenerated     int           `json:"alerts_generated"`
	NotificationsSent   int           `json:"notifications_sent"`
	NotificationsFailed int           `json:"notifications_failed"`
}

// Engine orchestrates the fetch-evaluate-persist-notify cycle across all
// monitored cities.
type Engine struct {
	provider  WeatherProvider
	store     Store
	notifier  Notifier
	publisher AlertPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics

	running atomic.Bool
	ready   atomic.Bool
}

// New creates an Engine. publisher may be nil.
func New(provider WeatherProvider, store Store, notifier Notifier, publisher AlertPublisher, logger *slog.Logger, metrics *observability.Metrics) *Engine {
	return &Engine{
		provider:  provider,
		store:     store,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once at least one run has completed, or an
// error describing why the service is not yet ready.
func (e *Engine) CheckReadiness(_ context.Context) error {
	if !e.ready.Load() {
		return errors.New("no alert generation run has completed yet")
	}
	return nil
}

// Run executes one full evaluation cycle. Only the city list failure is
// fatal; per-city and per-candidate failures are logged, counted, and
// skipped so one bad city never blocks the rest.
func (e *Engine) Run(ctx context.Context) (RunReport, error) {
	if !e.running.CompareAndSwap(false, true) {
		return RunReport{}, ErrRunInProgress
	}
	defer e.running.Store(false)

	report := RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	logger := e.logger.With("run_id", report.RunID)

	e.metrics.RunsTotal.Inc()
	e.metrics.EngineRunning.Set(1)
	defer e.metrics.EngineRunning.Set(0)
	defer func() {
		report.Duration = time.Since(report.StartedAt)
		e.metrics.RunDuration.Observe(report.Duration.Seconds())
	}()

	logger.Info("alert generation run started")

	cities, err := e.store.ListCities(ctx)
	if err != nil {
		e.metrics.RunFailures.Inc()
		e.metrics.StoreErrors.Inc()
		return report, fmt.Errorf("list cities: %w", err)
	}

	// digest accumulates alerts per recipient across all cities, so each
	// subscriber gets one email per run no matter how many cities fired.
	digest := make(map[string][]domain.AlertDetail)

	for _, city := range cities {
		if ctx.Err() != nil {
			e.metrics.RunFailures.Inc()
			return report, ctx.Err()
		}

		if !city.HasCoordinates() {
			logger.Warn("skipping city without coordinates", "city_id", city.ID, "city", city.Name)
			e.metrics.CitiesSkipped.Inc()
			report.CitiesSkipped++
			continue
		}

		e.processCity(ctx, logger, city, digest, &report)
		report.CitiesProcessed++
	}

	e.dispatchDigests(logger, digest, &report)

	e.ready.Store(true)
	logger.Info("alert generation run finished",
		"duration", time.Since(report.StartedAt),
		"cities_processed", report.CitiesProcessed,
		"cities_skipped", report.CitiesSkipped,
		"alerts_generated", report.AlertsGenerated,
		"notifications_sent", report.NotificationsSent,
		"notifications_failed", report.NotificationsFailed,
	)
	return report, nil
}

// processCity evaluates current conditions and the forecast for one city.
// The two phases fail independently; a current-weather outage still lets
// forecast alerts through, and vice versa.
func (e *Engine) processCity(ctx context.Context, logger *slog.Logger, city domain.City, digest map[string][]domain.AlertDetail, report *RunReport) {
	lat, lon := *city.Lat, *city.Lon

	obs, err := e.provider.Current(ctx, lat, lon)
	if err != nil {
		logger.Error("current weather fetch failed", "city_id", city.ID, "error", err)
		e.metrics.ProviderErrors.WithLabelValues("current").Inc()
	} else {
		e.persistCandidates(ctx, logger, domain.EvaluateCurrent(city, obs), digest, report)
	}

	entries, err := e.provider.Forecast(ctx, lat, lon)
	if err != nil {
		logger.Error("forecast fetch failed", "city_id", city.ID, "error", err)
		e.metrics.ProviderErrors.WithLabelValues("forecast").Inc()
		return
	}
	days := domain.BuildForecastDays(entries)
	e.persistCandidates(ctx, logger, domain.EvaluateForecast(city, days), digest, report)
}

// persistCandidates validates, deduplicates, and persists each candidate,
// then fans the new alerts out to the digest map and the publisher.
func (e *Engine) persistCandidates(ctx context.Context, logger *slog.Logger, candidates []domain.CandidateAlert, digest map[string][]domain.AlertDetail, report *RunReport) {
	for _, cand := range candidates {
		typ, err := e.store.GetAlertType(ctx, cand.TypeID)
		if err != nil {
			logger.Error("alert type lookup failed", "type_id", cand.TypeID, "city_id", cand.CityID, "error", err)
			e.metrics.StoreErrors.Inc()
			continue
		}
		if typ == nil {
			logger.Warn("dropping candidate with unregistered alert type",
				"type_id", cand.TypeID, "city_id", cand.CityID, "error", domain.ErrUnknownAlertType)
			continue
		}

		id, created, err := e.store.InsertAlert(ctx, cand)
		if err != nil {
			logger.Error("alert insert failed", "type_id", cand.TypeID, "city_id", cand.CityID, "error", err)
			e.metrics.StoreErrors.Inc()
			continue
		}
		if !created {
			logger.Debug("alert already exists for natural key",
				"city_id", cand.CityID, "type_id", cand.TypeID, "date", cand.Date)
			continue
		}

		report.AlertsGenerated++
		e.metrics.AlertsGenerated.WithLabelValues(cand.TypeID).Inc()
		logger.Info("alert created",
			"alert_id", id, "city_id", cand.CityID, "type_id", cand.TypeID,
			"date", cand.Date, "severity", cand.Severity)

		event := domain.AlertEvent{
			ID:          id,
			CityID:      cand.CityID,
			CityName:    cand.CityName,
			TypeID:      cand.TypeID,
			TypeName:    typ.Name,
			Date:        cand.Date,
			Description: cand.Description,
			Severity:    cand.Severity,
		}
		e.publish(ctx, logger, event)
		e.collectRecipients(ctx, logger, event, digest)
	}
}

// publish emits the event to the sink topic. Publish failures never fail
// the run; the alert is already persisted.
func (e *Engine) publish(ctx context.Context, logger *slog.Logger, event domain.AlertEvent) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.PublishAlert(ctx, event); err != nil {
		logger.Error("alert publish failed", "alert_id", event.ID, "error", err)
		e.metrics.PublishErrors.Inc()
		return
	}
	e.metrics.AlertsPublished.Inc()
}

// collectRecipients appends the alert to each subscriber's pending digest.
func (e *Engine) collectRecipients(ctx context.Context, logger *slog.Logger, event domain.AlertEvent, digest map[string][]domain.AlertDetail) {
	emails, err := e.store.SubscriberEmails(ctx, event.CityID)
	if err != nil {
		logger.Error("subscriber lookup failed", "city_id", event.CityID, "error", err)
		e.metrics.StoreErrors.Inc()
		return
	}

	detail := domain.AlertDetail{
		CityName:    event.CityName,
		AlertDate:   domain.DisplayDate(event.Date),
		AlertType:   event.TypeName,
		Description: event.Description,
		Severity:    event.Severity,
	}
	for _, email := range emails {
		digest[email] = append(digest[email], detail)
	}
}

// dispatchDigests sends one grouped email per recipient. Recipients are
// visited in deterministic order; one failed delivery never blocks the
// others.
func (e *Engine) dispatchDigests(logger *slog.Logger, digest map[string][]domain.AlertDetail, report *RunReport) {
	recipients := make([]string, 0, len(digest))
	for email := range digest {
		recipients = append(recipients, email)
	}
	sort.Strings(recipients)

	for _, email := range recipients {
		if err := e.notifier.SendDigest(email, digest[email]); err != nil {
			logger.Error("digest delivery failed", "to", email, "alerts", len(digest[email]), "error", err)
			e.metrics.NotificationsFailed.Inc()
			report.NotificationsFailed++
			continue
		}
		e.metrics.NotificationsSent.Inc()
		report.NotificationsSent++
	}
}
