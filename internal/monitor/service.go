// Package monitor runs the polling loop: fetch aircraft states, filter
// them to the alert radius, classify, and notify on first entry.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yegors/skyalert/internal/adsb"
	"github.com/yegors/skyalert/internal/classify"
	"github.com/yegors/skyalert/internal/geo"
	"github.com/yegors/skyalert/pkg/logger"
)

// StateFetcher provides raw aircraft state vectors for the configured
// bounding box.
type StateFetcher interface {
	FetchStates(ctx context.Context) ([]adsb.StateVector, error)
}

// Notifier delivers a push notification.
type Notifier interface {
	Send(title, body string) error
}

// Broadcaster fans a message out to connected websocket clients.
// Broadcasts are best effort; delivery failures never affect the loop.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{})
}

// Sighting is an aircraft of interest observed inside the alert radius
// during the most recent cycle.
type Sighting struct {
	Aircraft adsb.Aircraft `json:"aircraft"`
	Position geo.Position  `json:"position"`
	Military bool          `json:"military"`
	SeenAt   time.Time     `json:"seen_at"`
}

// Alert records a delivered (or attempted) notification.
type Alert struct {
	Sighting
	Message  string    `json:"message"`
	SentAt   time.Time `json:"sent_at"`
	Delivery string    `json:"delivery"` // "sent" or the send error
}

// Status summarizes the state of the loop for the HTTP API.
type Status struct {
	Postcode      string         `json:"postcode"`
	Center        geo.Coordinate `json:"center"`
	RadiusKm      float64        `json:"radius_km"`
	IntervalSecs  int            `json:"interval_seconds"`
	Cycles        int64          `json:"cycles"`
	LastCycleAt   time.Time      `json:"last_cycle_at,omitempty"`
	LastFetchOK   bool           `json:"last_fetch_ok"`
	LastFetchErr  string         `json:"last_fetch_error,omitempty"`
	StatesFetched int            `json:"states_fetched"`
	ActiveAlerts  int            `json:"active_alerts"`
	AlertsSent    int64          `json:"alerts_sent"`
}

// Config holds the static parameters of the monitor loop.
type Config struct {
	Postcode            string
	Center              geo.Coordinate
	RadiusKm            float64
	Interval            time.Duration
	TrackingURLTemplate string
	NotificationTitle   string
}

const alertHistorySize = 50

// Service owns the polling loop, the presence tracker and the snapshot
// state exposed over the API.
type Service struct {
	cfg         Config
	fetcher     StateFetcher
	notifier    Notifier
	broadcaster Broadcaster
	favourites  classify.Favourites
	declination float64
	tracker     *PresenceTracker
	logger      *logger.Logger

	mu         sync.RWMutex
	status     Status
	sightings  []Sighting
	alerts     []Alert
	alertsSent int64

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewService creates a monitor service. The magnetic declination at the
// monitored point is computed once; it drifts far too slowly to matter
// over a process lifetime.
func NewService(
	cfg Config,
	fetcher StateFetcher,
	notifier Notifier,
	broadcaster Broadcaster,
	favourites classify.Favourites,
	log *logger.Logger,
) *Service {
	return &Service{
		cfg:         cfg,
		fetcher:     fetcher,
		notifier:    notifier,
		broadcaster: broadcaster,
		favourites:  favourites,
		declination: geo.MagneticDeclination(cfg.Center, time.Now()),
		tracker:     NewPresenceTracker(),
		logger:      log.Named("monitor"),
		status: Status{
			Postcode:     cfg.Postcode,
			Center:       cfg.Center,
			RadiusKm:     cfg.RadiusKm,
			IntervalSecs: int(cfg.Interval / time.Second),
		},
		stopCh: make(chan struct{}),
	}
}

// Start launches the polling loop. The first cycle runs immediately.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Starting aircraft monitor",
		logger.String("postcode", s.cfg.Postcode),
		logger.Float64("lat", s.cfg.Center.Lat),
		logger.Float64("lon", s.cfg.Center.Lon),
		logger.Float64("radius_km", s.cfg.RadiusKm),
		logger.Duration("interval", s.cfg.Interval),
		logger.Float64("declination_deg", s.declination),
		logger.Int("favourites", len(s.favourites)),
	)

	s.wg.Add(1)
	go s.pollLoop(ctx)
	return nil
}

// Stop terminates the polling loop and waits for it to exit.
func (s *Service) Stop() {
	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info("Aircraft monitor stopped")
}

func (s *Service) pollLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.runCycle(ctx)

	for {
		select {
		case <-ticker.C:
			s.runCycle(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// runCycle performs one fetch/filter/notify pass. A failed fetch is
// treated as an empty sky for this cycle; the loop itself never stops.
func (s *Service) runCycle(ctx context.Context) {
	now := time.Now()

	states, err := s.fetcher.FetchStates(ctx)
	fetchErr := ""
	if err != nil {
		s.logger.Warn("State fetch failed, treating as empty",
			logger.Error(err))
		states = nil
		fetchErr = err.Error()
	}

	hits := make(map[string]struct{})
	sightings := make([]Sighting, 0)
	var newAlerts []Alert

	for _, sv := range states {
		if sv.ICAO24 == "" || !sv.HasPosition {
			continue
		}
		ac := adsb.FromState(sv)

		pos := geo.PositionFrom(s.cfg.Center, ac.Coord, s.declination)
		if pos.DistanceKm > s.cfg.RadiusKm {
			continue
		}

		military := classify.IsMilitary(ac)
		if !military && !s.favourites.Contains(ac) {
			continue
		}

		hits[ac.ID] = struct{}{}
		sighting := Sighting{
			Aircraft: ac,
			Position: pos,
			Military: military,
			SeenAt:   now,
		}
		sightings = append(sightings, sighting)

		if s.tracker.IsActive(ac.ID) {
			continue
		}

		alert := s.sendAlert(sighting, now)
		// Marked even when delivery fails so a broken notifier
		// does not spam retries every cycle.
		s.tracker.Mark(ac.ID)
		newAlerts = append(newAlerts, alert)
	}

	s.tracker.Prune(hits)

	s.mu.Lock()
	s.status.Cycles++
	s.status.LastCycleAt = now
	s.status.LastFetchOK = fetchErr == ""
	s.status.LastFetchErr = fetchErr
	s.status.StatesFetched = len(states)
	s.status.ActiveAlerts = s.tracker.Size()
	s.sightings = sightings
	for _, a := range newAlerts {
		if a.Delivery == "sent" {
			s.alertsSent++
		}
		s.alerts = append(s.alerts, a)
	}
	if len(s.alerts) > alertHistorySize {
		s.alerts = s.alerts[len(s.alerts)-alertHistorySize:]
	}
	s.status.AlertsSent = s.alertsSent
	s.mu.Unlock()

	s.logger.Debug("Cycle complete",
		logger.Int("states", len(states)),
		logger.Int("in_radius", len(sightings)),
		logger.Int("new_alerts", len(newAlerts)),
		logger.Int("tracked", s.tracker.Size()),
	)

	if s.broadcaster != nil {
		s.broadcaster.Broadcast("cycle", map[string]interface{}{
			"at":         now,
			"states":     len(states),
			"sightings":  sightings,
			"new_alerts": len(newAlerts),
		})
	}
}

func (s *Service) sendAlert(sighting Sighting, now time.Time) Alert {
	msg := s.formatAlert(sighting, now)

	alert := Alert{
		Sighting: sighting,
		Message:  msg,
		SentAt:   now,
		Delivery: "sent",
	}

	if err := s.notifier.Send(s.cfg.NotificationTitle, msg); err != nil {
		s.logger.Error("Failed to send notification",
			logger.String("icao24", sighting.Aircraft.ID),
			logger.Error(err))
		alert.Delivery = err.Error()
	} else {
		s.logger.Info("Alert sent",
			logger.String("icao24", sighting.Aircraft.ID),
			logger.String("callsign", sighting.Aircraft.Callsign),
			logger.Float64("distance_km", sighting.Position.DistanceKm),
			logger.String("cardinal", sighting.Position.Cardinal),
		)
	}

	if s.broadcaster != nil {
		s.broadcaster.Broadcast("alert", alert)
	}
	return alert
}

// formatAlert renders the notification body: timestamp, range and
// bearing from the monitored point, identity, and a tracking link.
func (s *Service) formatAlert(sighting Sighting, now time.Time) string {
	callsign := sighting.Aircraft.Callsign
	if callsign == "" {
		callsign = "N/A"
	}
	return fmt.Sprintf("🕧 %s\n🧭 %.1fkm %s (%.0f°)\n✈️ %s / %s\n🔗 %s",
		now.Format("2006-01-02 15:04:05"),
		sighting.Position.DistanceKm,
		sighting.Position.Cardinal,
		sighting.Position.BearingDeg,
		callsign,
		sighting.Aircraft.ID,
		fmt.Sprintf(s.cfg.TrackingURLTemplate, sighting.Aircraft.ID),
	)
}

// Status returns a copy of the loop status.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Sightings returns the aircraft of interest seen in the latest cycle.
func (s *Service) Sightings() []Sighting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Sighting, len(s.sightings))
	copy(out, s.sightings)
	return out
}

// Alerts returns the recent alert history, oldest first.
func (s *Service) Alerts() []Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}
