package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nandanugg/rescue-nearby/module/nearby/domain"
	"github.com/nandanugg/rescue-nearby/module/nearby/internal/repository/publisher"
)

const DefaultDirectoryRadiusMeters = 10000

type merchantDirectory interface {
	FetchArea(ctx context.Context, area domain.Area) ([]domain.Merchant, error)
}

type SessionConfig struct {
	// DirectoryRadiusMeters is the radius of the area fetched once per session.
	DirectoryRadiusMeters float64
}

// screen is one open screen session: its tracker, synchronizer and the pump
// forwarding tracker output into the synchronizer queue.
type screen struct {
	id         string
	customerID string
	tracker    *LocationTracker
	sync       *ViewSynchronizer
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

type SessionService struct {
	directory    merchantDirectory
	requester    publisher.PermissionRequester
	filter       merchantFilter
	mapRenderer  publisher.Renderer
	listRenderer publisher.Renderer
	areaRadius   float64
	newID        func() string

	mu         sync.Mutex
	screens    map[string]*screen
	byCustomer map[string]string
}

func NewSessionService(
	directory merchantDirectory,
	requester publisher.PermissionRequester,
	mapRenderer, listRenderer publisher.Renderer,
	cfg SessionConfig,
) *SessionService {
	areaRadius := cfg.DirectoryRadiusMeters
	if areaRadius < domain.MaxRadiusBand().Meters() {
		areaRadius = DefaultDirectoryRadiusMeters
	}
	return &SessionService{
		directory:    directory,
		requester:    requester,
		filter:       NewMerchantFilter(nil),
		mapRenderer:  mapRenderer,
		listRenderer: listRenderer,
		areaRadius:   areaRadius,
		newID:        uuid.NewString,
		screens:      make(map[string]*screen),
		byCustomer:   make(map[string]string),
	}
}

// Open starts a screen session for a customer, replacing any session the
// customer already has. The merchant directory is fetched once here; a failed
// fetch leaves the session open with an empty list and an error indicator.
func (s *SessionService) Open(ctx context.Context, req domain.OpenSessionRequest) (domain.View, error) {
	if !req.Center.Valid() {
		return domain.View{}, domain.ErrInvalidCoordinate
	}

	runCtx, cancel := context.WithCancel(context.Background())
	sc := &screen{
		id:         s.newID(),
		customerID: req.CustomerID,
		tracker:    NewLocationTracker(req.CustomerID, s.requester),
		cancel:     cancel,
	}
	sc.sync = NewViewSynchronizer(SynchronizerConfig{
		SessionID:  sc.id,
		CustomerID: req.CustomerID,
		Radius:     req.Radius,
		Mode:       req.Mode,
	}, s.filter, s.mapRenderer, s.listRenderer)
	go sc.sync.Run(runCtx)

	merchants, fetchErr := s.directory.FetchArea(ctx, domain.Area{Center: req.Center, RadiusMeters: s.areaRadius})
	if fetchErr != nil {
		log.Printf("session %s: %v", sc.id, fetchErr)
	}
	if err := sc.sync.LoadMerchants(ctx, merchants, fetchErr); err != nil {
		cancel()
		return domain.View{}, err
	}

	s.register(sc)

	if err := sc.tracker.Activate(ctx); err != nil {
		_ = s.Close(req.CustomerID, sc.id)
		return domain.View{}, err
	}
	sc.wg.Add(1)
	go func() {
		defer sc.wg.Done()
		sc.pump(runCtx)
	}()

	log.Printf("session %s opened for customer %s", sc.id, req.CustomerID)
	return sc.sync.Snapshot(ctx)
}

func (s *SessionService) register(sc *screen) {
	s.mu.Lock()
	prevID, hasPrev := s.byCustomer[sc.customerID]
	var prev *screen
	if hasPrev {
		prev = s.screens[prevID]
		delete(s.screens, prevID)
	}
	s.screens[sc.id] = sc
	s.byCustomer[sc.customerID] = sc.id
	s.mu.Unlock()

	if prev != nil {
		prev.stop()
		log.Printf("session %s replaced by %s", prev.id, sc.id)
	}
}

func (s *SessionService) lookup(customerID, sessionID string) (*screen, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.screens[sessionID]
	if !ok || sc.customerID != customerID {
		return nil, domain.ErrSessionNotFound
	}
	return sc, nil
}

func (s *SessionService) View(ctx context.Context, customerID, sessionID string) (domain.View, error) {
	sc, err := s.lookup(customerID, sessionID)
	if err != nil {
		return domain.View{}, err
	}
	return sc.sync.Snapshot(ctx)
}

func (s *SessionService) SetRadius(ctx context.Context, customerID, sessionID string, band domain.RadiusBand) error {
	sc, err := s.lookup(customerID, sessionID)
	if err != nil {
		return err
	}
	return sc.sync.SetRadius(ctx, band)
}

func (s *SessionService) SetViewMode(ctx context.Context, customerID, sessionID string, mode domain.ViewMode) error {
	sc, err := s.lookup(customerID, sessionID)
	if err != nil {
		return err
	}
	return sc.sync.SetViewMode(ctx, mode)
}

func (s *SessionService) Close(customerID, sessionID string) error {
	s.mu.Lock()
	sc, ok := s.screens[sessionID]
	if !ok || sc.customerID != customerID {
		s.mu.Unlock()
		return domain.ErrSessionNotFound
	}
	delete(s.screens, sessionID)
	if s.byCustomer[customerID] == sessionID {
		delete(s.byCustomer, customerID)
	}
	s.mu.Unlock()

	sc.stop()
	log.Printf("session %s closed", sessionID)
	return nil
}

func (s *SessionService) CloseAll() {
	s.mu.Lock()
	screens := make([]*screen, 0, len(s.screens))
	for _, sc := range s.screens {
		screens = append(screens, sc)
	}
	s.screens = make(map[string]*screen)
	s.byCustomer = make(map[string]string)
	s.mu.Unlock()

	for _, sc := range screens {
		sc.stop()
	}
}

func (s *SessionService) trackerFor(customerID string) *LocationTracker {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.screens[s.byCustomer[customerID]]
	if !ok {
		return nil
	}
	return sc.tracker
}

// RoutePosition hands a device position to the customer's open session.
func (s *SessionService) RoutePosition(customerID string, c domain.Coordinate) bool {
	t := s.trackerFor(customerID)
	if t == nil {
		return false
	}
	return t.HandlePosition(c)
}

// RouteAuthorization hands a device permission status to the customer's open session.
func (s *SessionService) RouteAuthorization(customerID string, status domain.AuthorizationStatus) bool {
	t := s.trackerFor(customerID)
	if t == nil {
		return false
	}
	t.HandleStatus(status)
	return true
}

func (sc *screen) stop() {
	sc.tracker.Deactivate()
	sc.cancel()
	sc.wg.Wait()

	select {
	case <-sc.sync.Done():
	case <-time.After(time.Second):
		log.Printf("session %s: synchronizer did not stop in time", sc.id)
	}
}

func (sc *screen) pump(ctx context.Context) {
	coords := sc.tracker.Coordinates()
	statuses := sc.tracker.Statuses()

	for coords != nil || statuses != nil {
		var err error
		select {
		case <-ctx.Done():
			return
		case c, ok := <-coords:
			if !ok {
				coords = nil
				continue
			}
			err = sc.sync.UpdatePosition(ctx, c)
		case st, ok := <-statuses:
			if !ok {
				statuses = nil
				continue
			}
			err = sc.sync.UpdateAuthorization(ctx, st)
		}

		switch {
		case err == nil:
		case errors.Is(err, domain.ErrSynchronizerStopped), errors.Is(err, context.Canceled):
			return
		default:
			log.Printf("session %s: %v", sc.id, err)
		}
	}
}
