package service

import (
	"context"
	"log"
	"time"

	"github.com/nandanugg/rescue-nearby/module/nearby/domain"
	"github.com/nandanugg/rescue-nearby/module/nearby/internal/repository/publisher"
)

const (
	eventBuffer   = 64
	DefaultRadius = domain.Radius3Km
	DefaultMode   = domain.ViewMap
)

type merchantFilter interface {
	Filter(user domain.Coordinate, merchants []domain.Merchant, maxRadius domain.RadiusBand) []domain.RadiusGroup
}

type SynchronizerConfig struct {
	SessionID  string
	CustomerID string
	Radius     domain.RadiusBand
	Mode       domain.ViewMode
}

type eventKind int

const (
	eventRadius eventKind = iota
	eventViewMode
	eventPosition
	eventAuthorization
	eventMerchants
	eventSnapshot
)

type event struct {
	kind      eventKind
	radius    domain.RadiusBand
	mode      domain.ViewMode
	coord     domain.Coordinate
	status    domain.AuthorizationStatus
	merchants []domain.Merchant
	err       error
	reply     chan domain.View
}

type presentation struct {
	mode     domain.ViewMode
	renderer publisher.Renderer
}

// ViewSynchronizer keeps the map and list presentations of one screen session
// on the same filtered result. Every input goes through a single ordered
// queue consumed by Run, so at most one filter pass runs at a time and the
// newest inputs win.
type ViewSynchronizer struct {
	sessionID     string
	customerID    string
	filter        merchantFilter
	presentations []presentation
	events        chan event
	done          chan struct{}
	now           func() time.Time

	// owned by the Run goroutine
	mode            domain.ViewMode
	radius          domain.RadiusBand
	status          domain.AuthorizationStatus
	coord           *domain.Coordinate
	merchants       []domain.Merchant
	merchantsLoaded bool
	fetchErr        error
	groups          []domain.RadiusGroup
	computed        bool
	version         uint64

	dirty   bool
	repaint bool
	blocked bool
}

func NewViewSynchronizer(cfg SynchronizerConfig, filter merchantFilter, mapRenderer, listRenderer publisher.Renderer) *ViewSynchronizer {
	radius := cfg.Radius
	if !radius.Valid() {
		radius = DefaultRadius
	}
	mode := cfg.Mode
	if _, err := domain.ParseViewMode(string(mode)); err != nil {
		mode = DefaultMode
	}

	return &ViewSynchronizer{
		sessionID:  cfg.SessionID,
		customerID: cfg.CustomerID,
		filter:     filter,
		presentations: []presentation{
			{mode: domain.ViewMap, renderer: mapRenderer},
			{mode: domain.ViewList, renderer: listRenderer},
		},
		events: make(chan event, eventBuffer),
		done:   make(chan struct{}),
		now:    time.Now,
		mode:   mode,
		radius: radius,
		status: domain.AuthorizationUndetermined,
	}
}

// Run consumes the event queue until ctx is cancelled.
func (s *ViewSynchronizer) Run(ctx context.Context) {
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.events:
			s.process(ctx, ev)
		}
	}
}

// Done is closed once Run has returned.
func (s *ViewSynchronizer) Done() <-chan struct{} {
	return s.done
}

func (s *ViewSynchronizer) SetRadius(ctx context.Context, band domain.RadiusBand) error {
	if !band.Valid() {
		return domain.ErrInvalidRadius
	}
	return s.enqueue(ctx, event{kind: eventRadius, radius: band})
}

func (s *ViewSynchronizer) SetViewMode(ctx context.Context, mode domain.ViewMode) error {
	if _, err := domain.ParseViewMode(string(mode)); err != nil {
		return err
	}
	return s.enqueue(ctx, event{kind: eventViewMode, mode: mode})
}

func (s *ViewSynchronizer) UpdatePosition(ctx context.Context, c domain.Coordinate) error {
	if !c.Valid() {
		return domain.ErrInvalidCoordinate
	}
	return s.enqueue(ctx, event{kind: eventPosition, coord: c})
}

func (s *ViewSynchronizer) UpdateAuthorization(ctx context.Context, status domain.AuthorizationStatus) error {
	return s.enqueue(ctx, event{kind: eventAuthorization, status: status})
}

// LoadMerchants replaces the merchant list. fetchErr marks a failed directory
// fetch: the list is treated as empty and frames carry an error indicator.
func (s *ViewSynchronizer) LoadMerchants(ctx context.Context, merchants []domain.Merchant, fetchErr error) error {
	cp := append([]domain.Merchant(nil), merchants...)
	return s.enqueue(ctx, event{kind: eventMerchants, merchants: cp, err: fetchErr})
}

// Snapshot returns the session view once every previously queued event is applied.
func (s *ViewSynchronizer) Snapshot(ctx context.Context) (domain.View, error) {
	reply := make(chan domain.View, 1)
	if err := s.enqueue(ctx, event{kind: eventSnapshot, reply: reply}); err != nil {
		return domain.View{}, err
	}

	select {
	case v := <-reply:
		return v, nil
	case <-s.done:
		select {
		case v := <-reply:
			return v, nil
		default:
			return domain.View{}, domain.ErrSynchronizerStopped
		}
	case <-ctx.Done():
		return domain.View{}, ctx.Err()
	}
}

func (s *ViewSynchronizer) enqueue(ctx context.Context, ev event) error {
	select {
	case <-s.done:
		return domain.ErrSynchronizerStopped
	default:
	}

	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return domain.ErrSynchronizerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ViewSynchronizer) process(ctx context.Context, first event) {
	var replies []chan domain.View
	s.apply(first, &replies)

	// fold in everything queued meanwhile so a stale input never gets its own pass
	for drained := false; !drained; {
		select {
		case ev := <-s.events:
			s.apply(ev, &replies)
		default:
			drained = true
		}
	}

	s.flush(ctx)

	if len(replies) > 0 {
		v := s.view()
		for _, r := range replies {
			r <- v
		}
	}
}

func (s *ViewSynchronizer) apply(ev event, replies *[]chan domain.View) {
	switch ev.kind {
	case eventRadius:
		s.radius = ev.radius
		s.dirty = true
		s.repaint = true
	case eventViewMode:
		s.mode = ev.mode
		s.repaint = true
	case eventPosition:
		if s.status.Blocks() {
			return
		}
		if s.coord != nil && *s.coord == ev.coord {
			return
		}
		c := ev.coord
		s.coord = &c
		s.dirty = true
	case eventAuthorization:
		prev := s.status
		s.status = ev.status
		switch {
		case ev.status.Blocks() && !prev.Blocks():
			s.coord = nil
			s.groups = nil
			s.computed = false
			s.blocked = true
		case prev.Blocks() && !ev.status.Blocks():
			s.blocked = false
			s.repaint = true
		}
	case eventMerchants:
		s.merchants = ev.merchants
		s.fetchErr = ev.err
		s.merchantsLoaded = true
		s.dirty = true
		s.repaint = true
	case eventSnapshot:
		*replies = append(*replies, ev.reply)
	}
}

func (s *ViewSynchronizer) flush(ctx context.Context) {
	defer func() { s.dirty, s.repaint = false, false }()

	if s.status.Blocks() {
		if s.blocked {
			s.blocked = false
			s.version++
			s.renderAll(ctx)
		}
		return
	}

	switch {
	case s.dirty && s.canCompute():
		s.groups = s.filter.Filter(*s.coord, s.merchants, s.radius)
		s.computed = true
		s.version++
		s.renderAll(ctx)
	case s.repaint:
		s.version++
		s.renderAll(ctx)
	}
}

func (s *ViewSynchronizer) canCompute() bool {
	return s.coord != nil && s.merchantsLoaded
}

func (s *ViewSynchronizer) renderAll(ctx context.Context) {
	for _, p := range s.presentations {
		if p.renderer == nil {
			continue
		}
		if err := p.renderer.Render(ctx, s.frame(p.mode)); err != nil {
			log.Printf("render %s frame for session %s: %v", p.mode, s.sessionID, err)
		}
	}
}

func (s *ViewSynchronizer) state() domain.ScreenState {
	switch {
	case s.status.Blocks():
		return domain.StateDisabled
	case !s.computed:
		return domain.StateLoading
	default:
		return domain.StateReady
	}
}

func (s *ViewSynchronizer) errorIndicator() string {
	switch {
	case s.status.Blocks():
		return domain.ErrPermissionDenied.Error()
	case s.fetchErr != nil:
		return domain.ErrDirectoryFetchFailed.Error()
	}
	return ""
}

func (s *ViewSynchronizer) currentGroups() []domain.RadiusGroup {
	if s.groups == nil {
		return []domain.RadiusGroup{}
	}
	return s.groups
}

func (s *ViewSynchronizer) frame(mode domain.ViewMode) *domain.Frame {
	return &domain.Frame{
		SessionID:  s.sessionID,
		CustomerID: s.customerID,
		Mode:       mode,
		Visible:    mode == s.mode,
		State:      s.state(),
		Radius:     s.radius,
		Groups:     s.currentGroups(),
		Error:      s.errorIndicator(),
		Version:    s.version,
		RenderedAt: s.now(),
	}
}

func (s *ViewSynchronizer) view() domain.View {
	v := domain.View{
		SessionID:     s.sessionID,
		CustomerID:    s.customerID,
		Mode:          s.mode,
		State:         s.state(),
		Authorization: s.status,
		Radius:        s.radius,
		Groups:        s.currentGroups(),
		Error:         s.errorIndicator(),
		Version:       s.version,
	}
	if s.coord != nil {
		c := *s.coord
		v.Location = &c
	}
	return v
}
