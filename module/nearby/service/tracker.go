package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/nandanugg/rescue-nearby/module/nearby/domain"
	"github.com/nandanugg/rescue-nearby/module/nearby/internal/repository/publisher"
)

const statusBuffer = 8

// LocationTracker turns a customer's device feed into two sequences: the
// current position and the location-permission status. Positions only flow
// while the status is authorized.
type LocationTracker struct {
	customerID string
	requester  publisher.PermissionRequester

	mu       sync.Mutex
	active   bool
	status   domain.AuthorizationStatus
	coords   chan domain.Coordinate
	statuses chan domain.AuthorizationStatus
}

func NewLocationTracker(customerID string, requester publisher.PermissionRequester) *LocationTracker {
	return &LocationTracker{
		customerID: customerID,
		requester:  requester,
		status:     domain.AuthorizationUndetermined,
	}
}

// Activate opens fresh sequences and requests permission once for this activation.
func (t *LocationTracker) Activate(ctx context.Context) error {
	t.mu.Lock()
	if t.active {
		t.mu.Unlock()
		return domain.ErrTrackerActive
	}
	t.active = true
	t.status = domain.AuthorizationUndetermined
	t.coords = make(chan domain.Coordinate, 1)
	t.statuses = make(chan domain.AuthorizationStatus, statusBuffer)
	t.mu.Unlock()

	if err := t.requester.RequestPermission(ctx, t.customerID); err != nil {
		t.Deactivate()
		return fmt.Errorf("request permission: %w", err)
	}
	return nil
}

func (t *LocationTracker) Deactivate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active {
		return
	}
	t.active = false
	close(t.coords)
	close(t.statuses)
}

func (t *LocationTracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *LocationTracker) Status() domain.AuthorizationStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Coordinates returns the position sequence of the current activation.
func (t *LocationTracker) Coordinates() <-chan domain.Coordinate {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.coords
}

// Statuses returns the authorization sequence of the current activation.
func (t *LocationTracker) Statuses() <-chan domain.AuthorizationStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statuses
}

func (t *LocationTracker) HandleStatus(status domain.AuthorizationStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active || status == t.status {
		return
	}
	t.status = status

	if status.Blocks() {
		select {
		case <-t.coords:
		default:
		}
	}

	for {
		select {
		case t.statuses <- status:
			return
		default:
		}
		// full: drop the oldest status, the newest one decides
		select {
		case <-t.statuses:
		default:
		}
	}
}

// HandlePosition forwards c unless the tracker is inactive or not authorized.
// Only the newest unread position is kept.
func (t *LocationTracker) HandlePosition(c domain.Coordinate) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active || t.status != domain.AuthorizationAuthorized {
		return false
	}

	for {
		select {
		case t.coords <- c:
			return true
		default:
		}
		select {
		case <-t.coords:
		default:
		}
	}
}
