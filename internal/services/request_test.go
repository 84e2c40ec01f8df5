package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"eventboard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRequestRepo is an in-memory RequestRepository for tests. It is
// mutex-guarded so the concurrency tests below can hammer it from multiple
// goroutines.
type fakeRequestRepo struct {
	mu     sync.Mutex
	byID   map[int64]*domain.Request
	nextID int64

	createErr error
	countsErr error
	applyErr  error
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{
		byID:   make(map[int64]*domain.Request),
		nextID: 1,
	}
}

func (f *fakeRequestRepo) Create(ctx context.Context, req *domain.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	req.ID = f.nextID
	f.nextID++
	stored := *req
	f.byID[req.ID] = &stored
	return nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id int64) (*domain.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (f *fakeRequestRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make(map[int64]*domain.Request, len(ids))
	for _, id := range ids {
		if req, ok := f.byID[id]; ok {
			copied := *req
			result[id] = &copied
		}
	}
	return result, nil
}

func (f *fakeRequestRepo) ListByRequester(ctx context.Context, requesterID int64) ([]*domain.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Request
	for _, req := range f.byID {
		if req.RequesterID == requesterID {
			copied := *req
			out = append(out, &copied)
		}
	}
	sortRequestsByID(out)
	return out, nil
}

func (f *fakeRequestRepo) ListByEvent(ctx context.Context, eventID int64) ([]*domain.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Request
	for _, req := range f.byID {
		if req.EventID == eventID {
			copied := *req
			out = append(out, &copied)
		}
	}
	sortRequestsByID(out)
	return out, nil
}

func (f *fakeRequestRepo) ExistsActive(ctx context.Context, requesterID, eventID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, req := range f.byID {
		if req.RequesterID == requesterID && req.EventID == eventID && req.Status != domain.RequestCanceled {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRequestRepo) UpdateStatus(ctx context.Context, id int64, status domain.RequestStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	req.Status = status
	return nil
}

func (f *fakeRequestRepo) ApplyStatusChanges(ctx context.Context, eventID int64, changes []domain.RequestStatusChange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.applyErr != nil {
		return f.applyErr
	}
	for _, ch := range changes {
		req, ok := f.byID[ch.RequestID]
		if !ok {
			return domain.ErrNotFound
		}
		req.Status = ch.Status
	}
	return nil
}

func (f *fakeRequestRepo) ConfirmedCounts(ctx context.Context, eventIDs []int64) (map[int64]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countsErr != nil {
		return nil, f.countsErr
	}
	counts := make(map[int64]int)
	for _, req := range f.byID {
		if req.Status == domain.RequestConfirmed && containsID(eventIDs, req.EventID) {
			counts[req.EventID]++
		}
	}
	return counts, nil
}

// Sort by id ASC to match repo order.
func sortRequestsByID(reqs []*domain.Request) {
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].ID < reqs[j].ID })
}

// requestFixtures wires a RequestService onto in-memory fakes.
type requestFixtures struct {
	requests *fakeRequestRepo
	users    *fakeUserRepo
	events   *fakeEventRepo
	service  domain.RequestService
}

func newRequestFixtures() *requestFixtures {
	f := &requestFixtures{
		requests: newFakeRequestRepo(),
		users:    newFakeUserRepo(),
		events:   newFakeEventRepo(),
	}
	f.service = NewRequestService(f.requests, f.users, f.events, testLogger(), 5*time.Second)
	return f
}

func (f *requestFixtures) seedUser(t *testing.T, name string) *domain.User {
	t.Helper()
	u := &domain.User{Name: name, Email: name + "@example.com"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *requestFixtures) seedEvent(t *testing.T, initiator *domain.User, state domain.EventState, limit int, moderation bool) *domain.Event {
	t.Helper()
	e := &domain.Event{
		EventDate:         time.Now().Add(48 * time.Hour),
		Initiator:         *initiator,
		ParticipantLimit:  limit,
		State:             state,
		CreatedOn:         time.Now(),
		RequestModeration: moderation,
		Title:             "Seeded event",
	}
	if state == domain.StatePublished {
		publishedOn := time.Now().Add(-time.Hour)
		e.PublishedOn = &publishedOn
	}
	require.NoError(t, f.events.Create(context.Background(), e))
	return e
}

func (f *requestFixtures) seedRequest(t *testing.T, requester *domain.User, event *domain.Event, status domain.RequestStatus) *domain.Request {
	t.Helper()
	req := &domain.Request{
		RequesterID: requester.ID,
		EventID:     event.ID,
		Status:      status,
		Created:     time.Now(),
	}
	require.NoError(t, f.requests.Create(context.Background(), req))
	return req
}

func TestRequestService_CreateRequest_pendingUnderModeration(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixtures()
	owner := f.seedUser(t, "alice")
	requester := f.seedUser(t, "bob")
	event := f.seedEvent(t, owner, domain.StatePublished, 10, true)

	req, err := f.service.CreateRequest(ctx, requester.ID, event.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, req.Status)
	assert.Equal(t, requester.ID, req.RequesterID)
	assert.Equal(t, event.ID, req.EventID)
	assert.NotZero(t, req.ID)
}

func TestRequestService_CreateRequest_autoConfirm(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		moderation bool
	}{
		{"moderation disabled", 10, false},
		{"unlimited capacity", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRequestFixtures()
			owner := f.seedUser(t, "alice")
			requester := f.seedUser(t, "bob")
			event := f.seedEvent(t, owner, domain.StatePublished, tt.limit, tt.moderation)

			req, err := f.service.CreateRequest(context.Background(), requester.ID, event.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.RequestConfirmed, req.Status)
		})
	}
}

func TestRequestService_CreateRequest_conflicts(t *testing.T) {
	tests := []struct {
		name string
		run  func(t *testing.T, f *requestFixtures) error
	}{
		{
			name: "repeat request",
			run: func(t *testing.T, f *requestFixtures) error {
				owner := f.seedUser(t, "alice")
				requester := f.seedUser(t, "bob")
				event := f.seedEvent(t, owner, domain.StatePublished, 10, true)
				f.seedRequest(t, requester, event, domain.RequestPending)
				_, err := f.service.CreateRequest(context.Background(), requester.ID, event.ID)
				return err
			},
		},
		{
			name: "own event",
			run: func(t *testing.T, f *requestFixtures) error {
				owner := f.seedUser(t, "alice")
				event := f.seedEvent(t, owner, domain.StatePublished, 10, true)
				_, err := f.service.CreateRequest(context.Background(), owner.ID, event.ID)
				return err
			},
		},
		{
			name: "unpublished event",
			run: func(t *testing.T, f *requestFixtures) error {
				owner := f.seedUser(t, "alice")
				requester := f.seedUser(t, "bob")
				event := f.seedEvent(t, owner, domain.StatePending, 10, true)
				_, err := f.service.CreateRequest(context.Background(), requester.ID, event.ID)
				return err
			},
		},
		{
			name: "limit reached",
			run: func(t *testing.T, f *requestFixtures) error {
				owner := f.seedUser(t, "alice")
				first := f.seedUser(t, "bob")
				second := f.seedUser(t, "carol")
				event := f.seedEvent(t, owner, domain.StatePublished, 1, true)
				f.seedRequest(t, first, event, domain.RequestConfirmed)
				_, err := f.service.CreateRequest(context.Background(), second.ID, event.ID)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRequestFixtures()
			err := tt.run(t, f)
			require.ErrorIs(t, err, domain.ErrConflict)
		})
	}
}

func TestRequestService_CreateRequest_notFound(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixtures()
	owner := f.seedUser(t, "alice")
	requester := f.seedUser(t, "bob")
	event := f.seedEvent(t, owner, domain.StatePublished, 10, true)

	_, err := f.service.CreateRequest(ctx, 999, event.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.service.CreateRequest(ctx, requester.ID, 999)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// A canceled request does not block a new one for the same event.
func TestRequestService_CreateRequest_afterCancel(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixtures()
	owner := f.seedUser(t, "alice")
	requester := f.seedUser(t, "bob")
	event := f.seedEvent(t, owner, domain.StatePublished, 10, true)
	f.seedRequest(t, requester, event, domain.RequestCanceled)

	req, err := f.service.CreateRequest(ctx, requester.ID, event.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, req.Status)
}

func TestRequestService_CancelRequest(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixtures()
	owner := f.seedUser(t, "alice")
	requester := f.seedUser(t, "bob")
	event := f.seedEvent(t, owner, domain.StatePublished, 10, true)
	req := f.seedRequest(t, requester, event, domain.RequestPending)

	canceled, err := f.service.CancelRequest(ctx, requester.ID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestCanceled, canceled.Status)

	stored, err := f.requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestCanceled, stored.Status)
}

func TestRequestService_CancelRequest_errors(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixtures()
	owner := f.seedUser(t, "alice")
	requester := f.seedUser(t, "bob")
	other := f.seedUser(t, "carol")
	event := f.seedEvent(t, owner, domain.StatePublished, 10, true)
	pending := f.seedRequest(t, requester, event, domain.RequestPending)
	confirmed := f.seedRequest(t, other, event, domain.RequestConfirmed)

	_, err := f.service.CancelRequest(ctx, requester.ID, 999)
	require.ErrorIs(t, err, domain.ErrNotFound)

	// Someone else's request.
	_, err = f.service.CancelRequest(ctx, other.ID, pending.ID)
	require.ErrorIs(t, err, domain.ErrConflict)

	// A confirmed participant cannot leave through this path.
	_, err = f.service.CancelRequest(ctx, other.ID, confirmed.ID)
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestRequestService_GetEventRequests(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixtures()
	owner := f.seedUser(t, "alice")
	requester := f.seedUser(t, "bob")
	event := f.seedEvent(t, owner, domain.StatePublished, 10, true)
	f.seedRequest(t, requester, event, domain.RequestPending)

	requests, err := f.service.GetEventRequests(ctx, owner.ID, event.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)

	_, err = f.service.GetEventRequests(ctx, requester.ID, event.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRequestService_DecideRequests_demotesOverflow(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixtures()
	owner := f.seedUser(t, "alice")
	first := f.seedUser(t, "bob")
	second := f.seedUser(t, "carol")
	event := f.seedEvent(t, owner, domain.StatePublished, 1, true)
	reqA := f.seedRequest(t, first, event, domain.RequestPending)
	reqB := f.seedRequest(t, second, event, domain.RequestPending)

	result, err := f.service.DecideRequests(ctx, owner.ID, event.ID, domain.RequestDecision{
		RequestIDs: []int64{reqA.ID, reqB.ID},
		Status:     domain.RequestConfirmed,
	})
	require.NoError(t, err)
	require.Len(t, result.ConfirmedRequests, 1)
	require.Len(t, result.RejectedRequests, 1)
	assert.Equal(t, reqA.ID, result.ConfirmedRequests[0].ID)
	assert.Equal(t, reqB.ID, result.RejectedRequests[0].ID)

	storedA, err := f.requests.GetByID(ctx, reqA.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestConfirmed, storedA.Status)
	storedB, err := f.requests.GetByID(ctx, reqB.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestRejected, storedB.Status)
}

func TestRequestService_DecideRequests_rejectAll(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixtures()
	owner := f.seedUser(t, "alice")
	first := f.seedUser(t, "bob")
	second := f.seedUser(t, "carol")
	event := f.seedEvent(t, owner, domain.StatePublished, 5, true)
	reqA := f.seedRequest(t, first, event, domain.RequestPending)
	reqB := f.seedRequest(t, second, event, domain.RequestPending)

	result, err := f.service.DecideRequests(ctx, owner.ID, event.ID, domain.RequestDecision{
		RequestIDs: []int64{reqA.ID, reqB.ID},
		Status:     domain.RequestRejected,
	})
	require.NoError(t, err)
	assert.Empty(t, result.ConfirmedRequests)
	require.Len(t, result.RejectedRequests, 2)
}

func TestRequestService_DecideRequests_nonPendingAborts(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixtures()
	owner := f.seedUser(t, "alice")
	first := f.seedUser(t, "bob")
	second := f.seedUser(t, "carol")
	event := f.seedEvent(t, owner, domain.StatePublished, 5, true)
	pending := f.seedRequest(t, first, event, domain.RequestPending)
	canceled := f.seedRequest(t, second, event, domain.RequestCanceled)

	_, err := f.service.DecideRequests(ctx, owner.ID, event.ID, domain.RequestDecision{
		RequestIDs: []int64{pending.ID, canceled.ID},
		Status:     domain.RequestConfirmed,
	})
	require.ErrorIs(t, err, domain.ErrConflict)

	// Nothing from the aborted batch is persisted.
	stored, err := f.requests.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, stored.Status)
}

func TestRequestService_DecideRequests_unknownRequest(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixtures()
	owner := f.seedUser(t, "alice")
	requester := f.seedUser(t, "bob")
	event := f.seedEvent(t, owner, domain.StatePublished, 5, true)
	other := f.seedEvent(t, owner, domain.StatePublished, 5, true)
	foreign := f.seedRequest(t, requester, other, domain.RequestPending)

	// Missing id.
	_, err := f.service.DecideRequests(ctx, owner.ID, event.ID, domain.RequestDecision{
		RequestIDs: []int64{999},
		Status:     domain.RequestConfirmed,
	})
	require.ErrorIs(t, err, domain.ErrNotFound)

	// A request that belongs to a different event.
	_, err = f.service.DecideRequests(ctx, owner.ID, event.ID, domain.RequestDecision{
		RequestIDs: []int64{foreign.ID},
		Status:     domain.RequestConfirmed,
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRequestService_DecideRequests_noModeration(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		moderation bool
	}{
		{"unlimited capacity", 0, true},
		{"moderation disabled", 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRequestFixtures()
			owner := f.seedUser(t, "alice")
			event := f.seedEvent(t, owner, domain.StatePublished, tt.limit, tt.moderation)

			_, err := f.service.DecideRequests(context.Background(), owner.ID, event.ID, domain.RequestDecision{
				RequestIDs: []int64{1},
				Status:     domain.RequestConfirmed,
			})
			require.ErrorIs(t, err, domain.ErrConflict)
		})
	}
}

func TestRequestService_DecideRequests_invalidStatus(t *testing.T) {
	f := newRequestFixtures()
	owner := f.seedUser(t, "alice")
	event := f.seedEvent(t, owner, domain.StatePublished, 5, true)

	_, err := f.service.DecideRequests(context.Background(), owner.ID, event.ID, domain.RequestDecision{
		RequestIDs: []int64{1},
		Status:     domain.RequestPending,
	})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestRequestService_DecideRequests_notOwner(t *testing.T) {
	f := newRequestFixtures()
	owner := f.seedUser(t, "alice")
	other := f.seedUser(t, "bob")
	event := f.seedEvent(t, owner, domain.StatePublished, 5, true)

	_, err := f.service.DecideRequests(context.Background(), other.ID, event.ID, domain.RequestDecision{
		RequestIDs: []int64{1},
		Status:     domain.RequestConfirmed,
	})
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRequestService_ConfirmedCounts_zeroFill(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixtures()
	owner := f.seedUser(t, "alice")
	requester := f.seedUser(t, "bob")
	withRequests := f.seedEvent(t, owner, domain.StatePublished, 10, true)
	without := f.seedEvent(t, owner, domain.StatePublished, 10, true)
	f.seedRequest(t, requester, withRequests, domain.RequestConfirmed)

	counts, err := f.service.ConfirmedCounts(ctx, []*domain.Event{withRequests, without})
	require.NoError(t, err)
	assert.Equal(t, 1, counts[withRequests.ID])
	assert.Equal(t, 0, counts[without.ID])
	assert.Len(t, counts, 2)
}

// Concurrent auto-confirming requests against a capped event must never
// overshoot the participant limit.
func TestRequestService_CreateRequest_concurrent(t *testing.T) {
	const (
		limit      = 3
		requesters = 12
	)
	ctx := context.Background()
	f := newRequestFixtures()
	owner := f.seedUser(t, "alice")
	event := f.seedEvent(t, owner, domain.StatePublished, limit, false)

	users := make([]*domain.User, requesters)
	for i := range users {
		users[i] = f.seedUser(t, "user"+string(rune('a'+i)))
	}

	errs := make([]error, requesters)
	var wg sync.WaitGroup
	for i, u := range users {
		wg.Add(1)
		go func(i int, userID int64) {
			defer wg.Done()
			_, errs[i] = f.service.CreateRequest(ctx, userID, event.ID)
		}(i, u.ID)
	}
	wg.Wait()

	var confirmed, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			confirmed++
		case errors.Is(err, domain.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, limit, confirmed)
	assert.Equal(t, requesters-limit, conflicts)

	counts, err := f.requests.ConfirmedCounts(ctx, []int64{event.ID})
	require.NoError(t, err)
	assert.Equal(t, limit, counts[event.ID])
}
