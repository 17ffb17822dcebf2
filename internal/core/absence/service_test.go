package absence

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/ogurasousui/eams-grpc-clean-arch/internal/core/identity"
)

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time {
	return s.now
}

type stubIDGenerator struct {
	id string
}

func (s stubIDGenerator) NewID() string {
	return s.id
}

type fakeRepo struct {
	requests    map[string]*AbsenceRequest
	seq         int
	lastFilter  ListFilter
	createCalls int
	decideCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{requests: make(map[string]*AbsenceRequest)}
}

func (r *fakeRepo) Create(_ context.Context, request *AbsenceRequest) (*AbsenceRequest, error) {
	r.createCalls++
	r.seq++
	copy := *request
	if copy.ID == "" {
		copy.ID = "absence-" + strconv.Itoa(r.seq)
	}
	r.requests[copy.ID] = &copy
	return cloneRequest(&copy), nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*AbsenceRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRequest(req), nil
}

func (r *fakeRepo) Decide(_ context.Context, id string, status Status) (*AbsenceRequest, error) {
	r.decideCalls++
	req, ok := r.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	if IsTerminal(req.Status) {
		return nil, ErrAlreadyDecided
	}
	req.Status = status
	return cloneRequest(req), nil
}

func (r *fakeRepo) List(_ context.Context, filter ListFilter) ([]*AbsenceRequest, int, error) {
	r.lastFilter = filter

	var filtered []*AbsenceRequest
	for _, req := range r.requests {
		if filter.EmployeeID != "" && req.EmployeeID != filter.EmployeeID {
			continue
		}
		filtered = append(filtered, cloneRequest(req))
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	total := len(filtered)
	if filter.Offset > total {
		return []*AbsenceRequest{}, total, nil
	}

	end := filter.Offset + filter.Limit
	if end > total {
		end = total
	}

	return filtered[filter.Offset:end], total, nil
}

func cloneRequest(req *AbsenceRequest) *AbsenceRequest {
	if req == nil {
		return nil
	}
	copy := *req
	return &copy
}

func employeeCaller(subject string) identity.Identity {
	return identity.Identity{Subject: subject, Email: subject + "@example.com", Role: identity.RoleEmployee}
}

func adminCaller() identity.Identity {
	return identity.Identity{Subject: "admin-1", Email: "admin@example.com", Role: identity.RoleAdmin}
}

func TestService_Create_Success(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	repo := newFakeRepo()
	svc := NewService(repo, stubClock{now: now}, stubIDGenerator{id: "absence-fixed"}, nil)

	start := time.Date(2025, 6, 10, 15, 4, 5, 0, time.FixedZone("JST", 9*3600))
	end := time.Date(2025, 6, 12, 8, 0, 0, 0, time.UTC)

	created, err := svc.Create(context.Background(), CreateInput{
		Reason:    "  family event  ",
		StartDate: start,
		EndDate:   end,
	}, employeeCaller("emp-1"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if created.ID != "absence-fixed" {
		t.Errorf("expected generated ID to be used, got %s", created.ID)
	}
	if created.Reason != "family event" {
		t.Errorf("expected trimmed reason, got %q", created.Reason)
	}
	if created.Status != StatusPending {
		t.Errorf("expected status PENDING, got %s", created.Status)
	}
	if created.EmployeeID != "emp-1" {
		t.Errorf("expected employee ID from caller, got %s", created.EmployeeID)
	}
	if !created.CreatedAt.Equal(now) {
		t.Errorf("expected CreatedAt to use clock, got %v", created.CreatedAt)
	}

	wantStart := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	if !created.StartDate.Equal(wantStart) {
		t.Errorf("expected start date normalized to %v, got %v", wantStart, created.StartDate)
	}
	wantEnd := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)
	if !created.EndDate.Equal(wantEnd) {
		t.Errorf("expected end date normalized to %v, got %v", wantEnd, created.EndDate)
	}
}

func TestService_Create_SingleDay(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := NewService(repo, nil, nil, nil)

	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	created, err := svc.Create(context.Background(), CreateInput{
		Reason:    "medical appointment",
		StartDate: day,
		EndDate:   day,
	}, employeeCaller("emp-1"))
	if err != nil {
		t.Fatalf("expected single-day range to be accepted, got %v", err)
	}

	if !created.StartDate.Equal(created.EndDate) {
		t.Fatalf("expected start and end to match, got %v and %v", created.StartDate, created.EndDate)
	}
}

func TestService_Create_AdminNotPermitted(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateInput{
		Reason:    "vacation",
		StartDate: time.Now(),
		EndDate:   time.Now(),
	}, adminCaller())
	if !errors.Is(err, ErrNotPermitted) {
		t.Fatalf("expected ErrNotPermitted, got %v", err)
	}

	if repo.createCalls != 0 {
		t.Fatalf("expected repository to stay untouched, got %d create calls", repo.createCalls)
	}
}

func TestService_Create_EmptyReason(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateInput{
		Reason:    "   ",
		StartDate: time.Now(),
		EndDate:   time.Now(),
	}, employeeCaller("emp-1"))
	if !errors.Is(err, ErrInvalidReason) {
		t.Fatalf("expected ErrInvalidReason, got %v", err)
	}
}

func TestService_Create_EndBeforeStart(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateInput{
		Reason:    "vacation",
		StartDate: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
	}, employeeCaller("emp-1"))
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func seedRequests(t *testing.T, svc *Service, employee string, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		if _, err := svc.Create(context.Background(), CreateInput{
			Reason:    "reason " + strconv.Itoa(i),
			StartDate: time.Date(2025, 7, 1+i, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 7, 2+i, 0, 0, 0, 0, time.UTC),
		}, employeeCaller(employee)); err != nil {
			t.Fatalf("Create error seeding data: %v", err)
		}
	}
}

func TestService_List_EmployeeScopedToOwnRequests(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := NewService(repo, nil, nil, nil)
	seedRequests(t, svc, "emp-1", 2)
	seedRequests(t, svc, "emp-2", 3)

	result, err := svc.List(context.Background(), ListInput{}, employeeCaller("emp-1"))
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if repo.lastFilter.EmployeeID != "emp-1" {
		t.Fatalf("expected filter scoped to emp-1, got %q", repo.lastFilter.EmployeeID)
	}
	if result.Total != 2 {
		t.Fatalf("expected total 2, got %d", result.Total)
	}
	for _, req := range result.Data {
		if req.EmployeeID != "emp-1" {
			t.Fatalf("expected only own requests, got one for %s", req.EmployeeID)
		}
	}
}

func TestService_List_AdminSeesAll(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := NewService(repo, nil, nil, nil)
	seedRequests(t, svc, "emp-1", 2)
	seedRequests(t, svc, "emp-2", 3)

	result, err := svc.List(context.Background(), ListInput{}, adminCaller())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if repo.lastFilter.EmployeeID != "" {
		t.Fatalf("expected unscoped filter for admin, got %q", repo.lastFilter.EmployeeID)
	}
	if result.Total != 5 {
		t.Fatalf("expected total 5, got %d", result.Total)
	}
}

func TestService_List_DefaultsAndPagination(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := NewService(repo, nil, nil, nil)
	seedRequests(t, svc, "emp-1", 12)

	result, err := svc.List(context.Background(), ListInput{}, adminCaller())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if result.Page != 1 || result.Limit != 10 {
		t.Fatalf("expected defaults page=1 limit=10, got page=%d limit=%d", result.Page, result.Limit)
	}
	if len(result.Data) != 10 {
		t.Fatalf("expected 10 items on first page, got %d", len(result.Data))
	}
	if result.Total != 12 {
		t.Fatalf("expected total 12, got %d", result.Total)
	}

	second, err := svc.List(context.Background(), ListInput{Page: 2}, adminCaller())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(second.Data) != 2 {
		t.Fatalf("expected 2 items on second page, got %d", len(second.Data))
	}
	if repo.lastFilter.Offset != 10 {
		t.Fatalf("expected offset 10 for second page, got %d", repo.lastFilter.Offset)
	}
}

func TestService_List_NewestFirst(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		svc := NewService(repo, stubClock{now: base.Add(time.Duration(i) * time.Hour)}, nil, nil)
		if _, err := svc.Create(context.Background(), CreateInput{
			Reason:    "reason " + strconv.Itoa(i),
			StartDate: base,
			EndDate:   base,
		}, employeeCaller("emp-1")); err != nil {
			t.Fatalf("Create error seeding data: %v", err)
		}
	}

	svc := NewService(repo, nil, nil, nil)
	result, err := svc.List(context.Background(), ListInput{}, adminCaller())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	for i := 1; i < len(result.Data); i++ {
		if result.Data[i].CreatedAt.After(result.Data[i-1].CreatedAt) {
			t.Fatalf("expected newest-first ordering, got %v before %v",
				result.Data[i-1].CreatedAt, result.Data[i].CreatedAt)
		}
	}
}

func TestService_List_LimitTooLarge(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil, nil)

	_, err := svc.List(context.Background(), ListInput{Limit: maxListLimit + 1}, adminCaller())
	if !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("expected ErrInvalidLimit, got %v", err)
	}
}

func TestService_List_EmptyResultIsNotNil(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil, nil)

	result, err := svc.List(context.Background(), ListInput{}, adminCaller())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if result.Data == nil {
		t.Fatalf("expected empty slice, got nil")
	}
	if result.Total != 0 {
		t.Fatalf("expected total 0, got %d", result.Total)
	}
}

func TestService_Approve_Success(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := NewService(repo, nil, nil, nil)

	created, err := svc.Create(context.Background(), CreateInput{
		Reason:    "vacation",
		StartDate: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC),
	}, employeeCaller("emp-1"))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	decided, err := svc.Approve(context.Background(), created.ID, adminCaller())
	if err != nil {
		t.Fatalf("Approve returned error: %v", err)
	}

	if decided.Status != StatusApproved {
		t.Fatalf("expected status APPROVED, got %s", decided.Status)
	}
}

func TestService_Reject_Success(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := NewService(repo, nil, nil, nil)

	created, err := svc.Create(context.Background(), CreateInput{
		Reason:    "vacation",
		StartDate: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC),
	}, employeeCaller("emp-1"))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	decided, err := svc.Reject(context.Background(), created.ID, adminCaller())
	if err != nil {
		t.Fatalf("Reject returned error: %v", err)
	}

	if decided.Status != StatusRejected {
		t.Fatalf("expected status REJECTED, got %s", decided.Status)
	}
}

func TestService_Decide_EmployeeNotPermitted(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.Approve(context.Background(), "missing-id", employeeCaller("emp-1"))
	if !errors.Is(err, ErrNotPermitted) {
		t.Fatalf("expected ErrNotPermitted before any lookup, got %v", err)
	}

	if repo.decideCalls != 0 {
		t.Fatalf("expected repository to stay untouched, got %d decide calls", repo.decideCalls)
	}
}

func TestService_Decide_NotFound(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil, nil)

	if _, err := svc.Approve(context.Background(), "missing-id", adminCaller()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := svc.Reject(context.Background(), "   ", adminCaller()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for blank id, got %v", err)
	}
}

func TestService_Decide_AlreadyDecided(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := NewService(repo, nil, nil, nil)

	created, err := svc.Create(context.Background(), CreateInput{
		Reason:    "vacation",
		StartDate: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC),
	}, employeeCaller("emp-1"))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if _, err := svc.Approve(context.Background(), created.ID, adminCaller()); err != nil {
		t.Fatalf("Approve error: %v", err)
	}

	if _, err := svc.Reject(context.Background(), created.ID, adminCaller()); !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}
}
