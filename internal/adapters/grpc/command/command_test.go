package command

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ogurasousui/eams-grpc-clean-arch/internal/core/absence"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/core/identity"
	"google.golang.org/grpc"
)

func TestFullMethod(t *testing.T) {
	t.Parallel()

	if got := FullMethod(AbsenceApprove); got != "/eams.Commands/absence.approve" {
		t.Fatalf("unexpected full method: %s", got)
	}
}

func TestCommandOwnership(t *testing.T) {
	t.Parallel()

	for _, cmd := range []string{AuthRegister, AuthLogin} {
		if !IsAuthCommand(cmd) || IsAbsenceCommand(cmd) {
			t.Fatalf("expected %s to be owned by the auth service", cmd)
		}
	}

	for _, cmd := range []string{AbsenceList, AbsenceCreate, AbsenceApprove, AbsenceReject} {
		if !IsAbsenceCommand(cmd) || IsAuthCommand(cmd) {
			t.Fatalf("expected %s to be owned by the absence service", cmd)
		}
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	codec := Codec{}

	in := RegisterPayload{Name: "John", Email: "john@example.com", Role: "EMPLOYEE"}
	b, err := codec.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	var out RegisterPayload
	if err := codec.Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if out != in {
		t.Fatalf("expected %+v, got %+v", in, out)
	}

	if codec.Name() != "json" {
		t.Fatalf("expected codec name json, got %s", codec.Name())
	}
}

func TestIdentity_ToIdentity(t *testing.T) {
	t.Parallel()

	ident, err := Identity{Sub: "user-1", Email: "user@example.com", Role: "ADMIN"}.ToIdentity()
	if err != nil {
		t.Fatalf("ToIdentity returned error: %v", err)
	}
	if ident.Subject != "user-1" || ident.Role != identity.RoleAdmin {
		t.Fatalf("unexpected identity: %+v", ident)
	}
}

func TestIdentity_ToIdentity_UnknownRole(t *testing.T) {
	t.Parallel()

	if _, err := (Identity{Sub: "user-1", Role: "MANAGER"}).ToIdentity(); !errors.Is(err, identity.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestFromAbsence(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 7, 20, 10, 30, 0, 0, time.UTC)
	wire := FromAbsence(&absence.AbsenceRequest{
		ID:         "absence-1",
		Reason:     "vacation",
		StartDate:  time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC),
		Status:     absence.StatusPending,
		EmployeeID: "emp-1",
		CreatedAt:  created,
	})

	if wire.StartDate != "2025-08-01" || wire.EndDate != "2025-08-05" {
		t.Errorf("expected calendar-day dates on wire, got %s and %s", wire.StartDate, wire.EndDate)
	}
	if wire.CreatedAt != created.Format(time.RFC3339) {
		t.Errorf("expected RFC3339 created at, got %s", wire.CreatedAt)
	}
}

func TestFromAbsences_EmptyIsNotNil(t *testing.T) {
	t.Parallel()

	if result := FromAbsences(nil); result == nil {
		t.Fatalf("expected empty slice, got nil")
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	parsed, err := ParseDate("2025-08-01")
	if err != nil {
		t.Fatalf("ParseDate returned error: %v", err)
	}
	if !parsed.Equal(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected parsed date: %v", parsed)
	}

	if _, err := ParseDate("08/01/2025"); err == nil {
		t.Fatalf("expected error for unsupported layout")
	}
}

func TestNewServiceDesc_DispatchesByCommand(t *testing.T) {
	t.Parallel()

	var gotPayload json.RawMessage
	desc := NewServiceDesc(map[string]HandlerFunc{
		AuthLogin: func(ctx context.Context, payload json.RawMessage) (interface{}, error) {
			gotPayload = payload
			return LoginResult{AccessToken: "signed"}, nil
		},
	})

	if desc.ServiceName != ServiceName {
		t.Fatalf("expected service name %s, got %s", ServiceName, desc.ServiceName)
	}
	if len(desc.Methods) != 1 || desc.Methods[0].MethodName != AuthLogin {
		t.Fatalf("unexpected methods: %+v", desc.Methods)
	}

	raw := json.RawMessage(`{"email":"john@example.com"}`)
	dec := func(v interface{}) error {
		*(v.(*json.RawMessage)) = raw
		return nil
	}

	resp, err := desc.Methods[0].Handler(nil, context.Background(), dec, nil)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if string(gotPayload) != string(raw) {
		t.Fatalf("expected raw payload passed through, got %s", gotPayload)
	}
	if result := resp.(LoginResult); result.AccessToken != "signed" {
		t.Fatalf("unexpected response: %+v", result)
	}
}

func TestNewServiceDesc_InterceptorSeesFullMethod(t *testing.T) {
	t.Parallel()

	desc := NewServiceDesc(map[string]HandlerFunc{
		AbsenceList: func(ctx context.Context, payload json.RawMessage) (interface{}, error) {
			return ListAbsencesResult{}, nil
		},
	})

	var gotMethod string
	interceptor := func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		gotMethod = info.FullMethod
		return handler(ctx, req)
	}

	dec := func(v interface{}) error {
		*(v.(*json.RawMessage)) = json.RawMessage(`{}`)
		return nil
	}

	if _, err := desc.Methods[0].Handler(nil, context.Background(), dec, interceptor); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if gotMethod != FullMethod(AbsenceList) {
		t.Fatalf("expected interceptor to see %s, got %s", FullMethod(AbsenceList), gotMethod)
	}
}
