package customers

import (
	"context"
	"testing"
	"time"

	"github.com/storyst/salestrack/internal/app/storage/memory"
	"github.com/storyst/salestrack/internal/auth"
	"github.com/storyst/salestrack/internal/errors"
)

var birthDate = time.Date(1990, 3, 14, 0, 0, 0, 0, time.UTC)

func newTestService() *Service {
	codec := auth.NewTokenCodec([]byte("customers-test-secret"), time.Hour)
	return New(memory.New(), codec, nil)
}

func TestRegisterIssuesVerifiableToken(t *testing.T) {
	svc := newTestService()

	created, token, err := svc.Register(context.Background(), "a@x.com", "s3cret", "Alice", birthDate)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.PasswordHash == "s3cret" {
		t.Fatal("password must not be stored in clear")
	}

	claims, err := svc.codec.Verify(token)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if claims.CustomerID != created.ID || claims.Email != "a@x.com" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService()

	if _, _, err := svc.Register(context.Background(), "a@x.com", "pw", "Alice", birthDate); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, _, err := svc.Register(context.Background(), "a@x.com", "pw2", "Alice Again", birthDate)
	svcErr := errors.GetServiceError(err)
	if svcErr == nil || svcErr.Code != errors.CodeDuplicateEmail {
		t.Fatalf("err = %v, want code %s", err, errors.CodeDuplicateEmail)
	}
	if svcErr.Details["field"] != "email" {
		t.Fatalf("details = %v, want conflicting field named", svcErr.Details)
	}
}

func TestLogin(t *testing.T) {
	svc := newTestService()
	created, _, err := svc.Register(context.Background(), "a@x.com", "s3cret", "Alice", birthDate)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	c, token, err := svc.Login(context.Background(), "a@x.com", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if c.ID != created.ID || token == "" {
		t.Fatalf("login returned %q / token %q", c.ID, token)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService()
	if _, _, err := svc.Register(context.Background(), "a@x.com", "s3cret", "Alice", birthDate); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Wrong password and unknown email must be indistinguishable.
	for _, attempt := range []struct{ email, password string }{
		{"a@x.com", "wrong"},
		{"nobody@x.com", "s3cret"},
	} {
		_, _, err := svc.Login(context.Background(), attempt.email, attempt.password)
		svcErr := errors.GetServiceError(err)
		if svcErr == nil || svcErr.Code != errors.CodeInvalidCredentials {
			t.Fatalf("login(%s) err = %v, want code %s", attempt.email, err, errors.CodeInvalidCredentials)
		}
	}
}

func TestUpdateChangesProfileFields(t *testing.T) {
	svc := newTestService()
	created, _, err := svc.Register(context.Background(), "a@x.com", "pw", "Alice", birthDate)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	newName := "Alice Cooper"
	newEmail := "cooper@x.com"
	updated, err := svc.Update(context.Background(), created.ID, &newName, &newEmail, nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != newName || updated.Email != newEmail {
		t.Fatalf("updated = %+v", updated)
	}
	if !updated.BirthDate.Equal(birthDate) {
		t.Fatal("birth date must be untouched when nil")
	}

	// The old password still works after a profile update.
	if _, _, err := svc.Login(context.Background(), newEmail, "pw"); err != nil {
		t.Fatalf("login after update: %v", err)
	}
}

func TestGetAndDeleteNotFound(t *testing.T) {
	svc := newTestService()

	_, err := svc.Get(context.Background(), "00000000-0000-0000-0000-000000000000")
	if svcErr := errors.GetServiceError(err); svcErr == nil || svcErr.Code != errors.CodeNotFound {
		t.Fatalf("get err = %v, want %s", err, errors.CodeNotFound)
	}

	err = svc.Delete(context.Background(), "00000000-0000-0000-0000-000000000000")
	if svcErr := errors.GetServiceError(err); svcErr == nil || svcErr.Code != errors.CodeNotFound {
		t.Fatalf("delete err = %v, want %s", err, errors.CodeNotFound)
	}
}

func TestProfileProjection(t *testing.T) {
	svc := newTestService()
	created, _, err := svc.Register(context.Background(), "a@x.com", "pw", "Alice", birthDate)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	profile, err := svc.Profile(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.ID != created.ID || profile.Name != "Alice" || profile.Email != "a@x.com" {
		t.Fatalf("profile = %+v", profile)
	}
}
