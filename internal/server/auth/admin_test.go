package auth

import (
	"testing"
	"time"

	"github.com/avolkovs/teamcomp/internal/common"
)

func newTestAdmin(t *testing.T) *Admin {
	t.Helper()
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	return NewAdmin("admin", hash, []byte("signing-key"), time.Hour)
}

func TestAdminLogin_Success(t *testing.T) {
	a := newTestAdmin(t)

	tok, err := a.Login("admin", "s3cret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	subject, err := a.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if subject != "admin" {
		t.Fatalf("subject mismatch: got %q", subject)
	}
}

func TestAdminLogin_BadCredentials(t *testing.T) {
	a := newTestAdmin(t)

	if _, err := a.Login("admin", "wrong"); err != common.ErrorUnauthorized {
		t.Fatalf("expected common.ErrorUnauthorized, got %v", err)
	}
	if _, err := a.Login("root", "s3cret"); err != common.ErrorUnauthorized {
		t.Fatalf("expected common.ErrorUnauthorized, got %v", err)
	}
}

func TestAdminVerify_GarbageToken(t *testing.T) {
	a := newTestAdmin(t)
	if _, err := a.Verify("garbage"); err != common.ErrInvalidToken {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}
