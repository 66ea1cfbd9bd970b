package admission

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-insights/internal/guests"
	"resume-insights/internal/identity"
	"resume-insights/internal/shared/auth"
	"resume-insights/internal/shared/server/middleware"
)

type countingLedger struct {
	inner *guests.Ledger
	calls atomic.Int32
}

func (l *countingLedger) CheckAndConsume(ctx context.Context, id identity.Identity) guests.Result {
	l.calls.Add(1)
	return l.inner.CheckAndConsume(ctx, id)
}

func newTestGate(t *testing.T) (*Gate, *countingLedger, *auth.HMACVerifier) {
	t.Helper()
	verifier, err := auth.NewHMACVerifier("gate-secret", false)
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	ledger := &countingLedger{inner: guests.NewLedger(guests.NewMemoryStore())}
	return NewGate(verifier, ledger), ledger, verifier
}

func admitOnce(gate *Gate, policy Policy, header string) (Decision, *gin.Context) {
	gin.SetMode(gin.TestMode)
	resp := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(resp)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	c.Request = req
	return gate.Admit(c, policy), c
}

func TestAdmitValidTokenSkipsLedger(t *testing.T) {
	gate, ledger, verifier := newTestGate(t)
	token, _ := verifier.Sign("user-1", "u@example.com", time.Hour)

	for _, policy := range []Policy{PolicyAuthRequired, PolicyGuestAllowed} {
		d, c := admitOnce(gate, policy, "Bearer "+token)
		if d.Kind != AuthenticatedPass || d.UserID != "user-1" {
			t.Fatalf("%s: expected authenticated pass, got %+v", policy, d)
		}
		if middleware.UserIDFromContext(c) != "user-1" || middleware.IsGuest(c) {
			t.Fatalf("%s: context not populated for user", policy)
		}
	}
	if ledger.calls.Load() != 0 {
		t.Fatalf("ledger must not be consulted for authenticated users")
	}
}

func TestAdmitAuthRequiredRejectsWithoutLedger(t *testing.T) {
	gate, ledger, _ := newTestGate(t)

	cases := map[string]string{
		"missing":   "",
		"malformed": "Token abc",
		"invalid":   "Bearer not-a-jwt",
	}
	for name, header := range cases {
		d, _ := admitOnce(gate, PolicyAuthRequired, header)
		if d.Kind != Reject || d.Status != http.StatusUnauthorized || d.RequiresLogin {
			t.Fatalf("%s: expected 401 reject, got %+v", name, d)
		}
	}
	if ledger.calls.Load() != 0 {
		t.Fatalf("auth-required routes must never fall through to guest logic")
	}
}

func TestAdmitGuestAllowedFallsThroughToGuestPath(t *testing.T) {
	gate, ledger, _ := newTestGate(t)

	d, c := admitOnce(gate, PolicyGuestAllowed, "Bearer not-a-jwt")
	if d.Kind != GuestPass {
		t.Fatalf("expected guest pass, got %+v", d)
	}
	if !middleware.IsGuest(c) || middleware.GuestIDFromContext(c) != d.Guest.RecordID {
		t.Fatalf("context not populated for guest")
	}

	d, _ = admitOnce(gate, PolicyGuestAllowed, "")
	if d.Kind != Reject || d.Status != http.StatusTooManyRequests || !d.RequiresLogin {
		t.Fatalf("expected 429 requiring login, got %+v", d)
	}
	if d.Message != guests.LimitMessage {
		t.Fatalf("unexpected message %q", d.Message)
	}
	if ledger.calls.Load() != 2 {
		t.Fatalf("expected 2 ledger calls, got %d", ledger.calls.Load())
	}
}

func TestRequireAuthMiddleware(t *testing.T) {
	gate, _, verifier := newTestGate(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/history", gate.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": middleware.UserIDFromContext(c)})
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &body)
	if body["error"] != "unauthorized" {
		t.Fatalf("unexpected body %v", body)
	}

	token, _ := verifier.Sign("user-9", "", time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestWriteRejectionGuestLimitBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resp := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(resp)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/analyze", nil)

	WriteRejection(c, Decision{
		Kind:          Reject,
		Status:        http.StatusTooManyRequests,
		Code:          codeGuestLimit,
		Message:       guests.LimitMessage,
		RequiresLogin: true,
	})

	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != http.StatusTooManyRequests || body["requiresLogin"] != true || body["message"] != guests.LimitMessage {
		t.Fatalf("unexpected rejection %d %v", resp.Code, body)
	}
}
