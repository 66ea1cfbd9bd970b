// Package admission decides, per route policy, whether a request runs as an
// authenticated user, as a guest spending its free analysis, or not at all.
package admission

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-insights/internal/guests"
	"resume-insights/internal/identity"
	"resume-insights/internal/shared/auth"
	"resume-insights/internal/shared/server/middleware"
	"resume-insights/internal/shared/server/respond"
	"resume-insights/internal/shared/telemetry"
)

// Policy is the admission rule attached to a route.
type Policy int

const (
	PolicyAuthRequired Policy = iota
	PolicyGuestAllowed
)

// Kind classifies a Decision.
type Kind int

const (
	Reject Kind = iota
	AuthenticatedPass
	GuestPass
)

const (
	codeUnauthorized = "unauthorized"
	codeGuestLimit   = "guest_limit_reached"
)

// Decision is the outcome of Admit.
type Decision struct {
	Kind          Kind
	UserID        string
	Email         string
	Guest         guests.Result
	Status        int
	Code          string
	Message       string
	RequiresLogin bool
}

// QuotaLedger is the part of the guest ledger the gate needs.
type QuotaLedger interface {
	CheckAndConsume(ctx context.Context, id identity.Identity) guests.Result
}

// Gate applies route policies using a session verifier and the guest ledger.
type Gate struct {
	Verifier auth.Verifier
	Ledger   QuotaLedger
}

// NewGate constructs a Gate.
func NewGate(verifier auth.Verifier, ledger QuotaLedger) *Gate {
	return &Gate{Verifier: verifier, Ledger: ledger}
}

// Admit evaluates the request against policy. A passing decision also sets
// the caller's identity on the gin context; a rejection is returned for the
// caller to write.
func (g *Gate) Admit(c *gin.Context, policy Policy) Decision {
	d := g.decide(c, policy)
	switch d.Kind {
	case AuthenticatedPass:
		middleware.SetUser(c, d.UserID, d.Email)
	case GuestPass:
		middleware.SetGuest(c, d.Guest.RecordID)
	}
	return d
}

func (g *Gate) decide(c *gin.Context, policy Policy) Decision {
	token, present := auth.BearerToken(c.GetHeader("Authorization"))
	if present {
		if token != "" && g.Verifier != nil {
			claims, err := g.Verifier.Verify(c.Request.Context(), token)
			if err == nil {
				return Decision{Kind: AuthenticatedPass, UserID: claims.Subject, Email: claims.Email}
			}
			telemetry.Warn("admission.token_rejected", map[string]any{
				"request_id": middleware.RequestIDFromContext(c),
				"error":      err,
				"policy":     policy.String(),
			})
		}
		if policy == PolicyAuthRequired {
			return unauthorized("Invalid token")
		}
	} else if policy == PolicyAuthRequired {
		return unauthorized("Missing authorization header")
	}

	res := g.Ledger.CheckAndConsume(c.Request.Context(), identity.Resolve(c.Request))
	if !res.Allowed {
		return Decision{
			Kind:          Reject,
			Guest:         res,
			Status:        http.StatusTooManyRequests,
			Code:          codeGuestLimit,
			Message:       res.Message,
			RequiresLogin: true,
		}
	}
	return Decision{Kind: GuestPass, Guest: res}
}

// WriteRejection sends the error response for a rejected decision.
func WriteRejection(c *gin.Context, d Decision) {
	if d.RequiresLogin {
		respond.LoginRequired(c, d.Status, d.Code, d.Message)
		return
	}
	respond.Error(c, d.Status, d.Code, d.Message, nil)
}

// RequireAuth is middleware for routes that never admit guests.
func (g *Gate) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if d := g.Admit(c, PolicyAuthRequired); d.Kind == Reject {
			WriteRejection(c, d)
			return
		}
		c.Next()
	}
}

func (p Policy) String() string {
	if p == PolicyGuestAllowed {
		return "guest_allowed"
	}
	return "auth_required"
}

func unauthorized(message string) Decision {
	return Decision{
		Kind:    Reject,
		Status:  http.StatusUnauthorized,
		Code:    codeUnauthorized,
		Message: message,
	}
}
