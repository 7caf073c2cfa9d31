package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/atelier/app/models"
	"github.com/shashiranjanraj/atelier/pkg/expo"
	"github.com/shashiranjanraj/atelier/pkg/logger"
	"github.com/shashiranjanraj/atelier/pkg/metrics"
)

// Lease timing rules.
const (
	// TokenTTL is the lease length granted on registration and renewed on
	// every successful validation (rolling TTL).
	TokenTTL = 30 * 24 * time.Hour

	// ValidationInterval is how long a token may go without a liveness
	// probe before the sweep re-checks it.
	ValidationInterval = 24 * time.Hour
)

// ErrTokenRoleForbidden rejects push-token registration for non-user roles;
// admin accounts never hold push tokens.
var ErrTokenRoleForbidden = errors.New("push tokens can only be registered for user accounts")

// UserStore is the user/lease persistence surface.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	AllWithToken(ctx context.Context) ([]models.User, error)
	UpdateLease(ctx context.Context, userID primitive.ObjectID, lease models.PushLease) error
	ClearLease(ctx context.Context, userID primitive.ObjectID) error
}

// PushGateway is the external delivery service: a batch send plus the
// token-format predicate.
type PushGateway interface {
	ValidToken(token string) bool
	Send(ctx context.Context, msgs []expo.Message) ([]expo.Ticket, error)
}

// PushTokenService manages the push-token lease lifecycle: issuance,
// rolling renewal, and the periodic cleanup sweep.
type PushTokenService struct {
	users   UserStore
	gateway PushGateway
}

func NewPushTokenService(users UserStore, gateway PushGateway) *PushTokenService {
	return &PushTokenService{users: users, gateway: gateway}
}

// SetPushToken registers or refreshes a user's push token. The token must
// pass the gateway's format predicate, and only "user" accounts may hold
// one. A fresh 30-day lease is written.
func (s *PushTokenService) SetPushToken(ctx context.Context, userID, token string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return wrapNotFound(err)
	}
	if user.Role != models.RoleUser {
		return ErrTokenRoleForbidden
	}
	if !s.gateway.ValidToken(token) {
		return ValidationErrors{"pushToken": "not a valid push token"}
	}

	now := timeNow()
	expires := now.Add(TokenTTL)
	return s.users.UpdateLease(ctx, user.ID, models.PushLease{
		Token:       &token,
		ExpiresAt:   &expires,
		ValidatedAt: &now,
	})
}

// MarkValidated records a successful liveness probe: last-validated moves to
// now and the lease is extended to now + 30 days.
func (s *PushTokenService) MarkValidated(ctx context.Context, user *models.User) error {
	now := timeNow()
	expires := now.Add(TokenTTL)
	lease := user.PushLease
	lease.ExpiresAt = &expires
	lease.ValidatedAt = &now
	return s.users.UpdateLease(ctx, user.ID, lease)
}

// TokenStatus is the lease state reported to operators.
type TokenStatus struct {
	HasToken    bool       `json:"hasToken"`
	Expired     bool       `json:"expired"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	ValidatedAt *time.Time `json:"validatedAt,omitempty"`
}

// Status reports a user's current lease state.
func (s *PushTokenService) Status(ctx context.Context, userID string) (*TokenStatus, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	lease := user.PushLease
	return &TokenStatus{
		HasToken:    lease.HasToken(),
		Expired:     lease.IsExpired(timeNow()),
		ExpiresAt:   lease.ExpiresAt,
		ValidatedAt: lease.ValidatedAt,
	}, nil
}

// SweepReport tallies cleanup outcomes per category.
type SweepReport struct {
	Total         int `json:"total"`
	Expired       int `json:"expired"`
	InvalidFormat int `json:"invalidFormat"`
	InvalidToken  int `json:"invalidToken"`
	Validated     int `json:"validated"`
	Skipped       int `json:"skipped"`
	Errors        int `json:"errors"`
}

// CleanupSweep walks every user holding a token and repairs their lease:
// expired or malformed tokens are cleared, stale-but-plausible tokens get a
// silent liveness probe (a gateway delivery error clears the lease, success
// renews it), and recently validated tokens are left alone. The sweep is
// idempotent and isolates failures per user.
func (s *PushTokenService) CleanupSweep(ctx context.Context) (*SweepReport, error) {
	users, err := s.users.AllWithToken(ctx)
	if err != nil {
		return nil, err
	}

	report := &SweepReport{Total: len(users)}
	for i := range users {
		s.sweepUser(ctx, &users[i], report)
	}

	logger.Info("token sweep finished",
		"total", report.Total,
		"expired", report.Expired,
		"invalidFormat", report.InvalidFormat,
		"invalidToken", report.InvalidToken,
		"validated", report.Validated,
		"skipped", report.Skipped,
		"errors", report.Errors,
	)
	return report, nil
}

func (s *PushTokenService) sweepUser(ctx context.Context, user *models.User, report *SweepReport) {
	now := timeNow()
	lease := user.PushLease

	switch {
	case lease.IsExpired(now):
		if err := s.users.ClearLease(ctx, user.ID); err != nil {
			s.sweepError(report, user, "clear expired lease", err)
			return
		}
		report.Expired++
		metrics.TokenSweepOutcomes.WithLabelValues("expired").Inc()

	case !s.gateway.ValidToken(*lease.Token):
		if err := s.users.ClearLease(ctx, user.ID); err != nil {
			s.sweepError(report, user, "clear malformed token", err)
			return
		}
		report.InvalidFormat++
		metrics.TokenSweepOutcomes.WithLabelValues("invalid_format").Inc()

	case lease.ValidatedAt == nil || now.Sub(*lease.ValidatedAt) >= ValidationInterval:
		s.probe(ctx, user, report)

	default:
		report.Skipped++
		metrics.TokenSweepOutcomes.WithLabelValues("skipped").Inc()
	}
}

// probe sends a silent push to check the token is still deliverable.
// Transport failures leave the lease alone: absence of evidence is not a
// dead token.
func (s *PushTokenService) probe(ctx context.Context, user *models.User, report *SweepReport) {
	tickets, err := s.gateway.Send(ctx, []expo.Message{{
		To:       *user.PushLease.Token,
		Data:     map[string]interface{}{"type": "probe"},
		Priority: "normal",
	}})
	if err != nil {
		s.sweepError(report, user, "probe send", err)
		return
	}
	if len(tickets) > 0 && !tickets[0].OK() {
		if err := s.users.ClearLease(ctx, user.ID); err != nil {
			s.sweepError(report, user, "clear dead token", err)
			return
		}
		report.InvalidToken++
		metrics.TokenSweepOutcomes.WithLabelValues("invalid_token").Inc()
		return
	}
	if err := s.MarkValidated(ctx, user); err != nil {
		s.sweepError(report, user, "mark validated", err)
		return
	}
	report.Validated++
	metrics.TokenSweepOutcomes.WithLabelValues("validated").Inc()
}

func (s *PushTokenService) sweepError(report *SweepReport, user *models.User, op string, err error) {
	report.Errors++
	metrics.TokenSweepOutcomes.WithLabelValues("error").Inc()
	logger.Warn("token sweep: user skipped", "user", user.ID.Hex(), "op", op, "error", err)
}
