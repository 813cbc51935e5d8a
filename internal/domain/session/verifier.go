package session

import (
	"context"
	"errors"

	"github.com/soundtrail/backend/internal/entity"
	"github.com/soundtrail/backend/internal/model"
	"github.com/soundtrail/backend/internal/repository"
	"github.com/soundtrail/backend/pkg/errorx"
	"github.com/soundtrail/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type FailureReason string

const (
	ReasonNone    FailureReason = ""
	ReasonInvalid FailureReason = "invalid"
	ReasonExpired FailureReason = "expired"
	ReasonStale   FailureReason = "stale"
)

// Result is the outcome of a verification. User is set on success, Reason
// otherwise.
type Result struct {
	User   *entity.User
	Claims model.AccessToken
	Reason FailureReason
}

func (r Result) OK() bool {
	return r.User != nil
}

type Verifier struct {
	userRepo repository.UserRepository
}

func NewVerifier(userRepo repository.UserRepository) *Verifier {
	return &Verifier{userRepo: userRepo}
}

// Verify resolves a bearer token to the stored user. Every failure is
// reported to the caller as Unauthenticated; the reason is only logged.
func (v *Verifier) Verify(ctx context.Context, token string) (Result, error) {
	var claims model.AccessToken
	exp, err := xcontext.TokenEngine(ctx).Parse(token, &claims)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Rejected invalid access token: %v", err)
		return v.fail(ReasonInvalid, claims)
	}

	now := xcontext.Now(ctx)
	if now.After(exp) || now.UnixMilli() > claims.LongExpire {
		xcontext.Logger(ctx).Debugf("Rejected expired access token of user %s", claims.ID)
		return v.fail(ReasonExpired, claims)
	}

	user, err := v.userRepo.GetByID(ctx, claims.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get user %s: %v", claims.ID, err)
			return Result{Claims: claims}, errorx.Unknown
		}

		xcontext.Logger(ctx).Warnf("Rejected stale session of unknown user %s", claims.ID)
		return v.fail(ReasonStale, claims)
	}

	return Result{User: user, Claims: claims}, nil
}

func (v *Verifier) fail(reason FailureReason, claims model.AccessToken) (Result, error) {
	return Result{Reason: reason, Claims: claims},
		errorx.New(errorx.Unauthenticated, "Unauthenticated")
}
