package service

import (
	"time"

	"github.com/ksalp/portal/internal/core/domain"
)

// RequireLogin rejects anonymous callers.
func RequireLogin(user *domain.User) error {
	if user == nil {
		return domain.ErrLoginRequired
	}
	return nil
}

// RequirePremium rejects callers without an active premium subscription.
func RequirePremium(user *domain.User, now time.Time) error {
	if err := RequireLogin(user); err != nil {
		return err
	}
	if !user.ValidPayment(now) {
		return domain.ErrPremiumRequired
	}
	return nil
}

// RequirePremiumLite accepts premium or premium lite.
func RequirePremiumLite(user *domain.User, now time.Time) error {
	if err := RequireLogin(user); err != nil {
		return err
	}
	if !user.HasPremiumLite(now) {
		return domain.ErrPremiumLiteRequired
	}
	return nil
}
