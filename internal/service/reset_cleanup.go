package service

import (
	"time"

	"atb/news-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ResetTokenCleanup periodically clears expired password-reset tokens so
// stale hashes don't linger in user rows forever. Matching a token also
// checks the expiry, this is pure hygiene.
func ResetTokenCleanup(t time.Duration, db *gorm.DB) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Reset token cleanup attached", zap.Duration("tick_every", t))

	for range ticker.C {
		err := db.
			Model(model.User{}).
			Where("password_reset_token <> '' AND password_reset_expires < ?", time.Now()).
			Updates(map[string]any{
				"password_reset_token":   "",
				"password_reset_expires": nil,
			}).
			Error
		if err != nil {
			zap.L().Error("Failed to clean up expired reset tokens", zap.Error(err))
		}
	}
}
