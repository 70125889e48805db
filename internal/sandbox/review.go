package sandbox

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/arko-chat/storebridge/internal/models"
	"github.com/arko-chat/storebridge/internal/provider"
)

const (
	ReviewTokenTTL  = 5 * time.Minute
	maxReviewTokens = 64
	maxCommentLen   = 2000
)

var _ provider.ReviewProvider = (*ReviewManager)(nil)

// ReviewManager issues single-use review tokens and shows the review page.
// After a form has been shown, further launches within the cooldown succeed
// without showing anything, the same way the store throttles its form.
type ReviewManager struct {
	sb     *Sandbox
	tokens *expirable.LRU[string, time.Time]

	mu        sync.Mutex
	lastShown time.Time
}

func newReviewManager(sb *Sandbox) *ReviewManager {
	return &ReviewManager{
		sb:     sb,
		tokens: expirable.NewLRU[string, time.Time](maxReviewTokens, nil, ReviewTokenTTL),
	}
}

func (r *ReviewManager) RequestReviewFlow(ctx context.Context) (models.ReviewToken, error) {
	if err := ctx.Err(); err != nil {
		return models.ReviewToken{}, err
	}
	handle := uuid.NewString()
	expires := r.sb.now().Add(ReviewTokenTTL)
	r.tokens.Add(handle, expires)
	return models.ReviewToken{Handle: handle, ExpiresAt: expires}, nil
}

func (r *ReviewManager) LaunchReviewFlow(ctx context.Context, token models.ReviewToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !r.tokens.Remove(token.Handle) {
		return ErrUnknownReviewToken
	}

	r.mu.Lock()
	now := r.sb.now()
	if cd := r.sb.cfg.ReviewCooldown; cd > 0 && !r.lastShown.IsZero() && now.Sub(r.lastShown) < cd {
		r.mu.Unlock()
		r.sb.logger.Debug("review form throttled", "last_shown", r.lastShown)
		return nil
	}
	r.lastShown = now
	r.mu.Unlock()

	return r.sb.opener.Open(r.ReviewURL())
}

func (r *ReviewManager) ReviewURL() string {
	return r.sb.BaseURL() + "/sandbox/review"
}

// Submit stores a rating between 1 and 5 with an optional comment.
func (r *ReviewManager) Submit(rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}
	comment = strings.TrimSpace(comment)
	if runes := []rune(comment); len(runes) > maxCommentLen {
		comment = string(runes[:maxCommentLen])
	}
	rec := ReviewRecord{
		Rating:    rating,
		Comment:   comment,
		CreatedAt: r.sb.now().UTC(),
	}
	if err := r.sb.store.PutReview(rec); err != nil {
		return fmt.Errorf("save review: %w", err)
	}
	r.sb.logger.Info("review submitted", "rating", rating)
	return nil
}

func (r *ReviewManager) List() ([]ReviewRecord, error) {
	return r.sb.store.ListReviews()
}
