package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lshigami/skilltest/internal/model"
	"github.com/lshigami/skilltest/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// PremiumService is the opaque capability check backed by the payment
// collaborator's grants.
type PremiumService interface {
	IsPremium(ctx context.Context, userID string) (bool, error)
	Grant(ctx context.Context, userID string, until time.Time, source string) (*model.Subscription, error)
}

type premiumService struct {
	subs  repository.SubscriptionRepository
	cache *redis.Client
	ttl   time.Duration
	now   func() time.Time
}

// NewPremiumService builds the service; cache may be nil.
func NewPremiumService(subs repository.SubscriptionRepository, cache *redis.Client, ttl time.Duration) PremiumService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &premiumService{subs: subs, cache: cache, ttl: ttl, now: time.Now}
}

func premiumCacheKey(userID string) string {
	return "premium:" + userID
}

func (s *premiumService) IsPremium(ctx context.Context, userID string) (bool, error) {
	if s.cache != nil {
		v, err := s.cache.Get(ctx, premiumCacheKey(userID)).Result()
		switch {
		case err == nil:
			return v == "1", nil
		case !errors.Is(err, redis.Nil):
			log.Warn().Err(err).Str("userID", userID).Msg("Premium cache read failed, falling back to database")
		}
	}

	sub, err := s.subs.FindByUserID(ctx, userID)
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = nil
	default:
		return false, fmt.Errorf("lookup subscription for %s: %w", userID, err)
	}

	premium, ttl := s.cacheEntry(sub)
	s.store(ctx, userID, premium, ttl)
	return premium, nil
}

func (s *premiumService) Grant(ctx context.Context, userID string, until time.Time, source string) (*model.Subscription, error) {
	sub := &model.Subscription{UserID: userID, ActiveUntil: until, Source: source}
	if err := s.subs.Upsert(ctx, sub); err != nil {
		return nil, fmt.Errorf("store subscription for %s: %w", userID, err)
	}
	premium, ttl := s.cacheEntry(sub)
	s.store(ctx, userID, premium, ttl)
	log.Info().Str("userID", userID).Time("activeUntil", until).Str("source", source).Msg("Premium granted")
	return sub, nil
}

// cacheEntry reports whether sub is active now and how long that answer may
// be cached. A premium answer never outlives the grant.
func (s *premiumService) cacheEntry(sub *model.Subscription) (bool, time.Duration) {
	now := s.now()
	if sub == nil || !sub.ActiveAt(now) {
		return false, s.ttl
	}
	return true, min(s.ttl, sub.ActiveUntil.Sub(now))
}

func (s *premiumService) store(ctx context.Context, userID string, premium bool, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	v := "0"
	if premium {
		v = "1"
	}
	if err := s.cache.Set(ctx, premiumCacheKey(userID), v, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("userID", userID).Msg("Premium cache write failed")
	}
}
