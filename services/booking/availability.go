package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	resourceRepo "stayops/database/repository/resource"
	"stayops/models"
)

// availabilityCacheTTL bounds how stale the UI-facing availability view may
// get. The write-path guard never reads this cache.
const availabilityCacheTTL = 30 * time.Second

func (s *DefaultBookingService) cacheKey(kind models.ResourceKind, date string, start, duration, minCapacity int) string {
	return fmt.Sprintf("avail:%s:%s:%d:%d:%d", kind, date, start, duration, minCapacity)
}

// FindAvailable recomputes availability from current booking state: all
// resources of the kind with capacity >= minCapacity, minus any with an active
// booking overlapping [start, start+duration).
func (s *DefaultBookingService) FindAvailable(ctx context.Context, kind models.ResourceKind, date string, start, durationMinutes, minCapacity int) ([]models.Resource, error) {
	candidates, err := s.Resources.List(ctx, resourceRepo.ResourceFilter{
		Kind:        kind,
		MinCapacity: minCapacity,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s resources: %w", kind, err)
	}

	end := start + durationMinutes
	free := make([]models.Resource, 0, len(candidates))
	for _, res := range candidates {
		overlapping, err := s.Repo.FindOverlapping(ctx, res.ID, date, start, end)
		if err != nil {
			return nil, fmt.Errorf("overlap lookup failed for resource %s: %w", res.ID, err)
		}
		if len(overlapping) == 0 {
			free = append(free, res)
		}
	}
	return free, nil
}

// CachedAvailable serves dashboard reads from a short-lived redis snapshot,
// falling back to a fresh computation on miss or when no cache is wired.
func (s *DefaultBookingService) CachedAvailable(ctx context.Context, kind models.ResourceKind, date string, start, durationMinutes, minCapacity int) ([]models.Resource, error) {
	if s.Cache == nil {
		return s.FindAvailable(ctx, kind, date, start, durationMinutes, minCapacity)
	}

	key := s.cacheKey(kind, date, start, durationMinutes, minCapacity)
	if raw, err := s.Cache.Get(ctx, key).Result(); err == nil {
		var cached []models.Resource
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
	} else if err != redis.Nil {
		s.logger().Warn("availability cache read failed", zap.String("key", key), zap.Error(err))
	}

	fresh, err := s.FindAvailable(ctx, kind, date, start, durationMinutes, minCapacity)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(fresh); err == nil {
		if err := s.Cache.Set(ctx, key, raw, availabilityCacheTTL).Err(); err != nil {
			s.logger().Warn("availability cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return fresh, nil
}
