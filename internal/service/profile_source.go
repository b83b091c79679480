package service

import (
	"context"
	"log"

	"github.com/praekeltfoundation/healthcheckbot/internal/cache"
	"github.com/praekeltfoundation/healthcheckbot/internal/eventstore"
)

// ProfileFetcher is the event store call that lists saved on-behalf-of
// profiles for a number.
type ProfileFetcher interface {
	GetOnBehalfProfiles(msisdn string) ([]eventstore.OnBehalfProfile, error)
}

// CachedProfileSource serves learner profiles from the cache, falling back
// to the event store. Cache failures degrade to fetching; they never fail a
// turn.
type CachedProfileSource struct {
	Fetcher ProfileFetcher
	Cache   cache.ProfileCache
}

func NewCachedProfileSource(fetcher ProfileFetcher, c cache.ProfileCache) *CachedProfileSource {
	return &CachedProfileSource{Fetcher: fetcher, Cache: c}
}

func (s *CachedProfileSource) Profiles(ctx context.Context, msisdn string) ([]eventstore.OnBehalfProfile, error) {
	if s.Cache != nil {
		profiles, ok, err := s.Cache.Get(ctx, msisdn)
		if err != nil {
			log.Printf("[Profiles] cache read failed: %v", err)
		} else if ok {
			return profiles, nil
		}
	}

	profiles, err := s.Fetcher.GetOnBehalfProfiles(msisdn)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, msisdn, profiles); err != nil {
			log.Printf("[Profiles] cache write failed: %v", err)
		}
	}
	return profiles, nil
}

// Invalidate drops the cached list so the next fetch hits the event store.
// Called at session start: the guardian may have registered a new learner
// since the list was cached.
func (s *CachedProfileSource) Invalidate(ctx context.Context, msisdn string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, msisdn); err != nil {
		log.Printf("[Profiles] cache invalidate failed: %v", err)
	}
}
