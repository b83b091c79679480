package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/praekeltfoundation/healthcheckbot/internal/eventstore"
)

// ProfileCache keeps the on-behalf-of profile list for a number so the
// event store is not hit on every webhook turn of a guardian session.
type ProfileCache interface {
	Set(ctx context.Context, msisdn string, profiles []eventstore.OnBehalfProfile) error
	Get(ctx context.Context, msisdn string) ([]eventstore.OnBehalfProfile, bool, error)
	Delete(ctx context.Context, msisdn string) error
}

type profileCache struct {
	client *redis.Client
}

func NewProfileCache(client *redis.Client) ProfileCache {
	return &profileCache{
		client: client,
	}
}

func (c *profileCache) Set(ctx context.Context, msisdn string, profiles []eventstore.OnBehalfProfile) error {
	data, err := json.Marshal(profiles)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "obo_profiles:"+msisdn, data, 10*time.Minute).Err()
}

func (c *profileCache) Get(ctx context.Context, msisdn string) ([]eventstore.OnBehalfProfile, bool, error) {
	data, err := c.client.Get(ctx, "obo_profiles:"+msisdn).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var profiles []eventstore.OnBehalfProfile
	err = json.Unmarshal([]byte(data), &profiles)
	return profiles, err == nil, err
}

func (c *profileCache) Delete(ctx context.Context, msisdn string) error {
	return c.client.Del(ctx, "obo_profiles:"+msisdn).Err()
}
