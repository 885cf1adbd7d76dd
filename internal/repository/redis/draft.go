package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bafoyewv/SupplyChainLite-sub000/internal/domain"
	apperrors "github.com/bafoyewv/SupplyChainLite-sub000/pkg/errors"
)

const keyPrefix = "draft:"

// casScript compares the stored draft's version field against the expected
// version and swaps in the new payload atomically. Returns 1 on success, 0
// on a version mismatch. A missing key only matches expected version 0.
var casScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur == false then
  if tonumber(ARGV[1]) ~= 0 then
    return 0
  end
else
  local stored = cjson.decode(cur)
  if tonumber(stored['version']) ~= tonumber(ARGV[1]) then
    return 0
  end
end
redis.call('SET', KEYS[1], ARGV[2], 'EX', ARGV[3])
return 1
`)

// DraftRepository implements repository.DraftRepository using Redis. Drafts
// are stored as JSON under draft:<userID> with a sliding TTL: every save
// resets the expiry.
type DraftRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDraftRepository creates a new Redis-backed draft repository.
func NewDraftRepository(client *redis.Client, ttl time.Duration) *DraftRepository {
	return &DraftRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a draft by user ID from Redis.
func (r *DraftRepository) Get(ctx context.Context, userID string) (*domain.Draft, error) {
	key := keyPrefix + userID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("draft", userID)
		}
		return nil, fmt.Errorf("redis get draft: %w", err)
	}

	var draft domain.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("unmarshal draft: %w", err)
	}

	return &draft, nil
}

// Save persists a draft to Redis with the configured TTL, unconditionally.
func (r *DraftRepository) Save(ctx context.Context, draft *domain.Draft) error {
	key := keyPrefix + draft.UserID

	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set draft: %w", err)
	}

	return nil
}

// SaveIfVersion persists a draft only if the stored version still equals
// expectedVersion. The draft is stored with whatever version it carries, so
// callers bump draft.Version before saving. Expected version 0 means "no
// draft stored yet".
func (r *DraftRepository) SaveIfVersion(ctx context.Context, draft *domain.Draft, expectedVersion int64) error {
	key := keyPrefix + draft.UserID

	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}

	ttlSeconds := int64(r.ttl / time.Second)
	ok, err := casScript.Run(ctx, r.client, []string{key}, expectedVersion, data, ttlSeconds).Int()
	if err != nil {
		return fmt.Errorf("redis cas draft: %w", err)
	}
	if ok != 1 {
		return apperrors.Conflict(fmt.Sprintf("draft for user %s was modified concurrently", draft.UserID))
	}

	return nil
}

// Delete removes a draft from Redis by user ID.
func (r *DraftRepository) Delete(ctx context.Context, userID string) error {
	key := keyPrefix + userID

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del draft: %w", err)
	}

	return nil
}
