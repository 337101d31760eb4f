package character

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"github.com/materialcontext/glog2d6-api/internal/entities/glog"
	"github.com/materialcontext/glog2d6-api/internal/errors"
	"github.com/materialcontext/glog2d6-api/internal/pkg/clock"
	redisclient "github.com/materialcontext/glog2d6-api/internal/redis"
)

const (
	characterKeyPrefix = "glog:character:"
	playerIndexPrefix  = "glog:character:player:"

	// Error messages
	errCharacterNil     = "character cannot be nil"
	errCharacterIDEmpty = "character ID cannot be empty"
	errPlayerIDEmpty    = "player ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// RedisConfig contains configuration for the Redis character repository.
type RedisConfig struct {
	Client redisclient.Client
	Clock  clock.Clock
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

// NewRedis creates a new Redis-backed character repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  c,
	}, nil
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Character == nil {
		return nil, errors.InvalidArgument(errCharacterNil)
	}
	if input.Character.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	key := characterKeyPrefix + input.Character.ID

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("character with ID %s already exists", input.Character.ID)
	}

	now := r.clock.Now().Unix()
	input.Character.CreatedAt = now
	input.Character.UpdatedAt = now

	data, err := json.Marshal(input.Character)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal character")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0) // characters never expire
	if input.Character.PlayerID != "" {
		pipe.SAdd(ctx, playerIndexPrefix+input.Character.PlayerID, input.Character.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create character")
	}

	return &CreateOutput{Character: input.Character}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	raw, err := r.getRaw(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	var char glog.Character
	if err := json.Unmarshal(raw, &char); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal character")
	}

	return &GetOutput{Character: &char}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Character == nil {
		return nil, errors.InvalidArgument(errCharacterNil)
	}
	if input.Character.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	existing, err := r.Get(ctx, GetInput{ID: input.Character.ID})
	if err != nil {
		return nil, err
	}

	input.Character.CreatedAt = existing.Character.CreatedAt
	input.Character.UpdatedAt = r.clock.Now().Unix()

	data, err := json.Marshal(input.Character)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal character")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, characterKeyPrefix+input.Character.ID, data, 0)
	if existing.Character.PlayerID != input.Character.PlayerID {
		if existing.Character.PlayerID != "" {
			pipe.SRem(ctx, playerIndexPrefix+existing.Character.PlayerID, input.Character.ID)
		}
		if input.Character.PlayerID != "" {
			pipe.SAdd(ctx, playerIndexPrefix+input.Character.PlayerID, input.Character.ID)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to update character")
	}

	return &UpdateOutput{Character: input.Character}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	existing, err := r.Get(ctx, GetInput(input))
	if err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, characterKeyPrefix+input.ID)
	if existing.Character.PlayerID != "" {
		pipe.SRem(ctx, playerIndexPrefix+existing.Character.PlayerID, input.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete character")
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) ListByPlayerID(
	ctx context.Context,
	input ListByPlayerIDInput,
) (*ListByPlayerIDOutput, error) {
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}

	indexKey := playerIndexPrefix + input.PlayerID
	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read player index %s", indexKey)
	}

	characters := make([]*glog.Character, 0, len(ids))
	for _, id := range ids {
		out, err := r.Get(ctx, GetInput{ID: id})
		if err != nil {
			if errors.IsNotFound(err) {
				// Stale index entry; drop it and move on.
				slog.WarnContext(ctx, "character missing, cleaning up player index",
					"character_id", id,
					"index_key", indexKey)
				r.client.SRem(ctx, indexKey, id)
				continue
			}
			return nil, err
		}
		characters = append(characters, out.Character)
	}

	return &ListByPlayerIDOutput{Characters: characters}, nil
}

func (r *redisRepository) ApplyChanges(ctx context.Context, input ApplyChangesInput) (*ApplyChangesOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	raw, err := r.getRaw(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	var char glog.Character
	if len(input.Changes) == 0 {
		if err := json.Unmarshal(raw, &char); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal character")
		}
		return &ApplyChangesOutput{Character: &char}, nil
	}

	// Patch the stored document as a generic map so dotted paths can
	// address fields the struct only knows as nested values.
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal character document")
	}

	for _, ch := range input.Changes {
		value, err := jsonValue(ch.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "change value for %s is not serializable", ch.Path)
		}
		if err := setPath(doc, strings.Split(ch.Path, "."), value); err != nil {
			return nil, errors.Wrapf(err, "failed to apply change %s", ch.Path)
		}
		slog.DebugContext(ctx, "applied character change",
			"character_id", input.CharacterID,
			"path", ch.Path,
			"reason", ch.Reason)
	}
	doc["updatedAt"] = r.clock.Now().Unix()

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal patched character")
	}
	if err := json.Unmarshal(data, &char); err != nil {
		return nil, errors.Wrapf(err, "patched character no longer parses")
	}

	// The whole batch lands as one document write, in a Tx like the
	// other mutators.
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, characterKeyPrefix+input.CharacterID, data, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to store patched character")
	}

	return &ApplyChangesOutput{Character: &char}, nil
}

func (r *redisRepository) SetEquipped(ctx context.Context, input SetEquippedInput) (*SetEquippedOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	out, err := r.Get(ctx, GetInput{ID: input.CharacterID})
	if err != nil {
		return nil, err
	}
	char := out.Character

	flip := func(ids []string, equipped bool) error {
		for _, id := range ids {
			item := char.Item(id)
			if item == nil {
				return errors.NotFoundf("item %s not found on character %s", id, input.CharacterID)
			}
			item.Equipped = equipped
		}
		return nil
	}
	if err := flip(input.Unequip, false); err != nil {
		return nil, err
	}
	if err := flip(input.Equip, true); err != nil {
		return nil, err
	}
	char.UpdatedAt = r.clock.Now().Unix()

	data, err := json.Marshal(char)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal character")
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, characterKeyPrefix+char.ID, data, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to store character")
	}

	return &SetEquippedOutput{Character: char}, nil
}

func (r *redisRepository) getRaw(ctx context.Context, id string) ([]byte, error) {
	result, err := r.client.Get(ctx, characterKeyPrefix+id).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("character with ID %s not found", id)
		}
		return nil, errors.Wrapf(err, "failed to get character")
	}
	return []byte(result), nil
}

// jsonValue normalizes a change value to the types json.Unmarshal produces,
// so patched documents round-trip cleanly.
func jsonValue(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// setPath writes value at the dotted path. Intermediate objects are created
// as needed; a list segment is addressed by the "id" field of its elements,
// so "items.itm_1.breakage" reaches the item with ID itm_1.
func setPath(m map[string]interface{}, segs []string, value interface{}) error {
	seg := segs[0]
	if len(segs) == 1 {
		m[seg] = value
		return nil
	}

	child, ok := m[seg]
	if !ok || child == nil {
		next := make(map[string]interface{})
		m[seg] = next
		return setPath(next, segs[1:], value)
	}

	switch c := child.(type) {
	case map[string]interface{}:
		return setPath(c, segs[1:], value)
	case []interface{}:
		id := segs[1]
		for i := range c {
			el, ok := c[i].(map[string]interface{})
			if !ok || el["id"] != id {
				continue
			}
			if len(segs) == 2 {
				c[i] = value
				return nil
			}
			return setPath(el, segs[2:], value)
		}
		return errors.InvalidArgumentf("no element with ID %q under %q", id, seg)
	default:
		return errors.InvalidArgumentf("segment %q does not address an object", seg)
	}
}
