package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"blink-builder-sol/internal/types"

	"github.com/near/borsh-go"
	"github.com/redis/go-redis/v9"
)

// Redis key 前缀
const (
	votePrefix    = "blink:vote"
	listingPrefix = "blink:listing"
	wagerPrefix   = "blink:wager"
	configPrefix  = "blink:config"
)

// 各类记录的 TTL（投票与配置不过期）
const (
	listingTTL = 30 * 24 * time.Hour
	wagerTTL   = 7 * 24 * time.Hour
)

// 仅当 wager 存在且 challenger 字段未设置时写入：
// -1 不存在，0 已被占用，1 写入成功
var setChallengerScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
return redis.call("HSETNX", KEYS[1], "challenger", ARGV[1])
`)

// RedisStore 基于 go-redis 的实现。
// 投票用 SADD 集合保证唯一，挂单以 borsh 编码存储，对赌记录为 hash。
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func voteKeyOf(candidate, title string) string {
	return fmt.Sprintf("%s:%s:%s", votePrefix, title, candidate)
}

func listingKeyOf(mint, seller types.Pubkey) string {
	return fmt.Sprintf("%s:%s:%s", listingPrefix, mint, seller)
}

func wagerKeyOf(id string) string {
	return fmt.Sprintf("%s:%s", wagerPrefix, id)
}

func configKeyOf(template string) string {
	return fmt.Sprintf("%s:%s", configPrefix, template)
}

// Voters 集合无序，这里按字典序返回
func (r *RedisStore) Voters(ctx context.Context, candidate, title string) ([]string, error) {
	voters, err := r.rdb.SMembers(ctx, voteKeyOf(candidate, title)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers error: %w", err)
	}
	sort.Strings(voters)
	return voters, nil
}

func (r *RedisStore) AddVoter(ctx context.Context, candidate, title, voter string) (bool, error) {
	n, err := r.rdb.SAdd(ctx, voteKeyOf(candidate, title), voter).Result()
	if err != nil {
		return false, fmt.Errorf("redis sadd error: %w", err)
	}
	return n == 1, nil
}

func (r *RedisStore) PutListing(ctx context.Context, l *Listing) error {
	data, err := borsh.Serialize(*l)
	if err != nil {
		return fmt.Errorf("encode listing: %w", err)
	}
	return r.rdb.Set(ctx, listingKeyOf(l.Mint, l.Seller), data, listingTTL).Err()
}

func (r *RedisStore) GetListing(ctx context.Context, mint, seller types.Pubkey) (*Listing, bool, error) {
	data, err := r.rdb.Get(ctx, listingKeyOf(mint, seller)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("redis get error: %w", err)
	}

	var l Listing
	if err := borsh.Deserialize(&l, data); err != nil {
		return nil, false, fmt.Errorf("decode listing: %w", err)
	}
	return &l, true, nil
}

func (r *RedisStore) DeleteListing(ctx context.Context, mint, seller types.Pubkey) error {
	return r.rdb.Del(ctx, listingKeyOf(mint, seller)).Err()
}

func (r *RedisStore) CreateWager(ctx context.Context, w *Wager) error {
	key := wagerKeyOf(w.ID)
	fields := map[string]interface{}{
		"creator":   w.Creator.String(),
		"series":    w.Series,
		"side":      w.Side,
		"amount":    w.Amount,
		"lamports":  w.Lamports,
		"time":      w.Time,
		"createdAt": w.CreatedAt,
	}
	created, err := r.rdb.HSetNX(ctx, key, "creator", w.Creator.String()).Result()
	if err != nil {
		return fmt.Errorf("redis hsetnx error: %w", err)
	}
	if !created {
		return fmt.Errorf("wager %s already exists", w.ID)
	}

	_, err = r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, fields)
		p.Expire(ctx, key, wagerTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis create wager error: %w", err)
	}
	return nil
}

func (r *RedisStore) GetWager(ctx context.Context, id string) (*Wager, error) {
	vals, err := r.rdb.HGetAll(ctx, wagerKeyOf(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall error: %w", err)
	}
	if len(vals) == 0 {
		return nil, ErrNotFound
	}
	return wagerFromHash(id, vals)
}

func (r *RedisStore) SetChallenger(ctx context.Context, id string, challenger types.Pubkey) (bool, error) {
	res, err := setChallengerScript.Run(ctx, r.rdb, []string{wagerKeyOf(id)}, challenger.String()).Int()
	if err != nil {
		return false, fmt.Errorf("redis set challenger error: %w", err)
	}
	switch res {
	case -1:
		return false, ErrNotFound
	case 1:
		return true, nil
	default:
		return false, nil
	}
}

func (r *RedisStore) GetConfig(ctx context.Context, template string) (*DisplayConfig, error) {
	data, err := r.rdb.Get(ctx, configKeyOf(template)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("redis get error: %w", err)
	}
	var cfg DisplayConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", template, err)
	}
	return &cfg, nil
}

func (r *RedisStore) SaveConfig(ctx context.Context, template string, cfg *DisplayConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config %s: %w", template, err)
	}
	return r.rdb.Set(ctx, configKeyOf(template), data, 0).Err()
}

func wagerFromHash(id string, vals map[string]string) (*Wager, error) {
	creator, err := types.TryPubkeyFromBase58(vals["creator"])
	if err != nil {
		return nil, fmt.Errorf("wager %s has bad creator: %w", id, err)
	}
	w := &Wager{
		ID:      id,
		Creator: creator,
		Series:  vals["series"],
		Side:    vals["side"],
		Amount:  vals["amount"],
		Time:    vals["time"],
	}
	if s := vals["lamports"]; s != "" {
		if w.Lamports, err = strconv.ParseUint(s, 10, 64); err != nil {
			return nil, fmt.Errorf("wager %s has bad lamports: %w", id, err)
		}
	}
	if s := vals["createdAt"]; s != "" {
		if w.CreatedAt, err = strconv.ParseInt(s, 10, 64); err != nil {
			return nil, fmt.Errorf("wager %s has bad createdAt: %w", id, err)
		}
	}
	if s := vals["challenger"]; s != "" {
		if w.Challenger, err = types.TryPubkeyFromBase58(s); err != nil {
			return nil, fmt.Errorf("wager %s has bad challenger: %w", id, err)
		}
	}
	return w, nil
}
