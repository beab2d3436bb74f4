package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/go-redis/redis/v8"
)

// acknowledgeScript remove KEYS[1]'s marker, then return 1 only if no other key still holds it.
// 一次執行完成, 兩個並發 ack 只會有一個拿到 1
var acknowledgeScript = redis.NewScript(`
if redis.call('SREM', KEYS[1], ARGV[1]) == 0 then
	return 0
end
for i = 2, #KEYS do
	if redis.call('SISMEMBER', KEYS[i], ARGV[1]) == 1 then
		return 0
	end
end
return 1
`)

type redisUnreadIndex struct {
	client redis.UniversalClient
}

// NewRedisUnreadIndex create UnreadIndex on redis sets
func NewRedisUnreadIndex(client redis.UniversalClient) UnreadIndex {
	return &redisUnreadIndex{client: client}
}

// UnreadKey {channel} hash tag keeps one channel's sets on the same cluster slot
func UnreadKey(channelID, userID int64) string {
	return fmt.Sprintf("unread_messages:{%d}:%d", channelID, userID)
}

func (r *redisUnreadIndex) MarkUnread(ctx context.Context, channelID, messageID int64, members []int64) error {
	if len(members) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, m := range members {
			pipe.SAdd(ctx, UnreadKey(channelID, m), messageID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("mark unread message %d: %w", messageID, err)
	}
	return nil
}

func (r *redisUnreadIndex) Pending(ctx context.Context, channelID, userID int64) ([]int64, error) {
	raw, err := r.client.SMembers(ctx, UnreadKey(channelID, userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list unread: %w", err)
	}
	ids := make([]int64, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *redisUnreadIndex) Acknowledge(ctx context.Context, channelID, userID, messageID int64, others []int64) (bool, error) {
	keys := make([]string, 0, len(others)+1)
	keys = append(keys, UnreadKey(channelID, userID))
	for _, o := range others {
		if o == userID {
			continue
		}
		keys = append(keys, UnreadKey(channelID, o))
	}

	last, err := acknowledgeScript.Run(ctx, r.client, keys, messageID).Int()
	if err != nil {
		return false, fmt.Errorf("acknowledge message %d: %w", messageID, err)
	}
	return last == 1, nil
}
