package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"
	"whoislookup/internal/lookup"
	"whoislookup/internal/model"

	"github.com/redis/go-redis/v9"
)

const (
	monitoredKey  = "monitored_items"
	historyPrefix = "whois_history:"
	historyLimit  = 100
)

type Storage struct {
	Client *redis.Client
}

func NewStorage(host, port string) *Storage {
	rdb := redis.NewClient(&redis.Options{
		Addr: host + ":" + port,
		DB:   0,
	})
	return &Storage{Client: rdb}
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}

func (s *Storage) GetMonitoredItems(ctx context.Context) ([]string, error) {
	return s.Client.LRange(ctx, monitoredKey, 0, -1).Result()
}

// AddMonitoredItem appends item unless it is already monitored.
func (s *Storage) AddMonitoredItem(ctx context.Context, item string) error {
	pos, err := s.Client.LPos(ctx, monitoredKey, item, redis.LPosArgs{}).Result()
	if err == nil && pos >= 0 {
		return nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return s.Client.RPush(ctx, monitoredKey, item).Err()
}

func (s *Storage) RemoveMonitoredItem(ctx context.Context, item string) error {
	return s.Client.LRem(ctx, monitoredKey, 0, item).Err()
}

// GetHistory returns stored lookups of item, newest first.
func (s *Storage) GetHistory(ctx context.Context, item string) ([]model.HistoryEntry, error) {
	val, err := s.Client.LRange(ctx, historyPrefix+item, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	var entries []model.HistoryEntry
	for _, v := range val {
		var entry model.HistoryEntry
		if err := json.Unmarshal([]byte(v), &entry); err == nil && entry.Result != nil {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// AddHistory records res for item. A result identical to the newest entry
// is not stored again.
func (s *Storage) AddHistory(ctx context.Context, item string, res *lookup.Result) error {
	resBytes, err := json.Marshal(res)
	if err != nil {
		return err
	}

	lastEntryJSON, err := s.Client.LIndex(ctx, historyPrefix+item, 0).Result()
	if err == nil {
		var lastEntry model.HistoryEntry
		if json.Unmarshal([]byte(lastEntryJSON), &lastEntry) == nil && lastEntry.Result != nil {
			if lastBytes, err := json.Marshal(lastEntry.Result); err == nil && string(lastBytes) == string(resBytes) {
				return nil
			}
		}
	} else if !errors.Is(err, redis.Nil) {
		return err
	}

	entry := model.HistoryEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Result:    res,
	}
	entryBytes, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	pipe := s.Client.Pipeline()
	pipe.LPush(ctx, historyPrefix+item, string(entryBytes))
	pipe.LTrim(ctx, historyPrefix+item, 0, historyLimit-1)
	_, err = pipe.Exec(ctx)
	return err
}
