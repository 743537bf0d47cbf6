package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// BoardsPubSub fans out board-changed notifications so grid views can refresh
// without polling.
type BoardsPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewBoardsPubSub(rdb *redis.Client) *BoardsPubSub {
	return &BoardsPubSub{
		rdb:     rdb,
		channel: ChannelBoardsChanged(),
	}
}

type boardChangedMsg struct {
	Type    string `json:"type"`
	BoardID string `json:"board_id"`
	TsUnix  int64  `json:"ts_unix"`
}

func (p *BoardsPubSub) PublishBoardChanged(ctx context.Context, boardID uuid.UUID) error {
	msg := boardChangedMsg{
		Type:    "board_changed",
		BoardID: boardID.String(),
		TsUnix:  time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

func (p *BoardsPubSub) Subscribe(
	ctx context.Context,
	handler func(ctx context.Context, boardID uuid.UUID),
) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev boardChangedMsg
			if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
				continue
			}
			id, err := uuid.Parse(ev.BoardID)
			if err != nil {
				continue
			}
			handler(ctx, id)
		}
	}
}
