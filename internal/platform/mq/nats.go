package mq

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects published by the game service.
const (
	SubjectFloorEntered   = "dungeon.floor.entered"
	SubjectLevelUp        = "dungeon.player.levelup"
	SubjectTierUpgrade    = "dungeon.player.tier"
	SubjectPlayerDefeated = "dungeon.player.defeated"
	SubjectBossDefeated   = "dungeon.boss.defeated"
	SubjectGoldenGun      = "dungeon.golden_gun.found"
	SubjectGameSaved      = "dungeon.game.saved"
	SubjectGameLoaded     = "dungeon.game.loaded"
	SubjectGameCompleted  = "dungeon.game.completed"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Close()
}

type natsPublisher struct {
	conn *nats.Conn
}

func NewPublisher(url string) (Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("dungeon-server"),
		nats.Timeout(3*time.Second),
		nats.MaxReconnects(5),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &natsPublisher{conn: conn}, nil
}

func (n *natsPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return n.conn.Publish(subject, data)
}

func (n *natsPublisher) Close() {
	if n.conn != nil {
		_ = n.conn.Drain()
		n.conn.Close()
	}
}

type noopPublisher struct{}

func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, string, []byte) error { return nil }
func (noopPublisher) Close()                                        {}
