package service

import (
	"log/slog"

	"github.com/alsania-dev/gridplay-sub001/internal/clock"
	postgresrepo "github.com/alsania-dev/gridplay-sub001/internal/repository/postgres"
	redisrepo "github.com/alsania-dev/gridplay-sub001/internal/repository/redis"
	"github.com/alsania-dev/gridplay-sub001/internal/service/boards"
	"github.com/alsania-dev/gridplay-sub001/internal/service/ledger"
	"github.com/alsania-dev/gridplay-sub001/internal/service/settlement"
)

type Services struct {
	Boards     *boards.Service
	Ledger     *ledger.Service
	Settlement *settlement.Service
}

type Config struct {
	Boards boards.Config
	Ledger ledger.Config
}

func NewServices(
	store *postgresrepo.Store,
	cache *redisrepo.Cache,
	pubsub *redisrepo.BoardsPubSub,
	limiter *redisrepo.SlidingWindowLimiter,
	clk clock.Clock,
	logger *slog.Logger,
	cfg Config,
) *Services {
	boardsSvc := boards.New(store.Boards(), store.Squares(), cache, pubsub, clk, logger, cfg.Boards)

	return &Services{
		Boards:     boardsSvc,
		Ledger:     ledger.New(store.Squares(), cache, pubsub, limiter, clk, cfg.Ledger),
		Settlement: settlement.New(store.Payments(), boardsSvc, store.Squares(), cache, pubsub, clk, logger),
	}
}
