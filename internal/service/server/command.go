package server

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/andrzejf1994/ha-ios-nextalarm/internal/bus"
	"github.com/andrzejf1994/ha-ios-nextalarm/internal/config"
	"github.com/andrzejf1994/ha-ios-nextalarm/internal/coordinator"
	"github.com/andrzejf1994/ha-ios-nextalarm/internal/logger"
	"github.com/andrzejf1994/ha-ios-nextalarm/internal/notify"
	"github.com/andrzejf1994/ha-ios-nextalarm/internal/repository/state"
	"github.com/andrzejf1994/ha-ios-nextalarm/internal/timer"
)

// Options controls the nextalarm-server process.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// StateFile optionally overrides the snapshot path from config.
	StateFile string
}

// Run wires the coordinator to its collaborators and consumes events until
// the context is canceled.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "nextalarm-server")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	stateFile := cfg.StateFile
	if opts.StateFile != "" {
		stateFile = opts.StateFile
	}

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("resolve timezone: %w", err)
	}

	repo := state.NewFileRepository(stateFile)

	timers := timer.NewScheduler()
	timers.Start()

	defer timers.Stop()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	dispatcher := notify.NewRedis(redisClient, cfg.NotifyChannel)

	coord := coordinator.New(repo, timers, dispatcher, coordinator.Options{
		Location:         loc,
		WeekdayLocale:    cfg.WeekdayLocale,
		WeekdayCustomMap: cfg.WeekdayCustomMap,
		RefreshTimeout:   cfg.RefreshTimeout(),
	})

	if err := coord.Restore(ctx); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}

	eventBus := bus.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroup)
	defer eventBus.Close()

	coord.Attach(eventBus)

	logger.InfoKV(ctx, "NextAlarm server consuming events",
		"brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic, "state_file", stateFile)

	runErr := eventBus.Run(ctx)

	// Teardown cancels outstanding timers before the final snapshot.
	coord.Shutdown(context.WithoutCancel(ctx))
	logger.Info(ctx, "NextAlarm server stopped")

	return runErr
}
