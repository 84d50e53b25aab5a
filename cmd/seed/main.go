package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"product-catalog/internal/logger"
	"product-catalog/internal/seed"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	flags := pflag.NewFlagSet("seed", pflag.ExitOnError)
	flags.String("base-url", seed.DefaultBaseURL, "catalog base URL")
	flags.Int("count", seed.DefaultCount, "number of products to create")
	flags.Duration("delay", seed.DefaultDelay, "pause between requests")
	_ = flags.Parse(os.Args[1:])

	v := viper.New()
	v.SetEnvPrefix("SEED")
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		panic(fmt.Sprintf("failed to bind flags: %v", err))
	}

	log := logger.NewWithDefaults("seed")
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := seed.New(v.GetString("base-url"), log)
	s.Count = v.GetInt("count")
	s.Delay = v.GetDuration("delay")

	res, err := s.Run(ctx)
	log.Info("Seeding finished",
		zap.Int("attempted", res.Attempted),
		zap.Int("created", res.Created),
		zap.Int("failed", res.Failed),
	)
	if err != nil {
		log.Fatal("Seeding interrupted", zap.Error(err))
	}
}
