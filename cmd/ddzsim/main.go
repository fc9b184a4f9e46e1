// Command ddzsim plays bot-only Doudizhu matches in parallel and reports
// how each side fares.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"doudizhu/internal/app"
	"doudizhu/internal/bot"
	"doudizhu/internal/config"
	"doudizhu/internal/domain"
	"doudizhu/internal/sim"
)

var (
	games    int
	workers  int
	seed     int64
	levels   [domain.RoleCount]string
	fallback string
	jsonLogs bool
	verbose  bool
)

func init() {
	flag.IntVar(&games, "games", 1000, "Number of matches to play")
	flag.IntVar(&workers, "workers", 0, "Number of worker goroutines (0 = auto-detect CPU count)")
	flag.Int64Var(&seed, "seed", 0, "Random seed (0 = use current time)")
	flag.StringVar(&levels[domain.Landlord], "landlord", "smart", "Landlord bot level")
	flag.StringVar(&levels[domain.FarmerA], "farmer-a", "smart", "Farmer A bot level")
	flag.StringVar(&levels[domain.FarmerB], "farmer-b", "smart", "Farmer B bot level")
	flag.StringVar(&fallback, "fallback", string(config.FallbackRandom), "Fallback policy for rejected proposals")
	flag.BoolVar(&jsonLogs, "json", false, "Log as JSON")
	flag.BoolVar(&verbose, "verbose", false, "Log every finished game")
}

func main() {
	flag.Parse()

	logger := logrus.New()
	if jsonLogs {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cfg := sim.Config{
		Games:   games,
		Workers: workers,
		Seed:    seed,
		Policy:  app.TurnPolicy{MaxRetries: config.Default().MaxProposalRetries, Fallback: config.FallbackPolicy(fallback)},
	}
	for r, name := range levels {
		level, err := bot.ParseBotLevel(name)
		if err != nil {
			logger.WithError(err).Fatalf("bad level for %s", domain.Role(r))
		}
		cfg.Levels[r] = level
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithFields(logrus.Fields{"games": games, "seed": seed, "levels": levels}).Info("starting simulation")
	summary, _, err := sim.Run(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("simulation failed")
	}

	fmt.Printf("\n%d games in %s\n", summary.Games, summary.Duration.Round(time.Millisecond))
	for r := domain.Landlord; r <= domain.FarmerB; r++ {
		fmt.Printf("  %-9s %-6s wins %5d\n", r, levels[r], summary.Wins[r])
	}
	fmt.Printf("  landlord win rate %.1f%%, farmers %.1f%%\n", 100*summary.LandlordWinRate, 100*(1-summary.LandlordWinRate))
	fmt.Printf("  avg turns %.1f, bombs %d, forced %d, rejected %d\n", summary.AvgTurns, summary.Bombs, summary.Forced, summary.Rejections)
}
