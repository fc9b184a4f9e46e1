// Package sim plays bot-only matches in parallel and aggregates the outcome.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"doudizhu/internal/app"
	"doudizhu/internal/bot"
	"doudizhu/internal/domain"
)

// maxTurns guards against a proposer that never empties a hand.
const maxTurns = 1000

var ErrTurnLimit = errors.New("match exceeded turn limit")

type Config struct {
	Games   int
	Workers int
	Seed    int64
	Levels  [domain.RoleCount]bot.BotLevel
	Policy  app.TurnPolicy
}

// GameResult holds the outcome of one simulated match.
type GameResult struct {
	Index      int
	Seed       int64
	Winner     domain.Role
	Turns      int
	Rejections int
	Forced     int
	Bombs      int
	Duration   time.Duration
}

// Summary aggregates results across a batch.
type Summary struct {
	Games           int
	Wins            [domain.RoleCount]int
	LandlordWinRate float64
	AvgTurns        float64
	Rejections      int
	Forced          int
	Bombs           int
	Duration        time.Duration
}

// Run simulates cfg.Games matches across cfg.Workers goroutines. Game i is
// seeded with cfg.Seed+i, so a batch is reproducible regardless of worker
// count. The first failing game cancels the rest.
func Run(ctx context.Context, cfg Config, logger logrus.FieldLogger) (Summary, []GameResult, error) {
	if cfg.Games <= 0 {
		return Summary{}, nil, nil
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	start := time.Now()
	results := make([]GameResult, cfg.Games)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range cfg.Games {
		g.Go(func() error {
			res, err := PlayGame(gctx, i, cfg.Seed+int64(i), cfg.Levels, cfg.Policy)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			results[i] = res
			logger.WithFields(logrus.Fields{
				"game":   i,
				"winner": res.Winner.String(),
				"turns":  res.Turns,
				"forced": res.Forced,
			}).Debug("game finished")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, nil, err
	}

	summary := Summarize(results)
	summary.Duration = time.Since(start)
	logger.WithFields(logrus.Fields{
		"games":             summary.Games,
		"landlord_win_rate": fmt.Sprintf("%.3f", summary.LandlordWinRate),
		"avg_turns":         fmt.Sprintf("%.1f", summary.AvgTurns),
		"duration":          summary.Duration.String(),
	}).Info("simulation complete")
	return summary, results, nil
}

// PlayGame plays one seeded match between bots of the given levels.
func PlayGame(ctx context.Context, index int, seed int64, levels [domain.RoleCount]bot.BotLevel, policy app.TurnPolicy) (GameResult, error) {
	start := time.Now()
	rng := rand.New(rand.NewSource(seed))
	svc := app.NewService(rng)

	var ids [domain.RoleCount]string
	agents := make(map[domain.Role]*bot.Agent, domain.RoleCount)
	for r := domain.Landlord; r <= domain.FarmerB; r++ {
		identity := bot.GetBotIdentity(int(r))
		identity.UserID = fmt.Sprintf("sim-%d-%s", index, r)
		identity.Difficulty = ""
		agent, err := bot.NewAgent(identity, levels[r], rng)
		if err != nil {
			return GameResult{}, err
		}
		ids[r] = identity.UserID
		agents[r] = agent
	}

	table, _, err := svc.StartMatch(ids[:])
	if err != nil {
		return GameResult{}, err
	}

	res := GameResult{Index: index, Seed: seed}
	for !table.Match.IsFinished() {
		if res.Turns >= maxTurns {
			return res, ErrTurnLimit
		}
		events, err := svc.ResolveTurn(ctx, table, agents[table.Match.Acting()], policy)
		if err != nil {
			return res, err
		}
		res.Turns++
		for _, ev := range events {
			switch p := ev.Payload.(type) {
			case app.PlayRejectedPayload:
				res.Rejections++
			case app.CardPlayedPayload:
				if p.Forced {
					res.Forced++
				}
				if p.Combination.IsBomb() {
					res.Bombs++
				}
			case app.TurnPassedPayload:
				if p.Forced {
					res.Forced++
				}
			}
		}
	}

	res.Winner, _ = table.Match.Winner()
	res.Duration = time.Since(start)
	return res, nil
}

// Summarize folds per-game results into totals and rates.
func Summarize(results []GameResult) Summary {
	s := Summary{Games: len(results)}
	if len(results) == 0 {
		return s
	}
	turns := 0
	for _, r := range results {
		s.Wins[r.Winner]++
		s.Rejections += r.Rejections
		s.Forced += r.Forced
		s.Bombs += r.Bombs
		turns += r.Turns
	}
	s.LandlordWinRate = float64(s.Wins[domain.Landlord]) / float64(len(results))
	s.AvgTurns = float64(turns) / float64(len(results))
	return s
}
