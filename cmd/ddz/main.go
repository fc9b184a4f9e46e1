// Command ddz plays one Doudizhu match in the terminal. Each role is taken
// by a person at the keyboard, a bot of a given level, or a language model.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"doudizhu/internal/app"
	"doudizhu/internal/bot"
	"doudizhu/internal/config"
	"doudizhu/internal/domain"
	"doudizhu/internal/ports/console"
	"doudizhu/internal/ports/llm"
)

const seatHuman = "human"
const seatLLM = "llm"

var (
	seats      [domain.RoleCount]string
	seed       int64
	retries    int
	fallback   string
	configPath string
	envFile    string
	confirm    bool
	verbose    bool
)

func init() {
	flag.StringVar(&seats[domain.Landlord], "landlord", seatHuman, "Who plays the landlord: human, llm or a bot level (random, good, smart, god)")
	flag.StringVar(&seats[domain.FarmerA], "farmer-a", "smart", "Who plays farmer A")
	flag.StringVar(&seats[domain.FarmerB], "farmer-b", "smart", "Who plays farmer B")
	flag.Int64Var(&seed, "seed", 0, "Random seed (0 = use current time)")
	flag.IntVar(&retries, "retries", -1, "Proposal retries before the fallback plays (-1 = from config)")
	flag.StringVar(&fallback, "fallback", "", "Fallback policy: random, pass or lowest (empty = from config)")
	flag.StringVar(&configPath, "config", "", "Game config JSON file")
	flag.StringVar(&envFile, "env", ".env", "Dotenv file with LLM_* settings")
	flag.BoolVar(&confirm, "confirm", false, "Ask for confirmation before submitting each play")
	flag.BoolVar(&verbose, "verbose", false, "Enable debug logging")
}

func main() {
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if err := run(logger); err != nil {
		if errors.Is(err, console.ErrQuit) || errors.Is(err, context.Canceled) {
			fmt.Println("Match abandoned.")
			return
		}
		logger.WithError(err).Fatal("match failed")
	}
}

func run(logger *logrus.Logger) error {
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		logger.WithError(err).Warn("could not read env file")
	}

	cfg := config.Default()
	if configPath != "" {
		if err := config.LoadGameConfig(configPath); err != nil {
			return err
		}
		cfg = config.GetGameConfig()
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		logger.WithError(err).Warn("ignoring malformed env override")
	}
	if retries >= 0 {
		cfg.MaxProposalRetries = retries
	}
	if fallback != "" {
		cfg.Fallback = config.FallbackPolicy(fallback)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	logger.WithField("seed", seed).Debug("dealing")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var ids [domain.RoleCount]string
	proposers := make(map[domain.Role]app.Proposer, domain.RoleCount)
	for r := domain.Landlord; r <= domain.FarmerB; r++ {
		id := fmt.Sprintf("%s(%s)", r, seats[r])
		p, err := newProposer(seats[r], id, rng, logger, cancel)
		if err != nil {
			return fmt.Errorf("%s: %w", r, err)
		}
		ids[r] = id
		proposers[r] = p
	}

	svc := app.NewService(rng)
	table, events, err := svc.StartMatch(ids[:])
	if err != nil {
		return err
	}
	printEvents(os.Stdout, events)

	policy := app.TurnPolicy{MaxRetries: cfg.MaxProposalRetries, Fallback: cfg.Fallback}
	for !table.Match.IsFinished() {
		acting := table.Match.Acting()
		events, err := svc.ResolveTurn(ctx, table, proposers[acting], policy)
		printEvents(os.Stdout, events)
		if err != nil {
			if cause := context.Cause(ctx); cause != nil {
				return cause
			}
			return err
		}
	}
	return nil
}

// newProposer builds the player for one seat. Console players end the
// match through cancel when they quit or their input closes.
func newProposer(kind, id string, rng *rand.Rand, logger *logrus.Logger, cancel context.CancelCauseFunc) (app.Proposer, error) {
	switch strings.ToLower(kind) {
	case seatHuman:
		human := console.NewHuman(id, os.Stdin, os.Stdout, confirm)
		return app.ProposerFunc(func(ctx context.Context, obs domain.Observation, lastErr error) ([]domain.Card, error) {
			cards, err := human.ProposePlay(ctx, obs, lastErr)
			if errors.Is(err, console.ErrQuit) || errors.Is(err, io.EOF) {
				cancel(console.ErrQuit)
			}
			return cards, err
		}), nil
	case seatLLM:
		cfg, err := llm.ConfigFromEnv(os.LookupEnv)
		if err != nil {
			return nil, err
		}
		return llm.NewClient(cfg, logger.WithField("seat", id)), nil
	default:
		level, err := bot.ParseBotLevel(kind)
		if err != nil {
			return nil, err
		}
		return bot.NewAgent(bot.BotIdentity{UserID: id, DisplayName: id}, level, rng)
	}
}

func printEvents(w io.Writer, events []app.Event) {
	for _, ev := range events {
		switch p := ev.Payload.(type) {
		case app.MatchStartedPayload:
			fmt.Fprintf(w, "Landlord %s takes the bottom [%s].\n", p.Seats[domain.Landlord], strings.Join(domain.FormatCards(p.Bottom), " "))
		case app.CardPlayedPayload:
			tag := ""
			if p.Forced {
				tag = " (timeout)"
			}
			fmt.Fprintf(w, "%s plays %s%s, %d left.\n", p.UserID, p.Combination, tag, p.CardsLeft)
		case app.TurnPassedPayload:
			fmt.Fprintf(w, "%s passes.\n", p.UserID)
			if p.NewRound {
				fmt.Fprintf(w, "-- %s leads a new round --\n", p.NextTurnUserID)
			}
		case app.PlayRejectedPayload:
			fmt.Fprintf(w, "Rejected %s: %s\n", p.Reason, p.Detail)
		case app.MatchEndedPayload:
			fmt.Fprintf(w, "\n%s wins, the %s take the match.\n", p.WinnerUserID, p.WinningSide)
			for userID, cards := range p.RemainingHands {
				if len(cards) > 0 {
					fmt.Fprintf(w, "  %s held [%s]\n", userID, strings.Join(domain.FormatCards(cards), " "))
				}
			}
		}
	}
}
