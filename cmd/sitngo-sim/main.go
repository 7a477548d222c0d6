package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync/atomic"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/tablestakes/sitngo/internal/coordinator"
	"github.com/tablestakes/sitngo/internal/evaluator"
	"github.com/tablestakes/sitngo/internal/game"
	"github.com/tablestakes/sitngo/internal/history"
)

type CLI struct {
	Players     int    `short:"n" default:"6" help:"Number of seats (2-10)"`
	Chips       int    `short:"c" default:"1000" help:"Starting chips per player"`
	Strategy    string `short:"s" default:"random" enum:"random,calling" help:"Automated player strategy"`
	Seed        *int64 `help:"Random seed for a reproducible tournament"`
	History     string `help:"Write hand history JSONL to this file"`
	Verify      bool   `help:"Replay the recorded history and verify it after the run"`
	Tournaments int    `short:"t" default:"1" help:"Run this many tournaments and report seat win rates"`
	Workers     int    `short:"w" default:"4" help:"Parallel workers in batch mode"`
	LogLevel    string `short:"l" default:"warn" help:"Log level"`
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	winnerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	bustedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

func main() {
	var cli CLI
	ctx := kong.Parse(&cli)

	seed := time.Now().UnixNano()
	if cli.Seed != nil {
		seed = *cli.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	logger := log.New(os.Stderr)
	switch cli.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.WarnLevel)
	}

	names := make([]string, cli.Players)
	for i := range names {
		names[i] = fmt.Sprintf("Player%d", i+1)
	}

	if cli.Tournaments > 1 {
		if err := runBatch(cli, names, seed, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Batch failed: %v\n", err)
			ctx.Exit(1)
		}
		return
	}

	engine, err := game.NewEngine(names, cli.Chips, evaluator.New(),
		game.WithRNG(rng),
		game.WithLogger(logger.WithPrefix("engine")),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		ctx.Exit(1)
	}

	sources := make(map[int]coordinator.DecisionSource, cli.Players)
	for i := 0; i < cli.Players; i++ {
		if cli.Strategy == "calling" {
			sources[i] = coordinator.CallingSource{}
		} else {
			sources[i] = &coordinator.RandomSource{Rng: rng}
		}
	}

	opts := []coordinator.CoordinatorOption{
		coordinator.WithCoordinatorLogger(logger.WithPrefix("coordinator")),
	}
	if cli.History != "" {
		writer, err := history.NewWriter(cli.History)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening history: %v\n", err)
			ctx.Exit(1)
		}
		defer writer.Close()
		opts = append(opts, coordinator.WithRecordSink(writer))
	}

	coord, err := coordinator.New(engine, sources, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		ctx.Exit(1)
	}

	start := time.Now()
	if err := coord.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Tournament failed: %v\n", err)
		ctx.Exit(1)
	}

	printResults(engine, seed, time.Since(start))

	if cli.Verify && cli.History != "" {
		if err := history.Verify(cli.History, evaluator.New()); err != nil {
			fmt.Fprintf(os.Stderr, "History verification failed: %v\n", err)
			ctx.Exit(1)
		}
		fmt.Printf("\nHistory verified: %s replays cleanly\n", cli.History)
	}
}

// runBatch plays many tournaments in parallel and reports per-seat win
// rates. Each tournament gets its own RNG derived from the base seed so
// runs are reproducible regardless of scheduling.
func runBatch(cli CLI, names []string, seed int64, logger *log.Logger) error {
	wins := make([]atomic.Int64, cli.Players)
	var hands atomic.Int64

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(cli.Workers)

	start := time.Now()
	for i := 0; i < cli.Tournaments; i++ {
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seed + int64(i)))
			engine, err := game.NewEngine(names, cli.Chips, evaluator.New(),
				game.WithRNG(rng),
				game.WithLogger(logger.WithPrefix(fmt.Sprintf("engine-%d", i))),
			)
			if err != nil {
				return err
			}
			sources := make(map[int]coordinator.DecisionSource, cli.Players)
			for s := 0; s < cli.Players; s++ {
				if cli.Strategy == "calling" {
					sources[s] = coordinator.CallingSource{}
				} else {
					sources[s] = &coordinator.RandomSource{Rng: rng}
				}
			}
			coord, err := coordinator.New(engine, sources,
				coordinator.WithCoordinatorLogger(logger.WithPrefix(fmt.Sprintf("coordinator-%d", i))))
			if err != nil {
				return err
			}
			if err := coord.Run(ctx); err != nil {
				return fmt.Errorf("tournament %d: %w", i, err)
			}
			for _, st := range engine.Standings() {
				if st.Position == 1 {
					wins[st.Seat].Add(1)
				}
			}
			hands.Add(int64(engine.Stats().HandsPlayed))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("Batch Results"))
	fmt.Printf("%d tournaments, %d hands in %s (base seed %d)\n\n",
		cli.Tournaments, hands.Load(), time.Since(start).Round(time.Millisecond), seed)
	for seat := 0; seat < cli.Players; seat++ {
		won := wins[seat].Load()
		fmt.Printf("seat %d  %-10s %5d wins  %5.1f%%\n",
			seat, names[seat], won, 100*float64(won)/float64(cli.Tournaments))
	}
	return nil
}

func printResults(engine *game.Engine, seed int64, elapsed time.Duration) {
	stats := engine.Stats()

	fmt.Println(titleStyle.Render("Tournament Results"))
	fmt.Printf("seed %d, %d hands in %s (%d showdowns, %d fold wins, biggest pot %d)\n\n",
		seed, stats.HandsPlayed, elapsed.Round(time.Millisecond),
		stats.Showdowns, stats.FoldWins, stats.BiggestPot)

	for _, st := range engine.Standings() {
		line := fmt.Sprintf("%2d. %-10s seat %d  %5d chips", st.Position, st.Name, st.Seat, st.Chips)
		switch {
		case st.Position == 1:
			fmt.Println(winnerStyle.Render(line))
		case st.Eliminated:
			fmt.Println(bustedStyle.Render(line))
		default:
			fmt.Println(line)
		}
	}
}
