package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdemarena/internal/simulator"
	"github.com/lox/holdemarena/internal/tournament"
	"github.com/lox/holdemarena/poker"
)

var CLI struct {
	Tournaments int    `short:"n" default:"100" help:"Number of tournaments to simulate"`
	Players     int    `short:"p" default:"4" help:"Players per tournament"`
	Chips       int    `default:"1000" help:"Starting chips per player"`
	Ruleset     string `short:"r" default:"standard" help:"Ruleset (standard or short-deck)"`
	Seed        int64  `short:"s" default:"1" help:"Base seed; tournament i uses seed+i"`
	Parallel    int    `short:"j" default:"8" help:"Concurrent tournaments"`
	LogLevel    string `short:"l" default:"warn" help:"Log level"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logger := log.New(os.Stderr)
	switch CLI.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.WarnLevel)
	}

	ruleset, ok := poker.ParseRuleset(CLI.Ruleset)
	if !ok {
		fmt.Printf("Unknown ruleset: %s\n", CLI.Ruleset)
		ctx.Exit(1)
	}

	var (
		mu      sync.Mutex
		wins    = make(map[string]int)
		hands   int
		noWin   int
		results []tournament.Result
	)

	group, groupCtx := errgroup.WithContext(context.Background())
	group.SetLimit(CLI.Parallel)

	for i := 0; i < CLI.Tournaments; i++ {
		seed := CLI.Seed + int64(i)
		group.Go(func() error {
			sim := simulator.New(simulator.Config{
				Players:       CLI.Players,
				StartingChips: CLI.Chips,
				Ruleset:       ruleset,
				Seed:          seed,
				Logger:        logger,
			})
			result, err := sim.Run(groupCtx)
			if err != nil {
				return fmt.Errorf("tournament with seed %d: %w", seed, err)
			}

			mu.Lock()
			defer mu.Unlock()
			results = append(results, result)
			hands += result.HandsDealt
			if result.WinnerID == "" {
				noWin++
			} else {
				wins[result.WinnerID]++
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		logger.Fatal("simulation failed", "error", err)
	}

	fmt.Printf("tournaments: %d   hands: %d   avg hands: %.1f\n",
		len(results), hands, float64(hands)/float64(len(results)))
	if noWin > 0 {
		fmt.Printf("ended with no winner: %d\n", noWin)
	}

	names := make([]string, 0, len(wins))
	for name := range wins {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-16s %4d wins (%.1f%%)\n", name, wins[name],
			100*float64(wins[name])/float64(len(results)))
	}
}
