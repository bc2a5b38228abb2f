package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/stuarthighley/doombsp/bsp"
	"github.com/stuarthighley/doombsp/wad"
)

func main() {
	defaults := bsp.DefaultConfig()
	wadPath := flag.String("wad", "DOOM1.WAD", "WAD file to read")
	levelName := flag.String("level", "", "level to compile, all levels when empty")
	splitWeight := flag.Float64("split-weight", defaults.SplitWeight, "cost of each split segment")
	balanceWeight := flag.Float64("balance-weight", defaults.BalanceWeight, "cost of left/right imbalance")
	axisPenalty := flag.Float64("axis-penalty", defaults.NotAxisAlignedScore, "cost of a diagonal partition line")
	printTree := flag.Bool("tree", false, "print the node tree")
	locateStart := flag.Bool("locate-start", false, "report the subsector holding player 1's start")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()
	wad.SetLogger(logger)
	bsp.SetLogger(logger)
	log := logger.Sugar()

	log.Info("Starting")

	// New WAD
	w, err := wad.Open(*wadPath)
	if err != nil {
		log.Fatal(err)
	}
	defer w.Close()

	cfg := defaults
	cfg.SplitWeight = *splitWeight
	cfg.BalanceWeight = *balanceWeight
	cfg.NotAxisAlignedScore = *axisPenalty

	names := w.LevelNames()
	if *levelName != "" {
		names = []string{*levelName}
	}

	failed := 0
	for _, name := range names {
		l, err := w.ReadLevel(name, nil)
		if err != nil {
			log.Errorw("Cannot read level", "level", name, "error", err)
			failed++
			continue
		}
		tree, err := l.BuildBSP(bsp.WithConfig(cfg))
		if err != nil {
			log.Errorw("Cannot build nodes", "level", name, "error", err)
			failed++
			continue
		}

		st := tree.Stats()
		fmt.Printf("%-8s nodes %5d  subsectors %5d  void %4d  segs %6d  splits %5d  minisegs %5d  depth %3d\n",
			name, st.Nodes, st.Subsectors, st.VoidLeaves, st.Segments, st.Splits, st.Minisegs, st.MaxDepth)

		if *locateStart {
			if start, ok := l.PlayerStart(1); ok {
				sub := tree.Locate(float64(start.X), float64(start.Y))
				fmt.Printf("         player 1 start (%d,%d) in subsector %d, sector %d\n",
					start.X, start.Y, sub.Index, sub.Sector)
			}
		}
		if *printTree {
			bsp.PrintTree(os.Stdout, tree)
		}
	}

	if failed > 0 {
		log.Errorf("%d of %d levels failed", failed, len(names))
		os.Exit(1)
	}
}
