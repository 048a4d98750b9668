package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chessbot/engine"
	"chessbot/rules"
)

func main() {
	// --- Flags ---
	depthFlag := flag.Int("depth", 5, "search depth in plies")
	repeatFlag := flag.Int("repeat", 1, "number of searches to run")
	fenFlag := flag.String("fen", rules.Startpos, "FEN to search")
	backendFlag := flag.String("backend", string(rules.Dragon), "move generator: dragon or goose")
	replacementFlag := flag.String("replacement", engine.FullClear.String(), "transposition table replacement: fullclear, depth or lru")
	tableSize := flag.Int("ttsize", engine.DefaultOptions().TableSize, "transposition table capacity in entries")
	cpuProfile := flag.String("cpuprofile", "", "write CPU profile to file")
	memProfile := flag.String("memprofile", "", "write memory profile (heap) to file")
	verbose := flag.Bool("v", false, "log search statistics")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *depthFlag <= 0 {
		log.Fatal().Int("depth", *depthFlag).Msg("depth must be positive")
	}
	backend, err := rules.ParseBackend(*backendFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("bad -backend")
	}
	replacement, err := engine.ParseReplacement(*replacementFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("bad -replacement")
	}

	// --- Optional CPU profiling setup ---
	if *cpuProfile != "" {
		cpuFile, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		if err := pprof.StartCPUProfile(cpuFile); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer func() {
			pprof.StopCPUProfile()
			cpuFile.Close()
		}()
	}

	opts := engine.DefaultOptions()
	opts.Replacement = replacement
	opts.TableSize = *tableSize

	fmt.Printf("searchbench: fen=%q backend=%s replacement=%s depth=%d repeat=%d\n",
		*fenFlag, backend, replacement, *depthFlag, *repeatFlag)

	startAll := time.Now()
	var totalNodes uint64
	for i := 0; i < *repeatFlag; i++ {
		// Fresh position and tables for each run
		pos, err := rules.New(backend, *fenFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("bad -fen")
		}
		searcher := engine.NewSearcher(opts)

		iterStart := time.Now()
		bestMove, score := searcher.IterativeDeepening(pos, *depthFlag, 24*time.Hour)
		iterElapsed := time.Since(iterStart)

		stats := searcher.Stats()
		totalNodes += stats.Nodes + stats.QNodes
		fmt.Printf("iteration %d: bestmove %v score %d nodes %d time=%v\n",
			i+1, bestMove, score, stats.Nodes+stats.QNodes, iterElapsed)
	}
	totalElapsed := time.Since(startAll)
	fmt.Printf("total time: %v  nps: %.0f\n", totalElapsed, float64(totalNodes)/totalElapsed.Seconds())

	// --- Optional heap profile at the end ---
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create memory profile")
		}
		defer f.Close()

		runtime.GC() // get up-to-date heap info
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not write memory profile")
		}
	}
}
