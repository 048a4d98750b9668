package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"chessbot/engine"
	"chessbot/rules"
)

const (
	engineName   = "chessbot 1.0"
	engineAuthor = "chessbot authors"

	// Depth used when only the clock limits a search.
	maxSearchDepth = 64
	// Budget for searches bounded by depth alone, or by "stop".
	untimed = 24 * time.Hour
)

func main() {
	logLevel := flag.String("loglevel", "info", "log level written to stderr (debug, info, warn, error, disabled)")
	backendName := flag.String("backend", string(rules.Dragon), "move generator: dragon or goose")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bad -loglevel:", err)
		os.Exit(2)
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	backend, err := rules.ParseBackend(*backendName)
	if err != nil {
		log.Fatal().Err(err).Msg("startup")
	}

	uci, err := newUCIEngine(os.Stdout, backend, engine.DefaultOptions())
	if err != nil {
		log.Fatal().Err(err).Msg("startup")
	}
	if err := uci.loop(os.Stdin); err != nil {
		log.Fatal().Err(err).Msg("uci-loop")
	}
}

// uciEngine speaks UCI on a pair of streams. Searches run on their own
// goroutine so "stop" and "isready" are answered while thinking.
type uciEngine struct {
	mu  sync.Mutex
	out io.Writer

	bot    *engine.Bot
	opts   engine.Options
	search errgroup.Group
}

func newUCIEngine(out io.Writer, backend rules.Backend, opts engine.Options) (*uciEngine, error) {
	bot, err := engine.NewBot(backend, opts)
	if err != nil {
		return nil, err
	}
	return &uciEngine{out: out, bot: bot, opts: opts}, nil
}

func (u *uciEngine) println(a ...any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintln(u.out, a...)
}

func (u *uciEngine) printf(format string, a ...any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.out, format, a...)
}

// loop reads commands until "quit" or the end of input. A search still
// running at the end of input is allowed to finish.
func (u *uciEngine) loop(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if quit := u.handle(scanner.Text()); quit {
			u.bot.Searcher().Stop()
			break
		}
	}
	if err := u.search.Wait(); err != nil {
		return err
	}
	return errors.Wrap(scanner.Err(), "read commands")
}

// handle runs one command line and reports whether the engine should quit.
func (u *uciEngine) handle(line string) bool {
	tokens := strings.Fields(line)
	if len(tokens) == 0 { // ignore blank lines
		return false
	}
	log.Debug().Str("line", line).Msg("uci-command")

	switch strings.ToLower(tokens[0]) {
	case "uci":
		u.identify()
	case "isready":
		u.println("readyok")
	case "ucinewgame":
		u.search.Wait()
		u.report(u.bot.Reset())
	case "position":
		u.search.Wait()
		u.report(u.position(tokens[1:]))
	case "go":
		u.search.Wait()
		u.goCommand(tokens[1:])
	case "stop":
		u.bot.Searcher().Stop()
		u.search.Wait()
	case "setoption":
		u.search.Wait()
		u.report(u.setOption(tokens[1:]))
	case "eval":
		u.search.Wait()
		pos := u.bot.Position()
		u.printf("info string eval %d relative %d fen %s\n", engine.Evaluate(pos), engine.Relative(pos), pos.FEN())
	case "moveordering":
		u.search.Wait()
		u.println("info string move ordering", u.bot.FEN())
		for idx, sm := range u.bot.Searcher().RootOrdering(u.bot.Position()) {
			u.printf("info string #%d %s score=%d\n", idx+1, sm.Move, sm.Score)
		}
	case "quit":
		return true
	default:
		u.println("info string Unknown command:", line)
	}
	return false
}

// report turns a command error into an "info string" line for the GUI.
func (u *uciEngine) report(err error) {
	if err == nil {
		return
	}
	log.Warn().Err(err).Msg("uci-command-failed")
	u.println("info string", err.Error())
}

func (u *uciEngine) identify() {
	u.println("id name", engineName)
	u.println("id author", engineAuthor)
	u.printf("option name Hash type spin default %d min 1 max 4096\n", engine.TableSizeToMB(u.opts.TableSize))
	u.printf("option name MaxDepth type spin default %d min 1 max %d\n", u.opts.MaxDepth, maxSearchDepth)
	u.printf("option name MoveTime type spin default %d min 0 max 600000\n", u.opts.MoveTime.Milliseconds())
	u.printf("option name Replacement type combo default %s var fullclear var depth var lru\n", u.opts.Replacement)
	u.printf("option name ResetPolicy type combo default %s var never var pergame var decay\n", u.opts.ResetPolicy)
	u.printf("option name Backend type combo default %s var %s\n", u.bot.Backend(),
		strings.Join(lo.Map(rules.Backends, func(b rules.Backend, _ int) string { return string(b) }), " var "))
	u.println("uciok")
}

// position handles "position startpos|fen <fen> [moves ...]".
func (u *uciEngine) position(args []string) error {
	if len(args) == 0 {
		return errors.New("malformed position command")
	}
	var fen string
	rest := args[1:]
	switch strings.ToLower(args[0]) {
	case "startpos":
		fen = rules.Startpos
	case "fen":
		idx := lo.IndexOf(rest, "moves")
		if idx < 0 {
			idx = len(rest)
		}
		fen = strings.Join(rest[:idx], " ")
		rest = rest[idx:]
		if fen == "" {
			return errors.New("invalid fen position")
		}
	default:
		return errors.Errorf("invalid position subcommand %q", args[0])
	}

	var moves []string
	if len(rest) > 0 {
		if strings.ToLower(rest[0]) != "moves" {
			return errors.Errorf("unexpected token %q in position command", rest[0])
		}
		moves = rest[1:]
	}
	return u.bot.SetPosition(fen, moves)
}

type goParams struct {
	depth    int
	moveTime int
	wtime    int
	btime    int
	winc     int
	binc     int
	infinite bool
	hasClock bool
}

func parseGo(args []string) (goParams, error) {
	var p goParams
	for i := 0; i < len(args); i++ {
		token := strings.ToLower(args[i])
		var target *int
		switch token {
		case "infinite":
			p.infinite = true
			continue
		case "depth":
			target = &p.depth
		case "movetime":
			target = &p.moveTime
		case "wtime":
			target, p.hasClock = &p.wtime, true
		case "btime":
			target, p.hasClock = &p.btime, true
		case "winc":
			target = &p.winc
		case "binc":
			target = &p.binc
		default:
			return p, errors.Errorf("unknown go subcommand %q", token)
		}
		if i+1 >= len(args) {
			return p, errors.Errorf("malformed go command option %s", token)
		}
		i++
		v, err := strconv.Atoi(args[i])
		if err != nil {
			return p, errors.Wrapf(err, "malformed go command option %s", token)
		}
		*target = v
	}
	return p, nil
}

// limits turns go parameters into a depth and a time budget for the side
// to move.
func (u *uciEngine) limits(p goParams) (int, time.Duration) {
	depth := u.opts.MaxDepth
	limit := u.opts.MoveTime

	switch {
	case p.infinite:
		depth, limit = maxSearchDepth, untimed
	case p.moveTime > 0:
		depth, limit = maxSearchDepth, time.Duration(p.moveTime)*time.Millisecond
	case p.hasClock:
		remaining, inc := p.wtime, p.winc
		if !u.bot.Position().WhiteToMove() {
			remaining, inc = p.btime, p.binc
		}
		depth = maxSearchDepth
		limit = engine.AllocateMoveTime(u.bot.Position(), remaining, inc)
	case p.depth > 0:
		limit = untimed
	}
	if p.depth > 0 {
		depth = p.depth
	}
	return depth, limit
}

func (u *uciEngine) goCommand(args []string) {
	params, err := parseGo(args)
	if err != nil {
		u.report(err)
		return
	}
	depth, limit := u.limits(params)

	searcher := u.bot.Searcher()
	searcher.OnDepth = u.printInfo
	searcher.ClearStop()
	log.Debug().Int("depth", depth).Dur("limit", limit).Str("fen", u.bot.FEN()).Msg("go")

	u.search.Go(func() error {
		move, score, ok := u.bot.BestMove(depth, limit)
		if !ok {
			move = rules.NoMove
		}
		log.Info().Str("move", move.String()).Int("score", score).Msg("bestmove")
		u.println("bestmove", move)
		return nil
	})
}

func (u *uciEngine) printInfo(info engine.SearchInfo) {
	score := fmt.Sprintf("cp %d", info.Score)
	if engine.IsMateScore(info.Score) {
		score = fmt.Sprintf("mate %d", engine.MateIn(info.Score))
	}
	pv := lo.Map(info.PV, func(m rules.Move, _ int) string { return m.String() })
	u.printf("info depth %d score %s nodes %d nps %d time %d pv %s\n",
		info.Depth, score, info.Nodes, info.NPS(), info.Elapsed.Milliseconds(), strings.Join(pv, " "))
}

// setOption handles "setoption name <id> value <x>".
func (u *uciEngine) setOption(args []string) error {
	nameIdx := lo.IndexOf(lo.Map(args, func(s string, _ int) string { return strings.ToLower(s) }), "name")
	valueIdx := lo.IndexOf(lo.Map(args, func(s string, _ int) string { return strings.ToLower(s) }), "value")
	if nameIdx != 0 || valueIdx < 2 || valueIdx == len(args)-1 {
		return errors.New("malformed setoption command, want: setoption name <id> value <x>")
	}
	name := strings.ToLower(strings.Join(args[1:valueIdx], " "))
	value := strings.Join(args[valueIdx+1:], " ")

	opts := u.opts
	switch name {
	case "hash":
		mb, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrap(err, "option Hash")
		}
		opts.TableSize = engine.TableSizeFromMB(mb)
	case "maxdepth":
		d, err := strconv.Atoi(value)
		if err != nil || d < 1 {
			return errors.Errorf("option MaxDepth: invalid depth %q", value)
		}
		opts.MaxDepth = d
	case "movetime":
		ms, err := strconv.Atoi(value)
		if err != nil || ms < 0 {
			return errors.Errorf("option MoveTime: invalid milliseconds %q", value)
		}
		opts.MoveTime = time.Duration(ms) * time.Millisecond
	case "replacement":
		r, err := engine.ParseReplacement(value)
		if err != nil {
			return errors.Wrap(err, "option Replacement")
		}
		opts.Replacement = r
	case "resetpolicy":
		p, err := engine.ParseResetPolicy(value)
		if err != nil {
			return errors.Wrap(err, "option ResetPolicy")
		}
		opts.ResetPolicy = p
	case "backend":
		b, err := rules.ParseBackend(value)
		if err != nil {
			return errors.Wrap(err, "option Backend")
		}
		return u.bot.SetBackend(b)
	default:
		return errors.Errorf("unknown option %q", name)
	}

	u.opts = opts
	u.bot.Configure(opts)
	log.Info().Str("option", name).Str("value", value).Msg("option-set")
	return nil
}
