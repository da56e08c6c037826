/*
Copyright (C) 2023-2024  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package main

import "os"
import "io"
import "fmt"
import "flag"
import "time"
import "bytes"
import "strings"
import "sync"
import "syscall"
import "os/signal"
import "crypto/rand"
import "runtime/pprof"
import "runtime/debug"

import "github.com/chzyer/readline"
import "github.com/dc0d/onexit"
import "github.com/docker/go-units"
import "github.com/fsnotify/fsnotify"
import "github.com/google/uuid"

import "github.com/launix-de/gclisp/scm"

const newPrompt = "\033[32m>\033[0m "
const contPrompt = "\033[32m.\033[0m "
const resultPrompt = "\033[31m=\033[0m "

// evalMu serializes every call into a shared Interpreter once more than
// one goroutine can reach it: the REPL loop and the -watch reload
// goroutine both run against the same instance, and an Interpreter is
// only safe for one driving goroutine at a time.
var evalMu sync.Mutex

// workaround for flag to allow -c to be passed more than once
type arrayFlags []string

func (i *arrayFlags) String() string { return "dummy" }
func (i *arrayFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

func main() {
	fmt.Print(`gclisp Copyright (C) 2023-2024   Carl-Philip Hänsch
    This program comes with ABSOLUTELY NO WARRANTY;
    This is free software, and you are welcome to redistribute it
    under certain conditions;

`)

	uuid.SetRand(rand.Reader)

	var commands arrayFlags
	flag.Var(&commands, "c", "Evaluate an expression and print its result, then continue")

	limit := 0
	flag.IntVar(&limit, "limit", 0, "Soft heap object-count limit (0: default)")

	tracePath := ""
	flag.StringVar(&tracePath, "trace", "", "Write GC/eval trace events as JSON lines to this file")

	profile := ""
	flag.StringVar(&profile, "profile", "", "Write a CPU profile to this file on exit")

	watchPath := ""
	flag.StringVar(&watchPath, "watch", "", "Reload and re-run this file whenever it changes on disk")

	flag.Parse()
	scripts := flag.Args()

	var opts []scm.Option
	if limit > 0 {
		opts = append(opts, scm.WithLimit(limit))
	}
	var tracer *scm.Tracer
	if tracePath != "" {
		f, err := os.Create(tracePath)
		if err != nil {
			panic(err)
		}
		tracer = scm.NewTracer(f)
		opts = append(opts, scm.WithTrace(tracer))
	}
	it := scm.NewInterpreter(opts...)

	onexit.Register(func() {
		if tracer != nil {
			tracer.Close()
		}
	})
	cancelChan := make(chan os.Signal, 1)
	signal.Notify(cancelChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-cancelChan
		it.Close()
		os.Exit(1)
	}()

	if profile != "" {
		f, err := os.Create(profile)
		if err != nil {
			panic(err)
		}
		defer f.Close()
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	for _, path := range scripts {
		fmt.Println("Loading " + path + " ...")
		runFileOrDie(it, path)
	}
	for _, command := range commands {
		fmt.Println("Executing " + command + " ...")
		result, err := it.EvalAll(strings.NewReader(command))
		if err != nil {
			fmt.Fprintln(os.Stderr, "fatal:", err)
			os.Exit(1)
		}
		fmt.Println(resultPrompt, scm.String(result))
	}

	if watchPath != "" {
		startWatch(it, watchPath)
	}

	if len(scripts) == 0 && len(commands) == 0 && watchPath == "" {
		fmt.Print(`
    Type an expression like ((fun (x (print_atom x))) (quote hi)) to get started.
    Every pair is "(a b)" - a literal cons - not a variadic list;
    build longer structures by nesting: (a (b (c d))).

`)
	}

	repl(it)
	it.Close()
}

// runFileOrDie loads path as a sequence of top-level terms and evaluates
// each one; any error during batch loading is fatal, unlike the REPL's
// per-line recovery.
func runFileOrDie(it *scm.Interpreter, path string) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
	defer f.Close()
	if _, err := it.EvalAll(f); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

// startWatch re-runs path against the same Interpreter - bindings from
// earlier reloads stay in scope, the same as retyping definitions at a
// REPL - whenever the file changes on disk. Errors during a reload are
// logged and otherwise ignored, matching how an editor save that
// momentarily leaves invalid syntax on disk shouldn't bring the watcher
// down.
func startWatch(it *scm.Interpreter, path string) {
	reread := func() {
		f, err := os.Open(path)
		if err != nil {
			fmt.Println("watch:", err)
			return
		}
		defer f.Close()
		evalMu.Lock()
		_, err = it.EvalAll(f)
		evalMu.Unlock()
		if err != nil {
			fmt.Println("watch:", err)
		}
	}
	reread()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		panic(err)
	}
	if err := watcher.Add(path); err != nil {
		panic(err)
	}
	go func() {
		for range watcher.Events {
			for {
				time.Sleep(10 * time.Millisecond)
				select {
				case <-watcher.Events:
				default:
					goto doReread
				}
			}
		doReread:
			reread()
			watcher.Add(path) // editors often rename-on-save
		}
	}()
}

// repl drives an interactive session over stdin: a syntax error that
// merely ran out of input re-prompts for the rest of the expression,
// anything else recovers and reports without killing the process - except a
// ResourceError, which always ends the session.
func repl(it *scm.Interpreter) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            newPrompt,
		HistoryFile:       ".gclisp-history.tmp",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		panic(err)
	}
	defer rl.Close()
	rl.CaptureExitSignal()

	oldline := ""
	for {
		line, err := rl.Readline()
		line = oldline + line
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			oldline = ""
			rl.SetPrompt(newPrompt)
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			panic(err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		fatal := func() bool {
			defer func() {
				if r := recover(); r != nil {
					fmt.Println("panic:", r, string(debug.Stack()))
					oldline = ""
					rl.SetPrompt(newPrompt)
				}
			}()

			if strings.TrimSpace(line) == "(heap_stats)" {
				evalMu.Lock()
				printHeapStats(it)
				evalMu.Unlock()
				oldline = ""
				rl.SetPrompt(newPrompt)
				return false
			}

			evalMu.Lock()
			result, err := it.EvalAll(strings.NewReader(line))
			evalMu.Unlock()
			if err != nil {
				rerr, ok := err.(*scm.RuntimeError)
				if ok && rerr.Kind == scm.ParseError && strings.Contains(rerr.Message, "unexpected end of input") {
					oldline = line + "\n"
					rl.SetPrompt(contPrompt)
					return false
				}
				if ok && rerr.Kind == scm.ResourceError {
					fmt.Println("fatal:", rerr)
					return true
				}
				fmt.Println("error:", err)
				oldline = ""
				rl.SetPrompt(newPrompt)
				return false
			}

			var b bytes.Buffer
			b.WriteString(scm.String(result))
			fmt.Print(resultPrompt)
			fmt.Println(b.String())
			oldline = ""
			rl.SetPrompt(newPrompt)
			return false
		}()
		if fatal {
			break
		}
	}
}

// printHeapStats reports live object count against the soft limit, plus
// a rough resident-size estimate (a flat 64 bytes per node) so the
// number means something without exposing
// runtime.MemStats, which would count the whole Go heap, not just this
// interpreter's.
func printHeapStats(it *scm.Interpreter) {
	h := it.Heap()
	const approxBytesPerObject = 64
	fmt.Printf("objects: %d / %d (~%s)\n", h.Count(), h.Limit(), units.BytesSize(float64(h.Count()*approxBytesPerObject)))
}
