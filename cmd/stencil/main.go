package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/stencil-lang/stencil"
)

const (
	appName     = "stencil"
	historyFile = ".stencil_history"
	promptMain  = "> "
	promptCont  = "... "
)

var (
	errColor    = color.New(color.FgRed)
	resultColor = color.New(color.FgBlue)

	helpText = `Interactive commands:
  :help               Show this list
  :quit               Exit the console
  :reset              Discard all session variables
  :load <file.stn>    Run a script file in this session
  :profile            Show per-function call statistics
  :pwd                Print the working directory
  :cd <dir>           Change the working directory
  :! <command>        Run a shell command
Commands may be abbreviated to their first letter (:q, :l <file>, ...).`
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch cmd := os.Args[1]; cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "console", "cli":
		os.Exit(cmdConsole(os.Args[2:]))
	case "version":
		fmt.Println(stencil.Version)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`Stencil %s

Usage:
  %s run [--print] <file.stn>        Run a script; --print shows the result.
  %s console [--quiet] [--verbose]   Start the interactive console.
  %s version                         Print the version.

`, stencil.Version, appName, appName, appName)
}

// newLogger builds the diagnostic logger: colored human output on a
// terminal, plain otherwise; debug level only with --verbose.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
}

/* ---------- run ---------- */

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	verbose := fs.Bool("verbose", false, "enable debug logging")
	showResult := fs.Bool("print", false, "print the script's result as code")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s run [--verbose] [--print] <file.stn>\n", appName)
		return 2
	}
	file := fs.Arg(0)

	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, file, err)
		return 1
	}

	ctx := stencil.NewContext(stencil.WithLogger(newLogger(*verbose)))
	stencil.InitScriptFunctions(ctx)

	script, perrs := stencil.Parse(string(src))
	if len(perrs) > 0 {
		for _, e := range perrs {
			errColor.Fprintln(os.Stderr, stencil.PrettyParseError(string(src), file, e))
		}
		return 1
	}

	result := ctx.Eval(script, true)
	if result.Tag == stencil.STError {
		errColor.Fprintln(os.Stderr, result.Data.(*stencil.ScriptError).Msg)
		return 1
	}
	if *showResult {
		fmt.Println(stencil.ToCode(result))
	}
	return 0
}

/* ---------- console ---------- */

type session struct {
	ctx      *stencil.Context
	profiler *stencil.Profiler
	scope    stencil.ScopeHandle
	logger   *slog.Logger
}

func newSession(verbose bool) *session {
	s := &session{
		profiler: stencil.NewProfiler(),
		logger:   newLogger(verbose),
	}
	s.ctx = stencil.NewContext(
		stencil.WithProfiler(s.profiler),
		stencil.WithLogger(s.logger),
	)
	stencil.InitScriptFunctions(s.ctx)
	// Session bindings live in their own scope above the standard library,
	// so :reset can drop them without reinstalling the builtins.
	s.scope = s.ctx.OpenScope()
	return s
}

func (s *session) reset() {
	s.ctx.CloseScope(s.scope)
	s.scope = s.ctx.OpenScope()
	s.profiler.Reset()
}

// eval runs one source unit in the session scope and prints its result.
func (s *session) eval(src, srcName string) {
	script, perrs := stencil.Parse(src)
	if len(perrs) > 0 {
		for _, e := range perrs {
			errColor.Fprintln(os.Stderr, stencil.PrettyParseError(src, srcName, e))
		}
		return
	}
	result := s.ctx.Eval(script, false)
	switch result.Tag {
	case stencil.STError:
		errColor.Fprintln(os.Stderr, result.Data.(*stencil.ScriptError).Msg)
	case stencil.STNil:
	default:
		resultColor.Println(stencil.ToCode(result))
	}
}

func cmdConsole(args []string) int {
	fs := flag.NewFlagSet("console", flag.ContinueOnError)
	quiet := fs.Bool("quiet", false, "allow non-terminal input")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if !*quiet && !isatty.IsTerminal(os.Stdin.Fd()) {
		fmt.Fprintf(os.Stderr, "%s: standard input is not a terminal (use --quiet to run anyway)\n", appName)
		return 2
	}

	fmt.Printf("Stencil %s console\nCtrl+C cancels input, Ctrl+D exits. Type :help for commands.\n", stencil.Version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	s := newSession(*verbose)

	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			if quitRequested := s.command(trimmed); quitRequested {
				return 0
			}
			continue
		}

		s.eval(code, "<console>")
	}
}

// command handles one colon command; returns true to exit the console.
func (s *session) command(line string) bool {
	name, arg := line, ""
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		name, arg = line[:i], strings.TrimSpace(line[i+1:])
	}

	switch name {
	case ":help", ":h":
		fmt.Println(helpText)
	case ":quit", ":q":
		return true
	case ":reset", ":r":
		s.reset()
		fmt.Println("session cleared")
	case ":load", ":l":
		if arg == "" {
			errColor.Fprintln(os.Stderr, "usage: :load <file.stn>")
			break
		}
		src, err := os.ReadFile(arg)
		if err != nil {
			errColor.Fprintf(os.Stderr, "cannot read %s: %v\n", arg, err)
			break
		}
		s.eval(string(src), arg)
	case ":profile", ":p":
		fmt.Print(s.profiler.Report())
	case ":pwd":
		if wd, err := os.Getwd(); err == nil {
			fmt.Println(wd)
		}
	case ":cd", ":c":
		if err := os.Chdir(arg); err != nil {
			errColor.Fprintln(os.Stderr, err.Error())
		}
	case ":!":
		runShell(arg)
	default:
		if strings.HasPrefix(name, ":!") {
			runShell(strings.TrimPrefix(line, ":!"))
			break
		}
		errColor.Fprintf(os.Stderr, "unknown command %q; type :help\n", name)
	}
	return false
}

func runShell(cmdLine string) {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		return
	}
	cmd := exec.Command("/bin/sh", "-c", cmdLine)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		errColor.Fprintln(os.Stderr, err.Error())
	}
}

// readByParseProbe reads lines until the accumulated text parses, or fails
// with an error that is not just "input ended too early".
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		_, perrs := stencil.Parse(src)
		if len(perrs) == 0 || !stencil.IsIncomplete(perrs) {
			return src, true
		}
	}
}
