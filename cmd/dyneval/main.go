// dyneval evaluates expressions over dyn types. With no arguments it
// starts a REPL; a script argument evaluates the file line by line.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	cli "gopkg.in/urfave/cli.v1"

	"dyntype/pkg/log"
	"dyntype/pkg/schema"
	"dyntype/pkg/typeutil"
)

const (
	exitUsage    = 64
	exitData     = 65
	exitInternal = 70

	historyFile = ".dyneval_history"
	promptMain  = "> "
)

var (
	exprFlag = cli.StringFlag{
		Name:  "e",
		Usage: "Evaluate the given expression and exit",
	}
	schemaFlag = cli.StringFlag{
		Name:  "schema",
		Usage: "TOML schema registered before evaluation",
	}
	logLevelFlag = cli.StringFlag{
		Name:  "loglevel",
		Usage: "Log level: debug, info, warn or error",
		Value: "warn",
	}
	strictFlag = cli.BoolFlag{
		Name:  "strict",
		Usage: "Report unresolved lookups as errors",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "dyneval"
	app.Usage = "evaluate expressions over dynamic types"
	app.ArgsUsage = "[script]"
	app.HideVersion = true
	app.Flags = []cli.Flag{exprFlag, schemaFlag, logLevelFlag, strictFlag}
	app.Action = dyneval
	app.After = func(ctx *cli.Context) error {
		_ = log.Sync()
		return nil
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func dyneval(ctx *cli.Context) error {
	if ctx.NArg() > 1 {
		return cli.NewExitError("usage: dyneval [script] or dyneval -e \"expression\"", exitUsage)
	}
	cfg := typeutil.DefaultConfig
	cfg.LogLevel = ctx.String(logLevelFlag.Name)
	cfg.StrictLookups = ctx.Bool(strictFlag.Name)
	rt, err := typeutil.New(cfg)
	if err != nil {
		return cli.NewExitError(err.Error(), exitUsage)
	}
	if path := ctx.String(schemaFlag.Name); path != "" {
		s, err := schema.LoadFile(path)
		if err != nil {
			return cli.NewExitError(err.Error(), exitData)
		}
		if _, err := s.Build(rt); err != nil {
			return cli.NewExitError(err.Error(), exitData)
		}
	}
	s := newSession(rt, os.Stdout, os.Stderr)

	if src := ctx.String(exprFlag.Name); src != "" {
		if s.eval(src) != nil {
			return cli.NewExitError("", exitData)
		}
		return nil
	}
	if ctx.NArg() == 1 {
		return runFile(s, ctx.Args().First())
	}
	return repl(s)
}

func runFile(s *session, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return cli.NewExitError(err.Error(), exitUsage)
	}
	defer f.Close()
	failed, err := s.run(f)
	if err != nil {
		return cli.NewExitError(err.Error(), exitInternal)
	}
	if failed > 0 {
		return cli.NewExitError(fmt.Sprintf("%d lines failed", failed), exitData)
	}
	return nil
}

func repl(s *session) error {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	for {
		line, err := ln.Prompt(promptMain)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return cli.NewExitError(err.Error(), exitInternal)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)
		if strings.HasPrefix(line, ":") {
			if s.command(line) {
				return nil
			}
			continue
		}
		_ = s.eval(line)
	}
}
