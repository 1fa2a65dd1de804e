// dyngen builds dyn type descriptors from TOML schemas. It generates Go
// registration code and prints the flattened slot layout of each type.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	cli "gopkg.in/urfave/cli.v1"

	"dyntype/pkg/dyn"
	"dyntype/pkg/errors"
	"dyntype/pkg/log"
	"dyntype/pkg/schema"
	"dyntype/pkg/typeutil"
)

// Exit codes follow sysexits.h.
const (
	exitUsage    = 64
	exitData     = 65
	exitInternal = 70
)

var (
	schemaFlag = cli.StringFlag{
		Name:  "schema",
		Usage: "TOML schema file",
	}
	packageFlag = cli.StringFlag{
		Name:  "package",
		Usage: "Go package name of the generated file",
	}
	outFlag = cli.StringFlag{
		Name:  "out",
		Usage: "Output file (default stdout)",
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

	generateCommand = cli.Command{
		Action:    generate,
		Name:      "generate",
		Usage:     "Generate Go registration code for a schema",
		ArgsUsage: " ",
		Flags:     []cli.Flag{schemaFlag, packageFlag, outFlag},
		Category:  "SCHEMA COMMANDS",
		Description: `
The generate command writes a Go file declaring one dyn.Type per schema type,
slot constants for its properties and an init function registering them.
Types that are not dynamic also get a dispatcher skeleton.`,
	}
	layoutCommand = cli.Command{
		Action:    layout,
		Name:      "layout",
		Usage:     "Print the flattened slot layout of every schema type",
		ArgsUsage: " ",
		Flags:     []cli.Flag{schemaFlag},
		Category:  "SCHEMA COMMANDS",
		Description: `
The layout command builds the schema and prints the instance and static slot
tables of each type. Slot conflicts are reported and make it exit non-zero.`,
	}
)

var app = cli.NewApp()

func init() {
	app.Name = "dyngen"
	app.Usage = "dynamic type schema tool"
	app.HideVersion = true
	app.Commands = []cli.Command{
		generateCommand,
		layoutCommand,
		dumpConfigCommand,
	}
	sort.Sort(cli.CommandsByName(app.Commands))
	app.Flags = []cli.Flag{configFileFlag, logLevelFlag, strictFlag}

	app.Before = func(ctx *cli.Context) error {
		if !log.SetLevel(ctx.GlobalString(logLevelFlag.Name)) {
			return cli.NewExitError(fmt.Sprintf("unknown log level %q", ctx.GlobalString(logLevelFlag.Name)), exitUsage)
		}
		return nil
	}
	app.After = func(ctx *cli.Context) error {
		_ = log.Sync()
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and the schema named by --schema.
func setup(ctx *cli.Context) (dyngenConfig, *schema.Schema, error) {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return cfg, nil, cli.NewExitError(err.Error(), exitUsage)
	}
	path := ctx.String(schemaFlag.Name)
	if path == "" {
		return cfg, nil, cli.NewExitError("missing --schema", exitUsage)
	}
	s, err := schema.LoadFile(path)
	if err != nil {
		return cfg, nil, cli.NewExitError(err.Error(), exitData)
	}
	return cfg, s, nil
}

func generate(ctx *cli.Context) error {
	cfg, s, err := setup(ctx)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := s.Generate(cfg.Generate.Package, &buf); err != nil {
		return cli.NewExitError(err.Error(), exitData)
	}
	if cfg.Generate.Out == "" {
		_, err = os.Stdout.Write(buf.Bytes())
	} else {
		err = os.WriteFile(cfg.Generate.Out, buf.Bytes(), 0o644)
	}
	if err != nil {
		return cli.NewExitError(err.Error(), exitInternal)
	}
	log.Info("generated", "package", cfg.Generate.Package, "types", len(s.Type))
	return nil
}

func layout(ctx *cli.Context) error {
	cfg, s, err := setup(ctx)
	if err != nil {
		return err
	}
	rt, err := typeutil.New(cfg.Runtime)
	if err != nil {
		return cli.NewExitError(err.Error(), exitUsage)
	}
	types, err := s.Build(rt)
	if err != nil {
		return cli.NewExitError(err.Error(), exitData)
	}
	if failed := printLayouts(os.Stdout, types); failed > 0 {
		return cli.NewExitError(fmt.Sprintf("%d types with slot conflicts", failed), exitData)
	}
	return nil
}

// printLayouts writes the layout of each type and reports the ones whose
// slot tables cannot be flattened.
func printLayouts(w io.Writer, types []*dyn.Type) int {
	failed := 0
	for i, t := range types {
		if i > 0 {
			fmt.Fprintln(w)
		}
		text, err := schema.Layout(t)
		if err != nil {
			errors.DisplayErrors(w, []error{err})
			failed++
			continue
		}
		fmt.Fprint(w, text)
	}
	return failed
}
