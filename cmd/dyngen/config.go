package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"
	cli "gopkg.in/urfave/cli.v1"

	"dyntype/pkg/typeutil"
)

var (
	dumpConfigCommand = cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Show configuration values",
		ArgsUsage:   "",
		Flags:       []cli.Flag{packageFlag, outFlag},
		Category:    "MISCELLANEOUS COMMANDS",
		Description: `The dumpconfig command shows configuration values.`,
	}

	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		link := ""
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type generateConfig struct {
	Package string
	Out     string `toml:",omitempty"`
}

type dyngenConfig struct {
	Runtime  typeutil.Config
	Generate generateConfig
}

func defaultConfig() dyngenConfig {
	return dyngenConfig{
		Runtime:  typeutil.DefaultConfig,
		Generate: generateConfig{Package: "types"},
	}
}

func loadConfig(file string, cfg *dyngenConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig layers defaults, the config file and command line flags.
func makeConfig(ctx *cli.Context) (dyngenConfig, error) {
	cfg := defaultConfig()
	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	if ctx.GlobalIsSet(logLevelFlag.Name) {
		cfg.Runtime.LogLevel = ctx.GlobalString(logLevelFlag.Name)
	}
	if ctx.GlobalBool(strictFlag.Name) {
		cfg.Runtime.StrictLookups = true
	}
	if ctx.IsSet(packageFlag.Name) {
		cfg.Generate.Package = ctx.String(packageFlag.Name)
	}
	if ctx.IsSet(outFlag.Name) {
		cfg.Generate.Out = ctx.String(outFlag.Name)
	}
	return cfg, nil
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return cli.NewExitError(err.Error(), exitUsage)
	}
	return writeConfig(os.Stdout, cfg)
}

func writeConfig(w io.Writer, cfg dyngenConfig) error {
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
