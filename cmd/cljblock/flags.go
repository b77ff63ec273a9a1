package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

func envString(name string) string {
	return fmt.Sprintf("CLJBLOCK_%s", strings.ToUpper(strings.ReplaceAll(name, "-", "_")))
}

func newStringFlag(name, alias, usage, value string) *cli.StringFlag {
	var aliases []string
	if alias != "" {
		aliases = []string{alias}
	}
	return &cli.StringFlag{
		Name:    name,
		Aliases: aliases,
		Usage:   usage,
		Value:   value,
	}
}

func newIntFlag(name, alias, usage string, value int) *cli.IntFlag {
	var aliases []string
	if alias != "" {
		aliases = []string{alias}
	}
	return &cli.IntFlag{
		Name:    name,
		Aliases: aliases,
		Usage:   usage,
		Value:   value,
	}
}

func newBoolFlag(name, alias, usage string, value bool) *cli.BoolFlag {
	var aliases []string
	if alias != "" {
		aliases = []string{alias}
	}
	return &cli.BoolFlag{
		Name:    name,
		Aliases: aliases,
		Usage:   usage,
		Value:   value,
	}
}

// Global flags also read CLJBLOCK_<NAME> from the environment.

func newGlobalStringFlag(name, alias, usage, value string, destination *string) *cli.StringFlag {
	f := newStringFlag(name, alias, usage, value)
	f.EnvVars = []string{envString(name)}
	f.Destination = destination
	return f
}

func newGlobalBoolFlag(name, alias, usage string, value bool, destination *bool) *cli.BoolFlag {
	f := newBoolFlag(name, alias, usage, value)
	f.EnvVars = []string{envString(name)}
	f.Destination = destination
	return f
}
