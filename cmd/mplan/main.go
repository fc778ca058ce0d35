package main

import (
	"fmt"
	"os"
	"strings"
)

// BuildDate can be set at build time via ldflags.
var (
	CurrentVersion string = "0.1.0"
	BuildDate      string = "unknown"
)

type command struct {
	name    string
	summary string
	run     func(args []string) error
}

var commands = []command{
	{"convert", "translate node documents to wire frames and back", runConvert},
	{"pattern", "generate the path of a pattern maneuver", runPattern},
	{"serve", "run the translation API and the vehicle link", runServe},
	{"template", "manage the template library", runTemplate},
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "mplan:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		usage()
		return fmt.Errorf("no command given")
	}
	name := strings.ToLower(args[0])
	switch name {
	case "version", "--version":
		fmt.Printf("mplan %s (built %s)\n", CurrentVersion, BuildDate)
		return nil
	case "help", "-h", "--help":
		usage()
		return nil
	}
	for _, c := range commands {
		if c.name == name {
			return c.run(args[1:])
		}
	}
	usage()
	return fmt.Errorf("unknown command %q", args[0])
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: mplan <command> [flags]")
	fmt.Fprintln(os.Stderr)
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-10s %s\n", c.name, c.summary)
	}
}
