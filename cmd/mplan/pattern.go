package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/seaplan/mplan/internal/api"
	"github.com/seaplan/mplan/internal/geo"
	"github.com/seaplan/mplan/internal/maneuver"
	"github.com/seaplan/mplan/internal/pattern"
	"github.com/spf13/pflag"
)

// runPattern prints the path of a pattern kind, optionally configured by a node document.
func runPattern(args []string) error {
	fs := pflag.NewFlagSet("pattern", pflag.ContinueOnError)
	configDir := commonFlags(fs)
	docPath := fs.String("document", "", "node document configuring the pattern")
	format := fs.String("format", "json", "output format: json, wkt or mercator")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: mplan pattern [flags] KIND")
	}

	a, err := newApp(*configDir)
	if err != nil {
		return err
	}
	defer a.close()

	m, err := a.reg.New(fs.Arg(0))
	if err != nil {
		return err
	}
	path, ok := m.(maneuver.PathProvider)
	if !ok {
		return fmt.Errorf("%s has no path", m.Kind())
	}
	if *docPath != "" {
		data, err := os.ReadFile(*docPath)
		if err != nil {
			return err
		}
		if err := maneuver.ImportDocument(data, m); err != nil {
			return err
		}
	}

	if err := maneuver.CheckPath(m); err != nil {
		return err
	}
	points := path.Points()
	line, err := geo.PathLineString(api.PathReference(m), points)
	if err != nil {
		return err
	}
	switch *format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"kind":       m.Kind(),
			"points":     points,
			"pathLength": pattern.PathLength(points),
		})
	case "wkt":
		fmt.Println(line.AsText())
	case "mercator":
		projected, err := geo.ProjectLineString(line)
		if err != nil {
			return err
		}
		fmt.Println(projected.AsText())
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
	return nil
}
