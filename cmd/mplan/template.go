package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/seaplan/mplan/internal/api"
	"github.com/seaplan/mplan/internal/cache"
	"github.com/seaplan/mplan/internal/maneuver"
	"github.com/seaplan/mplan/internal/registry"
	"github.com/spf13/pflag"
)

// templateStore is what the template command needs, served either by the local library or
// by a remote API.
type templateStore interface {
	list(ctx context.Context) ([]api.TemplateResponse, error)
	get(ctx context.Context, name string) ([]byte, error)
	put(ctx context.Context, name, vehicle string, document []byte, tags []string) error
	remove(ctx context.Context, name string) error
}

// runTemplate manages templates: list, get NAME, put NAME FILE, delete NAME.
func runTemplate(args []string) error {
	fs := pflag.NewFlagSet("template", pflag.ContinueOnError)
	configDir := commonFlags(fs)
	server := fs.String("server", "", "base URL of a remote mplan API; the local library is used when empty")
	vehicle := fs.String("vehicle", "", "vehicle the template is meant for (put)")
	tags := fs.StringSlice("tag", nil, "template tags (put)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("usage: mplan template [flags] list|get NAME|put NAME FILE|delete NAME")
	}

	a, err := newApp(*configDir)
	if err != nil {
		return err
	}
	defer a.close()

	var store templateStore
	if *server != "" {
		store = remoteStore{c: api.NewClient(*server)}
	} else {
		backend, templates, err := a.openLibrary()
		if err != nil {
			return err
		}
		defer closeLibrary(a, backend)
		store = localStore{templates: templates, reg: a.reg}
	}

	ctx := context.Background()
	op, rest := fs.Arg(0), fs.Args()[1:]
	switch {
	case op == "list":
		list, err := store.list(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tKIND\tVEHICLE\tTAGS\tUPDATED")
		for _, t := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.Name, t.Kind, t.Vehicle, strings.Join(t.Tags, ","), t.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	case op == "get" && len(rest) == 1:
		doc, err := store.get(ctx, rest[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", doc)
		return nil
	case op == "put" && len(rest) == 2:
		doc, err := os.ReadFile(rest[1])
		if err != nil {
			return err
		}
		return store.put(ctx, rest[0], *vehicle, doc, *tags)
	case op == "delete" && len(rest) == 1:
		return store.remove(ctx, rest[0])
	default:
		return fmt.Errorf("unknown template operation %q with %d arguments", op, len(rest))
	}
}

type localStore struct {
	templates *cache.Templates
	reg       *registry.Registry
}

func (s localStore) list(ctx context.Context) ([]api.TemplateResponse, error) {
	list, err := s.templates.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]api.TemplateResponse, len(list))
	for i, t := range list {
		out[i] = api.TemplateResponse{Name: t.Name, Vehicle: t.Vehicle, Kind: t.Kind, Tags: t.Tags, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt}
	}
	return out, nil
}

func (s localStore) get(ctx context.Context, name string) ([]byte, error) {
	m, err := s.templates.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return maneuver.ExportDocument(m)
}

func (s localStore) put(ctx context.Context, name, vehicle string, document []byte, tags []string) error {
	m, err := s.reg.DecodeDocument(document)
	if err != nil && !errors.Is(err, registry.ErrUnknownType) {
		return err
	}
	return s.templates.Put(ctx, name, vehicle, m, tags...)
}

func (s localStore) remove(ctx context.Context, name string) error {
	return s.templates.Delete(ctx, name)
}

type remoteStore struct {
	c *api.Client
}

func (s remoteStore) list(ctx context.Context) ([]api.TemplateResponse, error) {
	return s.c.ListTemplates(ctx)
}

func (s remoteStore) get(ctx context.Context, name string) ([]byte, error) {
	return s.c.GetTemplate(ctx, name)
}

func (s remoteStore) put(ctx context.Context, name, vehicle string, document []byte, tags []string) error {
	return s.c.PutTemplate(ctx, name, vehicle, document, tags...)
}

func (s remoteStore) remove(ctx context.Context, name string) error {
	return s.c.DeleteTemplate(ctx, name)
}
