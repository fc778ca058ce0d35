package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/seaplan/mplan/internal/maneuver"
	"github.com/seaplan/mplan/internal/registry"
	"github.com/seaplan/mplan/internal/wire"
	"github.com/seaplan/mplan/internal/worker"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// runConvert translates node documents given as files into a frame stream or batch, or a
// frame stream or batch back into documents.
func runConvert(args []string) error {
	fs := pflag.NewFlagSet("convert", pflag.ContinueOnError)
	configDir := commonFlags(fs)
	toDocument := fs.Bool("to-document", false, "read frames and write node documents")
	vehicle := fs.String("vehicle", "", "vehicle whose profile applies")
	plan := fs.String("plan", "", "plan name stored in batches")
	batch := fs.Bool("batch", false, "read or write a zstd frame batch instead of a raw frame stream")
	output := fs.StringP("output", "o", "-", "output file")
	fs.Int("workers", 0, "concurrent translations")
	_ = viper.BindPFlag("workers", fs.Lookup("workers"))
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(*configDir)
	if err != nil {
		return err
	}
	defer a.close()

	out, closeOut, err := openOutput(*output)
	if err != nil {
		return err
	}
	defer closeOut()

	if *toDocument {
		return framesToDocuments(a.reg, fs.Args(), *batch, out)
	}

	docs := make([][]byte, 0, fs.NArg())
	for _, path := range fs.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		docs = append(docs, data)
	}
	w := worker.NewManager(worker.Dependencies{
		Registry: a.reg,
		Logger:   a.slog.Named("worker"),
		Workers:  viper.GetInt("workers"),
	})
	b, _, err := w.Batch(context.Background(), *vehicle, *plan, docs)
	if err != nil {
		return err
	}
	if *batch {
		return wire.WriteBatch(out, b)
	}
	for _, f := range b.Frames {
		if err := wire.WriteFrame(out, f); err != nil {
			return err
		}
	}
	return nil
}

// framesToDocuments reads every input (stdin when none) and writes one document per frame.
func framesToDocuments(reg *registry.Registry, inputs []string, batch bool, out io.Writer) error {
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	for _, path := range inputs {
		in, closeIn, err := openInput(path)
		if err != nil {
			return err
		}
		frames, err := readFrames(in, batch)
		closeIn()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		for i, f := range frames {
			m, err := reg.DecodeFrame(f)
			if m == nil {
				return fmt.Errorf("%s: frame %d: %w", path, i, err)
			}
			doc, err := maneuver.ExportDocument(m)
			if err != nil {
				return fmt.Errorf("%s: frame %d: %w", path, i, err)
			}
			if _, err := fmt.Fprintf(out, "%s\n", doc); err != nil {
				return err
			}
		}
	}
	return nil
}

func readFrames(r io.Reader, batch bool) ([]wire.Frame, error) {
	if batch {
		b, err := wire.ReadBatch(r)
		return b.Frames, err
	}
	var frames []wire.Frame
	fr := wire.NewFrameReader(bufio.NewReader(r))
	for {
		f, err := fr.Next()
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
