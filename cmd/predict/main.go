// Command predict sends property records to a running price service and
// prints the predicted prices.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/immoeliza/pricer/internal/domain/property"
	"github.com/immoeliza/pricer/pkg/client"
	"gopkg.in/yaml.v3"
)

const (
	defaultURL     = "http://127.0.0.1:8000"
	defaultTimeout = 5 * time.Second
)

var errNoRecords = errors.New("no records in input")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		os.Stderr.WriteString("predict: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	var (
		baseURL  = fs.String("url", defaultURL, "Base URL of the price service")
		file     = fs.String("file", "", "YAML or JSON file with one record or a list of records (default: stdin)")
		timeout  = fs.Duration("timeout", defaultTimeout, "HTTP request timeout")
		template = fs.Bool("template", false, "Print a sample record as YAML and exit")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *template {
		return writeTemplate(stdout)
	}

	in := stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	records, err := readRecords(in)
	if err != nil {
		return err
	}

	c, err := client.New(*baseURL, client.WithTimeout(*timeout))
	if err != nil {
		return err
	}

	for i, rec := range records {
		price, err := c.Predict(ctx, rec)
		if err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
		if _, err := fmt.Fprintln(stdout, strconv.FormatFloat(price, 'f', -1, 64)); err != nil {
			return err
		}
	}
	return nil
}

// readRecords decodes one mapping or a sequence of mappings. JSON input is
// accepted because it is valid YAML.
func readRecords(r io.Reader) ([]*property.Features, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}

	var items []any
	switch v := doc.(type) {
	case nil:
		return nil, errNoRecords
	case []any:
		items = v
	default:
		items = []any{v}
	}
	if len(items) == 0 {
		return nil, errNoRecords
	}

	out := make([]*property.Features, 0, len(items))
	for i, item := range items {
		if _, ok := item.(map[string]any); !ok {
			return nil, fmt.Errorf("record %d: expected a mapping, got %T", i+1, item)
		}
		b, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		var f property.Features
		if err := json.Unmarshal(b, &f); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		out = append(out, &f)
	}
	return out, nil
}

func writeTemplate(w io.Writer) error {
	b, err := json.Marshal(property.Sample())
	if err != nil {
		return err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return err
	}
	return enc.Close()
}
