package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/ProyectAquanqa/panelsearch"
	"github.com/ProyectAquanqa/panelsearch/engine"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
)

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Read search terms from stdin, one per line, and print the list each time the term settles",
		Flags: []cli.Flag{
			entityFlag(),
			recordsFlag(),
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Maximum number of records to print per result; 0 prints all",
			},
		},
		Action: runWatch,
	}
}

type watchOutput struct {
	Term  string               `json:"term"`
	Stats panelsearch.Stats    `json:"stats"`
	Items []panelsearch.Record `json:"items"`
}

func runWatch(c *cli.Context) error {
	ctx := c.Context
	cfg, err := configFrom(c)
	if err != nil {
		return err
	}

	desc, err := lookupEntity(c)
	if err != nil {
		return err
	}

	records, err := readRecords(c.String("records"))
	if err != nil {
		return err
	}

	var (
		mu     sync.Mutex
		eng    *engine.Engine
		outErr error
	)
	limit := c.Int("limit")

	// Applied terms are printed as one JSON document per line.
	emit := func(term string) {
		out := watchOutput{
			Term:  term,
			Stats: eng.SearchStats(),
			Items: eng.FilteredData(),
		}
		if limit > 0 && limit < len(out.Items) {
			out.Items = out.Items[:limit]
		}

		mu.Lock()
		defer mu.Unlock()
		if outErr == nil {
			outErr = writeLine(os.Stdout, out)
		}
	}

	eng = engine.New(records, desc,
		engine.WithDebounceDelay(cfg.DebounceDelay()),
		engine.WithMinSearchLength(cfg.MinSearchLength),
		engine.WithLogger(slog.Default()),
		engine.WithOnDebounce(emit),
	)
	defer eng.Close()

	slog.DebugContext(ctx, "watching search terms", "entity", desc.Entity, "debounce", cfg.DebounceDelay())

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		eng.UpdateSearchTerm(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "failed to read search terms")
	}

	eng.Flush()

	mu.Lock()
	defer mu.Unlock()
	return outErr
}

func writeLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "failed to marshal output")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
