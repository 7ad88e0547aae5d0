package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ProyectAquanqa/panelsearch"
	"github.com/ProyectAquanqa/panelsearch/engine"
	"github.com/ProyectAquanqa/panelsearch/inmemory"
	"github.com/ProyectAquanqa/panelsearch/internal/config"
	"github.com/ProyectAquanqa/panelsearch/store"
	"github.com/ProyectAquanqa/panelsearch/store/dynamo"
	"github.com/ProyectAquanqa/panelsearch/store/sqlite"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
)

func entityFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "entity",
		Aliases:  []string{"e"},
		Usage:    "Entity list, e.g. almuerzos or usuarios",
		Required: true,
	}
}

func recordsFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "records",
		Aliases:  []string{"r"},
		Usage:    "JSON file with the list payload; - reads stdin",
		Required: true,
	}
}

// stateFlags select the search term and filters shared by filter and remote.
func stateFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "query",
			Aliases: []string{"q"},
			Usage:   "Search term; positional arg is a fallback",
		},
		&cli.StringSliceFlag{
			Name:  "filter",
			Usage: "Filter in key=value format, e.g. selectedStatus=true; repeatable",
		},
		&cli.StringFlag{
			Name:  "start",
			Usage: "Date range start (YYYY-MM-DD)",
		},
		&cli.StringFlag{
			Name:  "end",
			Usage: "Date range end (YYYY-MM-DD), inclusive",
		},
	}
}

func filterCommand() *cli.Command {
	flags := []cli.Flag{entityFlag(), recordsFlag()}
	flags = append(flags, stateFlags()...)
	flags = append(flags,
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"l"},
			Usage:   "Maximum number of records to print; 0 prints all",
		},
		&cli.BoolFlag{
			Name:  "highlight",
			Usage: "Include the matching fields of every printed record",
		},
		&cli.IntFlag{
			Name:  "suggest",
			Usage: "Number of search suggestions to include",
		},
		&cli.BoolFlag{
			Name:  "restore",
			Usage: "Start from the latest saved snapshot of the entity",
		},
		&cli.BoolFlag{
			Name:  "save",
			Usage: "Save the resulting snapshot",
		},
	)

	return &cli.Command{
		Name:   "filter",
		Usage:  "Filter a record dump the way the list view does",
		Flags:  flags,
		Action: runFilter,
	}
}

type filterOutput struct {
	Entity      string                     `json:"entity"`
	Snapshot    panelsearch.Snapshot       `json:"snapshot"`
	Stats       panelsearch.Stats          `json:"stats"`
	Items       []panelsearch.Record       `json:"items"`
	Matches     [][]panelsearch.FieldMatch `json:"matches,omitempty"`
	Suggestions []string                   `json:"suggestions,omitempty"`
	SavedID     string                     `json:"saved_id,omitempty"`
}

func runFilter(c *cli.Context) error {
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

	filters, err := parseFilters(c.StringSlice("filter"))
	if err != nil {
		return errors.Wrap(err, "invalid filter")
	}

	opts := []engine.Option{
		engine.WithDebounceDelay(0),
		engine.WithMinSearchLength(cfg.MinSearchLength),
		engine.WithLogger(slog.Default()),
	}

	var (
		st    store.Store
		saver *store.Autosaver
	)
	if c.Bool("restore") || c.Bool("save") {
		s, closeStore, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()
		st = s
	}
	if c.Bool("save") {
		saver = store.NewAutosaver(st, desc.Entity, 0, slog.Default())
		opts = append(opts, engine.WithOnChange(saver.Schedule))
	}

	eng := engine.New(records, desc, opts...)
	defer eng.Close()

	if c.Bool("restore") {
		entry, err := st.Latest(ctx, desc.Entity)
		switch {
		case errors.Is(err, panelsearch.ErrNotFound):
			slog.InfoContext(ctx, "no saved snapshot to restore", "entity", desc.Entity)
		case err != nil:
			return errors.Wrap(err, "failed to restore snapshot")
		default:
			slog.InfoContext(ctx, "restoring snapshot", "id", entry.ID, "created_at", entry.CreatedAt)
			eng.ImportFilters(entry.Snapshot)
		}
	}

	applyState(c, eng, filters)

	data := eng.FilteredData()
	out := filterOutput{
		Entity:   desc.Entity,
		Snapshot: eng.ExportFilters(),
		Stats:    eng.SearchStats(),
		Items:    data,
	}
	if limit := c.Int("limit"); limit > 0 && limit < len(out.Items) {
		out.Items = out.Items[:limit]
	}
	if c.Bool("highlight") {
		out.Matches = make([][]panelsearch.FieldMatch, len(out.Items))
		for i, record := range out.Items {
			out.Matches[i] = eng.GetSearchMatches(record)
		}
	}
	if n := c.Int("suggest"); n > 0 {
		out.Suggestions = eng.GetSearchSuggestions(n)
	}

	if saver != nil {
		saver.Schedule(out.Snapshot)
		if err := saver.Close(ctx); err != nil {
			return errors.Wrap(err, "failed to save snapshot")
		}
		out.SavedID = saver.LastID()
	}

	slog.DebugContext(ctx, "filtered records",
		"entity", desc.Entity,
		"total", out.Stats.Total,
		"filtered", out.Stats.Filtered,
	)
	return printJSON(out)
}

// applyState pushes the command line term and filters into eng.
func applyState(c *cli.Context, eng *engine.Engine, filters map[string]string) {
	for key, value := range filters {
		if key == panelsearch.KeyDateRange {
			continue
		}
		eng.UpdateFilter(key, value)
	}

	if c.IsSet("start") || c.IsSet("end") {
		current := eng.Filters().DateRange
		start, end := current.Start, current.End
		if c.IsSet("start") {
			start = c.String("start")
		}
		if c.IsSet("end") {
			end = c.String("end")
		}
		eng.SetDateRange(start, end)
	}

	query := strings.TrimSpace(c.String("query"))
	if query == "" && c.NArg() > 0 {
		query = strings.TrimSpace(c.Args().First())
	}
	if query != "" {
		eng.UpdateSearchTerm(query)
	}
	eng.Flush()
}

// parseFilters reads key=value pairs. A later pair overrides an earlier
// one for the same key. An empty value clears the key.
func parseFilters(raw []string) (map[string]string, error) {
	filters := make(map[string]string, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, errors.New("filter cannot be empty")
		}

		key, value, ok := strings.Cut(item, "=")
		if !ok {
			return nil, errors.Newf("filter must be in key=value format: %q", item)
		}

		key = strings.TrimSpace(key)
		if key == "" {
			return nil, errors.Newf("filter key must be non-empty: %q", item)
		}
		if key == panelsearch.KeyDateRange {
			return nil, errors.Newf("use --start and --end for %s", panelsearch.KeyDateRange)
		}
		filters[key] = strings.TrimSpace(value)
	}
	return filters, nil
}

func readRecords(path string) ([]panelsearch.Record, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read records from %s", path)
	}
	return inmemory.DecodeRecords(data)
}

// openStore opens the snapshot store selected by the config.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func() error, error) {
	switch cfg.Store.Driver {
	case config.DriverDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to load AWS config")
		}
		s := dynamo.New(dynamodb.NewFromConfig(awsCfg), cfg.Store.Table)
		return s, func() error { return nil }, nil
	default:
		s, err := sqlite.Open(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
}
