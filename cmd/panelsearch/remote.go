package main

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ProyectAquanqa/panelsearch"
	"github.com/ProyectAquanqa/panelsearch/algolia"
	"github.com/ProyectAquanqa/panelsearch/engine"
	"github.com/ProyectAquanqa/panelsearch/filterconfig"
	"github.com/ProyectAquanqa/panelsearch/internal/config"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
)

func algoliaFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "index",
			Aliases: []string{"i"},
			Usage:   "Algolia index name; defaults to algolia.index from the config",
			EnvVars: []string{"ALGOLIA_INDEX"},
		},
		&cli.StringFlag{
			Name:    "algolia-secret-arn",
			Usage:   "ARN of AWS Secrets Manager secret containing Algolia credentials",
			EnvVars: []string{"ALGOLIA_SECRET_ARN"},
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Timeout for the Algolia requests",
			Value: defaultTimeout,
		},
	}
}

func indexCommand() *cli.Command {
	flags := []cli.Flag{entityFlag(), recordsFlag()}
	flags = append(flags, algoliaFlags()...)
	flags = append(flags, &cli.StringFlag{
		Name:  "id-field",
		Usage: "Record field used as the Algolia objectID",
		Value: "id",
	})

	return &cli.Command{
		Name:   "index",
		Usage:  "Push a record dump to an Algolia index",
		Flags:  flags,
		Action: runIndex,
	}
}

func remoteCommand() *cli.Command {
	flags := []cli.Flag{entityFlag()}
	flags = append(flags, algoliaFlags()...)
	flags = append(flags, stateFlags()...)
	flags = append(flags,
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"l"},
			Usage:   "Maximum number of results to return",
			Value:   algolia.DefaultLimit,
		},
		&cli.IntFlag{
			Name:    "offset",
			Aliases: []string{"o"},
			Usage:   "Number of results to skip before returning hits",
		},
	)

	return &cli.Command{
		Name:   "remote",
		Usage:  "Run the list filters against an Algolia index",
		Flags:  flags,
		Action: runRemote,
	}
}

// algoliaClient builds a client from the flags, falling back to the config.
func algoliaClient(c *cli.Context, cfg *config.Config) (*algolia.Client, string, error) {
	ctx := c.Context

	indexName := strings.TrimSpace(c.String("index"))
	if indexName == "" {
		if !cfg.HasAlgolia() {
			return nil, "", errors.New("no Algolia index: pass --index or set algolia.index")
		}
		indexName = cfg.Algolia.Index
	}

	secretArn := strings.TrimSpace(c.String("algolia-secret-arn"))
	if secretArn == "" {
		secretArn = cfg.Algolia.SecretARN
	}

	var fetchSecrets algolia.FetchSecrets
	if secretArn != "" {
		slog.InfoContext(ctx, "using AWS Secrets Manager for Algolia credentials", "secret_arn", secretArn)
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, "", errors.Wrap(err, "failed to load AWS config")
		}
		fetchSecrets = algolia.AWSSecretsFromARN(ctx, secretsmanager.NewFromConfig(awsCfg), secretArn)
	} else {
		fetchSecrets = algolia.EnvSecrets()
	}

	return algolia.NewClient(fetchSecrets), indexName, nil
}

func timeoutFrom(c *cli.Context) (context.Context, context.CancelFunc) {
	timeout := c.Duration("timeout")
	if timeout <= 0 {
		slog.WarnContext(c.Context, "timeout must be positive; using default", "timeout", timeout, "default", defaultTimeout)
		timeout = defaultTimeout
	}
	return context.WithTimeout(c.Context, timeout)
}

func runIndex(c *cli.Context) error {
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

	client, indexName, err := algoliaClient(c, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := timeoutFrom(c)
	defer cancel()

	slog.InfoContext(ctx, "indexing records",
		"entity", desc.Entity,
		"index", indexName,
		"count", len(records),
	)

	if err := client.SaveRecords(ctx, indexName, c.String("id-field"), desc.DateRangeField(), records); err != nil {
		return err
	}
	return printJSON(map[string]any{"index": indexName, "indexed": len(records)})
}

func runRemote(c *cli.Context) error {
	cfg, err := configFrom(c)
	if err != nil {
		return err
	}

	desc, err := lookupEntity(c)
	if err != nil {
		return err
	}

	filters, err := parseFilters(c.StringSlice("filter"))
	if err != nil {
		return errors.Wrap(err, "invalid filter")
	}

	client, indexName, err := algoliaClient(c, cfg)
	if err != nil {
		return err
	}

	// An engine without records turns the flags into the list's expressions.
	eng := engine.New(nil, desc,
		engine.WithDebounceDelay(0),
		engine.WithMinSearchLength(cfg.MinSearchLength),
	)
	defer eng.Close()
	applyState(c, eng, filters)

	exprs := eng.FilterExpressions()
	opts := remoteOptions(desc, cfg.MinSearchLength, c.Int("limit"), c.Int("offset"), exprs)

	ctx, cancel := timeoutFrom(c)
	defer cancel()

	searcher := algolia.NewSearcher(client, indexName).WithLogger(slog.Default())

	slog.InfoContext(ctx, "executing remote query",
		"entity", desc.Entity,
		"index", indexName,
		"query", eng.DebouncedTerm(),
		"filter_count", len(exprs),
	)

	results, err := searcher.Search(ctx, eng.DebouncedTerm(), opts...)
	if err != nil {
		return errors.Wrap(err, "search failed")
	}

	return printJSON(struct {
		Total      int64                `json:"total"`
		Took       int64                `json:"took_ms"`
		Query      string               `json:"query"`
		Stats      panelsearch.Stats    `json:"stats"`
		NextOffset *int                 `json:"next_offset,omitempty"`
		Items      []panelsearch.Record `json:"items"`
	}{
		Total:      results.Total,
		Took:       results.Took,
		Query:      results.Query,
		Stats:      results.Stats,
		NextOffset: results.NextOffset,
		Items:      results.Items,
	})
}

func remoteOptions(desc filterconfig.Descriptor, minLength, limit, offset int, exprs []panelsearch.Expression) []panelsearch.SearchOption {
	if limit <= 0 {
		limit = algolia.DefaultLimit
	}
	opts := []panelsearch.SearchOption{
		panelsearch.WithFields(desc.SearchFields...),
		panelsearch.WithMinSearchLength(minLength),
		panelsearch.WithLimit(limit),
		panelsearch.WithOffset(max(offset, 0)),
	}
	for _, expr := range exprs {
		opts = append(opts, expr)
	}
	return opts
}
