// Package algolia provides a lazy-loading Algolia client and a
// panelsearch.Searcher that evaluates panel filters against a remote index.
package algolia

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/ProyectAquanqa/panelsearch"
	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TimestampSuffix is appended to a date field name to form the numeric
// attribute date range filters run against.
const TimestampSuffix = "_timestamp"

// Secrets holds the Algolia application credentials.
type Secrets struct {
	// AppID is the Algolia application ID.
	AppID string `json:"app_id"`
	// WriteApiKey is the Algolia write API key.
	WriteApiKey string `json:"write_api_key"`
}

// FetchSecrets is a function type that retrieves Algolia credentials.
type FetchSecrets func() (Secrets, error)

// StaticSecrets returns a FetchSecrets function that provides static credentials.
func StaticSecrets(appID, writeApiKey string) FetchSecrets {
	return func() (Secrets, error) {
		return Secrets{
			AppID:       appID,
			WriteApiKey: writeApiKey,
		}, nil
	}
}

// EnvSecrets reads ALGOLIA_APP_ID and ALGOLIA_API_KEY.
func EnvSecrets() FetchSecrets {
	return func() (Secrets, error) {
		appID := os.Getenv("ALGOLIA_APP_ID")
		if appID == "" {
			return Secrets{}, errors.New("ALGOLIA_APP_ID environment variable is not set")
		}

		apiKey := os.Getenv("ALGOLIA_API_KEY")
		if apiKey == "" {
			return Secrets{}, errors.New("ALGOLIA_API_KEY environment variable is not set")
		}

		return Secrets{
			AppID:       appID,
			WriteApiKey: apiKey,
		}, nil
	}
}

// Client wraps the Algolia search client. The underlying client is
// created on first use.
type Client struct {
	getClient func() (*search.Client, error)
	tracer    trace.Tracer
}

// NewClient creates a client whose credentials are fetched lazily.
func NewClient(fetchSecrets FetchSecrets) *Client {
	getClient := sync.OnceValues(func() (*search.Client, error) {
		secrets, err := fetchSecrets()
		if err != nil {
			return nil, errors.Wrap(err, "failed to fetch secrets")
		}

		if secrets.AppID == "" {
			return nil, errors.New("AppID is empty")
		}

		if secrets.WriteApiKey == "" {
			return nil, errors.New("WriteApiKey is empty")
		}

		return search.NewClient(secrets.AppID, secrets.WriteApiKey), nil
	})

	return &Client{
		getClient: getClient,
		tracer:    otel.Tracer("panelsearch-algolia"),
	}
}

// SaveRecords indexes records of one entity. Each record gets an objectID
// taken from idField, and when dateField is set a numeric companion
// attribute so date ranges can be filtered remotely.
func (c *Client) SaveRecords(ctx context.Context, indexName, idField, dateField string, records []panelsearch.Record) error {
	if len(records) == 0 {
		return nil
	}

	objects, err := PrepareObjects(records, idField, dateField)
	if err != nil {
		return err
	}

	_, span := c.tracer.Start(ctx, "algolia.save_records",
		trace.WithAttributes(
			attribute.String("algolia.index_name", indexName),
			attribute.Int("algolia.object_count", len(objects)),
		),
	)
	defer span.End()

	client, err := c.getClient()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return err
	}

	index := client.InitIndex(indexName)

	if _, err := index.SaveObjects(objects); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprintf("failed to save %d objects to index %s", len(objects), indexName))
		return errors.Wrapf(err, "failed to save objects to Algolia index %s", indexName)
	}

	span.SetStatus(codes.Ok, fmt.Sprintf("saved %d objects", len(objects)))
	return nil
}

// DeleteRecords removes objects by ID.
func (c *Client) DeleteRecords(ctx context.Context, indexName string, objectIDs []string) error {
	if len(objectIDs) == 0 {
		return nil
	}

	_, span := c.tracer.Start(ctx, "algolia.delete_records",
		trace.WithAttributes(
			attribute.String("algolia.index_name", indexName),
			attribute.Int("algolia.object_count", len(objectIDs)),
		),
	)
	defer span.End()

	client, err := c.getClient()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return err
	}

	index := client.InitIndex(indexName)

	if _, err := index.DeleteObjects(objectIDs); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprintf("failed to delete %d objects from index %s", len(objectIDs), indexName))
		return errors.Wrapf(err, "failed to delete objects from Algolia index %s", indexName)
	}

	span.SetStatus(codes.Ok, fmt.Sprintf("deleted %d objects", len(objectIDs)))
	return nil
}

// PrepareObjects copies records into Algolia objects. Records are not
// modified. A record without a usable idField value is an error.
func PrepareObjects(records []panelsearch.Record, idField, dateField string) ([]map[string]interface{}, error) {
	if idField == "" {
		idField = "id"
	}

	objects := make([]map[string]interface{}, 0, len(records))
	for i, record := range records {
		id := objectID(record[idField])
		if id == "" {
			return nil, errors.Newf("record %d has no %q value", i, idField)
		}

		obj := make(map[string]interface{}, len(record)+2)
		for k, v := range record {
			obj[k] = v
		}
		obj["objectID"] = id

		if dateField != "" {
			if s, ok := record[dateField].(string); ok {
				if t, ok := panelsearch.ParseDate(s); ok {
					obj[dateField+TimestampSuffix] = t.Unix()
				}
			}
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

func objectID(v interface{}) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}
