package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/cockroachdb/errors"
	"github.com/segmentio/ksuid"
	"github.com/urfave/cli/v2"
)

// Almuerzo is one generated lunch menu, shaped like the admin API list payload.
type Almuerzo struct {
	ID         string `json:"id" dynamodbav:"id"`
	Fecha      string `json:"fecha" dynamodbav:"fecha"`
	Entrada    string `json:"entrada" dynamodbav:"entrada"`
	PlatoFondo string `json:"plato_fondo" dynamodbav:"plato_fondo"`
	Refresco   string `json:"refresco" dynamodbav:"refresco"`
	Postre     string `json:"postre,omitempty" dynamodbav:"postre,omitempty"`
	Dieta      string `json:"dieta,omitempty" dynamodbav:"dieta,omitempty"`
	Active     bool   `json:"active" dynamodbav:"active"`
}

type DynamoDBRecord struct {
	PK     string   `dynamodbav:"pk"`
	SK     string   `dynamodbav:"sk"`
	Object Almuerzo `dynamodbav:"object"`
}

var (
	entradas = []string{
		"Sopa de verduras", "Sopa criolla", "Causa limeña", "Ensalada César",
		"Papa a la huancaína", "Ocopa", "Tequeños", "Crema de zapallo",
	}
	platos = []string{
		"Ají de gallina", "Lomo saltado", "Arroz con pollo", "Seco de res",
		"Tallarines verdes", "Pescado a lo macho", "Ceviche", "Estofado de pollo",
	}
	refrescos = []string{"Chicha morada", "Limonada", "Maracuyá", "Emoliente", "Agua de piña"}
	postres   = []string{"Mazamorra morada", "Arroz con leche", "Gelatina", "Flan", ""}
	dietas    = []string{"Sin sal", "Hipocalórica", "Vegetariana", "Sin gluten"}
)

func pick(values []string) string {
	return values[rand.Intn(len(values))]
}

func generateAlmuerzo(day time.Time) Almuerzo {
	a := Almuerzo{
		ID:         ksuid.New().String(),
		Fecha:      day.Format("2006-01-02"),
		Entrada:    pick(entradas),
		PlatoFondo: pick(platos),
		Refresco:   pick(refrescos),
		Postre:     pick(postres),
		Active:     rand.Intn(5) != 0, // about 80% active
	}
	if rand.Intn(3) == 0 {
		a.Dieta = pick(dietas)
	}
	return a
}

func insertAlmuerzo(ctx context.Context, client *dynamodb.Client, tableName string, a Almuerzo) error {
	record := DynamoDBRecord{
		PK:     "almuerzos",
		SK:     a.ID,
		Object: a,
	}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return errors.Wrap(err, "failed to marshal almuerzo record")
	}

	_, err = client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      item,
	})
	if err != nil {
		return errors.Wrap(err, "failed to put item in DynamoDB")
	}

	slog.InfoContext(ctx, "Successfully inserted almuerzo",
		"id", a.ID,
		"fecha", a.Fecha,
		"plato_fondo", a.PlatoFondo,
	)

	return nil
}

func runAction(c *cli.Context) error {
	ctx := c.Context
	tableName := c.String("table-name")
	count := c.Int("count")

	start, err := time.Parse("2006-01-02", c.String("from"))
	if err != nil {
		return errors.Wrap(err, "invalid --from date")
	}

	slog.InfoContext(ctx, "Starting almuerzo generator",
		"table", tableName,
		"count", count,
		"from", start.Format("2006-01-02"),
	)

	almuerzos := make([]Almuerzo, 0, count)
	for i := 0; i < count; i++ {
		almuerzos = append(almuerzos, generateAlmuerzo(start.AddDate(0, 0, i)))
	}

	if tableName != "" {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to load AWS config")
		}

		client := dynamodb.NewFromConfig(cfg)
		for i, a := range almuerzos {
			if err := insertAlmuerzo(ctx, client, tableName, a); err != nil {
				return errors.Wrapf(err, "failed to insert almuerzo %d", i+1)
			}
		}
	}

	out := os.Stdout
	if path := c.String("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "failed to create %s", path)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(almuerzos); err != nil {
		return errors.Wrap(err, "failed to write almuerzos")
	}

	slog.InfoContext(ctx, "Successfully generated all almuerzos", "count", count)
	return nil
}

func main() {
	// Configure JSON logging for AWS environments
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}

	app := &cli.App{
		Name:  "generator",
		Usage: "Generate random almuerzo records for trying out panelsearch",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "table-name",
				Aliases: []string{"t"},
				Usage:   "DynamoDB table to also insert the records into",
				EnvVars: []string{"TABLE_NAME"},
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "File to write the JSON list to; stdout by default",
			},
			&cli.StringFlag{
				Name:  "from",
				Usage: "Date of the first menu (YYYY-MM-DD)",
				Value: time.Now().Format("2006-01-02"),
			},
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"c"},
				Usage:   "Number of almuerzos to generate, one per day",
				Value:   20,
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}
