package main

import (
	"log/slog"

	"github.com/ProyectAquanqa/panelsearch/store"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
)

func snapshotsCommand() *cli.Command {
	return &cli.Command{
		Name:  "snapshots",
		Usage: "List or delete the saved filter snapshots of an entity",
		Flags: []cli.Flag{
			entityFlag(),
			&cli.StringSliceFlag{
				Name:  "delete",
				Usage: "Snapshot ID to delete; repeatable",
			},
		},
		Action: runSnapshots,
	}
}

func runSnapshots(c *cli.Context) error {
	ctx := c.Context

	desc, err := lookupEntity(c)
	if err != nil {
		return err
	}

	cfg, err := configFrom(c)
	if err != nil {
		return err
	}

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	for _, id := range c.StringSlice("delete") {
		if err := st.Delete(ctx, desc.Entity, id); err != nil {
			return errors.Wrapf(err, "failed to delete snapshot %s", id)
		}
		slog.InfoContext(ctx, "deleted snapshot", "entity", desc.Entity, "id", id)
	}

	entries, err := st.List(ctx, desc.Entity)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []store.Entry{}
	}
	return printJSON(entries)
}
