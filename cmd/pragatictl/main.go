// Command pragatictl administers accounts and indexes in the Mongo store.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"pragatipath-be/config"
	"pragatipath-be/models"
	"pragatipath-be/store"
)

func main() {
	root := newRootCmd(openMongo)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func openMongo(ctx context.Context) (*session, error) {
	cfg, err := config.Read()
	if err != nil {
		return nil, err
	}
	if cfg.Database.URI == "" {
		return nil, errors.New("MONGODB_URI is required")
	}

	db, err := config.ConnectDB(ctx, cfg.Database.URI, cfg.Database.Name)
	if err != nil {
		return nil, err
	}
	return &session{
		Store:         store.NewMongo(db),
		EnsureIndexes: func(ctx context.Context) error { return models.EnsureIndexes(ctx, db) },
		Close:         func() error { return db.Client().Disconnect(context.Background()) },
	}, nil
}
