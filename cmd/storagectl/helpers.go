package main

import (
	"fmt"

	"github.com/okklaus/storage3-in-go/pkg/config"
	"github.com/okklaus/storage3-in-go/pkg/db"
	"github.com/okklaus/storage3-in-go/pkg/policy"
	"github.com/okklaus/storage3-in-go/pkg/storage"
)

// loadConfig reads and validates the shared configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newStorageClient builds the API client from configuration.
func newStorageClient() (*storage.Client, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	client, err := storage.New(cfg.StorageEndpoint(), cfg.SupabaseKey)
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

// newPolicyApplier connects to the database named by DATABASE_URL (or the
// config file) and wraps it in a policy applier.
func newPolicyApplier() (*policy.Applier, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" && db.URL() == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	database, err := db.Connect(db.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, err
	}
	return policy.NewApplier(database), nil
}
