package cli

import (
	"fmt"

	configfile "github.com/civicsignal/billfeed/internal/adapters/driven/config/file"
	redisqueue "github.com/civicsignal/billfeed/internal/adapters/driven/queue/redis"
	"github.com/civicsignal/billfeed/internal/adapters/driven/storage/sqlite"
	"github.com/civicsignal/billfeed/internal/connectors/legiscan"
	"github.com/civicsignal/billfeed/internal/core/services"
	"github.com/civicsignal/billfeed/internal/logger"
)

// dataStore is kept so status can query counts directly.
var dataStore *sqlite.Store

// initConfig wires the config store if nothing injected one.
func initConfig() error {
	if configStore != nil {
		return nil
	}

	store, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	configStore = store
	return nil
}

// initStore wires the SQLite store if nothing injected one.
func initStore() error {
	if dataStore != nil {
		return nil
	}
	if err := initConfig(); err != nil {
		return err
	}

	settings := configfile.NewSettings(configStore)
	store, err := sqlite.NewStore(settings.DataDir())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	dataStore = store
	return nil
}

// initIngest wires the full ingestion pipeline if nothing injected it.
func initIngest() error {
	if ingestOrchestrator != nil {
		return nil
	}
	if err := initStore(); err != nil {
		return err
	}

	settings := configfile.NewSettings(configStore)

	client, err := legiscan.NewClient(legiscan.Options{
		APIKey:  settings.APIKey(),
		BaseURL: settings.BaseURL(),
	})
	if err != nil {
		return fmt.Errorf(
			"creating API client: %w (set %s or run: billfeed config set %s <key>)",
			err, configfile.EnvAPIKey, configfile.KeyAPIKey,
		)
	}

	var queueOpts []redisqueue.Option
	if name := settings.QueueName(); name != "" {
		queueOpts = append(queueOpts, redisqueue.WithQueue(name))
	}
	notifier, err := redisqueue.Connect(settings.RedisURL(), queueOpts...)
	if err != nil {
		return fmt.Errorf("connecting to queue: %w", err)
	}
	if !notifier.Enabled() {
		logger.Debug("no redis url configured, queue notifications disabled")
	}

	ingestOrchestrator = services.NewIngestionOrchestrator(
		client,
		dataStore.BillStore(),
		notifier,
		settings.Query(),
	)
	return nil
}
