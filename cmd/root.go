// Package cmd defines and implements the CLI commands for the harvester
// executable.
package cmd

import (
	"context"
	"fmt"
	"os"

	gcstorage "cloud.google.com/go/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/listing-harvester/internal/adapters"
	"github.com/JakeFAU/listing-harvester/internal/config"
	"github.com/JakeFAU/listing-harvester/internal/logging"
	"github.com/JakeFAU/listing-harvester/internal/notify"
	"github.com/JakeFAU/listing-harvester/internal/search"
	"github.com/JakeFAU/listing-harvester/internal/snapshot"
	"github.com/JakeFAU/listing-harvester/internal/store"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvester",
		Short: "Multi-source real estate listing harvester.",
		Long: `harvester searches real estate listing sites, normalizes what it
finds into a single schema, and stores every listing under a
location-derived identity so repeat runs refresh rather than duplicate.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")

	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// environment bundles everything a command needs at run time.
type environment struct {
	cfg      config.Config
	logger   *zap.Logger
	store    store.Store
	notifier *notify.PubSubNotifier
}

func setupEnvironment(ctx context.Context) (*environment, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, err
	}

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	env := &environment{cfg: cfg, logger: logger, store: st}
	if cfg.PubSub.TopicName != "" {
		notifier, err := notify.NewPubSub(ctx, cfg.PubSub.ProjectID, cfg.PubSub.TopicName, logger)
		if err != nil {
			st.Close()
			return nil, err
		}
		env.notifier = notifier
	}
	return env, nil
}

func (e *environment) close() {
	if e.notifier != nil {
		e.notifier.Close()
	}
	e.store.Close()
	_ = e.logger.Sync()
}

func (e *environment) searchService(ctx context.Context) (*search.Service, error) {
	factory, err := e.adapterFactory(ctx)
	if err != nil {
		return nil, err
	}
	var notifier search.Notifier
	if e.notifier != nil {
		notifier = e.notifier
	}
	return search.NewService(e.store, factory, notifier, e.logger), nil
}

func (e *environment) adapterFactory(ctx context.Context) (search.Factory, error) {
	sink, err := e.snapshotSink(ctx)
	if err != nil {
		return nil, err
	}

	var wrap func(adapters.Transport) adapters.Transport
	if sink != nil {
		prefix := e.cfg.Snapshot.Prefix
		wrap = func(t adapters.Transport) adapters.Transport {
			return snapshot.Wrap(t, sink, prefix, e.logger)
		}
	}
	return search.NewFactory(e.cfg.TransportSettings(), e.logger, wrap), nil
}

func (e *environment) snapshotSink(ctx context.Context) (snapshot.Sink, error) {
	switch {
	case e.cfg.Snapshot.GCSBucket != "":
		client, err := gcstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("init gcs client: %w", err)
		}
		sink, err := snapshot.NewGCSSink(client, e.cfg.Snapshot.GCSBucket)
		if err != nil {
			return nil, fmt.Errorf("init gcs snapshot sink: %w", err)
		}
		return sink, nil
	case e.cfg.Snapshot.Dir != "":
		sink, err := snapshot.NewFSSink(e.cfg.Snapshot.Dir)
		if err != nil {
			return nil, fmt.Errorf("init snapshot sink: %w", err)
		}
		return sink, nil
	default:
		return nil, nil
	}
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (store.Store, error) {
	if cfg.DB.DSN == "" {
		logger.Info("no database configured, using in-memory store")
		return store.NewMemoryStore(), nil
	}
	st, err := store.NewPostgresStore(ctx, cfg.StoreSettings())
	if err != nil {
		return nil, fmt.Errorf("open postgres store: %w", err)
	}
	return st, nil
}
