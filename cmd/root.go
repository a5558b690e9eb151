package cmd

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"warehouse-sync/internal/dialect"
	"warehouse-sync/internal/engine"
	"warehouse-sync/internal/schema"
)

var (
	cfgFile string
	cfg     *Config
	logger  zerolog.Logger

	SourceDB    *sql.DB
	WarehouseDB *sql.DB
	SourceD     dialect.Dialect
	WarehouseD  dialect.Dialect
)

var RootCmd = &cobra.Command{
	Use:   "warehouse-sync",
	Short: "Incremental replication from the operational store to the warehouse",
	Long: `warehouse-sync mirrors the operational tables into an analytical
warehouse. Each pass extracts the rows past the per-table watermark, loads
them append-only or via staged merge depending on the table, and advances
the watermark only after the load is durable.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()

		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return err
		}

		// The table inventory is static config; no store needed.
		if cmd.Name() == "tables" {
			return nil
		}

		SourceDB, SourceD, WarehouseDB, WarehouseD, err = openStores(cfg)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if SourceDB != nil {
			SourceDB.Close()
		}
		if WarehouseDB != nil {
			WarehouseDB.Close()
		}
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// openStores opens the operational store and the warehouse. On a warehouse
// failure the already-opened source handle is closed; cobra skips
// PersistentPostRun when PersistentPreRunE errors, so nobody else would.
func openStores(c *Config) (*sql.DB, dialect.Dialect, *sql.DB, dialect.Dialect, error) {
	source, sd, err := openDB(c.Source)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("source: %w", err)
	}
	warehouse, wd, err := openDB(c.Warehouse)
	if err != nil {
		source.Close()
		return nil, nil, nil, nil, fmt.Errorf("warehouse: %w", err)
	}
	return source, sd, warehouse, wd, nil
}

func openDB(dc DBConfig) (*sql.DB, dialect.Dialect, error) {
	d, err := dialect.GetDialect(dc.Driver)
	if err != nil {
		return nil, nil, err
	}
	db, err := sql.Open(driverName(dc.Driver), dc.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	if dc.Driver == "sqlite3" || dc.Driver == "sqlite" {
		// A single connection keeps in-memory databases coherent and
		// serializes writers on file databases.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	return db, d, nil
}

// driverName maps config driver aliases onto registered database/sql drivers.
func driverName(driver string) string {
	switch driver {
	case "sqlite":
		return "sqlite3"
	case "mssql":
		return "sqlserver"
	default:
		return driver
	}
}

// newOrchestrator wires the sync pipeline from the opened stores. Shared by
// the one-shot, serve, and seed commands.
func newOrchestrator(metrics *engine.Metrics) *engine.Orchestrator {
	reg := schema.Default()
	tracker := engine.NewTracker(SourceDB, SourceD, logger)
	extractor := engine.NewExtractor(SourceDB, SourceD, logger)
	provisioner := engine.NewProvisioner(WarehouseDB, WarehouseD, cfg.Warehouse.Schema, logger)
	loader := engine.NewLoader(WarehouseDB, WarehouseD, cfg.Warehouse.Schema, logger)
	return engine.NewOrchestrator(reg, tracker, extractor, provisioner, loader, metrics, engine.OrchestratorConfig{
		Workers:     cfg.Sync.Workers,
		PassTimeout: cfg.Sync.PassTimeout,
	}, logger)
}

func setupLogging() {
	level, err := zerolog.ParseLevel(viper.GetString("log.level"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./warehouse-sync.yaml)")
	RootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	viper.BindPFlag("log.level", RootCmd.PersistentFlags().Lookup("log-level"))

	viper.SetDefault("sync.interval", "5m")
	viper.SetDefault("sync.workers", 4)
	viper.SetDefault("admin.listen", ":8080")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if ex, err := os.Executable(); err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("warehouse-sync")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
