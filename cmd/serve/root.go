package serve

import (
	"fmt"
	"strings"

	"github.com/hrishi045/segstore/api/common"
	"github.com/hrishi045/segstore/api/server"
	"github.com/hrishi045/segstore/cmd/util"
	"github.com/hrishi045/segstore/lib/store"
	"github.com/hrishi045/segstore/lib/store/memstore"
	"github.com/hrishi045/segstore/lib/store/sqlstore"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the segstore server",
		Long:    `Start the segstore server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is SEGSTORE_<flag> (e.g. SEGSTORE_DB_PATH=/var/lib/segstore.db)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", util.WrapString("The address on which the API will listen (e.g. localhost:8080)"))

	key = "store"
	ServeCmd.PersistentFlags().String(key, "sqlite", util.WrapString("Storage backend to use. One of: sqlite (durable), memory (ephemeral, for development)"))

	key = "db-path"
	ServeCmd.PersistentFlags().String(key, "segstore.db", util.WrapString("Path of the SQLite database file (ignored for the memory backend)"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 30, util.WrapString("Per-request timeout in seconds (0 disables the deadline). A timed-out write may still have been committed by the backend"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", util.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// parse the storage backend
	switch viper.GetString("store") {
	case "sqlite":
		serveCmdConfig.Backend = common.BackendSQLite
	case "memory":
		serveCmdConfig.Backend = common.BackendMemory
	default:
		return fmt.Errorf("invalid store backend %s (expected one of: sqlite, memory)", viper.GetString("store"))
	}

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.DBPath = viper.GetString("db-path")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	return nil
}

// run starts the segstore server
func run(_ *cobra.Command, _ []string) error {
	// Initialize the logger
	logger, err := common.NewLogger(serveCmdConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("starting segstore server")
	logger.Info(serveCmdConfig.String())

	// Open the storage backend. The handle is opened once here and
	// handed to the server, which closes it at shutdown.
	var st store.ISegmentedStore
	switch serveCmdConfig.Backend {
	case common.BackendSQLite:
		if st, err = sqlstore.New(serveCmdConfig.DBPath); err != nil {
			return fmt.Errorf("failed to open storage backend: %w", err)
		}
		logger.Info("opened sqlite store", zap.String("path", serveCmdConfig.DBPath))
	case common.BackendMemory:
		st = memstore.New()
		logger.Warn("using ephemeral in-memory store, data will not survive a restart")
	default:
		return fmt.Errorf("invalid store backend: %s", serveCmdConfig.Backend)
	}

	return server.New(*serveCmdConfig, st, logger).ListenAndServe()
}

// initConfig reads in the serveCmdConfig file and ENV variables if set.
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("segstore")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}
