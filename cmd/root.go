package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CharlesDeJager/dprof/internal/config"
	"github.com/CharlesDeJager/dprof/internal/source"
	"github.com/CharlesDeJager/dprof/internal/source/database"
	_ "github.com/CharlesDeJager/dprof/internal/source/database/mysql"
	_ "github.com/CharlesDeJager/dprof/internal/source/database/postgres"
	_ "github.com/CharlesDeJager/dprof/internal/source/database/sqlserver"
	"github.com/CharlesDeJager/dprof/internal/source/file"
)

var (
	cfg    *config.Config
	logger *zap.Logger

	verbose bool

	// Input selection: either a file or a database connection.
	filePath string

	// Database connection flags
	dialect                        string
	host                           string
	port                           int
	username                       string
	password                       string
	dbName                         string
	sslMode                        string
	cloudSQLInstanceConnectionName string
	cloudSQLUsePrivateIP           bool

	// Profiling knobs
	concurrency int
	rowCap      int
)

var rootCmd = &cobra.Command{
	Use:   "dprof",
	Short: "A tool to profile tabular data quality",
	Long: `dprof is a CLI tool that profiles tables from relational databases or
CSV/JSON files, computing per-column statistics, semantic types, value
patterns, and quality scores.`,
	PersistentPreRunE: initFlagsAndConfig,
	SilenceUsage:      true,
}

// initFlagsAndConfig loads environment configuration and overlays any flag
// the user set on the command line.
func initFlagsAndConfig(cmd *cobra.Command, args []string) error {
	var err error
	logger, err = newLogger(verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg = config.Load()

	flags := cmd.Flags()
	if flags.Changed("dialect") {
		cfg.Database.Dialect = dialect
	}
	if flags.Changed("host") {
		cfg.Database.Host = host
	}
	if flags.Changed("port") {
		cfg.Database.Port = port
	}
	if flags.Changed("username") {
		cfg.Database.User = username
	}
	if flags.Changed("password") {
		cfg.Database.Password = password
	}
	if flags.Changed("database") {
		cfg.Database.DBName = dbName
	}
	if flags.Changed("sslmode") {
		cfg.Database.SSLMode = sslMode
	}
	if flags.Changed("cloudsql-instance-connection-name") {
		cfg.Database.CloudSQLInstanceConnectionName = cloudSQLInstanceConnectionName
	}
	if flags.Changed("cloudsql-use-private-ip") {
		cfg.Database.UsePrivateIP = cloudSQLUsePrivateIP
	}
	if flags.Changed("concurrency") {
		cfg.MaxConcurrency = concurrency
	}
	if flags.Changed("row-cap") {
		cfg.DefaultRowCap = rowCap
	}

	return cfg.Validate()
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	return zcfg.Build()
}

func validateDialect(dialect string) error {
	supportedDialects := []string{"postgres", "cloudsqlpostgres", "mysql", "cloudsqlmysql", "sqlserver", "cloudsqlsqlserver"}
	for _, supported := range supportedDialects {
		if dialect == supported {
			return nil
		}
	}
	return fmt.Errorf("unsupported dialect: %s (only %s are supported)", dialect, strings.Join(supportedDialects, ", "))
}

// setupSource opens the selected data source: the file named by --file when
// set, otherwise a database connection from the configured dialect.
func setupSource() (source.Source, error) {
	if filePath != "" {
		return file.New(filePath, logger)
	}
	if err := validateDialect(cfg.Database.Dialect); err != nil {
		return nil, err
	}
	src, err := database.New(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return src, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&filePath, "file", "", "Profile a CSV or JSON file instead of a database")

	// Database connection flags
	rootCmd.PersistentFlags().StringVar(&dialect, "dialect", "", fmt.Sprintf("Database dialect (%s)", strings.Join([]string{"postgres", "mysql", "sqlserver", "cloudsqlpostgres", "cloudsqlmysql", "cloudsqlsqlserver"}, ", ")))
	rootCmd.PersistentFlags().StringVar(&host, "host", "", "Database host")
	rootCmd.PersistentFlags().IntVar(&port, "port", 0, "Database port")
	rootCmd.PersistentFlags().StringVar(&username, "username", "", "Database username")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "Database password")
	rootCmd.PersistentFlags().StringVar(&dbName, "database", "", "Database name")
	rootCmd.PersistentFlags().StringVar(&sslMode, "sslmode", "", "Postgres SSL mode (disable, require, verify-full, ...)")
	rootCmd.PersistentFlags().StringVar(&cloudSQLInstanceConnectionName, "cloudsql-instance-connection-name", "", "Cloud SQL instance connection name (for Cloud SQL dialects)")
	rootCmd.PersistentFlags().BoolVar(&cloudSQLUsePrivateIP, "cloudsql-use-private-ip", false, "Use private IP for Cloud SQL connection (Cloud SQL)")

	// Profiling knobs
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "Maximum concurrent tables/columns (default from DPROF_MAX_CONCURRENCY or 4)")
	rootCmd.PersistentFlags().IntVar(&rowCap, "row-cap", 0, "Maximum rows fetched per table, 0 for no cap (default from DPROF_DEFAULT_ROW_CAP)")

	// Add subcommands
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(listTablesCmd)
	rootCmd.AddCommand(exportCmd)
}
