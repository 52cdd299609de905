package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/coasterscan/internal/logging"
	"github.com/ppiankov/coasterscan/internal/model"
)

var (
	cfgFile     string
	verbose     bool
	storePath   string
	llmProvider string
	llmModel    string
	noCache     bool
	metricsFile string

	logger = zap.NewNop()
)

// version is set at build time with -ldflags "-X .../internal/cli.version=..."
var version = "v0.1.0"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "coasterscan",
	Short: "coasterscan - reconcile amusement-park catalog records against public sources",
	Long: `coasterscan keeps a small catalog of parks, manufacturers and coasters and
checks each record against the entity's official website, Wikidata and
Wikipedia.

Sources are merged under a fixed priority (Wikidata, then facts extracted
from the official site, then a combined extraction over all sources, then
the page title) and only fields that would change are written as a
pending proposal. Nothing is applied until a proposal is accepted.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		l, err := logging.New(level, cfg.Log.Format)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("coasterscan %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.coasterscan/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	flags.StringVar(&storePath, "db", "", "SQLite database path (overrides store.path)")
	flags.StringVar(&llmProvider, "llm-provider", "", "text capability provider (openai, anthropic, gemini, ollama, none)")
	flags.StringVar(&llmModel, "llm-model", "", "model name for the text capability provider")
	flags.BoolVar(&noCache, "no-cache", false, "disable the response cache")
	flags.StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the run")

	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in .env files, the config file and ENV variables
func initConfig() {
	loadEnvFiles()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.coasterscan")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// COASTERSCAN_HTTP_TIMEOUT, COASTERSCAN_LLM_PROVIDER, ...
	viper.SetEnvPrefix("COASTERSCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	setDefaults(model.DefaultConfig())

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadEnvFiles loads .env and then .env.local, which overrides it
func loadEnvFiles() {
	if err := godotenv.Load(".env"); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Loaded .env")
	}
	if err := godotenv.Overload(".env.local"); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Loaded .env.local")
	}
}
