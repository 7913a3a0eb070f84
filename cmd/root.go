package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"resumectl/internal/app"
	"resumectl/internal/config"
	xlog "resumectl/internal/log"
	"resumectl/internal/ui"
)

var (
	cfg       *config.Config
	cfgFile   string
	noHistory bool
	logger    zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "resumectl",
	Short: "resumectl - submit resumes for analysis from the terminal",
	Long: `resumectl uploads a resume (PDF, DOC, DOCX or TXT, up to 5 MB) to the
job-search service for analysis and reports the stored resume id.

Usage:
  Submit a file:        resumectl submit --file /path/to/resume.pdf
  Interactive session:  resumectl session
  Past submissions:     resumectl history

In a session, drag a file into the terminal after typing "drop " to select it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize viper configuration
		initConfig()

		var err error
		cfg, err = config.Load(viper.GetViper())
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		logger = xlog.Configure(xlog.Config{Level: cfg.Log.Level})
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug().Str("config", used).Msg("using config file")
		}
		return nil
	},
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.resumectl.yaml)")
	rootCmd.PersistentFlags().String("endpoint", "", "submission service base URL")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noHistory, "no-history", false, "do not record submissions locally")

	viper.BindPFlag("endpoint.url", rootCmd.PersistentFlags().Lookup("endpoint"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	config.SetDefaults(viper.GetViper())

	// Set up viper environment variable support
	viper.SetEnvPrefix("RESUMECTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not find home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".resumectl" (without extension)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".resumectl")
	}

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Warning: could not read config file %s: %v\n", cfgFile, err)
	}

	if noHistory {
		viper.Set("history.enabled", false)
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// createContext creates a context that cancels on interrupt signals
func createContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// createServices creates and wires up all the application services
func createServices(ctx context.Context, opts app.ServiceOptions) (*app.Services, error) {
	console := ui.NewConsoleUI(os.Stdout, os.Stderr, cfg.UI.Progress)
	return app.NewServices(ctx, cfg, console, logger, opts)
}
