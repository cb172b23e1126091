package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/swiftsoftwaregroup/swift-machine-client-go/internal/config"
	"github.com/swiftsoftwaregroup/swift-machine-client-go/oauth2client"
)

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	configFile string
	envFile    string
	profile    string
	scope      string
	method     string
	timeout    time.Duration
	logLevel   string
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
// Without a subcommand it behaves like "call".
func NewRootCmd() *cobra.Command {
	var flags rootFlags
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:           "machineclient",
		Short:         "Fetch a client-credentials token and call a protected API once",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "YAML settings file (default $"+config.EnvConfigFile+")")
	pf.StringVar(&flags.envFile, "env-file", "", "dotenv file to load (default .env when present)")
	pf.StringVarP(&flags.profile, "profile", "p", "", "named profile from the settings file")
	pf.StringVarP(&flags.scope, "scope", "s", "", "OAuth2 scope to request (overrides profile)")
	pf.StringVar(&flags.method, "method", "", "HTTP method for the API call (default POST)")
	pf.DurationVar(&flags.timeout, "timeout", 0, "timeout for each HTTP exchange (default 30s)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	callCmd := newCallCmd(&cfg)
	rootCmd.RunE = callCmd.RunE
	rootCmd.Flags().AddFlagSet(callCmd.Flags())

	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(newTokenCmd(&cfg))

	return rootCmd
}

// loadConfig applies, in order: files and environment, the selected profile,
// then explicitly set flags. It also initializes logging on stderr.
func loadConfig(cmd *cobra.Command, flags rootFlags) (*config.Config, error) {
	cfg, err := config.Load(config.Options{
		ConfigFile: flags.configFile,
		EnvFile:    flags.envFile,
	})
	if err != nil {
		return nil, err
	}

	if flags.profile != "" {
		if err := cfg.UseProfile(flags.profile); err != nil {
			return nil, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("scope") {
		cfg.Scope = flags.scope
	}
	if changed("method") {
		cfg.Method = flags.method
	}
	if changed("timeout") {
		cfg.Timeout = flags.timeout
	}
	if changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}

	if err := config.InitLogger(cmd.ErrOrStderr(), cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newAPIClient builds the library client with a per-run logger.
func newAPIClient(cfg *config.Config) (*oauth2client.APIClient, zerolog.Logger, error) {
	logger := log.Logger.With().Str("run_id", uuid.NewString()).Logger()

	cc, err := cfg.ClientConfig()
	if err != nil {
		return nil, logger, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Info().
		Str("client_id", cc.ClientID).
		Str("scope", cc.Scope).
		Str("api_url", cc.APIURL).
		Msg("using client credentials")

	client, err := oauth2client.NewAPIClient(cc, oauth2client.WithLogger(logger))
	if err != nil {
		return nil, logger, err
	}
	return client, logger, nil
}

func newCallCmd(cfg **config.Config) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "call",
		Short: "Acquire a token and print the raw API response",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, logger, err := newAPIClient(*cfg)
			if err != nil {
				return err
			}

			resp, err := client.Run(cmd.Context())
			if err != nil {
				return err
			}
			logger.Info().Int("status", resp.StatusCode).Int("bytes", len(resp.Body)).Msg("api call completed")

			if output != "" {
				if err := os.WriteFile(output, resp.Body, 0o644); err != nil {
					return fmt.Errorf("failed to save response: %w", err)
				}
				logger.Info().Str("path", output).Msg("response saved")
				return nil
			}
			_, err = cmd.OutOrStdout().Write(resp.Body)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the response body to this file instead of stdout")
	return cmd
}

func newTokenCmd(cfg **config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Acquire a token and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, logger, err := newAPIClient(*cfg)
			if err != nil {
				return err
			}

			tok, err := client.AcquireToken(cmd.Context())
			if err != nil {
				return err
			}
			logger.Info().Str("token_type", tok.TokenType).Time("expiry", tok.Expiry).Msg("token acquired")

			fmt.Fprintln(cmd.OutOrStdout(), tok.AccessToken)
			return nil
		},
	}
}
