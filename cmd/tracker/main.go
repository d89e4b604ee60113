package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"tracker/internal/app"
	"tracker/internal/config"
	"tracker/internal/utils"
)

var Version = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var configPath string
	rootCmd := &cobra.Command{
		Use:           "tracker",
		Short:         "Tracker - tasks, goals and watchlist API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to config.yaml")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(migrateCmd(&configPath))
	rootCmd.AddCommand(tokenCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			return app.Run(cfg)
		},
	}
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			if err := app.Migrate(cmd.Context(), cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", cfg.Database.Driver)
			return nil
		},
	}
}

// tokenCmd mints a bearer token for local use; identity is otherwise issued
// by an external provider sharing the signing secret.
func tokenCmd(configPath *string) *cobra.Command {
	var userID, name, email string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed access token",
		Example: `  tracker token --user 42 --name Ada --email ada@example.com
  tracker token --user 42 --ttl 1h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			if ttl == 0 {
				ttl = cfg.Auth.TokenTTL
			}
			tok, err := utils.NewAccessToken([]byte(cfg.Auth.JWTSecret), userID, name, email, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id (required)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default auth.token_ttl)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
