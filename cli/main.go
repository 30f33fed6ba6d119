// goodbooks is the operational CLI: it provisions indexes and loads the
// goodbooks-10k sample dataset into mongo.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/goodbooks/goodbooks-api/store"
)

var logrusLogger = logrus.New()

var (
	flagMongoURI string
	flagDBName   string
	flagBaseURL  string
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "goodbooks",
		Short: "GoodBooks dataset operations",
	}
	rootCmd.PersistentFlags().StringVar(&flagMongoURI, "mongo-uri", envOr("MONGO_URI", "mongodb://localhost:27017"), "mongo connection string")
	rootCmd.PersistentFlags().StringVar(&flagDBName, "db", envOr("DB_NAME", "goodbooks"), "database name")

	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Download the goodbooks-10k samples and upsert them",
		Long: `Downloads the five goodbooks-10k sample CSV files, provisions the
indexes the API depends on, and bulk-upserts every row keyed on the
collection's unique fields. Safe to re-run.`,
		RunE: runIngest,
	}
	ingestCmd.Flags().StringVar(&flagBaseURL, "base-url", "", "override the CSV download base URL")

	indexesCmd := &cobra.Command{
		Use:   "indexes",
		Short: "Create the unique, join and sort indexes",
		RunE:  runIndexes,
	}

	rootCmd.AddCommand(ingestCmd, indexesCmd)

	if err := rootCmd.Execute(); err != nil {
		logrusLogger.Fatalf("command failed: %v", err)
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	db, err := store.Connect(ctx, flagMongoURI, flagDBName)
	if err != nil {
		return err
	}
	defer db.Close(context.Background())

	logrusLogger.Info("creating indexes")
	if err := db.EnsureIndexes(ctx); err != nil {
		return err
	}

	if err := db.IngestAll(ctx, logrusLogger, store.DefaultSources(flagBaseURL)); err != nil {
		return err
	}
	logrusLogger.Info("ingestion complete")
	return nil
}

func runIndexes(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	db, err := store.Connect(ctx, flagMongoURI, flagDBName)
	if err != nil {
		return err
	}
	defer db.Close(context.Background())

	if err := db.EnsureIndexes(ctx); err != nil {
		return err
	}
	logrusLogger.Info("indexes created")
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func envOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
