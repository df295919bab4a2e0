package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/storysprout/storysprout/internal/api"
	"github.com/storysprout/storysprout/internal/catalog"
	"github.com/storysprout/storysprout/internal/genai"
	"github.com/storysprout/storysprout/internal/learning"
	"github.com/storysprout/storysprout/internal/store"
	"github.com/storysprout/storysprout/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for StorySprout state data
	DefaultStateDir = "/var/lib/storysprout"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "storysprout.db"
)

// Config holds environment configuration
type Config struct {
	DBDriver  string
	DBDSN     string
	StateDir  string
	OpenAIKey string
	Model     string
	APIAddr   string
}

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()

	dbDriver := flag.String("db-driver", config.DBDriver, "database driver for the story archive: sqlite3, postgres, or memory")
	dbDSN := flag.String("db-dsn", config.DBDSN, "database DSN (file path for sqlite3, connection string for postgres)")
	stateDir := flag.String("state-dir", config.StateDir, "directory for StorySprout state data")
	openaiKey := flag.String("openai-key", config.OpenAIKey, "OpenAI API key")
	model := flag.String("openai-model", config.Model, "OpenAI chat model")
	apiAddr := flag.String("addr", config.APIAddr, "API listen address")
	flag.Parse()

	archive, err := buildArchive(*dbDriver, *dbDSN, *stateDir)
	if err != nil {
		slog.Error("Failed to initialize story archive", "error", err)
		os.Exit(1)
	}
	defer archive.Close()

	client := buildGenAIClient(*openaiKey, *model)

	cat := catalog.New()
	sessions := learning.NewInMemorySessionStore(cat)
	engine := learning.NewEngine(cat, sessions, client, nil)

	server := api.NewServer(engine, cat, client, archive, api.WithAddr(*apiAddr))
	slog.Info("Bootstrapping StorySprout", "addr", *apiAddr, "db_driver", *dbDriver)
	if err := server.Run(); err != nil {
		slog.Error("StorySprout failed to run", "error", err)
		os.Exit(1)
	}
}

// initializeLogger sets up structured logging; DEBUG=true enables debug level.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DBDriver:  os.Getenv("STORYSPROUT_DB_DRIVER"),
		DBDSN:     os.Getenv("STORYSPROUT_DB_DSN"),
		StateDir:  os.Getenv("STORYSPROUT_STATE_DIR"),
		OpenAIKey: os.Getenv("OPENAI_API_KEY"),
		Model:     os.Getenv("OPENAI_MODEL"),
		APIAddr:   os.Getenv("API_ADDR"),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
	}
	if config.DBDriver == "" {
		config.DBDriver = "sqlite3"
	}
	if config.APIAddr == "" {
		config.APIAddr = api.DefaultAddr
	}
	return config
}

// buildArchive constructs the story archive backend from flags.
func buildArchive(driver, dsn, stateDir string) (store.Store, error) {
	switch driver {
	case "postgres":
		return store.NewPostgresStore(store.WithDSN(dsn))
	case "memory":
		slog.Warn("Using in-memory story archive; stories are lost on restart")
		return store.NewInMemoryStore(), nil
	default:
		if dsn == "" {
			dsn = filepath.Join(stateDir, DefaultDBFileName)
			slog.Debug("No DB DSN set, using default SQLite path", "dsn", dsn)
		}
		return store.NewSQLiteStore(store.WithDSN(dsn))
	}
}

// buildGenAIClient constructs the collaborator client, degrading to the offline
// client when no API key is configured.
func buildGenAIClient(apiKey, model string) *genai.Client {
	opts := []genai.Option{}
	if apiKey != "" {
		opts = append(opts, genai.WithAPIKey(apiKey))
	}
	if model != "" {
		opts = append(opts, genai.WithModel(model))
	}
	client, err := genai.NewClient(opts...)
	if err != nil {
		slog.Warn("GenAI client unavailable, running with local fallbacks", "error", err)
		return genai.NewOfflineClient()
	}
	return client
}
