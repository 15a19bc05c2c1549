package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"placement-portal/internal/ai/gemini"
	"placement-portal/internal/attachments"
	"placement-portal/internal/compare"
	"placement-portal/internal/logger"
	"placement-portal/internal/notify"
	"placement-portal/internal/portal"
	"placement-portal/internal/secrets"
	"placement-portal/internal/selection"
	"placement-portal/internal/server"
)

const (
	defaultListenAddress  = ":8080"
	defaultNarrativeModel = "gemini-2.5-pro"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the placement portal HTTP server",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen-address", "l", defaultListenAddress, "address for the HTTP server to listen on")

	viper.BindPFlag("listen-address", serveCmd.Flags().Lookup("listen-address"))
}

// serve wires the whole portal together and blocks on the HTTP listener.
func serve() {
	ctx := context.Background()

	config, err := getConfig()
	if err != nil {
		log.Fatalf("getting a config: %s", err)
	}
	if config == nil {
		config = &Config{}
	}

	logFile := ""
	if config.Log != nil {
		logFile = config.Log.File
	}

	logger, err := logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
		File:  logFile,
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	logger.Info("starting the placement portal", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	apiKey, err := resolveAPIKey(config)
	if err != nil {
		logger.Fatal(
			"loading gemini api key",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY, GEMINI_API_KEY_FILE, or the 'ai.gemini.api-key-file' key in the configuration file"),
		)
	}

	gcfg := config.AI.GetGemini()

	generator, err := gemini.NewGenerator(ctx, apiKey, gcfg.Model)
	if err != nil {
		logger.Fatal("creating the gemini client", zap.Error(err))
	}

	narrativeModel := gcfg.NarrativeModel
	if narrativeModel == "" {
		narrativeModel = defaultNarrativeModel
	}
	narrative := generator.WithModel(narrativeModel)

	ranker := gemini.NewRanker(generator, oracleLogger(logger, generator.Model()), gcfg.MaxLogLength)
	reviewer := gemini.NewReviewer(narrative, oracleLogger(logger, narrative.Model()), gcfg.MaxLogLength)

	store := portal.NewStore(portal.SeedJobs(), portal.SeedUsers())
	loader := attachments.NewLoader()

	ttl := notify.DefaultTTL
	if config.Notifications != nil && config.Notifications.TTL > 0 {
		ttl = config.Notifications.TTL
	}
	queue := notify.NewQueue(ttl)
	defer queue.Stop()

	addr := viper.GetString("listen-address")
	if config.ListenAddress != "" {
		addr = config.ListenAddress
	}

	srv := server.New(addr, server.Deps{
		Store:         store,
		Loader:        loader,
		Notifications: queue,
		Selection:     selection.NewSet(),
		Ranking:       compare.NewRanking(store, loader, ranker, logger),
		Pairwise:      compare.NewPairwise(store, loader, reviewer, logger),
		ChatStarter:   generator,
		Logger:        logger,
	})

	if err := srv.Run(); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// oracleLogger tags a logger with the provider and model the oracle calls
// will run against.
func oracleLogger(base *zap.Logger, model string) *zap.Logger {
	return logger.WithOracleFields(base, gemini.Provider, model)
}

// GetGemini returns the gemini section, tolerating absent config blocks.
func (c *AIConfig) GetGemini() *GeminiConfig {
	if c == nil || c.Gemini == nil {
		return &GeminiConfig{}
	}
	return c.Gemini
}

func resolveAPIKey(config *Config) (string, error) {
	gcfg := config.AI.GetGemini()

	return secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: gcfg.APIKey,
		Env:   "GEMINI_API_KEY",
		File:  gcfg.APIKeyFile,
	})
}
