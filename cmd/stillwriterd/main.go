// stillwriterd is the HTTP server: it accepts photo uploads, generates
// structured screenplay scenes from them, and serves stored screenplays,
// the gallery listing, and canonical images.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"stillwriter/internal/blob"
	"stillwriter/internal/canonical"
	"stillwriter/internal/chat"
	"stillwriter/internal/config"
	"stillwriter/internal/logging"
	"stillwriter/internal/pipeline"
	"stillwriter/internal/registry"
	"stillwriter/internal/screenwriter"
	"stillwriter/internal/store"
)

// CLI flags
var addrFlag string

var rootCmd = &cobra.Command{
	Use:   "stillwriterd",
	Short: "Photo-to-screenplay generation server",
	Long: `stillwriterd serves the photo-to-screenplay API. Upload a photograph and
the server canonicalizes it, deduplicates it against previously seen uploads,
and generates a structured screenplay scene from it with Gemini.

Examples:
  stillwriterd
  stillwriterd --addr :9090`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().StringVar(&addrFlag, "addr", "", "Listen address (overrides STILLWRITER_ADDR)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.RequireStores(); err != nil {
		log.Fatal().Err(err).Msg("Missing store configuration")
	}
	if addrFlag != "" {
		cfg.Addr = addrFlag
	}

	ctx := context.Background()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS configuration")
	}
	dynamoClient := dynamodb.NewFromConfig(awsCfg)
	s3Client := s3.NewFromConfig(awsCfg)

	model, err := chat.NewGemini(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	images := store.NewDynamoImageStore(dynamoClient, cfg.Table)
	screenplays := store.NewDynamoScreenplayStore(dynamoClient, cfg.Table)
	blobs := blob.NewS3Store(s3Client, cfg.Bucket)

	reg := registry.New(canonical.New(cfg.MaxWidth, cfg.MaxHeight), images, blobs)
	orch := pipeline.New(model, pipeline.Models{
		Creative:   cfg.CreativeModel,
		Structured: cfg.StructuredModel,
	})

	srv := &server{
		service:     screenwriter.New(reg, orch, screenplays),
		screenplays: screenplays,
		blobs:       blobs,
	}

	logging.NewStartupLogger("stillwriterd").
		S3Bucket("images", cfg.Bucket).
		DynamoTable("records", cfg.Table).
		Config("addr", cfg.Addr).
		Config("creativeModel", cfg.CreativeModel).
		Config("structuredModel", cfg.StructuredModel).
		Log()

	httpSrv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      newRouter(srv),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.Addr).Msg("Starting server")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// newRouter wires the API routes onto a fresh router.
func newRouter(srv *server) chi.Router {
	router := chi.NewRouter()
	router.Use(withLogging)

	router.Post("/api/screenplays", srv.handleGenerate)
	router.Get("/api/screenplays", srv.handleList)
	router.Get("/api/screenplays/{id}", srv.handleGet)
	router.Get("/images/{id}", srv.handleImage)
	router.Get("/healthz", srv.handleHealth)
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return router
}

// --- Middleware ---

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Request")
	})
}
