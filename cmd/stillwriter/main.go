// stillwriter is the one-shot CLI: generate a screenplay scene from a local
// photo and print it. It runs the same registry and pipeline as the server,
// backed by in-memory stores.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"stillwriter/internal/blob"
	"stillwriter/internal/canonical"
	"stillwriter/internal/chat"
	"stillwriter/internal/config"
	"stillwriter/internal/logging"
	"stillwriter/internal/pipeline"
	"stillwriter/internal/registry"
	"stillwriter/internal/screenplay"
	"stillwriter/internal/screenwriter"
	"stillwriter/internal/store"
)

// CLI flags
var (
	fileFlag  string
	genreFlag string
	jsonFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "stillwriter",
	Short: "Generate a screenplay scene from a photograph",
	Long: `stillwriter turns a single photograph into a screenplay scene: it analyzes
the image as a production still, drafts the scene, and structures it into
typed elements.

Examples:
  stillwriter --file vacation.jpg
  stillwriter -f still.png --genre "film noir"
  stillwriter -f still.jpg --json`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Photo to generate from (required)")
	rootCmd.Flags().StringVarP(&genreFlag, "genre", "g", "", "Constrain the scene to a genre")
	rootCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the structured scene as JSON")
	rootCmd.MarkFlagRequired("file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// contentTypeByExt maps file extensions to upload content types.
var contentTypeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".heic": "image/heic",
	".heif": "image/heif",
}

func runMain(cmd *cobra.Command, args []string) {
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	contentType, ok := contentTypeByExt[strings.ToLower(filepath.Ext(fileFlag))]
	if !ok {
		log.Fatal().Str("file", fileFlag).Msg("Unsupported file extension")
	}

	contents, err := os.ReadFile(fileFlag)
	if err != nil {
		log.Fatal().Err(err).Str("file", fileFlag).Msg("Failed to read photo")
	}

	ctx := context.Background()

	model, err := chat.NewGemini(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	reg := registry.New(
		canonical.New(cfg.MaxWidth, cfg.MaxHeight),
		store.NewMemoryImageStore(),
		blob.NewMemoryStore(),
	)
	orch := pipeline.New(model, pipeline.Models{
		Creative:   cfg.CreativeModel,
		Structured: cfg.StructuredModel,
	})
	svc := screenwriter.New(reg, orch, store.NewMemoryScreenplayStore())

	result, err := svc.Generate(ctx, contents, contentType, genreFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Generation failed")
	}

	if jsonFlag {
		printJSON(result)
		return
	}
	printScene(result)
}

func printJSON(result *screenwriter.Result) {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode result")
	}
	fmt.Println(string(out))
}

// printScene renders the structured scene in screenplay layout.
func printScene(result *screenwriter.Result) {
	scene := result.Structured

	fmt.Printf("GENRE: %s\n\n", strings.ToUpper(scene.Genre))
	fmt.Println(scene.SceneHeading)
	fmt.Println()

	for _, elem := range scene.Elements {
		switch e := elem.(type) {
		case screenplay.Dialogue:
			fmt.Printf("\t\t%s\n", strings.ToUpper(e.Character))
			if e.Manner != "" {
				fmt.Printf("\t\t(%s)\n", e.Manner)
			}
			fmt.Printf("\t%s\n\n", e.Line)
		case screenplay.Visual:
			fmt.Printf("%s\n\n", e.Description)
		case screenplay.Sound:
			fmt.Printf("SOUND: %s\n\n", e.Description)
		case screenplay.SceneEnding:
			fmt.Printf("\t\t\t\t%s\n", e.Transition)
		}
	}

	fmt.Printf("\nModels: %s\n", strings.Join(result.ModelsUsed, ", "))
}
