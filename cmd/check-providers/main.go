package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rquegea/ai-visibility-mvp/internal/config"
	"github.com/rquegea/ai-visibility-mvp/internal/pipeline"
	"github.com/rquegea/ai-visibility-mvp/internal/providers"
)

func main() {
	fmt.Println("AI Visibility Poller - Provider Connectivity Check")
	fmt.Println("==================================================")

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	query := "best cookie brands"
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ProviderTimeout)
	defer cancel()

	fmt.Println("\nProbing providers...")
	fmt.Println(strings.Repeat("-", 40))

	checkProvider(ctx, "OpenAI", providers.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.ProviderTimeout), query)
	checkProvider(ctx, "Perplexity", providers.NewPerplexityProvider(cfg.PerplexityAPIKey, cfg.PerplexityModel, cfg.ProviderTimeout), query)
	checkProvider(ctx, "SerpAPI", providers.NewSerpAPIProvider(cfg.SerpAPIKey, cfg.SerpResultCap, cfg.ProviderTimeout), query)

	fmt.Println("\nProvider connectivity check completed")
}

func checkProvider(ctx context.Context, name string, provider providers.Provider, query string) {
	fmt.Printf("- %s... ", name)

	if !provider.IsEnabled() {
		fmt.Println("DISABLED (missing API key)")
		return
	}

	result, err := provider.Fetch(ctx, query)
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		return
	}

	normalized, err := pipeline.Normalize(result)
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		return
	}

	if normalized.Body == "" {
		fmt.Println("OK (no results)")
		return
	}

	fmt.Printf("OK (%d characters)\n", len(normalized.Body))
	fmt.Printf("  sample: %q\n", sample(normalized.Body, 80))
}

func sample(text string, limit int) string {
	text = strings.ReplaceAll(text, "\n", " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
