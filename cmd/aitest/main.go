// Command aitest runs one prospect discovery against the live Gemini API.
// Useful for verifying an API key and prompt changes without the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/prospecta/prospecta-platform/internal/ai"
)

func main() {
	_ = godotenv.Load()

	query := flag.String("query", "agências de marketing digital", "search criteria")
	location := flag.String("location", "São Paulo, Brasil", "target location")
	model := flag.String("model", "", "Gemini model id override")
	flag.Parse()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	svc := ai.NewService(ai.GeminiFactory{ModelID: *model}, nil, nil)
	creds := ai.Credentials{APIKey: apiKey}

	start := time.Now()
	result, err := svc.Discover(ctx, creds, *query, *location, []string{ai.SourceGoogle})
	if err != nil {
		log.Fatalf("discovery failed: %v", err)
	}

	fmt.Printf("found %d prospect(s) in %v\n\n", len(result.Candidates), time.Since(start).Round(time.Millisecond))
	for _, c := range result.Candidates {
		fmt.Printf("  %-40s score=%3d phone=%s\n", c.Name, c.AIScore, c.Phone)
	}
	if len(result.Sources) > 0 {
		fmt.Println("\nsources:")
		for _, s := range result.Sources {
			fmt.Printf("  %s (%s)\n", s.Title, s.URI)
		}
	}
}
