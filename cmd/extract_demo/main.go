package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"tripsure/internal/ai"
)

func main() {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable not set")
	}

	ctx := context.Background()
	extractor, err := ai.NewGeminiExtractor(ctx, apiKey)
	if err != nil {
		log.Fatalf("Failed to initialize extractor: %v", err)
	}
	defer extractor.Close()

	stateContext := map[string]string{
		"current_date":          time.Now().Format("2006-01-02"),
		"known_facts":           "",
		"pending_question":      "destination",
		"awaiting_confirmation": "false",
	}

	utterance := "Tokyo, Jan 5 to Jan 12, one traveler age 30, no adventure sports"
	fmt.Printf("User: %s\n", utterance)

	result, err := extractor.Extract(ctx, utterance, stateContext)
	if err != nil {
		log.Fatalf("Error extracting: %v", err)
	}

	fmt.Printf("Intent: %s (confidence %.2f)\n", result.Intent, result.Confidence)
	if result.Destination != nil {
		fmt.Printf("Destination: %s\n", *result.Destination)
	}
	if result.DepartureDate != nil {
		fmt.Printf("Departure: %s\n", *result.DepartureDate)
	}
	if result.ReturnDate != nil {
		fmt.Printf("Return: %s\n", *result.ReturnDate)
	}
	if len(result.TravelerAges) > 0 {
		fmt.Printf("Ages: %v\n", result.TravelerAges)
	}
	if result.AdventureSports != nil {
		fmt.Printf("Adventure sports: %t\n", *result.AdventureSports)
	}
}
