package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiExtractor implements Extractor using Google's Gemini models.
type GeminiExtractor struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiExtractor initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiExtractor(ctx context.Context, apiKey string) (*GeminiExtractor, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Gemini 2.0 Flash: low latency matters more than depth for per-turn extraction.
	model := client.GenerativeModel("gemini-2.0-flash")

	// Force JSON response for structured parsing.
	model.ResponseMIMEType = "application/json"

	// Extraction should be boring; keep the temperature low.
	model.SetTemperature(0.2)

	return &GeminiExtractor{
		client: client,
		model:  model,
	}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiExtractor) Close() {
	p.client.Close()
}

// Extract analyzes one utterance against the current conversation snapshot.
func (p *GeminiExtractor) Extract(ctx context.Context, utterance string, stateContext map[string]string) (*Extraction, error) {
	systemPrompt := buildSystemPrompt(stateContext)

	fullPrompt := fmt.Sprintf("%s\n\nUser Message: %s", systemPrompt, utterance)

	resp, err := p.model.GenerateContent(ctx, genai.Text(fullPrompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response candidates from Gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}

	// Clean up potential markdown formatting (JSON mode should prevent this, safety first).
	cleanJSON := cleanJSONString(responseText.String())

	var result Extraction
	if err := json.Unmarshal([]byte(cleanJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, cleanJSON)
	}

	return &result, nil
}

// buildSystemPrompt constructs the instructions for the AI.
func buildSystemPrompt(ctxMap map[string]string) string {
	currentDate := ctxMap["current_date"]
	pending := ctxMap["pending_question"]
	known := ctxMap["known_facts"]
	awaiting := ctxMap["awaiting_confirmation"]

	if currentDate == "" {
		currentDate = "UNKNOWN_DATE"
	}
	if pending == "" {
		pending = "NONE"
	}
	if known == "" {
		known = "NONE"
	}
	if awaiting == "" {
		awaiting = "false"
	}

	return fmt.Sprintf(`Role: You are the extraction core for "TripSure", a travel-insurance quote assistant.
Context:
- Current Date: %s
- Facts already collected: %s
- Question currently pending: %s
- Awaiting final confirmation: %s

Your ONLY job is to map the user's message to the JSON schema below. You never
compose replies; the dialogue engine owns all wording.

RULES:

1. INTENT CLASSIFICATION:
   - "provide_info": the message supplies one or more trip facts.
   - "confirm_yes": an affirmative answer while awaiting confirmation.
   - "confirm_no": a refusal while awaiting confirmation, without naming a fact.
   - "correction": the user wants to change a specific already-given fact
     ("actually make it Paris", "change the dates"). Set "correct_slot".
   - "handoff_request": the user explicitly asks for a human agent.
   - "question": the user asks about the policy or the process.
   - "chat": anything else (greetings, small talk).

2. DATES:
   - Copy the user's date phrase VERBATIM into "departure_date" / "return_date"
     ("Jan 5", "2026-01-05", "next friday"). DO NOT normalize or resolve
     relative dates; the engine parses them against the Current Date.
   - "from X to Y" puts X in "departure_date" and Y in "return_date".
   - A single date while the pending question is "return_date" belongs in
     "return_date", not "departure_date".

3. AGES:
   - "traveler_ages" lists every age mentioned this turn, in order.
   - "two adults, 34 and 31" -> [34, 31]. "I'm 40" -> [40].
   - A bare traveler count without ages is NOT an age list; omit the field.

4. ADVENTURE SPORTS:
   - Set "adventure_sports" only when the message clearly states a preference
     (skiing, diving, "no risky stuff" -> false, "yes please" while the
     pending question is "adventure_sports" -> true).
   - When the message is ambiguous ("maybe", "not sure"), OMIT the field.

5. CORRECTIONS:
   - "correct_slot" must be one of: "destination", "departure_date",
     "return_date", "traveler_ages", "adventure_sports".
   - When the correction also carries the new value ("change destination to
     Paris"), include the new value in the matching fact field as well.

6. NEVER invent facts the user did not state. Omit unknown fields entirely.

7. Output JSON Schema:
{
  "intent": "provide_info" | "confirm_yes" | "confirm_no" | "correction" | "question" | "handoff_request" | "chat",
  "confidence": number between 0 and 1,
  "destination": "string or omitted",
  "departure_date": "string or omitted",
  "return_date": "string or omitted",
  "traveler_ages": [integer] or omitted,
  "adventure_sports": boolean or omitted,
  "correct_slot": "string or omitted"
}
`, currentDate, known, pending, awaiting)
}

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
