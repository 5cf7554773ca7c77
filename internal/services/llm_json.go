package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
)

// structuredMaxAttempts is one initial request plus two retries. Every
// LLM-calling stage shares this budget; the retry prompt carries the
// previous raw response so the model can correct itself.
const structuredMaxAttempts = 3

var (
	thinkBlockRe    = regexp.MustCompile(`(?s)<think>.*?</think>`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// generateStructured asks the LLM for JSON matching target's shape and
// keeps asking until it parses or the attempt budget is spent. Malformed
// responses go through extractJSON + repairJSON before a retry is charged.
func generateStructured(ctx context.Context, llm GeminiService, prompt string, temperature float32, target interface{}) error {
	currentPrompt := prompt

	var lastRaw string
	var lastErr error

	for attempt := 1; attempt <= structuredMaxAttempts; attempt++ {
		raw, err := llm.GenerateText(ctx, currentPrompt, temperature)
		if err != nil {
			lastRaw = ""
			lastErr = err
		} else {
			lastRaw = raw
			if err := decodeStructured(raw, target); err == nil {
				return nil
			} else {
				lastErr = err
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if attempt < structuredMaxAttempts {
			log.Printf("⚠️  Structured response attempt %d invalid: %v. Retrying...\n", attempt, lastErr)
			currentPrompt = buildRetryPrompt(prompt, lastRaw)
		}
	}

	return errLLMResponseInvalid(lastRaw, fmt.Errorf("no valid structured response after %d attempts: %w", structuredMaxAttempts, lastErr))
}

func decodeStructured(raw string, target interface{}) error {
	jsonStr := extractJSON(raw)

	if err := json.Unmarshal([]byte(jsonStr), target); err != nil {
		repaired := repairJSON(jsonStr)
		if repairErr := json.Unmarshal([]byte(repaired), target); repairErr != nil {
			return fmt.Errorf("failed to unmarshal JSON: %w", err)
		}
	}

	return nil
}

func buildRetryPrompt(original, raw string) string {
	if raw == "" {
		return original
	}

	return fmt.Sprintf(`Your previous response was not valid JSON.

PREVIOUS RESPONSE:
%s

Answer the original request again. Return ONLY valid JSON — no markdown fences, no commentary, no text before or after the JSON.

ORIGINAL REQUEST:
%s`, truncateText(raw, 4000), original)
}

// extractJSON pulls the JSON body out of a response that may carry
// reasoning blocks, markdown fences or prose around it.
func extractJSON(text string) string {
	text = thinkBlockRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return strings.TrimSpace(text)
}

// repairJSON fixes the malformations models actually produce: an
// unterminated string, trailing commas, and output truncated before the
// closing brackets. Heuristic on purpose — the caller re-validates.
func repairJSON(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}

	if strings.Count(s, `"`)%2 != 0 {
		s += `"`
	}

	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = strings.TrimRight(s, ", \n\t")

	if n := strings.Count(s, "[") - strings.Count(s, "]"); n > 0 {
		s += strings.Repeat("]", n)
	}
	if n := strings.Count(s, "{") - strings.Count(s, "}"); n > 0 {
		s += strings.Repeat("}", n)
	}

	return trailingCommaRe.ReplaceAllString(s, "$1")
}

func truncateText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
