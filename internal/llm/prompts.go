package llm

import (
	"fmt"
	"strings"

	"github.com/robalobadob/matchstick/internal/puzzle"
)

const generatorPrompt = `You are a matchstick puzzle generator.
Generate an incorrect arithmetic equation using digits 0-9 and operators +, - and =.
The equation must be incorrect, but can be made correct by moving EXACTLY ONE matchstick.
"Moving" means taking a matchstick from one position and placing it in another valid position within a digit or operator.
Use a single '=' and no leading minus sign. Ensure the solution is valid and simple.

Respond with ONLY a JSON object (no markdown, no code fences, no extra text) matching this exact schema:
{
  "originalEquation": "6+4=4",
  "targetMoves": 1,
  "hint": "Try fixing the result."
}`

const hintSystemPrompt = "You are a helpful puzzle assistant."

// langNames maps common BCP 47 codes to human-readable language names.
var langNames = map[string]string{
	"en": "English",
	"ko": "Korean",
	"ja": "Japanese",
	"zh": "Chinese",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ru": "Russian",
}

func languageName(lang string) string {
	if lang == "" {
		return "English"
	}
	if name, ok := langNames[strings.ToLower(lang)]; ok {
		return name
	}
	return lang
}

func hintUserPrompt(req puzzle.HintRequest, lang string) string {
	return fmt.Sprintf("Original: %s, Current User Board: %s, Goal: Make it valid math. "+
		"'?' marks a position that is not a valid character. "+
		"Give a small progressive hint without revealing the answer directly. Language: %s.",
		req.Original, req.Current, languageName(lang))
}

func retryPrompt(badJSON string) string {
	return fmt.Sprintf(`Your previous response was not valid JSON. Here is what you returned:
%s

Return ONLY the corrected JSON object matching this schema (no markdown, no code fences):
{
  "originalEquation": "6+4=4",
  "targetMoves": 1,
  "hint": "Try fixing the result."
}`, badJSON)
}
