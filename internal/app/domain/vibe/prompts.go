package vibe

import (
	"fmt"
	"strings"

	"github.com/khldd/eternal-hope/internal/app/models"
)

func formatReviews(reviews []models.Review) string {
	if len(reviews) == 0 {
		return "No reviews available"
	}
	if len(reviews) > maxReviews {
		reviews = reviews[:maxReviews]
	}
	parts := make([]string, 0, len(reviews))
	for _, r := range reviews {
		parts = append(parts, fmt.Sprintf("[%.0f★] %s", r.Rating, r.Text))
	}
	return strings.Join(parts, "\n\n")
}

func formatNotes(notes []models.NoteContext) string {
	if len(notes) == 0 {
		return "No notes yet"
	}
	parts := make([]string, 0, len(notes))
	for _, n := range notes {
		parts = append(parts, fmt.Sprintf("[%s] %s", n.Author, n.Content))
	}
	return strings.Join(parts, "\n\n")
}

func editorialLine(editorialSummary *string) string {
	if editorialSummary == nil || *editorialSummary == "" {
		return ""
	}
	return fmt.Sprintf("\nGoogle's Description: %s\n", *editorialSummary)
}

const responseShape = `Respond in JSON format with exactly these fields:
{
  "generalDescription": "A rich, informative 3-4 sentence description of this place. Cover what it is, what makes it notable, what you can see/do/experience there. Include any historical, cultural, or practical context.",

  "summary": "A concise 2-3 sentence summary of what makes this place special. Focus on atmosphere, unique qualities, and memorable experiences.",

  "coupleInsights": "2-3 sentences specifically for a couple. What makes this a good spot for them? Consider romantic potential, shared experiences, conversation opportunities, photo moments, or just the vibe of being there together.",

  "vibeTags": ["list", "of", "5-8", "vibe", "tags"],

  "poeticDescription": "One evocative, poetic sentence that captures the essence of this place. Make it feel like a memory waiting to happen."
}`

const tagVocabulary = `For vibeTags, choose from or create tags like: romantic, cozy, adventurous, peaceful, scenic, hidden-gem, sunset-spot, coffee-worthy, food-coma, nature, waterfront, historic, artsy, local-favorite, instagram-worthy, conversation-starter, date-night, morning-vibes, golden-hour, stargazing, walking-friendly, animal-friendly, rain-or-shine, spontaneous, bucket-list`

func initialPrompt(req models.AnalyzeRequest) string {
	return fmt.Sprintf(`You are helping a couple (Khaled and Amal) discover meaningful places together. Analyze this place and provide insights specifically for a couple exploring the world together.

Place: %s
Type: %s
%s
Reviews:
%s

%s

%s

Be genuine and specific. Avoid generic descriptions. Write as if you're a thoughtful friend who knows them.`,
		req.PlaceName,
		strings.Join(req.PlaceTypes, ", "),
		editorialLine(req.EditorialSummary),
		formatReviews(req.Reviews),
		responseShape,
		tagVocabulary,
	)
}

func refreshPrompt(req models.AnalyzeRequest) string {
	return fmt.Sprintf(`You are helping Khaled and Amal document their journey together. They've already visited or are planning to visit this place. Analyze it with their personal notes in mind.

Place: %s
Type: %s
%s
Reviews from others:
%s

Their personal notes:
%s

%s

%s

Make it personal. This is their private memory journal.`,
		req.PlaceName,
		strings.Join(req.PlaceTypes, ", "),
		editorialLine(req.EditorialSummary),
		formatReviews(req.Reviews),
		formatNotes(req.ExistingNotes),
		responseShape,
		tagVocabulary,
	)
}
