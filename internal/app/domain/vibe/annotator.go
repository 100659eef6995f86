// Package vibe derives the five-field AI "vibe" structure for a place from
// its metadata, captured reviews and, on refresh, the couple's own notes.
package vibe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	generativeAI "github.com/FACorreiaa/go-genai-sdk/lib"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/khldd/eternal-hope/internal/app/models"
)

const maxReviews = 10

// contentGenerator is the slice of the AI client the annotator needs.
// *generativeAI.LLMChatClient satisfies it.
type contentGenerator interface {
	GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var _ contentGenerator = (*generativeAI.LLMChatClient)(nil)

// Service is the vibe annotator. aiClient may be nil when no Gemini key is
// configured; every call then returns fixed placeholder content.
type Service struct {
	aiClient contentGenerator
	logger   *zap.Logger
}

func NewService(aiClient contentGenerator, logger *zap.Logger) *Service {
	return &Service{
		aiClient: aiClient,
		logger:   logger,
	}
}

// NewServiceFromKey wires the Gemini-backed client, or a nil client when the
// key is absent so the annotator degrades to placeholders.
func NewServiceFromKey(ctx context.Context, apiKey string, logger *zap.Logger) *Service {
	if apiKey == "" {
		logger.Warn("Gemini API key not configured, vibe analysis will return placeholder content")
		return NewService(nil, logger)
	}

	aiClient, err := generativeAI.NewLLMChatClient(ctx, apiKey)
	if err != nil {
		logger.Error("Failed to initialize AI client", zap.Error(err))
		return NewService(nil, logger)
	}
	return NewService(aiClient, logger)
}

// Configured reports whether the text-generation capability is available.
func (s *Service) Configured() bool {
	return s.aiClient != nil
}

// Analyze produces the vibe structure for a place.
//
// Initial analysis substitutes fixed placeholder content on any provider
// failure so the caller always receives a usable result. A refresh call
// (existing notes present) propagates failures instead, so previously good
// AI content is never silently overwritten.
func (s *Service) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.VibeAnalysis, error) {
	ctx, span := otel.Tracer("VibeAnnotator").Start(ctx, "Analyze", trace.WithAttributes(
		attribute.String("place.name", req.PlaceName),
		attribute.Bool("refresh", req.IsRefresh),
		attribute.Int("reviews.count", len(req.Reviews)),
	))
	defer span.End()

	if s.aiClient == nil {
		span.SetStatus(codes.Ok, "placeholder content, AI unconfigured")
		return UnconfiguredPlaceholder(req.PlaceName, req.EditorialSummary), nil
	}

	isRefresh := req.IsRefresh && len(req.ExistingNotes) > 0

	var prompt string
	if isRefresh {
		prompt = refreshPrompt(req)
	} else {
		prompt = initialPrompt(req)
	}
	span.SetAttributes(attribute.Int("prompt.length", len(prompt)))

	analysis, err := s.generate(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		if isRefresh {
			span.SetStatus(codes.Error, "refresh analysis failed")
			return nil, fmt.Errorf("failed to refresh place vibe: %w", err)
		}
		s.logger.Error("Initial vibe analysis failed, substituting placeholder content",
			zap.String("place", req.PlaceName), zap.Error(err))
		span.SetStatus(codes.Ok, "placeholder content substituted")
		return failurePlaceholder(req.PlaceName, req.EditorialSummary), nil
	}

	span.SetStatus(codes.Ok, "vibe generated")
	return analysis, nil
}

func (s *Service) generate(ctx context.Context, prompt string) (*models.VibeAnalysis, error) {
	response, err := s.aiClient.GenerateResponse(ctx, prompt, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.7),
		MaxOutputTokens: 8192,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate vibe content: %w", err)
	}

	var txt string
	for _, candidate := range response.Candidates {
		if candidate.Content != nil && len(candidate.Content.Parts) > 0 {
			txt = candidate.Content.Parts[0].Text
			break
		}
	}
	if txt == "" {
		return nil, fmt.Errorf("no valid vibe content from AI")
	}

	return ParseVibeResponse(txt)
}

// ParseVibeResponse locates the first {...} span in the free-form provider
// text and decodes it, defaulting any absent field rather than failing the
// whole call. Markdown code fences are stripped first.
func ParseVibeResponse(text string) (*models.VibeAnalysis, error) {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var parsed struct {
		Summary            string   `json:"summary"`
		CoupleInsights     string   `json:"coupleInsights"`
		VibeTags           []string `json:"vibeTags"`
		PoeticDescription  string   `json:"poeticDescription"`
		GeneralDescription string   `json:"generalDescription"`
	}
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse vibe JSON: %w", err)
	}

	tags := parsed.VibeTags
	if tags == nil {
		tags = []string{}
	}

	return &models.VibeAnalysis{
		Summary:            parsed.Summary,
		CoupleInsights:     parsed.CoupleInsights,
		VibeTags:           tags,
		PoeticDescription:  parsed.PoeticDescription,
		GeneralDescription: parsed.GeneralDescription,
	}, nil
}

// UnconfiguredPlaceholder is returned when the text-generation capability is
// not configured at all; the provider is never called.
func UnconfiguredPlaceholder(placeName string, editorialSummary *string) *models.VibeAnalysis {
	general := fmt.Sprintf("%s awaits your discovery. Explore together and create memories.", placeName)
	if editorialSummary != nil && *editorialSummary != "" {
		general = *editorialSummary
	}
	return &models.VibeAnalysis{
		Summary:            fmt.Sprintf("%s is waiting to become part of your story. Visit together and discover what makes it special.", placeName),
		CoupleInsights:     "Every place has potential for a beautiful memory. What will this one hold for you two?",
		VibeTags:           []string{"undiscovered", "awaiting-you"},
		PoeticDescription:  "A canvas for moments yet to be painted.",
		GeneralDescription: general,
	}
}

// failurePlaceholder is substituted when an attempted initial analysis fails.
func failurePlaceholder(placeName string, editorialSummary *string) *models.VibeAnalysis {
	general := fmt.Sprintf("%s is a place waiting to be discovered. Explore it together and create your own memories here.", placeName)
	if editorialSummary != nil && *editorialSummary != "" {
		general = *editorialSummary
	}
	return &models.VibeAnalysis{
		Summary:            fmt.Sprintf("%s awaits your discovery. Add notes after your visit to build your personal story of this place.", placeName),
		CoupleInsights:     "This could be your next adventure together. Visit and let us know what you think!",
		VibeTags:           []string{"to-explore", "awaiting-discovery"},
		PoeticDescription:  "A place yet to be written into your story.",
		GeneralDescription: general,
	}
}
