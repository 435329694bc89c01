package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/config"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/logging"
)

// modelName is the Gemini model used for receptionist replies.
const modelName = "gemini-1.5-flash"

const promptTemplate = `You are Emma, a friendly AI receptionist at a dental clinic.
Use this knowledge:
%s

If someone wants to book:
1. Ask for name, phone, service, preferred day
2. Offer the available times
3. Confirm the booking details back to the caller

Speak naturally in American English. Keep replies short enough to be read aloud.`

// generator is the slice of the Gemini model the assistant depends on.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Assistant produces conversational replies grounded in the clinic
// knowledge base.
type Assistant struct {
	model        generator
	client       *genai.Client
	systemPrompt string
	logger       *slog.Logger
}

// New creates an assistant from the configured Gemini API key and
// knowledge-base file. A missing knowledge base is tolerated with a
// warning so the service can start before the clinic has written one.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Assistant, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini API key is not configured")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	kb, err := os.ReadFile(cfg.KnowledgeBaseFile)
	if err != nil {
		logger.Warn("Knowledge base not readable, replies will be generic",
			slog.String("file", cfg.KnowledgeBaseFile),
			logging.Err(err))
	}

	return &Assistant{
		model:        client.GenerativeModel(modelName),
		client:       client,
		systemPrompt: fmt.Sprintf(promptTemplate, strings.TrimSpace(string(kb))),
		logger:       logger,
	}, nil
}

// Reply generates a receptionist reply to one user message.
func (a *Assistant) Reply(ctx context.Context, message string) (string, error) {
	resp, err := a.model.GenerateContent(ctx,
		genai.Text(a.systemPrompt),
		genai.Text("User: "+message),
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}

	reply := extractText(resp)
	if reply == "" {
		return "", fmt.Errorf("gemini returned no text content")
	}
	return reply, nil
}

// Close releases the underlying Gemini client.
func (a *Assistant) Close() error {
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return strings.TrimSpace(sb.String())
}
