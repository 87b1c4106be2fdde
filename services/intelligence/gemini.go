package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"m3allem/models"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

// GeminiAnalyzer classifies text and photos with Gemini in JSON mode.
type GeminiAnalyzer struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiAnalyzer(ctx context.Context, apiKey, modelName string) (*GeminiAnalyzer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if modelName == "" {
		modelName = defaultGeminiModel
	}
	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.1)
	return &GeminiAnalyzer{client: client, model: model}, nil
}

func (g *GeminiAnalyzer) Close() error {
	return g.client.Close()
}

type geminiAnswer struct {
	Service    string  `json:"service"`
	Urgency    string  `json:"urgency"`
	Complexity string  `json:"complexity"`
	Confidence float64 `json:"confidence"`
	Summary    string  `json:"summary"`
}

func (g *GeminiAnalyzer) Analyze(ctx context.Context, in models.AnalysisInput) (models.AnalysisSignal, error) {
	if strings.TrimSpace(in.Text) == "" && len(in.Image) == 0 {
		return models.AnalysisSignal{}, ErrEmptyInput
	}

	parts := []genai.Part{genai.Text(buildPrompt(in))}
	if len(in.Image) > 0 {
		parts = append(parts, genai.ImageData(imageFormat(in.ImageMIME), in.Image))
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return models.AnalysisSignal{}, fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return models.AnalysisSignal{}, fmt.Errorf("gemini returned no candidate")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return parseGeminiAnswer(sb.String())
}

func parseGeminiAnswer(raw string) (models.AnalysisSignal, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(raw, "```")), "```")

	var ans geminiAnswer
	if err := json.Unmarshal([]byte(raw), &ans); err != nil {
		return models.AnalysisSignal{}, fmt.Errorf("gemini answer is not valid JSON: %w", err)
	}

	service := ""
	if st, ok := models.LookupService(ans.Service); ok {
		service = st.ID
	}
	complexity, explicit := models.ParseComplexity(ans.Complexity)
	return models.AnalysisSignal{
		Service:    service,
		Urgency:    models.ParseUrgency(ans.Urgency),
		Complexity: complexity,
		Confidence: math.Max(0, math.Min(ans.Confidence, 1)),
		Summary:    ans.Summary,
		Source:     "gemini",
		Explicit:   explicit,
	}, nil
}

func buildPrompt(in models.AnalysisInput) string {
	ids := make([]string, len(models.Services))
	for i, s := range models.Services {
		ids[i] = s.ID
	}
	var b strings.Builder
	b.WriteString("Tu es un assistant qui qualifie des demandes de dépannage à domicile au Maroc. ")
	b.WriteString("La demande peut être en français, en arabe ou en darija. ")
	b.WriteString("Réponds uniquement avec un objet JSON de la forme ")
	b.WriteString(`{"service": string, "urgency": "low|normal|high|emergency", "complexity": "simple|moderate|complex", "confidence": number between 0 and 1, "summary": string}. `)
	fmt.Fprintf(&b, "Le champ service doit être l'un de : %s. ", strings.Join(ids, ", "))
	if len(in.Image) > 0 {
		b.WriteString("Une photo du problème est jointe. ")
	}
	if in.Text != "" {
		fmt.Fprintf(&b, "Demande du client : %q", in.Text)
	}
	return b.String()
}

// imageFormat maps a MIME type to the short format genai.ImageData expects.
func imageFormat(mime string) string {
	switch strings.ToLower(mime) {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/heic":
		return "heic"
	default:
		return "jpeg"
	}
}
