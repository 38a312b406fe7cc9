package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"thesis-management-api/models"
)

// Fallback texts returned when the text-generation service fails or returns
// something unusable. AI output is advisory and display-only, so failures
// degrade silently instead of propagating.
const (
	fallbackSummary  = "A summary could not be generated for this thesis right now."
	fallbackFeedback = "Automated feedback is unavailable right now. Please review the abstract manually."
)

// AIFeedback is the loosely structured feedback shape. Any field may be
// empty; callers must treat all of it as unvalidated display text.
type AIFeedback struct {
	Feedback          string   `json:"feedback"`
	ResearchQuestions []string `json:"research_questions,omitempty"`
	Keywords          []string `json:"keywords,omitempty"`
	Suggestions       string   `json:"suggestions,omitempty"`
}

// AIService calls the external text-generation endpoint. The upstream has no
// guaranteed schema and no reliability contract.
type AIService struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewAIService reads AI_API_URL and AI_API_KEY from the environment. A nil
// client gets a default with a request timeout.
func NewAIService(client *http.Client) *AIService {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &AIService{
		client:  client,
		baseURL: strings.TrimRight(os.Getenv("AI_API_URL"), "/"),
		apiKey:  os.Getenv("AI_API_KEY"),
	}
}

// Summarize returns a short reader-facing summary of the thesis, or the
// fallback text when the upstream call fails.
func (s *AIService) Summarize(ctx context.Context, title, abstract string) string {
	prompt := fmt.Sprintf(
		"Summarize the following thesis in three sentences for a general academic audience.\nTitle: %s\nAbstract: %s",
		title, abstract)
	out, err := s.generate(ctx, prompt)
	if err != nil || strings.TrimSpace(out.Text) == "" {
		logAIFailure("summarize", err)
		return fallbackSummary
	}
	return out.Text
}

// SuggestTitles returns alternative titles. An empty slice means the service
// had nothing usable; callers should keep the original title.
func (s *AIService) SuggestTitles(ctx context.Context, title string) []string {
	prompt := fmt.Sprintf(
		"Suggest three improved academic thesis titles as a JSON array of strings. Current title: %s", title)
	out, err := s.generate(ctx, prompt)
	if err != nil {
		logAIFailure("suggest_titles", err)
		return nil
	}
	if len(out.List) > 0 {
		return out.List
	}
	// Some backends answer with one title per line instead of JSON.
	var titles []string
	for _, line := range strings.Split(out.Text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*0123456789. "))
		if line != "" {
			titles = append(titles, line)
		}
	}
	return titles
}

// Feedback returns structured-ish review feedback for a record. Missing
// pieces are filled with fallbacks rather than reported as errors.
func (s *AIService) Feedback(ctx context.Context, rec models.ThesisRecord) AIFeedback {
	prompt := fmt.Sprintf(
		"Give constructive feedback on this thesis as JSON with keys feedback, research_questions, keywords, suggestions.\nTitle: %s\nAbstract: %s",
		rec.Title, rec.Abstract)
	out, err := s.generate(ctx, prompt)
	if err != nil {
		logAIFailure("feedback", err)
		return AIFeedback{Feedback: fallbackFeedback}
	}
	var fb AIFeedback
	if err := json.Unmarshal([]byte(out.Text), &fb); err == nil && fb.Feedback != "" {
		return fb
	}
	if strings.TrimSpace(out.Text) != "" {
		return AIFeedback{Feedback: out.Text}
	}
	return AIFeedback{Feedback: fallbackFeedback}
}

// generated is the lenient decoding of whatever the upstream returns: either
// {"text": "..."} or a bare JSON array of strings.
type generated struct {
	Text string
	List []string
}

func (s *AIService) generate(ctx context.Context, prompt string) (generated, error) {
	if s.baseURL == "" {
		return generated{}, fmt.Errorf("AI_API_URL not configured")
	}
	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return generated{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return generated{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return generated{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return generated{}, fmt.Errorf("text-generation service returned %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return generated{}, err
	}

	var asObj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &asObj); err == nil && asObj.Text != "" {
		return generated{Text: asObj.Text}, nil
	}
	var asList []string
	if err := json.Unmarshal(raw, &asList); err == nil {
		return generated{List: asList}, nil
	}
	return generated{Text: strings.TrimSpace(string(raw))}, nil
}

func logAIFailure(op string, err error) {
	if err != nil {
		log.Printf("AI %s unavailable, serving fallback: %v", op, err)
	}
}
