package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"thesis-management-api/models"
)

func aiServiceFor(t *testing.T, handler http.HandlerFunc) *AIService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("AI_API_URL", srv.URL)
	t.Setenv("AI_API_KEY", "test-key")
	return NewAIService(srv.Client())
}

func TestSummarizeReturnsUpstreamText(t *testing.T) {
	svc := aiServiceFor(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Error("missing bearer token")
		}
		w.Write([]byte(`{"text":"A concise summary."}`))
	})

	got := svc.Summarize(context.Background(), "Title", "Abstract")
	if got != "A concise summary." {
		t.Errorf("summary = %q", got)
	}
}

func TestSummarizeFallsBackOnFailure(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"empty body": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"text":""}`))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			svc := aiServiceFor(t, handler)
			if got := svc.Summarize(context.Background(), "T", "A"); got != fallbackSummary {
				t.Errorf("expected fallback summary, got %q", got)
			}
		})
	}
}

func TestSummarizeFallsBackWhenUnconfigured(t *testing.T) {
	t.Setenv("AI_API_URL", "")
	svc := NewAIService(nil)
	if got := svc.Summarize(context.Background(), "T", "A"); got != fallbackSummary {
		t.Errorf("expected fallback summary, got %q", got)
	}
}

func TestSuggestTitlesParsesJSONArray(t *testing.T) {
	svc := aiServiceFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`["Title One","Title Two"]`))
	})
	got := svc.SuggestTitles(context.Background(), "Old Title")
	if len(got) != 2 || got[0] != "Title One" {
		t.Errorf("titles = %v", got)
	}
}

func TestSuggestTitlesParsesLineOutput(t *testing.T) {
	svc := aiServiceFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"1. Title One\n2. Title Two\n"}`))
	})
	got := svc.SuggestTitles(context.Background(), "Old Title")
	if len(got) != 2 || got[1] != "Title Two" {
		t.Errorf("titles = %v", got)
	}
}

func TestFeedbackParsesStructuredReply(t *testing.T) {
	svc := aiServiceFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"{\"feedback\":\"Strong work\",\"keywords\":[\"graphs\"]}"}`))
	})
	fb := svc.Feedback(context.Background(), models.ThesisRecord{Title: "T", Abstract: "A"})
	if fb.Feedback != "Strong work" || len(fb.Keywords) != 1 {
		t.Errorf("feedback = %+v", fb)
	}
}

func TestFeedbackFallsBackOnMalformedReply(t *testing.T) {
	svc := aiServiceFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	fb := svc.Feedback(context.Background(), models.ThesisRecord{Title: "T"})
	if fb.Feedback != fallbackFeedback {
		t.Errorf("expected fallback feedback, got %+v", fb)
	}
}
