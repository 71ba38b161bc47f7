package scrape

import (
	"testing"
	"time"
)

func newTestAgent() *AgentExtractor {
	return NewAgentExtractor("test-key", "gpt-4o", time.Second, testLogger())
}

func TestAgentParseResult(t *testing.T) {
	t.Parallel()

	agent := newTestAgent()
	raw := `{"content": [
		{"title": "First", "url": "https://e.org/1", "description": "d1"},
		{"title": "Second", "url": "https://e.org/2"}
	]}`

	candidates := agent.parseResult([]byte(raw))
	if len(candidates) != 2 {
		t.Fatalf("expected two candidates, got %d", len(candidates))
	}
	if *candidates[0].Title != "First" || *candidates[0].Description != "d1" {
		t.Fatalf("unexpected first candidate: %+v", candidates[0])
	}
	if candidates[1].Description != nil {
		t.Fatal("absent description must stay absent, not placeholder")
	}
}

func TestAgentParseResultContentNotAList(t *testing.T) {
	t.Parallel()

	agent := newTestAgent()
	if got := agent.parseResult([]byte(`{"content": "not a list"}`)); len(got) != 0 {
		t.Fatalf("type mismatch must yield zero candidates, got %d", len(got))
	}
}

func TestAgentParseResultSkipsNonObjectItems(t *testing.T) {
	t.Parallel()

	agent := newTestAgent()
	raw := `{"content": ["just a string", {"title": "Kept", "url": "https://e.org/k"}]}`

	candidates := agent.parseResult([]byte(raw))
	if len(candidates) != 1 {
		t.Fatalf("expected one candidate, got %d", len(candidates))
	}
	if *candidates[0].Title != "Kept" {
		t.Fatalf("unexpected candidate: %+v", candidates[0])
	}
}

func TestAgentParseResultNoContent(t *testing.T) {
	t.Parallel()

	agent := newTestAgent()
	if got := agent.parseResult([]byte(`{"answer": 42}`)); len(got) != 0 {
		t.Fatalf("missing content must yield zero candidates, got %d", len(got))
	}
}
