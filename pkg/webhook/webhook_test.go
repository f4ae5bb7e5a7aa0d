package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ccollicutt/oldtimer/pkg/config"
	"github.com/ccollicutt/oldtimer/pkg/output"
)

func newTestReport() *output.Report {
	return &output.Report{
		Summary: output.Summary{
			LogsParsed:     2,
			LogsFailed:     1,
			BigSteps:       40,
			LinesProcessed: 100,
		},
		Logs: []output.LogSection{
			{Name: "run.log", Source: "/data/run.log"},
		},
		Failures: []output.Failure{{Path: "missing.log", Error: "no such file"}},
		Metadata: output.Metadata{
			ConfigFile: "test.yaml",
			Sources:    []string{"run.log", "missing.log"},
			AnalyzedAt: time.Now(),
			Duration:   time.Second,
		},
	}
}

func cleanReport() *output.Report {
	return &output.Report{Summary: output.Summary{LogsParsed: 1, BigSteps: 3}}
}

func TestClient_Send_Success(t *testing.T) {
	var receivedBody []byte
	var receivedContentType string
	var receivedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedContentType = r.Header.Get("Content-Type")
		receivedAuth = r.Header.Get("Authorization")
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := NewClient()
	report := newTestReport()

	resp := client.Send(context.Background(), report, SendOptions{
		URL: server.URL,
	})

	if !resp.Success() {
		t.Errorf("expected success, got error: %v", resp.Error)
	}

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	if resp.Body != `{"status":"ok"}` {
		t.Errorf("unexpected body: %s", resp.Body)
	}

	if receivedContentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", receivedContentType)
	}

	if receivedAuth != "" {
		t.Errorf("expected no auth header, got %s", receivedAuth)
	}

	// Verify payload is valid JSON containing expected fields
	var payload map[string]interface{}
	if err := json.Unmarshal(receivedBody, &payload); err != nil {
		t.Errorf("failed to parse received payload: %v", err)
	}

	for _, key := range []string{"Event", "Tool", "Summary", "Report", "Issues"} {
		if _, ok := payload[key]; !ok {
			t.Errorf("payload missing %s field", key)
		}
	}
	if payload["Tool"] != "oldtimer" || payload["Issues"] != true {
		t.Errorf("payload envelope = %v, %v", payload["Tool"], payload["Issues"])
	}
}

func TestClient_Send_WithBearerToken(t *testing.T) {
	var receivedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient()
	report := newTestReport()

	resp := client.Send(context.Background(), report, SendOptions{
		URL:   server.URL,
		Token: "secret-token-123",
	})

	if !resp.Success() {
		t.Errorf("expected success, got error: %v", resp.Error)
	}

	if receivedAuth != "Bearer secret-token-123" {
		t.Errorf("expected Bearer token, got %s", receivedAuth)
	}
}

func TestClient_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
	}))
	defer server.Close()

	client := NewClient()
	report := newTestReport()

	resp := client.Send(context.Background(), report, SendOptions{
		URL: server.URL,
	})

	if resp.Success() {
		t.Error("expected failure, got success")
	}

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", resp.StatusCode)
	}

	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestClient_Send_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient()
	report := newTestReport()

	resp := client.Send(context.Background(), report, SendOptions{
		URL:     server.URL,
		Timeout: 50 * time.Millisecond,
	})

	if resp.Success() {
		t.Error("expected failure due to timeout")
	}

	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestClient_Send_InvalidURL(t *testing.T) {
	client := NewClient()
	report := newTestReport()

	resp := client.Send(context.Background(), report, SendOptions{
		URL: "://invalid-url",
	})

	if resp.Success() {
		t.Error("expected failure for invalid URL")
	}

	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestClient_Send_ConnectionRefused(t *testing.T) {
	client := NewClient()
	report := newTestReport()

	resp := client.Send(context.Background(), report, SendOptions{
		URL:     "http://127.0.0.1:59999", // Unlikely to be listening
		Timeout: 100 * time.Millisecond,
	})

	if resp.Success() {
		t.Error("expected failure for connection refused")
	}

	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestResponse_Success(t *testing.T) {
	tests := []struct {
		name        string
		resp        Response
		wantSuccess bool
	}{
		{"200 OK", Response{StatusCode: 200}, true},
		{"201 Created", Response{StatusCode: 201}, true},
		{"204 No Content", Response{StatusCode: 204}, true},
		{"400 Bad Request", Response{StatusCode: 400}, false},
		{"500 Server Error", Response{StatusCode: 500}, false},
		{"With Error", Response{StatusCode: 200, Error: io.EOF}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resp.Success(); got != tt.wantSuccess {
				t.Errorf("Success() = %v, want %v", got, tt.wantSuccess)
			}
		})
	}
}

func TestClient_Send_UserAgent(t *testing.T) {
	var ua string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	resp := NewClient(WithVersion("1.2.3")).Send(context.Background(), newTestReport(), SendOptions{URL: server.URL})
	if !resp.Success() {
		t.Fatalf("Send() error = %v", resp.Error)
	}
	if ua != "oldtimer-webhook/1.2.3" {
		t.Errorf("User-Agent = %q", ua)
	}
}

func TestShouldFire(t *testing.T) {
	tests := []struct {
		trigger   config.WebhookTrigger
		hasIssues bool
		want      bool
	}{
		{config.WebhookTriggerAlways, false, true},
		{config.WebhookTriggerAlways, true, true},
		{"", false, true},
		{config.WebhookTriggerOnIssues, false, false},
		{config.WebhookTriggerOnIssues, true, true},
		{config.WebhookTriggerNever, true, false},
	}
	for _, tt := range tests {
		if got := ShouldFire(tt.trigger, tt.hasIssues); got != tt.want {
			t.Errorf("ShouldFire(%q, %v) = %v, want %v", tt.trigger, tt.hasIssues, got, tt.want)
		}
	}
}

func TestClient_Dispatch(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	hooks := []config.WebhookConfig{
		{Name: "always", URL: server.URL, Trigger: config.WebhookTriggerAlways},
		{Name: "issues", URL: server.URL, Trigger: config.WebhookTriggerOnIssues},
		{URL: server.URL, Trigger: config.WebhookTriggerNever},
	}

	responses := NewClient().Dispatch(context.Background(), hooks, cleanReport())
	if len(responses) != 1 || hits != 1 {
		t.Fatalf("clean report: %d responses, %d hits; want 1, 1", len(responses), hits)
	}
	if responses[0].Name != "always" || !responses[0].Success() {
		t.Errorf("response = %+v", responses[0])
	}

	hits = 0
	responses = NewClient().Dispatch(context.Background(), hooks, newTestReport())
	if len(responses) != 2 || hits != 2 {
		t.Errorf("report with issues: %d responses, %d hits; want 2, 2", len(responses), hits)
	}
}

func TestClient_Dispatch_NameFallsBackToURL(t *testing.T) {
	resp := NewClient().Dispatch(context.Background(), []config.WebhookConfig{
		{URL: "http://127.0.0.1:59999", Timeout: 50 * time.Millisecond},
	}, cleanReport())

	if len(resp) != 1 || resp[0].Name != "http://127.0.0.1:59999" {
		t.Fatalf("responses = %+v", resp)
	}
	if resp[0].Success() {
		t.Error("expected failure for connection refused")
	}
}
