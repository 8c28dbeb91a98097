package adapters

import (
	"context"
	"encoding/json"
	"generate-avatar-video/application/ports/outbound"
	"generate-avatar-video/config"
	"generate-avatar-video/domain"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func veoTestConfig(url string) *config.VeoConfig {
	return &config.VeoConfig{
		ApiUrl:         url,
		ApiKey:         "test-key",
		Model:          "veo-2",
		NegativePrompt: "cartoon, blurry",
	}
}

func TestVeoGenerator_GenerateReturnsHandle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/videos:generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal("failed to decode request:", err)
		}
		if req["aspect_ratio"] != "16:9" {
			t.Errorf("expected widescreen request for landscape source, got %v", req["aspect_ratio"])
		}
		if req["negative_prompt"] != "cartoon, blurry" {
			t.Errorf("negative prompt not forwarded, got %v", req["negative_prompt"])
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"op-42","done":false}`))
	}))
	defer server.Close()

	generator := NewVeoVideoGenerator(NewContentFetcher(NewZerologWrapper()), veoTestConfig(server.URL))

	handle, err := generator.Generate(context.Background(), outbound.GenerateVideoRequest{
		ImageBytes:  []byte("jpeg bytes"),
		Prompt:      "a person speaking",
		AspectRatio: domain.LandscapeAspectRatio,
	})
	if err != nil {
		t.Fatal("expected success, got:", err)
	}
	if handle.Name != "op-42" {
		t.Fatalf("expected op-42, got %q", handle.Name)
	}
}

func TestVeoGenerator_PollParsesDoneAndResult(t *testing.T) {
	responses := []string{
		`{"name":"op-42","done":false}`,
		`{"name":"op-42","done":true}`,
		`{"name":"op-42","done":true,"response":{"video_uri":"https://files.test/op-42.mp4"}}`,
	}
	call := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/operations/op-42" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(responses[call]))
		call++
	}))
	defer server.Close()

	generator := NewVeoVideoGenerator(NewContentFetcher(NewZerologWrapper()), veoTestConfig(server.URL))
	handle := domain.OperationHandle{Name: "op-42"}

	status, err := generator.Poll(context.Background(), handle)
	if err != nil {
		t.Fatal(err)
	}
	if status.Done {
		t.Fatal("first poll should not be done")
	}

	// Done can precede the result payload by one fetch.
	status, err = generator.Poll(context.Background(), handle)
	if err != nil {
		t.Fatal(err)
	}
	if !status.Done || status.ResultRef != "" {
		t.Fatalf("expected done with absent result, got %+v", status)
	}

	status, err = generator.Poll(context.Background(), handle)
	if err != nil {
		t.Fatal(err)
	}
	if status.ResultRef != "https://files.test/op-42.mp4" {
		t.Fatalf("expected result reference, got %+v", status)
	}
}

func TestVeoGenerator_DownloadWritesFile(t *testing.T) {
	payload := []byte("mp4 payload")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	generator := NewVeoVideoGenerator(NewContentFetcher(NewZerologWrapper()), veoTestConfig(server.URL))

	destPath := filepath.Join(t.TempDir(), "generated.mp4")
	if err := generator.Download(context.Background(), server.URL+"/files/op-42", destPath); err != nil {
		t.Fatal("expected success, got:", err)
	}

	written, err := os.ReadFile(destPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(written) != string(payload) {
		t.Fatal("downloaded payload does not match")
	}
}

func TestVeoGenerator_RejectedRequestIsGenerationFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"unsupported image"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	generator := NewVeoVideoGenerator(NewContentFetcher(NewZerologWrapper()), veoTestConfig(server.URL))

	_, err := generator.Generate(context.Background(), outbound.GenerateVideoRequest{
		ImageBytes:  []byte("x"),
		Prompt:      "p",
		AspectRatio: domain.PortraitAspectRatio,
	})
	if kind := domain.KindOf(err, ""); kind != domain.GenerationFailed {
		t.Fatalf("expected GenerationFailed, got %v", err)
	}
}
