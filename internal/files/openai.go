package files

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ErrNoAPIKey is returned before any network call when the file-storage
// credential is missing.
var ErrNoAPIKey = errors.New("openai api key not configured")

// OpenAIClient proxies uploads to the OpenAI files API. Files are stored
// upstream with purpose "assistants"; only the returned file id is kept
// locally.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAIClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 120 * time.Second},
	}
}

type uploadResponse struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Bytes    int64  `json:"bytes"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload streams the file to the provider and returns the provider's file id.
func (c *OpenAIClient) Upload(ctx context.Context, fileName string, r io.Reader) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		defer pw.Close()
		part, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := mw.WriteField("purpose", "assistants"); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", pr)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var payload apiError
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		if payload.Error.Message != "" {
			return "", fmt.Errorf("openai upload: status %d: %s", resp.StatusCode, payload.Error.Message)
		}
		return "", fmt.Errorf("openai upload: status %d", resp.StatusCode)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("openai upload decode: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("openai upload: missing file id in response")
	}
	return out.ID, nil
}

// Delete removes the file upstream.
func (c *OpenAIClient) Delete(ctx context.Context, fileID string) error {
	if c.apiKey == "" {
		return ErrNoAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/files/"+fileID, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("openai delete: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("openai delete: status %d", resp.StatusCode)
	}
	return nil
}
