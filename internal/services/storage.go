package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/google/uuid"
)

var storageClient = &http.Client{Timeout: 30 * time.Second}

type uploadResponse struct {
	URL string `json:"url"`
}

func storageBaseURL() (string, error) {
	base := os.Getenv("STORAGE_URL")
	if base == "" {
		return "", fmt.Errorf("STORAGE_URL environment variable is not set")
	}
	return base, nil
}

// UploadFile stores a byte buffer under a fresh object key and returns the
// retrievable URL the storage service answered with.
func UploadFile(data []byte, filename string) (string, error) {
	base, err := storageBaseURL()
	if err != nil {
		return "", err
	}

	key := uuid.NewString() + path.Ext(filename)

	req, err := http.NewRequest(http.MethodPut, base+"/objects/"+key, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if apiKey := os.Getenv("STORAGE_API_KEY"); apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := storageClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("storage upload: unexpected status %d", resp.StatusCode)
	}

	var uploaded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil || uploaded.URL == "" {
		return "", fmt.Errorf("storage upload: malformed response")
	}

	return uploaded.URL, nil
}

// FetchFile opens a stored object for streaming. The caller must close the
// returned body.
func FetchFile(fileURL string) (io.ReadCloser, string, int64, error) {
	req, err := http.NewRequest(http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, "", 0, err
	}
	if apiKey := os.Getenv("STORAGE_API_KEY"); apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := storageClient.Do(req)
	if err != nil {
		return nil, "", 0, fmt.Errorf("storage fetch: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, "", 0, fmt.Errorf("storage fetch: unexpected status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return resp.Body, contentType, resp.ContentLength, nil
}
