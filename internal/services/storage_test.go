package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadFile(t *testing.T) {
	var gotPath, gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")

		require.Equal(t, http.MethodPut, r.Method)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"url": "https://cdn.example.com" + r.URL.Path})
	}))
	defer server.Close()

	t.Setenv("STORAGE_URL", server.URL)
	t.Setenv("STORAGE_API_KEY", "secret-key")

	url, err := UploadFile([]byte("%PDF-1.4 data"), "thesis.pdf")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotPath, "/objects/"))
	assert.True(t, strings.HasSuffix(gotPath, ".pdf"))
	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "https://cdn.example.com"+gotPath, url)
}

func TestUploadFileUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	t.Setenv("STORAGE_URL", server.URL)

	_, err := UploadFile([]byte("data"), "thesis.pdf")
	assert.Error(t, err)
}

func TestUploadFileMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	t.Setenv("STORAGE_URL", server.URL)

	_, err := UploadFile([]byte("data"), "thesis.pdf")
	assert.Error(t, err)
}

func TestUploadFileRequiresConfig(t *testing.T) {
	t.Setenv("STORAGE_URL", "")

	_, err := UploadFile([]byte("data"), "thesis.pdf")
	assert.Error(t, err)
}

func TestFetchFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	body, contentType, length, err := FetchFile(server.URL + "/objects/abc.pdf")
	require.NoError(t, err)
	defer body.Close()

	assert.Equal(t, "application/pdf", contentType)
	assert.Equal(t, int64(8), length)
}

func TestFetchFileNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, _, _, err := FetchFile(server.URL + "/objects/missing.pdf")
	assert.Error(t, err)
}
