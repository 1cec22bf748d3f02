package handlers

import (
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/thesishub-dev/thesishub/internal/services"
)

// ViewFile streams a stored object back with inline disposition so
// browsers render it instead of downloading. Only objects hosted by the
// configured storage service are proxied.
func ViewFile(ctx *gin.Context) {
	fileURL := strings.TrimSpace(ctx.Query("url"))
	if fileURL == "" {
		fail(ctx, http.StatusBadRequest, codeValidation, "Missing file URL")
		return
	}

	parsed, err := url.Parse(fileURL)
	if err != nil || parsed.Host == "" {
		fail(ctx, http.StatusBadRequest, codeValidation, "Invalid file URL")
		return
	}

	storageURL, err := url.Parse(os.Getenv("STORAGE_URL"))
	if err != nil || storageURL.Host == "" || parsed.Host != storageURL.Host {
		fail(ctx, http.StatusBadRequest, codeValidation, "URL is not served by the storage service")
		return
	}

	body, contentType, contentLength, err := services.FetchFile(fileURL)
	if err != nil {
		log.Printf("Failed to fetch file from storage: %v", err)
		fail(ctx, http.StatusBadGateway, codeUpstream, "Storage service unavailable")
		return
	}
	defer body.Close()

	ctx.DataFromReader(http.StatusOK, contentLength, contentType, body, map[string]string{
		"Content-Disposition": "inline",
	})
}
