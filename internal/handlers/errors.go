package handlers

import (
	"github.com/gin-gonic/gin"
)

// Stable machine-readable codes returned next to the human message.
const (
	codeValidation      = "validation_error"
	codeUnauthenticated = "unauthenticated"
	codeAccessDenied    = "access_denied"
	codeNotFound        = "not_found"
	codeDuplicate       = "duplicate_request"
	codeAlreadyAssigned = "already_assigned"
	codeInvalidState    = "invalid_state"
	codeUploadFailed    = "upload_failed"
	codeUpstream        = "upstream_failure"
	codeInternal        = "internal_error"
)

func fail(ctx *gin.Context, status int, code, message string) {
	ctx.JSON(status, gin.H{"error": message, "code": code})
}
