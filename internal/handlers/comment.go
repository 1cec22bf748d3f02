package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/thesishub-dev/thesishub/db"
	"github.com/thesishub-dev/thesishub/internal/models"
	"github.com/thesishub-dev/thesishub/internal/services"
	"github.com/thesishub-dev/thesishub/internal/thread"
	"github.com/thesishub-dev/thesishub/internal/utils"
)

const maxCommentLen = 2000

type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func validCommentContent(ctx *gin.Context) (string, bool) {
	var body CommentRequest

	if err := ctx.BindJSON(&body); err != nil {
		fail(ctx, http.StatusBadRequest, codeValidation, "Invalid request")
		return "", false
	}

	content := strings.TrimSpace(body.Content)
	if content == "" {
		fail(ctx, http.StatusBadRequest, codeValidation, "Comment cannot be empty")
		return "", false
	}
	if len(content) > maxCommentLen {
		fail(ctx, http.StatusBadRequest, codeValidation, "Comment is too long")
		return "", false
	}

	return content, true
}

func threadError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, thread.ErrCommentNotFound):
		fail(ctx, http.StatusNotFound, codeNotFound, "Comment not found")
	case errors.Is(err, thread.ErrReplyNotFound):
		fail(ctx, http.StatusNotFound, codeNotFound, "Reply not found")
	case errors.Is(err, thread.ErrNotAuthor):
		fail(ctx, http.StatusForbidden, codeAccessDenied, "You cannot modify this comment")
	default:
		log.Printf("Thread operation failed: %v", err)
		fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
	}
}

// saveThread writes the whole thread back and recomputes comment_count
// from it, keeping the counter invariant by construction.
func saveThread(project *models.Project, t thread.Thread) error {
	encoded, err := t.JSON()
	if err != nil {
		return err
	}

	return db.DB.Model(project).Updates(map[string]interface{}{
		"comments":      encoded,
		"comment_count": t.Count(),
	}).Error
}

func AddComment(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		fail(ctx, http.StatusUnauthorized, codeUnauthenticated, "User not authenticated")
		return
	}

	project, ok := loadVisibleProject(ctx, utils.GetCaller(ctx))
	if !ok {
		return
	}

	content, ok := validCommentContent(ctx)
	if !ok {
		return
	}

	t, err := thread.Parse(project.Comments)
	if err != nil {
		threadError(ctx, err)
		return
	}

	t, comment := thread.AddComment(t, currentUser.ID, currentUser.Name, content)

	if err := saveThread(project, t); err != nil {
		threadError(ctx, err)
		return
	}

	services.Dispatch(services.NotificationInput{
		Recipient:   project.AuthorID,
		Type:        models.NotificationComment,
		SenderID:    currentUser.ID,
		SenderName:  currentUser.Name,
		SenderPhoto: currentUser.PhotoURL,
		ProjectID:   &project.ID,
		CommentID:   comment.ID,
		Message:     fmt.Sprintf("%s commented on your project %q", currentUser.Name, project.Title),
	})

	ctx.JSON(http.StatusCreated, gin.H{"comment": comment, "comment_count": t.Count()})
}

func EditComment(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		fail(ctx, http.StatusUnauthorized, codeUnauthenticated, "User not authenticated")
		return
	}

	project, ok := loadVisibleProject(ctx, utils.GetCaller(ctx))
	if !ok {
		return
	}

	content, ok := validCommentContent(ctx)
	if !ok {
		return
	}

	t, err := thread.Parse(project.Comments)
	if err != nil {
		threadError(ctx, err)
		return
	}

	t, err = thread.EditComment(t, ctx.Param("cid"), currentUser.ID, content)
	if err != nil {
		threadError(ctx, err)
		return
	}

	if err := saveThread(project, t); err != nil {
		threadError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Comment updated"})
}

func DeleteComment(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		fail(ctx, http.StatusUnauthorized, codeUnauthenticated, "User not authenticated")
		return
	}

	project, ok := loadVisibleProject(ctx, utils.GetCaller(ctx))
	if !ok {
		return
	}

	t, err := thread.Parse(project.Comments)
	if err != nil {
		threadError(ctx, err)
		return
	}

	t, removed, err := thread.DeleteComment(t, ctx.Param("cid"), currentUser.ID, currentUser.IsAdmin)
	if err != nil {
		threadError(ctx, err)
		return
	}

	if err := saveThread(project, t); err != nil {
		threadError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"removed": removed, "comment_count": t.Count()})
}

func AddReply(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		fail(ctx, http.StatusUnauthorized, codeUnauthenticated, "User not authenticated")
		return
	}

	project, ok := loadVisibleProject(ctx, utils.GetCaller(ctx))
	if !ok {
		return
	}

	content, ok := validCommentContent(ctx)
	if !ok {
		return
	}

	t, err := thread.Parse(project.Comments)
	if err != nil {
		threadError(ctx, err)
		return
	}

	commentID := ctx.Param("cid")

	parentIdx := -1
	for i := range t {
		if t[i].ID == commentID {
			parentIdx = i
			break
		}
	}

	t, reply, err := thread.AddReply(t, commentID, currentUser.ID, currentUser.Name, content)
	if err != nil {
		threadError(ctx, err)
		return
	}

	if err := saveThread(project, t); err != nil {
		threadError(ctx, err)
		return
	}

	if parentIdx >= 0 {
		services.Dispatch(services.NotificationInput{
			Recipient:   t[parentIdx].AuthorID,
			Type:        models.NotificationReply,
			SenderID:    currentUser.ID,
			SenderName:  currentUser.Name,
			SenderPhoto: currentUser.PhotoURL,
			ProjectID:   &project.ID,
			CommentID:   commentID,
			Message:     fmt.Sprintf("%s replied to your comment on %q", currentUser.Name, project.Title),
		})
	}

	ctx.JSON(http.StatusCreated, gin.H{"reply": reply, "comment_count": t.Count()})
}

func EditReply(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		fail(ctx, http.StatusUnauthorized, codeUnauthenticated, "User not authenticated")
		return
	}

	project, ok := loadVisibleProject(ctx, utils.GetCaller(ctx))
	if !ok {
		return
	}

	content, ok := validCommentContent(ctx)
	if !ok {
		return
	}

	t, err := thread.Parse(project.Comments)
	if err != nil {
		threadError(ctx, err)
		return
	}

	t, err = thread.EditReply(t, ctx.Param("cid"), ctx.Param("rid"), currentUser.ID, content)
	if err != nil {
		threadError(ctx, err)
		return
	}

	if err := saveThread(project, t); err != nil {
		threadError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Reply updated"})
}

func DeleteReply(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		fail(ctx, http.StatusUnauthorized, codeUnauthenticated, "User not authenticated")
		return
	}

	project, ok := loadVisibleProject(ctx, utils.GetCaller(ctx))
	if !ok {
		return
	}

	t, err := thread.Parse(project.Comments)
	if err != nil {
		threadError(ctx, err)
		return
	}

	t, err = thread.DeleteReply(t, ctx.Param("cid"), ctx.Param("rid"), currentUser.ID, currentUser.IsAdmin)
	if err != nil {
		threadError(ctx, err)
		return
	}

	if err := saveThread(project, t); err != nil {
		threadError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"comment_count": t.Count()})
}
