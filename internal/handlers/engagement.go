package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thesishub-dev/thesishub/db"
	"github.com/thesishub-dev/thesishub/internal/models"
	"github.com/thesishub-dev/thesishub/internal/policy"
	"github.com/thesishub-dev/thesishub/internal/services"
	"github.com/thesishub-dev/thesishub/internal/utils"
	"gorm.io/gorm"
)

func loadVisibleProject(ctx *gin.Context, caller policy.Caller) (*models.Project, bool) {
	project, ok := loadProject(ctx)
	if !ok {
		return nil, false
	}

	if !policy.CanView(caller, project) {
		fail(ctx, http.StatusForbidden, codeAccessDenied, "You do not have access to this project")
		return nil, false
	}

	return project, true
}

// ToggleLike flips the caller's like. The membership row and the counter
// change together inside one transaction.
func ToggleLike(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		fail(ctx, http.StatusUnauthorized, codeUnauthenticated, "User not authenticated")
		return
	}

	project, ok := loadVisibleProject(ctx, utils.GetCaller(ctx))
	if !ok {
		return
	}

	var liked bool

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var like models.ProjectLike

		err := tx.Where("user_id = ? AND project_id = ?", currentUser.ID, project.ID).First(&like).Error

		switch {
		case err == nil:
			if err := tx.Unscoped().Delete(&like).Error; err != nil {
				return err
			}
			liked = false
			return tx.Model(&models.Project{}).Where("id = ?", project.ID).
				UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error

		case errors.Is(err, gorm.ErrRecordNotFound):
			like = models.ProjectLike{UserID: currentUser.ID, ProjectID: project.ID}
			if err := tx.Create(&like).Error; err != nil {
				return err
			}
			liked = true
			return tx.Model(&models.Project{}).Where("id = ?", project.ID).
				UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error

		default:
			return err
		}
	})

	if err != nil {
		log.Printf("Failed to toggle like: %v", err)
		fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	if liked {
		services.Dispatch(services.NotificationInput{
			Recipient:   project.AuthorID,
			Type:        models.NotificationLike,
			SenderID:    currentUser.ID,
			SenderName:  currentUser.Name,
			SenderPhoto: currentUser.PhotoURL,
			ProjectID:   &project.ID,
			Message:     fmt.Sprintf("%s liked your project %q", currentUser.Name, project.Title),
		})
	}

	var refreshed models.Project
	if err := db.DB.Select("like_count").First(&refreshed, project.ID).Error; err != nil {
		log.Printf("Failed to read like count: %v", err)
	}

	ctx.JSON(http.StatusOK, gin.H{"liked": liked, "like_count": refreshed.LikeCount})
}

func ToggleBookmark(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		fail(ctx, http.StatusUnauthorized, codeUnauthenticated, "User not authenticated")
		return
	}

	project, ok := loadVisibleProject(ctx, utils.GetCaller(ctx))
	if !ok {
		return
	}

	var bookmarked bool

	var bookmark models.ProjectBookmark

	err = db.DB.Where("user_id = ? AND project_id = ?", currentUser.ID, project.ID).First(&bookmark).Error

	switch {
	case err == nil:
		if err := db.DB.Unscoped().Delete(&bookmark).Error; err != nil {
			log.Printf("Failed to remove bookmark: %v", err)
			fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
			return
		}
		bookmarked = false

	case errors.Is(err, gorm.ErrRecordNotFound):
		bookmark = models.ProjectBookmark{UserID: currentUser.ID, ProjectID: project.ID}
		if err := db.DB.Create(&bookmark).Error; err != nil {
			log.Printf("Failed to create bookmark: %v", err)
			fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
			return
		}
		bookmarked = true

	default:
		log.Printf("Failed to check bookmark: %v", err)
		fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"bookmarked": bookmarked})
}

// TrackView always bumps the view counter. For authenticated callers it
// also reinserts the project at the head of their recent-view list, capped
// at RecentViewLimit entries.
func TrackView(ctx *gin.Context) {
	caller := utils.GetCaller(ctx)

	project, ok := loadVisibleProject(ctx, caller)
	if !ok {
		return
	}

	if err := db.DB.Model(&models.Project{}).Where("id = ?", project.ID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
		log.Printf("Failed to increment view count: %v", err)
		fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	if caller.Authenticated() {
		err := db.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Unscoped().
				Where("user_id = ? AND project_id = ?", caller.ID, project.ID).
				Delete(&models.ProjectView{}).Error; err != nil {
				return err
			}

			view := models.ProjectView{
				UserID:    caller.ID,
				ProjectID: project.ID,
				ViewedAt:  time.Now().UTC(),
			}
			if err := tx.Create(&view).Error; err != nil {
				return err
			}

			var stale []models.ProjectView
			if err := tx.Where("user_id = ?", caller.ID).
				Order("viewed_at desc").
				Offset(models.RecentViewLimit).
				Find(&stale).Error; err != nil {
				return err
			}
			if len(stale) > 0 {
				return tx.Unscoped().Delete(&stale).Error
			}
			return nil
		})

		// History upkeep is best-effort, the counter bump already landed.
		if err != nil {
			log.Printf("Failed to update view history for user %d: %v", caller.ID, err)
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "View recorded"})
}
