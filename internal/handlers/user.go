package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/thesishub-dev/thesishub/db"
	"github.com/thesishub-dev/thesishub/internal/models"
	"github.com/thesishub-dev/thesishub/internal/types"
	"github.com/thesishub-dev/thesishub/internal/utils"
	"gorm.io/gorm"
)

type UpdateProfileRequest struct {
	Name          *string   `json:"name"`
	Bio           *string   `json:"bio"`
	PhotoURL      *string   `json:"photo_url"`
	Department    *string   `json:"department"`
	ResearchAreas *[]string `json:"research_areas"`
	MaxStudents   *int      `json:"max_students"`
}

func profileResponse(user *models.User) types.ProfileResponse {
	var areas []string
	if len(user.ResearchAreas) > 0 {
		_ = json.Unmarshal(user.ResearchAreas, &areas)
	}

	return types.ProfileResponse{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		Role:          user.Role,
		Bio:           user.Bio,
		PhotoURL:      user.PhotoURL,
		Department:    user.Department,
		ResearchAreas: areas,
		MaxStudents:   user.MaxStudents,
	}
}

// healRole repairs a stored role that drifted from the email-derived one.
// Idempotent; a failed repair is logged and the fetched profile still
// reflects the canonical role.
func healRole(user *models.User) {
	canonical := user.CanonicalRole()

	if canonical == user.Role {
		return
	}

	if err := db.DB.Model(user).Update("role", canonical).Error; err != nil {
		log.Printf("Failed to heal role for user %d: %v", user.ID, err)
	}

	user.Role = canonical
}

func GetUserProfile(ctx *gin.Context) {
	var user models.User

	if err := db.DB.Where("id = ?", ctx.Param("id")).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(ctx, http.StatusNotFound, codeNotFound, "User not found")
		} else {
			log.Printf("Failed to fetch user: %v", err)
			fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		}
		return
	}

	healRole(&user)

	ctx.JSON(http.StatusOK, gin.H{"user": profileResponse(&user)})
}

func UpdateMyProfile(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		fail(ctx, http.StatusUnauthorized, codeUnauthenticated, "User not authenticated")
		return
	}

	var body UpdateProfileRequest
	if err := ctx.BindJSON(&body); err != nil {
		fail(ctx, http.StatusBadRequest, codeValidation, "Invalid request")
		return
	}

	updates := make(map[string]interface{})

	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			fail(ctx, http.StatusBadRequest, codeValidation, "Name cannot be empty")
			return
		}
		updates["name"] = name
	}

	if body.Bio != nil {
		updates["bio"] = strings.TrimSpace(*body.Bio)
	}

	if body.PhotoURL != nil {
		updates["photo_url"] = strings.TrimSpace(*body.PhotoURL)
	}

	if body.Department != nil {
		updates["department"] = strings.TrimSpace(*body.Department)
	}

	if body.ResearchAreas != nil {
		areas := utils.NormalizeList(*body.ResearchAreas, 20)
		encoded, err := json.Marshal(areas)
		if err != nil {
			fail(ctx, http.StatusBadRequest, codeValidation, "Invalid research areas")
			return
		}
		updates["research_areas"] = encoded
	}

	if body.MaxStudents != nil {
		if *body.MaxStudents < 0 {
			fail(ctx, http.StatusBadRequest, codeValidation, "Max students cannot be negative")
			return
		}
		updates["max_students"] = *body.MaxStudents
	}

	if len(updates) == 0 {
		fail(ctx, http.StatusBadRequest, codeValidation, "No valid fields to update")
		return
	}

	var user models.User
	if err := db.DB.First(&user, currentUser.ID).Error; err != nil {
		log.Printf("Failed to fetch user: %v", err)
		fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		log.Printf("Failed to update user: %v", err)
		fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	// Re-sync the denormalized author name everywhere it is copied.
	if newName, ok := updates["name"]; ok && newName != currentUser.Name {
		if err := db.DB.Model(&models.Project{}).
			Where("author_id = ?", user.ID).
			Update("author_name", newName).Error; err != nil {
			log.Printf("Failed to re-sync author name for user %d: %v", user.ID, err)
		}
	}

	if err := db.DB.First(&user, user.ID).Error; err != nil {
		log.Printf("Failed to refresh user data: %v", err)
		fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    profileResponse(&user),
	})
}
