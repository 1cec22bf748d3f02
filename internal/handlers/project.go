package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/thesishub-dev/thesishub/db"
	"github.com/thesishub-dev/thesishub/internal/models"
	"github.com/thesishub-dev/thesishub/internal/policy"
	"github.com/thesishub-dev/thesishub/internal/services"
	"github.com/thesishub-dev/thesishub/internal/thread"
	"github.com/thesishub-dev/thesishub/internal/utils"
	"gorm.io/gorm"
)

const maxPdfSize = 10 << 20 // 10MB

type CreateProjectRequest struct {
	Title          string   `form:"title" binding:"required"`
	Abstract       string   `form:"abstract" binding:"required"`
	TechStack      []string `form:"tech_stack"`
	Tags           []string `form:"tags"`
	Year           int      `form:"year"`
	GithubURL      string   `form:"github_url"`
	SupervisorID   uint     `form:"supervisor_id"`
	SupervisorName string   `form:"supervisor_name"`
}

type UpdateProjectRequest struct {
	Title          *string   `json:"title"`
	Abstract       *string   `json:"abstract"`
	TechStack      *[]string `json:"tech_stack"`
	Tags           *[]string `json:"tags"`
	Year           *int      `json:"year"`
	GithubURL      *string   `json:"github_url"`
	SupervisorID   *uint     `json:"supervisor_id"`
	SupervisorName *string   `json:"supervisor_name"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ProjectResponse struct {
	ID                   uint             `json:"id"`
	Title                string           `json:"title"`
	Abstract             string           `json:"abstract"`
	TechStack            []string         `json:"tech_stack"`
	Tags                 []string         `json:"tags"`
	AuthorID             uint             `json:"author_id"`
	AuthorName           string           `json:"author_name"`
	Year                 int              `json:"year"`
	GithubURL            string           `json:"github_url,omitempty"`
	PdfURL               string           `json:"pdf_url,omitempty"`
	Status               string           `json:"status"`
	SupervisorID         *uint            `json:"supervisor_id,omitempty"`
	SupervisorName       string           `json:"supervisor_name,omitempty"`
	SupervisorDepartment string           `json:"supervisor_department,omitempty"`
	LikeCount            int              `json:"like_count"`
	ViewCount            int              `json:"view_count"`
	CommentCount         int              `json:"comment_count"`
	Comments             []thread.Comment `json:"comments,omitempty"`
	CreatedAt            string           `json:"created_at"`
}

func decodeStringList(data []byte) []string {
	var values []string
	if len(data) > 0 {
		_ = json.Unmarshal(data, &values)
	}
	return values
}

func projectResponse(project *models.Project, includeComments bool) ProjectResponse {
	resp := ProjectResponse{
		ID:                   project.ID,
		Title:                project.Title,
		Abstract:             project.Abstract,
		TechStack:            decodeStringList(project.TechStack),
		Tags:                 decodeStringList(project.Tags),
		AuthorID:             project.AuthorID,
		AuthorName:           project.AuthorName,
		Year:                 project.Year,
		GithubURL:            project.GithubURL,
		PdfURL:               project.PdfURL,
		Status:               project.Status,
		SupervisorID:         project.SupervisorID,
		SupervisorName:       project.SupervisorName,
		SupervisorDepartment: project.SupervisorDepartment,
		LikeCount:            project.LikeCount,
		ViewCount:            project.ViewCount,
		CommentCount:         project.CommentCount,
		CreatedAt:            project.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	if includeComments {
		if t, err := thread.Parse(project.Comments); err == nil {
			resp.Comments = t
		}
	}

	return resp
}

// fetchSupervisor resolves a verified supervisor reference: the user must
// exist and hold the supervisor role.
func fetchSupervisor(id uint) (*models.User, error) {
	var supervisor models.User

	err := db.DB.Where("id = ? AND role = ?", id, models.RoleSupervisor).First(&supervisor).Error
	if err != nil {
		return nil, err
	}

	return &supervisor, nil
}

func loadProject(ctx *gin.Context) (*models.Project, bool) {
	var project models.Project

	if err := db.DB.Where("id = ?", ctx.Param("id")).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(ctx, http.StatusNotFound, codeNotFound, "Project not found")
		} else {
			log.Printf("Failed to retrieve project: %v", err)
			fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		}
		return nil, false
	}

	return &project, true
}

func CreateProject(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		fail(ctx, http.StatusUnauthorized, codeUnauthenticated, "User not authenticated")
		return
	}

	var body CreateProjectRequest
	if err := ctx.ShouldBind(&body); err != nil {
		fail(ctx, http.StatusBadRequest, codeValidation, "Invalid request")
		return
	}

	title, err := utils.ValidateTitle(body.Title)
	if err != nil {
		fail(ctx, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	if err := utils.ValidateAbstract(body.Abstract); err != nil {
		fail(ctx, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	if err := utils.ValidateGithubURL(body.GithubURL); err != nil {
		fail(ctx, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	techStack, err := json.Marshal(utils.NormalizeList(body.TechStack, utils.MaxTechStack))
	if err != nil {
		fail(ctx, http.StatusBadRequest, codeValidation, "Invalid tech stack")
		return
	}

	tags, err := json.Marshal(utils.NormalizeList(body.Tags, utils.MaxTags))
	if err != nil {
		fail(ctx, http.StatusBadRequest, codeValidation, "Invalid tags")
		return
	}

	project := models.Project{
		Title:      title,
		Abstract:   body.Abstract,
		TechStack:  techStack,
		Tags:       tags,
		AuthorID:   currentUser.ID,
		AuthorName: currentUser.Name,
		Year:       utils.ClampYear(body.Year),
		GithubURL:  strings.TrimSpace(body.GithubURL),
		Status:     models.ProjectStatusPending,
	}

	var supervisor *models.User

	if body.SupervisorID != 0 {
		supervisor, err = fetchSupervisor(body.SupervisorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				fail(ctx, http.StatusBadRequest, codeValidation, "Supervisor not found")
			} else {
				log.Printf("Failed to fetch supervisor: %v", err)
				fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
			}
			return
		}
		project.SupervisorID = &supervisor.ID
		project.SupervisorName = supervisor.Name
		project.SupervisorDepartment = supervisor.Department
	} else if name := strings.TrimSpace(body.SupervisorName); name != "" {
		// Legacy free-text supervisor: display name only, no reference.
		project.SupervisorName = name
	}

	// The PDF goes to object storage first; a failed upload aborts the
	// create so no project row exists without its file.
	if file, err := ctx.FormFile("pdf"); err == nil {
		if file.Size > maxPdfSize {
			fail(ctx, http.StatusBadRequest, codeValidation, "PDF must be at most 10MB")
			return
		}

		opened, err := file.Open()
		if err != nil {
			log.Printf("Failed to open uploaded PDF: %v", err)
			fail(ctx, http.StatusBadRequest, codeValidation, "Invalid PDF upload")
			return
		}
		data, err := io.ReadAll(opened)
		opened.Close()
		if err != nil {
			log.Printf("Failed to read uploaded PDF: %v", err)
			fail(ctx, http.StatusBadRequest, codeValidation, "Invalid PDF upload")
			return
		}

		pdfURL, err := services.UploadFile(data, file.Filename)
		if err != nil {
			log.Printf("Failed to upload PDF to storage: %v", err)
			fail(ctx, http.StatusBadGateway, codeUploadFailed, "Failed to store the attached PDF")
			return
		}
		project.PdfURL = pdfURL
	}

	if err := db.DB.Create(&project).Error; err != nil {
		log.Printf("Failed to create project: %v", err)
		fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	services.Dispatch(services.NotificationInput{
		Recipient: project.AuthorID,
		Type:      models.NotificationSubmission,
		SenderID:  services.SystemSenderID,
		ProjectID: &project.ID,
		Message:   fmt.Sprintf("Your project %q was submitted and is pending review", project.Title),
	})

	if supervisor != nil {
		services.Dispatch(services.NotificationInput{
			Recipient:   supervisor.ID,
			Type:        models.NotificationSubmission,
			SenderID:    currentUser.ID,
			SenderName:  currentUser.Name,
			SenderPhoto: currentUser.PhotoURL,
			ProjectID:   &project.ID,
			Message:     fmt.Sprintf("%s listed you as supervisor on %q", currentUser.Name, project.Title),
		})
	}

	ctx.JSON(http.StatusCreated, gin.H{"project": projectResponse(&project, false)})
}

func ListProjects(ctx *gin.Context) {
	caller := utils.GetCaller(ctx)

	query := db.DB.Model(&models.Project{}).Scopes(policy.VisibleProjects(caller))

	if techStack := strings.TrimSpace(ctx.Query("tech_stack")); techStack != "" {
		query = query.Where("tech_stack::text ILIKE ?", "%"+techStack+"%")
	}

	if author := strings.TrimSpace(ctx.Query("author")); author != "" {
		query = query.Where("author_id = ?", author)
	}

	if year := strings.TrimSpace(ctx.Query("year")); year != "" {
		query = query.Where("year = ?", year)
	}

	if supervisor := strings.TrimSpace(ctx.Query("supervisor")); supervisor != "" {
		query = query.Where("supervisor_id = ?", supervisor)
	}

	if keywords := strings.TrimSpace(ctx.Query("keywords")); keywords != "" {
		pattern := "%" + keywords + "%"
		query = query.Where("title ILIKE ? OR abstract ILIKE ?", pattern, pattern)
	}

	if status := strings.TrimSpace(ctx.Query("status")); status != "" {
		if !models.ValidProjectStatus(status) {
			fail(ctx, http.StatusBadRequest, codeValidation, "Unknown status filter")
			return
		}
		query = query.Where("status = ?", status)
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "12"))
	if limit < 1 {
		limit = 12
	}
	if limit > 50 {
		limit = 50
	}

	// Count before ordering is attached.
	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("Failed to count projects: %v", err)
		fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	switch ctx.DefaultQuery("sort", "newest") {
	case "oldest":
		query = query.Order("created_at asc")
	case "popular":
		query = query.Order("like_count desc, created_at desc")
	case "views":
		query = query.Order("view_count desc, created_at desc")
	default:
		query = query.Order("created_at desc")
	}

	var projects []models.Project
	if err := query.Offset((page - 1) * limit).Limit(limit).Find(&projects).Error; err != nil {
		log.Printf("Failed to retrieve projects: %v", err)
		fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	response := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		response = append(response, projectResponse(&projects[i], false))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"projects": response,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

func GetProject(ctx *gin.Context) {
	project, ok := loadProject(ctx)
	if !ok {
		return
	}

	caller := utils.GetCaller(ctx)

	if !policy.CanView(caller, project) {
		fail(ctx, http.StatusForbidden, codeAccessDenied, "You do not have access to this project")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"project": projectResponse(project, true)})
}

func UpdateProject(ctx *gin.Context) {
	caller := utils.GetCaller(ctx)

	project, ok := loadProject(ctx)
	if !ok {
		return
	}

	if !policy.CanMutate(caller, project) {
		fail(ctx, http.StatusForbidden, codeAccessDenied, "You cannot modify this project")
		return
	}

	var body UpdateProjectRequest
	if err := ctx.BindJSON(&body); err != nil {
		fail(ctx, http.StatusBadRequest, codeValidation, "Invalid request")
		return
	}

	updates := make(map[string]interface{})

	if body.Title != nil {
		title, err := utils.ValidateTitle(*body.Title)
		if err != nil {
			fail(ctx, http.StatusBadRequest, codeValidation, err.Error())
			return
		}
		updates["title"] = title
	}

	if body.Abstract != nil {
		if err := utils.ValidateAbstract(*body.Abstract); err != nil {
			fail(ctx, http.StatusBadRequest, codeValidation, err.Error())
			return
		}
		updates["abstract"] = *body.Abstract
	}

	if body.TechStack != nil {
		encoded, err := json.Marshal(utils.NormalizeList(*body.TechStack, utils.MaxTechStack))
		if err != nil {
			fail(ctx, http.StatusBadRequest, codeValidation, "Invalid tech stack")
			return
		}
		updates["tech_stack"] = encoded
	}

	if body.Tags != nil {
		encoded, err := json.Marshal(utils.NormalizeList(*body.Tags, utils.MaxTags))
		if err != nil {
			fail(ctx, http.StatusBadRequest, codeValidation, "Invalid tags")
			return
		}
		updates["tags"] = encoded
	}

	if body.Year != nil {
		updates["year"] = utils.ClampYear(*body.Year)
	}

	if body.GithubURL != nil {
		if err := utils.ValidateGithubURL(*body.GithubURL); err != nil {
			fail(ctx, http.StatusBadRequest, codeValidation, err.Error())
			return
		}
		updates["github_url"] = strings.TrimSpace(*body.GithubURL)
	}

	if body.SupervisorID != nil {
		if *body.SupervisorID == 0 {
			updates["supervisor_id"] = nil
			updates["supervisor_name"] = ""
			updates["supervisor_department"] = ""
		} else {
			supervisor, err := fetchSupervisor(*body.SupervisorID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					fail(ctx, http.StatusBadRequest, codeValidation, "Supervisor not found")
				} else {
					log.Printf("Failed to fetch supervisor: %v", err)
					fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
				}
				return
			}
			updates["supervisor_id"] = supervisor.ID
			updates["supervisor_name"] = supervisor.Name
			updates["supervisor_department"] = supervisor.Department
		}
	} else if body.SupervisorName != nil {
		name := strings.TrimSpace(*body.SupervisorName)
		if name != project.SupervisorName {
			// A changed display name without a verified reference means
			// unassign, then keep a display-only name.
			updates["supervisor_id"] = nil
			updates["supervisor_department"] = ""
			updates["supervisor_name"] = name
		}
	}

	if len(updates) == 0 {
		fail(ctx, http.StatusBadRequest, codeValidation, "No valid fields to update")
		return
	}

	if err := db.DB.Model(project).Updates(updates).Error; err != nil {
		log.Printf("Failed to update project: %v", err)
		fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	if err := db.DB.First(project, project.ID).Error; err != nil {
		log.Printf("Failed to refresh project: %v", err)
		fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"project": projectResponse(project, false)})
}

func UpdateProjectStatus(ctx *gin.Context) {
	caller := utils.GetCaller(ctx)

	project, ok := loadProject(ctx)
	if !ok {
		return
	}

	if !policy.CanMutate(caller, project) {
		fail(ctx, http.StatusForbidden, codeAccessDenied, "You cannot modify this project")
		return
	}

	var body UpdateStatusRequest
	if err := ctx.BindJSON(&body); err != nil {
		fail(ctx, http.StatusBadRequest, codeValidation, "Invalid request")
		return
	}

	// Only the label is validated; the transition graph is intentionally
	// unconstrained.
	if !models.ValidProjectStatus(body.Status) {
		fail(ctx, http.StatusBadRequest, codeValidation, "Unknown project status")
		return
	}

	previous := project.Status

	if err := db.DB.Model(project).Update("status", body.Status).Error; err != nil {
		log.Printf("Failed to update project status: %v", err)
		fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	if previous == models.ProjectStatusPending && body.Status != models.ProjectStatusPending {
		services.Dispatch(services.NotificationInput{
			Recipient: project.AuthorID,
			Type:      models.NotificationStatusUpdate,
			SenderID:  services.SystemSenderID,
			ProjectID: &project.ID,
			Message:   fmt.Sprintf("Your project %q was %s", project.Title, body.Status),
		})
	}

	project.Status = body.Status

	ctx.JSON(http.StatusOK, gin.H{"project": projectResponse(project, false)})
}

func DeleteProject(ctx *gin.Context) {
	caller := utils.GetCaller(ctx)

	project, ok := loadProject(ctx)
	if !ok {
		return
	}

	if !policy.CanMutate(caller, project) {
		fail(ctx, http.StatusForbidden, codeAccessDenied, "You cannot delete this project")
		return
	}

	// Hard delete. Notifications referencing the project are left behind.
	if err := db.DB.Unscoped().Delete(project).Error; err != nil {
		log.Printf("Failed to delete project: %v", err)
		fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	ctx.Status(http.StatusNoContent)
}
