package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thesishub-dev/thesishub/db"
	"github.com/thesishub-dev/thesishub/internal/models"
	"github.com/thesishub-dev/thesishub/internal/services"
	"github.com/thesishub-dev/thesishub/internal/types"
	"github.com/thesishub-dev/thesishub/internal/utils"
	"gorm.io/gorm"
)

type SendRequestBody struct {
	SupervisorID uint   `json:"supervisor_id" binding:"required"`
	ProjectID    *uint  `json:"project_id"`
	Message      string `json:"message"`
}

type RespondRequestBody struct {
	Action   string `json:"action" binding:"required"` // "approve" or "reject"
	Response string `json:"response"`
}

type RequestResponse struct {
	ID             uint   `json:"id"`
	StudentID      uint   `json:"student_id"`
	StudentName    string `json:"student_name"`
	SupervisorID   uint   `json:"supervisor_id"`
	SupervisorName string `json:"supervisor_name"`
	ProjectID      *uint  `json:"project_id,omitempty"`
	Message        string `json:"message"`
	Status         string `json:"status"`
	Response       string `json:"response,omitempty"`
	CreatedAt      string `json:"created_at"`
	RespondedAt    string `json:"responded_at,omitempty"`
}

func requestResponse(req *models.SupervisionRequest) RequestResponse {
	resp := RequestResponse{
		ID:             req.ID,
		StudentID:      req.StudentID,
		StudentName:    req.Student.Name,
		SupervisorID:   req.SupervisorID,
		SupervisorName: req.Supervisor.Name,
		ProjectID:      req.ProjectID,
		Message:        req.Message,
		Status:         req.Status,
		Response:       req.Response,
		CreatedAt:      req.CreatedAt.Format(time.RFC3339),
	}
	if req.RespondedAt != nil {
		resp.RespondedAt = req.RespondedAt.Format(time.RFC3339)
	}
	return resp
}

func ListSupervisors(ctx *gin.Context) {
	query := db.DB.Model(&models.User{}).Where("role = ?", models.RoleSupervisor)

	if department := strings.TrimSpace(ctx.Query("department")); department != "" {
		query = query.Where("department ILIKE ?", "%"+department+"%")
	}

	if area := strings.TrimSpace(ctx.Query("area")); area != "" {
		query = query.Where("research_areas::text ILIKE ?", "%"+area+"%")
	}

	if keywords := strings.TrimSpace(ctx.Query("keywords")); keywords != "" {
		pattern := "%" + keywords + "%"
		query = query.Where("name ILIKE ? OR bio ILIKE ?", pattern, pattern)
	}

	// capacity=available keeps only supervisors with room under their
	// max-student limit, measured against currently supervised projects.
	if ctx.Query("capacity") == "available" {
		query = query.Where(
			"max_students > (SELECT COUNT(*) FROM projects WHERE projects.supervisor_id = users.id AND projects.deleted_at IS NULL)",
		)
	}

	var supervisors []models.User
	if err := query.Order("name asc").Find(&supervisors).Error; err != nil {
		log.Printf("Failed to list supervisors: %v", err)
		fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	response := make([]types.ProfileResponse, 0, len(supervisors))
	for i := range supervisors {
		response = append(response, profileResponse(&supervisors[i]))
	}

	ctx.JSON(http.StatusOK, gin.H{"supervisors": response})
}

func GetSupervisor(ctx *gin.Context) {
	var supervisor models.User

	err := db.DB.Where("id = ? AND role = ?", ctx.Param("id"), models.RoleSupervisor).First(&supervisor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(ctx, http.StatusNotFound, codeNotFound, "Supervisor not found")
		} else {
			log.Printf("Failed to fetch supervisor: %v", err)
			fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		}
		return
	}

	var supervisedCount int64
	if err := db.DB.Model(&models.Project{}).
		Where("supervisor_id = ?", supervisor.ID).Count(&supervisedCount).Error; err != nil {
		log.Printf("Failed to count supervised projects: %v", err)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"supervisor":       profileResponse(&supervisor),
		"supervised_count": supervisedCount,
	})
}

func SupervisorStats(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		fail(ctx, http.StatusUnauthorized, codeUnauthenticated, "User not authenticated")
		return
	}

	if currentUser.Role != models.RoleSupervisor && !currentUser.IsAdmin {
		fail(ctx, http.StatusForbidden, codeAccessDenied, "Supervisor access required")
		return
	}

	var pending, approved, supervised int64

	if err := db.DB.Model(&models.SupervisionRequest{}).
		Where("supervisor_id = ? AND status = ?", currentUser.ID, models.RequestStatusPending).
		Count(&pending).Error; err != nil {
		log.Printf("Failed to count pending requests: %v", err)
	}

	if err := db.DB.Model(&models.SupervisionRequest{}).
		Where("supervisor_id = ? AND status = ?", currentUser.ID, models.RequestStatusApproved).
		Count(&approved).Error; err != nil {
		log.Printf("Failed to count approved requests: %v", err)
	}

	if err := db.DB.Model(&models.Project{}).
		Where("supervisor_id = ?", currentUser.ID).
		Count(&supervised).Error; err != nil {
		log.Printf("Failed to count supervised projects: %v", err)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"pending_requests":    pending,
		"approved_requests":   approved,
		"supervised_projects": supervised,
	})
}

// ListSupervisedProjects is the supervisor's browse view. The status
// filter additionally accepts the legacy completed/archived labels.
func ListSupervisedProjects(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		fail(ctx, http.StatusUnauthorized, codeUnauthenticated, "User not authenticated")
		return
	}

	if currentUser.Role != models.RoleSupervisor && !currentUser.IsAdmin {
		fail(ctx, http.StatusForbidden, codeAccessDenied, "Supervisor access required")
		return
	}

	query := db.DB.Model(&models.Project{}).Where("supervisor_id = ?", currentUser.ID)

	if status := strings.TrimSpace(ctx.Query("status")); status != "" {
		if !models.ValidBrowseStatus(status) {
			fail(ctx, http.StatusBadRequest, codeValidation, "Unknown status filter")
			return
		}
		query = query.Where("status = ?", status)
	}

	var projects []models.Project
	if err := query.Order("created_at desc").Find(&projects).Error; err != nil {
		log.Printf("Failed to list supervised projects: %v", err)
		fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	response := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		response = append(response, projectResponse(&projects[i], false))
	}

	ctx.JSON(http.StatusOK, gin.H{"projects": response})
}

func SendRequest(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		fail(ctx, http.StatusUnauthorized, codeUnauthenticated, "User not authenticated")
		return
	}

	var body SendRequestBody
	if err := ctx.BindJSON(&body); err != nil {
		fail(ctx, http.StatusBadRequest, codeValidation, "Invalid request")
		return
	}

	supervisor, err := fetchSupervisor(body.SupervisorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(ctx, http.StatusNotFound, codeNotFound, "Supervisor not found")
		} else {
			log.Printf("Failed to fetch supervisor: %v", err)
			fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		}
		return
	}

	if body.ProjectID != nil {
		var project models.Project

		if err := db.DB.First(&project, *body.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				fail(ctx, http.StatusNotFound, codeNotFound, "Project not found")
			} else {
				log.Printf("Failed to fetch project: %v", err)
				fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
			}
			return
		}

		if project.AuthorID != currentUser.ID {
			fail(ctx, http.StatusForbidden, codeAccessDenied, "You can only request supervision for your own project")
			return
		}

		if project.SupervisorID != nil {
			fail(ctx, http.StatusConflict, codeAlreadyAssigned, "Project already has a supervisor")
			return
		}
	}

	// One pending request per (student, supervisor, project) triple.
	duplicate := db.DB.Model(&models.SupervisionRequest{}).
		Where("student_id = ? AND supervisor_id = ? AND status = ?",
			currentUser.ID, body.SupervisorID, models.RequestStatusPending)

	if body.ProjectID != nil {
		duplicate = duplicate.Where("project_id = ?", *body.ProjectID)
	} else {
		duplicate = duplicate.Where("project_id IS NULL")
	}

	var count int64
	if err := duplicate.Count(&count).Error; err != nil {
		log.Printf("Failed to check for duplicate request: %v", err)
		fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}
	if count > 0 {
		fail(ctx, http.StatusConflict, codeDuplicate, "A pending request to this supervisor already exists")
		return
	}

	request := models.SupervisionRequest{
		StudentID:    currentUser.ID,
		SupervisorID: body.SupervisorID,
		ProjectID:    body.ProjectID,
		Message:      strings.TrimSpace(body.Message),
		Status:       models.RequestStatusPending,
	}

	if err := db.DB.Create(&request).Error; err != nil {
		log.Printf("Failed to create supervision request: %v", err)
		fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	services.Dispatch(services.NotificationInput{
		Recipient:   supervisor.ID,
		Type:        models.NotificationRequest,
		SenderID:    currentUser.ID,
		SenderName:  currentUser.Name,
		SenderPhoto: currentUser.PhotoURL,
		ProjectID:   body.ProjectID,
		Message:     fmt.Sprintf("%s requested your supervision", currentUser.Name),
	})

	request.Student = models.User{Model: gorm.Model{ID: currentUser.ID}, Name: currentUser.Name}
	request.Supervisor = *supervisor

	ctx.JSON(http.StatusCreated, gin.H{"request": requestResponse(&request)})
}

// ListRequests returns the caller's inbox (supervisors) or outbox
// (students).
func ListRequests(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		fail(ctx, http.StatusUnauthorized, codeUnauthenticated, "User not authenticated")
		return
	}

	query := db.DB.Model(&models.SupervisionRequest{}).
		Preload("Student").Preload("Supervisor")

	if currentUser.Role == models.RoleSupervisor {
		query = query.Where("supervisor_id = ?", currentUser.ID)
	} else {
		query = query.Where("student_id = ?", currentUser.ID)
	}

	if status := strings.TrimSpace(ctx.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}

	var requests []models.SupervisionRequest
	if err := query.Order("created_at desc").Find(&requests).Error; err != nil {
		log.Printf("Failed to list supervision requests: %v", err)
		fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	response := make([]RequestResponse, 0, len(requests))
	for i := range requests {
		response = append(response, requestResponse(&requests[i]))
	}

	ctx.JSON(http.StatusOK, gin.H{"requests": response})
}

// appendSupervisedProject adds id to the supervisor's supervised-project
// set, skipping duplicates.
func appendSupervisedProject(tx *gorm.DB, supervisor *models.User, projectID uint) error {
	var ids []uint
	if len(supervisor.SupervisedProjectIDs) > 0 {
		if err := json.Unmarshal(supervisor.SupervisedProjectIDs, &ids); err != nil {
			ids = nil
		}
	}

	for _, id := range ids {
		if id == projectID {
			return nil
		}
	}

	encoded, err := json.Marshal(append(ids, projectID))
	if err != nil {
		return err
	}

	return tx.Model(supervisor).Update("supervised_project_ids", encoded).Error
}

func RespondToRequest(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		fail(ctx, http.StatusUnauthorized, codeUnauthenticated, "User not authenticated")
		return
	}

	var body RespondRequestBody
	if err := ctx.BindJSON(&body); err != nil {
		fail(ctx, http.StatusBadRequest, codeValidation, "Invalid request")
		return
	}

	if body.Action != "approve" && body.Action != "reject" {
		fail(ctx, http.StatusBadRequest, codeValidation, "Action must be approve or reject")
		return
	}

	var request models.SupervisionRequest

	if err := db.DB.Preload("Student").First(&request, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(ctx, http.StatusNotFound, codeNotFound, "Request not found")
		} else {
			log.Printf("Failed to fetch supervision request: %v", err)
			fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		}
		return
	}

	if request.SupervisorID != currentUser.ID {
		fail(ctx, http.StatusForbidden, codeAccessDenied, "Only the addressed supervisor can respond")
		return
	}

	// Terminal once responded.
	if request.Status != models.RequestStatusPending {
		fail(ctx, http.StatusBadRequest, codeInvalidState, "Request has already been responded to")
		return
	}

	newStatus := models.RequestStatusRejected
	if body.Action == "approve" {
		newStatus = models.RequestStatusApproved
	}

	now := time.Now().UTC()

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&request).Updates(map[string]interface{}{
			"status":       newStatus,
			"response":     strings.TrimSpace(body.Response),
			"responded_at": now,
		}).Error; err != nil {
			return err
		}

		if newStatus != models.RequestStatusApproved || request.ProjectID == nil {
			return nil
		}

		var project models.Project
		if err := tx.First(&project, *request.ProjectID).Error; err != nil {
			return err
		}

		if project.SupervisorID != nil && *project.SupervisorID != currentUser.ID {
			return errAlreadyAssigned
		}

		// The denormalized triple reflects the responder's current profile.
		var responder models.User
		if err := tx.First(&responder, currentUser.ID).Error; err != nil {
			return err
		}

		if err := tx.Model(&project).Updates(map[string]interface{}{
			"supervisor_id":         responder.ID,
			"supervisor_name":       responder.Name,
			"supervisor_department": responder.Department,
		}).Error; err != nil {
			return err
		}

		return appendSupervisedProject(tx, &responder, project.ID)
	})

	if err != nil {
		if errors.Is(err, errAlreadyAssigned) {
			fail(ctx, http.StatusConflict, codeAlreadyAssigned, "Project was assigned to another supervisor")
			return
		}
		log.Printf("Failed to respond to supervision request: %v", err)
		fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	services.Dispatch(services.NotificationInput{
		Recipient:   request.StudentID,
		Type:        models.NotificationResponse,
		SenderID:    currentUser.ID,
		SenderName:  currentUser.Name,
		SenderPhoto: currentUser.PhotoURL,
		ProjectID:   request.ProjectID,
		Message:     responseMessage(currentUser.Name, newStatus),
	})

	request.Status = newStatus
	request.Response = strings.TrimSpace(body.Response)
	request.RespondedAt = &now
	request.Supervisor = models.User{Model: gorm.Model{ID: currentUser.ID}, Name: currentUser.Name}

	ctx.JSON(http.StatusOK, gin.H{"request": requestResponse(&request)})
}

var errAlreadyAssigned = errors.New("project already assigned")

func responseMessage(supervisorName, status string) string {
	if status == models.RequestStatusApproved {
		return fmt.Sprintf("%s approved your supervision request", supervisorName)
	}
	return fmt.Sprintf("%s rejected your supervision request", supervisorName)
}
