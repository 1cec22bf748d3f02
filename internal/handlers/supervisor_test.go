package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thesishub-dev/thesishub/db"
	"github.com/thesishub-dev/thesishub/internal/middleware"
	"github.com/thesishub-dev/thesishub/internal/models"
	"github.com/thesishub-dev/thesishub/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestDB swaps the global handle for an in-memory store scoped to the
// current test.
func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, gdb.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectLike{},
		&models.ProjectBookmark{},
		&models.ProjectView{},
		&models.SupervisionRequest{},
		&models.Notification{},
	))

	db.DB = gdb
}

func createTestUser(t *testing.T, name, email, role string) models.User {
	t.Helper()

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "irrelevant",
		Role:         role,
	}
	require.NoError(t, db.DB.Create(&user).Error)

	return user
}

func createTestProject(t *testing.T, author models.User) models.Project {
	t.Helper()

	project := models.Project{
		Title:      "Distributed Cache Benchmark",
		Abstract:   "A comparison of eviction strategies under mixed workloads.",
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Year:       2025,
		Status:     models.ProjectStatusPending,
	}
	require.NoError(t, db.DB.Create(&project).Error)

	return project
}

func authedContext(t *testing.T, user models.User, method string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, "/", &buf)
	req.Header.Set("Content-Type", "application/json")
	ctx.Request = req

	ctx.Set(types.ContextUserKey, middleware.AuthenticatedUser{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Role:     user.Role,
		IsAdmin:  user.IsAdmin,
		PhotoURL: user.PhotoURL,
	})

	return ctx, recorder
}

func errorCode(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))

	return body.Code
}

func TestSendRequestDuplicatePendingTriple(t *testing.T) {
	setupTestDB(t)

	student := createTestUser(t, "Aisha", "aisha@students.university.edu", models.RoleStudent)
	supervisor := createTestUser(t, "Dr. Okafor", "okafor@university.edu", models.RoleSupervisor)
	project := createTestProject(t, student)

	body := SendRequestBody{SupervisorID: supervisor.ID, ProjectID: &project.ID, Message: "Please supervise"}

	ctx, recorder := authedContext(t, student, http.MethodPost, body)
	SendRequest(ctx)
	require.Equal(t, http.StatusCreated, recorder.Code)

	ctx, recorder = authedContext(t, student, http.MethodPost, body)
	SendRequest(ctx)
	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, codeDuplicate, errorCode(t, recorder))

	// A request for a different project of the same pair is not a duplicate.
	other := createTestProject(t, student)
	ctx, recorder = authedContext(t, student, http.MethodPost,
		SendRequestBody{SupervisorID: supervisor.ID, ProjectID: &other.ID})
	SendRequest(ctx)
	assert.Equal(t, http.StatusCreated, recorder.Code)
}

func TestSendRequestProjectAlreadyAssigned(t *testing.T) {
	setupTestDB(t)

	student := createTestUser(t, "Aisha", "aisha@students.university.edu", models.RoleStudent)
	assigned := createTestUser(t, "Dr. Lee", "lee@university.edu", models.RoleSupervisor)
	supervisor := createTestUser(t, "Dr. Okafor", "okafor@university.edu", models.RoleSupervisor)

	project := createTestProject(t, student)
	require.NoError(t, db.DB.Model(&project).Update("supervisor_id", assigned.ID).Error)

	ctx, recorder := authedContext(t, student, http.MethodPost,
		SendRequestBody{SupervisorID: supervisor.ID, ProjectID: &project.ID})
	SendRequest(ctx)

	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, codeAlreadyAssigned, errorCode(t, recorder))
}

func TestRespondApproveAssignsSupervisorTriple(t *testing.T) {
	setupTestDB(t)

	student := createTestUser(t, "Aisha", "aisha@students.university.edu", models.RoleStudent)
	supervisor := createTestUser(t, "Dr. Okafor", "okafor@university.edu", models.RoleSupervisor)
	project := createTestProject(t, student)

	request := models.SupervisionRequest{
		StudentID:    student.ID,
		SupervisorID: supervisor.ID,
		ProjectID:    &project.ID,
		Status:       models.RequestStatusPending,
	}
	require.NoError(t, db.DB.Create(&request).Error)

	// The assignment must carry the responder's profile as it stands at
	// response time, not as it stood when the request was sent.
	require.NoError(t, db.DB.Model(&supervisor).Updates(map[string]interface{}{
		"name":       "Dr. Adaeze Okafor",
		"department": "Computer Science",
	}).Error)
	supervisor.Name = "Dr. Adaeze Okafor"

	ctx, recorder := authedContext(t, supervisor, http.MethodPost,
		RespondRequestBody{Action: "approve", Response: "Happy to supervise"})
	ctx.Params = gin.Params{{Key: "id", Value: fmt.Sprint(request.ID)}}
	RespondToRequest(ctx)

	require.Equal(t, http.StatusOK, recorder.Code)

	var updated models.Project
	require.NoError(t, db.DB.First(&updated, project.ID).Error)
	require.NotNil(t, updated.SupervisorID)
	assert.Equal(t, supervisor.ID, *updated.SupervisorID)
	assert.Equal(t, "Dr. Adaeze Okafor", updated.SupervisorName)
	assert.Equal(t, "Computer Science", updated.SupervisorDepartment)

	var responded models.SupervisionRequest
	require.NoError(t, db.DB.First(&responded, request.ID).Error)
	assert.Equal(t, models.RequestStatusApproved, responded.Status)
	assert.Equal(t, "Happy to supervise", responded.Response)
	require.NotNil(t, responded.RespondedAt)

	var reloaded models.User
	require.NoError(t, db.DB.First(&reloaded, supervisor.ID).Error)
	var supervised []uint
	require.NoError(t, json.Unmarshal(reloaded.SupervisedProjectIDs, &supervised))
	assert.Contains(t, supervised, project.ID)
}

func TestRespondToRequestIsTerminal(t *testing.T) {
	setupTestDB(t)

	student := createTestUser(t, "Aisha", "aisha@students.university.edu", models.RoleStudent)
	supervisor := createTestUser(t, "Dr. Okafor", "okafor@university.edu", models.RoleSupervisor)

	request := models.SupervisionRequest{
		StudentID:    student.ID,
		SupervisorID: supervisor.ID,
		Status:       models.RequestStatusPending,
	}
	require.NoError(t, db.DB.Create(&request).Error)

	ctx, recorder := authedContext(t, supervisor, http.MethodPost, RespondRequestBody{Action: "reject"})
	ctx.Params = gin.Params{{Key: "id", Value: fmt.Sprint(request.ID)}}
	RespondToRequest(ctx)
	require.Equal(t, http.StatusOK, recorder.Code)

	ctx, recorder = authedContext(t, supervisor, http.MethodPost, RespondRequestBody{Action: "approve"})
	ctx.Params = gin.Params{{Key: "id", Value: fmt.Sprint(request.ID)}}
	RespondToRequest(ctx)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, codeInvalidState, errorCode(t, recorder))
}

func TestRespondToRequestWrongSupervisor(t *testing.T) {
	setupTestDB(t)

	student := createTestUser(t, "Aisha", "aisha@students.university.edu", models.RoleStudent)
	supervisor := createTestUser(t, "Dr. Okafor", "okafor@university.edu", models.RoleSupervisor)
	other := createTestUser(t, "Dr. Lee", "lee@university.edu", models.RoleSupervisor)

	request := models.SupervisionRequest{
		StudentID:    student.ID,
		SupervisorID: supervisor.ID,
		Status:       models.RequestStatusPending,
	}
	require.NoError(t, db.DB.Create(&request).Error)

	ctx, recorder := authedContext(t, other, http.MethodPost, RespondRequestBody{Action: "approve"})
	ctx.Params = gin.Params{{Key: "id", Value: fmt.Sprint(request.ID)}}
	RespondToRequest(ctx)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, codeAccessDenied, errorCode(t, recorder))
}

func TestListSupervisorsCapacityFilter(t *testing.T) {
	setupTestDB(t)

	student := createTestUser(t, "Aisha", "aisha@students.university.edu", models.RoleStudent)

	full := createTestUser(t, "Dr. Lee", "lee@university.edu", models.RoleSupervisor)
	require.NoError(t, db.DB.Model(&full).Update("max_students", 1).Error)

	available := createTestUser(t, "Dr. Okafor", "okafor@university.edu", models.RoleSupervisor)
	require.NoError(t, db.DB.Model(&available).Update("max_students", 2).Error)

	project := createTestProject(t, student)
	require.NoError(t, db.DB.Model(&project).Update("supervisor_id", full.ID).Error)

	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/?capacity=available", nil)
	ListSupervisors(ctx)

	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Supervisors []types.ProfileResponse `json:"supervisors"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Len(t, body.Supervisors, 1)
	assert.Equal(t, available.ID, body.Supervisors[0].ID)
}

func TestResponseMessageSpelling(t *testing.T) {
	assert.Equal(t, "Dr. Okafor approved your supervision request",
		responseMessage("Dr. Okafor", models.RequestStatusApproved))
	assert.Equal(t, "Dr. Okafor rejected your supervision request",
		responseMessage("Dr. Okafor", models.RequestStatusRejected))
}
