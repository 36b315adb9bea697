package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/preschool-adp-api/internal/models"
	appErrors "github.com/noah-isme/preschool-adp-api/pkg/errors"
)

// roleTokens maps bearer tokens straight to roles.
type roleTokens struct{}

func (roleTokens) ValidateToken(token string) (*models.JWTClaims, error) {
	role := models.UserRole(token)
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return &models.JWTClaims{UserID: "user-" + token, Role: role}, nil
}

func buildRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	scheduleHandler, _, _ := newScheduleHandlerForTest()
	RegisterRoutes(router.Group("/api/v1"), roleTokens{}, Handlers{
		Options:     NewOptionHandler(&optionServiceMock{}),
		Curriculum:  NewCurriculumHandler(nil),
		Assignments: NewAssignmentHandler(&assignmentServiceMock{}),
		Schedule:    scheduleHandler,
		Exports:     NewExportHandler(&exportJobServiceMock{}, nil),
	})
	return router
}

func call(router http.Handler, method, path, token string) int {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRoutesEnforceRoles(t *testing.T) {
	router := buildRouter()

	t.Run("options readable by parents", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, call(router, http.MethodGet, "/api/v1/options/mood", string(models.RoleParent)))
	})

	t.Run("option writes need admin", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, call(router, http.MethodDelete, "/api/v1/options/item/opt-1", string(models.RoleTeacher)))
		assert.Equal(t, http.StatusNoContent, call(router, http.MethodDelete, "/api/v1/options/item/opt-1", string(models.RoleAdmin)))
	})

	t.Run("due items for staff only", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, call(router, http.MethodGet, "/api/v1/classes/class-1/curriculum/due?date=2025-01-01", string(models.RoleTeacher)))
		assert.Equal(t, http.StatusForbidden, call(router, http.MethodGet, "/api/v1/classes/class-1/curriculum/due", string(models.RoleParent)))
	})

	t.Run("token required", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, call(router, http.MethodGet, "/api/v1/options/mood", ""))
		assert.Equal(t, http.StatusUnauthorized, call(router, http.MethodGet, "/api/v1/options/mood", "nobody"))
	})

	t.Run("download is public but signed", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, call(router, http.MethodGet, "/api/v1/exports/download/stale", ""))
	})
}
