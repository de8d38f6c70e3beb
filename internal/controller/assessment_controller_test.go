package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/choxos/robass-backend/internal/config"
	"github.com/choxos/robass-backend/internal/middleware"
	"github.com/choxos/robass-backend/internal/model"
	"github.com/choxos/robass-backend/internal/repository"
	"github.com/choxos/robass-backend/internal/service"
	"github.com/choxos/robass-backend/internal/util"
	"github.com/choxos/robass-backend/pkg/database"
	"github.com/choxos/robass-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestServer wires the API routes over an in-memory database, mirroring
// the production route table for the endpoints under test.
func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if logger.Log == nil {
		logger.InitLogger(&config.Config{})
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedToolCatalog(db))

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-test-secret-test-secret"
	cfg.JWT.ExpireTime = time.Hour
	cfg.Storage.Type = util.StorageLocal
	cfg.Storage.LocalPath = t.TempDir()

	userRepo := repository.NewUserRepository(db)
	toolRepo := repository.NewToolRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	studyRepo := repository.NewStudyRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	exportRepo := repository.NewExportRepository(db)

	storage, err := service.NewStorageProvider(&cfg.Storage)
	require.NoError(t, err)

	authSvc := service.NewAuthService(userRepo, cfg)
	toolSvc := service.NewToolService(toolRepo, nil)
	projectSvc := service.NewProjectService(projectRepo)
	studySvc := service.NewStudyService(studyRepo, projectRepo)
	assessmentSvc := service.NewAssessmentService(assessmentRepo, studyRepo, projectRepo, toolRepo)
	responseSvc := service.NewResponseService(assessmentRepo, toolRepo, assessmentSvc)
	exportSvc := service.NewExportService(exportRepo, assessmentRepo, projectRepo, storage)

	auth := NewAuthController(authSvc)
	tool := NewToolController(toolSvc)
	project := NewProjectController(projectSvc, assessmentSvc)
	study := NewStudyController(studySvc)
	assessment := NewAssessmentController(assessmentSvc, responseSvc)
	export := NewExportController(exportSvc)

	router := gin.New()
	public := router.Group("/api")
	{
		public.POST("/register", auth.Register)
		public.POST("/login", auth.Login)
	}
	catalog := router.Group("/api")
	catalog.Use(middleware.TryAuthMiddleware(cfg))
	{
		catalog.GET("/tools", tool.ListTools)
		catalog.GET("/tools/:id", tool.GetTool)
	}
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.POST("/projects", project.Create)
		authGroup.POST("/projects/:id/studies", study.Create)
		authGroup.POST("/assessments", assessment.Create)
		authGroup.GET("/assessments/:id", assessment.Get)
		authGroup.POST("/assessments/:id/responses", assessment.SaveResponse)
		authGroup.GET("/assessments/:id/progress", assessment.GetProgress)
		authGroup.PUT("/assessments/:id/domains/:domainId/judgement", assessment.SetJudgement)
		authGroup.POST("/assessments/:id/evaluate", assessment.Evaluate)
		authGroup.GET("/projects/:id/export/csv", export.ExportCSV)

		admin := authGroup.Group("")
		admin.Use(middleware.RoleMiddleware(model.Admin))
		admin.GET("/users", auth.ListUsers)
	}
	return router, db, cfg
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, &env
}

func decodeData(t *testing.T, env *envelope, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func registerAndLogin(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()
	w, _ := doJSON(t, router, http.MethodPost, "/api/register", "", gin.H{
		"name":     "Test Reviewer",
		"email":    email,
		"password": "reviewer-pass",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := doJSON(t, router, http.MethodPost, "/api/login", "", gin.H{
		"email":    email,
		"password": "reviewer-pass",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var login struct {
		Token string `json:"token"`
	}
	decodeData(t, env, &login)
	require.NotEmpty(t, login.Token)
	return login.Token
}

func rob2Tool(t *testing.T, router *gin.Engine, token string) *model.AssessmentTool {
	t.Helper()
	w, env := doJSON(t, router, http.MethodGet, "/api/tools", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tools []model.AssessmentTool
	decodeData(t, env, &tools)
	for i := range tools {
		if tools[i].Name == model.ToolRoB2Parallel {
			return &tools[i]
		}
	}
	t.Fatal("rob2_parallel missing from catalog")
	return nil
}

func setupAssessment(t *testing.T, router *gin.Engine, token string) (*model.Assessment, *model.AssessmentTool) {
	t.Helper()
	w, env := doJSON(t, router, http.MethodPost, "/api/projects", token, gin.H{
		"name": "Statin trials review",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var project model.Project
	decodeData(t, env, &project)

	w, env = doJSON(t, router, http.MethodPost, "/api/projects/"+project.ID+"/studies", token, gin.H{
		"title":   "Smith 2019",
		"authors": "Smith J, Doe A",
		"journal": "BMJ",
		"year":    2019,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var study model.Study
	decodeData(t, env, &study)

	tool := rob2Tool(t, router, token)

	w, env = doJSON(t, router, http.MethodPost, "/api/assessments", token, gin.H{
		"studyId": study.ID,
		"toolId":  tool.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var a model.Assessment
	decodeData(t, env, &a)
	return &a, tool
}

func TestAutoSaveFlow(t *testing.T) {
	router, _, _ := newTestServer(t)
	token := registerAndLogin(t, router, "flow@example.org")
	a, tool := setupAssessment(t, router, token)

	base := fmt.Sprintf("/api/assessments/%d", a.ID)
	domain := tool.Domains[0]
	question := domain.Questions[0]

	// Fresh assessment starts at zero progress.
	w, env := doJSON(t, router, http.MethodGet, base+"/progress", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var progress service.Progress
	decodeData(t, env, &progress)
	assert.Equal(t, int64(0), progress.Answered)
	assert.Equal(t, int64(22), progress.Total)

	w, env = doJSON(t, router, http.MethodPost, base+"/responses", token, gin.H{
		"kind":       "response",
		"domainId":   domain.ID,
		"questionId": question.ID,
		"value":      "yes",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var saved struct {
		Success bool `json:"success"`
	}
	decodeData(t, env, &saved)
	assert.True(t, saved.Success)

	w, env = doJSON(t, router, http.MethodPost, base+"/responses", token, gin.H{
		"kind":       "justification",
		"domainId":   domain.ID,
		"questionId": question.ID,
		"value":      "central randomisation",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, router, http.MethodGet, base+"/progress", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, env, &progress)
	assert.Equal(t, int64(1), progress.Answered)

	// Reload returns both fields of the saved response.
	w, env = doJSON(t, router, http.MethodGet, base, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail model.Assessment
	decodeData(t, env, &detail)
	require.Len(t, detail.Domains, 5)

	found := false
	for _, da := range detail.Domains {
		for _, resp := range da.Responses {
			if resp.QuestionID == question.ID {
				found = true
				assert.Equal(t, "yes", resp.Response)
				assert.Equal(t, "central randomisation", resp.Justification)
			}
		}
	}
	assert.True(t, found)
}

func TestAutoSaveValidationAndAuth(t *testing.T) {
	router, _, _ := newTestServer(t)
	token := registerAndLogin(t, router, "validation@example.org")
	a, tool := setupAssessment(t, router, token)

	base := fmt.Sprintf("/api/assessments/%d", a.ID)
	domain := tool.Domains[0]
	question := domain.Questions[0]

	w, _ := doJSON(t, router, http.MethodPost, base+"/responses", "", gin.H{
		"kind": "response", "domainId": domain.ID, "questionId": question.ID, "value": "yes",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, router, http.MethodPost, base+"/responses", token, gin.H{
		"kind": "rating", "domainId": domain.ID, "questionId": question.ID, "value": "yes",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, router, http.MethodPost, base+"/responses", token, gin.H{
		"kind": "response", "domainId": domain.ID, "questionId": question.ID, "value": "maybe",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing tag fails binding before the service runs.
	w, _ = doJSON(t, router, http.MethodPost, base+"/responses", token, gin.H{
		"domainId": domain.ID, "questionId": question.ID, "value": "yes",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Another reviewer's assessment reads as missing.
	other := registerAndLogin(t, router, "other@example.org")
	w, _ = doJSON(t, router, http.MethodPost, base+"/responses", other, gin.H{
		"kind": "response", "domainId": domain.ID, "questionId": question.ID, "value": "yes",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = doJSON(t, router, http.MethodGet, base, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateAssessmentIdempotent(t *testing.T) {
	router, _, _ := newTestServer(t)
	token := registerAndLogin(t, router, "idempotent@example.org")
	a, tool := setupAssessment(t, router, token)

	w, env := doJSON(t, router, http.MethodPost, "/api/assessments", token, gin.H{
		"studyId": a.StudyID,
		"toolId":  tool.ID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var again model.Assessment
	decodeData(t, env, &again)
	assert.Equal(t, a.ID, again.ID)
}

func TestJudgementEndpoint(t *testing.T) {
	router, _, _ := newTestServer(t)
	token := registerAndLogin(t, router, "judgement@example.org")
	a, tool := setupAssessment(t, router, token)

	path := fmt.Sprintf("/api/assessments/%d/domains/%d/judgement", a.ID, tool.Domains[0].ID)

	w, env := doJSON(t, router, http.MethodPut, path, token, gin.H{
		"biasRating": "low",
		"rationale":  "adequate concealment",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var da model.DomainAssessment
	decodeData(t, env, &da)
	assert.Equal(t, model.BiasLow, da.BiasRating)

	w, _ = doJSON(t, router, http.MethodPut, path, token, gin.H{
		"biasRating": "moderate",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
