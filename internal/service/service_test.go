package service

import (
	"fmt"
	"testing"

	"github.com/choxos/robass-backend/internal/config"
	"github.com/choxos/robass-backend/internal/model"
	"github.com/choxos/robass-backend/internal/repository"
	"github.com/choxos/robass-backend/internal/util"
	"github.com/choxos/robass-backend/pkg/database"
	"github.com/choxos/robass-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	db          *gorm.DB
	cfg         *config.Config
	users       *repository.UserRepository
	tools       *repository.ToolRepository
	projects    *repository.ProjectRepository
	studies     *repository.StudyRepository
	assessments *repository.AssessmentRepository
	exports     *repository.ExportRepository

	auth       *AuthService
	tool       *ToolService
	project    *ProjectService
	study      *StudyService
	assessment *AssessmentService
	response   *ResponseService
	export     *ExportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

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
	cfg.Storage.Type = util.StorageLocal
	cfg.Storage.LocalPath = t.TempDir()

	env := &testEnv{
		db:          db,
		cfg:         cfg,
		users:       repository.NewUserRepository(db),
		tools:       repository.NewToolRepository(db),
		projects:    repository.NewProjectRepository(db),
		studies:     repository.NewStudyRepository(db),
		assessments: repository.NewAssessmentRepository(db),
		exports:     repository.NewExportRepository(db),
	}

	storage, err := NewStorageProvider(&cfg.Storage)
	require.NoError(t, err)

	env.auth = NewAuthService(env.users, cfg)
	env.tool = NewToolService(env.tools, nil)
	env.project = NewProjectService(env.projects)
	env.study = NewStudyService(env.studies, env.projects)
	env.assessment = NewAssessmentService(env.assessments, env.studies, env.projects, env.tools)
	env.response = NewResponseService(env.assessments, env.tools, env.assessment)
	env.export = NewExportService(env.exports, env.assessments, env.projects, storage)

	return env
}

func (e *testEnv) newUser(t *testing.T, email string) (*model.User, *util.Claims) {
	t.Helper()
	user := &model.User{
		Name:     "Test Reviewer",
		Email:    email,
		Password: "reviewer-pass",
	}
	require.NoError(t, e.auth.Register(user))
	return user, &util.Claims{UserID: user.ID, Role: user.Role, Email: user.Email}
}

func (e *testEnv) newProject(t *testing.T, claims *util.Claims) *model.Project {
	t.Helper()
	project, err := e.project.Create(claims.UserID, "Statin trials review", "")
	require.NoError(t, err)
	return project
}

func (e *testEnv) newStudy(t *testing.T, claims *util.Claims, projectID string) *model.Study {
	t.Helper()
	year := 2019
	study := &model.Study{
		ProjectID: projectID,
		Title:     "Smith 2019",
		Authors:   "Smith J, Doe A",
		Journal:   "BMJ",
		Year:      &year,
	}
	require.NoError(t, e.study.Create(claims, study))
	return study
}

// newRoB2Assessment sets up user, project, study and a RoB 2 parallel
// assessment, returning the claims and the fully preloaded tool.
func (e *testEnv) newRoB2Assessment(t *testing.T) (*util.Claims, *model.Assessment, *model.AssessmentTool) {
	t.Helper()
	_, claims := e.newUser(t, fmt.Sprintf("%s@example.org", uuid.New().String()[:8]))
	project := e.newProject(t, claims)
	study := e.newStudy(t, claims, project.ID)

	tool, err := e.tool.GetToolByName(model.ToolRoB2Parallel)
	require.NoError(t, err)
	tool, err = e.tool.GetTool(tool.ID)
	require.NoError(t, err)

	a, created, err := e.assessment.Create(claims, study.ID, tool.ID, "Test Reviewer", "")
	require.NoError(t, err)
	require.True(t, created)
	return claims, a, tool
}

// newROBINSEAssessment is the ROBINS-E counterpart of newRoB2Assessment.
func (e *testEnv) newROBINSEAssessment(t *testing.T) (*util.Claims, *model.Assessment, *model.AssessmentTool) {
	t.Helper()
	_, claims := e.newUser(t, fmt.Sprintf("%s@example.org", uuid.New().String()[:8]))
	project := e.newProject(t, claims)
	study := e.newStudy(t, claims, project.ID)

	tool, err := e.tool.GetToolByName(model.ToolROBINSE)
	require.NoError(t, err)
	tool, err = e.tool.GetTool(tool.ID)
	require.NoError(t, err)

	a, created, err := e.assessment.Create(claims, study.ID, tool.ID, "Test Reviewer", "")
	require.NoError(t, err)
	require.True(t, created)
	return claims, a, tool
}
