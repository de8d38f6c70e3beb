package service

import (
	"testing"

	"github.com/choxos/robass-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteProjectRemovesDescendants(t *testing.T) {
	env := newTestEnv(t)
	claims, a, tool := env.newRoB2Assessment(t)

	domain := tool.Domains[0]
	require.NoError(t, env.response.Save(a.ID, claims, &SaveRequest{
		Kind: UpdateResponse, DomainID: domain.ID, QuestionID: domain.Questions[0].ID, Value: model.ResponseYes,
	}))

	study, err := env.studies.FindByID(a.StudyID)
	require.NoError(t, err)
	require.NoError(t, env.project.Delete(study.ProjectID, claims))

	stats, err := env.assessment.Dashboard(claims.UserID)
	require.NoError(t, err)
	assert.Zero(t, stats.ProjectCount)
	assert.Zero(t, stats.StudyCount)
	assert.Zero(t, stats.AssessmentCount)
	assert.Empty(t, stats.RecentAssessments)

	for _, m := range []interface{}{
		&model.Study{}, &model.Assessment{}, &model.DomainAssessment{}, &model.QuestionResponse{},
	} {
		var count int64
		require.NoError(t, env.db.Unscoped().Model(m).Count(&count).Error)
		assert.Zero(t, count)
	}
}

func TestDeleteStudyAllowsSameTitle(t *testing.T) {
	env := newTestEnv(t)
	_, claims := env.newUser(t, "retitle@example.org")
	project := env.newProject(t, claims)

	study := env.newStudy(t, claims, project.ID)
	require.NoError(t, env.study.Delete(study.ID, claims))

	// Re-registering the same citation in the project must not trip the
	// per-project title uniqueness.
	again := env.newStudy(t, claims, project.ID)
	assert.NotZero(t, again.ID)
}
