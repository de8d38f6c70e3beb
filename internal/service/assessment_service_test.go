package service

import (
	"testing"

	"github.com/choxos/robass-backend/internal/model"
	"github.com/choxos/robass-backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lowRiskRoB2 holds answers that judge every RoB 2 domain low risk, keyed by
// domain order in catalog question order.
var lowRiskRoB2 = map[int][]string{
	1: {model.ResponseYes, model.ResponseYes, model.ResponseNo},
	2: {model.ResponseNo, model.ResponseNo, model.ResponseNo, model.ResponseNotApplicable, model.ResponseNotApplicable, model.ResponseYes, model.ResponseNotApplicable},
	3: {model.ResponseYes, model.ResponseNotApplicable, model.ResponseNotApplicable, model.ResponseNotApplicable},
	4: {model.ResponseNo, model.ResponseNo, model.ResponseNo, model.ResponseNotApplicable, model.ResponseNotApplicable},
	5: {model.ResponseYes, model.ResponseNo, model.ResponseNo},
}

// lowRiskROBINSE holds answers that judge every assessed ROBINS-E domain low
// risk, keyed by domain order in catalog question order. Questions on
// branches the decision flow never reaches stay not applicable.
var lowRiskROBINSE = map[int][]string{
	1: {model.ResponseYes, model.ResponseYes, model.ResponseYes, model.ResponseNo, model.ResponseNo},
	2: {model.ResponseYes, model.ResponseNo, model.ResponseNotApplicable, model.ResponseNotApplicable},
	3: {model.ResponseYes, model.ResponseYes, model.ResponseNo, model.ResponseNo, model.ResponseNo, model.ResponseNotApplicable, model.ResponseNotApplicable},
	4: {model.ResponseNo, model.ResponseNotApplicable},
	5: {model.ResponseYes, model.ResponseNotApplicable, model.ResponseNotApplicable, model.ResponseNotApplicable, model.ResponseNotApplicable, model.ResponseNotApplicable, model.ResponseNotApplicable, model.ResponseNotApplicable},
	6: {model.ResponseNo, model.ResponseNo, model.ResponseNotApplicable},
	7: {model.ResponseYes, model.ResponseNotApplicable, model.ResponseNotApplicable, model.ResponseNotApplicable, model.ResponseNotApplicable},
}

func answerDomains(t *testing.T, env *testEnv, claims *util.Claims, assessmentID uint, tool *model.AssessmentTool, answers map[int][]string) {
	t.Helper()
	for _, domain := range tool.Domains {
		values, ok := answers[domain.Order]
		if !ok {
			continue
		}
		require.Len(t, domain.Questions, len(values))
		for i, q := range domain.Questions {
			require.NoError(t, env.response.Save(assessmentID, claims, &SaveRequest{
				Kind: UpdateResponse, DomainID: domain.ID, QuestionID: q.ID, Value: values[i],
			}))
		}
	}
}

func TestCreateFansOutDomainAssessments(t *testing.T) {
	env := newTestEnv(t)
	_, a, _ := env.newRoB2Assessment(t)

	das, err := env.assessments.ListDomainAssessments(a.ID)
	require.NoError(t, err)
	assert.Len(t, das, 5)
	for _, da := range das {
		assert.Empty(t, da.BiasRating)
	}
}

func TestCreateROBINSEFansOutOverallDomain(t *testing.T) {
	env := newTestEnv(t)
	_, claims := env.newUser(t, "robinse@example.org")
	project := env.newProject(t, claims)
	study := env.newStudy(t, claims, project.ID)

	tool, err := env.tool.GetToolByName(model.ToolROBINSE)
	require.NoError(t, err)

	a, created, err := env.assessment.Create(claims, study.ID, tool.ID, "Test Reviewer", "")
	require.NoError(t, err)
	require.True(t, created)

	das, err := env.assessments.ListDomainAssessments(a.ID)
	require.NoError(t, err)
	assert.Len(t, das, 8)

	overall := 0
	for _, da := range das {
		require.NotNil(t, da.Domain)
		if da.Domain.IsOverall {
			overall++
		}
	}
	assert.Equal(t, 1, overall)
}

func TestCreateDuplicateReturnsExisting(t *testing.T) {
	env := newTestEnv(t)
	claims, a, tool := env.newRoB2Assessment(t)

	again, created, err := env.assessment.Create(claims, a.StudyID, tool.ID, "Someone Else", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, a.ID, again.ID)

	das, err := env.assessments.ListDomainAssessments(a.ID)
	require.NoError(t, err)
	assert.Len(t, das, 5)
}

func TestCreateForeignStudyIsHidden(t *testing.T) {
	env := newTestEnv(t)
	_, a, tool := env.newRoB2Assessment(t)

	_, intruder := env.newUser(t, "intruder2@example.org")
	_, _, err := env.assessment.Create(intruder, a.StudyID, tool.ID, "Intruder", "")
	assert.ErrorIs(t, err, util.ErrStudyNotFound)
}

func TestSetJudgementUpserts(t *testing.T) {
	env := newTestEnv(t)
	claims, a, tool := env.newRoB2Assessment(t)
	domain := tool.Domains[0]

	da, err := env.assessment.SetJudgement(a.ID, domain.ID, claims, model.BiasSomeConcerns, "unclear concealment")
	require.NoError(t, err)
	assert.Equal(t, model.BiasSomeConcerns, da.BiasRating)
	assert.Equal(t, "unclear concealment", da.Rationale)

	da, err = env.assessment.SetJudgement(a.ID, domain.ID, claims, model.BiasLow, "central pharmacy randomisation")
	require.NoError(t, err)
	assert.Equal(t, model.BiasLow, da.BiasRating)

	stored, err := env.assessments.FindDomainAssessment(a.ID, domain.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BiasLow, stored.BiasRating)
	assert.Equal(t, "central pharmacy randomisation", stored.Rationale)
}

func TestSetJudgementRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	claims, a, tool := env.newRoB2Assessment(t)

	_, err := env.assessment.SetJudgement(a.ID, tool.Domains[0].ID, claims, "moderate", "")
	assert.ErrorIs(t, err, util.ErrInvalidBiasRating)

	otherTool, err := env.tool.GetToolByName(model.ToolROBINSE)
	require.NoError(t, err)
	otherDomains, err := env.tools.ListDomains(otherTool.ID)
	require.NoError(t, err)
	_, err = env.assessment.SetJudgement(a.ID, otherDomains[0].ID, claims, model.BiasLow, "")
	assert.ErrorIs(t, err, util.ErrDomainNotFound)
}

func TestEvaluateRoB2AllLow(t *testing.T) {
	env := newTestEnv(t)
	claims, a, tool := env.newRoB2Assessment(t)

	answerDomains(t, env, claims, a.ID, tool, lowRiskRoB2)

	progress, err := env.response.GetProgress(a.ID, claims)
	require.NoError(t, err)
	require.Equal(t, int64(22), progress.Answered)

	result, err := env.assessment.Evaluate(a.ID, claims)
	require.NoError(t, err)
	require.NotNil(t, result.Overall)
	assert.Equal(t, model.BiasLow, string(result.Overall.Risk))
	assert.Len(t, result.Domains, 5)
	for _, j := range result.Domains {
		assert.Equal(t, model.BiasLow, string(j.Risk))
	}

	stored, err := env.assessments.FindByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BiasLow, stored.OverallBias)

	das, err := env.assessments.ListDomainAssessments(a.ID)
	require.NoError(t, err)
	for _, da := range das {
		assert.Equal(t, model.BiasLow, da.BiasRating)
		assert.NotEmpty(t, da.Rationale)
	}
}

func TestEvaluateRoB2PartialSkipsOverall(t *testing.T) {
	env := newTestEnv(t)
	claims, a, tool := env.newRoB2Assessment(t)

	answerDomains(t, env, claims, a.ID, tool, map[int][]string{1: lowRiskRoB2[1]})

	result, err := env.assessment.Evaluate(a.ID, claims)
	require.NoError(t, err)
	assert.Nil(t, result.Overall)
	assert.Len(t, result.Domains, 1)

	stored, err := env.assessments.FindByID(a.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.OverallBias)
}

func TestEvaluateROBINSE(t *testing.T) {
	env := newTestEnv(t)
	_, claims := env.newUser(t, "robinse2@example.org")
	project := env.newProject(t, claims)
	study := env.newStudy(t, claims, project.ID)

	tool, err := env.tool.GetToolByName(model.ToolROBINSE)
	require.NoError(t, err)
	a, _, err := env.assessment.Create(claims, study.ID, tool.ID, "Test Reviewer", "")
	require.NoError(t, err)

	domains, err := env.tools.ListDomains(tool.ID)
	require.NoError(t, err)

	// Overall cannot be derived until every assessed domain is judged.
	_, err = env.assessment.Evaluate(a.ID, claims)
	assert.ErrorIs(t, err, util.ErrIncompleteJudgements)

	for _, domain := range domains {
		if domain.IsOverall {
			continue
		}
		rating := model.BiasLow
		if domain.Order == 1 {
			rating = model.BiasSomeConcerns
		}
		_, err := env.assessment.SetJudgement(a.ID, domain.ID, claims, rating, "")
		require.NoError(t, err)
	}

	result, err := env.assessment.Evaluate(a.ID, claims)
	require.NoError(t, err)
	require.NotNil(t, result.Overall)
	assert.Equal(t, model.BiasSomeConcerns, string(result.Overall.Risk))

	stored, err := env.assessments.FindByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BiasSomeConcerns, stored.OverallBias)

	das, err := env.assessments.ListDomainAssessments(a.ID)
	require.NoError(t, err)
	for _, da := range das {
		if da.Domain != nil && da.Domain.IsOverall {
			assert.Equal(t, model.BiasSomeConcerns, da.BiasRating)
		}
	}
}

func TestEvaluateROBINSEComputesFromResponses(t *testing.T) {
	env := newTestEnv(t)
	claims, a, tool := env.newROBINSEAssessment(t)

	var first *model.Domain
	for i := range tool.Domains {
		if tool.Domains[i].Order == 1 {
			first = &tool.Domains[i]
		}
	}
	require.NotNil(t, first)

	// A stale manual judgement is replaced once the questionnaire is complete.
	_, err := env.assessment.SetJudgement(a.ID, first.ID, claims, model.BiasHigh, "gut feeling")
	require.NoError(t, err)

	answerDomains(t, env, claims, a.ID, tool, lowRiskROBINSE)

	result, err := env.assessment.Evaluate(a.ID, claims)
	require.NoError(t, err)
	require.NotNil(t, result.Overall)
	assert.Equal(t, model.BiasLow, string(result.Overall.Risk))
	assert.Len(t, result.Domains, 8)

	stored, err := env.assessments.FindDomainAssessment(a.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BiasLow, stored.BiasRating)
	assert.NotEmpty(t, stored.Rationale)

	assessment, err := env.assessments.FindByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BiasLow, assessment.OverallBias)
}

func TestEvaluateROBINSEMixesComputedAndManual(t *testing.T) {
	env := newTestEnv(t)
	claims, a, tool := env.newROBINSEAssessment(t)

	// Domain 6 answered high risk, the rest judged manually.
	answerDomains(t, env, claims, a.ID, tool, map[int][]string{
		6: {model.ResponseYes, model.ResponseNotApplicable, model.ResponseNotApplicable},
	})
	for _, domain := range tool.Domains {
		if domain.IsOverall || domain.Order == 6 {
			continue
		}
		_, err := env.assessment.SetJudgement(a.ID, domain.ID, claims, model.BiasLow, "")
		require.NoError(t, err)
	}

	result, err := env.assessment.Evaluate(a.ID, claims)
	require.NoError(t, err)
	require.NotNil(t, result.Overall)
	assert.Equal(t, model.BiasHigh, string(result.Overall.Risk))

	stored, err := env.assessments.FindByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BiasHigh, stored.OverallBias)
}

func TestDeleteAssessmentAllowsRecreate(t *testing.T) {
	env := newTestEnv(t)
	claims, a, tool := env.newRoB2Assessment(t)

	domain := tool.Domains[0]
	require.NoError(t, env.response.Save(a.ID, claims, &SaveRequest{
		Kind: UpdateResponse, DomainID: domain.ID, QuestionID: domain.Questions[0].ID, Value: model.ResponseYes,
	}))

	require.NoError(t, env.assessment.Delete(a.ID, claims))

	var responses, das int64
	require.NoError(t, env.db.Unscoped().Model(&model.QuestionResponse{}).Count(&responses).Error)
	require.NoError(t, env.db.Unscoped().Model(&model.DomainAssessment{}).Count(&das).Error)
	assert.Zero(t, responses)
	assert.Zero(t, das)

	again, created, err := env.assessment.Create(claims, a.StudyID, tool.ID, "Test Reviewer", "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, again.ID)
}

func TestUpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	claims, a, _ := env.newRoB2Assessment(t)

	_, err := env.assessment.Update(a.ID, claims, "finished", "", "", "")
	assert.ErrorIs(t, err, util.ErrInvalidStatus)

	updated, err := env.assessment.Update(a.ID, claims, model.StatusCompleted, "", "", "all domains judged")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, updated.Status)
	assert.Equal(t, "all domains judged", updated.Notes)
}

func TestGetDetailOrdersDomains(t *testing.T) {
	env := newTestEnv(t)
	claims, a, _ := env.newRoB2Assessment(t)

	detail, err := env.assessment.GetDetail(a.ID, claims)
	require.NoError(t, err)
	require.Len(t, detail.Domains, 5)
	for i, da := range detail.Domains {
		require.NotNil(t, da.Domain)
		assert.Equal(t, i+1, da.Domain.Order)
	}
}

func TestDashboardCounts(t *testing.T) {
	env := newTestEnv(t)
	claims, a, _ := env.newRoB2Assessment(t)

	_, err := env.assessment.Update(a.ID, claims, model.StatusCompleted, "", "", "")
	require.NoError(t, err)

	stats, err := env.assessment.Dashboard(claims.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.ProjectCount)
	assert.Equal(t, int64(1), stats.StudyCount)
	assert.Equal(t, int64(1), stats.AssessmentCount)
	assert.Equal(t, int64(1), stats.CompletedCount)
	require.Len(t, stats.RecentAssessments, 1)
	assert.Equal(t, a.ID, stats.RecentAssessments[0].ID)
}
