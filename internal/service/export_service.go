package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/choxos/robass-backend/internal/model"
	"github.com/choxos/robass-backend/internal/repository"
	"github.com/choxos/robass-backend/internal/util"
	"github.com/choxos/robass-backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var summaryHeader = []string{
	"Study Title", "Authors", "Year", "Journal", "DOI", "PMID",
	"Assessment Tool", "Assessor", "Status", "Overall Bias",
	"Domain", "Domain Rating", "Domain Rationale", "Last Updated",
}

var detailedHeader = []string{
	"Study Title", "Authors", "Year", "Journal", "Assessment Tool",
	"Domain", "Domain Rating", "Question Number", "Question Text",
	"Response", "Justification", "Assessor", "Date",
}

var biasLabels = map[string]string{
	model.BiasLow:           "Low",
	model.BiasSomeConcerns:  "Some concerns",
	model.BiasHigh:          "High",
	model.BiasVeryHigh:      "Very high",
	model.BiasNoInformation: "No information",
}

var responseLabels = map[string]string{
	model.ResponseYes:           "Yes",
	model.ResponseProbablyYes:   "Probably yes",
	model.ResponseProbablyNo:    "Probably no",
	model.ResponseNo:            "No",
	model.ResponseNoInformation: "No information",
	model.ResponseNotApplicable: "Not applicable",
}

// ExportService produces CSV exports and the rating matrix for a project.
type ExportService struct {
	ExportRepo     *repository.ExportRepository
	AssessmentRepo *repository.AssessmentRepository
	ProjectRepo    *repository.ProjectRepository
	Storage        StorageProvider
}

func NewExportService(exportRepo *repository.ExportRepository, assessmentRepo *repository.AssessmentRepository, projectRepo *repository.ProjectRepository, storage StorageProvider) *ExportService {
	return &ExportService{
		ExportRepo:     exportRepo,
		AssessmentRepo: assessmentRepo,
		ProjectRepo:    projectRepo,
		Storage:        storage,
	}
}

func (s *ExportService) authorize(projectID string, claims *util.Claims) error {
	project, err := s.ProjectRepo.FindByID(projectID)
	if err == gorm.ErrRecordNotFound {
		return util.ErrProjectNotFound
	} else if err != nil {
		return err
	}
	if project.UserID != claims.UserID && claims.Role != model.Admin {
		return util.ErrProjectNotFound
	}
	return nil
}

// ExportCSV renders the project's assessments as CSV, records the export and
// writes a copy through the storage provider. The returned filename is for
// the Content-Disposition header.
func (s *ExportService) ExportCSV(ctx context.Context, projectID string, claims *util.Claims, detailed bool) ([]byte, string, error) {
	if err := s.authorize(projectID, claims); err != nil {
		return nil, "", err
	}

	assessments, err := s.AssessmentRepo.ListByProject(projectID)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	exportType := util.ExportTypeCSV
	if detailed {
		exportType = util.ExportTypeCSVDetailed
		err = writeDetailedRows(w, assessments)
	} else {
		err = writeSummaryRows(w, assessments)
	}
	if err != nil {
		return nil, "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("robass_%s_%s_%s.csv", shortID(projectID), exportType, time.Now().Format("20060102_150405"))

	record := &model.AssessmentExport{
		ProjectID:  projectID,
		ExportType: exportType,
		FilePath:   filename,
	}
	if err := s.ExportRepo.Create(record); err != nil {
		return nil, "", err
	}
	if _, err := s.Storage.Upload(ctx, filename, bytes.NewReader(buf.Bytes()), int64(buf.Len()), "text/csv"); err != nil {
		// The download still succeeds when the archive copy fails.
		logger.Log.Warn("Export archive write failed", zap.String("file", filename), zap.Error(err))
	}

	return buf.Bytes(), filename, nil
}

func writeSummaryRows(w *csv.Writer, assessments []model.Assessment) error {
	if err := w.Write(summaryHeader); err != nil {
		return err
	}
	for _, a := range assessments {
		domains := orderedDomains(a.Domains)
		for _, da := range domains {
			domainName := ""
			if da.Domain != nil {
				domainName = da.Domain.Name
			}
			row := []string{
				studyField(a.Study, func(st *model.Study) string { return st.Title }),
				studyField(a.Study, func(st *model.Study) string { return st.Authors }),
				studyYear(a.Study),
				studyField(a.Study, func(st *model.Study) string { return st.Journal }),
				studyField(a.Study, func(st *model.Study) string { return st.DOI }),
				studyField(a.Study, func(st *model.Study) string { return st.PMID }),
				toolName(a.Tool),
				a.AssessorName,
				a.Status,
				biasLabels[a.OverallBias],
				domainName,
				biasLabels[da.BiasRating],
				da.Rationale,
				a.UpdatedAt.Format(util.TimeFormat),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeDetailedRows(w *csv.Writer, assessments []model.Assessment) error {
	if err := w.Write(detailedHeader); err != nil {
		return err
	}
	for _, a := range assessments {
		for _, da := range orderedDomains(a.Domains) {
			domainName := ""
			if da.Domain != nil {
				domainName = da.Domain.Name
			}
			for _, resp := range orderedResponses(da.Responses) {
				number, text := "", ""
				if resp.Question != nil {
					number = strconv.Itoa(resp.Question.Order)
					text = resp.Question.QuestionText
				}
				row := []string{
					studyField(a.Study, func(st *model.Study) string { return st.Title }),
					studyField(a.Study, func(st *model.Study) string { return st.Authors }),
					studyYear(a.Study),
					studyField(a.Study, func(st *model.Study) string { return st.Journal }),
					toolName(a.Tool),
					domainName,
					biasLabels[da.BiasRating],
					number,
					text,
					responseLabels[resp.Response],
					resp.Justification,
					a.AssessorName,
					resp.UpdatedAt.Format(util.DateFormat),
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// MatrixRow is one study/tool line of the rating matrix, the shape external
// plotting tools consume.
type MatrixRow struct {
	StudyTitle string            `json:"studyTitle"`
	Tool       string            `json:"tool"`
	Status     string            `json:"status"`
	Overall    string            `json:"overall"`
	Domains    map[string]string `json:"domains"`
}

func (s *ExportService) RatingMatrix(projectID string, claims *util.Claims) ([]MatrixRow, error) {
	if err := s.authorize(projectID, claims); err != nil {
		return nil, err
	}

	assessments, err := s.AssessmentRepo.ListByProject(projectID)
	if err != nil {
		return nil, err
	}

	rows := make([]MatrixRow, 0, len(assessments))
	for _, a := range assessments {
		row := MatrixRow{
			StudyTitle: studyField(a.Study, func(st *model.Study) string { return st.Title }),
			Tool:       toolName(a.Tool),
			Status:     a.Status,
			Overall:    a.OverallBias,
			Domains:    make(map[string]string),
		}
		for _, da := range a.Domains {
			if da.Domain == nil {
				continue
			}
			row.Domains[da.Domain.ShortName] = da.BiasRating
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *ExportService) History(projectID string, claims *util.Claims) ([]model.AssessmentExport, error) {
	if err := s.authorize(projectID, claims); err != nil {
		return nil, err
	}
	return s.ExportRepo.ListByProject(projectID)
}

func orderedDomains(das []model.DomainAssessment) []model.DomainAssessment {
	out := append([]model.DomainAssessment(nil), das...)
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].Domain, out[j].Domain
		if di == nil || dj == nil {
			return out[i].DomainID < out[j].DomainID
		}
		return di.Order < dj.Order
	})
	return out
}

func orderedResponses(responses []model.QuestionResponse) []model.QuestionResponse {
	out := append([]model.QuestionResponse(nil), responses...)
	sort.Slice(out, func(i, j int) bool {
		qi, qj := out[i].Question, out[j].Question
		if qi == nil || qj == nil {
			return out[i].QuestionID < out[j].QuestionID
		}
		return qi.Order < qj.Order
	})
	return out
}

func studyField(study *model.Study, get func(*model.Study) string) string {
	if study == nil {
		return ""
	}
	return get(study)
}

func studyYear(study *model.Study) string {
	if study == nil || study.Year == nil {
		return ""
	}
	return strconv.Itoa(*study.Year)
}

func toolName(tool *model.AssessmentTool) string {
	if tool == nil {
		return ""
	}
	return tool.DisplayName
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
