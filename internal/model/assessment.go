package model

// Assessment status values.
const (
	StatusDraft     = "draft"
	StatusCompleted = "completed"
	StatusReviewed  = "reviewed"
)

// Bias ratings for a domain judgement.
const (
	BiasLow           = "low"
	BiasSomeConcerns  = "some_concerns"
	BiasHigh          = "high"
	BiasVeryHigh      = "very_high"
	BiasNoInformation = "no_information"
)

// ValidBiasRating reports whether v is a recognised bias rating.
func ValidBiasRating(v string) bool {
	switch v {
	case BiasLow, BiasSomeConcerns, BiasHigh, BiasVeryHigh, BiasNoInformation:
		return true
	}
	return false
}

// Assessment is one application of a tool to one study. Unique per
// (study, tool); deleting the study cascades down to responses.
// swagger:model Assessment
type Assessment struct {
	BaseModel
	StudyID       uint               `gorm:"index;uniqueIndex:uq_study_tool,priority:1;type:bigint unsigned" json:"studyId"`
	Study         *Study             `gorm:"foreignKey:StudyID" json:"study,omitempty"`
	ToolID        uint               `gorm:"index;uniqueIndex:uq_study_tool,priority:2;type:bigint unsigned" json:"toolId"`
	Tool          *AssessmentTool    `gorm:"foreignKey:ToolID" json:"tool,omitempty"`
	AssessorName  string             `gorm:"size:100" json:"assessorName"`
	AssessorEmail string             `gorm:"size:100" json:"assessorEmail"`
	Status        string             `gorm:"size:20;default:'draft'" json:"status"` // draft, completed, reviewed
	OverallBias   string             `gorm:"size:50" json:"overallBias"`
	Notes         string             `gorm:"type:text" json:"notes"`
	Domains       []DomainAssessment `gorm:"foreignKey:AssessmentID;constraint:OnDelete:CASCADE" json:"domains,omitempty"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// DomainAssessment carries the bias judgement for one domain of one
// assessment. Unique per (assessment, domain).
// swagger:model DomainAssessment
type DomainAssessment struct {
	BaseModel
	AssessmentID uint               `gorm:"index;uniqueIndex:uq_assessment_domain,priority:1;type:bigint unsigned" json:"assessmentId"`
	DomainID     uint               `gorm:"index;uniqueIndex:uq_assessment_domain,priority:2;type:bigint unsigned" json:"domainId"`
	Domain       *Domain            `gorm:"foreignKey:DomainID" json:"domain,omitempty"`
	BiasRating   string             `gorm:"size:20" json:"biasRating"` // low, some_concerns, high, very_high, no_information
	Rationale    string             `gorm:"type:text" json:"rationale"`
	Responses    []QuestionResponse `gorm:"foreignKey:DomainAssessmentID;constraint:OnDelete:CASCADE" json:"responses,omitempty"`
}

func (DomainAssessment) TableName() string {
	return "domain_assessments"
}

// QuestionResponse holds the saved answer for one signalling question.
// Unique per (domain assessment, question); writes overwrite in place,
// no history is kept.
// swagger:model QuestionResponse
type QuestionResponse struct {
	BaseModel
	DomainAssessmentID uint                `gorm:"index;uniqueIndex:uq_da_question,priority:1;type:bigint unsigned" json:"domainAssessmentId"`
	QuestionID         uint                `gorm:"index;uniqueIndex:uq_da_question,priority:2;type:bigint unsigned" json:"questionId"`
	Question           *SignallingQuestion `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	Response           string              `gorm:"size:20" json:"response"`
	Justification      string              `gorm:"type:text" json:"justification"`
}

func (QuestionResponse) TableName() string {
	return "question_responses"
}

// AssessmentExport records one produced export artifact for a project.
// swagger:model AssessmentExport
type AssessmentExport struct {
	BaseModel
	ProjectID  string `gorm:"index;type:varchar(36)" json:"projectId"`
	ExportType string `gorm:"size:20" json:"exportType"` // csv, csv_detailed
	FilePath   string `gorm:"size:500" json:"filePath"`
}

func (AssessmentExport) TableName() string {
	return "assessment_exports"
}
