package model

// Tool names follow the published instrument identifiers.
const (
	ToolRoB2Parallel  = "rob2_parallel"
	ToolRoB2Cluster   = "rob2_cluster"
	ToolRoB2Crossover = "rob2_crossover"
	ToolROBINSI       = "robins_i"
	ToolROBINSE       = "robins_e"
	ToolAMSTAR2       = "amstar2"
	ToolROBIS         = "robis"
)

// AssessmentTool is one risk-of-bias instrument (RoB 2, ROBINS-E, ...).
// swagger:model AssessmentTool
type AssessmentTool struct {
	BaseModel
	Name        string   `gorm:"size:50;unique;not null" json:"name"`
	DisplayName string   `gorm:"size:200;not null" json:"displayName"`
	Description string   `gorm:"type:text" json:"description"`
	Version     string   `gorm:"size:20;default:'1.0'" json:"version"`
	IsActive    bool     `gorm:"default:true" json:"isActive"`
	Domains     []Domain `gorm:"foreignKey:ToolID" json:"domains,omitempty"`
}

func (AssessmentTool) TableName() string {
	return "assessment_tools"
}

// Domain is one bias domain within a tool's questionnaire.
// swagger:model Domain
type Domain struct {
	BaseModel
	ToolID      uint                 `gorm:"index;uniqueIndex:uq_tool_domain_name,priority:1;type:bigint unsigned" json:"toolId"`
	Name        string               `gorm:"size:200;uniqueIndex:uq_tool_domain_name,priority:2;not null" json:"name"`
	ShortName   string               `gorm:"size:50;not null" json:"shortName"`
	Description string               `gorm:"type:text" json:"description"`
	Order       int                  `gorm:"default:1" json:"order"`
	IsOverall   bool                 `gorm:"default:false" json:"isOverall"`
	Questions   []SignallingQuestion `gorm:"foreignKey:DomainID" json:"questions,omitempty"`
}

func (Domain) TableName() string {
	return "domains"
}

// Response categories for signalling questions.
const (
	ResponseYes           = "yes"
	ResponseProbablyYes   = "probably_yes"
	ResponseProbablyNo    = "probably_no"
	ResponseNo            = "no"
	ResponseNoInformation = "no_information"
	ResponseNotApplicable = "not_applicable"
)

// ValidResponse reports whether v is a recognised response category.
func ValidResponse(v string) bool {
	switch v {
	case ResponseYes, ResponseProbablyYes, ResponseProbablyNo,
		ResponseNo, ResponseNoInformation, ResponseNotApplicable:
		return true
	}
	return false
}

// SignallingQuestion is a single yes/no/unclear-style item within a domain.
// swagger:model SignallingQuestion
type SignallingQuestion struct {
	BaseModel
	DomainID     uint   `gorm:"index;uniqueIndex:uq_domain_question_order,priority:1;type:bigint unsigned" json:"domainId"`
	QuestionText string `gorm:"type:text;not null" json:"questionText"`
	Order        int    `gorm:"default:1;uniqueIndex:uq_domain_question_order,priority:2" json:"order"`
	Guidance     string `gorm:"type:text" json:"guidance"`
	IsRequired   bool   `gorm:"default:true" json:"isRequired"`
}

func (SignallingQuestion) TableName() string {
	return "signalling_questions"
}
