package model

// Project groups the studies of one systematic review.
// swagger:model Project
type Project struct {
	UUIDBase
	UserID      uint    `gorm:"index;type:bigint unsigned" json:"userId"`
	User        *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Name        string  `gorm:"size:200;not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Studies     []Study `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"studies,omitempty"`
}

func (Project) TableName() string {
	return "projects"
}

// Study is one primary study under assessment within a project.
// swagger:model Study
type Study struct {
	BaseModel
	ProjectID   string `gorm:"index;uniqueIndex:uq_project_study_title,priority:1;type:varchar(36)" json:"projectId"`
	Title       string `gorm:"size:500;uniqueIndex:uq_project_study_title,priority:2;not null" json:"title"`
	Authors     string `gorm:"size:500" json:"authors"`
	Journal     string `gorm:"size:200" json:"journal"`
	Year        *int   `json:"year,omitempty"`
	DOI         string `gorm:"size:100" json:"doi"`
	PMID        string `gorm:"size:20" json:"pmid"`
	StudyDesign string `gorm:"size:100" json:"studyDesign"`
	Notes       string `gorm:"type:text" json:"notes"`
}

func (Study) TableName() string {
	return "studies"
}
