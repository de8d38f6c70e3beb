package database

import (
	"log"

	"github.com/choxos/robass-backend/internal/model"

	"gorm.io/gorm"
)

type seedQuestion struct {
	Text     string
	Guidance string
}

type seedDomain struct {
	Name        string
	ShortName   string
	Description string
	Order       int
	IsOverall   bool
	Questions   []seedQuestion
}

type seedTool struct {
	Name        string
	DisplayName string
	Description string
	Domains     []seedDomain
}

var toolCatalog = []seedTool{
	{
		Name:        model.ToolRoB2Parallel,
		DisplayName: "RoB 2 – Parallel Trial",
		Description: "Risk of bias 2.0 tool for randomised parallel-group trials.",
		Domains: []seedDomain{
			{
				Name:        "Bias arising from the randomization process",
				ShortName:   "Randomization",
				Description: "Assess whether the random allocation sequence was adequately generated and concealed.",
				Order:       1,
				Questions: []seedQuestion{
					{Text: "Was the allocation sequence random?"},
					{Text: "Was the allocation sequence concealed until participants were enrolled and assigned?"},
					{Text: "Did baseline differences suggest a problem with the randomization process?"},
				},
			},
			{
				Name:        "Bias due to deviations from intended interventions",
				ShortName:   "Deviations",
				Description: "Assess whether participants and personnel were blinded and deviations affected outcomes.",
				Order:       2,
				Questions: []seedQuestion{
					{Text: "Were participants aware of their assigned intervention during the trial?"},
					{Text: "Were carers and people delivering the interventions aware of participants' assigned intervention?"},
					{Text: "Were there deviations from the intended intervention beyond what would be expected in usual practice?"},
					{Text: "If deviations occurred, were they likely to have affected the outcome?"},
					{Text: "If deviations occurred, were they similar between groups or were they imbalanced between groups?"},
					{Text: "Was an appropriate analysis used to estimate the effect of assignment to intervention?"},
					{Text: "If the analysis was inappropriate, was there potential for a substantial impact on the result?"},
				},
			},
			{
				Name:        "Bias due to missing outcome data",
				ShortName:   "Missing data",
				Description: "Assess completeness of outcome data and whether missingness could bias results.",
				Order:       3,
				Questions: []seedQuestion{
					{Text: "Were outcome data available for all, or nearly all, participants?"},
					{Text: "Is there evidence that the result was not biased by missing outcome data?"},
					{Text: "Could missingness in the outcome depend on its true value?"},
					{Text: "Is it likely that missingness in the outcome depended on its true value?"},
				},
			},
			{
				Name:        "Bias in measurement of the outcome",
				ShortName:   "Measurement",
				Description: "Assess whether outcome assessors were blinded and measurement methods were appropriate.",
				Order:       4,
				Questions: []seedQuestion{
					{Text: "Was the method of measuring the outcome inappropriate?"},
					{Text: "Could measurement or ascertainment of the outcome have differed between intervention groups?"},
					{Text: "Were outcome assessors aware of the intervention received?"},
					{Text: "Could assessment of the outcome have been influenced by knowledge of intervention received?"},
					{Text: "Is it likely that assessment of the outcome was influenced by knowledge of intervention received?"},
				},
			},
			{
				Name:        "Bias in selection of the reported result",
				ShortName:   "Reporting",
				Description: "Assess selective reporting of outcomes.",
				Order:       5,
				Questions: []seedQuestion{
					{Text: "Were the data that produced this result analysed in accordance with a pre-specified analysis plan?"},
					{Text: "Was the selected result likely to have been selected from multiple eligible outcome measurements?"},
					{Text: "Was the selected result likely to have been selected from multiple analyses?"},
				},
			},
		},
	},
	{
		Name:        model.ToolRoB2Cluster,
		DisplayName: "RoB 2 – Cluster Trial",
		Description: "Risk of bias 2.0 tool for cluster-randomised trials.",
	},
	{
		Name:        model.ToolRoB2Crossover,
		DisplayName: "RoB 2 – Crossover Trial",
		Description: "Risk of bias 2.0 tool for randomised crossover trials.",
	},
	{
		Name:        model.ToolROBINSI,
		DisplayName: "ROBINS-I – Observational Studies (Intervention)",
		Description: "Risk of bias in non-randomised studies of interventions.",
	},
	{
		Name:        model.ToolROBINSE,
		DisplayName: "ROBINS-E – Observational Studies (Exposure)",
		Description: "Risk of bias in non-randomised studies of environmental exposures.",
		Domains: []seedDomain{
			{
				Name:        "Risk of bias due to confounding",
				ShortName:   "Confounding",
				Description: "Baseline differences between exposure groups that affect the outcome.",
				Order:       1,
				Questions: []seedQuestion{
					{Text: "Was the analysis method for the main exposure appropriate?", Guidance: "Consider study design, confounding control methods, and statistical approach."},
					{Text: "Were the important confounding factors identified and controlled for?", Guidance: "Consider factors associated with both the exposure and the outcome, measured or not."},
					{Text: "Were confounding factors measured validly and reliably?", Guidance: "Poor measurement leads to residual confounding even when factors are in the model."},
					{Text: "Were any variables that were measured after the start of exposure controlled for?", Guidance: "Adjusting for post-exposure variables can block the causal pathway."},
					{Text: "Do negative controls or other approaches suggest serious uncontrolled confounding?", Guidance: "Negative controls and sensitivity analyses indicate the extent of residual confounding."},
				},
			},
			{
				Name:        "Risk of bias in measurement of exposures",
				ShortName:   "Exposure Measurement",
				Description: "Bias arising from measurement or classification of exposures.",
				Order:       2,
				Questions: []seedQuestion{
					{Text: "Did the measured exposure well characterise the exposure of interest?"},
					{Text: "Was there error in measurement of the exposure at the relevant time point?", Guidance: "Answer yes for severe error, probably yes for modest error."},
					{Text: "Was measurement error in the exposure differential with respect to the outcome?"},
					{Text: "Was there important non-differential measurement error in the exposure?"},
				},
			},
			{
				Name:        "Risk of bias in selection of participants into the study",
				ShortName:   "Selection",
				Description: "Bias arising from selection of participants based on characteristics observed after the start of exposure, and from follow-up timing.",
				Order:       3,
				Questions: []seedQuestion{
					{Text: "Did the start of follow-up and the start of exposure coincide for most participants?"},
					{Text: "Was the effect of the exposure likely to be constant over time?"},
					{Text: "Were participants selected based on characteristics observed after the start of exposure?"},
					{Text: "Were the variables influencing selection likely to be associated with the exposure?"},
					{Text: "Were the variables influencing selection likely to be influenced by the outcome or a cause of the outcome?"},
					{Text: "Did the analysis correct for the selection biases?"},
					{Text: "Do sensitivity analyses demonstrate that the impact of selection bias was minimal?", Guidance: "Answer no when sensitivity analyses show a substantial impact, probably no when the evidence is weaker."},
				},
			},
			{
				Name:        "Risk of bias due to post-exposure interventions",
				ShortName:   "Post-exposure Interventions",
				Description: "Bias arising from interventions or treatments applied after the start of exposure.",
				Order:       4,
				Questions: []seedQuestion{
					{Text: "Were there post-exposure interventions that were influenced by the exposure?"},
					{Text: "Is it likely that the analysis corrected for the effect of these interventions?"},
				},
			},
			{
				Name:        "Risk of bias due to missing data",
				ShortName:   "Missing Data",
				Description: "Bias arising from incomplete outcome, exposure, or confounder data.",
				Order:       5,
				Questions: []seedQuestion{
					{Text: "Were data on the exposure, the outcome and the confounders reasonably complete for all participants?"},
					{Text: "Was the analysis restricted to participants with complete data?"},
					{Text: "Was exclusion from the analysis related to the true value of the outcome?", Guidance: "Answer yes when exclusion was clearly related, probably yes when plausibly related."},
					{Text: "Were predictors of missingness included in the analysis model?", Guidance: "Answer yes only when there is strong evidence the predictors were included."},
					{Text: "Was the analysis based on imputing missing values?"},
					{Text: "Was the imputation approach appropriate?"},
					{Text: "Was the method used to handle missing data otherwise appropriate?"},
					{Text: "Is there evidence that the result was not biased by missing data?"},
				},
			},
			{
				Name:        "Risk of bias in measurement of outcomes",
				ShortName:   "Outcome Measurement",
				Description: "Bias arising from measurement or ascertainment of outcomes.",
				Order:       6,
				Questions: []seedQuestion{
					{Text: "Did measurement or ascertainment of the outcome differ between exposure groups?"},
					{Text: "Were outcome assessors aware of participants' exposure history?"},
					{Text: "Could assessment of the outcome have been influenced by knowledge of the exposure received?", Guidance: "Answer yes when influence was likely, probably yes when merely possible."},
				},
			},
			{
				Name:        "Risk of bias in selection of the reported result",
				ShortName:   "Reported Results",
				Description: "Bias arising from selective reporting of results.",
				Order:       7,
				Questions: []seedQuestion{
					{Text: "Was the result reported in accordance with a pre-specified analysis plan?"},
					{Text: "Was the reported result likely selected from multiple exposure measurements or definitions?"},
					{Text: "Was the reported result likely selected from multiple outcome measurements?"},
					{Text: "Was the reported result likely selected from multiple analyses of the data?"},
					{Text: "Was the reported result likely selected from multiple subgroups?"},
				},
			},
			{
				Name:        "Overall risk of bias",
				ShortName:   "Overall",
				Description: "Overall judgement across all ROBINS-E domains.",
				Order:       8,
				IsOverall:   true,
			},
		},
	},
	{
		Name:        model.ToolAMSTAR2,
		DisplayName: "AMSTAR-2 – Systematic Reviews",
		Description: "Assessing the methodological quality of systematic reviews.",
	},
	{
		Name:        model.ToolROBIS,
		DisplayName: "ROBIS – Systematic Reviews",
		Description: "Risk of bias in systematic reviews.",
	},
}

// SeedToolCatalog idempotently loads the assessment tools, their domains and
// signalling questions. Tools without structured content get a single
// placeholder "Overall" domain so downstream logic keeps working.
func SeedToolCatalog(db *gorm.DB) error {
	for _, st := range toolCatalog {
		var tool model.AssessmentTool
		err := db.Where("name = ?", st.Name).First(&tool).Error
		if err == gorm.ErrRecordNotFound {
			tool = model.AssessmentTool{
				Name:        st.Name,
				DisplayName: st.DisplayName,
				Description: st.Description,
				IsActive:    true,
			}
			if err := db.Create(&tool).Error; err != nil {
				return err
			}
			log.Printf("Seeded assessment tool %s", tool.Name)
		} else if err != nil {
			return err
		}

		domains := st.Domains
		if len(domains) == 0 {
			domains = []seedDomain{{
				Name:        "Overall",
				ShortName:   "Overall",
				Description: "Overall risk of bias domain placeholder.",
				Order:       1,
				IsOverall:   true,
			}}
		}

		for _, sd := range domains {
			var domain model.Domain
			err := db.Where("tool_id = ? AND name = ?", tool.ID, sd.Name).First(&domain).Error
			if err == gorm.ErrRecordNotFound {
				domain = model.Domain{
					ToolID:      tool.ID,
					Name:        sd.Name,
					ShortName:   sd.ShortName,
					Description: sd.Description,
					Order:       sd.Order,
					IsOverall:   sd.IsOverall,
				}
				if err := db.Create(&domain).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}

			for i, sq := range sd.Questions {
				var q model.SignallingQuestion
				err := db.Where("domain_id = ? AND `order` = ?", domain.ID, i+1).First(&q).Error
				if err == gorm.ErrRecordNotFound {
					q = model.SignallingQuestion{
						DomainID:     domain.ID,
						QuestionText: sq.Text,
						Order:        i + 1,
						Guidance:     sq.Guidance,
						IsRequired:   true,
					}
					if err := db.Create(&q).Error; err != nil {
						return err
					}
				} else if err != nil {
					return err
				}
			}
		}
	}
	return nil
}
