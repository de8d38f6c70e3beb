package engine

import "fmt"

// ROBINS-E for observational studies of exposures. Each domain function
// takes the answers to its signalling questions in catalog order and applies
// the published decision flow. Where the flow distinguishes strong from weak
// answers, Yes and No carry the strong sense and ProbablyYes and ProbablyNo
// the weak sense. NotApplicable marks questions on branches the flow never
// reached; a reached question left at NotApplicable resolves to the flow's
// missing-answer default.

// ROBINSEDomains is the number of assessed ROBINS-E domains feeding the
// overall judgement. The eighth catalog domain holds the overall result
// itself and is not an input.
const ROBINSEDomains = 7

// ROBINSEDomainQuestions maps domain order to the number of signalling
// questions the algorithm consumes.
var ROBINSEDomainQuestions = map[int]int{1: 5, 2: 4, 3: 7, 4: 2, 5: 8, 6: 3, 7: 5}

// ROBINSEResult carries per-domain judgements keyed by domain order. Overall
// is nil until all seven domains could be judged.
type ROBINSEResult struct {
	Domains map[int]Judgement `json:"domains"`
	Overall *Judgement        `json:"overall,omitempty"`
}

// Confounding judges domain 1, bias due to confounding.
func Confounding(appropriateMethod, controlledImportant, measuredValidly, postExposureVars, negativeControls Answer) (Judgement, error) {
	if err := validate([]Answer{appropriateMethod, controlledImportant, measuredValidly, postExposureVars, negativeControls}, true); err != nil {
		return Judgement{}, err
	}

	if is(appropriateMethod, No, ProbablyNo, NoInformation) {
		return Judgement{High, "analysis method could not adequately control for confounding"}, nil
	}
	if !is(appropriateMethod, Yes, ProbablyYes) {
		return Judgement{High, "confounding control could not be established"}, nil
	}

	switch {
	case is(controlledImportant, No, NoInformation):
		return Judgement{High, "important confounding factors were not controlled for"}, nil
	case controlledImportant == ProbablyNo:
		if is(postExposureVars, Yes, ProbablyYes) {
			return Judgement{VeryHigh, "incomplete confounding control combined with adjustment for post-exposure variables"}, nil
		}
	case is(controlledImportant, Yes, ProbablyYes):
		if is(measuredValidly, No, NoInformation) {
			return Judgement{High, "confounding factors were not measured validly and reliably"}, nil
		}
	default:
		return Judgement{High, "confounding control could not be established"}, nil
	}

	if is(negativeControls, Yes, ProbablyYes) {
		return Judgement{SomeConcerns, "negative controls suggest residual uncontrolled confounding"}, nil
	}
	return Judgement{Low, "confounding controlled, subject to the caveat inherent to observational designs"}, nil
}

// ExposureMeasurement judges domain 2, bias in measurement of the exposure.
func ExposureMeasurement(characterised, errorPresent, differentialError, nonDifferentialError Answer) (Judgement, error) {
	if err := validate([]Answer{characterised, errorPresent, differentialError, nonDifferentialError}, true); err != nil {
		return Judgement{}, err
	}

	// The measured exposure fails to characterise the exposure of interest,
	// so the judgement rests on the nature of the mismeasurement.
	if characterised == No {
		if nonDifferentialError == Yes {
			return Judgement{High, "important non-differential error in measurement of the exposure"}, nil
		}
		if is(nonDifferentialError, No, ProbablyNo) && differentialError == Yes {
			return Judgement{High, "exposure measurement error differential with respect to the outcome"}, nil
		}
		return Judgement{SomeConcerns, "exposure poorly characterised with uncertain measurement impact"}, nil
	}

	if is(characterised, Yes, ProbablyYes, ProbablyNo, NoInformation) {
		switch {
		case is(errorPresent, No, ProbablyNo):
			return Judgement{Low, "exposure measured without appreciable error"}, nil
		case errorPresent == Yes:
			return Judgement{VeryHigh, "severe error in measurement of the exposure"}, nil
		default:
			return Judgement{SomeConcerns, "possible error in measurement of the exposure"}, nil
		}
	}

	return Judgement{SomeConcerns, "exposure measurement raises some concerns"}, nil
}

// Selection judges domain 3, bias from selection of participants into the
// study and from the timing of follow-up. A timing pathway and a selection
// pathway are judged separately and then combined; uncorrected problems in
// either are weighed against corrections and sensitivity analyses.
func Selection(timingCoincide, effectConstant, selectionAfterStart, selectionByExposure, selectionByOutcome, analysisCorrected, sensitivityAnalyses Answer) (Judgement, error) {
	answers := []Answer{timingCoincide, effectConstant, selectionAfterStart, selectionByExposure, selectionByOutcome, analysisCorrected, sensitivityAnalyses}
	if err := validate(answers, true); err != nil {
		return Judgement{}, err
	}

	timing := selectionTiming(timingCoincide, effectConstant)
	selection := selectionPathway(selectionAfterStart, selectionByExposure, selectionByOutcome)

	if timing == Low && selection == Low {
		return Judgement{Low, "follow-up timing adequate and selection unrelated to exposure or outcome"}, nil
	}
	if timing != High && selection != High {
		return Judgement{SomeConcerns, "some concerns in the timing or selection pathway"}, nil
	}

	if is(analysisCorrected, Yes, ProbablyYes) {
		return Judgement{SomeConcerns, "selection biases present but corrected in the analysis"}, nil
	}
	switch {
	case is(sensitivityAnalyses, Yes, ProbablyYes):
		return Judgement{SomeConcerns, "sensitivity analyses demonstrate minimal impact of selection bias"}, nil
	case sensitivityAnalyses == ProbablyNo:
		return Judgement{High, "uncorrected selection bias with weak evidence against minimal impact"}, nil
	case sensitivityAnalyses == No:
		return Judgement{VeryHigh, "uncorrected selection bias with strong evidence of substantial impact"}, nil
	default:
		return Judgement{High, "uncorrected selection bias"}, nil
	}
}

// selectionTiming judges the timing pathway. Both branches of the first
// question converge, so the judgement rests on whether the exposure effect
// is plausibly constant over time.
func selectionTiming(timingCoincide, effectConstant Answer) Risk {
	switch {
	case is(effectConstant, Yes, ProbablyYes):
		return Low
	case is(effectConstant, No, ProbablyNo):
		return High
	default:
		return SomeConcerns
	}
}

func selectionPathway(afterStart, byExposure, byOutcome Answer) Risk {
	switch {
	case is(afterStart, Yes, ProbablyYes):
		return High
	case afterStart == NoInformation:
		return SomeConcerns
	case is(afterStart, No, ProbablyNo):
		switch {
		case byExposure == NoInformation:
			return SomeConcerns
		case is(byExposure, No, ProbablyNo):
			if is(byOutcome, No, ProbablyNo) {
				return Low
			}
			if is(byOutcome, Yes, ProbablyYes) {
				return High
			}
		case is(byExposure, Yes, ProbablyYes):
			if is(byOutcome, Yes, ProbablyYes) {
				return High
			}
			if is(byOutcome, No, ProbablyNo, NoInformation) {
				return SomeConcerns
			}
		}
	}
	return SomeConcerns
}

// PostExposure judges domain 4, bias due to post-exposure interventions.
func PostExposure(interventionsPresent, analysisCorrected Answer) (Judgement, error) {
	if err := validate([]Answer{interventionsPresent, analysisCorrected}, true); err != nil {
		return Judgement{}, err
	}

	if is(interventionsPresent, No, ProbablyNo) {
		return Judgement{Low, "no post-exposure interventions influenced by the exposure"}, nil
	}
	if is(interventionsPresent, Yes, ProbablyYes, NoInformation) {
		if is(analysisCorrected, Yes, ProbablyYes) {
			return Judgement{SomeConcerns, "post-exposure interventions present but corrected in the analysis"}, nil
		}
		return Judgement{High, "post-exposure interventions not corrected in the analysis"}, nil
	}
	return Judgement{SomeConcerns, "post-exposure interventions raise some concerns"}, nil
}

// Missingness judges domain 5, bias due to missing data. The flow splits on
// whether the analysis was complete-case or imputation-based, and most
// branches end at the final question, the evidence that the result was not
// biased by missing data.
func Missingness(completeData, completeCase, exclusionRelated, predictorsIncluded, imputedValues, appropriateImputation, appropriateMethod, evidenceNotBiased Answer) (Judgement, error) {
	answers := []Answer{completeData, completeCase, exclusionRelated, predictorsIncluded, imputedValues, appropriateImputation, appropriateMethod, evidenceNotBiased}
	if err := validate(answers, true); err != nil {
		return Judgement{}, err
	}

	if is(completeData, Yes, ProbablyYes) {
		return Judgement{Low, "data reasonably complete for all participants"}, nil
	}
	if !is(completeData, No, ProbablyNo, NoInformation) {
		return Judgement{SomeConcerns, "completeness of the data could not be established"}, nil
	}

	switch {
	case is(completeCase, Yes, ProbablyYes, NoInformation):
		switch {
		case is(exclusionRelated, No, ProbablyNo):
			if predictorsIncluded == Yes {
				return Judgement{SomeConcerns, "predictors of missingness included in the analysis model"}, nil
			}
			return missingnessEvidence(evidenceNotBiased, false), nil
		case exclusionRelated == Yes:
			return missingnessEvidence(evidenceNotBiased, true), nil
		case is(exclusionRelated, ProbablyYes, NoInformation):
			return missingnessEvidence(evidenceNotBiased, false), nil
		default:
			return Judgement{High, "exclusion from the analysis could not be assessed"}, nil
		}
	case is(completeCase, No, ProbablyNo):
		switch {
		case is(imputedValues, Yes, ProbablyYes):
			return missingnessEvidence(evidenceNotBiased, !is(appropriateImputation, Yes, ProbablyYes)), nil
		case is(imputedValues, No, ProbablyNo):
			return missingnessEvidence(evidenceNotBiased, !is(appropriateMethod, Yes, ProbablyYes)), nil
		}
	}
	return Judgement{High, "handling of missing data could not be assessed"}, nil
}

// missingnessEvidence resolves the evidence question. When the preceding
// pathway already indicated a severe problem, evidence against the result
// being unbiased escalates to very high risk.
func missingnessEvidence(evidence Answer, severe bool) Judgement {
	switch {
	case is(evidence, Yes, ProbablyYes):
		return Judgement{SomeConcerns, "evidence suggests the result was not biased by missing data"}
	case is(evidence, No, ProbablyNo):
		if severe {
			return Judgement{VeryHigh, "evidence confirms substantial bias from missing data"}
		}
		return Judgement{High, "no evidence that the result was unbiased by missing data"}
	case evidence == NoInformation:
		return Judgement{SomeConcerns, "unclear whether the result was biased by missing data"}
	default:
		return Judgement{High, "no assessment of whether the result was biased by missing data"}
	}
}

// OutcomeAscertainment judges domain 6, bias in measurement of the outcome.
func OutcomeAscertainment(measurementDiffers, assessorsAware, assessmentInfluenced Answer) (Judgement, error) {
	if err := validate([]Answer{measurementDiffers, assessorsAware, assessmentInfluenced}, true); err != nil {
		return Judgement{}, err
	}

	if is(measurementDiffers, Yes, ProbablyYes) {
		return Judgement{High, "outcome measurement differed between exposure groups"}, nil
	}
	if is(measurementDiffers, No, ProbablyNo, NoInformation) {
		if is(assessorsAware, No, ProbablyNo) {
			return Judgement{Low, "outcome assessors unaware of exposure history"}, nil
		}
		if is(assessorsAware, Yes, ProbablyYes, NoInformation) {
			switch {
			case is(assessmentInfluenced, No, ProbablyNo):
				return Judgement{Low, "assessors aware but assessment not influenced by exposure knowledge"}, nil
			case is(assessmentInfluenced, ProbablyYes, NoInformation):
				return Judgement{SomeConcerns, "assessment possibly influenced by knowledge of the exposure"}, nil
			case assessmentInfluenced == Yes:
				return Judgement{High, "assessment strongly influenced by knowledge of the exposure"}, nil
			default:
				return Judgement{High, "influence of exposure knowledge on the assessment could not be assessed"}, nil
			}
		}
	}
	return Judgement{SomeConcerns, "outcome ascertainment raises some concerns"}, nil
}

// ReportedResults judges domain 7, bias in selection of the reported result.
// When the result did not follow a pre-specified plan, the judgement counts
// the sets of alternatives the result was likely chosen from.
func ReportedResults(accordingToPlan, multipleExposures, multipleOutcomes, multipleAnalyses, multipleSubgroups Answer) (Judgement, error) {
	if err := validate([]Answer{accordingToPlan, multipleExposures, multipleOutcomes, multipleAnalyses, multipleSubgroups}, true); err != nil {
		return Judgement{}, err
	}

	if is(accordingToPlan, Yes, ProbablyYes) {
		return Judgement{Low, "result reported in accordance with a pre-specified analysis plan"}, nil
	}

	var selected, unclear int
	for _, a := range []Answer{multipleExposures, multipleOutcomes, multipleAnalyses, multipleSubgroups} {
		switch {
		case is(a, Yes, ProbablyYes):
			selected++
		case a == NoInformation:
			unclear++
		case is(a, No, ProbablyNo):
		default:
			return Judgement{SomeConcerns, "selection of the reported result could not be fully assessed"}, nil
		}
	}

	switch {
	case selected == 0 && unclear == 0:
		return Judgement{Low, "no evidence the result was selected from multiple alternatives"}, nil
	case selected == 0:
		return Judgement{SomeConcerns, "unclear whether the result was selected from multiple alternatives"}, nil
	case selected <= 2:
		return Judgement{High, fmt.Sprintf("result likely selected from %d set(s) of alternatives", selected)}, nil
	default:
		return Judgement{VeryHigh, fmt.Sprintf("result likely selected from %d sets of alternatives", selected)}, nil
	}
}

// OverallROBINSE rolls the seven ROBINS-E domain judgements into the overall
// study-level judgement. Domain 1 is confounding; an all-low result still
// carries the standing confounding caveat of observational designs, which is
// reflected in the rationale rather than a separate rating.
func OverallROBINSE(risks [ROBINSEDomains]Risk) (Judgement, error) {
	var veryHigh, high, concerns, low int
	for i, r := range risks {
		switch r {
		case VeryHigh:
			veryHigh++
		case High:
			high++
		case SomeConcerns:
			concerns++
		case Low:
			low++
		default:
			return Judgement{}, fmt.Errorf("domain %d: risk must be low, some_concerns, high or very_high, got %q", i+1, r)
		}
	}

	switch {
	case veryHigh >= 1:
		return Judgement{VeryHigh, fmt.Sprintf("very high risk of bias in %d domain(s)", veryHigh)}, nil
	case high >= 3:
		return Judgement{VeryHigh, fmt.Sprintf("high risk of bias in %d domains, judged additive", high)}, nil
	case high >= 1:
		return Judgement{High, fmt.Sprintf("high risk of bias in %d domain(s)", high)}, nil
	case concerns >= 4:
		return Judgement{High, fmt.Sprintf("some concerns in %d domains, judged additive", concerns)}, nil
	case concerns >= 1:
		return Judgement{SomeConcerns, fmt.Sprintf("some concerns in %d domain(s)", concerns)}, nil
	default:
		return Judgement{Low, "low risk of bias in all domains, except for concerns inherent to uncontrolled confounding"}, nil
	}
}

// EvaluateROBINSE runs the domain algorithms over answers keyed by domain
// order. Domains without a complete answer set are skipped, and the overall
// judgement is produced only when all seven domains were judged.
func EvaluateROBINSE(answers map[int][]Answer) (ROBINSEResult, error) {
	result := ROBINSEResult{Domains: make(map[int]Judgement)}

	for order, want := range ROBINSEDomainQuestions {
		a, ok := answers[order]
		if !ok || len(a) != want {
			continue
		}

		var j Judgement
		var err error
		switch order {
		case 1:
			j, err = Confounding(a[0], a[1], a[2], a[3], a[4])
		case 2:
			j, err = ExposureMeasurement(a[0], a[1], a[2], a[3])
		case 3:
			j, err = Selection(a[0], a[1], a[2], a[3], a[4], a[5], a[6])
		case 4:
			j, err = PostExposure(a[0], a[1])
		case 5:
			j, err = Missingness(a[0], a[1], a[2], a[3], a[4], a[5], a[6], a[7])
		case 6:
			j, err = OutcomeAscertainment(a[0], a[1], a[2])
		case 7:
			j, err = ReportedResults(a[0], a[1], a[2], a[3], a[4])
		}
		if err != nil {
			return ROBINSEResult{}, fmt.Errorf("domain %d: %w", order, err)
		}
		result.Domains[order] = j
	}

	if len(result.Domains) == ROBINSEDomains {
		var risks [ROBINSEDomains]Risk
		for i := 1; i <= ROBINSEDomains; i++ {
			risks[i-1] = result.Domains[i].Risk
		}
		overall, err := OverallROBINSE(risks)
		if err != nil {
			return ROBINSEResult{}, err
		}
		result.Overall = &overall
	}

	return result, nil
}
