package engine

import "fmt"

// RoB 2 for parallel randomised trials. Each domain function takes the
// answers to its signalling questions in catalog order and applies the
// Cochrane decision table for that domain.

// RoB2DomainQuestions maps domain order to the number of signalling
// questions the algorithm consumes.
var RoB2DomainQuestions = map[int]int{1: 3, 2: 7, 3: 4, 4: 5, 5: 3}

// RoB2Result carries per-domain judgements keyed by domain order. Overall is
// nil until all five domains could be judged.
type RoB2Result struct {
	Domains map[int]Judgement `json:"domains"`
	Overall *Judgement        `json:"overall,omitempty"`
}

// Randomization judges domain 1, bias arising from the randomization process.
func Randomization(seqRandom, concealed, baselineImbalance Answer) (Judgement, error) {
	if err := validate([]Answer{seqRandom, concealed, baselineImbalance}, false); err != nil {
		return Judgement{}, err
	}

	if is(concealed, Yes, ProbablyYes) &&
		is(baselineImbalance, No, ProbablyNo, NoInformation) &&
		is(seqRandom, Yes, ProbablyYes, NoInformation) {
		return Judgement{Low, "allocation adequately concealed with no concerning baseline imbalances"}, nil
	}

	if is(concealed, No, ProbablyNo) ||
		(concealed == NoInformation && is(baselineImbalance, Yes, ProbablyYes)) {
		return Judgement{High, "allocation not adequately concealed or baseline imbalances suggest a randomization problem"}, nil
	}

	if is(seqRandom, No, ProbablyNo) && is(baselineImbalance, Yes, ProbablyYes) {
		return Judgement{High, "non-random sequence generation with baseline imbalances suggesting problems"}, nil
	}

	return Judgement{SomeConcerns, "randomization process raises some concerns"}, nil
}

// Deviations judges domain 2, bias due to deviations from intended
// interventions. It combines a fidelity part (questions 2.1 to 2.5) with an
// analysis part (2.6 and 2.7).
func Deviations(participantsAware, personnelAware, deviationsOccurred, affectedOutcome, balanced, appropriateAnalysis, substantialImpact Answer) (Judgement, error) {
	answers := []Answer{participantsAware, personnelAware, deviationsOccurred, affectedOutcome, balanced, appropriateAnalysis, substantialImpact}
	if err := validate(answers, true); err != nil {
		return Judgement{}, err
	}

	part1 := deviationsFidelity(participantsAware, personnelAware, deviationsOccurred, affectedOutcome, balanced)
	part2 := deviationsAnalysis(appropriateAnalysis, substantialImpact)

	switch {
	case part1.Risk == Low && part2.Risk == Low:
		return Judgement{Low, "low risk in both intervention fidelity and analysis"}, nil
	case part1.Risk == High && part2.Risk == High:
		return Judgement{High, "high risk in both intervention fidelity and analysis"}, nil
	case part1.Risk == High:
		return Judgement{High, part1.Rationale}, nil
	case part2.Risk == High:
		return Judgement{High, part2.Rationale}, nil
	default:
		return Judgement{SomeConcerns, "some concerns identified but neither component at high risk"}, nil
	}
}

func deviationsFidelity(participantsAware, personnelAware, deviationsOccurred, affectedOutcome, balanced Answer) Judgement {
	bothUnaware := is(participantsAware, No, ProbablyNo) && is(personnelAware, No, ProbablyNo)
	eitherAware := is(participantsAware, Yes, ProbablyYes, NoInformation) || is(personnelAware, Yes, ProbablyYes, NoInformation)

	if bothUnaware {
		return Judgement{Low, "participants and personnel unaware of assignment"}
	}
	if eitherAware && is(deviationsOccurred, No, ProbablyNo) {
		return Judgement{Low, "awareness present but no deviations occurred"}
	}

	if eitherAware &&
		is(deviationsOccurred, Yes, ProbablyYes) &&
		is(affectedOutcome, Yes, ProbablyYes, NoInformation) &&
		is(balanced, No, ProbablyNo, NoInformation) {
		return Judgement{High, "awareness led to outcome-affecting deviations imbalanced between groups"}
	}

	if deviationsOccurred == NoInformation {
		return Judgement{SomeConcerns, "no information about whether deviations occurred"}
	}
	if is(deviationsOccurred, Yes, ProbablyYes) {
		if is(affectedOutcome, No, ProbablyNo) {
			return Judgement{SomeConcerns, "deviations occurred but were unlikely to affect the outcome"}
		}
		if is(affectedOutcome, Yes, ProbablyYes) && is(balanced, Yes, ProbablyYes) {
			return Judgement{SomeConcerns, "outcome-affecting deviations were balanced between groups"}
		}
		return Judgement{SomeConcerns, "deviations occurred with uncertain impact or balance"}
	}

	return Judgement{SomeConcerns, "intervention fidelity raises some concerns"}
}

func deviationsAnalysis(appropriateAnalysis, substantialImpact Answer) Judgement {
	if is(appropriateAnalysis, Yes, ProbablyYes) {
		return Judgement{Low, "appropriate analysis used to estimate the effect of assignment"}
	}
	if is(appropriateAnalysis, No, ProbablyNo, NoInformation) && is(substantialImpact, Yes, ProbablyYes, NoInformation) {
		return Judgement{High, "inappropriate analysis with potential for substantial impact on the result"}
	}
	if is(appropriateAnalysis, No, ProbablyNo, NoInformation) && is(substantialImpact, No, ProbablyNo) {
		return Judgement{SomeConcerns, "inappropriate analysis but no substantial impact on the result"}
	}
	return Judgement{SomeConcerns, "uncertain analysis approach"}
}

// MissingData judges domain 3, bias due to missing outcome data.
func MissingData(nearlyComplete, evidenceNoBias, couldDepend, likelyDepends Answer) (Judgement, error) {
	if err := validate([]Answer{nearlyComplete, evidenceNoBias, couldDepend, likelyDepends}, true); err != nil {
		return Judgement{}, err
	}

	if is(nearlyComplete, Yes, ProbablyYes) {
		return Judgement{Low, "outcome data available for all or nearly all participants"}, nil
	}
	if is(evidenceNoBias, Yes, ProbablyYes) {
		return Judgement{Low, "evidence that the result was not biased by missing outcome data"}, nil
	}
	if is(couldDepend, No, ProbablyNo) {
		return Judgement{Low, "missingness in the outcome could not depend on its true value"}, nil
	}

	if is(nearlyComplete, No, ProbablyNo, NoInformation) &&
		is(evidenceNoBias, No, ProbablyNo) &&
		is(couldDepend, Yes, ProbablyYes, NoInformation) &&
		is(likelyDepends, Yes, ProbablyYes, NoInformation) {
		return Judgement{High, "missingness likely depended on the true value of the outcome"}, nil
	}

	if is(nearlyComplete, No, ProbablyNo, NoInformation) &&
		is(evidenceNoBias, No, ProbablyNo) &&
		is(couldDepend, Yes, ProbablyYes, NoInformation) &&
		is(likelyDepends, No, ProbablyNo) {
		return Judgement{SomeConcerns, "missingness could but was unlikely to depend on the true value"}, nil
	}

	if evidenceNoBias == NoInformation {
		return Judgement{SomeConcerns, "no information about whether missing data biased the result"}, nil
	}

	return Judgement{SomeConcerns, "missing outcome data raises some concerns"}, nil
}

// OutcomeMeasurement judges domain 4, bias in measurement of the outcome.
func OutcomeMeasurement(methodInappropriate, differedBetweenGroups, assessorsAware, couldBeInfluenced, likelyInfluenced Answer) (Judgement, error) {
	if err := validate([]Answer{methodInappropriate, differedBetweenGroups, assessorsAware, couldBeInfluenced, likelyInfluenced}, true); err != nil {
		return Judgement{}, err
	}

	if is(methodInappropriate, Yes, ProbablyYes) {
		return Judgement{High, "inappropriate method of measuring the outcome"}, nil
	}
	if is(differedBetweenGroups, Yes, ProbablyYes) {
		return Judgement{High, "outcome measurement differed between intervention groups"}, nil
	}
	if is(assessorsAware, Yes, ProbablyYes, NoInformation) &&
		is(couldBeInfluenced, Yes, ProbablyYes, NoInformation) &&
		is(likelyInfluenced, Yes, ProbablyYes, NoInformation) {
		return Judgement{High, "assessment likely influenced by knowledge of intervention received"}, nil
	}

	methodOK := is(methodInappropriate, No, ProbablyNo, NoInformation)
	consistent := is(differedBetweenGroups, No, ProbablyNo)
	blinded := is(assessorsAware, No, ProbablyNo)
	uninfluenceable := is(assessorsAware, Yes, ProbablyYes, NoInformation) && is(couldBeInfluenced, No, ProbablyNo)

	if methodOK && consistent && (blinded || uninfluenceable) {
		if blinded {
			return Judgement{Low, "appropriate measurement, consistent between groups, assessors blinded"}, nil
		}
		return Judgement{Low, "appropriate measurement, consistent between groups, assessment could not be influenced"}, nil
	}

	if methodOK && consistent &&
		is(assessorsAware, Yes, ProbablyYes, NoInformation) &&
		is(couldBeInfluenced, Yes, ProbablyYes, NoInformation) &&
		is(likelyInfluenced, No, ProbablyNo) {
		return Judgement{SomeConcerns, "assessment could have been influenced but was unlikely to be"}, nil
	}

	if methodOK && differedBetweenGroups == NoInformation {
		if blinded || uninfluenceable {
			return Judgement{SomeConcerns, "no information about differential measurement, assessors blinded or uninfluenceable"}, nil
		}
		return Judgement{SomeConcerns, "no information about whether measurement differed between groups"}, nil
	}

	return Judgement{SomeConcerns, "outcome measurement raises some concerns"}, nil
}

// SelectiveReporting judges domain 5, bias in selection of the reported
// result.
func SelectiveReporting(preSpecifiedPlan, multipleOutcomes, multipleAnalyses Answer) (Judgement, error) {
	if err := validate([]Answer{preSpecifiedPlan, multipleOutcomes, multipleAnalyses}, false); err != nil {
		return Judgement{}, err
	}

	if is(multipleOutcomes, Yes, ProbablyYes) {
		return Judgement{High, "result likely selected from multiple eligible outcome measurements"}, nil
	}
	if is(multipleAnalyses, Yes, ProbablyYes) {
		return Judgement{High, "result likely selected from multiple eligible analyses"}, nil
	}

	if is(preSpecifiedPlan, Yes, ProbablyYes) &&
		is(multipleOutcomes, No, ProbablyNo) &&
		is(multipleAnalyses, No, ProbablyNo) {
		return Judgement{Low, "analysis followed a pre-specified plan with no evidence of selective reporting"}, nil
	}

	if is(preSpecifiedPlan, No, ProbablyNo, NoInformation) &&
		is(multipleOutcomes, No, ProbablyNo) &&
		is(multipleAnalyses, No, ProbablyNo) {
		return Judgement{SomeConcerns, "no pre-specified analysis plan, but no evidence of selective reporting"}, nil
	}

	if multipleOutcomes == NoInformation || multipleAnalyses == NoInformation {
		return Judgement{SomeConcerns, "insufficient information about potential selective reporting"}, nil
	}

	return Judgement{SomeConcerns, "selective reporting raises some concerns"}, nil
}

// OverallRoB2 rolls five domain judgements into the study-level judgement.
func OverallRoB2(risks [5]Risk) (Judgement, error) {
	var high, concerns int
	for i, r := range risks {
		switch r {
		case High:
			high++
		case SomeConcerns:
			concerns++
		case Low:
		default:
			return Judgement{}, fmt.Errorf("domain %d: risk must be low, some_concerns or high, got %q", i+1, r)
		}
	}

	switch {
	case high >= 1:
		return Judgement{High, fmt.Sprintf("high risk of bias in %d domain(s)", high)}, nil
	case concerns == 0:
		return Judgement{Low, "low risk of bias across all domains"}, nil
	case concerns >= 3:
		return Judgement{High, fmt.Sprintf("some concerns in %d domains substantially lower confidence in the result", concerns)}, nil
	default:
		return Judgement{SomeConcerns, fmt.Sprintf("some concerns in %d domain(s)", concerns)}, nil
	}
}

// EvaluateRoB2 runs the full algorithm over answers keyed by domain order.
// Domains without a complete answer set are skipped, and the overall
// judgement is produced only when all five domains were judged.
func EvaluateRoB2(answers map[int][]Answer) (RoB2Result, error) {
	result := RoB2Result{Domains: make(map[int]Judgement)}

	for order, want := range RoB2DomainQuestions {
		a, ok := answers[order]
		if !ok || len(a) != want {
			continue
		}

		var j Judgement
		var err error
		switch order {
		case 1:
			j, err = Randomization(a[0], a[1], a[2])
		case 2:
			j, err = Deviations(a[0], a[1], a[2], a[3], a[4], a[5], a[6])
		case 3:
			j, err = MissingData(a[0], a[1], a[2], a[3])
		case 4:
			j, err = OutcomeMeasurement(a[0], a[1], a[2], a[3], a[4])
		case 5:
			j, err = SelectiveReporting(a[0], a[1], a[2])
		}
		if err != nil {
			return RoB2Result{}, fmt.Errorf("domain %d: %w", order, err)
		}
		result.Domains[order] = j
	}

	if len(result.Domains) == len(RoB2DomainQuestions) {
		var risks [5]Risk
		for i := 1; i <= 5; i++ {
			risks[i-1] = result.Domains[i].Risk
		}
		overall, err := OverallRoB2(risks)
		if err != nil {
			return RoB2Result{}, err
		}
		result.Overall = &overall
	}

	return result, nil
}
