// Package engine implements the published risk-of-bias decision algorithms.
// The functions are pure: they take signalling-question answers and return a
// judgement, leaving persistence to the service layer.
package engine

import (
	"fmt"

	"github.com/choxos/robass-backend/internal/model"
)

// Answer is a normalised signalling-question answer code.
type Answer string

const (
	Yes           Answer = "Y"
	ProbablyYes   Answer = "PY"
	ProbablyNo    Answer = "PN"
	No            Answer = "N"
	NoInformation Answer = "NI"
	NotApplicable Answer = "NA"
)

// Risk is a bias-risk level. Values match the stored bias ratings so
// judgements can be persisted without translation.
type Risk string

const (
	Low          Risk = model.BiasLow
	SomeConcerns Risk = model.BiasSomeConcerns
	High         Risk = model.BiasHigh
	VeryHigh     Risk = model.BiasVeryHigh
)

// Judgement pairs a risk level with the rule that produced it.
type Judgement struct {
	Risk      Risk   `json:"risk"`
	Rationale string `json:"rationale"`
}

// AnswerFromResponse converts a stored response category into an answer code.
func AnswerFromResponse(category string) (Answer, error) {
	switch category {
	case model.ResponseYes:
		return Yes, nil
	case model.ResponseProbablyYes:
		return ProbablyYes, nil
	case model.ResponseProbablyNo:
		return ProbablyNo, nil
	case model.ResponseNo:
		return No, nil
	case model.ResponseNoInformation:
		return NoInformation, nil
	case model.ResponseNotApplicable:
		return NotApplicable, nil
	default:
		return "", fmt.Errorf("unrecognised response category %q", category)
	}
}

// is reports whether a is one of the given answers.
func is(a Answer, set ...Answer) bool {
	for _, s := range set {
		if a == s {
			return true
		}
	}
	return false
}

func validate(answers []Answer, allowNA bool) error {
	for i, a := range answers {
		switch a {
		case Yes, ProbablyYes, ProbablyNo, No, NoInformation:
		case NotApplicable:
			if !allowNA {
				return fmt.Errorf("answer %d: NA is not a valid response here", i+1)
			}
		default:
			return fmt.Errorf("answer %d: unrecognised answer %q", i+1, a)
		}
	}
	return nil
}
