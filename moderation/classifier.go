//go:generate go run go.uber.org/mock/mockgen -source=classifier.go -destination=../mocks/mock_classifier.go -package=mocks
package moderation

import "context"

type Status int

const (
	StatusClean Status = iota
	StatusFlagged
	// StatusUnavailable means the check could not complete; callers treat it as clean.
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusClean:
		return "clean"
	case StatusFlagged:
		return "flagged"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Verdict is the outcome of one classification.
// CleanText is always populated: the suggested replacement when flagged, the original text otherwise.
type Verdict struct {
	Status    Status
	CleanText string
	Reason    string
}

func (v Verdict) Flagged() bool {
	return v.Status == StatusFlagged
}

// Classifier judges a piece of user text. Implementations fail open: any failure to
// reach a decision is reported as StatusUnavailable, never as an error.
type Classifier interface {
	Classify(ctx context.Context, text string) Verdict
}

// Static accepts everything. It stands in when no external classifier is configured.
type Static struct{}

func (Static) Classify(_ context.Context, text string) Verdict {
	return Verdict{Status: StatusClean, CleanText: text, Reason: "no issues found"}
}

type chain []Classifier

// Chain runs classifiers in order and stops at the first flagged verdict.
// When nothing flags the text, the last verdict is returned.
func Chain(classifiers ...Classifier) Classifier {
	return chain(classifiers)
}

func (c chain) Classify(ctx context.Context, text string) Verdict {
	last := Static{}.Classify(ctx, text)
	for _, classifier := range c {
		last = classifier.Classify(ctx, text)
		if last.Flagged() {
			return last
		}
	}
	return last
}
