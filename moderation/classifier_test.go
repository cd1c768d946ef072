package moderation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubClassifier struct {
	verdict Verdict
	calls   int
}

func (s *stubClassifier) Classify(_ context.Context, _ string) Verdict {
	s.calls++
	return s.verdict
}

func TestChain(t *testing.T) {
	ctx := context.Background()

	t.Run("stops at the first flagged verdict", func(t *testing.T) {
		req := require.New(t)
		flagging := &stubClassifier{verdict: Verdict{Status: StatusFlagged, CleanText: "d*** it", Reason: reasonBlockedWords}}
		remote := &stubClassifier{verdict: Verdict{Status: StatusClean, CleanText: "damn it"}}

		verdict := Chain(flagging, remote).Classify(ctx, "damn it")
		req.True(verdict.Flagged())
		req.Equal(1, flagging.calls)
		req.Equal(0, remote.calls)
	})

	t.Run("returns the last verdict when nothing flags", func(t *testing.T) {
		req := require.New(t)
		local := &stubClassifier{verdict: Verdict{Status: StatusClean, CleanText: "hi"}}
		remote := &stubClassifier{verdict: Verdict{Status: StatusUnavailable, CleanText: "hi", Reason: reasonAPIFailure}}

		verdict := Chain(local, remote).Classify(ctx, "hi")
		req.Equal(StatusUnavailable, verdict.Status)
		req.Equal(1, remote.calls)
	})

	t.Run("empty chain accepts", func(t *testing.T) {
		verdict := Chain().Classify(ctx, "hi")
		require.Equal(t, Verdict{Status: StatusClean, CleanText: "hi", Reason: "no issues found"}, verdict)
	})
}

func TestStatus_String(t *testing.T) {
	req := require.New(t)
	req.Equal("clean", StatusClean.String())
	req.Equal("flagged", StatusFlagged.String())
	req.Equal("unavailable", StatusUnavailable.String())
}
