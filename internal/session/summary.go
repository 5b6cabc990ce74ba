package session

import (
	"github.com/abhisek/rcscout/internal/evaluate"
	"github.com/abhisek/rcscout/internal/prompt"
)

// Summary describes how a session ended.
type Summary struct {
	SessionID  string
	Quota      int
	Candidates int

	Skipped   int
	Rejected  int
	Accepted  int
	Annotated int
	Dropped   int

	// Predictions is how many annotated items had a prediction; Metrics
	// is only meaningful when it is non-zero.
	Predictions int
	Metrics     evaluate.Metrics
}

func (s *Summary) fill(sel *Selection, ann *Annotator) {
	if sel != nil {
		for _, o := range sel.Outcomes() {
			switch o.Phase {
			case PhaseSkipped:
				s.Skipped++
			case PhaseRejected:
				s.Rejected++
			case PhaseAccepted:
				s.Accepted++
			case PhaseAnnotated:
				s.Annotated++
			case PhaseDropped:
				s.Dropped++
			}
		}
		// Annotated and dropped questions were accepted first.
		s.Accepted += s.Annotated + s.Dropped
	}
	s.Metrics, s.Predictions = ann.Metrics()
}

// Print renders the summary for the operator.
func (s *Summary) Print(p *prompt.Prompter) {
	p.Rule()
	p.Title("Session summary")
	p.Printf("candidates %d, skipped %d, rejected %d, accepted %d\n",
		s.Candidates, s.Skipped, s.Rejected, s.Accepted)
	p.Printf("annotated %d, dropped %d\n", s.Annotated, s.Dropped)
	if s.Predictions > 0 {
		p.Printf("live model performance over %d items: %s\n", s.Predictions, s.Metrics)
	}
	p.Rule()
}
