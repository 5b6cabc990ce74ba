// Package evaluate scores binary root-cause predictions against human
// labels.
//
// The arithmetic is fixed: false positives and false negatives start at
// Epsilon so no ratio ever divides by zero, and F1 falls back to 0 when
// precision and recall are both zero. Recorded performance logs depend on
// these exact numbers.
package evaluate

import "fmt"

const (
	// Threshold splits scores and labels into positive and negative.
	Threshold = 0.5

	// Epsilon seeds FP and FN.
	Epsilon = 1e-8
)

// Counters is a confusion matrix accumulated over a batch of judgments.
type Counters struct {
	TP float64 `json:"tp"`
	FP float64 `json:"fp"`
	FN float64 `json:"fn"`
	TN float64 `json:"tn"`
}

// NewCounters returns counters seeded for division safety.
func NewCounters() Counters {
	return Counters{FP: Epsilon, FN: Epsilon}
}

// Observe buckets a single prediction against its gold label.
func (c *Counters) Observe(predicted, gold float64) {
	switch {
	case predicted >= Threshold && gold >= Threshold:
		c.TP += 1.0
	case predicted >= Threshold && gold < Threshold:
		c.FP += 1.0
	case predicted < Threshold && gold < Threshold:
		c.TN += 1.0
	case predicted < Threshold && gold >= Threshold:
		c.FN += 1.0
	}
}

// ObserveBool is Observe for yes/no judgments.
func (c *Counters) ObserveBool(predicted, gold bool) {
	c.Observe(BoolScore(predicted), BoolScore(gold))
}

// Total returns the number of observations, excluding the epsilon seeds.
func (c Counters) Total() int {
	return int(c.TP + c.TN + (c.FP - Epsilon) + (c.FN - Epsilon) + 0.5)
}

// Metrics derives precision, recall, F1 and accuracy from the counters.
func (c Counters) Metrics() Metrics {
	precision := c.TP / (c.TP + c.FP)
	recall := c.TP / (c.TP + c.FN)

	var f1 float64
	if precision+recall == 0 {
		f1 = 0.0
	} else {
		f1 = 2 * (precision * recall) / (precision + recall)
	}

	accuracy := (c.TP + c.TN) / (c.TP + c.TN + c.FP + c.FN)

	return Metrics{
		Precision: precision,
		Recall:    recall,
		F1:        f1,
		Accuracy:  accuracy,
	}
}

// Metrics are the derived scores. The JSON names match the keys of the
// historical performance log.
type Metrics struct {
	Precision float64 `json:"rc_precision"`
	Recall    float64 `json:"rc_recall"`
	F1        float64 `json:"rc_f1score"`
	Accuracy  float64 `json:"accuracy"`
}

func (m Metrics) String() string {
	return fmt.Sprintf("P=%.3f R=%.3f F1=%.3f Acc=%.3f", m.Precision, m.Recall, m.F1, m.Accuracy)
}

// Evaluate scores predictions against gold labels. Both slices hold one
// score per item for the positive class.
func Evaluate(predictions, gold []float64) (Metrics, Counters, error) {
	if len(predictions) != len(gold) {
		return Metrics{}, Counters{}, fmt.Errorf("evaluate: %d predictions for %d labels", len(predictions), len(gold))
	}
	c := NewCounters()
	for i := range predictions {
		c.Observe(predictions[i], gold[i])
	}
	return c.Metrics(), c, nil
}

// BoolScore maps a boolean judgment onto the score scale.
func BoolScore(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
