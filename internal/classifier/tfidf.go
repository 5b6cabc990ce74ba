package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/abhisek/rcscout/internal/logging"
)

// ModelFile is the file name written inside the model directory.
const ModelFile = "tfidf-model.json"

// DefaultSharpness scales the centroid similarity gap before the
// logistic squash. Cosine gaps are small, so without it every score sits
// near 0.5.
const DefaultSharpness = 10.0

type sparseVec = map[int]float64

// TFIDFTrainer builds one TF-IDF centroid per class.
type TFIDFTrainer struct {
	// Sharpness overrides DefaultSharpness when positive.
	Sharpness float64
}

func (TFIDFTrainer) Name() string { return "tfidf" }

func (t TFIDFTrainer) Train(ctx context.Context, texts []string, labels []float64) (Predictor, error) {
	if err := checkTrainingInput(texts, labels); err != nil {
		return nil, err
	}

	vocab := make(map[string]int)
	docs := make([]map[int]int, len(texts))
	df := make(map[int]int)
	for i, text := range texts {
		if i%256 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		tf := make(map[int]int)
		for _, tok := range tokenize(text) {
			idx, ok := vocab[tok]
			if !ok {
				idx = len(vocab)
				vocab[tok] = idx
			}
			tf[idx]++
		}
		for idx := range tf {
			df[idx]++
		}
		docs[i] = tf
	}

	n := float64(len(texts))
	idf := make([]float64, len(vocab))
	for idx, d := range df {
		idf[idx] = math.Log(n/float64(d)) + 1.0
	}

	m := &TFIDFModel{
		Vocab:     vocab,
		IDF:       idf,
		Positive:  make(sparseVec),
		Negative:  make(sparseVec),
		Sharpness: t.Sharpness,
	}
	if m.Sharpness <= 0 {
		m.Sharpness = DefaultSharpness
	}

	var pos, neg int
	for i, tf := range docs {
		vec := normalize(m.weight(tf))
		centroid := m.Negative
		if labels[i] >= 0.5 {
			centroid = m.Positive
			pos++
		} else {
			neg++
		}
		for idx, v := range vec {
			centroid[idx] += v
		}
	}
	scale(m.Positive, pos)
	scale(m.Negative, neg)
	m.TrainSize = len(texts)
	m.TrainPositives = pos

	logging.New("classifier").Info("trained tfidf model",
		"examples", len(texts), "positives", pos, "vocabulary", len(vocab))
	return m, nil
}

// TFIDFModel is a trained centroid classifier. It serializes to JSON.
type TFIDFModel struct {
	Vocab          map[string]int `json:"vocab"`
	IDF            []float64      `json:"idf"`
	Positive       sparseVec      `json:"positive"`
	Negative       sparseVec      `json:"negative"`
	Sharpness      float64        `json:"sharpness"`
	TrainSize      int            `json:"train_size"`
	TrainPositives int            `json:"train_positives"`
}

// Predict compares the text with both class centroids. Text sharing no
// vocabulary with the training set scores 0.5 each way.
func (m *TFIDFModel) Predict(_ context.Context, text string) (Scores, error) {
	tf := make(map[int]int)
	for _, tok := range tokenize(text) {
		if idx, ok := m.Vocab[tok]; ok {
			tf[idx]++
		}
	}
	q := m.weight(tf)

	gap := cosineSim(q, m.Positive) - cosineSim(q, m.Negative)
	p := 1 / (1 + math.Exp(-m.Sharpness*gap))
	return Scores{Positive: p, Negative: 1 - p}, nil
}

func (m *TFIDFModel) weight(tf map[int]int) sparseVec {
	vec := make(sparseVec, len(tf))
	for idx, count := range tf {
		vec[idx] = float64(count) * m.IDF[idx]
	}
	return vec
}

// Save writes the model to dir, creating it if needed.
func (m *TFIDFModel) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}

	path := filepath.Join(dir, ModelFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename model: %w", err)
	}
	return nil
}

// LoadModel reads a model saved by Save. A missing model wraps
// os.ErrNotExist.
func LoadModel(dir string) (*TFIDFModel, error) {
	data, err := os.ReadFile(filepath.Join(dir, ModelFile))
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var m TFIDFModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	if len(m.IDF) != len(m.Vocab) {
		return nil, errors.New("parse model: vocabulary and idf sizes differ")
	}
	if m.Sharpness <= 0 {
		m.Sharpness = DefaultSharpness
	}
	return &m, nil
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalize(v sparseVec) sparseVec {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] /= norm
	}
	return v
}

func scale(v sparseVec, n int) {
	if n == 0 {
		return
	}
	for i := range v {
		v[i] /= float64(n)
	}
}

func cosineSim(a, b sparseVec) float64 {
	var dot, normA, normB float64
	for i, va := range a {
		dot += va * b[i]
		normA += va * va
	}
	for _, vb := range b {
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
