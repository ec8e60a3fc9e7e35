// Package risk scores no-show likelihood with a small in-process logistic
// model trained on the session cohort's own risk factors. It backs the
// dashboard's prediction card; it is not a clinical model.
package risk

import (
	"errors"
	"math"

	"github.com/mediinsight/platform/pkg/cohort"
)

var ErrEmptyCohort = errors.New("cannot train on an empty cohort")

type Options struct {
	Epochs       int
	LearningRate float64
}

type Model struct {
	Bias         float64   `json:"bias"`
	Coefficients []float64 `json:"coefficients"`
}

type Metrics struct {
	Loss     float64 `json:"loss"`
	Accuracy float64 `json:"accuracy"`
}

// Assessment is what the dashboard's prediction card renders.
type Assessment struct {
	PredictedRate float64 `json:"predicted_rate"`
	Level         string  `json:"level"`
	Model         Model   `json:"model"`
	Metrics       Metrics `json:"metrics"`
}

// Train fits a logistic model on the cohort via batch gradient descent.
// Training is deterministic for a given cohort: weights start at zero and
// the cohort order fixes the gradient sums.
func Train(records []cohort.AppointmentRecord, opts Options) (Model, Metrics, error) {
	if len(records) == 0 {
		return Model{}, Metrics{}, ErrEmptyCohort
	}
	if opts.Epochs <= 0 {
		opts.Epochs = 200
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = 0.05
	}

	samples := make([][]float64, len(records))
	labels := make([]float64, len(records))
	for i, r := range records {
		samples[i] = features(r)
		if r.Missed() {
			labels[i] = 1
		}
	}

	n := len(samples)
	featureCount := len(samples[0])
	weights := make([]float64, featureCount)
	var bias float64

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		grad := make([]float64, featureCount)
		var biasGrad float64
		for i, sample := range samples {
			prediction := sigmoid(dot(weights, sample) + bias)
			diff := prediction - labels[i]
			for j := 0; j < featureCount; j++ {
				grad[j] += diff * sample[j]
			}
			biasGrad += diff
		}
		for j := 0; j < featureCount; j++ {
			weights[j] -= opts.LearningRate * grad[j] / float64(n)
		}
		bias -= opts.LearningRate * biasGrad / float64(n)
	}

	loss, accuracy := evaluate(weights, bias, samples, labels)
	return Model{Bias: bias, Coefficients: weights}, Metrics{Loss: loss, Accuracy: accuracy}, nil
}

// Score returns the predicted no-show probability for one record.
func (m Model) Score(r cohort.AppointmentRecord) float64 {
	return sigmoid(dot(m.Coefficients, features(r)) + m.Bias)
}

// Assess trains on the cohort and reports the mean predicted no-show
// probability as a percentage, bucketed into a coarse level for the card.
func Assess(records []cohort.AppointmentRecord, opts Options) (Assessment, error) {
	model, metrics, err := Train(records, opts)
	if err != nil {
		return Assessment{}, err
	}

	var sum float64
	for _, r := range records {
		sum += model.Score(r)
	}
	rate := sum / float64(len(records)) * 100

	level := "Low"
	switch {
	case rate >= 30:
		level = "High"
	case rate >= 15:
		level = "Medium"
	}

	return Assessment{
		PredictedRate: rate,
		Level:         level,
		Model:         model,
		Metrics:       metrics,
	}, nil
}

// features maps a record onto the model inputs. Age and lead days are
// scaled so no single feature dominates the gradient.
func features(r cohort.AppointmentRecord) []float64 {
	return []float64{
		float64(r.Age) / 100,
		float64(r.LeadDays) / 14,
		boolFeature(r.SMSReceived),
		boolFeature(r.Scholarship),
		boolFeature(r.Hypertension),
		boolFeature(r.Diabetes),
		boolFeature(r.Alcoholism),
		boolFeature(r.Handicap),
	}
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func dot(weights []float64, sample []float64) float64 {
	var sum float64
	for i := 0; i < len(weights); i++ {
		sum += weights[i] * sample[i]
	}
	return sum
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func evaluate(weights []float64, bias float64, samples [][]float64, labels []float64) (float64, float64) {
	var loss float64
	var correct int
	for i, sample := range samples {
		prediction := sigmoid(dot(weights, sample) + bias)
		loss += -labels[i]*math.Log(prediction+1e-9) - (1-labels[i])*math.Log(1-prediction+1e-9)
		if (prediction >= 0.5 && labels[i] == 1) || (prediction < 0.5 && labels[i] == 0) {
			correct++
		}
	}
	loss /= float64(len(samples))
	accuracy := float64(correct) / float64(len(samples))
	return loss, accuracy
}
