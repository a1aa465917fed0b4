package predictive

import (
	"math"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
)

type accuracySample struct {
	predicted int
	actual    int
}

// mapeAccuracy converts the samples into 100 - MAPE, floored at 0. With no
// actual volume at all the result is 100 for a perfect zero forecast and 0 otherwise.
func mapeAccuracy(samples []accuracySample, start, end time.Time) models.AccuracyReport {
	report := models.AccuracyReport{StartDate: start, EndDate: end, Samples: len(samples)}
	if len(samples) == 0 {
		return report
	}
	report.HasData = true

	totalError, totalActual := 0.0, 0.0
	for _, s := range samples {
		totalError += math.Abs(float64(s.predicted - s.actual))
		totalActual += float64(s.actual)
	}

	var accuracy float64
	switch {
	case totalActual > 0:
		accuracy = 100 - totalError/totalActual*100
	case totalError == 0:
		accuracy = 100
	}
	report.Accuracy = round2(math.Max(0, accuracy))
	report.AverageError = round2(totalError / float64(len(samples)))
	return report
}

// ratioAccuracy is max(0, 1 - |p-a|/p) as a percentage. A zero prediction
// scores 100 when nothing happened and 0 otherwise.
func ratioAccuracy(predicted, actual float64) float64 {
	if predicted == 0 {
		if actual == 0 {
			return 100
		}
		return 0
	}
	accuracy := (1 - math.Abs(predicted-actual)/predicted) * 100
	return round2(math.Max(0, accuracy))
}
