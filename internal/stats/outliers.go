package stats

import (
	"fmt"
	"math"
	"sort"

	"commentpulse/internal/types"
)

// Outlier detection methods.
const (
	MethodIQR    = "iqr"
	MethodZScore = "zscore"
)

// Outliers finds comments whose like counts are statistical outliers under
// the chosen method. For IQR the threshold is the whisker multiplier
// (typically 1.5); for z-score it is the |z| cutoff (typically 3).
func Outliers(comments []types.Comment, method string, threshold float64) ([]types.Comment, error) {
	if len(comments) == 0 {
		return nil, nil
	}

	switch method {
	case MethodIQR:
		return iqrOutliers(comments, threshold), nil
	case MethodZScore:
		return zscoreOutliers(comments, threshold), nil
	default:
		return nil, fmt.Errorf("unsupported outlier method: %s", method)
	}
}

func iqrOutliers(comments []types.Comment, threshold float64) []types.Comment {
	likes := sortedLikes(comments)
	q1 := quantile(likes, 0.25)
	q3 := quantile(likes, 0.75)
	iqr := q3 - q1

	lower := q1 - threshold*iqr
	upper := q3 + threshold*iqr

	var out []types.Comment
	for _, c := range comments {
		v := float64(c.Likes)
		if v < lower || v > upper {
			out = append(out, c)
		}
	}
	return out
}

func zscoreOutliers(comments []types.Comment, threshold float64) []types.Comment {
	likes := make([]float64, len(comments))
	var sum float64
	for i, c := range comments {
		likes[i] = float64(c.Likes)
		sum += likes[i]
	}
	mean := sum / float64(len(likes))
	std := stddev(likes, mean)
	if std == 0 {
		return nil
	}

	var out []types.Comment
	for i, c := range comments {
		if math.Abs((likes[i]-mean)/std) > threshold {
			out = append(out, c)
		}
	}
	return out
}

func sortedLikes(comments []types.Comment) []float64 {
	likes := make([]float64, len(comments))
	for i, c := range comments {
		likes[i] = float64(c.Likes)
	}
	sort.Float64s(likes)
	return likes
}

// quantile computes the q-th quantile of sorted data by linear
// interpolation between adjacent ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return quantile(sorted, 0.5)
}

// stddev computes the sample standard deviation.
func stddev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)-1))
}
