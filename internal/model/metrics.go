package model

import (
	"math"
	"sort"
)

// R2 is the coefficient of determination of pred against actual
func R2(actual, pred []float64) float64 {
	if len(actual) == 0 || len(actual) != len(pred) {
		return 0
	}
	mean := 0.0
	for _, a := range actual {
		mean += a
	}
	mean /= float64(len(actual))

	var ssRes, ssTot float64
	for i, a := range actual {
		ssRes += (a - pred[i]) * (a - pred[i])
		ssTot += (a - mean) * (a - mean)
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

func MAE(actual, pred []float64) float64 {
	if len(actual) == 0 || len(actual) != len(pred) {
		return 0
	}
	var sum float64
	for i, a := range actual {
		sum += math.Abs(a - pred[i])
	}
	return sum / float64(len(actual))
}

func RMSE(actual, pred []float64) float64 {
	if len(actual) == 0 || len(actual) != len(pred) {
		return 0
	}
	var sum float64
	for i, a := range actual {
		sum += (a - pred[i]) * (a - pred[i])
	}
	return math.Sqrt(sum / float64(len(actual)))
}

// Spearman is the rank correlation of pred against actual, ties averaged
func Spearman(actual, pred []float64) float64 {
	if len(actual) < 2 || len(actual) != len(pred) {
		return 0
	}
	return pearson(ranks(actual), ranks(pred))
}

func pearson(x, y []float64) float64 {
	n := float64(len(x))
	var mx, my float64
	for i := range x {
		mx += x[i]
		my += y[i]
	}
	mx /= n
	my /= n

	var cov, vx, vy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}

// ranks assigns 1-based ascending ranks; tied values share their mean rank.
func ranks(v []float64) []float64 {
	idx := argsortAsc(v)
	out := make([]float64, len(v))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && v[idx[j+1]] == v[idx[i]] {
			j++
		}
		r := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = r
		}
		i = j + 1
	}
	return out
}

func argsortAsc(v []float64) []int {
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return v[idx[a]] < v[idx[b]] })
	return idx
}

// topK returns the indices of the k largest values
func topK(v []float64, k int) map[int]struct{} {
	idx := argsortAsc(v)
	if k > len(idx) {
		k = len(idx)
	}
	out := make(map[int]struct{}, k)
	for _, i := range idx[len(idx)-k:] {
		out[i] = struct{}{}
	}
	return out
}

// TopKHitRate is the share of the predicted top k that are also in the actual top k.
func TopKHitRate(actual, pred []float64, k int) float64 {
	if k <= 0 || len(actual) == 0 || len(actual) != len(pred) {
		return 0
	}
	if k > len(actual) {
		k = len(actual)
	}
	want := topK(actual, k)
	hits := 0
	for i := range topK(pred, k) {
		if _, ok := want[i]; ok {
			hits++
		}
	}
	return float64(hits) / float64(k)
}

// PrecisionAtK is the share of the predicted top k whose actual value is in the top quartile.
func PrecisionAtK(actual, pred []float64, k int) float64 {
	if k <= 0 || len(actual) == 0 || len(actual) != len(pred) {
		return 0
	}
	if k > len(actual) {
		k = len(actual)
	}
	threshold := Percentile(actual, 75)
	relevant := 0
	for i := range topK(pred, k) {
		if actual[i] >= threshold {
			relevant++
		}
	}
	return float64(relevant) / float64(k)
}

// NDCGAtK compares the actual values in predicted order against the ideal order.
func NDCGAtK(actual, pred []float64, k int) float64 {
	if k <= 0 || len(actual) == 0 || len(actual) != len(pred) {
		return 0
	}
	predOrder := argsortAsc(pred)
	idealOrder := argsortAsc(actual)

	dcg := func(order []int) float64 {
		var sum float64
		for pos := 0; pos < k && pos < len(order); pos++ {
			i := order[len(order)-1-pos]
			sum += actual[i] / math.Log2(float64(pos)+2)
		}
		return sum
	}
	ideal := dcg(idealOrder)
	if ideal <= 0 {
		return 0
	}
	return dcg(predOrder) / ideal
}

// Bucket is a coarse liveliness category
type Bucket int

const (
	Boring Bucket = iota
	Average
	VeryLively
)

func (b Bucket) String() string {
	switch b {
	case Boring:
		return "Boring"
	case VeryLively:
		return "Very Lively"
	default:
		return "Average"
	}
}

// Categorize buckets v using the lower and upper quartiles of the actual values
func Categorize(v, q25, q75 float64) Bucket {
	switch {
	case v >= q75:
		return VeryLively
	case v <= q25:
		return Boring
	default:
		return Average
	}
}

// CategoricalAccuracy is the share of matches whose predicted bucket matches
// the actual one, with buckets cut at the actual quartiles.
func CategoricalAccuracy(actual, pred []float64) float64 {
	if len(actual) == 0 || len(actual) != len(pred) {
		return 0
	}
	q25, q75 := Percentile(actual, 25), Percentile(actual, 75)
	correct := 0
	for i := range actual {
		if Categorize(actual[i], q25, q75) == Categorize(pred[i], q25, q75) {
			correct++
		}
	}
	return float64(correct) / float64(len(actual))
}

// Percentile uses linear interpolation between closest ranks
func Percentile(v []float64, p float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sorted := append([]float64(nil), v...)
	sort.Float64s(sorted)
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}
