package match

import (
	"math"

	"attendcore/internal/embedding"
	"attendcore/internal/store"
)

// Metric names tag which distance function produced a verdict.
const (
	MetricCosine = "cosine"
	MetricL2     = "l2"
)

// Default match/reject thresholds per metric.
const (
	DefaultCosineThreshold = 0.35
	DefaultL2Threshold     = 0.60
)

// Verdict is the result of matching one frame against the reference set:
// either a specific student or no match, with the nearest distance and the
// metric that produced it.
type Verdict struct {
	StudentID int64
	Matched   bool
	Distance  float64
	Metric    string
}

// Matcher finds the nearest reference to a query embedding and applies a
// metric-specific accept threshold. Proximity alone is not enough: the
// nearest candidate is rejected when its distance exceeds the threshold.
type Matcher struct {
	CosineThreshold float64
	L2Threshold     float64
}

// NewMatcher creates a matcher with the given thresholds. Zero is a valid
// threshold (only exact-distance matches accepted); negative values fall
// back to the defaults.
func NewMatcher(cosineThreshold, l2Threshold float64) *Matcher {
	if cosineThreshold < 0 {
		cosineThreshold = DefaultCosineThreshold
	}
	if l2Threshold < 0 {
		l2Threshold = DefaultL2Threshold
	}
	return &Matcher{
		CosineThreshold: cosineThreshold,
		L2Threshold:     l2Threshold,
	}
}

// Match scans the references linearly and returns the verdict for the query.
// References whose variant or shape differs from the query are skipped, so a
// facenet query can never match a pixel reference. Ties keep the first
// encountered reference; a tie means ambiguity the threshold step treats
// conservatively anyway. An empty reference set yields no match.
func (m *Matcher) Match(query embedding.Embedding, refs []store.Reference) Verdict {
	metric := MetricL2
	threshold := m.L2Threshold
	if query.Variant == embedding.VariantFacenet {
		metric = MetricCosine
		threshold = m.CosineThreshold
	}

	bestID := int64(0)
	bestDist := math.Inf(1)
	found := false

	for _, ref := range refs {
		if !ref.Embedding.Comparable(query) {
			continue
		}

		var dist float64
		if metric == MetricCosine {
			dist = CosineDistance(ref.Embedding.Vector, query.Vector)
		} else {
			dist = L2Distance(ref.Embedding.Vector, query.Vector)
		}

		if dist < bestDist {
			bestDist = dist
			bestID = ref.StudentID
			found = true
		}
	}

	if !found {
		return Verdict{Metric: metric, Distance: math.Inf(1)}
	}

	if bestDist > threshold {
		return Verdict{Metric: metric, Distance: bestDist}
	}

	return Verdict{
		StudentID: bestID,
		Matched:   true,
		Distance:  bestDist,
		Metric:    metric,
	}
}
