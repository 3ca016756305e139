package analysis

import (
	"fmt"
	"math"

	"github.com/StephenStolk/analyseX-sub001/domain/core"
	"github.com/StephenStolk/analyseX-sub001/domain/stats"

	"gonum.org/v1/gonum/floats"
	gstat "gonum.org/v1/gonum/stat"
)

// ClusterOptions tune the k-means segmentation
type ClusterOptions struct {
	K             int `json:"k"`     // fixed cluster count; 0 picks k from the elbow
	MaxK          int `json:"max_k"` // largest k tried by the elbow, further capped at rows/2
	MaxIterations int `json:"max_iterations"`
}

// DefaultClusterOptions returns the product defaults
func DefaultClusterOptions() ClusterOptions {
	return ClusterOptions{MaxK: 8, MaxIterations: 100}
}

const (
	minClusterFeatures = 2
	minClusterRows     = 4
)

// Cluster segments rows with k-means over z-scored features. Each row holds one value per
// feature. Cluster IDs follow the first row assigned to them, and the profiles report
// means in the original units next to their offset from the dataset mean.
func Cluster(features []string, rows [][]float64, opts ClusterOptions) (*stats.ClusterAnalysis, error) {
	if len(features) < minClusterFeatures {
		return nil, core.NewInsufficientDataError("cluster features", minClusterFeatures, len(features))
	}
	if len(rows) < minClusterRows {
		return nil, core.NewInsufficientDataError("cluster rows", minClusterRows, len(rows))
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultClusterOptions().MaxIterations
	}
	if opts.K > len(rows) {
		return nil, core.NewInsufficientDataError("cluster rows", opts.K, len(rows))
	}

	points, overall := standardize(rows, len(features))

	result := &stats.ClusterAnalysis{Features: features, SampleSize: len(rows)}
	k := opts.K
	if k <= 0 {
		maxK := opts.MaxK
		if maxK <= 0 {
			maxK = DefaultClusterOptions().MaxK
		}
		maxK = max(2, min(maxK, len(rows)/2))
		for kk := 1; kk <= maxK; kk++ {
			_, inertia := kmeans(points, kk, opts.MaxIterations)
			result.Elbow = append(result.Elbow, stats.ElbowPoint{K: kk, Inertia: inertia})
		}
		k = elbow(result.Elbow)
	}

	assign, inertia := kmeans(points, k, opts.MaxIterations)
	result.Inertia = inertia
	result.Assignments, result.K = relabel(assign)
	result.Clusters = profileClusters(features, rows, result.Assignments, result.K, overall)
	result.Summary = fmt.Sprintf("Identified %d distinct groups across %d rows", result.K, len(rows))
	return result, nil
}

// standardize z-scores each column with the population deviation. Constant columns become zero.
func standardize(rows [][]float64, width int) ([][]float64, []float64) {
	means := make([]float64, width)
	devs := make([]float64, width)
	column := make([]float64, len(rows))
	for j := 0; j < width; j++ {
		for i, row := range rows {
			column[i] = row[j]
		}
		means[j], devs[j] = gstat.PopMeanStdDev(column, nil)
	}

	points := make([][]float64, len(rows))
	for i, row := range rows {
		points[i] = make([]float64, width)
		for j := 0; j < width; j++ {
			if devs[j] > 0 {
				points[i][j] = (row[j] - means[j]) / devs[j]
			}
		}
	}
	return points, means
}

// kmeans runs Lloyd's algorithm from a farthest-point seeding, so the result is
// deterministic. It returns the assignment and the within-cluster sum of squares.
func kmeans(points [][]float64, k, maxIter int) ([]int, float64) {
	centroids := seedCentroids(points, k)
	assign := make([]int, len(points))
	for i := range assign {
		assign[i] = -1
	}

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, p := range points {
			c := nearest(centroids, p)
			if c != assign[i] {
				assign[i] = c
				changed = true
			}
		}
		if !changed {
			break
		}
		updateCentroids(centroids, points, assign)
	}

	inertia := 0.0
	for i, p := range points {
		d := floats.Distance(p, centroids[assign[i]], 2)
		inertia += d * d
	}
	return assign, inertia
}

// seedCentroids starts from the point nearest the origin, which is the mean of
// standardized data, then repeatedly adds the point farthest from every chosen centroid
func seedCentroids(points [][]float64, k int) [][]float64 {
	origin := make([]float64, len(points[0]))
	first, best := 0, math.Inf(1)
	for i, p := range points {
		if d := floats.Distance(p, origin, 2); d < best {
			first, best = i, d
		}
	}
	centroids := [][]float64{append([]float64(nil), points[first]...)}

	for len(centroids) < k {
		pick, far := 0, -1.0
		for i, p := range points {
			d := floats.Distance(p, centroids[nearest(centroids, p)], 2)
			if d > far {
				pick, far = i, d
			}
		}
		centroids = append(centroids, append([]float64(nil), points[pick]...))
	}
	return centroids
}

func nearest(centroids [][]float64, p []float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := floats.Distance(p, centroid, 2); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// updateCentroids moves each centroid to the mean of its points; empty clusters stay put
func updateCentroids(centroids, points [][]float64, assign []int) {
	sums := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for c := range sums {
		sums[c] = make([]float64, len(points[0]))
	}
	for i, p := range points {
		floats.Add(sums[assign[i]], p)
		counts[assign[i]]++
	}
	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		floats.Scale(1/float64(counts[c]), sums[c])
		centroids[c] = sums[c]
	}
}

// elbow picks the k whose inertia falls farthest below the chord joining the first and
// last points of the curve
func elbow(curve []stats.ElbowPoint) int {
	if len(curve) < 3 {
		return curve[len(curve)-1].K
	}
	first, last := curve[0], curve[len(curve)-1]
	span := first.Inertia - last.Inertia
	if span <= 0 {
		return curve[1].K
	}

	best, bestGain := curve[1].K, math.Inf(-1)
	for _, p := range curve[1 : len(curve)-1] {
		x := float64(p.K-first.K) / float64(last.K-first.K)
		y := (p.Inertia - last.Inertia) / span
		if gain := (1 - x) - y; gain > bestGain {
			best, bestGain = p.K, gain
		}
	}
	return best
}

// relabel renumbers clusters by first appearance and drops empty ones
func relabel(assign []int) ([]int, int) {
	mapping := make(map[int]int)
	out := make([]int, len(assign))
	for i, c := range assign {
		id, ok := mapping[c]
		if !ok {
			id = len(mapping)
			mapping[c] = id
		}
		out[i] = id
	}
	return out, len(mapping)
}

func profileClusters(features []string, rows [][]float64, assign []int, k int, overall []float64) []stats.ClusterProfile {
	clusters := make([]stats.ClusterProfile, k)
	sums := make([][]float64, k)
	for c := range clusters {
		clusters[c] = stats.ClusterProfile{
			ID:        c,
			Means:     make(map[string]float64, len(features)),
			VsOverall: make(map[string]float64, len(features)),
		}
		sums[c] = make([]float64, len(features))
	}
	for i, row := range rows {
		clusters[assign[i]].Size++
		floats.Add(sums[assign[i]], row)
	}
	for c := range clusters {
		size := float64(clusters[c].Size)
		clusters[c].Percentage = size / float64(len(rows)) * 100
		for j, name := range features {
			mean := sums[c][j] / size
			clusters[c].Means[name] = mean
			clusters[c].VsOverall[name] = mean - overall[j]
		}
	}
	return clusters
}
