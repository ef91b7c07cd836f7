package analysis

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// kmeans runs Lloyd's algorithm with k-means++ seeding from the given source
// of randomness. It returns the row assignments and the final centroids.
func kmeans(points *mat.Dense, k, maxIterations int, rng *rand.Rand) ([]int, *mat.Dense) {
	rows, cols := points.Dims()
	if k > rows {
		k = rows
	}

	centroids := seedCentroids(points, k, rng)
	assign := make([]int, rows)

	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i := 0; i < rows; i++ {
			best, bestDist := 0, math.Inf(1)
			for cl := 0; cl < k; cl++ {
				d := sqDistance(points.RawRowView(i), centroids.RawRowView(cl))
				if d < bestDist {
					best, bestDist = cl, d
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		// Recompute centroids; an emptied cluster keeps its previous position.
		sums := mat.NewDense(k, cols, nil)
		counts := make([]int, k)
		for i := 0; i < rows; i++ {
			cl := assign[i]
			counts[cl]++
			for j := 0; j < cols; j++ {
				sums.Set(cl, j, sums.At(cl, j)+points.At(i, j))
			}
		}
		for cl := 0; cl < k; cl++ {
			if counts[cl] == 0 {
				continue
			}
			for j := 0; j < cols; j++ {
				centroids.Set(cl, j, sums.At(cl, j)/float64(counts[cl]))
			}
		}
	}

	return assign, centroids
}

// seedCentroids implements k-means++ initialization.
func seedCentroids(points *mat.Dense, k int, rng *rand.Rand) *mat.Dense {
	rows, cols := points.Dims()
	centroids := mat.NewDense(k, cols, nil)

	first := rng.Intn(rows)
	centroids.SetRow(0, points.RawRowView(first))

	dists := make([]float64, rows)
	for c := 1; c < k; c++ {
		total := 0.0
		for i := 0; i < rows; i++ {
			best := math.Inf(1)
			for prev := 0; prev < c; prev++ {
				if d := sqDistance(points.RawRowView(i), centroids.RawRowView(prev)); d < best {
					best = d
				}
			}
			dists[i] = best
			total += best
		}

		if total == 0 {
			centroids.SetRow(c, points.RawRowView(rng.Intn(rows)))
			continue
		}
		target := rng.Float64() * total
		cumulative := 0.0
		chosen := rows - 1
		for i := 0; i < rows; i++ {
			cumulative += dists[i]
			if cumulative >= target {
				chosen = i
				break
			}
		}
		centroids.SetRow(c, points.RawRowView(chosen))
	}

	return centroids
}

// meanSilhouette scores cohesion vs separation of an assignment in [-1, 1].
func meanSilhouette(points *mat.Dense, assign []int, k int) float64 {
	rows, _ := points.Dims()
	if rows < 2 || k < 2 {
		return 0
	}

	counts := make([]int, k)
	for _, cl := range assign {
		counts[cl]++
	}

	total := 0.0
	scored := 0
	for i := 0; i < rows; i++ {
		own := assign[i]
		if counts[own] < 2 {
			continue
		}

		// Mean distance to each cluster.
		sums := make([]float64, k)
		for j := 0; j < rows; j++ {
			if j == i {
				continue
			}
			sums[assign[j]] += math.Sqrt(sqDistance(points.RawRowView(i), points.RawRowView(j)))
		}

		a := sums[own] / float64(counts[own]-1)
		b := math.Inf(1)
		for cl := 0; cl < k; cl++ {
			if cl == own || counts[cl] == 0 {
				continue
			}
			if mean := sums[cl] / float64(counts[cl]); mean < b {
				b = mean
			}
		}
		if math.IsInf(b, 1) {
			continue
		}

		denom := math.Max(a, b)
		if denom > 0 {
			total += (b - a) / denom
			scored++
		}
	}

	if scored == 0 {
		return 0
	}
	return total / float64(scored)
}

func sqDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
