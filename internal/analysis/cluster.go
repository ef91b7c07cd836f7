package analysis

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"textlens-backend/internal/textproc"
)

// Clustering defaults. PCA dimensionality and the k range follow the tuning
// notes in DESIGN.md; all are overridable on the Clusterer.
const (
	defaultMaxFeatures   = 100
	defaultPCAComponents = 10
	defaultMaxClusters   = 8
	defaultMaxIterations = 100
	defaultSeed          = 42
	maxCoordinateWords   = 20
)

// WordCoordinate is a 2-D position for one word, for visualization.
type WordCoordinate struct {
	Word      string  `json:"word"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	ClusterID int     `json:"cluster_id"`
}

// Cluster is one thematic group of vocabulary words.
type Cluster struct {
	ID              int              `json:"id"`
	Label           string           `json:"label"`
	Words           []string         `json:"words"`
	Size            int              `json:"size"`
	Centroid        []float64        `json:"centroid,omitempty"`
	CoherenceScore  float64          `json:"coherence_score"`
	WordCoordinates []WordCoordinate `json:"word_coordinates,omitempty"`
}

// ClusteringResult is the full clustering of one document. Cluster ids are
// dense 0..k-1 and every considered vocabulary word belongs to exactly one
// cluster.
type ClusteringResult struct {
	Clusters      []Cluster `json:"clusters"`
	TotalClusters int       `json:"total_clusters"`
	Algorithm     string    `json:"algorithm"`
}

// Clusterer groups a document's vocabulary into themes via sentence TF-IDF
// vectors, PCA reduction and k-means. Given identical input and the same
// Seed, the clustering is reproducible.
type Clusterer struct {
	MaxFeatures   int
	PCAComponents int
	MaxClusters   int
	MaxIterations int
	Seed          int64
}

// NewClusterer constructs a Clusterer with default tuning.
func NewClusterer() *Clusterer {
	return &Clusterer{
		MaxFeatures:   defaultMaxFeatures,
		PCAComponents: defaultPCAComponents,
		MaxClusters:   defaultMaxClusters,
		MaxIterations: defaultMaxIterations,
		Seed:          defaultSeed,
	}
}

// Cluster vectorizes the document's sentences, picks the cluster count that
// maximizes the mean silhouette over a small candidate range, and assigns
// every vocabulary term to its best cluster.
func (c *Clusterer) Cluster(ctx context.Context, pre *textproc.PreprocessedText) (*ClusteringResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	model, ok := buildTFIDF(pre.Sentences, c.MaxFeatures)
	if !ok {
		return c.fallback(pre), nil
	}

	rows, _ := model.matrix.Dims()
	kMax := c.MaxClusters
	if half := rows / 2; half < kMax {
		kMax = half
	}
	if vocabCap := len(model.vocab) / 10; vocabCap < kMax {
		kMax = vocabCap
	}
	if kMax < 2 {
		return c.singleCluster(model), nil
	}

	reduced := c.reduceMatrix(model)

	bestK := 2
	bestScore := math.Inf(-1)
	var bestAssign []int
	var bestCentroids *mat.Dense
	for k := 2; k <= kMax; k++ {
		rng := rand.New(rand.NewSource(c.Seed))
		assign, centroids := kmeans(reduced, k, c.MaxIterations, rng)
		score := meanSilhouette(reduced, assign, k)
		if score > bestScore {
			bestScore = score
			bestK = k
			bestAssign = assign
			bestCentroids = centroids
		}
	}

	return c.buildResult(model, reduced, bestAssign, bestCentroids, bestK, bestScore), nil
}

func (c *Clusterer) reduceMatrix(model *tfidfModel) *mat.Dense {
	components := c.PCAComponents
	if components <= 0 {
		components = defaultPCAComponents
	}
	return model.reduce(components)
}

// buildResult converts raw k-means output into the public result shape:
// empty clusters dropped, ids re-numbered densely, each vocabulary word
// assigned to the cluster where its summed TF-IDF weight is highest.
func (c *Clusterer) buildResult(model *tfidfModel, reduced *mat.Dense, assign []int, centroids *mat.Dense, k int, coherence float64) *ClusteringResult {
	_, cols := model.matrix.Dims()

	// Per-cluster term weights summed over member sentences.
	weights := make([][]float64, k)
	sizes := make([]int, k)
	for i := range weights {
		weights[i] = make([]float64, cols)
	}
	for row, cl := range assign {
		sizes[cl]++
		for j := 0; j < cols; j++ {
			weights[cl][j] += model.matrix.At(row, j)
		}
	}

	// Assign each term to its argmax cluster; ties go to the lower id.
	members := make([][]string, k)
	for j, term := range model.vocab {
		best, bestW := 0, weights[0][j]
		for cl := 1; cl < k; cl++ {
			if weights[cl][j] > bestW {
				best, bestW = cl, weights[cl][j]
			}
		}
		if bestW <= 0 {
			continue
		}
		members[best] = append(members[best], term)
	}

	clusters := make([]Cluster, 0, k)
	for cl := 0; cl < k; cl++ {
		if len(members[cl]) == 0 {
			continue
		}
		words := members[cl]
		sort.Slice(words, func(a, b int) bool {
			wa, wb := weights[cl][model.index[words[a]]], weights[cl][model.index[words[b]]]
			if wa != wb {
				return wa > wb
			}
			return words[a] < words[b]
		})

		id := len(clusters)
		centroid := centroidCoords(centroids, cl)
		clusters = append(clusters, Cluster{
			ID:              id,
			Label:           clusterLabel(words),
			Words:           words,
			Size:            sizes[cl],
			Centroid:        centroid,
			CoherenceScore:  coherence,
			WordCoordinates: wordCoordinates(words, id, centroid),
		})
	}

	if len(clusters) == 0 {
		return c.singleCluster(model)
	}

	return &ClusteringResult{
		Clusters:      clusters,
		TotalClusters: len(clusters),
		Algorithm:     "tfidf_pca_kmeans",
	}
}

// singleCluster is the degenerate case: every term in one cluster.
func (c *Clusterer) singleCluster(model *tfidfModel) *ClusteringResult {
	rows, cols := model.matrix.Dims()
	weightSum := make([]float64, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			weightSum[j] += model.matrix.At(i, j)
		}
	}
	words := append([]string(nil), model.vocab...)
	sort.Slice(words, func(a, b int) bool {
		wa, wb := weightSum[model.index[words[a]]], weightSum[model.index[words[b]]]
		if wa != wb {
			return wa > wb
		}
		return words[a] < words[b]
	})

	cluster := Cluster{
		ID:              0,
		Label:           clusterLabel(words),
		Words:           words,
		Size:            rows,
		CoherenceScore:  1.0,
		WordCoordinates: wordCoordinates(words, 0, nil),
	}
	return &ClusteringResult{
		Clusters:      []Cluster{cluster},
		TotalClusters: 1,
		Algorithm:     "tfidf_pca_kmeans",
	}
}

// fallback handles documents with no vectorizable sentences: cluster the
// stopword-filtered vocabulary directly.
func (c *Clusterer) fallback(pre *textproc.PreprocessedText) *ClusteringResult {
	words := make([]string, 0, len(pre.WordFreqs))
	for word := range pre.WordFreqs {
		words = append(words, word)
	}
	sort.Slice(words, func(a, b int) bool {
		fa, fb := pre.WordFreqs[words[a]], pre.WordFreqs[words[b]]
		if fa != fb {
			return fa > fb
		}
		return words[a] < words[b]
	})

	cluster := Cluster{
		ID:              0,
		Label:           clusterLabel(words),
		Words:           words,
		Size:            len(words),
		CoherenceScore:  1.0,
		WordCoordinates: wordCoordinates(words, 0, nil),
	}
	return &ClusteringResult{
		Clusters:      []Cluster{cluster},
		TotalClusters: 1,
		Algorithm:     "tfidf_pca_kmeans",
	}
}

func clusterLabel(words []string) string {
	if len(words) == 0 {
		return "General"
	}
	top := words[0]
	return strings.ToUpper(top[:1]) + top[1:] + " Theme"
}

// centroidCoords takes the first two principal components of the centroid.
func centroidCoords(centroids *mat.Dense, cl int) []float64 {
	if centroids == nil {
		return nil
	}
	_, dims := centroids.Dims()
	out := make([]float64, 0, 2)
	for d := 0; d < dims && d < 2; d++ {
		out = append(out, centroids.At(cl, d))
	}
	return out
}

// wordCoordinates lays cluster words on a unit circle around the centroid.
func wordCoordinates(words []string, clusterID int, centroid []float64) []WordCoordinate {
	if len(words) == 0 {
		return nil
	}
	cx, cy := 0.0, 0.0
	if len(centroid) >= 2 {
		cx, cy = centroid[0], centroid[1]
	}

	limit := len(words)
	if limit > maxCoordinateWords {
		limit = maxCoordinateWords
	}
	coords := make([]WordCoordinate, 0, limit)
	for i := 0; i < limit; i++ {
		angle := float64(i) / float64(len(words)) * 2 * math.Pi
		coords = append(coords, WordCoordinate{
			Word:      words[i],
			X:         cx + math.Cos(angle),
			Y:         cy + math.Sin(angle),
			ClusterID: clusterID,
		})
	}
	return coords
}
