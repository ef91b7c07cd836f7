package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"textlens-backend/internal/textproc"
)

// minClusterSentenceLen filters out fragments too short to carry a theme.
const minClusterSentenceLen = 20

// tfidfModel holds the sentence-term matrix for clustering. Rows are
// sentences, columns the selected vocabulary, values l2-normalized TF-IDF
// weights.
type tfidfModel struct {
	vocab  []string
	index  map[string]int
	matrix *mat.Dense
}

// buildTFIDF vectorizes the usable sentences over the document vocabulary
// with stopwords removed, keeping at most maxFeatures terms by document
// frequency. It returns false when the document has too little distinct
// content to vectorize.
func buildTFIDF(sentences []textproc.Sentence, maxFeatures int) (*tfidfModel, bool) {
	usable := make([]textproc.Sentence, 0, len(sentences))
	for _, s := range sentences {
		if len(s.Text) > minClusterSentenceLen {
			usable = append(usable, s)
		}
	}
	if len(usable) == 0 {
		return nil, false
	}

	// Document frequency over stopword-filtered terms.
	df := make(map[string]int)
	sentenceTerms := make([]map[string]int, len(usable))
	for i, s := range usable {
		counts := make(map[string]int)
		for _, tok := range s.Tokens {
			if len(tok) < 2 || textproc.IsStopword(tok) {
				continue
			}
			counts[tok]++
		}
		sentenceTerms[i] = counts
		for term := range counts {
			df[term]++
		}
	}
	if len(df) == 0 {
		return nil, false
	}

	vocab := make([]string, 0, len(df))
	for term := range df {
		vocab = append(vocab, term)
	}
	sort.Slice(vocab, func(i, j int) bool {
		if df[vocab[i]] != df[vocab[j]] {
			return df[vocab[i]] > df[vocab[j]]
		}
		return vocab[i] < vocab[j]
	})
	if len(vocab) > maxFeatures {
		vocab = vocab[:maxFeatures]
	}
	sort.Strings(vocab)

	index := make(map[string]int, len(vocab))
	for i, term := range vocab {
		index[term] = i
	}

	n := float64(len(usable))
	matrix := mat.NewDense(len(usable), len(vocab), nil)
	for i, counts := range sentenceTerms {
		norm := 0.0
		row := make([]float64, len(vocab))
		for term, count := range counts {
			j, ok := index[term]
			if !ok {
				continue
			}
			idf := math.Log((1+n)/(1+float64(df[term]))) + 1
			w := float64(count) * idf
			row[j] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range row {
				row[j] /= norm
			}
		}
		matrix.SetRow(i, row)
	}

	return &tfidfModel{vocab: vocab, index: index, matrix: matrix}, true
}

// reduce projects the matrix onto its leading principal components. The
// number of components is bounded by the data's dimensions.
func (m *tfidfModel) reduce(components int) *mat.Dense {
	rows, cols := m.matrix.Dims()
	if components > cols {
		components = cols
	}
	if components > rows {
		components = rows
	}
	if components < 1 {
		components = 1
	}

	// Center columns.
	centered := mat.NewDense(rows, cols, nil)
	means := make([]float64, cols)
	for j := 0; j < cols; j++ {
		sum := 0.0
		for i := 0; i < rows; i++ {
			sum += m.matrix.At(i, j)
		}
		means[j] = sum / float64(rows)
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			centered.Set(i, j, m.matrix.At(i, j)-means[j])
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		// Degenerate factorization: fall back to the raw matrix.
		return mat.DenseCopyOf(m.matrix)
	}

	var v mat.Dense
	svd.VTo(&v)
	_, vCols := v.Dims()
	if components > vCols {
		components = vCols
	}

	projection := v.Slice(0, cols, 0, components)
	var reduced mat.Dense
	reduced.Mul(centered, projection)
	return &reduced
}
