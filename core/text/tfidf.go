package text

import "math"

// ScoreTFIDF computes the TF-IDF relevance of a document against the query
// tokens. Per query token present in the document it adds
// tf * (ln((N+1)/(df+1)) + 1), the smoothed-IDF variant; absent tokens
// contribute nothing. An empty query scores 0.
func ScoreTFIDF(queryTokens []string, tf map[string]int, df map[string]int, corpusSize int) float64 {
	n := float64(corpusSize)
	score := 0.0
	for _, qt := range queryTokens {
		f, ok := tf[qt]
		if !ok {
			continue
		}
		d := float64(df[qt])
		if d <= 0 {
			continue
		}
		idf := math.Log((n+1)/(d+1)) + 1
		score += float64(f) * idf
	}
	return score
}
