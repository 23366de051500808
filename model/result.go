package model

// ResultNode is one ranked entry in a retrieval result. ID is the stable
// document id, so callers can re-fetch or cross-reference it.
type ResultNode struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	Source     string  `json:"source,omitempty"`
	Confidence float64 `json:"confidence"` // raw pipeline score before normalization
}

// ResultMetadata describes how a result was produced.
type ResultMetadata struct {
	ProcessingTimeMS       float64  `json:"processing_time_ms"`
	TotalDocumentsSearched int      `json:"total_documents_searched"`
	Reranked               bool     `json:"reranked"`
	HyDEEnhanced           bool     `json:"hyde_enhanced"`
	CommunityFiltered      bool     `json:"community_filtered"`
	AlgorithmsUsed         []string `json:"algorithms_used"`
	Summary                *string  `json:"summary,omitempty"`
}

// Result is a ranked, optionally synthesized answer to a query.
// Scores runs parallel to Nodes and is normalized so the top result is 1.0.
type Result struct {
	QueryID  string         `json:"query_id"`
	Nodes    []ResultNode   `json:"nodes"`
	Edges    []*GraphEdge   `json:"edges"`
	Scores   []float64      `json:"scores"`
	Metadata ResultMetadata `json:"metadata"`
}
