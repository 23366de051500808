package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/siherrmann/graphrag/core/text"
	"github.com/siherrmann/graphrag/metrics"
	"github.com/siherrmann/graphrag/model"
)

const (
	centralityBoost     = 0.2
	communityBoost      = 0.15
	communityJaccard    = 0.25
	cooccurrenceJaccard = 0.2
	rerankEpsilon       = 1e-6
	synthesisDocuments  = 3
	synthesisMaxBytes   = 512
	fallbackTextWeight  = 0.7
	fallbackGraphWeight = 0.3
)

// Retriever runs the staged search pipeline over a document and graph
// source. It is safe for concurrent use; each Search call keeps its
// working state on the stack.
type Retriever struct {
	config    *model.Config
	documents DocumentSource
	graph     GraphSource
	metrics   *metrics.Recorder
	log       *slog.Logger

	mu              sync.Mutex
	lastPerformance model.PerformanceMetrics
}

// NewRetriever creates a new Retriever. A nil config falls back to
// [model.DefaultConfig], a nil recorder to a no-op recorder and a nil
// logger to [slog.Default].
func NewRetriever(config *model.Config, documents DocumentSource, graph GraphSource, recorder *metrics.Recorder, logger *slog.Logger) *Retriever {
	if config == nil {
		config = model.DefaultConfig()
	}
	if recorder == nil {
		recorder = metrics.NewNoopRecorder()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		config:    config,
		documents: documents,
		graph:     graph,
		metrics:   recorder,
		log:       logger,
	}
}

// LastPerformance returns per stage timings of the most recent Search call.
func (r *Retriever) LastPerformance() model.PerformanceMetrics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastPerformance
}

type scoredDoc struct {
	index int
	score float64
}

// Search runs the full retrieval pipeline for the given query and
// returns a result even when the corpus is empty or a backing store
// fails; degraded stages are skipped instead of aborting the query.
func (r *Retriever) Search(ctx context.Context, query *model.Query) *model.Result {
	start := time.Now()
	perf := model.PerformanceMetrics{}

	strategy := query.Strategy
	if strategy == "" {
		strategy = r.config.SearchStrategy
	}
	algorithms := []string{fmt.Sprintf("strategy:%v", strategy)}

	docs, err := r.documents.SelectAllDocuments(ctx)
	if err != nil {
		r.log.Warn("document source failed, searching empty corpus", slog.Any("error", err))
		docs = nil
	}

	queryTokens := text.Tokenize(query.Text)

	hydeOn := query.Config.UseHyDE || r.config.HyDEEnabled
	if hydeOn {
		stageStart := time.Now()
		queryTokens = expandHyDE(queryTokens)
		algorithms = append(algorithms, "hyde")
		perf.HyDETimeMS = stageMS(stageStart)
		r.metrics.RecordStage(ctx, "hyde", perf.HyDETimeMS)
	}

	docTF := make([]map[string]int, len(docs))
	docSets := make([]map[string]struct{}, len(docs))
	df := map[string]int{}
	for i, d := range docs {
		tokens := text.Tokenize(d.Body())
		docTF[i] = text.TermFrequencies(tokens)
		docSets[i] = text.TokenSet(tokens)
		for token := range docSets[i] {
			df[token]++
		}
	}

	top := make([]scoredDoc, 0, len(docs))
	for i := range docs {
		score := text.ScoreTFIDF(queryTokens, docTF[i], df, len(docs))
		top = append(top, scoredDoc{index: i, score: score})
	}
	sortByScore(top)

	maxResults := query.Config.MaxResults
	if maxResults < 1 {
		maxResults = 1
	}
	if len(top) > maxResults {
		top = top[:maxResults]
	}

	if r.config.PageRankEnabled && len(top) > 1 {
		stageStart := time.Now()
		r.applyCentrality(top, docSets)
		algorithms = append(algorithms, "pagerank_weighting")
		perf.PageRankTimeMS = stageMS(stageStart)
		r.metrics.RecordStage(ctx, "pagerank_weighting", perf.PageRankTimeMS)
	}

	communityOn := query.Config.UseCommunityDetection || r.config.CommunityDetectionEnabled
	if communityOn && len(top) > 1 {
		stageStart := time.Now()
		r.applyCommunityBoost(top, docSets)
		algorithms = append(algorithms, "community_boost")
		perf.CommunityDetectionTimeMS = stageMS(stageStart)
		r.metrics.RecordStage(ctx, "community_boost", perf.CommunityDetectionTimeMS)
	}

	reranked := false
	if query.Config.UseReranking || r.config.RerankingEnabled {
		stageStart := time.Now()
		for i := range top {
			top[i].score += float64(i) * rerankEpsilon
		}
		sortByScore(top)
		reranked = true
		algorithms = append(algorithms, "advanced_rerank")
		perf.RerankingTimeMS = stageMS(stageStart)
		r.metrics.RecordStage(ctx, "advanced_rerank", perf.RerankingTimeMS)
	}

	if r.config.HybridEnabled && len(top) > 0 {
		stageStart := time.Now()
		r.applyHybridFusion(ctx, top, docs)
		algorithms = append(algorithms, "hybrid_fusion")
		perf.HybridFusionTimeMS = stageMS(stageStart)
		r.metrics.RecordStage(ctx, "hybrid_fusion", perf.HybridFusionTimeMS)
	}

	nodes := make([]model.ResultNode, 0, len(top))
	scores := make([]float64, 0, len(top))
	for _, sd := range top {
		doc := docs[sd.index]
		nodes = append(nodes, model.ResultNode{
			ID:         doc.ID,
			Content:    doc.Body(),
			Source:     doc.Title,
			Confidence: clampConfidence(sd.score),
		})
		scores = append(scores, sd.score)
	}
	normalizeScores(scores)

	var edges []*model.GraphEdge
	if len(top) > 1 {
		edges = cooccurrenceEdges(top, docs, docSets)
		algorithms = append(algorithms, "cooccurrence_edges")
	}

	algorithms = append(algorithms, strategyTag(strategy))
	algorithms = append(algorithms, "tfidf")

	var summary *string
	if r.config.SynthesisEnabled && len(top) > 0 {
		stageStart := time.Now()
		summary = synthesize(top, docs)
		algorithms = append(algorithms, "synthesis")
		perf.SynthesisTimeMS = stageMS(stageStart)
		r.metrics.RecordStage(ctx, "synthesis", perf.SynthesisTimeMS)
	}

	perf.TotalTimeMS = stageMS(start)
	r.metrics.RecordQuery(ctx, perf.TotalTimeMS, len(docs))

	r.mu.Lock()
	r.lastPerformance = perf
	r.mu.Unlock()

	r.log.Debug(
		"search finished",
		slog.String("query", query.ID),
		slog.Int("documents", len(docs)),
		slog.Int("results", len(nodes)),
		slog.Float64("ms", perf.TotalTimeMS),
	)

	return &model.Result{
		QueryID: query.ID,
		Nodes:   nodes,
		Edges:   edges,
		Scores:  scores,
		Metadata: model.ResultMetadata{
			ProcessingTimeMS:       perf.TotalTimeMS,
			TotalDocumentsSearched: len(docs),
			Reranked:               reranked,
			HyDEEnhanced:           hydeOn,
			CommunityFiltered:      communityOn,
			AlgorithmsUsed:         algorithms,
			Summary:                summary,
		},
	}
}

// expandHyDE widens the query by repeating its tokens and appending the
// concatenation of every adjacent token pair, which upweights the
// original terms relative to the rest of the corpus vocabulary.
func expandHyDE(tokens []string) []string {
	expanded := make([]string, 0, 2*len(tokens)+len(tokens))
	expanded = append(expanded, tokens...)
	expanded = append(expanded, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		expanded = append(expanded, tokens[i]+tokens[i+1])
	}
	return expanded
}

// applyCentrality boosts each candidate by its normalized similarity
// centrality within the candidate set.
func (r *Retriever) applyCentrality(top []scoredDoc, docSets []map[string]struct{}) {
	centrality := make([]float64, len(top))
	maxCentrality := 0.0
	for i, a := range top {
		sum := 0.0
		for j, b := range top {
			if i == j {
				continue
			}
			sum += text.Jaccard(docSets[a.index], docSets[b.index])
		}
		centrality[i] = sum
		if sum > maxCentrality {
			maxCentrality = sum
		}
	}
	if maxCentrality <= 0 {
		return
	}
	for i := range top {
		top[i].score *= 1 + centralityBoost*(centrality[i]/maxCentrality)
	}
	sortByScore(top)
}

// applyCommunityBoost boosts candidates that share a dense neighborhood
// with other candidates, approximated by counting pairs above a Jaccard
// threshold.
func (r *Retriever) applyCommunityBoost(top []scoredDoc, docSets []map[string]struct{}) {
	neighbors := make([]int, len(top))
	maxNeighbors := 0
	for i, a := range top {
		count := 0
		for j, b := range top {
			if i == j {
				continue
			}
			if text.Jaccard(docSets[a.index], docSets[b.index]) >= communityJaccard {
				count++
			}
		}
		neighbors[i] = count
		if count > maxNeighbors {
			maxNeighbors = count
		}
	}
	if maxNeighbors <= 0 {
		return
	}
	for i := range top {
		top[i].score *= 1 + communityBoost*float64(neighbors[i])/float64(maxNeighbors)
	}
	sortByScore(top)
}

// applyHybridFusion blends the text score with a graph degree signal
// computed over mention edges touching the candidate documents.
func (r *Retriever) applyHybridFusion(ctx context.Context, top []scoredDoc, docs []*model.Document) {
	snapshot, err := r.graph.SelectGraph(ctx)
	if err != nil {
		r.log.Warn("graph source failed, fusing against empty graph", slog.Any("error", err))
		snapshot = &model.GraphSnapshot{}
	}
	if snapshot == nil {
		snapshot = &model.GraphSnapshot{}
	}

	docIndex := map[string]int{}
	for i, sd := range top {
		docIndex[docs[sd.index].ID] = i
	}
	degree := make([]float64, len(top))
	for _, edge := range snapshot.Edges {
		if edge.Relation != model.RelationMentions {
			continue
		}
		if i, ok := docIndex[edge.From]; ok {
			degree[i]++
		}
		if i, ok := docIndex[edge.To]; ok {
			degree[i]++
		}
	}

	textScores := make([]float64, len(top))
	for i := range top {
		textScores[i] = top[i].score
	}
	normalizeScores(textScores)
	normalizeScores(degree)

	textWeight, graphWeight := r.fusionWeights()
	for i := range top {
		top[i].score = textWeight*textScores[i] + graphWeight*degree[i]
	}
	sortByScore(top)
}

// fusionWeights returns the configured fusion weights normalized to sum
// to one, falling back to the defaults when the configuration is
// degenerate.
func (r *Retriever) fusionWeights() (float64, float64) {
	textWeight := r.config.FusionTextWeight
	graphWeight := r.config.FusionGraphWeight
	if textWeight < 0 {
		textWeight = 0
	}
	if graphWeight < 0 {
		graphWeight = 0
	}
	sum := textWeight + graphWeight
	if sum <= 0 {
		return fallbackTextWeight, fallbackGraphWeight
	}
	return textWeight / sum, graphWeight / sum
}

// cooccurrenceEdges derives transient edges between result documents
// whose token sets overlap strongly.
func cooccurrenceEdges(top []scoredDoc, docs []*model.Document, docSets []map[string]struct{}) []*model.GraphEdge {
	var edges []*model.GraphEdge
	for i := 0; i < len(top); i++ {
		for j := i + 1; j < len(top); j++ {
			similarity := text.Jaccard(docSets[top[i].index], docSets[top[j].index])
			if similarity < cooccurrenceJaccard {
				continue
			}
			src := docs[top[i].index].ID
			tgt := docs[top[j].index].ID
			edges = append(edges, &model.GraphEdge{
				ID:       fmt.Sprintf("%v-rel-%v", src, tgt),
				From:     src,
				To:       tgt,
				Relation: model.RelationRelatedTo,
				Weight:   similarity,
				Metadata: model.Metadata{"confidence": similarity},
			})
		}
	}
	return edges
}

// synthesize builds a short summary from the leading sentence of the
// best documents. Returns nil when nothing usable is found.
func synthesize(top []scoredDoc, docs []*model.Document) *string {
	var sentences []string
	for i := 0; i < len(top) && i < synthesisDocuments; i++ {
		sentence := firstSentence(docs[top[i].index].Body())
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
	}
	if len(sentences) == 0 {
		return nil
	}
	summary := strings.Join(sentences, ". ") + "."
	if len(summary) > synthesisMaxBytes {
		summary = summary[:synthesisMaxBytes]
	}
	return &summary
}

func firstSentence(content string) string {
	end := strings.IndexAny(content, ".!?")
	if end >= 0 {
		content = content[:end]
	}
	return strings.TrimSpace(content)
}

func strategyTag(strategy model.SearchStrategy) string {
	switch strategy {
	case model.StrategyLocal:
		return "local"
	case model.StrategyGlobal:
		return "global"
	case model.StrategyCombined:
		return "combined"
	default:
		return "auto"
	}
}

// sortByScore orders candidates by descending score. The sort is stable
// so equally scored documents keep their corpus order.
func sortByScore(top []scoredDoc) {
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].score > top[j].score
	})
}

// normalizeScores divides all scores by their maximum so the best entry
// scores 1.0. A non-positive maximum leaves the slice untouched.
func normalizeScores(scores []float64) {
	maxScore := 0.0
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}
	if maxScore <= 0 {
		return
	}
	for i := range scores {
		scores[i] /= maxScore
	}
}

func clampConfidence(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1e9 {
		return 1e9
	}
	return score
}

func stageMS(start time.Time) float64 {
	ms := float64(time.Since(start)) / float64(time.Millisecond)
	if ms <= 0 {
		ms = 0.000001
	}
	return ms
}
