package model

// NodeType distinguishes document nodes from extracted entity nodes.
type NodeType string

const (
	NodeTypeDocument NodeType = "document"
	NodeTypeEntity   NodeType = "entity"
)

// Well-known edge relations. Relation is free-form, these are the ones the
// extraction stub and the retriever emit.
const (
	RelationMentions  = "mentions"
	RelationIsA       = "is_a"
	RelationWorksAt   = "works_at"
	RelationRelatedTo = "related_to"
)

// GraphNode is a node in the persisted knowledge graph.
// SourceDocumentID is empty for nodes not derived from a document.
type GraphNode struct {
	ID               string   `json:"id"`
	Label            string   `json:"label,omitempty"`
	NodeType         NodeType `json:"node_type"`
	SourceDocumentID string   `json:"source_document_id,omitempty"`
	Metadata         Metadata `json:"metadata,omitempty"`
}

// GraphEdge is a directed edge between two graph nodes.
type GraphEdge struct {
	ID       string   `json:"id"`
	From     string   `json:"from"`
	To       string   `json:"to"`
	Relation string   `json:"relation"`
	Weight   float64  `json:"weight"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// GraphSnapshot is a read-only copy of the graph store taken at the start of
// a task. Retrieval and traversal never mutate it.
type GraphSnapshot struct {
	Nodes []*GraphNode `json:"nodes"`
	Edges []*GraphEdge `json:"edges"`
}

// HasNode reports whether a node with the given id exists in the snapshot.
func (s *GraphSnapshot) HasNode(id string) bool {
	for _, n := range s.Nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// RemoveDocumentCascade removes everything associated with a document id:
// nodes whose id or source document id match, edges touching a removed node,
// and edges touching the document id directly.
func (s *GraphSnapshot) RemoveDocumentCascade(documentID string) {
	removed := make(map[string]struct{})
	for _, n := range s.Nodes {
		if n.ID == documentID || n.SourceDocumentID == documentID {
			removed[n.ID] = struct{}{}
		}
	}

	if len(removed) == 0 {
		// Still drop edges pointing directly at the document id.
		s.Edges = filterEdges(s.Edges, func(e *GraphEdge) bool {
			return e.From != documentID && e.To != documentID
		})
		return
	}

	kept := s.Nodes[:0]
	for _, n := range s.Nodes {
		if _, ok := removed[n.ID]; !ok {
			kept = append(kept, n)
		}
	}
	s.Nodes = kept

	s.Edges = filterEdges(s.Edges, func(e *GraphEdge) bool {
		_, fromRemoved := removed[e.From]
		_, toRemoved := removed[e.To]
		touchesDoc := e.From == documentID || e.To == documentID
		return !fromRemoved && !toRemoved && !touchesDoc
	})
}

func filterEdges(edges []*GraphEdge, keep func(*GraphEdge) bool) []*GraphEdge {
	kept := edges[:0]
	for _, e := range edges {
		if keep(e) {
			kept = append(kept, e)
		}
	}
	return kept
}
