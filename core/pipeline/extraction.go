// Package pipeline contains the indexing side of the engine: heuristic
// entity/relation extraction and document index maintenance.
package pipeline

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/siherrmann/graphrag/model"
)

const maxPassageLen = 500

// ExtractEntitiesRelations derives graph nodes and edges from documents with
// a deterministic heuristic:
//   - one document node per document,
//   - unique TitleCase tokens (length >= 3) become entity nodes, deduplicated
//     by label and disambiguated with a #2, #3, ... id suffix,
//   - a "mentions" edge document -> entity per passage occurrence,
//   - sentence patterns "X is a Y" and "X works at Y" become relation edges
//     between entities.
//
// Extraction is deterministic for a given input.
func ExtractEntitiesRelations(docs []*model.Document) ([]*model.GraphNode, []*model.GraphEdge) {
	var nodes []*model.GraphNode
	var edges []*model.GraphEdge

	extractor := &extraction{
		existingIDs: make(map[string]struct{}),
		entityIDs:   make(map[string]string),
		nodeByID:    make(map[string]*model.GraphNode),
	}

	for _, d := range docs {
		docID := extractor.uniqueID("doc:" + d.ID)
		docNode := &model.GraphNode{
			ID:               docID,
			Label:            d.Title,
			NodeType:         model.NodeTypeDocument,
			SourceDocumentID: d.ID,
			Metadata: model.Metadata{
				"file_type":  d.FileType,
				"size_bytes": d.SizeBytes,
				"created_at": d.CreatedAt,
			},
		}
		nodes = append(nodes, docNode)

		backrefs := make(map[string][]model.Metadata)

		for passageIndex, passage := range chunkPassages(d.Body(), maxPassageLen) {
			seenInPassage := make(map[string]struct{})
			for _, token := range splitAlphanumeric(passage) {
				if !isTitleCase(token) || utf8.RuneCountInString(token) < 3 {
					continue
				}
				if _, seen := seenInPassage[token]; seen {
					continue
				}
				seenInPassage[token] = struct{}{}

				entityID, entityNode := extractor.ensureEntity(token)
				if entityNode != nil {
					nodes = append(nodes, entityNode)
				}
				backrefs[entityID] = append(backrefs[entityID], model.Metadata{
					"doc_id":        d.ID,
					"passage_index": passageIndex,
				})

				edgeID := extractor.uniqueID(fmt.Sprintf("e:%s->%s#p%d", docID, entityID, passageIndex))
				edges = append(edges, &model.GraphEdge{
					ID:       edgeID,
					From:     docID,
					To:       entityID,
					Relation: model.RelationMentions,
					Weight:   1.0,
					Metadata: model.Metadata{
						"source":        "stub",
						"doc_id":        d.ID,
						"passage_index": passageIndex,
					},
				})
			}

			for _, triple := range extractRelations(passage) {
				subjectID, subjectNode := extractor.ensureEntity(triple.subject)
				if subjectNode != nil {
					nodes = append(nodes, subjectNode)
				}
				objectID, objectNode := extractor.ensureEntity(triple.object)
				if objectNode != nil {
					nodes = append(nodes, objectNode)
				}

				backrefs[subjectID] = append(backrefs[subjectID], model.Metadata{
					"doc_id":        d.ID,
					"passage_index": passageIndex,
				})
				backrefs[objectID] = append(backrefs[objectID], model.Metadata{
					"doc_id":        d.ID,
					"passage_index": passageIndex,
				})

				edgeID := extractor.uniqueID(fmt.Sprintf("e:%s:%s->%s#p%d", triple.predicate, subjectID, objectID, passageIndex))
				edges = append(edges, &model.GraphEdge{
					ID:       edgeID,
					From:     subjectID,
					To:       objectID,
					Relation: triple.predicate,
					Weight:   1.0,
					Metadata: model.Metadata{
						"source":        "stub_re",
						"doc_id":        d.ID,
						"passage_index": passageIndex,
						"triple": model.Metadata{
							"subject":   triple.subject,
							"predicate": triple.predicate,
							"object":    triple.object,
						},
					},
				})
			}
		}

		extractor.mergeBackrefs(backrefs)
	}

	return nodes, edges
}

type extraction struct {
	existingIDs map[string]struct{}
	entityIDs   map[string]string // normalized label -> node id
	nodeByID    map[string]*model.GraphNode
}

// uniqueID reserves base, or base#2, base#3, ... on collision.
func (x *extraction) uniqueID(base string) string {
	if _, exists := x.existingIDs[base]; !exists {
		x.existingIDs[base] = struct{}{}
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s#%d", base, i)
		if _, exists := x.existingIDs[candidate]; !exists {
			x.existingIDs[candidate] = struct{}{}
			return candidate
		}
	}
}

// ensureEntity returns the node id for a label, creating the node on first
// sight. The returned node is non-nil only when newly created.
func (x *extraction) ensureEntity(label string) (string, *model.GraphNode) {
	if id, ok := x.entityIDs[label]; ok {
		return id, nil
	}
	id := x.uniqueID("ent:" + label)
	x.entityIDs[label] = id
	node := &model.GraphNode{
		ID:       id,
		Label:    label,
		NodeType: model.NodeTypeEntity,
		Metadata: model.Metadata{
			"aliases":  []string{label},
			"backrefs": []model.Metadata{},
		},
	}
	x.nodeByID[id] = node
	return id, node
}

func (x *extraction) mergeBackrefs(backrefs map[string][]model.Metadata) {
	for entityID, refs := range backrefs {
		node, ok := x.nodeByID[entityID]
		if !ok {
			continue
		}
		existing, _ := node.Metadata["backrefs"].([]model.Metadata)
		node.Metadata["backrefs"] = append(existing, refs...)
	}
}

// chunkPassages splits content on headings and blank lines and packs lines
// up to maxLen characters per passage.
func chunkPassages(content string, maxLen int) []string {
	var passages []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			passages = append(passages, s)
		}
		current.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		isHeading := strings.HasPrefix(strings.TrimLeft(line, " \t"), "#")
		isBlank := strings.TrimSpace(line) == ""
		if (isHeading || isBlank || current.Len()+len(line)+1 > maxLen) && strings.TrimSpace(current.String()) != "" {
			flush()
		}
		if strings.TrimSpace(line) != "" {
			if current.Len() > 0 {
				current.WriteByte('\n')
			}
			current.WriteString(line)
		}
	}
	flush()

	if len(passages) == 0 {
		passages = append(passages, content)
	}
	return passages
}

func splitAlphanumeric(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func isTitleCase(token string) bool {
	r, _ := utf8.DecodeRuneInString(token)
	return unicode.IsUpper(r)
}

type relationTriple struct {
	subject   string
	predicate string
	object    string
}

// extractRelations scans sentences for the two supported patterns.
func extractRelations(passage string) []relationTriple {
	var triples []relationTriple
	for _, sentence := range strings.FieldsFunc(passage, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		s := strings.TrimSpace(sentence)
		if s == "" {
			continue
		}

		if idx := strings.Index(s, " is a "); idx >= 0 {
			subject := strings.TrimSpace(s[:idx])
			rest := s[idx+len(" is a "):]
			fields := strings.Fields(rest)
			if len(fields) > 4 {
				fields = fields[:4]
			}
			object := strings.Trim(strings.Join(fields, " "), ",")
			if subject != "" && object != "" {
				triples = append(triples, relationTriple{subject: subject, predicate: model.RelationIsA, object: object})
				continue
			}
		}

		if idx := strings.Index(s, " works at "); idx >= 0 {
			subject := strings.TrimSpace(s[:idx])
			object := strings.TrimSpace(strings.Trim(s[idx+len(" works at "):], ","))
			if subject != "" && object != "" {
				triples = append(triples, relationTriple{subject: subject, predicate: model.RelationWorksAt, object: object})
			}
		}
	}
	return triples
}
