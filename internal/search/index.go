// Package search is an in-memory keyword index over declarations, used for
// lookups from the command line and for picking mutually dissimilar
// benchmark candidates.
package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/index/scorch"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	index "github.com/blevesearch/bleve_index_api"

	"github.com/LLM4Rocq/LLM4Docq/internal/rocq"
)

// Search limits
const (
	DefaultLimit = 15
	MaxLimit     = 100
	batchSize    = 1000
)

// Document is one searchable record.
type Document struct {
	ID   string `json:"id"`
	Unit string `json:"unit"`
	Name string `json:"name"`
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Options narrows a search. The zero value searches everything.
type Options struct {
	Limit int
	Kind  string // exact kind, e.g. "Lemma"
	Unit  string // exact unit id
}

// Result is one hit.
type Result struct {
	Document   Document `json:"document"`
	Score      float64  `json:"score"`
	Highlights []string `json:"highlights,omitempty"`
}

// Index is a bleve index held in memory. It is safe for concurrent searches.
type Index struct {
	index bleve.Index
	mu    sync.RWMutex
	size  int
}

// NewIndex indexes docs in batches. Document ids must be unique. The index
// is a scorch index without a path, held in memory, since BM25 scoring needs
// scorch field statistics.
func NewIndex(ctx context.Context, docs []Document) (*Index, error) {
	idx, err := bleve.NewUsing("", buildMapping(), scorch.Name, scorch.Name, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	if err := indexDocuments(ctx, idx, docs); err != nil {
		idx.Close()
		return nil, fmt.Errorf("failed to index documents: %w", err)
	}
	return &Index{index: idx, size: len(docs)}, nil
}

// EntryDocuments turns a dataset into documents keyed "unit#fqn". The text is
// the docstring followed by the declaration.
func EntryDocuments(ds rocq.Dataset) []Document {
	var docs []Document
	for _, unit := range ds.Units() {
		for _, fqn := range ds.Names(unit) {
			e := ds[unit][fqn]
			if e == nil {
				continue
			}
			text := e.Text
			if e.Docstring != "" {
				text = e.Docstring + "\n" + e.Text
			}
			docs = append(docs, Document{
				ID:   unit + "#" + fqn,
				Unit: unit,
				Name: fqn,
				Kind: string(e.Kind),
				Text: text,
			})
		}
	}
	return docs
}

// buildMapping creates the index mapping for documents, scored with BM25.
func buildMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.ScoringModel = index.BM25Scoring

	keyword := func(indexed bool) *mapping.FieldMapping {
		m := bleve.NewTextFieldMapping()
		m.Analyzer = "keyword"
		m.Store = true
		m.Index = indexed
		return m
	}

	textMapping := bleve.NewTextFieldMapping()
	textMapping.Analyzer = "standard"
	textMapping.Store = true
	textMapping.Index = true
	textMapping.IncludeTermVectors = true

	nameMapping := bleve.NewTextFieldMapping()
	nameMapping.Analyzer = "standard"
	nameMapping.Store = true
	nameMapping.Index = true

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("id", keyword(false))
	docMapping.AddFieldMappingsAt("unit", keyword(true))
	docMapping.AddFieldMappingsAt("kind", keyword(true))
	docMapping.AddFieldMappingsAt("name", nameMapping)
	docMapping.AddFieldMappingsAt("text", textMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

func indexDocuments(ctx context.Context, idx bleve.Index, docs []Document) error {
	batch := idx.NewBatch()
	for i, doc := range docs {
		if i%batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		if err := batch.Index(doc.ID, toFields(doc)); err != nil {
			return fmt.Errorf("failed to add document %s to batch: %w", doc.ID, err)
		}
		if batch.Size() >= batchSize {
			if err := idx.Batch(batch); err != nil {
				return fmt.Errorf("failed to execute batch: %w", err)
			}
			batch = idx.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := idx.Batch(batch); err != nil {
			return fmt.Errorf("failed to execute final batch: %w", err)
		}
	}
	return nil
}

func toFields(doc Document) map[string]interface{} {
	return map[string]interface{}{
		"id":   doc.ID,
		"unit": doc.Unit,
		"name": doc.Name,
		"kind": doc.Kind,
		"text": doc.Text,
	}
}

// Len returns the number of indexed documents.
func (i *Index) Len() int {
	return i.size
}

// Search runs a bleve query-string query, optionally filtered by kind and unit.
func (i *Index) Search(ctx context.Context, queryStr string, opts *Options) ([]Result, error) {
	if opts == nil {
		opts = &Options{}
	}
	limit := opts.Limit
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}

	queries := []query.Query{bleve.NewQueryStringQuery(queryStr)}
	if opts.Kind != "" {
		q := bleve.NewTermQuery(opts.Kind)
		q.SetField("kind")
		queries = append(queries, q)
	}
	if opts.Unit != "" {
		q := bleve.NewTermQuery(opts.Unit)
		q.SetField("unit")
		queries = append(queries, q)
	}

	var final query.Query = queries[0]
	if len(queries) > 1 {
		final = bleve.NewConjunctionQuery(queries...)
	}

	req := bleve.NewSearchRequestOptions(final, limit, 0, false)
	req.Highlight = bleve.NewHighlight()
	req.Highlight.Fields = []string{"text"}
	req.Fields = []string{"id", "unit", "name", "kind", "text"}

	i.mu.RLock()
	res, err := i.index.SearchInContext(ctx, req)
	i.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	results := make([]Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		var highlights []string
		for _, snippets := range hit.Fragments {
			highlights = append(highlights, snippets...)
		}
		if len(highlights) > 3 {
			highlights = highlights[:3]
		}
		results = append(results, Result{
			Document:   fromFields(hit.ID, hit.Fields),
			Score:      hit.Score,
			Highlights: highlights,
		})
	}
	return results, nil
}

func fromFields(id string, fields map[string]interface{}) Document {
	doc := Document{ID: id}
	doc.Unit, _ = fields["unit"].(string)
	doc.Name, _ = fields["name"].(string)
	doc.Kind, _ = fields["kind"].(string)
	doc.Text, _ = fields["text"].(string)
	return doc
}

// Scores returns the relevance of every document matching text, by id.
// Documents that share no term with text are absent.
func (i *Index) Scores(ctx context.Context, text string) (map[string]float64, error) {
	q := bleve.NewMatchQuery(text)
	q.SetField("text")

	req := bleve.NewSearchRequestOptions(q, max(i.size, 1), 0, false)

	i.mu.RLock()
	res, err := i.index.SearchInContext(ctx, req)
	i.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	scores := make(map[string]float64, len(res.Hits))
	for _, hit := range res.Hits {
		scores[hit.ID] = hit.Score
	}
	return scores, nil
}

// Close releases the index.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.index.Close()
}
