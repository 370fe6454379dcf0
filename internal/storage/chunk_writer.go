package storage

import (
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/LLM4Rocq/LLM4Docq/internal/chunk"
)

// WriteChunks stores chunks under runID. Annotations are kept as the same
// JSON the chunk files carry.
func (s *Store) WriteChunks(runID string, chunks []chunk.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	return s.withTx(func(runner sq.BaseRunner) error {
		for _, c := range chunks {
			annotations, err := json.Marshal(c.Annotations)
			if err != nil {
				return fmt.Errorf("failed to encode annotations of %s: %w", c.FileName(), err)
			}
			_, err = sq.Insert("chunks").
				Columns("run_id", "unit", "chunk_index", "start_line", "end_line", "source", "annotations").
				Values(runID, c.Unit, c.Index, c.StartLine, c.EndLine, c.Source, string(annotations)).
				RunWith(runner).
				Exec()
			if err != nil {
				return fmt.Errorf("failed to insert chunk %s: %w", c.FileName(), err)
			}
		}
		return nil
	})
}

// ReadChunks returns the chunks of unit written under runID, in order.
func (s *Store) ReadChunks(runID, unit string) ([]chunk.Chunk, error) {
	rows, err := sq.Select("chunk_index", "start_line", "end_line", "source", "annotations").
		From("chunks").
		Where(sq.Eq{"run_id": runID, "unit": unit}).
		OrderBy("chunk_index").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []chunk.Chunk
	for rows.Next() {
		c := chunk.Chunk{Unit: unit}
		var annotations string
		if err := rows.Scan(&c.Index, &c.StartLine, &c.EndLine, &c.Source, &annotations); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		if err := json.Unmarshal([]byte(annotations), &c.Annotations); err != nil {
			return nil, fmt.Errorf("failed to decode annotations of chunk %d: %w", c.Index, err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chunks: %w", err)
	}
	return chunks, nil
}
