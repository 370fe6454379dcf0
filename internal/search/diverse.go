package search

import (
	"context"
	"fmt"
	"slices"
	"strconv"
)

// SelectDiverse picks k mutually dissimilar texts and returns their indices
// in selection order. Similarity between two texts is the relevance of one
// when the other is used as a query. Selection starts from the first text and
// then repeatedly adds the text whose smallest similarity to the selected
// texts is lowest; ties go to the earlier text. k is capped at len(texts).
func SelectDiverse(ctx context.Context, texts []string, k int) ([]int, error) {
	k = min(k, len(texts))
	if k <= 0 {
		return nil, nil
	}

	docs := make([]Document, len(texts))
	for i, text := range texts {
		docs[i] = Document{ID: strconv.Itoa(i), Text: text}
	}
	idx, err := NewIndex(ctx, docs)
	if err != nil {
		return nil, err
	}
	defer idx.Close()

	// sim[i][j] is the score of j when querying with i
	sim := make([][]float64, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scores, err := idx.Scores(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("score text %d: %w", i, err)
		}
		row := make([]float64, len(texts))
		for id, s := range scores {
			j, err := strconv.Atoi(id)
			if err != nil {
				return nil, fmt.Errorf("unexpected document id %q", id)
			}
			row[j] = s
		}
		sim[i] = row
	}

	selected := []int{0}
	for len(selected) < k {
		best, bestScore := -1, 0.0
		for i := range texts {
			if slices.Contains(selected, i) {
				continue
			}
			closest := sim[i][selected[0]]
			for _, s := range selected[1:] {
				closest = min(closest, sim[i][s])
			}
			if best < 0 || closest < bestScore {
				best, bestScore = i, closest
			}
		}
		selected = append(selected, best)
	}
	return selected, nil
}
