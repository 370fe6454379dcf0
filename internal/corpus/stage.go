package corpus

import "github.com/LLM4Rocq/LLM4Docq/internal/rocq"

// Stage names
const (
	StagePreprocess = "preprocess"
	StageSkeleton   = "skeleton"
	StageStatements = "statements"
)

// Stage is one per-unit transformation. Run returns the rewritten unit and,
// for extraction stages, its entries keyed by fully qualified name.
type Stage struct {
	Name string
	Run  func(text string) (string, map[string]*rocq.Entry, error)
}

// Extracts reports whether the stage produces entries.
func (s Stage) Extracts() bool {
	return s.Name != StagePreprocess
}

// Preprocess strips proofs and comments and squeezes blank lines.
func Preprocess() Stage {
	return Stage{
		Name: StagePreprocess,
		Run: func(text string) (string, map[string]*rocq.Entry, error) {
			out, err := rocq.Preprocess(text)
			return out, nil, err
		},
	}
}

// Skeleton extracts every named declaration.
func Skeleton() Stage {
	return Stage{Name: StageSkeleton, Run: rocq.BuildSkeleton}
}

// Statements extracts declarations that carry a proof.
func Statements() Stage {
	return Stage{Name: StageStatements, Run: rocq.BuildStatements}
}
