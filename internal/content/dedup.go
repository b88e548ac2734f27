package content

import "lamah/internal/models"

type ClassKind int

const (
	KindNew ClassKind = iota
	KindSimilar
	KindExact
)

func (k ClassKind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindSimilar:
		return "similar"
	default:
		return "new"
	}
}

type Classification struct {
	Kind     ClassKind
	Existing *models.Question
}

// Index answers duplicate lookups against a snapshot of existing questions.
// Matching is byte-exact on text and answer; no normalization is applied.
type Index struct {
	exact  map[string]*models.Question
	byText map[string][]*models.Question
}

func NewIndex(existing []*models.Question) *Index {
	ix := &Index{
		exact:  make(map[string]*models.Question, len(existing)),
		byText: make(map[string][]*models.Question, len(existing)),
	}
	for _, q := range existing {
		ix.Accept(q)
	}
	return ix
}

func exactKey(text, answer string) string {
	return text + "\x00" + answer
}

// Classify reports whether a candidate repeats an existing question (same
// text and answer), shares only its text, or is new.
func (ix *Index) Classify(text, answer string) Classification {
	if q, ok := ix.exact[exactKey(text, answer)]; ok {
		return Classification{Kind: KindExact, Existing: q}
	}
	if qs := ix.byText[text]; len(qs) > 0 {
		return Classification{Kind: KindSimilar, Existing: qs[0]}
	}
	return Classification{Kind: KindNew}
}

// Accept adds a question to the index so later candidates of the same run
// are compared against it.
func (ix *Index) Accept(q *models.Question) {
	key := exactKey(q.Text, q.Answer)
	if _, ok := ix.exact[key]; !ok {
		ix.exact[key] = q
	}
	ix.byText[q.Text] = append(ix.byText[q.Text], q)
}

func (ix *Index) Len() int {
	return len(ix.exact)
}
