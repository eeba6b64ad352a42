package dsl

import "github.com/roach88/qdsl/internal/queryir"

// AllOf conjoins the non-nil predicates. With nothing left it returns an
// empty And, which matches every row.
//
// This is the composition used by dynamic searches: each optional input
// contributes a predicate or nil, and AllOf keeps only the present ones.
func AllOf(preds ...queryir.Predicate) queryir.Predicate {
	kept := compact(preds)
	if len(kept) == 1 {
		return kept[0]
	}
	return queryir.And{Predicates: kept}
}

// And conjoins predicates, skipping nils.
func And(preds ...queryir.Predicate) queryir.Predicate {
	return AllOf(preds...)
}

// Or disjoins predicates, skipping nils. Returns nil when none remain so
// that an absent alternative does not restrict the query.
func Or(preds ...queryir.Predicate) queryir.Predicate {
	kept := compact(preds)
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return queryir.Or{Predicates: kept}
}

// Not negates p. Not(nil) is nil.
func Not(p queryir.Predicate) queryir.Predicate {
	if p == nil {
		return nil
	}
	return queryir.Not{Predicate: p}
}

func compact(preds []queryir.Predicate) []queryir.Predicate {
	kept := make([]queryir.Predicate, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return kept
}

// BooleanBuilder accumulates a predicate step by step. Nil arguments are
// ignored, so optional inputs can be added unconditionally.
type BooleanBuilder struct {
	value queryir.Predicate
}

// NewBooleanBuilder starts from an optional initial predicate.
func NewBooleanBuilder(initial ...queryir.Predicate) *BooleanBuilder {
	b := &BooleanBuilder{}
	for _, p := range initial {
		b.And(p)
	}
	return b
}

// And conjoins p with the current value.
func (b *BooleanBuilder) And(p queryir.Predicate) *BooleanBuilder {
	switch {
	case p == nil:
	case b.value == nil:
		b.value = p
	default:
		if and, ok := b.value.(queryir.And); ok {
			preds := append(append([]queryir.Predicate{}, and.Predicates...), p)
			b.value = queryir.And{Predicates: preds}
		} else {
			b.value = queryir.And{Predicates: []queryir.Predicate{b.value, p}}
		}
	}
	return b
}

// Or disjoins p with the current value.
func (b *BooleanBuilder) Or(p queryir.Predicate) *BooleanBuilder {
	switch {
	case p == nil:
	case b.value == nil:
		b.value = p
	default:
		b.value = queryir.Or{Predicates: []queryir.Predicate{b.value, p}}
	}
	return b
}

// HasValue reports whether any predicate has been added.
func (b *BooleanBuilder) HasValue() bool {
	return b.value != nil
}

// Value returns the accumulated predicate, or nil when empty.
func (b *BooleanBuilder) Value() queryir.Predicate {
	return b.value
}
