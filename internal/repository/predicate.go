package repository

import (
	"gorm.io/gorm"

	"github.com/oggyb/vibeu-engine/internal/agegroup"
)

// Predicate is the typed eligibility filter for candidate queries. It is the
// only way discovery filters reach SQL; values are always bound parameters.
type Predicate struct {
	// ExcludeIDs are never returned (caller, liked, skipped).
	ExcludeIDs []string
	// Birth bounds birth_date to one age bracket.
	Birth agegroup.DateRange
	// Country restricts to one country when non-empty (local mode).
	Country string
	// AfterID resumes strictly after this id in id order.
	AfterID string
}

// apply adds the predicate to q. Columns are qualified with "users." so the
// filter also works on joined queries.
func (p Predicate) apply(q *gorm.DB) *gorm.DB {
	q = q.Where("users.is_banned = ?", false)

	if len(p.ExcludeIDs) > 0 {
		q = q.Where("users.id NOT IN ?", p.ExcludeIDs)
	}
	if p.Birth.From != nil {
		q = q.Where("users.birth_date >= ?", *p.Birth.From)
	}
	if p.Birth.To != nil {
		q = q.Where("users.birth_date <= ?", *p.Birth.To)
	}
	if p.Birth.Before != nil {
		q = q.Where("users.birth_date < ?", *p.Birth.Before)
	}
	if p.Country != "" {
		q = q.Where("users.country = ?", p.Country)
	}
	if p.AfterID != "" {
		q = q.Where("users.id > ?", p.AfterID)
	}
	return q
}
