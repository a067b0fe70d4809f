package specification

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByID filters by ID
type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// Pagination
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit).Offset(s.Offset)
}

// TimeWindow keeps rows whose Field lies in [From, To). A nil To leaves the
// window open-ended.
type TimeWindow struct {
	Field string
	From  time.Time
	To    *time.Time
}

func (s TimeWindow) Apply(db *gorm.DB) *gorm.DB {
	db = db.Where(fmt.Sprintf("%s >= ?", s.Field), s.From.UTC())
	if s.To != nil {
		db = db.Where(fmt.Sprintf("%s < ?", s.Field), s.To.UTC())
	}
	return db
}
