package persistence

import (
	"finmarket/domain/shared"

	"gorm.io/gorm"
)

// ApplySpecification translates a domain specification into a GORM query:
// each clause becomes a WHERE condition (combined with AND), each include an
// eager-load Preload, and the single ordering an ORDER BY. A nil specification
// leaves the query untouched.
func ApplySpecification(db *gorm.DB, spec *shared.Specification) *gorm.DB {
	if spec == nil {
		return db
	}
	for _, clause := range spec.Clauses() {
		db = db.Where(clause.Expr, clause.Args...)
	}
	for _, association := range spec.Includes() {
		db = db.Preload(association)
	}
	if column, desc := spec.Ordering(); column != "" {
		if desc {
			db = db.Order(column + " DESC")
		} else {
			db = db.Order(column)
		}
	}
	return db
}
