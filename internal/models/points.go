package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Points is a decimal column: text on sqlite, unconstrained numeric on
// postgres. Values never pass through float64.
type Points struct {
	decimal.Decimal
}

func NewPoints(d decimal.Decimal) Points {
	return Points{Decimal: d}
}

func (Points) GormDataType() string {
	return "decimal"
}

func (Points) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "numeric"
	default:
		return "text"
	}
}
