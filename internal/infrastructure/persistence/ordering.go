package persistence

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortSpec whitelists the columns a list endpoint may order by
type sortSpec struct {
	fallback string
	columns  map[string]struct{}
}

func newSortSpec(fallback string, columns ...string) sortSpec {
	spec := sortSpec{fallback: fallback, columns: map[string]struct{}{fallback: {}, "id": {}, "created_at": {}, "updated_at": {}}}
	for _, c := range columns {
		spec.columns[c] = struct{}{}
	}
	return spec
}

var (
	invoiceSort = newSortSpec("period", "status", "total_due", "submission_date", "payment_date")
	expenseSort = newSortSpec("date", "amount", "type")
)

// column returns orderBy when whitelisted, the fallback otherwise
func (s sortSpec) column(orderBy string) string {
	if _, ok := s.columns[strings.TrimSpace(orderBy)]; ok {
		return strings.TrimSpace(orderBy)
	}
	return s.fallback
}

// apply orders newest first unless orderDir is "asc". Ties break on id so
// pages stay stable.
func (s sortSpec) apply(query *gorm.DB, orderBy, orderDir string) *gorm.DB {
	desc := !strings.EqualFold(strings.TrimSpace(orderDir), "asc")
	col := s.column(orderBy)
	query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: desc})
	if col != "id" {
		query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc})
	}
	return query
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern builds a case-insensitive LIKE pattern for a search term
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}
