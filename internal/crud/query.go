package crud

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

const (
	defaultPage  = 1
	defaultLimit = 100
	defaultSort  = "created_at desc"
)

// Query parameter keys that drive the query shape instead of filtering.
var reservedKeys = []string{"page", "sort", "limit", "fields"}

// Comparison suffixes accepted in filter keys, e.g. likes[gte]=5.
var comparisonOps = map[string]string{
	"gte": ">=",
	"gt":  ">",
	"lte": "<=",
	"lt":  "<",
}

type filter struct {
	column string
	op     string
	value  string
}

// Features translates the list query parameters into gorm query
// modifiers, applied in a fixed order: filter, sort, projection,
// pagination. Column names run through an allow-list, unknown fields are
// dropped rather than rejected.
type Features struct {
	filters []filter
	order   string
	fields  []string
	page    int
	limit   int
}

// ParseFeatures reads the supported query parameters. allowed holds the
// snake_case column names that may be filtered, sorted or projected;
// extras are columns always kept in a projection (foreign keys needed by
// preloads).
func ParseFeatures(q url.Values, allowed, extras []string) *Features {
	f := &Features{
		order: defaultSort,
		page:  defaultPage,
		limit: defaultLimit,
	}

	for key, vals := range q {
		if slices.Contains(reservedKeys, key) || len(vals) == 0 {
			continue
		}

		col, op := splitFilterKey(key)
		col = toSnake(col)

		if !slices.Contains(allowed, col) {
			continue
		}

		f.filters = append(f.filters, filter{column: col, op: op, value: vals[0]})
	}

	// Deterministic ordering regardless of map iteration
	slices.SortFunc(f.filters, func(a, b filter) int {
		return strings.Compare(a.column+a.op, b.column+b.op)
	})

	if sort := q.Get("sort"); sort != "" {
		var parts []string

		for _, tok := range strings.Split(sort, ",") {
			desc := strings.HasPrefix(tok, "-")
			col := toSnake(strings.TrimPrefix(tok, "-"))

			if !slices.Contains(allowed, col) {
				continue
			}

			if desc {
				parts = append(parts, col+" desc")
			} else {
				parts = append(parts, col+" asc")
			}
		}

		if len(parts) > 0 {
			f.order = strings.Join(parts, ", ")
		}
	}

	if fields := q.Get("fields"); fields != "" {
		cols := []string{"id"}

		for _, tok := range strings.Split(fields, ",") {
			col := toSnake(tok)
			if slices.Contains(allowed, col) && !slices.Contains(cols, col) {
				cols = append(cols, col)
			}
		}

		for _, col := range extras {
			if !slices.Contains(cols, col) {
				cols = append(cols, col)
			}
		}

		f.fields = cols
	}

	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		f.page = page
	}

	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		f.limit = limit
	}

	return f
}

// Apply attaches the parsed features to a gorm query.
func (f *Features) Apply(db *gorm.DB) *gorm.DB {
	for _, flt := range f.filters {
		db = db.Where(fmt.Sprintf("%s %s ?", flt.column, flt.op), flt.value)
	}

	db = db.Order(f.order)

	if len(f.fields) > 0 {
		db = db.Select(f.fields)
	}

	return db.Offset((f.page - 1) * f.limit).Limit(f.limit)
}

// splitFilterKey turns "likes[gte]" into ("likes", ">="); a bare key is
// an equality match.
func splitFilterKey(key string) (col, op string) {
	open := strings.IndexByte(key, '[')
	if open == -1 || !strings.HasSuffix(key, "]") {
		return key, "="
	}

	sqlOp, ok := comparisonOps[key[open+1:len(key)-1]]
	if !ok {
		return key, "="
	}

	return key[:open], sqlOp
}

func toSnake(s string) string {
	var b strings.Builder

	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}

	return b.String()
}
