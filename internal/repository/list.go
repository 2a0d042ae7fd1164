package repository

import (
	"context"
	"strconv"
	"strings"

	"farmcloud/internal/apperrors"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// ListOptions carries the list query of a collection endpoint.
// Filters are keyed by query parameter name; unknown keys are ignored.
type ListOptions struct {
	Filters  map[string]string
	Search   string
	Ordering string
	Page     int
	PageSize int
}

// Normalize clamps paging to sane bounds.
func (o *ListOptions) Normalize() {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.PageSize > MaxPageSize {
		o.PageSize = MaxPageSize
	}
}

type filterKind int

const (
	filterString filterKind = iota
	filterBool
	filterInt
)

type filterField struct {
	column string
	kind   filterKind
}

// listSpec whitelists what a collection may be filtered, searched and ordered by.
type listSpec struct {
	filters       map[string]filterField
	searchColumns []string
	// searchScope adds extra OR conditions to the search, e.g. through a subquery.
	searchScope  func(db *gorm.DB, pattern string) *gorm.DB
	orderable    map[string]string
	defaultOrder string
}

func (s listSpec) filterValue(param, raw string) (any, error) {
	field := s.filters[param]
	switch field.kind {
	case filterBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apperrors.NewValidationError(param, "must be true or false")
		}
		return v, nil
	case filterInt:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperrors.NewValidationError(param, "must be an integer")
		}
		return v, nil
	default:
		return raw, nil
	}
}

func (s listSpec) apply(db *gorm.DB, opts ListOptions) (*gorm.DB, error) {
	for param, raw := range opts.Filters {
		field, ok := s.filters[param]
		if !ok || raw == "" {
			continue
		}
		value, err := s.filterValue(param, raw)
		if err != nil {
			return nil, err
		}
		db = db.Where(field.column+" = ?", value)
	}

	if term := strings.TrimSpace(opts.Search); term != "" && (len(s.searchColumns) > 0 || s.searchScope != nil) {
		pattern := "%" + strings.ToLower(term) + "%"
		cond := db.Session(&gorm.Session{NewDB: true})
		for i, column := range s.searchColumns {
			if i == 0 {
				cond = cond.Where("LOWER("+column+") LIKE ?", pattern)
				continue
			}
			cond = cond.Or("LOWER("+column+") LIKE ?", pattern)
		}
		if s.searchScope != nil {
			cond = s.searchScope(cond, pattern)
		}
		db = db.Where(cond)
	}
	return db, nil
}

func (s listSpec) orderClause(ordering string) string {
	var parts []string
	for _, field := range strings.Split(ordering, ",") {
		field = strings.TrimSpace(field)
		desc := strings.HasPrefix(field, "-")
		column, ok := s.orderable[strings.TrimPrefix(field, "-")]
		if !ok {
			continue
		}
		if desc {
			column += " DESC"
		}
		parts = append(parts, column)
	}
	if len(parts) == 0 {
		return s.defaultOrder
	}
	return strings.Join(parts, ", ") + ", id"
}

// list runs a filtered, searched, ordered and paginated query over T.
func list[T any](ctx context.Context, db *gorm.DB, spec listSpec, opts ListOptions, scopes ...func(*gorm.DB) *gorm.DB) ([]T, int64, error) {
	opts.Normalize()

	query, err := spec.apply(db.WithContext(ctx).Model(new(T)), opts)
	if err != nil {
		return nil, 0, err
	}

	var count int64
	if err := query.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, 0, translate(err)
	}

	var items []T
	err = query.Scopes(scopes...).
		Order(spec.orderClause(opts.Ordering)).
		Offset((opts.Page - 1) * opts.PageSize).
		Limit(opts.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return items, count, nil
}
