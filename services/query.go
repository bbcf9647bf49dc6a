package services

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FilterKind int

const (
	FilterEqual FilterKind = iota // exact string match
	FilterLike                    // case-insensitive substring
	FilterUint                    // unsigned id
	FilterInt
	FilterUUID
)

// Filter maps one query parameter onto a predicate. When LinkTable is set the
// parent is kept only if the link table holds a matching row, so each parent
// appears at most once:
//
//	Column IN (SELECT LinkOwner FROM LinkTable WHERE LinkColumn = ?)
type Filter struct {
	Param      string
	Column     string
	Kind       FilterKind
	LinkTable  string
	LinkOwner  string
	LinkColumn string
}

// ListSpec describes what a list endpoint accepts.
type ListSpec struct {
	SortFields  map[string]string // API name -> column
	DefaultSort string
	Filters     []Filter
}

type ListParams struct {
	Page       int
	Limit      int
	Paginated  bool
	SortColumn string
	Desc       bool
}

func (p ListParams) Offset() int { return (p.Page - 1) * p.Limit }

// TotalPages is ceil(total/limit) without the total+limit overflow.
func (p ListParams) TotalPages(total int64) int64 {
	pages := total / int64(p.Limit)
	if total%int64(p.Limit) != 0 {
		pages++
	}
	return pages
}

// Page is the list envelope. Page and TotalPages are only set for paginated requests.
type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       *int  `json:"page,omitempty"`
	TotalPages *int  `json:"totalPages,omitempty"`
}

// ParseListParams reads page/limit and sort parameters. "sort=field:ORDER"
// wins over sortField/sortOrder; any order other than DESC is ASC.
func ParseListParams(q url.Values, spec ListSpec) (ListParams, error) {
	var p ListParams

	page, errPage := strconv.Atoi(q.Get("page"))
	limit, errLimit := strconv.Atoi(q.Get("limit"))
	if errPage == nil && errLimit == nil && page > 0 && limit > 0 {
		p.Page, p.Limit, p.Paginated = page, limit, true
	}

	field, order := spec.DefaultSort, ""
	if s := strings.TrimSpace(q.Get("sort")); s != "" {
		parts := strings.SplitN(s, ":", 2)
		if parts[0] != "" {
			field = parts[0]
		}
		if len(parts) == 2 {
			order = parts[1]
		}
	} else {
		if f := strings.TrimSpace(q.Get("sortField")); f != "" {
			field = f
		}
		order = q.Get("sortOrder")
	}

	column, ok := spec.SortFields[field]
	if !ok {
		return p, NewValidationError("Invalid sort field: " + field)
	}
	p.SortColumn = column
	p.Desc = strings.EqualFold(strings.TrimSpace(order), "DESC")
	return p, nil
}

// likeEscaper makes LIKE input match literally. The escape character must
// stay portable across postgres, mysql and sqlite, so it is not a backslash.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// ApplyFilters adds a predicate for every filter parameter present in q.
func ApplyFilters(db *gorm.DB, q url.Values, filters []Filter) (*gorm.DB, error) {
	for _, f := range filters {
		raw := strings.TrimSpace(q.Get(f.Param))
		if raw == "" {
			continue
		}

		var value any
		switch f.Kind {
		case FilterLike:
			value = "%" + likeEscaper.Replace(strings.ToLower(raw)) + "%"
		case FilterUint:
			n, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return nil, NewValidationError(f.Param + " must be a positive integer")
			}
			value = uint(n)
		case FilterInt:
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, NewValidationError(f.Param + " must be an integer")
			}
			value = n
		case FilterUUID:
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, NewValidationError(f.Param + " must be a valid UUID")
			}
			value = id
		default:
			value = raw
		}

		switch {
		case f.LinkTable != "":
			db = db.Where(fmt.Sprintf("%s IN (SELECT %s FROM %s WHERE %s = ?)",
				f.Column, f.LinkOwner, f.LinkTable, f.LinkColumn), value)
		case f.Kind == FilterLike:
			db = db.Where(fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '!'", f.Column), value)
		default:
			db = db.Where(fmt.Sprintf("%s = ?", f.Column), value)
		}
	}
	return db, nil
}

// List parses q, filters db and returns one page. preload, when not nil, is
// applied to the data query only.
func List[T any](db *gorm.DB, q url.Values, spec ListSpec, preload func(*gorm.DB) *gorm.DB) (*Page[T], error) {
	params, err := ParseListParams(q, spec)
	if err != nil {
		return nil, err
	}
	filtered, err := ApplyFilters(db, q, spec.Filters)
	if err != nil {
		return nil, err
	}
	return Paginate[T](filtered, params, preload)
}

// Paginate counts the full filtered set, then fetches the requested slice.
func Paginate[T any](db *gorm.DB, p ListParams, preload func(*gorm.DB) *gorm.DB) (*Page[T], error) {
	base := db.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	out := &Page[T]{Data: make([]T, 0), Total: total}
	if p.Paginated {
		totalPages := p.TotalPages(total)
		page, pages := p.Page, int(totalPages)
		out.Page = &page
		out.TotalPages = &pages
		// Past the last page the offset may not fit in an int.
		if int64(p.Page) > totalPages {
			return out, nil
		}
	}

	query := base.Order(clause.OrderByColumn{Column: clause.Column{Name: p.SortColumn}, Desc: p.Desc})
	if preload != nil {
		query = preload(query)
	}
	if p.Paginated {
		query = query.Offset(p.Offset()).Limit(p.Limit)
	}

	if err := query.Find(&out.Data).Error; err != nil {
		return nil, err
	}
	return out, nil
}
