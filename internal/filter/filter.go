package filter

import (
	"errors"
	"slices"
	"strings"

	"github.com/thisisjab/signup-go/internal/validator"
)

type Filters struct {
	Page         int
	PageSize     int
	Sort         string
	SortSafeList []string
}

func ValidateFilters(v *validator.Validator, f Filters) {
	v.Check(f.Page > 0, "page", "must be greater than zero")
	v.Check(f.Page <= 10_000_000, "page", "must be a maximum of 10 million")
	v.Check(f.PageSize > 0, "page_size", "must be greater than zero")
	v.Check(f.PageSize <= 100, "page_size", "must be a maximum of 100")

	// Check sorting only if both sort and sort safe list are provided.
	if len(f.SortSafeList) != 0 && f.Sort != "" {
		v.Check(validator.PermittedValue(f.Sort, f.SortSafeList...), "sort", "invalid sort value")
	}
}

// SortColumn returns the sort key without its direction prefix. An empty Sort
// falls back to the first entry of the safe list.
func (f Filters) SortColumn() string {
	sort := f.Sort
	if sort == "" && len(f.SortSafeList) > 0 {
		sort = f.SortSafeList[0]
	}

	if slices.Contains(f.SortSafeList, sort) {
		return strings.TrimPrefix(sort, "-")
	}

	panic("unsafe sort param: " + f.Sort)
}

func (f Filters) SortDirection() string {
	if strings.HasPrefix(f.Sort, "-") {
		return "DESC"
	}

	return "ASC"
}

func (f Filters) Limit() int {
	return f.PageSize
}

func (f Filters) Offset() int {
	return (f.Page - 1) * f.PageSize
}

type PaginationMetadata struct {
	CurrentPage  int `json:"current_page,omitempty"`
	PageSize     int `json:"page_size,omitempty"`
	FirstPage    int `json:"first_page,omitempty"`
	LastPage     int `json:"last_page,omitempty"`
	TotalRecords int `json:"total_records"`
}

var ErrInvalidPage = errors.New("invalid page")

func CalculatePaginationMetadata(totalRecords, page, pageSize int) (*PaginationMetadata, error) {
	if totalRecords == 0 {
		if page == 1 {
			return &PaginationMetadata{
				CurrentPage:  page,
				PageSize:     pageSize,
				FirstPage:    1,
				LastPage:     1,
				TotalRecords: 0,
			}, nil
		}

		return nil, ErrInvalidPage
	}

	lastPage := (totalRecords + pageSize - 1) / pageSize
	if page > lastPage {
		return nil, ErrInvalidPage
	}

	return &PaginationMetadata{
		CurrentPage:  page,
		PageSize:     pageSize,
		FirstPage:    1,
		LastPage:     lastPage,
		TotalRecords: totalRecords,
	}, nil
}
