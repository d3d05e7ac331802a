package domain

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListQuery carries the common filters accepted by list endpoints.
type ListQuery struct {
	Limit    int
	Offset   int
	Search   string
	Status   string
	Category string
	UserID   int64
}

// Normalize clamps paging values into range.
func (q ListQuery) Normalize() ListQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// Page is a slice of results with the unpaged total.
type Page[T any] struct {
	Items []T
	Total int64
}
