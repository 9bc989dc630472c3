package dto

// MaxPage bounds ?page= so the row offset always fits in an int.
const MaxPage = 100000

// PageQuery is bound from ?page= and ?page_size=. Zero means "use the default".
type PageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1,max=100000"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Normalize fills in defaults and caps the page size at 100 and the page at
// MaxPage.
func (q PageQuery) Normalize(defaultSize int) (page, pageSize int) {
	page, pageSize = q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if pageSize < 1 {
		pageSize = defaultSize
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

// Paginated is the envelope every list endpoint answers with.
type Paginated[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func NewPaginated[T any](data []T, total int64, page, pageSize int) *Paginated[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(total / int64(pageSize))
		if total%int64(pageSize) != 0 {
			totalPages++
		}
	}
	return &Paginated[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// MapSlice converts a page of models into response DTOs.
func MapSlice[M any, T any](items []M, fn func(*M) T) []T {
	out := make([]T, 0, len(items))
	for i := range items {
		out = append(out, fn(&items[i]))
	}
	return out
}
