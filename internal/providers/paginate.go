package providers

// Page sizes used by the dashboard tables
const (
	OnlinePageSize        = 30
	ParticipationPageSize = 10
	PricingPageSize       = 10

	windowSize = 5
)

// Page is one visible slice of a paginated list
type Page[T any] struct {
	Items    []T   `json:"items"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	LastPage int   `json:"last_page"`
	Total    int   `json:"total"`
	Window   []int `json:"window"`
}

// LastPage returns ceil(total/size)
func LastPage(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Paginate returns the 1-indexed page of data. Pages below 1 read as the
// first page; pages past the end are empty.
func Paginate[T any](data []T, page, size int) Page[T] {
	if page < 1 {
		page = 1
	}
	last := LastPage(len(data), size)
	p := Page[T]{
		Items:    []T{},
		Page:     page,
		PageSize: size,
		LastPage: last,
		Total:    len(data),
		Window:   PageWindow(page, last),
	}
	if size <= 0 || page > last {
		return p
	}

	start := (page - 1) * size
	if start >= len(data) {
		return p
	}
	end := start + size
	if end > len(data) {
		end = len(data)
	}
	p.Items = data[start:end]
	return p
}

// PageWindow returns the page numbers to render as buttons around the current page
func PageWindow(current, last int) []int {
	if last <= 0 {
		return []int{}
	}

	var from, to int
	switch {
	case current <= 3 || last <= windowSize:
		from, to = 1, windowSize
	case current >= last-2:
		from, to = last-windowSize+1, last
	default:
		from, to = current-2, current+2
	}
	if from < 1 {
		from = 1
	}
	if to > last {
		to = last
	}

	window := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		window = append(window, i)
	}
	return window
}
