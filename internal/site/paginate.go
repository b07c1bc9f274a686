package site

// PageCount returns ceil(total/perPage); zero items mean zero pages.
func PageCount(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// Paginate splits items into consecutive pages of at most perPage items.
// Concatenating the pages in order reproduces items exactly.
func Paginate[T any](items []T, perPage int) [][]T {
	if perPage <= 0 {
		return nil
	}
	pages := make([][]T, 0, PageCount(len(items), perPage))
	for start := 0; start < len(items); start += perPage {
		end := start + perPage
		if end > len(items) {
			end = len(items)
		}
		pages = append(pages, items[start:end])
	}
	return pages
}
