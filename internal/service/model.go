package service

import "time"

// Cursor identifies a position in a paginated result set.
type Cursor struct {
	Position int
	Limit    int
	// Until is the exclusive createdAt bound an entry listing pinned on its first page.
	Until *time.Time
}

const defaultLimit = 20

func (c *Cursor) bounds() (limit, offset int) {
	if c == nil {
		return defaultLimit, 0
	}
	limit = c.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	return limit, c.Position
}

// page trims rows fetched with limit+1 and returns the cursor for the next page, if any.
func page[T any](rows []T, limit, offset int) ([]T, *Cursor) {
	if len(rows) <= limit {
		return rows, nil
	}
	return rows[:limit], &Cursor{Position: offset + limit, Limit: limit}
}
