package v1

import (
	"fmt"
	"math"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// pageWindow converts a 1-based page and a limit into limit and offset.
// Pages whose offset would overflow an int are rejected.
func pageWindow(page, limit int) (int, int, error) {
	if page < 1 || limit < 1 || limit > MaxLimit || page-1 > math.MaxInt/limit {
		return 0, 0, fmt.Errorf("page %d limit %d: %w", page, limit, ErrInvalidPage)
	}
	return limit, (page - 1) * limit, nil
}
