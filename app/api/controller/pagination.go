package controller

import (
	"math"
	"net/http"
	"strconv"
)

const (
	defaultLimit = 25
	maxLimit     = 100
)

type pageSpec struct {
	Limit int
	Page  int
}

// parsePageSpec validates limit and page before any store access. limit
// defaults to 25 and is capped at 100; page is 1-based and defaults to 1.
func parsePageSpec(r *http.Request) (pageSpec, error) {
	qs := r.URL.Query()
	limit := defaultLimit
	if v := qs.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err != nil || n <= 0 {
			return pageSpec{}, errInvalidLimit
		} else {
			limit = int(math.Min(float64(n), maxLimit))
		}
	}

	page := 1
	if v := qs.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return pageSpec{}, errInvalidPage
		}
		page = n
	}

	return pageSpec{Limit: limit, Page: page}, nil
}

var (
	errInvalidLimit = &parseError{msg: "invalid limit"}
	errInvalidPage  = &parseError{msg: "invalid page, must be a positive integer"}
)

type parseError struct{ msg string }

func (e *parseError) Error() string { return e.msg }
