package handlers

import (
	"net/http"
	"strconv"

	"farmcloud/internal/apperrors"
	"farmcloud/internal/repository"

	"github.com/gin-gonic/gin"
)

var reservedParams = map[string]bool{
	"page":      true,
	"page_size": true,
	"search":    true,
	"ordering":  true,
}

// listOptions reads paging, search, ordering and filter parameters.
// Every other query parameter is passed on as a filter; repositories ignore unknown ones.
func listOptions(c *gin.Context) (repository.ListOptions, error) {
	opts := repository.ListOptions{
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
		Filters:  make(map[string]string),
	}

	verr := &apperrors.ValidationError{}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			verr.Add("page", "Invalid page.")
		}
		opts.Page = page
	}
	if raw := c.Query("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			verr.Add("page_size", "must be a positive integer")
		}
		opts.PageSize = size
	}
	if err := verr.Err(); err != nil {
		return opts, err
	}

	for key, values := range c.Request.URL.Query() {
		if reservedParams[key] || len(values) == 0 {
			continue
		}
		opts.Filters[key] = values[0]
	}
	opts.Normalize()
	return opts, nil
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.ErrNotFound
	}
	return uint(id), nil
}

// respondList writes the paginated list envelope.
func respondList[T any](c *gin.Context, opts repository.ListOptions, count int64, results []T) {
	if results == nil {
		results = []T{}
	}
	c.JSON(http.StatusOK, listResponse[T]{
		Count:    count,
		Page:     opts.Page,
		PageSize: opts.PageSize,
		Results:  results,
	})
}
