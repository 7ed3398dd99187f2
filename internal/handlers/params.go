package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/musiclib/backend/internal/services"
	"github.com/spf13/cast"
)

// queryInt reads an integer query parameter. Missing or malformed values are 0,
// which the page policies treat as "use the default".
func queryInt(c *gin.Context, key string) int {
	n, err := cast.ToIntE(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

// pathID parses the :id route parameter.
func pathID(c *gin.Context) (uint, bool) {
	id, err := cast.ToUintE(c.Param("id"))
	if err != nil || id == 0 {
		badRequest(c, "Некорректный идентификатор.")
		return 0, false
	}
	return id, true
}

func optionalQueryID(c *gin.Context, key string) (*uint, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := cast.ToUintE(raw)
	if err != nil || id == 0 {
		badRequest(c, "Некорректный параметр "+key+".")
		return nil, false
	}
	return &id, true
}

// mapPage converts the items of a page and keeps the pagination fields.
func mapPage[T, R any](p *services.Page[T], fn func(T) R) *services.Page[R] {
	items := make([]R, len(p.Items))
	for i, item := range p.Items {
		items[i] = fn(item)
	}
	return &services.Page[R]{
		Items:       items,
		Page:        p.Page,
		PageSize:    p.PageSize,
		TotalCount:  p.TotalCount,
		TotalPages:  p.TotalPages,
		HasNext:     p.HasNext,
		HasPrevious: p.HasPrevious,
	}
}
