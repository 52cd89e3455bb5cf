package content

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/igtharvillage/thar-api/services/search"
	"github.com/igtharvillage/thar-api/utils/response"
	"go.uber.org/zap"
)

// SearchHandler serves cross-collection search
type SearchHandler struct {
	kinds   []Kind
	indexer search.Indexer
}

func NewSearchHandler(kinds []Kind, indexer search.Indexer) *SearchHandler {
	if indexer == nil {
		indexer = search.NoopIndexer{}
	}
	return &SearchHandler{kinds: kinds, indexer: indexer}
}

// Search handles GET /api/v1/search?q=&kind=&limit=
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return response.BadRequest(c, "Query parameter q is required")
	}

	limit := c.QueryInt("limit", 10)
	if limit < 1 || limit > 50 {
		limit = 10
	}

	kinds := h.kinds
	if name := c.Query("kind"); name != "" {
		kinds = nil
		for _, k := range h.kinds {
			if k.Name() == name {
				kinds = []Kind{k}
				break
			}
		}
		if kinds == nil {
			return response.BadRequest(c, "Unknown kind "+name)
		}
	}

	hits := []search.Hit{}
	for _, k := range kinds {
		hits = append(hits, h.searchKind(c.UserContext(), k, query, limit)...)
	}

	return response.Success(c, fiber.Map{
		"query": query,
		"hits":  hits,
		"total": len(hits),
	})
}

// searchKind uses the index when one is configured and falls back to the
// database when the index is disabled or fails
func (h *SearchHandler) searchKind(ctx context.Context, k Kind, query string, limit int) []search.Hit {
	if h.indexer.Enabled() {
		hits, err := h.indexer.Search(k.Name(), query, limit)
		if err == nil {
			return hits
		}
		zap.S().Warnf("[SEARCH] %s index query failed, using database: %v", k.Name(), err)
	}
	return k.SearchLocal(ctx, query, limit)
}

// Reindex rebuilds the index of every kind and returns the document count
func (h *SearchHandler) Reindex(ctx context.Context) (int, error) {
	total := 0
	for _, k := range h.kinds {
		n, err := k.Reindex(ctx)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// HandleReindex handles POST /api/v1/admin/search/reindex
func (h *SearchHandler) HandleReindex(c *fiber.Ctx) error {
	if !h.indexer.Enabled() {
		return response.ServiceUnavailable(c, "Search index is not configured")
	}
	total, err := h.Reindex(c.UserContext())
	if err != nil {
		zap.S().Errorf("[SEARCH] reindex failed after %d documents: %v", total, err)
		return response.InternalServerError(c, "Failed to rebuild search index")
	}
	return response.SuccessWithMessage(c, "Search index rebuilt", fiber.Map{"indexed": total})
}
