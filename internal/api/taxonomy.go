package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"

	"github.com/tphakala/birddex/internal/taxonomy"
)

// initTaxonomyRoutes registers the species search and resolution routes.
func (c *Controller) initTaxonomyRoutes() {
	c.Group.GET("/taxonomy/search", c.HandleTaxonomySearch)
	c.Group.GET("/taxonomy/resolve", c.HandleTaxonomyResolve)
}

// SearchResponse is the autocomplete reply.
type SearchResponse struct {
	Query   string            `json:"query"`
	Results []taxonomy.Result `json:"results"`
}

// HandleTaxonomySearch serves species autocomplete queries.
func (c *Controller) HandleTaxonomySearch(ctx echo.Context) error {
	defer c.observe("taxonomy_search", time.Now())

	query := ctx.QueryParam("q")
	limit := 0
	if raw := ctx.QueryParam("limit"); raw != "" {
		// Invalid limits fall back to the catalog default rather than
		// erroring; the search contract is total.
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	if c.metrics != nil {
		c.metrics.TaxonomySearches.Inc()
	}

	cacheKey := fmt.Sprintf("%s|%d", query, limit)
	if cached, found := c.searchCache.Get(cacheKey); found {
		return ctx.JSON(http.StatusOK, cached)
	}

	results := c.Catalog.Search(query, limit)
	if results == nil {
		results = []taxonomy.Result{}
	}
	resp := SearchResponse{Query: query, Results: results}
	c.searchCache.Set(cacheKey, resp, cache.DefaultExpiration)
	return ctx.JSON(http.StatusOK, resp)
}

// ResolveResponse reports how a freeform name canonicalizes.
type ResolveResponse struct {
	Input         string `json:"input"`
	Matched       bool   `json:"matched"`
	CanonicalName string `json:"canonical_name"`
	Scientific    string `json:"scientific_name,omitempty"`
	ReferenceCode string `json:"reference_code,omitempty"`
	ArticleTitle  string `json:"article_title,omitempty"`
}

// HandleTaxonomyResolve canonicalizes a freeform species name.
func (c *Controller) HandleTaxonomyResolve(ctx echo.Context) error {
	defer c.observe("taxonomy_resolve", time.Now())

	input := ctx.QueryParam("name")
	rec, matched := c.Resolver.FindBestMatch(input)

	if c.metrics != nil {
		outcome := "unmatched"
		if matched {
			outcome = "matched"
		}
		c.metrics.NameResolutions.WithLabelValues(outcome).Inc()
	}

	resp := ResolveResponse{
		Input:         input,
		Matched:       matched,
		CanonicalName: c.Resolver.NormalizeSpeciesName(input),
	}
	if matched {
		resp.Scientific = rec.ScientificName
		resp.ReferenceCode = rec.ReferenceCode
		resp.ArticleTitle = rec.ArticleTitle
	}
	return ctx.JSON(http.StatusOK, resp)
}
