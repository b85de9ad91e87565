package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/birddex/internal/dex"
)

// initDexRoutes registers the life-list routes.
func (c *Controller) initDexRoutes() {
	c.Group.GET("/dex", c.HandleGetDex)
	c.Group.POST("/dex/rebuild", c.HandleRebuildDex)
	c.Group.POST("/dex/import", c.HandleImportDex)
}

// DexResponse is the life-list reply.
type DexResponse struct {
	Entries []DexEntryDTO `json:"entries"`
}

// HandleGetDex returns the acting user's life list.
func (c *Controller) HandleGetDex(ctx echo.Context) error {
	defer c.observe("get_dex", time.Now())

	entries, err := c.DS.GetDexEntries(userID(ctx))
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load dex", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, DexResponse{Entries: entriesToDTO(entries)})
}

// rebuildDex recomputes and persists one user's dex from raw records.
// Callers must hold dexMu or otherwise own the read-modify-write cycle.
func (c *Controller) rebuildDex(user string) ([]dex.Entry, error) {
	outings, err := c.DS.GetOutings(user)
	if err != nil {
		return nil, err
	}
	observations, err := c.DS.GetObservations(user)
	if err != nil {
		return nil, err
	}
	existing, err := c.DS.GetDexEntries(user)
	if err != nil {
		return nil, err
	}

	entries := dex.Rebuild(outings, observations, existing, time.Now().UTC())
	if err := c.DS.ReplaceDexEntries(user, entries); err != nil {
		return nil, err
	}

	if c.metrics != nil {
		c.metrics.DexUpdates.WithLabelValues("rebuild").Inc()
		c.metrics.DexSpeciesCount.Set(float64(len(entries)))
	}
	return entries, nil
}

// HandleRebuildDex recomputes the acting user's dex from raw records.
func (c *Controller) HandleRebuildDex(ctx echo.Context) error {
	defer c.observe("rebuild_dex", time.Now())

	c.dexMu.Lock()
	defer c.dexMu.Unlock()

	entries, err := c.rebuildDex(userID(ctx))
	if err != nil {
		return c.HandleError(ctx, err, "Failed to rebuild dex", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, DexResponse{Entries: entriesToDTO(entries)})
}

// ImportRequest carries a previously exported dex.
type ImportRequest struct {
	Entries []DexEntryDTO `json:"entries"`
}

// HandleImportDex merges an exported dex into the stored one. The import
// is not backed by local observations, so overlapping species sum their
// totals; importing data that overlaps local history double-counts.
func (c *Controller) HandleImportDex(ctx echo.Context) error {
	defer c.observe("import_dex", time.Now())

	var req ImportRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request format", http.StatusBadRequest)
	}

	incoming := make([]dex.Entry, 0, len(req.Entries))
	for i := range req.Entries {
		// Imported names funnel through the resolver like every other
		// ingestion path so they aggregate under the canonical key.
		req.Entries[i].SpeciesName = c.Resolver.NormalizeSpeciesName(req.Entries[i].SpeciesName)
		entry, err := dtoToEntry(&req.Entries[i])
		if err != nil {
			return c.HandleError(ctx, err, "Invalid dex entry", http.StatusBadRequest)
		}
		incoming = append(incoming, entry)
	}

	user := userID(ctx)

	c.dexMu.Lock()
	defer c.dexMu.Unlock()

	existing, err := c.DS.GetDexEntries(user)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load dex", http.StatusInternalServerError)
	}

	entries := dex.MergeExternal(incoming, existing, time.Now().UTC())
	if err := c.DS.ReplaceDexEntries(user, entries); err != nil {
		return c.HandleError(ctx, err, "Failed to save dex", http.StatusInternalServerError)
	}

	if c.metrics != nil {
		c.metrics.DexUpdates.WithLabelValues("merge").Inc()
		c.metrics.DexSpeciesCount.Set(float64(len(entries)))
	}
	return ctx.JSON(http.StatusOK, DexResponse{Entries: entriesToDTO(entries)})
}
