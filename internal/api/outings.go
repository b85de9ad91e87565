package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/birddex/internal/dex"
)

// initOutingRoutes registers outing and observation mutation routes.
func (c *Controller) initOutingRoutes() {
	c.Group.POST("/outings", c.HandleCreateOuting)
	c.Group.DELETE("/outings/:id", c.HandleDeleteOuting)
	c.Group.GET("/outings/:id/observations", c.HandleListObservations)
	c.Group.POST("/outings/:id/observations", c.HandleAddObservations)
	c.Group.POST("/outings/:id/confirm", c.HandleConfirmObservations)
}

// OutingRequest is the create-outing payload.
type OutingRequest struct {
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time"`
	LocationName string   `json:"location_name"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Notes        string   `json:"notes"`
}

// HandleCreateOuting stores a new outing for the acting user.
func (c *Controller) HandleCreateOuting(ctx echo.Context) error {
	defer c.observe("create_outing", time.Now())

	var req OutingRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request format", http.StatusBadRequest)
	}

	startTime, err := parseInstant(req.StartTime)
	if err != nil || startTime.IsZero() {
		return c.HandleError(ctx, err, "start_time must be a valid RFC3339 timestamp", http.StatusBadRequest)
	}
	endTime, err := parseInstant(req.EndTime)
	if err != nil {
		return c.HandleError(ctx, err, "end_time must be a valid RFC3339 timestamp", http.StatusBadRequest)
	}
	if endTime.IsZero() {
		endTime = startTime
	}
	if endTime.Before(startTime) {
		return c.HandleError(ctx, nil, "end_time must not precede start_time", http.StatusBadRequest)
	}

	outing := dex.Outing{
		UserID:       userID(ctx),
		StartTime:    startTime,
		EndTime:      endTime,
		LocationName: req.LocationName,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Notes:        req.Notes,
	}
	if err := c.DS.SaveOuting(&outing); err != nil {
		return c.HandleError(ctx, err, "Failed to save outing", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusCreated, outing)
}

// HandleDeleteOuting removes an outing, its observations, and rebuilds the
// owner's dex so species backed only by this outing disappear.
func (c *Controller) HandleDeleteOuting(ctx echo.Context) error {
	defer c.observe("delete_outing", time.Now())

	id := ctx.Param("id")
	outing, err := c.DS.GetOuting(id)
	if err != nil {
		return c.HandleError(ctx, err, "Outing not found", http.StatusNotFound)
	}
	if outing.UserID != userID(ctx) {
		return c.HandleError(ctx, nil, "Outing not found", http.StatusNotFound)
	}

	if err := c.DS.DeleteOuting(id); err != nil {
		return c.HandleError(ctx, err, "Failed to delete outing", http.StatusInternalServerError)
	}

	entries, err := c.rebuildDex(outing.UserID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to rebuild dex", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, DexResponse{Entries: entriesToDTO(entries)})
}

// ObservationRequest is one observation in an add-observations payload.
type ObservationRequest struct {
	SpeciesName           string   `json:"species_name"`
	Count                 int      `json:"count"`
	Certainty             string   `json:"certainty"`
	RepresentativePhotoID string   `json:"representative_photo_id,omitempty"`
	AIConfidence          *float64 `json:"ai_confidence,omitempty"`
	Notes                 string   `json:"notes"`
}

// HandleListObservations returns the observations of one outing.
func (c *Controller) HandleListObservations(ctx echo.Context) error {
	defer c.observe("list_observations", time.Now())

	id := ctx.Param("id")
	outing, err := c.DS.GetOuting(id)
	if err != nil || outing.UserID != userID(ctx) {
		return c.HandleError(ctx, err, "Outing not found", http.StatusNotFound)
	}

	observations, err := c.DS.GetObservationsByOuting(id)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load observations", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, observations)
}

// HandleAddObservations stores observations against an outing. Every
// species name funnels through the resolver before the observation is
// constructed, so formatting drift in AI output or imports cannot fragment
// one species into several dex entries.
func (c *Controller) HandleAddObservations(ctx echo.Context) error {
	defer c.observe("add_observations", time.Now())

	id := ctx.Param("id")
	outing, err := c.DS.GetOuting(id)
	if err != nil || outing.UserID != userID(ctx) {
		return c.HandleError(ctx, err, "Outing not found", http.StatusNotFound)
	}

	var reqs []ObservationRequest
	if err := ctx.Bind(&reqs); err != nil {
		return c.HandleError(ctx, err, "Invalid request format", http.StatusBadRequest)
	}

	observations := make([]dex.Observation, 0, len(reqs))
	for i := range reqs {
		req := &reqs[i]
		if req.SpeciesName == "" {
			return c.HandleError(ctx, nil, "species_name is required", http.StatusBadRequest)
		}
		if req.Count < 1 {
			req.Count = 1
		}
		certainty := dex.Certainty(req.Certainty)
		if req.Certainty == "" {
			certainty = dex.CertaintyPending
		}
		if !certainty.Valid() {
			return c.HandleError(ctx, nil, "invalid certainty", http.StatusBadRequest)
		}
		observations = append(observations, dex.Observation{
			OutingID:              id,
			SpeciesName:           c.Resolver.NormalizeSpeciesName(req.SpeciesName),
			Count:                 req.Count,
			Certainty:             certainty,
			RepresentativePhotoID: req.RepresentativePhotoID,
			AIConfidence:          req.AIConfidence,
			Notes:                 req.Notes,
		})
	}

	if err := c.DS.SaveObservations(observations); err != nil {
		return c.HandleError(ctx, err, "Failed to save observations", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusCreated, observations)
}

// ConfirmRequest names the observations of an outing to confirm.
type ConfirmRequest struct {
	ObservationIDs []string `json:"observation_ids"`
}

// ConfirmResponse carries the updated dex and how many of the confirmed
// species were lifers.
type ConfirmResponse struct {
	Entries    []DexEntryDTO `json:"entries"`
	NewSpecies int           `json:"new_species"`
}

// HandleConfirmObservations marks observations confirmed and folds them
// into the dex incrementally.
func (c *Controller) HandleConfirmObservations(ctx echo.Context) error {
	defer c.observe("confirm_observations", time.Now())

	id := ctx.Param("id")
	user := userID(ctx)
	outing, err := c.DS.GetOuting(id)
	if err != nil || outing.UserID != user {
		return c.HandleError(ctx, err, "Outing not found", http.StatusNotFound)
	}

	var req ConfirmRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request format", http.StatusBadRequest)
	}
	if len(req.ObservationIDs) == 0 {
		return c.HandleError(ctx, nil, "observation_ids is required", http.StatusBadRequest)
	}

	c.dexMu.Lock()
	defer c.dexMu.Unlock()

	if err := c.DS.SetObservationsCertainty(req.ObservationIDs, dex.CertaintyConfirmed); err != nil {
		return c.HandleError(ctx, err, "Failed to confirm observations", http.StatusInternalServerError)
	}

	outingObs, err := c.DS.GetObservationsByOuting(id)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load observations", http.StatusInternalServerError)
	}
	confirmedSet := make(map[string]bool, len(req.ObservationIDs))
	for _, obsID := range req.ObservationIDs {
		confirmedSet[obsID] = true
	}
	var batch []dex.Observation
	for _, obs := range outingObs {
		if confirmedSet[obs.ID] {
			batch = append(batch, obs)
		}
	}

	allOutings, err := c.DS.GetOutings(user)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load outings", http.StatusInternalServerError)
	}
	allObservations, err := c.DS.GetObservations(user)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load observations", http.StatusInternalServerError)
	}
	existing, err := c.DS.GetDexEntries(user)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load dex", http.StatusInternalServerError)
	}

	entries, newSpecies := dex.ApplyNewConfirmed(outing, batch, allOutings, allObservations, existing, time.Now().UTC())
	if err := c.DS.ReplaceDexEntries(user, entries); err != nil {
		return c.HandleError(ctx, err, "Failed to save dex", http.StatusInternalServerError)
	}

	if c.metrics != nil {
		c.metrics.DexUpdates.WithLabelValues("incremental").Inc()
		c.metrics.DexSpeciesCount.Set(float64(len(entries)))
	}

	return ctx.JSON(http.StatusOK, ConfirmResponse{
		Entries:    entriesToDTO(entries),
		NewSpecies: newSpecies,
	})
}
