package v1

import (
	"log/slog"
	"net/http"

	"github.com/stacklok/mbean-bridge/internal/api/common"
	"github.com/stacklok/mbean-bridge/internal/service"
)

// listTargets handles GET /v1/targets
//
// @Summary		List targets
// @Description	List the configured targets with their sync status
// @Tags		targets
// @Produce		json
// @Success		200	{object}	ListResponse[service.TargetSummary]
// @Router		/v1/targets [get]
func (routes *Routes) listTargets(w http.ResponseWriter, r *http.Request) {
	targets, err := routes.service.ListTargets(r.Context())
	if err != nil {
		common.WriteServiceError(w, err)
		return
	}
	common.WriteJSONResponse(w, newListResponse(targets), http.StatusOK)
}

// getDefinitions handles GET /v1/targets/{target}/definitions
//
// @Summary		Target definitions
// @Description	Get the synchronized property definitions of a target
// @Tags		targets
// @Produce		json
// @Param		target	path	string	true	"Target name"
// @Success		200	{object}	ListResponse[attribute.Definition]
// @Failure		404	{object}	common.ErrorResponse
// @Router		/v1/targets/{target}/definitions [get]
func (routes *Routes) getDefinitions(w http.ResponseWriter, r *http.Request) {
	target, ok := pathParam(w, r, "target")
	if !ok {
		return
	}

	defs, err := routes.service.GetTargetDefinitions(r.Context(), target)
	if err != nil {
		common.WriteServiceError(w, err)
		return
	}
	common.WriteJSONResponse(w, newListResponse(defs), http.StatusOK)
}

// getProperties handles GET /v1/targets/{target}/properties
//
// @Summary		Target properties
// @Description	Get the stored property values of a target without reading the backend
// @Tags		targets
// @Produce		json
// @Param		target	path	string	true	"Target name"
// @Success		200	{object}	ListResponse[PropertyView]
// @Failure		404	{object}	common.ErrorResponse
// @Router		/v1/targets/{target}/properties [get]
func (routes *Routes) getProperties(w http.ResponseWriter, r *http.Request) {
	target, ok := pathParam(w, r, "target")
	if !ok {
		return
	}

	states, err := routes.service.GetTargetState(r.Context(), target)
	if err != nil {
		common.WriteServiceError(w, err)
		return
	}
	views, err := stateViews(states)
	if err != nil {
		common.WriteServiceError(w, err)
		return
	}
	common.WriteJSONResponse(w, newListResponse(views), http.StatusOK)
}

// demandRead handles GET /v1/targets/{target}/properties/{attribute}
//
// @Summary		Read property
// @Description	Get one property, reading the backend first when the cached value is stale
// @Tags		targets
// @Produce		json
// @Param		target		path	string	true	"Target name"
// @Param		attribute	path	string	true	"Property name"
// @Success		200	{object}	DemandReadResponse
// @Failure		404	{object}	common.ErrorResponse
// @Router		/v1/targets/{target}/properties/{attribute} [get]
func (routes *Routes) demandRead(w http.ResponseWriter, r *http.Request) {
	target, ok := pathParam(w, r, "target")
	if !ok {
		return
	}
	name, ok := pathParam(w, r, "attribute")
	if !ok {
		return
	}

	result, err := routes.service.DemandRead(r.Context(), target, name)
	if err != nil {
		common.WriteServiceError(w, err)
		return
	}

	resp := DemandReadResponse{Refreshed: result.Refreshed, Warning: result.Warning}
	if result.State != nil {
		view, err := propertyView(result.State.Name, result.State.Value, result.State.LastUpdate)
		if err != nil {
			common.WriteServiceError(w, err)
			return
		}
		resp.Property = &view
	}
	common.WriteJSONResponse(w, resp, http.StatusOK)
}

// getStatus handles GET /v1/targets/{target}/status
//
// @Summary		Sync status
// @Description	Get the sync status of a target
// @Tags		targets
// @Produce		json
// @Param		target	path	string	true	"Target name"
// @Success		200	{object}	status.SyncStatus
// @Failure		404	{object}	common.ErrorResponse
// @Router		/v1/targets/{target}/status [get]
func (routes *Routes) getStatus(w http.ResponseWriter, r *http.Request) {
	target, ok := pathParam(w, r, "target")
	if !ok {
		return
	}

	st, err := routes.service.GetTargetStatus(r.Context(), target)
	if err != nil {
		common.WriteServiceError(w, err)
		return
	}
	common.WriteJSONResponse(w, st, http.StatusOK)
}

// refresh handles POST /v1/targets/{target}/refresh
//
// @Summary		Refresh target
// @Description	Pull the due attributes of a target, or all of them with ignoreCache
// @Tags		targets
// @Produce		json
// @Param		target		path	string	true	"Target name"
// @Param		ignoreCache	query	bool	false	"Read every attribute regardless of its cache time"
// @Success		200	{object}	BatchResponse
// @Failure		404	{object}	common.ErrorResponse
// @Failure		500	{object}	common.ErrorResponse
// @Router		/v1/targets/{target}/refresh [post]
func (routes *Routes) refresh(w http.ResponseWriter, r *http.Request) {
	target, ok := pathParam(w, r, "target")
	if !ok {
		return
	}
	ignoreCache, ok := boolQuery(w, r, "ignoreCache")
	if !ok {
		return
	}

	result, err := routes.service.Refresh(r.Context(), target, ignoreCache)
	if err != nil {
		common.WriteServiceError(w, err)
		return
	}
	if len(result.Warnings) > 0 {
		slog.Debug("Refresh completed with warnings", "target", target, "warnings", len(result.Warnings))
	}

	resp, err := batchResponse(result)
	if err != nil {
		common.WriteServiceError(w, err)
		return
	}
	common.WriteJSONResponse(w, resp, http.StatusOK)
}

// writeHistory handles POST /v1/targets/{target}/history
//
// @Summary		Record history
// @Description	Record the current value of every logged property of a target
// @Tags		targets
// @Produce		json
// @Param		target			path	string	true	"Target name"
// @Param		forceRefresh	query	bool	false	"Refresh every attribute first"
// @Success		200	{object}	sync.HistoryResult
// @Failure		404	{object}	common.ErrorResponse
// @Router		/v1/targets/{target}/history [post]
func (routes *Routes) writeHistory(w http.ResponseWriter, r *http.Request) {
	target, ok := pathParam(w, r, "target")
	if !ok {
		return
	}
	forceRefresh, ok := boolQuery(w, r, "forceRefresh")
	if !ok {
		return
	}

	result, err := routes.service.WriteLoggedToHistory(r.Context(), target, forceRefresh)
	if err != nil {
		common.WriteServiceError(w, err)
		return
	}
	common.WriteJSONResponse(w, result, http.StatusOK)
}

// queryHistory handles GET /v1/targets/{target}/history/{attribute}
//
// @Summary		Property history
// @Description	Get the recorded values of one property
// @Tags		targets
// @Produce		json
// @Param		target		path	string	true	"Target name"
// @Param		attribute	path	string	true	"Property name"
// @Param		from		query	string	false	"Start of the range (RFC3339)"
// @Param		to			query	string	false	"End of the range (RFC3339)"
// @Success		200	{object}	ListResponse[HistoryEntryView]
// @Failure		400	{object}	common.ErrorResponse
// @Router		/v1/targets/{target}/history/{attribute} [get]
func (routes *Routes) queryHistory(w http.ResponseWriter, r *http.Request) {
	target, ok := pathParam(w, r, "target")
	if !ok {
		return
	}
	name, ok := pathParam(w, r, "attribute")
	if !ok {
		return
	}
	from, ok := timeQuery(w, r, "from")
	if !ok {
		return
	}
	to, ok := timeQuery(w, r, "to")
	if !ok {
		return
	}

	opts := []service.Option[service.HistoryOptions]{}
	if !from.IsZero() {
		opts = append(opts, service.WithFrom(from))
	}
	if !to.IsZero() {
		opts = append(opts, service.WithTo(to))
	}

	entries, err := routes.service.QueryHistory(r.Context(), target, name, opts...)
	if err != nil {
		common.WriteServiceError(w, err)
		return
	}
	views, err := historyViews(entries)
	if err != nil {
		common.WriteServiceError(w, err)
		return
	}
	common.WriteJSONResponse(w, newListResponse(views), http.StatusOK)
}
