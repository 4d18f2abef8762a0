// Package v1 provides the bridge API v1 endpoints for backend discovery and
// target synchronization.
package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/stacklok/mbean-bridge/internal/api/common"
	"github.com/stacklok/mbean-bridge/internal/service"
)

// maxRequestBody bounds the size of request bodies
const maxRequestBody = 1 << 20

// Routes handles HTTP requests for API v1 endpoints.
type Routes struct {
	service service.BridgeService
}

// NewRoutes creates a new Routes instance with the given service.
func NewRoutes(svc service.BridgeService) *Routes {
	return &Routes{
		service: svc,
	}
}

// Router creates and configures the HTTP router for API v1 endpoints.
func Router(svc service.BridgeService) http.Handler {
	routes := NewRoutes(svc)

	r := chi.NewRouter()

	r.Route("/backends/{backend}", func(r chi.Router) {
		r.Get("/objects", routes.listObjects)
		r.Get("/tree", routes.getTree)
		r.Get("/attributes", routes.getAttributesInfo)
		r.Post("/macros/{token}/reset", routes.resetMacro)
	})
	r.Post("/definitions/suggest", routes.suggestDefinitions)

	r.Get("/targets", routes.listTargets)
	r.Route("/targets/{target}", func(r chi.Router) {
		r.Get("/definitions", routes.getDefinitions)
		r.Get("/properties", routes.getProperties)
		r.Get("/properties/{attribute}", routes.demandRead)
		r.Get("/status", routes.getStatus)
		r.Post("/refresh", routes.refresh)
		r.Post("/history", routes.writeHistory)
		r.Get("/history/{attribute}", routes.queryHistory)
	})

	return r
}

// listObjects handles GET /v1/backends/{backend}/objects
//
// @Summary		List objects
// @Description	List the objects of a backend whose name matches a pattern
// @Tags		backends
// @Produce		json
// @Param		backend	path	string	true	"Backend name"
// @Param		filter	query	string	false	"Object name pattern, e.g. java.lang:*"
// @Success		200	{object}	ListResponse[service.ObjectRow]
// @Failure		400	{object}	common.ErrorResponse
// @Failure		404	{object}	common.ErrorResponse
// @Router		/v1/backends/{backend}/objects [get]
func (routes *Routes) listObjects(w http.ResponseWriter, r *http.Request) {
	backendName, ok := pathParam(w, r, "backend")
	if !ok {
		return
	}

	rows, err := routes.service.QueryObjects(r.Context(), backendName, service.WithFilter(r.URL.Query().Get("filter")))
	if err != nil {
		common.WriteServiceError(w, err)
		return
	}
	common.WriteJSONResponse(w, newListResponse(rows), http.StatusOK)
}

// getTree handles GET /v1/backends/{backend}/tree
//
// @Summary		Object tree
// @Description	Build the namespace tree of the objects matching a pattern
// @Tags		backends
// @Produce		json
// @Param		backend	path	string	true	"Backend name"
// @Param		filter	query	string	false	"Object name pattern"
// @Success		200	{object}	service.TreeResult
// @Failure		404	{object}	common.ErrorResponse
// @Router		/v1/backends/{backend}/tree [get]
func (routes *Routes) getTree(w http.ResponseWriter, r *http.Request) {
	backendName, ok := pathParam(w, r, "backend")
	if !ok {
		return
	}

	result, err := routes.service.QueryTree(r.Context(), backendName, service.WithFilter(r.URL.Query().Get("filter")))
	if err != nil {
		common.WriteServiceError(w, err)
		return
	}
	common.WriteJSONResponse(w, result, http.StatusOK)
}

// getAttributesInfo handles GET /v1/backends/{backend}/attributes
//
// @Summary		Attribute info
// @Description	Describe the attributes of one object, expanding composite attributes
// @Tags		backends
// @Produce		json
// @Param		backend			path	string	true	"Backend name"
// @Param		objectName		query	string	false	"Object name"
// @Param		notWritableOnly	query	bool	false	"Skip writable attributes (default true)"
// @Param		showPreview		query	bool	false	"Include the current value"
// @Success		200	{object}	ListResponse[service.AttributeInfoRow]
// @Failure		400	{object}	common.ErrorResponse
// @Router		/v1/backends/{backend}/attributes [get]
func (routes *Routes) getAttributesInfo(w http.ResponseWriter, r *http.Request) {
	backendName, ok := pathParam(w, r, "backend")
	if !ok {
		return
	}

	query := r.URL.Query()
	opts := []service.Option[service.AttributesInfoOptions]{}
	if v := query.Get("notWritableOnly"); v != "" {
		notWritableOnly, err := strconv.ParseBool(v)
		if err != nil {
			common.WriteErrorResponse(w, "Invalid notWritableOnly parameter: must be a boolean", http.StatusBadRequest)
			return
		}
		opts = append(opts, service.WithNotWritableOnly(notWritableOnly))
	}
	if v := query.Get("showPreview"); v != "" {
		showPreview, err := strconv.ParseBool(v)
		if err != nil {
			common.WriteErrorResponse(w, "Invalid showPreview parameter: must be a boolean", http.StatusBadRequest)
			return
		}
		opts = append(opts, service.WithPreview(showPreview))
	}

	rows, err := routes.service.GetAttributesInfo(r.Context(), backendName, query.Get("objectName"), opts...)
	if err != nil {
		common.WriteServiceError(w, err)
		return
	}
	common.WriteJSONResponse(w, newListResponse(rows), http.StatusOK)
}

// resetMacro handles POST /v1/backends/{backend}/macros/{token}/reset
//
// @Summary		Reset macro
// @Description	Drop the memoized object of a macro and discover it again
// @Tags		backends
// @Produce		json
// @Param		backend	path	string	true	"Backend name"
// @Param		token	path	string	true	"Macro token"
// @Success		200	{object}	MacroResetResponse
// @Failure		404	{object}	common.ErrorResponse
// @Failure		502	{object}	common.ErrorResponse
// @Router		/v1/backends/{backend}/macros/{token}/reset [post]
func (routes *Routes) resetMacro(w http.ResponseWriter, r *http.Request) {
	backendName, ok := pathParam(w, r, "backend")
	if !ok {
		return
	}
	token, ok := pathParam(w, r, "token")
	if !ok {
		return
	}

	objectName, err := routes.service.ResetMacro(r.Context(), backendName, token)
	if err != nil {
		common.WriteServiceError(w, err)
		return
	}
	common.WriteJSONResponse(w, MacroResetResponse{Token: token, ObjectName: objectName}, http.StatusOK)
}

// suggestDefinitions handles POST /v1/definitions/suggest
//
// @Summary		Suggest definitions
// @Description	Turn attribute info rows into property definitions
// @Tags		definitions
// @Accept		json
// @Produce		json
// @Param		request	body	SuggestRequest	true	"Attribute rows"
// @Success		200	{object}	ListResponse[attribute.Definition]
// @Failure		400	{object}	common.ErrorResponse
// @Router		/v1/definitions/suggest [post]
func (routes *Routes) suggestDefinitions(w http.ResponseWriter, r *http.Request) {
	var req SuggestRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		common.WriteErrorResponse(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	defs, err := routes.service.SuggestDefinitions(r.Context(), req.Rows, req.Logged)
	if err != nil {
		common.WriteServiceError(w, err)
		return
	}
	common.WriteJSONResponse(w, newListResponse(defs), http.StatusOK)
}

func pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value, err := common.GetAndValidateURLParam(r, name)
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return value, true
}

func boolQuery(w http.ResponseWriter, r *http.Request, name string) (bool, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		common.WriteErrorResponse(w, "Invalid "+name+" parameter: must be a boolean", http.StatusBadRequest)
		return false, false
	}
	return b, true
}

func timeQuery(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		common.WriteErrorResponse(
			w,
			"Invalid "+name+" parameter: must be RFC3339 format (e.g., 2025-08-07T13:15:04.280Z)",
			http.StatusBadRequest,
		)
		return time.Time{}, false
	}
	return t, true
}
