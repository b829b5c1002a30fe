package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"mime"
	"net/http"

	"road_router/pkg/routing"
)

// maxRouteBody caps the route request body.
const maxRouteBody = 1024

// Handlers serves the routing API over a routing.Router.
type Handlers struct {
	router routing.Router
	stats  StatsResponse
}

// NewHandlers creates handlers with the given router.
func NewHandlers(router routing.Router, stats StatsResponse) *Handlers {
	return &Handlers{router: router, stats: stats}
}

// requestError is a client-facing failure: HTTP status, error code, and
// optionally the offending request field.
type requestError struct {
	status int
	code   string
	field  string
}

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	q, reqErr := decodeQuery(w, r)
	if reqErr != nil {
		writeError(w, *reqErr)
		return
	}

	result, err := h.router.Route(r.Context(), q)
	if err != nil {
		writeError(w, routeError(err))
		return
	}

	writeJSON(w, http.StatusOK, toResponse(result))
}

// decodeQuery parses and validates a route request body.
func decodeQuery(w http.ResponseWriter, r *http.Request) (routing.Query, *requestError) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return routing.Query{}, &requestError{http.StatusUnsupportedMediaType, "invalid_content_type", ""}
	}

	var req RouteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRouteBody)).Decode(&req); err != nil {
		return routing.Query{}, &requestError{http.StatusBadRequest, "invalid_request", ""}
	}

	start, ok := toLatLng(req.Start)
	if !ok {
		return routing.Query{}, &requestError{http.StatusBadRequest, "invalid_coordinates", "start"}
	}
	end, ok := toLatLng(req.End)
	if !ok {
		return routing.Query{}, &requestError{http.StatusBadRequest, "invalid_coordinates", "end"}
	}
	search, err := routing.ParseSearch(req.Search)
	if err != nil {
		return routing.Query{}, &requestError{http.StatusBadRequest, "invalid_search", "search"}
	}

	return routing.Query{Start: start, End: end, Search: search}, nil
}

// toLatLng rejects non-finite and out-of-range coordinates.
func toLatLng(ll LatLngJSON) (routing.LatLng, bool) {
	for _, v := range [...]float64{ll.Lat, ll.Lng} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return routing.LatLng{}, false
		}
	}
	if ll.Lat < -90 || ll.Lat > 90 || ll.Lng < -180 || ll.Lng > 180 {
		return routing.LatLng{}, false
	}
	return routing.LatLng{Lat: ll.Lat, Lng: ll.Lng}, true
}

// routeError maps a Router error onto the response it produces.
func routeError(err error) requestError {
	var field string
	var endpointErr *routing.EndpointError
	if errors.As(err, &endpointErr) {
		field = endpointErr.Endpoint
	}

	switch {
	case errors.Is(err, routing.ErrPointTooFar):
		return requestError{http.StatusUnprocessableEntity, "point_too_far_from_road", field}
	case errors.Is(err, routing.ErrNoRoute):
		return requestError{http.StatusNotFound, "no_route_found", ""}
	case errors.Is(err, routing.ErrUnknownSearch):
		return requestError{http.StatusBadRequest, "invalid_search", "search"}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return requestError{http.StatusServiceUnavailable, "request_timeout", ""}
	}
	return requestError{http.StatusInternalServerError, "internal_error", ""}
}

func toResponse(result *routing.RouteResult) RouteResponse {
	geometry := make([]LatLngJSON, len(result.Geometry))
	for i, ll := range result.Geometry {
		geometry[i] = LatLngJSON{Lat: ll.Lat, Lng: ll.Lng}
	}

	resp := RouteResponse{
		Search:         result.Search.String(),
		Origin:         SnapJSON{Node: uint32(result.Origin), DistanceMeters: result.OriginSnapMeters},
		Destination:    SnapJSON{Node: uint32(result.Destination), DistanceMeters: result.GoalSnapMeters},
		DistanceMiles:  result.DistanceMiles,
		DistanceMeters: result.DistanceMeters,
		NodeCount:      result.NodeCount,
		Geometry:       geometry,
	}
	if len(geometry) > 0 {
		resp.Origin.Location = geometry[0]
		resp.Destination.Location = geometry[len(geometry)-1]
	}
	return resp
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stats)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, e requestError) {
	writeJSON(w, e.status, ErrorResponse{Error: e.code, Field: e.field})
}
