package api

// RouteRequest is the JSON body for POST /api/v1/route. Search is "astar",
// "bidirectional", or empty for the server default.
type RouteRequest struct {
	Start  LatLngJSON `json:"start"`
	End    LatLngJSON `json:"end"`
	Search string     `json:"search,omitempty"`
}

// LatLngJSON represents a lat/lng pair in JSON.
type LatLngJSON struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SnapJSON is a query point resolved to a graph node.
type SnapJSON struct {
	Node           uint32     `json:"node"`
	Location       LatLngJSON `json:"location"`
	DistanceMeters float64    `json:"distance_meters"`
}

// RouteResponse is the JSON response for a successful route query.
type RouteResponse struct {
	Search         string       `json:"search"`
	Origin         SnapJSON     `json:"origin"`
	Destination    SnapJSON     `json:"destination"`
	DistanceMiles  float64      `json:"distance_miles"`
	DistanceMeters float64      `json:"distance_meters"`
	NodeCount      int          `json:"node_count"`
	Geometry       []LatLngJSON `json:"geometry"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumNodes            int    `json:"num_nodes"`
	NumAdjacencyEntries int    `json:"num_adjacency_entries"`
	DefaultSearch       string `json:"default_search"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
