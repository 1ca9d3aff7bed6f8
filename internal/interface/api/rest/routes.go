package rest

const (
	// api
	RouteApiV1 = "/api/v1"

	// file groups
	RouteFiles     = RouteApiV1 + "/files"
	RouteFile      = RouteFiles + "/:group_id"
	RouteFileCheck = RouteFile + "/check"
	RouteFileZip   = RouteFile + "/zip"

	// admin
	RouteAdmin      = RouteApiV1 + "/admin"
	RouteAdminSweep = RouteAdmin + "/sweep"

	// ops
	RouteHealth  = RouteApiV1 + "/healthz"
	RouteMetrics = RouteApiV1 + "/metrics"
)
