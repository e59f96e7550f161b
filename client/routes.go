package client

// Backend endpoints consumed by the session core.
const (
	LoginEndpoint    = "/auth/login"
	RegisterEndpoint = "/auth/register"
	RefreshEndpoint  = "/auth/token/refresh/"
	MeEndpoint       = "/auth/me"
)

// UI entry points, mirrored from the web frontend's route table so hosts
// embedding this client agree with it on where "back to login" is.
const (
	RouteHome       = "/"
	RouteActivities = "/activities"
	RouteLogin      = "/auth/login"
	RouteRegister   = "/auth/register"
)
