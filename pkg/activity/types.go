package activity

// Classification reasons.
const (
	ReasonRoutineMonitoring  = "routine_monitoring"
	ReasonCriticalUserAction = "critical_user_action"
	ReasonWriteOperation     = "write_operation"
	ReasonFirstRequest       = "first_request_in_10min"
	ReasonAdminAccess        = "admin_access"
	ReasonRoutineRead        = "routine_read"

	unusualTimePrefix   = "unusual_time:hour_"
	highFrequencyPrefix = "high_frequency:"
)

// ignorePrefixes never wake, whatever the method.
var ignorePrefixes = []string{
	"/health",
	"/healthz",
	"/metrics",
	"/static/",
	"/favicon.ico",
	"/api/cron/",
	"/api/internal/",
	"/api/monitoring/metrics",
}

// wakePrefixes are user or admin facing surfaces that always wake.
var wakePrefixes = []string{
	"/api/bookings",
	"/api/payments",
	"/api/auth",
	"/api/admin",
	"/api/webhooks",
	"/api/customers",
	"/api/leads",
}

// actionPath separates viewing a resource from acting on it.
type actionPath struct {
	prefix string
	// viewing is reported for reads as "viewing_<viewing>".
	viewing string
	// action is reported for writes as "<action>_action".
	action string
}

var actionPaths = []actionPath{
	{prefix: "/api/alerts", viewing: "alerts", action: "alert"},
	{prefix: "/api/rules", viewing: "rules", action: "rule"},
	{prefix: "/api/monitoring", viewing: "monitoring", action: "monitoring"},
}

// adminMarkers trigger admin_access when present anywhere in the path.
var adminMarkers = []string{"admin", "dashboard"}
