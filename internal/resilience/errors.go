package resilience

// IsTerminalStatus returns true if an HTTP status reported by an external
// API indicates a failure class that will not clear up on its own within
// this run: bad or missing credentials, exhausted quota, or a backend that
// is down. Request-shape errors (a plain 400, 404, 422) are excluded; they
// say nothing about the capability as a whole.
func IsTerminalStatus(statusCode int) bool {
	switch statusCode {
	case 401, // Unauthorized
		403, // Forbidden
		429: // Too Many Requests
		return true
	}
	return statusCode >= 500
}
