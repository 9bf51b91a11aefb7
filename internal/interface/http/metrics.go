package handlers

import "expvar"

// Published under /api/debug/vars when debug metrics are enabled.
var (
	registrations  = expvar.NewInt("auth_registrations")
	logins         = expvar.NewInt("auth_logins")
	failedLogins   = expvar.NewInt("auth_failed_logins")
	noteOps        = expvar.NewMap("note_ops")
	internalErrors = expvar.NewInt("http_internal_errors")
)
