// Package routepath stores canonical HTTP paths for the quiz funnel.
package routepath

const (
	Root         = "/"
	Start        = "/start"
	Answer       = "/answer"
	Interest     = "/interest"
	Restart      = "/restart"
	Health       = "/healthz"
	Admin        = "/admin"
	StaticPrefix = "/static/"
)
