// Package auth provides the request authentication middleware of the web service.
package auth
