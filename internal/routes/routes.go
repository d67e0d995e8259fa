// Package routes defines HTTP route constants for the application.
package routes

const (
	RootPath   = "/"
	HealthPath = "/healthz"
	RobotsPath = "/robots.txt"

	// API
	APIPrefix    = "/api"
	Documents    = "/documents"
	DocumentByID = "/documents/{id}"
	Messages     = "/messages"
	Sessions     = "/sessions"

	// Widget
	Widget = "/widget"
	Events = "/events"
	Socket = "/ws"

	// Uploaded media served by the fs backend
	Uploads = "/uploads"
)
