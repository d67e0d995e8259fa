package config

const (
	// Store errors
	ErrInitializeDatabaseFmt = "Failed to initialize database: %v"
	ErrOpenStoreFmt          = "Failed to open store: %v"
	ErrSaveDocuments         = "Error saving documents"

	// Push errors
	ErrNotifyFailed = "Error sending documents changed notification"

	// Config errors
	ErrWriteConfigContentFmt = "Failed to write config content: %v"
	ErrCreateTempFileFmt     = "Failed to create temp file: %v"

	// HTTP errors
	ErrInternalServerError = "Internal server error"
	ErrSessionNotFound     = "Session not found"
	ErrDocumentNotFound    = "Document not found"
)
