package config

import "regexp"

const (
	MarkdownRendererMmark   = "mmark"
	MarkdownRendererClassic = "classic"
)

var (
	RegexCallout = regexp.MustCompile(`//\s*<<(\d+)>>`)
	// RegexCalloutHTML matches a callout after HTML escaping.
	RegexCalloutHTML = regexp.MustCompile(`//\s*&lt;&lt;(\d+)&gt;&gt;`)
)
