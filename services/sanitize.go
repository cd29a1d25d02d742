package services

import (
	"github.com/microcosm-cc/bluemonday"
)

var (
	// richTextPolicy allows a small set of formatting tags for notes fields
	richTextPolicy *bluemonday.Policy
	// strictPolicy strips all markup, leaving plain text
	strictPolicy *bluemonday.Policy
)

func init() {
	richTextPolicy = bluemonday.UGCPolicy()
	// Scripts, inline event handlers and iframes are already rejected by
	// UGCPolicy. Links get forced rel attributes to avoid window.opener leaks.
	richTextPolicy.RequireNoFollowOnLinks(true)
	richTextPolicy.AddTargetBlankToFullyQualifiedLinks(true)

	strictPolicy = bluemonday.StrictPolicy()
}

// SanitizeHTML sanitizes rich text input (interaction notes, client notes).
// Allows basic formatting tags but strips scripts and dangerous attributes.
func SanitizeHTML(input string) string {
	return richTextPolicy.Sanitize(input)
}

// SanitizeText strips all HTML from input, for fields that must stay plain text
func SanitizeText(input string) string {
	return strictPolicy.Sanitize(input)
}
