package agent

import "slices"

// DefaultModel is the model selected when none is configured.
const DefaultModel = "llama3-8b-8192"

var models = []string{
	"llama3-8b-8192",
	"llama3-70b-8192",
	"llama-3.1-8b-instant",
	"llama-3.1-70b-versatile",
	"llama-3.2-1b-preview",
	"llama-3.2-3b-preview",
	"llama-3.2-11b-text-preview",
	"llama-3.2-90b-text-preview",
	"mixtral-8x7b-32768",
	"gemma-7b-it",
	"gemma2-9b-it",
}

// Models returns the catalog of model identifiers offered for selection.
// Other identifiers may still be configured; the catalog is not enforced.
func Models() []string {
	return slices.Clone(models)
}

// KnownModel reports whether id is in the catalog.
func KnownModel(id string) bool {
	return slices.Contains(models, id)
}
