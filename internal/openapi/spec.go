// Package openapi embeds the HTTP API description served at /openapi.
package openapi

import (
	_ "embed"
	"strings"

	"sigs.k8s.io/yaml"
)

// DefaultWebhookPath is the path written in the embedded document.
const DefaultWebhookPath = "/api/webhook"

//go:embed spec.yaml
var specYAML []byte

// YAML returns the document with the webhook endpoint mounted at path.
func YAML(path string) []byte {
	if path == "" || path == DefaultWebhookPath {
		return specYAML
	}
	return []byte(strings.Replace(string(specYAML), "  "+DefaultWebhookPath+":\n", "  "+path+":\n", 1))
}

// JSON returns the document serialized as JSON.
func JSON(path string) ([]byte, error) {
	return yaml.YAMLToJSON(YAML(path))
}
