// SPDX-License-Identifier: GPL-3.0-or-later

package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"

	"gopkg.in/yaml.v3"
)

// decodeBody decodes r's body into v as JSON or YAML depending on its
// Content-Type header (spec.md §6: "JSON; Content-Type application/json
// or application/x-yaml on POST"), defaulting to JSON when the header is
// absent.
func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("reading request body: %w", err)
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return json.Unmarshal(body, v)
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fmt.Errorf("parsing content type: %w", err)
	}
	switch mediaType {
	case "application/x-yaml", "application/yaml", "text/yaml":
		return yaml.Unmarshal(body, v)
	default:
		return json.Unmarshal(body, v)
	}
}
