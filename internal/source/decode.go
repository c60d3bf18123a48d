package source

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/starford/extdeck/internal/models"
)

var (
	textPolicy = bluemonday.StrictPolicy()
	// tagPattern matches complete start and end tags only, so a bare "<" in
	// prose such as "a<b" is left alone.
	tagPattern = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9-]*(\s+[^<>]*)?/?>`)
)

// Decode validates raw source bytes and returns the records in source order.
// Markup in names and descriptions is stripped to plain text. A record whose
// name is empty after stripping is rejected.
func Decode(data []byte) ([]models.Extension, error) {
	if err := validate(data); err != nil {
		return nil, err
	}
	var records []models.Extension
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Name = plainText(records[i].Name)
		records[i].Description = plainText(records[i].Description)
		records[i].Logo = strings.TrimSpace(records[i].Logo)
		if records[i].Name == "" {
			return nil, fmt.Errorf("record %d: name is empty", i)
		}
	}
	return records, nil
}

// plainText removes tags and keeps the surrounding text verbatim. Escaping is
// left to the renderers.
func plainText(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllStringFunc(s, textPolicy.Sanitize))
}
