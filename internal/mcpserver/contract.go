package mcpserver

import "github.com/starford/extdeck/internal/source"

// DataFormatContract describes the extension data file that the server
// loads, so that LLM consumers can author or fix one.
var DataFormatContract = `# Extension Data Format

The extension list is loaded from a single JSON document: a local file
(default ` + "`data.json`" + `) or an http(s) URL.

## Structure

` + "```" + `json
[
  {
    "name": "DevLens",
    "description": "Quickly inspect page layouts and visualize element boundaries.",
    "logo": "./assets/images/logo-devlens.svg",
    "isActive": true
  }
]
` + "```" + `

## Rules

1. **The document is an array.** Order matters: it is the display order and
   defines each record's index.
2. **All four fields are required.** ` + "`name`" + ` must be non-empty;
   ` + "`isActive`" + ` must be a boolean.
3. **Text is plain.** Markup in ` + "`name`" + ` and ` + "`description`" + ` is stripped on load.
4. **` + "`logo`" + ` is a URL.** Relative paths such as ` + "`./assets/images/x.svg`" + `
   are served from the configured assets directory.
5. **Duplicate names are allowed.** Records are addressed by index, and
   actions pass the name to detect a stale index.

## Working with the list

- ` + "`list_extensions`" + ` returns each visible record with its canonical ` + "`index`" + `.
- Indices shift after a removal. List again before acting on another record.
- ` + "`remove_extension`" + ` does nothing unless ` + "`confirm`" + ` is true.

## JSON Schema

` + "```" + `json
` + string(source.Schema) + "```\n"
