// Package render writes resolved presets as YAML or JSON.
//
// Calls are rendered as a mapping with a kind and its args. YAML output
// keeps node, field and argument order; JSON output goes through cty and
// therefore sorts object keys.
package render
