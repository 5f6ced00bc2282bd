package assets

import (
	"fmt"
	"regexp"
	"strings"
)

// uriFieldPattern matches "uri": "<value>" fields textually. Only the
// compatibility shim uses it; well-formed documents go through the
// structural path in RewriteDocument.
var uriFieldPattern = regexp.MustCompile(`"uri"\s*:\s*"([^"]*)"`)

// rewriteDocumentShim rewrites URI fields by pattern matching for
// documents that fail structural parsing (trailing garbage, lenient
// producers). Best-effort: it cannot distinguish buffer URIs from
// image URIs, so both get the same per-asset base treatment.
func (r *Resolver) rewriteDocumentShim(raw []byte, assetID string) ([]byte, error) {
	if !uriFieldPattern.Match(raw) {
		return nil, fmt.Errorf("no uri fields found in malformed document for %s", assetID)
	}

	out := uriFieldPattern.ReplaceAllFunc(raw, func(match []byte) []byte {
		sub := uriFieldPattern.FindSubmatch(match)
		if len(sub) != 2 {
			return match
		}
		uri := string(sub[1])
		if uri == "" {
			return match
		}
		rewritten := r.RewriteURI(uri, assetID)
		return []byte(`"uri": "` + escapeJSONString(rewritten) + `"`)
	})
	return out, nil
}

func escapeJSONString(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return replacer.Replace(s)
}
