package hls

import "strings"

// ParseAttributeList parses the attribute list of an HLS tag (the portion
// after the first colon) into a map keyed by uppercased attribute name.
//
// The grammar is NAME=VALUE pairs separated by commas. A VALUE is either a
// double-quoted string (quotes stripped, embedded commas preserved) or an
// unquoted run of characters up to the next comma. Malformed tokens are
// skipped; real-world manifests vary too much for strict parsing to be
// useful. Later duplicate names overwrite earlier ones.
func ParseAttributeList(line string) map[string]string {
	attrs := make(map[string]string)

	i := 0
	for i < len(line) {
		// Find the NAME=
		eq := strings.IndexByte(line[i:], '=')
		if eq < 0 {
			break
		}
		name := strings.TrimSpace(line[i : i+eq])
		i += eq + 1

		// A comma inside the name means junk tokens precede the real pair;
		// only the segment after the last comma names this attribute
		if idx := strings.LastIndexByte(name, ','); idx >= 0 {
			name = strings.TrimSpace(name[idx+1:])
		}
		if name == "" {
			// Token without a usable name, skip to the next comma
			if next := strings.IndexByte(line[i:], ','); next >= 0 {
				i += next + 1
				continue
			}
			break
		}

		var value string
		if i < len(line) && line[i] == '"' {
			// Quoted value: scan to the closing quote, commas inside are data
			end := strings.IndexByte(line[i+1:], '"')
			if end < 0 {
				// Unterminated quote, take the rest verbatim
				value = line[i+1:]
				i = len(line)
			} else {
				value = line[i+1 : i+1+end]
				i += end + 2
			}
			// Step over the separating comma
			if i < len(line) && line[i] == ',' {
				i++
			}
		} else {
			end := strings.IndexByte(line[i:], ',')
			if end < 0 {
				value = line[i:]
				i = len(line)
			} else {
				value = line[i : i+end]
				i += end + 1
			}
		}

		attrs[strings.ToUpper(name)] = value
	}

	return attrs
}
