package opam

import (
	"regexp"
	"strings"
)

// Opam manifests are hand-edited and only loosely structured, so the parser
// is a tolerant line-oriented pass rather than a grammar. Every line is
// tested against the "key: value" shape; lines that do not match are
// skipped. A handful of keys read ahead over the following lines to collect
// multi-line constructs. The outer pass still visits those lines afterwards;
// a block-interior line that itself looks like "key: value" is recorded as a
// field of its own.
var (
	fieldLine    = regexp.MustCompile(`^(.+?):\s*(.*)`)
	checksumLine = regexp.MustCompile(`^(.+?)=(.*)`)
	dependLine   = regexp.MustCompile(`^\s*"([A-Za-z0-9_\-]*)"\s*(.*)`)
)

// dependencyRef is one entry of a depends block before conversion to a
// DependentPackage. version holds the raw constraint expression, already
// stripped of braces and quotes; it may be empty.
type dependencyRef struct {
	name    string
	version string
}

// fieldMap holds the result of the line pass: an insertion-ordered mapping
// of manifest key to its cleaned value. A key holds exactly one of a scalar,
// a string list, or a dependency list; a later write for the same key
// replaces the earlier value but keeps its position.
type fieldMap struct {
	order   []string
	scalars map[string]string
	lists   map[string][]string
	deps    map[string][]dependencyRef
}

func newFieldMap() *fieldMap {
	return &fieldMap{
		scalars: make(map[string]string),
		lists:   make(map[string][]string),
		deps:    make(map[string][]dependencyRef),
	}
}

func (m *fieldMap) track(key string) {
	if _, ok := m.scalars[key]; ok {
		return
	}
	if _, ok := m.lists[key]; ok {
		return
	}
	if _, ok := m.deps[key]; ok {
		return
	}
	m.order = append(m.order, key)
}

func (m *fieldMap) setScalar(key, value string) {
	m.track(key)
	delete(m.lists, key)
	delete(m.deps, key)
	m.scalars[key] = value
}

func (m *fieldMap) setList(key string, values []string) {
	m.track(key)
	delete(m.scalars, key)
	delete(m.deps, key)
	m.lists[key] = values
}

func (m *fieldMap) setDeps(key string, refs []dependencyRef) {
	m.track(key)
	delete(m.scalars, key)
	delete(m.lists, key)
	m.deps[key] = refs
}

func (m *fieldMap) scalar(key string) string {
	return m.scalars[key]
}

func (m *fieldMap) list(key string) []string {
	return m.lists[key]
}

func (m *fieldMap) dependencies(key string) []dependencyRef {
	return m.deps[key]
}

// keys returns the field names in first-seen order.
func (m *fieldMap) keys() []string {
	return m.order
}

// parseLines runs the line pass over a whole manifest.
func parseLines(lines []string) *fieldMap {
	fields := newFieldMap()

	// Manifests written on Windows carry CRLF line endings; drop the
	// carriage returns up front so the read-ahead loops never see them.
	trimmed := make([]string, len(lines))
	for i, line := range lines {
		trimmed[i] = strings.TrimSuffix(line, "\r")
	}
	lines = trimmed

	for i, line := range lines {
		match := fieldLine.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		key := strings.TrimSpace(match[1])
		value := strings.TrimSpace(match[2])

		if key == "description" {
			// Multi-line text: everything up to and including the
			// closing triple-quote line.
			value = ""
			for _, cont := range lines[i+1:] {
				value += " " + strings.TrimSpace(cont)
				if strings.Contains(cont, `"""`) {
					break
				}
			}
		}

		fields.setScalar(key, clean(value))

		switch key {
		case "maintainer":
			stripped := strings.Trim(value, `"[] `)
			fields.setList(key, strings.Split(stripped, `" "`))

		case "authors":
			if strings.Contains(line, "[") {
				// List spans multiple lines, closed by a "]" line.
				for _, cont := range lines[i+1:] {
					value += " " + strings.TrimSpace(cont)
					if strings.Contains(cont, "]") {
						break
					}
				}
				value = strings.Trim(value, `"[] `)
			} else {
				value = clean(value)
			}
			fields.setList(key, strings.Split(value, `" "`))

		case "depends":
			var refs []dependencyRef
			for _, dep := range lines[i+1:] {
				if strings.Contains(dep, "]") {
					break
				}
				m := dependLine.FindStringSubmatch(dep)
				if m == nil {
					continue
				}
				refs = append(refs, dependencyRef{
					name:    strings.TrimSpace(m[1]),
					version: strings.ReplaceAll(strings.Trim(m[2], "{} "), `"`, ""),
				})
			}
			fields.setDeps(key, refs)

		case "src":
			if value == "" && i+1 < len(lines) {
				value = strings.TrimSpace(lines[i+1])
			}
			fields.setScalar(key, clean(value))

		case "checksum":
			// Each entry is "algo=digest"; the pair is stored as a
			// top-level field so distinct algorithms become distinct
			// fields (sha1, md5, ...). Entries without "=" are skipped.
			if strings.Contains(line, "[") {
				for _, cont := range lines[i+1:] {
					entry := strings.Trim(cont, `" `)
					if strings.Contains(entry, "]") {
						break
					}
					if algo, digest, ok := splitChecksum(entry); ok {
						fields.setScalar(algo, digest)
					}
				}
			} else {
				if algo, digest, ok := splitChecksum(strings.Trim(value, `" `)); ok {
					fields.setScalar(algo, digest)
				}
			}
		}
	}

	return fields
}

func splitChecksum(entry string) (algo, digest string, ok bool) {
	m := checksumLine.FindStringSubmatch(entry)
	if m == nil {
		return "", "", false
	}
	return clean(strings.TrimSpace(m[1])), clean(strings.TrimSpace(m[2])), true
}

// clean removes manifest quoting characters and trims surrounding whitespace.
func clean(s string) string {
	for _, strippable := range []string{"'", `"`, "[", "]"} {
		s = strings.ReplaceAll(s, strippable, "")
	}
	return strings.TrimSpace(s)
}
