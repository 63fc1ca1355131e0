package storage

import (
	"os"
	"regexp"
	"sort"
	"strings"
)

// varPattern matches {{VAR_NAME}} or {{env:VAR_NAME}}
var varPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// ResolveEnvRefs replaces {{env:VAR}} references with process environment
// values. Unset variables keep their placeholder.
func ResolveEnvRefs(text string) string {
	return varPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := placeholderName(match)

		if strings.HasPrefix(name, "env:") {
			sysVar := strings.TrimPrefix(name, "env:")
			if val, ok := os.LookupEnv(sysVar); ok {
				return val
			}
		}
		return match
	})
}

// ReferencedVariables returns the sorted, de-duplicated names of the
// {{name}} placeholders used by the collection's URLs, headers and bodies.
// Dynamic values ({{$randomInt}}) and {{env:..}} references are skipped.
func ReferencedVariables(c Collection) []string {
	seen := make(map[string]bool)

	collect := func(text string) {
		for _, match := range varPattern.FindAllString(text, -1) {
			name := placeholderName(match)
			if name == "" || strings.HasPrefix(name, "$") || strings.HasPrefix(name, "env:") {
				continue
			}
			seen[name] = true
		}
	}

	Walk(c.Items, func(_ []string, it Item) {
		req, ok := it.(*Request)
		if !ok {
			return
		}
		collect(req.URL)
		for _, h := range req.Headers {
			collect(h.Key)
			collect(h.Value)
		}
		if req.Body != nil {
			collect(*req.Body)
		}
	})

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MissingVariables returns the variables the collection references but the
// environment does not define.
func MissingVariables(def *Definition) []string {
	defined := make(map[string]bool, len(def.Environment.Values))
	for _, v := range def.Environment.Values {
		defined[v.Key] = true
	}

	var missing []string
	for _, name := range ReferencedVariables(def.Collection) {
		if !defined[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

func placeholderName(match string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSuffix(match, "}}"), "{{"))
}
