package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// definitionDoc mirrors the YAML layout of a definition file.
type definitionDoc struct {
	Environment environmentDoc `yaml:"environment"`
	Collection  collectionDoc  `yaml:"collection"`
}

type environmentDoc struct {
	Name   string        `yaml:"name"`
	Values []variableDoc `yaml:"values"`
}

type variableDoc struct {
	Key     string `yaml:"key"`
	Value   string `yaml:"value"`
	Enabled *bool  `yaml:"enabled"` // Defaults to true
}

type collectionDoc struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Items       []itemDoc `yaml:"items"`
}

// itemDoc is either a folder (items set) or a request (request set).
type itemDoc struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Items       *[]itemDoc  `yaml:"items"`
	Request     *requestDoc `yaml:"request"`
}

type requestDoc struct {
	Method  string    `yaml:"method"`
	URL     string    `yaml:"url"`
	Headers []Header  `yaml:"headers"`
	Body    yaml.Node `yaml:"body"` // String, mapping or sequence
}

// LoadDefinition reads, validates and decodes a definition file.
func LoadDefinition(filePath string) (*Definition, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file: %w", err)
	}
	return ParseDefinition(data)
}

// ParseDefinition validates and decodes definition YAML.
func ParseDefinition(data []byte) (*Definition, error) {
	if err := ValidateDefinition(data); err != nil {
		return nil, err
	}

	var doc definitionDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse definition YAML: %w", err)
	}

	env, err := convertEnvironment(doc.Environment)
	if err != nil {
		return nil, err
	}

	items, err := convertItems("", doc.Collection.Items)
	if err != nil {
		return nil, fmt.Errorf("collection %q: %w", doc.Collection.Name, err)
	}

	return &Definition{
		Environment: env,
		Collection: Collection{
			Name:        doc.Collection.Name,
			Description: doc.Collection.Description,
			Items:       items,
		},
	}, nil
}

func convertEnvironment(doc environmentDoc) (Environment, error) {
	env := Environment{Name: doc.Name, Values: make([]Variable, 0, len(doc.Values))}
	seen := make(map[string]bool, len(doc.Values))

	for _, v := range doc.Values {
		if seen[v.Key] {
			return Environment{}, fmt.Errorf("environment %q: duplicate variable key %q", doc.Name, v.Key)
		}
		seen[v.Key] = true

		enabled := true
		if v.Enabled != nil {
			enabled = *v.Enabled
		}
		env.Values = append(env.Values, Variable{
			Key:     v.Key,
			Value:   ResolveEnvRefs(v.Value),
			Enabled: enabled,
		})
	}

	return env, nil
}

func convertItems(parent string, docs []itemDoc) ([]Item, error) {
	items := make([]Item, 0, len(docs))

	for i, d := range docs {
		label := d.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		path := parent + "/" + label

		switch {
		case d.Items != nil && d.Request != nil:
			return nil, fmt.Errorf("item %q: has both items and request", path)

		case d.Items != nil:
			children, err := convertItems(path, *d.Items)
			if err != nil {
				return nil, err
			}
			items = append(items, &Folder{Name: d.Name, Description: d.Description, Items: children})

		case d.Request != nil:
			body, err := bodyText(&d.Request.Body)
			if err != nil {
				return nil, fmt.Errorf("item %q: failed to encode body: %w", path, err)
			}
			items = append(items, &Request{
				Name:        d.Name,
				Description: d.Description,
				Method:      strings.ToUpper(d.Request.Method),
				URL:         d.Request.URL,
				Headers:     append(make([]Header, 0, len(d.Request.Headers)), d.Request.Headers...),
				Body:        body,
			})

		default:
			return nil, fmt.Errorf("item %q: needs either items or request", path)
		}
	}

	return items, nil
}

// bodyText turns a YAML body node into the raw text sent to the remote.
// Scalars are taken verbatim; mappings and sequences become compact JSON
// with their key order preserved.
func bodyText(node *yaml.Node) (*string, error) {
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			return nil, nil
		}
		s := node.Value
		return &s, nil
	}

	var buf bytes.Buffer
	if err := writeJSON(&buf, node); err != nil {
		return nil, err
	}
	s := buf.String()
	return &s, nil
}

func writeJSON(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeJSON(buf, n.Content[0])

	case yaml.AliasNode:
		return writeJSON(buf, n.Alias)

	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			if key.ShortTag() == "!!merge" {
				return fmt.Errorf("line %d: merge keys are not supported", key.Line)
			}
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, key.Value)
			buf.WriteByte(':')
			if err := writeJSON(buf, n.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, c := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, c); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	case yaml.ScalarNode:
		return writeScalar(buf, n)
	}

	return fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

// jsonInt matches integers already spelled the way JSON spells them.
var jsonInt = regexp.MustCompile(`^-?(0|[1-9][0-9]*)$`)

func writeScalar(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.ShortTag() {
	case "!!null":
		buf.WriteString("null")
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return err
		}
		buf.WriteString(strconv.FormatBool(b))
	case "!!int":
		if jsonInt.MatchString(n.Value) {
			buf.WriteString(n.Value)
			return nil
		}
		var i int64
		if err := n.Decode(&i); err == nil {
			buf.WriteString(strconv.FormatInt(i, 10))
			return nil
		}
		var u uint64
		if err := n.Decode(&u); err != nil {
			return err
		}
		buf.WriteString(strconv.FormatUint(u, 10))
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return err
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return fmt.Errorf("line %d: %s has no JSON representation", n.Line, n.Value)
		}
		buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	default:
		writeString(buf, n.Value)
	}
	return nil
}

// writeString writes s as a JSON string without HTML escaping.
func writeString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	// Encode always terminates with a newline.
	buf.Truncate(buf.Len() - 1)
}
