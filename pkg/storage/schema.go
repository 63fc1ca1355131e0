package storage

// Variable is a single key/value entry of an environment.
type Variable struct {
	Key     string `yaml:"key"`     // Unique within its environment
	Value   string `yaml:"value"`   // Raw value, {{env:VAR}} already resolved
	Enabled bool   `yaml:"enabled"` // Disabled variables are kept but not applied
}

// Environment is a named, ordered set of variables.
type Environment struct {
	Name   string     `yaml:"name"`   // Identity used for remote lookup
	Values []Variable `yaml:"values"` // Ordered for display only
}

// AssetName returns the name the environment is matched by remotely.
func (e Environment) AssetName() string { return e.Name }

// Header is one request header. Headers are ordered and may repeat.
type Header struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// Item is a node of a collection tree. It is implemented only by *Folder
// and *Request; code walking a tree switches on those two types.
type Item interface {
	ItemName() string
	item()
}

// Request is a leaf of the collection tree describing one HTTP call template.
type Request struct {
	Name        string
	Description string
	Method      string
	URL         string
	Headers     []Header
	Body        *string // Raw text payload, nil when the request has no body
}

// ItemName returns the request name.
func (r *Request) ItemName() string { return r.Name }

func (*Request) item() {}

// Folder groups items. Folders nest without a depth limit.
type Folder struct {
	Name        string
	Description string
	Items       []Item
}

// ItemName returns the folder name.
func (f *Folder) ItemName() string { return f.Name }

func (*Folder) item() {}

// Collection is a named tree of folders and requests.
type Collection struct {
	Name        string
	Description string
	Items       []Item
}

// AssetName returns the name the collection is matched by remotely.
func (c Collection) AssetName() string { return c.Name }

// Definition is the desired remote state for one sync run.
type Definition struct {
	Environment Environment
	Collection  Collection
}

// Walk calls fn for every item of the tree in depth-first order. The path
// holds the names of the enclosing folders.
func Walk(items []Item, fn func(path []string, it Item)) {
	walk(nil, items, fn)
}

func walk(path []string, items []Item, fn func(path []string, it Item)) {
	for _, it := range items {
		fn(path, it)
		if f, ok := it.(*Folder); ok {
			walk(append(path[:len(path):len(path)], f.Name), f.Items, fn)
		}
	}
}

// CountRequests returns the number of requests in the tree.
func CountRequests(items []Item) int {
	n := 0
	Walk(items, func(_ []string, it Item) {
		if _, ok := it.(*Request); ok {
			n++
		}
	})
	return n
}
