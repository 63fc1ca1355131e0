package postman

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/blackcoderx/pmsync/pkg/storage"
)

// CollectionSchema is the collection format version sent on every write.
const CollectionSchema = "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"

// Summary is one entry of a list response.
type Summary struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	UID  string `json:"uid"`
}

type wireEnvironment struct {
	Name   string         `json:"name"`
	Values []wireVariable `json:"values"`
}

type wireVariable struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Enabled bool   `json:"enabled"`
	Type    string `json:"type,omitempty"`
}

type wireCollection struct {
	Info wireInfo   `json:"info"`
	Item []wireItem `json:"item"`
}

type wireInfo struct {
	PostmanID   string   `json:"_postman_id,omitempty"`
	Name        string   `json:"name"`
	Description wireText `json:"description,omitempty"`
	Schema      string   `json:"schema"`
}

// wireItem is a folder when Item is non-nil and a request when Request is
// non-nil. Folders always carry an item array, even an empty one.
type wireItem struct {
	Name        string       `json:"name"`
	Description wireText     `json:"description,omitempty"`
	Item        *[]wireItem  `json:"item,omitempty"`
	Request     *wireRequest `json:"request,omitempty"`
}

type wireRequest struct {
	Method      string       `json:"method"`
	URL         wireURL      `json:"url"`
	Header      []wireHeader `json:"header"`
	Body        *wireBody    `json:"body,omitempty"`
	Description wireText     `json:"description,omitempty"`
}

type wireHeader struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type wireBody struct {
	Mode string `json:"mode"`
	Raw  string `json:"raw,omitempty"`
}

// wireURL is written as a plain string. The remote may return it either as
// a string or as an object carrying the string in "raw".
type wireURL string

func (u *wireURL) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*u = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*u = wireURL(s)
		return nil
	}
	var obj struct {
		Raw string `json:"raw"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("unsupported url value: %w", err)
	}
	*u = wireURL(obj.Raw)
	return nil
}

// wireText is a description: written as a string, read from a string or
// from an object carrying the text in "content".
type wireText string

func (t *wireText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = wireText(s)
		return nil
	}
	var obj struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("unsupported description value: %w", err)
	}
	*t = wireText(obj.Content)
	return nil
}

func encodeEnvironment(e storage.Environment) wireEnvironment {
	values := make([]wireVariable, 0, len(e.Values))
	for _, v := range e.Values {
		values = append(values, wireVariable{Key: v.Key, Value: v.Value, Enabled: v.Enabled, Type: "default"})
	}
	return wireEnvironment{Name: e.Name, Values: values}
}

func decodeEnvironment(w wireEnvironment) storage.Environment {
	values := make([]storage.Variable, 0, len(w.Values))
	for _, v := range w.Values {
		values = append(values, storage.Variable{Key: v.Key, Value: v.Value, Enabled: v.Enabled})
	}
	return storage.Environment{Name: w.Name, Values: values}
}

func encodeCollection(c storage.Collection) wireCollection {
	return wireCollection{
		Info: wireInfo{
			Name:        c.Name,
			Description: wireText(c.Description),
			Schema:      CollectionSchema,
		},
		Item: encodeItems(c.Items),
	}
}

func encodeItems(items []storage.Item) []wireItem {
	out := make([]wireItem, 0, len(items))
	for _, it := range items {
		switch it := it.(type) {
		case *storage.Folder:
			children := encodeItems(it.Items)
			out = append(out, wireItem{
				Name:        it.Name,
				Description: wireText(it.Description),
				Item:        &children,
			})
		case *storage.Request:
			out = append(out, wireItem{
				Name:    it.Name,
				Request: encodeRequest(it),
			})
		default:
			panic(fmt.Sprintf("postman: unknown collection item type %T", it))
		}
	}
	return out
}

func encodeRequest(r *storage.Request) *wireRequest {
	headers := make([]wireHeader, 0, len(r.Headers))
	for _, h := range r.Headers {
		headers = append(headers, wireHeader{Key: h.Key, Value: h.Value})
	}

	req := &wireRequest{
		Method:      r.Method,
		URL:         wireURL(r.URL),
		Header:      headers,
		Description: wireText(r.Description),
	}
	if r.Body != nil {
		req.Body = &wireBody{Mode: "raw", Raw: *r.Body}
	}
	return req
}

func decodeCollection(w wireCollection) (storage.Collection, error) {
	items, err := decodeItems("", w.Item)
	if err != nil {
		return storage.Collection{}, err
	}
	return storage.Collection{
		Name:        w.Info.Name,
		Description: string(w.Info.Description),
		Items:       items,
	}, nil
}

func decodeItems(parent string, in []wireItem) ([]storage.Item, error) {
	items := make([]storage.Item, 0, len(in))
	for _, w := range in {
		path := parent + "/" + w.Name

		switch {
		case w.Item != nil:
			children, err := decodeItems(path, *w.Item)
			if err != nil {
				return nil, err
			}
			items = append(items, &storage.Folder{
				Name:        w.Name,
				Description: string(w.Description),
				Items:       children,
			})

		case w.Request != nil:
			items = append(items, decodeRequest(w.Name, w.Request))

		default:
			return nil, fmt.Errorf("item %q is neither a folder nor a request", path)
		}
	}
	return items, nil
}

func decodeRequest(name string, w *wireRequest) *storage.Request {
	headers := make([]storage.Header, 0, len(w.Header))
	for _, h := range w.Header {
		headers = append(headers, storage.Header{Key: h.Key, Value: h.Value})
	}

	req := &storage.Request{
		Name:        name,
		Description: string(w.Description),
		Method:      w.Method,
		URL:         string(w.URL),
		Headers:     headers,
	}
	// Only raw bodies are modelled; other modes read as no body.
	if w.Body != nil && w.Body.Mode == "raw" {
		raw := w.Body.Raw
		req.Body = &raw
	}
	return req
}

// RenderEnvironment returns the indented wire form of an environment.
func RenderEnvironment(e storage.Environment) ([]byte, error) {
	return json.MarshalIndent(encodeEnvironment(e), "", "  ")
}

// RenderCollection returns the indented wire form of a collection.
func RenderCollection(c storage.Collection) ([]byte, error) {
	return json.MarshalIndent(encodeCollection(c), "", "  ")
}
