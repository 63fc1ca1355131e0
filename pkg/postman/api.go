package postman

import (
	"context"
	"net/http"
	"net/url"

	"github.com/blackcoderx/pmsync/pkg/storage"
)

// EnvironmentAPI addresses the /environments endpoints.
type EnvironmentAPI struct {
	c *Client
}

// Environments returns the environment endpoints of the client.
func (c *Client) Environments() *EnvironmentAPI {
	return &EnvironmentAPI{c: c}
}

// List returns every environment visible to the API key. The endpoint is
// not paginated by this client: only what the first response carries is
// returned.
func (a *EnvironmentAPI) List(ctx context.Context) ([]Summary, error) {
	var resp struct {
		Environments []Summary `json:"environments"`
	}
	if err := a.c.do(ctx, "list environments", http.MethodGet, "/environments", a.c.workspaceQuery(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Environments, nil
}

// Get fetches the full content of one environment.
func (a *EnvironmentAPI) Get(ctx context.Context, uid string) (storage.Environment, error) {
	var resp struct {
		Environment wireEnvironment `json:"environment"`
	}
	if err := a.c.do(ctx, "get environment", http.MethodGet, "/environments/"+url.PathEscape(uid), nil, nil, &resp); err != nil {
		return storage.Environment{}, err
	}
	return decodeEnvironment(resp.Environment), nil
}

// Create posts a new environment and returns the uid assigned by the remote.
func (a *EnvironmentAPI) Create(ctx context.Context, env storage.Environment) (string, error) {
	const op = "create environment"

	body := struct {
		Environment wireEnvironment `json:"environment"`
	}{encodeEnvironment(env)}

	var resp struct {
		Environment Summary `json:"environment"`
	}
	if err := a.c.do(ctx, op, http.MethodPost, "/environments", a.c.workspaceQuery(), body, &resp); err != nil {
		return "", err
	}
	if resp.Environment.UID == "" {
		return "", &APIError{Op: op, Status: http.StatusOK, Code: CodeInvalidResponse, Message: "response carries no environment uid"}
	}
	return resp.Environment.UID, nil
}

// Update replaces the whole content of the environment addressed by uid.
func (a *EnvironmentAPI) Update(ctx context.Context, uid string, env storage.Environment) error {
	body := struct {
		Environment wireEnvironment `json:"environment"`
	}{encodeEnvironment(env)}

	return a.c.do(ctx, "update environment", http.MethodPut, "/environments/"+url.PathEscape(uid), nil, body, nil)
}

// Render returns the wire form of env for display.
func (a *EnvironmentAPI) Render(env storage.Environment) ([]byte, error) {
	return RenderEnvironment(env)
}

// CollectionAPI addresses the /collections endpoints.
type CollectionAPI struct {
	c *Client
}

// Collections returns the collection endpoints of the client.
func (c *Client) Collections() *CollectionAPI {
	return &CollectionAPI{c: c}
}

// List returns every collection visible to the API key, first page only.
func (a *CollectionAPI) List(ctx context.Context) ([]Summary, error) {
	var resp struct {
		Collections []Summary `json:"collections"`
	}
	if err := a.c.do(ctx, "list collections", http.MethodGet, "/collections", a.c.workspaceQuery(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Collections, nil
}

// Get fetches the full content of one collection.
func (a *CollectionAPI) Get(ctx context.Context, uid string) (storage.Collection, error) {
	const op = "get collection"

	var resp struct {
		Collection wireCollection `json:"collection"`
	}
	if err := a.c.do(ctx, op, http.MethodGet, "/collections/"+url.PathEscape(uid), nil, nil, &resp); err != nil {
		return storage.Collection{}, err
	}

	col, err := decodeCollection(resp.Collection)
	if err != nil {
		return storage.Collection{}, &APIError{Op: op, Status: http.StatusOK, Code: CodeInvalidResponse, Message: err.Error()}
	}
	return col, nil
}

// Create posts a new collection and returns the uid assigned by the remote.
func (a *CollectionAPI) Create(ctx context.Context, col storage.Collection) (string, error) {
	const op = "create collection"

	body := struct {
		Collection wireCollection `json:"collection"`
	}{encodeCollection(col)}

	var resp struct {
		Collection Summary `json:"collection"`
	}
	if err := a.c.do(ctx, op, http.MethodPost, "/collections", a.c.workspaceQuery(), body, &resp); err != nil {
		return "", err
	}
	if resp.Collection.UID == "" {
		return "", &APIError{Op: op, Status: http.StatusOK, Code: CodeInvalidResponse, Message: "response carries no collection uid"}
	}
	return resp.Collection.UID, nil
}

// Update replaces the whole content of the collection addressed by uid.
// Anything only present remotely, such as test scripts, is lost.
func (a *CollectionAPI) Update(ctx context.Context, uid string, col storage.Collection) error {
	body := struct {
		Collection wireCollection `json:"collection"`
	}{encodeCollection(col)}

	return a.c.do(ctx, "update collection", http.MethodPut, "/collections/"+url.PathEscape(uid), nil, body, nil)
}

// Render returns the wire form of col for display.
func (a *CollectionAPI) Render(col storage.Collection) ([]byte, error) {
	return RenderCollection(col)
}
