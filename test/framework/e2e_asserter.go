// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package framework

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

// e2eHttpAsserter is an HTTP asserter for end-to-end tests.
type e2eHttpAsserter struct {
	e2e    *E2E
	url    string
	method string
	body   []byte
	want   any
	schema *openapi3.T
	router routers.Router
}

// HttpAssertion creates a new HTTP assertion for the given URL.
// Without [e2eHttpAsserter.WithBody] a GET request is sent.
func (e *E2E) HttpAssertion(u string) *e2eHttpAsserter {
	return &e2eHttpAsserter{e2e: e, url: u, method: http.MethodGet}
}

// WithBody sends body as JSON with a POST request.
func (a *e2eHttpAsserter) WithBody(body any) *e2eHttpAsserter {
	a.e2e.t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		a.e2e.t.Fatalf("Failed to marshal request body: %v", err)
	}
	a.method = http.MethodPost
	a.body = data
	return a
}

// WithSchema fetches the OpenAPI schema and creates a router for response validation.
func (a *e2eHttpAsserter) WithSchema() *e2eHttpAsserter {
	a.e2e.t.Helper()
	schema, err := a.fetchSchema()
	if err != nil {
		a.e2e.t.Fatalf("Failed to fetch OpenAPI schema: %v", err)
	}

	router, err := legacy.NewRouter(schema)
	if err != nil {
		a.e2e.t.Fatalf("Failed to create router from OpenAPI schema: %v", err)
	}

	a.schema = schema
	a.router = router
	return a
}

// WithResponse sets the expected response body. want is decoded into
// a new value of its type and compared with go-cmp.
func (a *e2eHttpAsserter) WithResponse(want any) *e2eHttpAsserter {
	a.want = want
	return a
}

// Assert asserts the status code and then runs schema and response validations.
func (a *e2eHttpAsserter) Assert(status int) {
	a.e2e.t.Helper()
	if !a.e2e.isRunning() {
		a.e2e.t.Fatal("e2eHttpAsserter.Assert must be called after E2E.Run")
	}

	req, err := http.NewRequestWithContext(context.Background(), a.method, a.url, bytes.NewReader(a.body))
	if err != nil {
		a.e2e.t.Fatalf("Failed to create request: %v", err)
	}
	if a.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		a.e2e.t.Errorf("Failed to %s %s: %v", a.method, a.url, err)
		return
	}
	defer resp.Body.Close()

	assert.Equal(a.e2e.t, status, resp.StatusCode, "Unexpected status code for %s %s", a.method, a.url)
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		a.e2e.t.Fatalf("Failed to read response body: %v", err)
	}

	if a.router != nil {
		if err = a.assertSchema(req, resp.StatusCode, data); err != nil {
			a.e2e.t.Errorf("Response from %q does not match schema: %v", a.url, err)
		}
	}
	if a.want != nil {
		if err = a.assertResponse(data); err != nil {
			a.e2e.t.Errorf("Unexpected response from %q: %v", a.url, err)
		}
	}
}

// fetchSchema retrieves the OpenAPI schema from the server.
func (a *e2eHttpAsserter) fetchSchema() (*openapi3.T, error) {
	ctx := context.Background()
	u, err := url.Parse(a.url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	u.Path = "/openapi"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to GET OpenAPI schema: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAPI schema: %w", err)
	}

	schema, err := openapi3.NewLoader().LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI schema: %w", err)
	}

	if err = schema.Validate(ctx); err != nil {
		return nil, fmt.Errorf("OpenAPI schema validation error: %w", err)
	}
	return schema, nil
}

// assertSchema validates the response body against the OpenAPI schema.
func (a *e2eHttpAsserter) assertSchema(req *http.Request, status int, data []byte) error {
	route, _, err := a.router.FindRoute(req)
	if err != nil {
		return fmt.Errorf("failed to find route: %w", err)
	}

	responseRef := route.Operation.Responses.Status(status)
	if responseRef == nil || responseRef.Value == nil {
		return fmt.Errorf("no response defined in OpenAPI schema for status code %d", status)
	}

	mediaType := responseRef.Value.Content.Get("application/json")
	if mediaType == nil {
		return errors.New("no media type defined in OpenAPI schema for Content-Type 'application/json'")
	}

	var body map[string]any
	if err = json.Unmarshal(data, &body); err != nil {
		return fmt.Errorf("failed to unmarshal response body: %w", err)
	}

	if err = mediaType.Schema.Value.VisitJSON(body); err != nil {
		return fmt.Errorf("response body does not match schema: %w", err)
	}
	return nil
}

// assertResponse decodes data into a value of the type of the expected
// response and compares both.
func (a *e2eHttpAsserter) assertResponse(data []byte) error {
	got, err := decodeLike(a.want, data)
	if err != nil {
		return err
	}
	if diff := cmp.Diff(a.want, got); diff != "" {
		return fmt.Errorf("response mismatch (-want +got):\n%s", diff)
	}
	return nil
}

// decodeLike decodes data into a new value of the dynamic type of like.
func decodeLike(like any, data []byte) (any, error) {
	v := reflect.New(reflect.TypeOf(like))
	if err := json.Unmarshal(data, v.Interface()); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}
	return v.Elem().Interface(), nil
}
