// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
	"github.com/telekom/tracerelay/internal/logger"
	"github.com/telekom/tracerelay/pkg/traceroute"
	"gopkg.in/yaml.v3"
)

// schemaOf generates the schema of the payload type of value.
func schemaOf(name string, value any) (*openapi3.SchemaRef, error) {
	ref, err := openapi3gen.NewSchemaRefForValue(value, openapi3.Schemas{})
	if err != nil {
		return nil, &ErrCreateOpenapiSchema{name: name, err: err}
	}
	return ref, nil
}

func jsonResponse(desc string, schema *openapi3.SchemaRef) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{Value: &openapi3.Response{
		Description: &desc,
		Content:     openapi3.NewContentWithJSONSchemaRef(schema),
	}}
}

// OpenAPI returns the document describing the traceroute routes.
func OpenAPI() (*openapi3.T, error) {
	runReq, err := schemaOf("run request", RunRequest{})
	if err != nil {
		return nil, err
	}
	result, err := schemaOf("result", traceroute.Result{})
	if err != nil {
		return nil, err
	}
	accepted, err := schemaOf("accepted", Accepted{})
	if err != nil {
		return nil, err
	}
	output, err := schemaOf("output", Output{})
	if err != nil {
		return nil, err
	}
	output.Value.Properties["state"].Value.Enum = []any{
		string(StateIdle), string(StateRunning), string(StateSucceeded), string(StateFailed),
	}
	errResp, err := schemaOf("error", ErrorResponse{})
	if err != nil {
		return nil, err
	}

	doc := &openapi3.T{
		OpenAPI: "3.0.0",
		Info: &openapi3.Info{
			Title:       "tracerelay API",
			Description: "Runs traceroutes and serves their progress.",
			Version:     "v1",
		},
		Paths: openapi3.NewPaths(),
	}

	doc.Paths.Set(runPath, &openapi3.PathItem{
		Post: &openapi3.Operation{
			OperationID: "runTraceroute",
			Description: "Runs a traceroute. Synchronous runs answer with the result once the run finished.",
			Tags:        []string{"Traceroute"},
			RequestBody: &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
				WithRequired(true).
				WithJSONSchemaRef(runReq)},
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(http.StatusOK, jsonResponse("Result of the run", result)),
				openapi3.WithStatus(http.StatusAccepted, jsonResponse("The run was started in the background", accepted)),
				openapi3.WithStatus(http.StatusBadRequest, jsonResponse("The request is invalid", errResp)),
			),
		},
	})
	doc.Paths.Set(outputPath, &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "getTracerouteOutput",
			Description: "Returns the progress and the result of the most recent run.",
			Tags:        []string{"Traceroute"},
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(http.StatusOK, jsonResponse("Output of the most recent run", output)),
				openapi3.WithStatus(http.StatusServiceUnavailable, jsonResponse("The output could not be read", errResp)),
			),
		},
	})
	return doc, nil
}

// handleOpenAPI serves the document as YAML, or as JSON if requested by the Accept header.
func (h *Handler) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	doc, err := OpenAPI()
	if err != nil {
		log.ErrorContext(ctx, "Failed to create openapi", "error", err)
		writeJSON(ctx, w, http.StatusInternalServerError, ErrorResponse{Error: "failed to create openapi document"})
		return
	}

	marshal := yaml.Marshal
	contentType := "text/yaml"
	if r.Header.Get("Accept") == "application/json" {
		marshal = json.Marshal
		contentType = "application/json"
	}

	data, err := marshal(doc)
	if err != nil {
		log.ErrorContext(ctx, "Failed to marshal openapi", "error", err)
		writeJSON(ctx, w, http.StatusInternalServerError, ErrorResponse{Error: "failed to marshal openapi document"})
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write(data); err != nil {
		log.ErrorContext(ctx, "Failed to write openapi", "error", err)
	}
}
