// Package contract embeds the REST contract the client is written against
// and validates outgoing requests against it.
package contract

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

//go:embed openapi.yaml
var specData []byte

// Operation is one method/path pair declared by the contract.
type Operation struct {
	Method      string
	Path        string
	OperationID string
}

// ViolationError reports a request the contract does not accept.
type ViolationError struct {
	Method string
	Path   string
	Err    error
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("contract violation: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *ViolationError) Unwrap() error {
	return e.Err
}

// Validator checks requests against an OpenAPI document.
type Validator struct {
	doc    *openapi3.T
	router routers.Router
	origin string
}

// Load returns a validator for the embedded contract.
func Load() (*Validator, error) {
	return LoadData(specData)
}

// LoadData returns a validator for an OpenAPI document. The document must
// declare exactly one absolute server URL; request paths are resolved
// relative to it.
func LoadData(data []byte) (*Validator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load contract: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid contract: %w", err)
	}
	if len(doc.Servers) != 1 {
		return nil, fmt.Errorf("contract must declare exactly one server, got %d", len(doc.Servers))
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build contract router: %w", err)
	}

	return &Validator{
		doc:    doc,
		router: router,
		origin: strings.TrimSuffix(doc.Servers[0].URL, "/"),
	}, nil
}

// Version returns the contract's info.version.
func (v *Validator) Version() string {
	if v.doc.Info == nil {
		return ""
	}
	return v.doc.Info.Version
}

// Validate checks a request given as a path relative to the API base URL
// (query string included). It performs no I/O.
func (v *Validator) Validate(ctx context.Context, method, path, contentType string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, v.origin+path, reader)
	if err != nil {
		return &ViolationError{Method: method, Path: path, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	route, pathParams, err := v.router.FindRoute(req)
	if err != nil {
		return &ViolationError{Method: method, Path: path, Err: err}
	}

	input := &openapi3filter.RequestValidationInput{
		Request:    req,
		PathParams: pathParams,
		Route:      route,
		Options: &openapi3filter.Options{
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	}
	if err := openapi3filter.ValidateRequest(ctx, input); err != nil {
		return &ViolationError{Method: method, Path: path, Err: err}
	}
	return nil
}

// Operations lists the declared operations sorted by path then method.
func (v *Validator) Operations() []Operation {
	var ops []Operation
	for path, item := range v.doc.Paths.Map() {
		for method, op := range item.Operations() {
			ops = append(ops, Operation{Method: method, Path: path, OperationID: op.OperationID})
		}
	}
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Path != ops[j].Path {
			return ops[i].Path < ops[j].Path
		}
		return ops[i].Method < ops[j].Method
	})
	return ops
}

// IsRouteMissing reports whether err means the contract has no such route.
func IsRouteMissing(err error) bool {
	return errors.Is(err, routers.ErrPathNotFound) || errors.Is(err, routers.ErrMethodNotAllowed)
}
