/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package httpbinding resolves DIDs through a remote DID resolver over its
// HTTP(S) binding (https://w3c-ccg.github.io/did-resolution/#bindings-https).
package httpbinding

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/identra/framework-go/pkg/common/log"
	"github.com/identra/framework-go/pkg/doc/did"
	"github.com/identra/framework-go/pkg/vdr"
)

var logger = log.New("framework-go/vdr-httpbinding")

const didLDJson = "application/did+ld+json"

// Accept is a method to accept a did method.
type Accept func(method string) bool

// VDR resolves DIDs via an HTTP(s) endpoint.
type VDR struct {
	endpointURL      string
	client           *http.Client
	accept           Accept
	resolveAuthToken string
}

// Option configures the httpbinding vdr.
type Option func(opts *VDR)

// WithTimeout sets the HTTP(s) timeout value of the DID resolver.
func WithTimeout(timeout time.Duration) Option {
	return func(opts *VDR) {
		opts.client.Timeout = timeout
	}
}

// WithHTTPClient sets a custom http client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(opts *VDR) {
		opts.client = httpClient
	}
}

// WithAccept sets the did method filter of this resolver.
func WithAccept(accept Accept) Option {
	return func(opts *VDR) {
		opts.accept = accept
	}
}

// WithResolveAuthToken adds an auth token for resolve requests.
func WithResolveAuthToken(authToken string) Option {
	return func(opts *VDR) {
		opts.resolveAuthToken = "Bearer " + authToken
	}
}

// New creates a new DID resolver bound to the given endpoint.
func New(endpointURL string, opts ...Option) (*VDR, error) {
	v := &VDR{
		client: &http.Client{},
		accept: func(method string) bool { return true },
	}

	for _, opt := range opts {
		opt(v)
	}

	// verify the endpoint is a valid URL
	_, err := url.ParseRequestURI(endpointURL)
	if err != nil {
		return nil, fmt.Errorf("base URL invalid: %w", err)
	}

	v.endpointURL = endpointURL

	return v, nil
}

// Accept reports whether this resolver handles the did method.
func (v *VDR) Accept(method string) bool {
	return v.accept(method)
}

// Read resolves a DID document via the remote resolver
// (https://w3c-ccg.github.io/did-resolution/#resolving-input).
func (v *VDR) Read(didID string) (*did.Doc, error) {
	reqURL, err := url.ParseRequestURI(v.endpointURL)
	if err != nil {
		return nil, fmt.Errorf("url parse request uri failed: %w", err)
	}

	reqURL.Path = path.Join(reqURL.Path, didID)

	data, err := v.resolveDID(reqURL.String())
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, vdr.ErrNotFound
	}

	return did.ParseDocument(data)
}

// Close frees resources being maintained by the vdr.
func (v *VDR) Close() error {
	return nil
}

// resolveDID makes DID resolution via HTTP.
func (v *VDR) resolveDID(uri string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTP create get request failed: %w", err)
	}

	req.Header.Add("Accept", didLDJson)

	if v.resolveAuthToken != "" {
		req.Header.Add("Authorization", v.resolveAuthToken)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP Get request failed: %w", err)
	}

	defer closeResponseBody(resp.Body)

	gotBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body failed: %w", err)
	}

	if resp.StatusCode == http.StatusOK && strings.Contains(resp.Header.Get("Content-type"), didLDJson) {
		return gotBody, nil
	} else if resp.StatusCode == http.StatusNotFound {
		return nil, vdr.ErrNotFound
	}

	return nil, fmt.Errorf("unsupported response from DID resolver [%v] header [%s] body [%s]",
		resp.StatusCode, resp.Header.Get("Content-type"), gotBody)
}

func closeResponseBody(respBody io.Closer) {
	if err := respBody.Close(); err != nil {
		logger.Errorf("failed to close response body: %v", err)
	}
}
