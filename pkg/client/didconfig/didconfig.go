/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package didconfig fetches DID configuration resources from their well-known
// location and checks domain linkage.
package didconfig

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	jsonld "github.com/piprate/json-gold/ld"

	"github.com/identra/framework-go/pkg/common/log"
	"github.com/identra/framework-go/pkg/doc/didconfig"
)

var logger = log.New("framework-go/client-didconfig")

const (
	defaultTimeout = time.Minute

	wellKnownPath = "/.well-known/did-configuration.json"
)

// httpClient represents an HTTP client.
type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client verifies domain linkage against a domain's published DID
// configuration resource.
type Client struct {
	httpClient    httpClient
	didConfigOpts []didconfig.DIDConfigurationOpt
}

// New creates a new DID configuration client.
func New(opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Option configures the DID configuration client.
type Option func(opts *Client)

// WithHTTPClient option is for custom http client.
func WithHTTPClient(httpClient httpClient) Option {
	return func(opts *Client) {
		opts.httpClient = httpClient
	}
}

// WithJWTValidator overrides the validator used to check domain linkage
// credential signatures.
func WithJWTValidator(validator didconfig.JWTValidator) Option {
	return func(opts *Client) {
		opts.didConfigOpts = append(opts.didConfigOpts, didconfig.WithJWTValidator(validator))
	}
}

// WithJSONLDDocumentLoader defines a JSON-LD document loader.
func WithJSONLDDocumentLoader(documentLoader jsonld.DocumentLoader) Option {
	return func(opts *Client) {
		opts.didConfigOpts = append(opts.didConfigOpts, didconfig.WithJSONLDDocumentLoader(documentLoader))
	}
}

// VerifyDIDAndDomain fetches the domain's DID configuration resource and
// verifies that it binds the DID to the domain. An empty domain fails with
// didconfig.ErrMissingLinkedDomain before any network call is made.
func (c *Client) VerifyDIDAndDomain(did, domain string) error {
	if domain == "" {
		return fmt.Errorf("%w: DID %s", didconfig.ErrMissingLinkedDomain, did)
	}

	endpoint := domain + wellKnownPath

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("new HTTP request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch DID configuration: %w", err)
	}

	defer closeResponseBody(resp.Body)

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read DID configuration response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("endpoint %s returned status '%d' and message '%s'",
			endpoint, resp.StatusCode, responseBytes)
	}

	return didconfig.VerifyDIDAndDomain(responseBytes, did, domain, c.didConfigOpts...)
}

func closeResponseBody(respBody io.Closer) {
	e := respBody.Close()
	if e != nil {
		logger.Warnf("failed to close response body: %v", e)
	}
}
