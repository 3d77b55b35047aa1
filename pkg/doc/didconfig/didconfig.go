/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package didconfig verifies DID configuration resources and the domain
// linkage credentials they carry, following the well-known DID configuration
// specification (https://identity.foundation/.well-known/resources/did-configuration/).
package didconfig

import (
	"encoding/json"
	"errors"
	"fmt"

	jsonld "github.com/piprate/json-gold/ld"

	"github.com/identra/framework-go/pkg/common/log"
	"github.com/identra/framework-go/pkg/doc/jose"
	"github.com/identra/framework-go/pkg/doc/jose/kid/resolver"
	"github.com/identra/framework-go/pkg/doc/verifiable"
	"github.com/identra/framework-go/pkg/vdr"
	vdrkey "github.com/identra/framework-go/pkg/vdr/key"
)

var logger = log.New("framework-go/doc-didconfig")

const (
	// ContextV1 is the DID configuration context version 1.
	ContextV1 = "https://identity.foundation/.well-known/did-configuration/v1"

	domainLinkageCredentialType = "DomainLinkageCredential"

	contextProperty    = "@context"
	linkedDIDsProperty = "linked_dids"
)

// ErrMissingLinkedDomain is returned when a domain linkage check is requested
// without a linked domain URL.
var ErrMissingLinkedDomain = errors.New("no linked domain specified in DID")

// ErrLinkedDomainNotBound is returned when none of the credentials in a DID
// configuration resource bind the DID to the domain.
var ErrLinkedDomainNotBound = errors.New("DID is not bound to the linked domain")

// JWTValidator checks JWS token signatures against DID-resolved keys. When
// forDID is non-empty the token is verified against that identity's full key
// set, otherwise each signature is checked against its own kid header.
type JWTValidator interface {
	Verify(token *jose.JSONWebSignature, forDID string) (bool, error)
}

type didConfigOpts struct {
	jwtValidator         JWTValidator
	jsonldDocumentLoader jsonld.DocumentLoader
}

// DIDConfigurationOpt is a DID configuration verification option.
type DIDConfigurationOpt func(opts *didConfigOpts)

// WithJWTValidator overrides the validator used to check domain linkage
// credential signatures.
func WithJWTValidator(validator JWTValidator) DIDConfigurationOpt {
	return func(opts *didConfigOpts) {
		opts.jwtValidator = validator
	}
}

// WithJSONLDDocumentLoader defines a JSON-LD document loader used to resolve
// the configuration context.
func WithJSONLDDocumentLoader(documentLoader jsonld.DocumentLoader) DIDConfigurationOpt {
	return func(opts *didConfigOpts) {
		opts.jsonldDocumentLoader = documentLoader
	}
}

type rawConfiguration struct {
	Context    string        `json:"@context,omitempty"`
	LinkedDIDs []interface{} `json:"linked_dids,omitempty"`
}

// VerifyDIDAndDomain verifies that the DID configuration resource contains a
// valid domain linkage credential for the given DID and domain. It returns
// ErrLinkedDomainNotBound when no credential establishes the binding.
func VerifyDIDAndDomain(didConfig []byte, did, domain string, opts ...DIDConfigurationOpt) error {
	o := prepareOpts(opts)

	err := verifyConfigurationProperties(didConfig)
	if err != nil {
		return err
	}

	raw := rawConfiguration{}

	err = json.Unmarshal(didConfig, &raw)
	if err != nil {
		return fmt.Errorf("unmarshal DID configuration: %w", err)
	}

	if o.jsonldDocumentLoader != nil {
		_, err = o.jsonldDocumentLoader.LoadDocument(raw.Context)
		if err != nil {
			return fmt.Errorf("load DID configuration context %s: %w", raw.Context, err)
		}
	}

	for _, linkedDID := range raw.LinkedDIDs {
		credentialJWT, ok := linkedDID.(string)
		if !ok {
			// linked data proof entries are not supported
			logger.Infof("skipping linked DID entry of type %T", linkedDID)

			continue
		}

		valid, err := VerifyCredential(credentialJWT, did, domain, o.jwtValidator)
		if err != nil {
			logger.Warnf("skipping domain linkage credential for DID[%s] and domain[%s]: %s",
				did, domain, err.Error())

			continue
		}

		if valid {
			return nil
		}
	}

	return ErrLinkedDomainNotBound
}

// VerifyCredential checks a single domain linkage credential JWT against the
// DID and domain. A failed signature or a violated structural rule yields
// false; errors are reserved for malformed credentials and failed key
// resolution.
func VerifyCredential(credentialJWT, did, domain string, validator JWTValidator) (bool, error) {
	if validator == nil {
		validator = defaultJWTValidator()
	}

	vc, token, err := verifiable.ParseCredentialJWT(credentialJWT)
	if err != nil {
		return false, err
	}

	verified, err := validator.Verify(token.SignedJWS(), vc.Issuer)
	if err != nil {
		return false, fmt.Errorf("verify domain linkage credential signature: %w", err)
	}

	if !verified {
		return false, nil
	}

	return isValidDomainLinkageCredential(vc, did, domain), nil
}

// isValidDomainLinkageCredential applies the structural rules of the domain
// linkage credential profile. Violations are a trust decision, not an error.
func isValidDomainLinkageCredential(vc *verifiable.Credential, did, domain string) bool {
	if !contains(domainLinkageCredentialType, vc.Types) {
		logger.Debugf("credential is not of %s type", domainLinkageCredentialType)

		return false
	}

	if vc.Subject.ID == "" || vc.Subject.ID != did {
		logger.Debugf("credential subject ID[%s] is different from requested DID[%s]", vc.Subject.ID, did)

		return false
	}

	if vc.IssuerClaim != vc.Subject.ID || vc.SubjectClaim != vc.Subject.ID {
		logger.Debugf("iss and sub claims must equal credentialSubject.id")

		return false
	}

	if vc.Issued == "" {
		logger.Debugf("issuance date must be present")

		return false
	}

	if vc.Subject.Origin == "" || vc.Subject.Origin != domain {
		logger.Debugf("credential origin[%s] is different from requested domain[%s]", vc.Subject.Origin, domain)

		return false
	}

	return true
}

func verifyConfigurationProperties(data []byte) error {
	requiredProperties := []string{contextProperty, linkedDIDsProperty}
	allowedProperties := []string{contextProperty, linkedDIDsProperty}

	var didCfgMap map[string]interface{}

	err := json.Unmarshal(data, &didCfgMap)
	if err != nil {
		return fmt.Errorf("unmarshal DID configuration: %w", err)
	} else if didCfgMap == nil {
		return errors.New("DID configuration payload is not provided")
	}

	for _, key := range requiredProperties {
		if _, ok := didCfgMap[key]; !ok {
			return fmt.Errorf("did configuration: property '%s' is required", key)
		}
	}

	for key := range didCfgMap {
		if !contains(key, allowedProperties) {
			return fmt.Errorf("did configuration: property '%s' is not allowed", key)
		}
	}

	return nil
}

func prepareOpts(opts []DIDConfigurationOpt) *didConfigOpts {
	o := &didConfigOpts{}

	for _, opt := range opts {
		opt(o)
	}

	if o.jwtValidator == nil {
		o.jwtValidator = defaultJWTValidator()
	}

	return o
}

func defaultJWTValidator() JWTValidator {
	return resolver.NewDIDKeyResolver(vdr.New(vdr.WithVDR(vdrkey.New())))
}

func contains(v string, values []string) bool {
	for _, val := range values {
		if v == val {
			return true
		}
	}

	return false
}
