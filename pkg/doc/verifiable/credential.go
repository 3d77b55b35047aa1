/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package verifiable implements the subset of the W3C Verifiable Credentials
// data model needed for domain linkage checks: credentials carried inside a
// JWT "vc" claim (VC-JWT proof format).
package verifiable

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/identra/framework-go/pkg/doc/jwt"
)

const (
	vcClaim      = "vc"
	issuerClaim  = "iss"
	subjectClaim = "sub"
)

// Subject is a credential subject of a domain linkage credential.
type Subject struct {
	ID     string `mapstructure:"id"`
	Origin string `mapstructure:"origin"`

	CustomFields map[string]interface{} `mapstructure:",remain"`
}

// Credential is a verifiable credential decoded from its JWT proof format.
// Only the fields relevant to domain linkage validation are modeled.
type Credential struct {
	Context []string
	Types   []string
	ID      string
	Issuer  string
	Issued  string
	Expired string
	Subject Subject

	// IssuerClaim and SubjectClaim carry the iss and sub claims of the
	// enclosing JWT, which the VC-JWT profile requires to mirror the
	// credential issuer and subject.
	IssuerClaim  string
	SubjectClaim string

	// JWT keeps the original serialized form.
	JWT string
}

// rawCredential mirrors the "vc" claim object.
type rawCredential struct {
	Context interface{} `mapstructure:"@context"`
	ID      string      `mapstructure:"id"`
	Type    interface{} `mapstructure:"type"`
	Issuer  interface{} `mapstructure:"issuer"`
	Issued  string      `mapstructure:"issuanceDate"`
	Expired string      `mapstructure:"expirationDate"`
	Subject Subject     `mapstructure:"credentialSubject"`
}

// ParseCredentialJWT parses a credential in JWT form and decodes the "vc"
// claim into a Credential. The token signature is not checked here; callers
// verify the proof through the returned JSON Web Token.
func ParseCredentialJWT(credentialJWT string) (*Credential, *jwt.JSONWebToken, error) {
	token, err := jwt.Parse(credentialJWT)
	if err != nil {
		return nil, nil, fmt.Errorf("parse credential JWT: %w", err)
	}

	vcMap, ok := token.Payload[vcClaim].(map[string]interface{})
	if !ok {
		return nil, nil, errors.New("vc claim is not defined or not an object")
	}

	raw := &rawCredential{}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: raw})
	if err != nil {
		return nil, nil, fmt.Errorf("create vc claim decoder: %w", err)
	}

	if err := decoder.Decode(vcMap); err != nil {
		return nil, nil, fmt.Errorf("decode vc claim: %w", err)
	}

	issuer, err := issuerID(raw.Issuer)
	if err != nil {
		return nil, nil, err
	}

	vc := &Credential{
		Context:      toStringSlice(raw.Context),
		Types:        toStringSlice(raw.Type),
		ID:           raw.ID,
		Issuer:       issuer,
		Issued:       raw.Issued,
		Expired:      raw.Expired,
		Subject:      raw.Subject,
		IssuerClaim:  stringClaim(token, issuerClaim),
		SubjectClaim: stringClaim(token, subjectClaim),
		JWT:          credentialJWT,
	}

	return vc, token, nil
}

func stringClaim(token *jwt.JSONWebToken, name string) string {
	if v, ok := token.Payload[name].(string); ok {
		return v
	}

	return ""
}

// issuerID accepts both the string form and the expanded {"id": ...} form
// of the issuer property.
func issuerID(issuer interface{}) (string, error) {
	switch v := issuer.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case map[string]interface{}:
		id, ok := v["id"].(string)
		if !ok {
			return "", errors.New("issuer object misses id field")
		}

		return id, nil
	default:
		return "", fmt.Errorf("unsupported issuer format %T", issuer)
	}
}

func toStringSlice(v interface{}) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []interface{}:
		var res []string

		for _, e := range t {
			if s, ok := e.(string); ok {
				res = append(res, s)
			}
		}

		return res
	case []string:
		return t
	default:
		return nil
	}
}
