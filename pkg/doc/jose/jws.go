/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jose

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/identra/framework-go/pkg/doc/signature/verifier"
)

// JWS token errors.
var (
	// ErrMalformedToken is returned on structural failures of a serialized JWS
	// (missing segments, invalid base64url, invalid JSON).
	ErrMalformedToken = errors.New("malformed JWS token")

	// ErrNoPayload is returned when a token carries no payload.
	ErrNoPayload = errors.New("JWS token has no payload")

	// ErrTooManySignaturesForCompactFormat is returned when a token carrying multiple
	// signatures is serialized to the compact form.
	ErrTooManySignaturesForCompactFormat = errors.New("compact serialization requires exactly one signature")
)

// Signer defines JWS Signer interface. It makes signing of data and provides custom JWS headers relevant to the signer.
type Signer interface {
	// Sign signs.
	Sign(data []byte) ([]byte, error)

	// Headers provides JWS headers. "alg" header must be provided (see https://tools.ietf.org/html/rfc7515#section-4.1)
	Headers() Headers
}

// Signature is a single signature of a JWS token together with its protected
// and unprotected headers.
type Signature struct {
	// ProtectedHeaders are signed and integrity protected.
	ProtectedHeaders Headers

	// UnprotectedHeaders are not signed (JSON serialization only).
	UnprotectedHeaders Headers

	// protected is the base64url header segment exactly as it was signed. Verification
	// and serialization reuse it verbatim; re-serializing the parsed header JSON would
	// change the signed bytes for tokens produced by other JOSE stacks.
	protected string

	signature []byte
}

// signingInput rebuilds the JWS signing input covered by the signature
// (https://tools.ietf.org/html/rfc7515#section-5.1).
func (s *Signature) signingInput(payload []byte) ([]byte, error) {
	b64Payload, err := isB64(s.ProtectedHeaders)
	if err != nil {
		return nil, err
	}

	payloadStr := string(payload)
	if b64Payload {
		payloadStr = base64.RawURLEncoding.EncodeToString(payload)
	}

	return []byte(s.protected + "." + payloadStr), nil
}

// Signature returns the raw signature bytes.
func (s *Signature) Signature() []byte {
	return s.signature
}

// JSONWebSignature defines a JSON Web Signature token: one payload with an
// ordered, non-empty list of signatures over it
// (https://tools.ietf.org/html/rfc7515).
type JSONWebSignature struct {
	payload    []byte
	signatures []*Signature
}

// NewJWS creates a JWS token signed once by the given signer. The protected header is
// built by merging the caller's header fields with the signer's required ones ("alg",
// optionally "kid").
func NewJWS(protectedHeaders, unprotectedHeaders Headers, payload []byte, signer Signer) (*JSONWebSignature, error) {
	jws := &JSONWebSignature{payload: payload}

	err := jws.sign(protectedHeaders, unprotectedHeaders, signer)
	if err != nil {
		return nil, err
	}

	return jws, nil
}

// AddSignature appends another signature over the same payload. Each signature is
// independent and may use a different algorithm and key.
func (s *JSONWebSignature) AddSignature(protectedHeaders Headers, signer Signer) error {
	return s.sign(protectedHeaders, nil, signer)
}

// Payload returns the decoded payload of the token.
func (s *JSONWebSignature) Payload() ([]byte, error) {
	if s.payload == nil {
		return nil, ErrNoPayload
	}

	return s.payload, nil
}

// Signatures returns the signatures of the token in the order they were attached.
func (s *JSONWebSignature) Signatures() []*Signature {
	return s.signatures
}

func (s *JSONWebSignature) sign(protectedHeaders, unprotectedHeaders Headers, signer Signer) error {
	headers := mergeHeaders(protectedHeaders, signer.Headers())

	if _, ok := headers.Algorithm(); !ok {
		return errors.New("alg JWS header is not defined")
	}

	byteHeaders, err := json.Marshal(headers)
	if err != nil {
		return fmt.Errorf("serialize JWS headers: %w", err)
	}

	sig := &Signature{
		ProtectedHeaders:   headers,
		UnprotectedHeaders: unprotectedHeaders,
		protected:          base64.RawURLEncoding.EncodeToString(byteHeaders),
	}

	sInput, err := sig.signingInput(s.payload)
	if err != nil {
		return fmt.Errorf("serialize JWS headers: %w", err)
	}

	sig.signature, err = signer.Sign(sInput)
	if err != nil {
		return fmt.Errorf("sign JWS verification data: %w", err)
	}

	s.signatures = append(s.signatures, sig)

	return nil
}

// Verify checks every signature of the token using the given verifier. An error from
// the verifier on any signature fails the whole token.
func (s *JSONWebSignature) Verify(v SignatureVerifier) error {
	if len(s.signatures) == 0 {
		return errors.New("JWS token is not signed")
	}

	for _, sig := range s.signatures {
		sInput, err := sig.signingInput(s.payload)
		if err != nil {
			return err
		}

		err = v.Verify(sig.ProtectedHeaders, s.payload, sInput, sig.signature)
		if err != nil {
			return err
		}
	}

	return nil
}

// VerifyKeys checks the token signatures against a candidate key set. For each
// signature the key whose ID matches the "kid" protected header is tried, or all
// candidates when "kid" is absent. The result is true only when every signature
// verifies against some candidate; a mismatch yields (false, nil) since an
// unverifiable token is a trust decision, not a fault. Structural failures and
// unknown algorithms surface as errors.
func (s *JSONWebSignature) VerifyKeys(keys ...*verifier.PublicKey) (bool, error) {
	if len(s.signatures) == 0 {
		return false, errors.New("JWS token is not signed")
	}

	for _, sig := range s.signatures {
		verified, err := s.verifySignature(sig, keys)
		if err != nil {
			return false, err
		}

		if !verified {
			return false, nil
		}
	}

	return true, nil
}

func (s *JSONWebSignature) verifySignature(sig *Signature, keys []*verifier.PublicKey) (bool, error) {
	alg, ok := sig.ProtectedHeaders.Algorithm()
	if !ok {
		return false, errors.New("'alg' JOSE header is not present")
	}

	algVerifier, err := verifier.ForAlgorithm(alg)
	if err != nil {
		return false, err
	}

	candidates := keys

	if kid, hasKID := sig.ProtectedHeaders.KeyID(); hasKID {
		candidates = filterKeysByID(keys, kid)
	}

	sInput, err := sig.signingInput(s.payload)
	if err != nil {
		return false, err
	}

	for _, key := range candidates {
		if verifyErr := algVerifier.Verify(key, sInput, sig.signature); verifyErr == nil {
			return true, nil
		}
	}

	return false, nil
}

// filterKeysByID keeps candidates whose key id matches kid. Candidates carrying
// no key id are kept as well since they cannot be ruled out.
func filterKeysByID(keys []*verifier.PublicKey, kid string) []*verifier.PublicKey {
	var matched []*verifier.PublicKey

	for _, key := range keys {
		if key.JWK == nil || key.JWK.KeyID == "" || keyIDMatches(key.JWK.KeyID, kid) {
			matched = append(matched, key)
		}
	}

	return matched
}

// keyIDMatches reports whether two key identifiers refer to the same key. Either
// value may carry the full DID URL form (did:...#fragment) while the other carries
// the bare fragment.
func keyIDMatches(keyID, kid string) bool {
	if keyID == kid {
		return true
	}

	return fragment(keyID) == fragment(kid)
}

func fragment(keyID string) string {
	if idx := strings.LastIndex(keyID, "#"); idx >= 0 {
		return keyID[idx+1:]
	}

	return keyID
}

// SerializeCompact makes JWS Compact Serialization (https://tools.ietf.org/html/rfc7515#section-7.1)
// of the token. The compact form holds exactly one signature.
func (s *JSONWebSignature) SerializeCompact(detached bool) (string, error) {
	if len(s.signatures) > 1 {
		return "", ErrTooManySignaturesForCompactFormat
	}

	if len(s.signatures) == 0 {
		return "", errors.New("JWS token is not signed")
	}

	sig := s.signatures[0]

	b64Payload := ""
	if !detached {
		ok, err := isB64(sig.ProtectedHeaders)
		if err != nil {
			return "", err
		}

		if ok {
			b64Payload = base64.RawURLEncoding.EncodeToString(s.payload)
		} else {
			b64Payload = string(s.payload)
		}
	}

	b64Signature := base64.RawURLEncoding.EncodeToString(sig.signature)

	return fmt.Sprintf("%s.%s.%s", sig.protected, b64Payload, b64Signature), nil
}

// SerializeFlattenedJSON makes JWS Flattened JSON Serialization
// (https://tools.ietf.org/html/rfc7515#section-7.2.2) of the token.
// The flattened form holds exactly one signature.
func (s *JSONWebSignature) SerializeFlattenedJSON() (string, error) {
	if len(s.signatures) > 1 {
		return "", ErrTooManySignaturesForCompactFormat
	}

	if len(s.signatures) == 0 {
		return "", errors.New("JWS token is not signed")
	}

	sig := s.signatures[0]
	rawSig := rawSignature(sig)

	envelope := rawFlattened{
		Payload:      base64.RawURLEncoding.EncodeToString(s.payload),
		Protected:    rawSig.Protected,
		Header:       rawSig.Header,
		SignatureB64: rawSig.SignatureB64,
	}

	serialized, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("marshal flattened JWS: %w", err)
	}

	return string(serialized), nil
}

// SerializeGeneralJSON makes JWS General JSON Serialization
// (https://tools.ietf.org/html/rfc7515#section-7.2.1) of the token,
// carrying all attached signatures.
func (s *JSONWebSignature) SerializeGeneralJSON() (string, error) {
	if len(s.signatures) == 0 {
		return "", errors.New("JWS token is not signed")
	}

	envelope := rawGeneral{
		Payload: base64.RawURLEncoding.EncodeToString(s.payload),
	}

	for _, sig := range s.signatures {
		envelope.Signatures = append(envelope.Signatures, *rawSignature(sig))
	}

	serialized, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("marshal general JWS: %w", err)
	}

	return string(serialized), nil
}

// IsCompactJWS checks weather input is a compact JWS (based on https://tools.ietf.org/html/rfc7516#section-9)
func IsCompactJWS(s string) bool {
	parts := strings.Split(s, ".")

	return len(parts) == jwsPartsCount
}

const (
	jwsPartsCount    = 3
	jwsHeaderPart    = 0
	jwsPayloadPart   = 1
	jwsSignaturePart = 2
)

// ParseJWS parses a serialized JWS token in compact, flattened JSON, or general JSON
// form. Structural errors wrap ErrMalformedToken. Signatures are not checked here;
// use Verify or VerifyKeys on the parsed token.
func ParseJWS(serialized string) (*JSONWebSignature, error) {
	if IsCompactJWS(serialized) {
		return parseCompact(serialized)
	}

	if strings.HasPrefix(strings.TrimSpace(serialized), "{") {
		return parseJSON(serialized)
	}

	return nil, fmt.Errorf("%w: unrecognized serialization", ErrMalformedToken)
}

type rawSig struct {
	Protected    string  `json:"protected,omitempty"`
	Header       Headers `json:"header,omitempty"`
	SignatureB64 string  `json:"signature"`
}

type rawFlattened struct {
	Payload      string  `json:"payload"`
	Protected    string  `json:"protected,omitempty"`
	Header       Headers `json:"header,omitempty"`
	SignatureB64 string  `json:"signature"`
}

type rawGeneral struct {
	Payload    string   `json:"payload"`
	Signatures []rawSig `json:"signatures"`
}

func rawSignature(sig *Signature) *rawSig {
	return &rawSig{
		Protected:    sig.protected,
		Header:       sig.UnprotectedHeaders,
		SignatureB64: base64.RawURLEncoding.EncodeToString(sig.signature),
	}
}

func parseCompact(serialized string) (*JSONWebSignature, error) {
	parts := strings.Split(serialized, ".")

	headers, err := parseProtectedHeaders(parts[jwsHeaderPart])
	if err != nil {
		return nil, err
	}

	b64Payload, err := isB64(headers)
	if err != nil {
		return nil, err
	}

	// A detached token has an empty payload segment; payload stays nil so the
	// absence is observable.
	var payload []byte

	if parts[jwsPayloadPart] != "" {
		if b64Payload {
			payload, err = base64.RawURLEncoding.DecodeString(parts[jwsPayloadPart])
			if err != nil {
				return nil, fmt.Errorf("%w: decode base64 payload: %s", ErrMalformedToken, err.Error())
			}
		} else {
			payload = []byte(parts[jwsPayloadPart])
		}
	}

	signature, err := base64.RawURLEncoding.DecodeString(parts[jwsSignaturePart])
	if err != nil {
		return nil, fmt.Errorf("%w: decode base64 signature: %s", ErrMalformedToken, err.Error())
	}

	return &JSONWebSignature{
		payload: payload,
		signatures: []*Signature{
			{
				ProtectedHeaders: headers,
				protected:        parts[jwsHeaderPart],
				signature:        signature,
			},
		},
	}, nil
}

func parseJSON(serialized string) (*JSONWebSignature, error) {
	var probe struct {
		Signatures []json.RawMessage `json:"signatures"`
	}

	if err := json.Unmarshal([]byte(serialized), &probe); err != nil {
		return nil, fmt.Errorf("%w: decode JSON envelope: %s", ErrMalformedToken, err.Error())
	}

	if probe.Signatures != nil {
		return parseGeneralJSON(serialized)
	}

	return parseFlattenedJSON(serialized)
}

func parseGeneralJSON(serialized string) (*JSONWebSignature, error) {
	var envelope rawGeneral

	if err := json.Unmarshal([]byte(serialized), &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode general JWS: %s", ErrMalformedToken, err.Error())
	}

	if len(envelope.Signatures) == 0 {
		return nil, fmt.Errorf("%w: general JWS carries no signatures", ErrMalformedToken)
	}

	payload, err := decodeEnvelopePayload(envelope.Payload)
	if err != nil {
		return nil, err
	}

	jws := &JSONWebSignature{payload: payload}

	for i := range envelope.Signatures {
		sig, err := parseRawSignature(&envelope.Signatures[i])
		if err != nil {
			return nil, err
		}

		jws.signatures = append(jws.signatures, sig)
	}

	return jws, nil
}

func parseFlattenedJSON(serialized string) (*JSONWebSignature, error) {
	var envelope rawFlattened

	if err := json.Unmarshal([]byte(serialized), &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode flattened JWS: %s", ErrMalformedToken, err.Error())
	}

	payload, err := decodeEnvelopePayload(envelope.Payload)
	if err != nil {
		return nil, err
	}

	sig, err := parseRawSignature(&rawSig{
		Protected:    envelope.Protected,
		Header:       envelope.Header,
		SignatureB64: envelope.SignatureB64,
	})
	if err != nil {
		return nil, err
	}

	return &JSONWebSignature{
		payload:    payload,
		signatures: []*Signature{sig},
	}, nil
}

func decodeEnvelopePayload(b64Payload string) ([]byte, error) {
	if b64Payload == "" {
		return nil, nil
	}

	payload, err := base64.RawURLEncoding.DecodeString(b64Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: decode base64 payload: %s", ErrMalformedToken, err.Error())
	}

	return payload, nil
}

func parseRawSignature(raw *rawSig) (*Signature, error) {
	headers, err := parseProtectedHeaders(raw.Protected)
	if err != nil {
		return nil, err
	}

	signature, err := base64.RawURLEncoding.DecodeString(raw.SignatureB64)
	if err != nil {
		return nil, fmt.Errorf("%w: decode base64 signature: %s", ErrMalformedToken, err.Error())
	}

	return &Signature{
		ProtectedHeaders:   headers,
		UnprotectedHeaders: raw.Header,
		protected:          raw.Protected,
		signature:          signature,
	}, nil
}

func parseProtectedHeaders(b64Headers string) (Headers, error) {
	headerBytes, err := base64.RawURLEncoding.DecodeString(b64Headers)
	if err != nil {
		return nil, fmt.Errorf("%w: decode base64 header: %s", ErrMalformedToken, err.Error())
	}

	var headers Headers

	if err := json.Unmarshal(headerBytes, &headers); err != nil {
		return nil, fmt.Errorf("%w: unmarshal JSON headers: %s", ErrMalformedToken, err.Error())
	}

	return headers, nil
}

func mergeHeaders(h1, h2 Headers) Headers {
	h := make(Headers, len(h1)+len(h2))

	for k, v := range h2 {
		h[k] = v
	}

	for k, v := range h1 {
		h[k] = v
	}

	return h
}

func signingInput(headers Headers, payload []byte) ([]byte, error) {
	headersBytes, err := json.Marshal(headers)
	if err != nil {
		return nil, fmt.Errorf("marshal json headers: %w", err)
	}

	hBase64 := true

	if b64, ok := headers[HeaderB64Payload]; ok {
		if hBase64, ok = b64.(bool); !ok {
			return nil, errors.New("invalid b64 header")
		}
	}

	headersStr := base64.RawURLEncoding.EncodeToString(headersBytes)

	var payloadStr string

	if hBase64 {
		payloadStr = base64.RawURLEncoding.EncodeToString(payload)
	} else {
		payloadStr = string(payload)
	}

	return []byte(headersStr + "." + payloadStr), nil
}

func isB64(headers Headers) (bool, error) {
	if b64, ok := headers[HeaderB64Payload]; ok {
		b64Bool, isBool := b64.(bool)
		if !isBool {
			return false, errors.New("invalid b64 header")
		}

		return b64Bool, nil
	}

	return true, nil
}
