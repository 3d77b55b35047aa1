/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package did holds the DID document data model: parsing, serialization and
// verification-key lookup. The document is read-only for the rest of the
// framework; mutation happens wherever documents are produced.
package did

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/btcsuite/btcutil/base58"
	"github.com/xeipuuv/gojsonschema"

	"github.com/identra/framework-go/pkg/doc/jose/jwk"
	"github.com/identra/framework-go/pkg/doc/signature/verifier"
)

const (
	// ContextV1 of the DID document is the current W3C context for DID documents.
	ContextV1    = "https://w3id.org/did/v1"
	contextV1Alt = "https://www.w3.org/ns/did/v1"

	jsonldType          = "type"
	jsonldID            = "id"
	jsonldController    = "controller"
	jsonldServicePoint  = "serviceEndpoint"
	jsonldPriority      = "priority"
	jsonldCreator       = "creator"
	jsonldCreated       = "created"
	jsonldProofValue    = "proofValue"
	jsonldDomain        = "domain"
	jsonldNonce         = "nonce"
	jsonldPublicKeyB58  = "publicKeyBase58"
	jsonldPublicKeyHex  = "publicKeyHex"
	jsonldPublicKeyPem  = "publicKeyPem"
	jsonldPublicKeyJwk  = "publicKeyJwk"
	jsonldPublicKeyMb   = "publicKeyMultibase"
	jsonldLinkedDomains = "LinkedDomains"
)

var schemaLoaderV1 = gojsonschema.NewStringLoader(schemaV1) //nolint:gochecknoglobals

// ErrKeyNotFound is returned when no verification method of a document matches
// the requested key id.
var ErrKeyNotFound = errors.New("key not found")

// DID is parsed according to the generic syntax: https://w3c.github.io/did-core/#generic-did-syntax.
type DID struct {
	Scheme           string // Scheme is always "did"
	Method           string // Method is the specific DID method
	MethodSpecificID string // MethodSpecificID is the unique ID computed or assigned by the DID method
}

// String returns a string representation of this DID.
func (d *DID) String() string {
	return fmt.Sprintf("%s:%s:%s", d.Scheme, d.Method, d.MethodSpecificID)
}

// Parse parses the string according to the generic DID syntax.
// See https://w3c.github.io/did-core/#generic-did-syntax.
func Parse(did string) (*DID, error) {
	const idchar = `a-zA-Z0-9-_\.`
	regex := fmt.Sprintf(`^did:[a-z0-9]+:(:+|[:%s]+)*[%s]+$`, idchar, idchar)

	result, err := regexp.Compile(regex)
	if err != nil {
		return nil, fmt.Errorf("failed to compile regex=%s (this should not have happened!). %w", regex, err)
	}

	if !result.MatchString(did) {
		return nil, fmt.Errorf(
			"invalid did: %s. Make sure it conforms to the generic DID syntax: https://w3c.github.io/did-core/#generic-did-syntax", //nolint:lll
			did)
	}

	parts := strings.SplitN(did, ":", 3)

	return &DID{
		Scheme:           "did",
		Method:           parts[1],
		MethodSpecificID: parts[2],
	}, nil
}

// Doc DID Document definition.
type Doc struct {
	Context            []string
	ID                 string
	VerificationMethod []VerificationMethod
	Authentication     []VerificationMethod
	AssertionMethod    []VerificationMethod
	Service            []Service
	Created            *time.Time
	Updated            *time.Time
	Proof              []Proof
}

// VerificationMethod is a public key a DID document exposes for signature
// verification. Value holds the raw key material; jsonWebKey is set when the
// document carried the key as a JWK.
type VerificationMethod struct {
	ID         string
	Type       string
	Controller string

	Value []byte

	jsonWebKey *jwk.JWK
}

// JSONWebKey returns the JWK form of the key, nil when the document carried
// the key in a raw encoding.
func (vm *VerificationMethod) JSONWebKey() *jwk.JWK {
	return vm.jsonWebKey
}

// NewVerificationMethodFromBytes creates a verification method from raw public key bytes.
func NewVerificationMethodFromBytes(id, keyType, controller string, value []byte) *VerificationMethod {
	return &VerificationMethod{
		ID:         id,
		Type:       keyType,
		Controller: controller,
		Value:      value,
	}
}

// NewVerificationMethodFromJWK creates a verification method carrying the key as a JWK.
func NewVerificationMethodFromJWK(id, keyType, controller string, j *jwk.JWK) (*VerificationMethod, error) {
	value, err := j.PublicKeyBytes()
	if err != nil {
		return nil, fmt.Errorf("convert JWK to public key bytes: %w", err)
	}

	return &VerificationMethod{
		ID:         id,
		Type:       keyType,
		Controller: controller,
		Value:      value,
		jsonWebKey: j,
	}, nil
}

// Service DID doc service.
type Service struct {
	ID              string
	Type            string
	Priority        uint
	ServiceEndpoint string
	Properties      map[string]interface{}
}

// Proof is cryptographic proof of the integrity of the DID Document.
type Proof struct {
	Type       string
	Created    *time.Time
	Creator    string
	ProofValue []byte
	Domain     string
	Nonce      []byte
}

type rawDoc struct {
	Context            interface{}              `json:"@context,omitempty"`
	ID                 string                   `json:"id,omitempty"`
	VerificationMethod []map[string]interface{} `json:"verificationMethod,omitempty"`
	PublicKey          []map[string]interface{} `json:"publicKey,omitempty"`
	Authentication     []interface{}            `json:"authentication,omitempty"`
	AssertionMethod    []interface{}            `json:"assertionMethod,omitempty"`
	Service            []map[string]interface{} `json:"service,omitempty"`
	Created            *time.Time               `json:"created,omitempty"`
	Updated            *time.Time               `json:"updated,omitempty"`
	Proof              []interface{}            `json:"proof,omitempty"`
}

// ParseDocument creates an instance of a DID document by reading a JSON document from bytes.
func ParseDocument(data []byte) (*Doc, error) {
	raw := &rawDoc{}

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("JSON unmarshalling of did doc bytes failed: %w", err)
	} else if raw == nil {
		return nil, errors.New("document payload is not provided")
	}

	err = validate(data)
	if err != nil {
		return nil, err
	}

	// "publicKey" is the legacy spelling of "verificationMethod"; both feed one list.
	verificationMethods, err := populateVerificationMethods(append(raw.VerificationMethod, raw.PublicKey...))
	if err != nil {
		return nil, fmt.Errorf("populate verification methods failed: %w", err)
	}

	authentications, err := populateVerificationRelationship(raw.Authentication, verificationMethods)
	if err != nil {
		return nil, fmt.Errorf("populate authentications failed: %w", err)
	}

	assertionMethods, err := populateVerificationRelationship(raw.AssertionMethod, verificationMethods)
	if err != nil {
		return nil, fmt.Errorf("populate assertion methods failed: %w", err)
	}

	proofs, err := populateProofs(raw.Proof)
	if err != nil {
		return nil, fmt.Errorf("populate proofs failed: %w", err)
	}

	return &Doc{
		Context:            parseContext(raw.Context),
		ID:                 raw.ID,
		VerificationMethod: verificationMethods,
		Authentication:     authentications,
		AssertionMethod:    assertionMethods,
		Service:            populateServices(raw.Service),
		Created:            raw.Created,
		Updated:            raw.Updated,
		Proof:              proofs,
	}, nil
}

func populateProofs(rawProofs []interface{}) ([]Proof, error) {
	proofs := make([]Proof, 0, len(rawProofs))

	for _, rawProof := range rawProofs {
		emap, ok := rawProof.(map[string]interface{})
		if !ok {
			return nil, errors.New("rawProofs is not map[string]interface{}")
		}

		created := stringEntry(emap[jsonldCreated])

		timeValue, err := time.Parse(time.RFC3339, created)
		if err != nil {
			return nil, err
		}

		proofValue, err := base64.RawURLEncoding.DecodeString(stringEntry(emap[jsonldProofValue]))
		if err != nil {
			return nil, err
		}

		nonce, err := base64.RawURLEncoding.DecodeString(stringEntry(emap[jsonldNonce]))
		if err != nil {
			return nil, err
		}

		proofs = append(proofs, Proof{
			Type:       stringEntry(emap[jsonldType]),
			Created:    &timeValue,
			Creator:    stringEntry(emap[jsonldCreator]),
			ProofValue: proofValue,
			Domain:     stringEntry(emap[jsonldDomain]),
			Nonce:      nonce,
		})
	}

	return proofs, nil
}

func populateServices(rawServices []map[string]interface{}) []Service {
	services := make([]Service, 0, len(rawServices))

	for _, rawService := range rawServices {
		service := Service{
			ID:              stringEntry(rawService[jsonldID]),
			Type:            stringEntry(rawService[jsonldType]),
			ServiceEndpoint: stringEntry(rawService[jsonldServicePoint]),
			Priority:        uintEntry(rawService[jsonldPriority]),
		}

		delete(rawService, jsonldID)
		delete(rawService, jsonldType)
		delete(rawService, jsonldServicePoint)
		delete(rawService, jsonldPriority)

		service.Properties = rawService
		services = append(services, service)
	}

	return services
}

// populateVerificationRelationship resolves authentication/assertionMethod entries,
// each either a key id referencing a verification method or an embedded key.
func populateVerificationRelationship(rawEntries []interface{},
	vms []VerificationMethod) ([]VerificationMethod, error) {
	var relationship []VerificationMethod

	for _, rawEntry := range rawEntries {
		if keyID, ok := rawEntry.(string); ok {
			vm, found := lookupByKeyID(vms, keyID)
			if !found {
				return nil, fmt.Errorf("referenced key %s does not exist in did doc verification methods", keyID)
			}

			relationship = append(relationship, *vm)

			continue
		}

		emap, ok := rawEntry.(map[string]interface{})
		if !ok {
			return nil, errors.New("verification relationship entry is neither a key id nor an embedded key")
		}

		embedded, err := populateVerificationMethods([]map[string]interface{}{emap})
		if err != nil {
			return nil, err
		}

		relationship = append(relationship, embedded[0])
	}

	return relationship, nil
}

func lookupByKeyID(vms []VerificationMethod, keyID string) (*VerificationMethod, bool) {
	for i := range vms {
		if vms[i].ID == keyID {
			return &vms[i], true
		}
	}

	return nil, false
}

func populateVerificationMethods(rawVMs []map[string]interface{}) ([]VerificationMethod, error) {
	var vms []VerificationMethod

	for _, rawVM := range rawVMs {
		vm := VerificationMethod{
			ID:         stringEntry(rawVM[jsonldID]),
			Type:       stringEntry(rawVM[jsonldType]),
			Controller: stringEntry(rawVM[jsonldController]),
		}

		err := decodeVMKeyMaterial(&vm, rawVM)
		if err != nil {
			return nil, err
		}

		vms = append(vms, vm)
	}

	return vms, nil
}

func decodeVMKeyMaterial(vm *VerificationMethod, rawVM map[string]interface{}) error {
	if b58 := stringEntry(rawVM[jsonldPublicKeyB58]); b58 != "" {
		vm.Value = base58.Decode(b58)
		return nil
	}

	if mb := stringEntry(rawVM[jsonldPublicKeyMb]); mb != "" {
		// multibase base58-btc prefix
		if !strings.HasPrefix(mb, "z") {
			return fmt.Errorf("unsupported multibase encoding of public key: %s", mb)
		}

		vm.Value = base58.Decode(mb[1:])

		return nil
	}

	if hexValue := stringEntry(rawVM[jsonldPublicKeyHex]); hexValue != "" {
		value, err := hex.DecodeString(hexValue)
		if err != nil {
			return fmt.Errorf("decode public key hex failed: %w", err)
		}

		vm.Value = value

		return nil
	}

	if pemValue := stringEntry(rawVM[jsonldPublicKeyPem]); pemValue != "" {
		block, _ := pem.Decode([]byte(pemValue))
		if block == nil {
			return errors.New("failed to decode PEM block containing public key")
		}

		vm.Value = block.Bytes

		return nil
	}

	if jwkMap := mapEntry(rawVM[jsonldPublicKeyJwk]); jwkMap != nil {
		return decodeVMJwk(jwkMap, vm)
	}

	return errors.New("public key encoding not supported")
}

func decodeVMJwk(jwkMap map[string]interface{}, vm *VerificationMethod) error {
	jwkBytes, err := json.Marshal(jwkMap)
	if err != nil {
		return fmt.Errorf("failed to marshal '%s', cause: %w", jsonldPublicKeyJwk, err)
	}

	if string(jwkBytes) == "{}" {
		vm.Value = []byte("")
		return nil
	}

	var j jwk.JWK

	err = json.Unmarshal(jwkBytes, &j)
	if err != nil {
		return fmt.Errorf("unmarshal JWK: %w", err)
	}

	keyBytes, err := j.PublicKeyBytes()
	if err != nil {
		return fmt.Errorf("failed to decode public key from JWK: %w", err)
	}

	vm.Value = keyBytes
	vm.jsonWebKey = &j

	return nil
}

func parseContext(context interface{}) []string {
	switch ctx := context.(type) {
	case []interface{}:
		var parsed []string

		for _, v := range ctx {
			if s, ok := v.(string); ok {
				parsed = append(parsed, s)
			}
		}

		return parsed
	case []string:
		return ctx
	case string:
		return []string{ctx}
	}

	return []string{""}
}

func validate(data []byte) error {
	// The document must conform to the serialization of the DID document data model.
	// Reference: https://w3c.github.io/did-core/#did-documents
	documentLoader := gojsonschema.NewStringLoader(string(data))

	result, err := gojsonschema.Validate(schemaLoaderV1, documentLoader)
	if err != nil {
		return fmt.Errorf("validation of DID doc failed: %w", err)
	}

	if !result.Valid() {
		errMsg := "did document not valid:\n"
		for _, desc := range result.Errors() {
			errMsg += fmt.Sprintf("- %s\n", desc)
		}

		return errors.New(errMsg)
	}

	return nil
}

func stringEntry(entry interface{}) string {
	if entry == nil {
		return ""
	}

	if s, ok := entry.(string); ok {
		return s
	}

	return ""
}

func uintEntry(entry interface{}) uint {
	if entry == nil {
		return 0
	}

	if f, ok := entry.(float64); ok {
		return uint(f)
	}

	return 0
}

func mapEntry(entry interface{}) map[string]interface{} {
	if entry == nil {
		return nil
	}

	result, ok := entry.(map[string]interface{})
	if !ok {
		return nil
	}

	return result
}

// JSONBytes converts the document to JSON bytes.
func (doc *Doc) JSONBytes() ([]byte, error) {
	raw := &rawDoc{
		Context:            doc.Context,
		ID:                 doc.ID,
		VerificationMethod: populateRawVMs(doc.VerificationMethod),
		Authentication:     populateRawRelationship(doc.Authentication),
		AssertionMethod:    populateRawRelationship(doc.AssertionMethod),
		Service:            populateRawServices(doc.Service),
		Created:            doc.Created,
		Updated:            doc.Updated,
		Proof:              populateRawProofs(doc.Proof),
	}

	if len(raw.Context.([]string)) == 0 {
		raw.Context = []string{ContextV1}
	}

	byteDoc, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("JSON marshalling of document failed: %w", err)
	}

	return byteDoc, nil
}

// ResolvePublicKey selects the verification method whose id matches keyID,
// either exactly or by its fragment suffix. Fails with ErrKeyNotFound when
// the document exposes no matching key.
func (doc *Doc) ResolvePublicKey(keyID string) (*verifier.PublicKey, error) {
	for i := range doc.VerificationMethod {
		vm := &doc.VerificationMethod[i]

		if vm.ID == keyID || keyIDFragmentMatches(vm.ID, keyID) {
			return vmPublicKey(vm), nil
		}
	}

	return nil, ErrKeyNotFound
}

// PublicKeys returns all verification keys of the document, for callers
// verifying a token against the whole identity rather than one key id.
func (doc *Doc) PublicKeys() []*verifier.PublicKey {
	keys := make([]*verifier.PublicKey, 0, len(doc.VerificationMethod))

	for i := range doc.VerificationMethod {
		keys = append(keys, vmPublicKey(&doc.VerificationMethod[i]))
	}

	return keys
}

func vmPublicKey(vm *VerificationMethod) *verifier.PublicKey {
	key := &verifier.PublicKey{
		Type:  vm.Type,
		Value: vm.Value,
	}

	if vm.jsonWebKey != nil {
		j := *vm.jsonWebKey

		if j.KeyID == "" {
			j.KeyID = vm.ID
		}

		key.JWK = &j
	}

	return key
}

func keyIDFragmentMatches(vmID, keyID string) bool {
	fragment := keyID

	if idx := strings.LastIndex(keyID, "#"); idx >= 0 {
		fragment = keyID[idx+1:]
	}

	return fragment != "" && strings.HasSuffix(vmID, "#"+fragment)
}

func populateRawServices(services []Service) []map[string]interface{} {
	var rawServices []map[string]interface{}

	for _, service := range services {
		rawService := make(map[string]interface{})

		for k, v := range service.Properties {
			rawService[k] = v
		}

		rawService[jsonldID] = service.ID
		rawService[jsonldType] = service.Type
		rawService[jsonldServicePoint] = service.ServiceEndpoint

		if service.Priority != 0 {
			rawService[jsonldPriority] = service.Priority
		}

		rawServices = append(rawServices, rawService)
	}

	return rawServices
}

func populateRawVMs(vms []VerificationMethod) []map[string]interface{} {
	var rawVMs []map[string]interface{}
	for i := range vms {
		rawVMs = append(rawVMs, populateRawVM(&vms[i]))
	}

	return rawVMs
}

func populateRawVM(vm *VerificationMethod) map[string]interface{} {
	rawVM := make(map[string]interface{})
	rawVM[jsonldID] = vm.ID
	rawVM[jsonldType] = vm.Type
	rawVM[jsonldController] = vm.Controller

	if vm.jsonWebKey != nil {
		rawVM[jsonldPublicKeyJwk] = vm.jsonWebKey
	} else if vm.Value != nil {
		rawVM[jsonldPublicKeyB58] = base58.Encode(vm.Value)
	}

	return rawVM
}

func populateRawRelationship(vms []VerificationMethod) []interface{} {
	var raw []interface{}

	for i := range vms {
		raw = append(raw, populateRawVM(&vms[i]))
	}

	return raw
}

func populateRawProofs(proofs []Proof) []interface{} {
	rawProofs := make([]interface{}, 0, len(proofs))

	for _, p := range proofs {
		rawProofs = append(rawProofs, map[string]interface{}{
			jsonldType:       p.Type,
			jsonldCreated:    p.Created,
			jsonldCreator:    p.Creator,
			jsonldProofValue: base64.RawURLEncoding.EncodeToString(p.ProofValue),
			jsonldDomain:     p.Domain,
			jsonldNonce:      base64.RawURLEncoding.EncodeToString(p.Nonce),
		})
	}

	return rawProofs
}

// DocOption provides options to build a DID Doc.
type DocOption func(opts *Doc)

// WithVerificationMethod sets the document verification methods.
func WithVerificationMethod(vms []VerificationMethod) DocOption {
	return func(opts *Doc) {
		opts.VerificationMethod = vms
	}
}

// WithAuthentication sets the authentication verification relationship.
func WithAuthentication(auth []VerificationMethod) DocOption {
	return func(opts *Doc) {
		opts.Authentication = auth
	}
}

// WithAssertionMethod sets the assertionMethod verification relationship.
func WithAssertionMethod(am []VerificationMethod) DocOption {
	return func(opts *Doc) {
		opts.AssertionMethod = am
	}
}

// WithService sets the DID doc services.
func WithService(svc []Service) DocOption {
	return func(opts *Doc) {
		opts.Service = svc
	}
}

// WithCreatedTime sets the DID doc created time.
func WithCreatedTime(t time.Time) DocOption {
	return func(opts *Doc) {
		opts.Created = &t
	}
}

// WithUpdatedTime sets the DID doc updated time.
func WithUpdatedTime(t time.Time) DocOption {
	return func(opts *Doc) {
		opts.Updated = &t
	}
}

// BuildDoc creates the DID Doc from options.
func BuildDoc(opts ...DocOption) *Doc {
	doc := &Doc{}
	doc.Context = []string{ContextV1}

	for _, opt := range opts {
		opt(doc)
	}

	return doc
}
