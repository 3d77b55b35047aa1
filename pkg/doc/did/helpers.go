/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package did

// LookupService returns the service from the given DID document matching the given
// service type. On multiple matches the one with the lowest priority wins.
func LookupService(didDoc *Doc, serviceType string) (*Service, bool) {
	const notFound = -1
	index := notFound

	for i := range didDoc.Service {
		if didDoc.Service[i].Type == serviceType {
			if index == notFound || didDoc.Service[index].Priority > didDoc.Service[i].Priority {
				index = i
			}
		}
	}

	if index == notFound {
		return nil, false
	}

	return &didDoc.Service[index], true
}

// LookupVerificationMethod returns the verification method with the given id from the
// given DID document.
func LookupVerificationMethod(id string, didDoc *Doc) (*VerificationMethod, bool) {
	for i := range didDoc.VerificationMethod {
		if didDoc.VerificationMethod[i].ID == id {
			return &didDoc.VerificationMethod[i], true
		}
	}

	return nil, false
}
