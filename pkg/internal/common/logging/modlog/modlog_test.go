/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package modlog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/identra/framework-go/pkg/internal/common/logging/metadata"
)

func TestDefLog(t *testing.T) {
	module := "modlog-test"

	logger := NewDefLog(module)
	require.NotNil(t, logger)

	// levels above the module threshold are silently dropped
	metadata.SetLevel(module, metadata.WARNING)

	logger.Warnf("sample warning, %s", "some replacement")
	logger.Errorf("sample error")
	logger.Infof("this info is below the threshold")
	logger.Debugf("this debug is below the threshold")

	require.Panics(t, func() {
		logger.Panicf("sample panic")
	})
}
