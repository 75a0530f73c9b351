// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package uuid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/pkg/uuid"
)

func TestNew(t *testing.T) {
	first, second := uuid.New(), uuid.New()

	assert.True(t, uuid.Valid(first))
	assert.NotEqual(t, first, second)
	assert.Equal(t, byte('7'), first[14], "version nibble")
}

func TestValid(t *testing.T) {
	assert.False(t, uuid.Valid("eosc.acme"))
	assert.False(t, uuid.Valid(""))
}
