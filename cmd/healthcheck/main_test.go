package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAddr(t *testing.T) {
	tests := []struct {
		host, port, want string
	}{
		{"", "", "127.0.0.1:3000"},
		{"0.0.0.0", "8443", "127.0.0.1:8443"},
		{"::", "3000", "127.0.0.1:3000"},
		{"10.0.0.5", "3000", "10.0.0.5:3000"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, normalizeAddr(tc.host, tc.port))
	}
}
