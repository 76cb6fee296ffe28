package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveAccess_ReglasPorDefecto(t *testing.T) {
	rules := DefaultAccessRules()

	cases := []struct {
		method string
		path   string
		want   Access
	}{
		{"POST", "/api/auth/login", AccessPublic},
		{"POST", "/api/auth/refresh", AccessPublic},
		{"POST", "/api/v1/auth/login", AccessPublic},
		{"POST", "/API/V1/Auth/register/", AccessPublic},
		{"GET", "/health", AccessPublic},
		{"GET", "/docs/index.html", AccessPublic},
		{"GET", "/api/sweets", AccessAuthenticated},
		{"GET", "/api/sweets/search", AccessAuthenticated},
		{"PUT", "/api/sweets/3", AccessAuthenticated},
		{"POST", "/api/sweets/3/purchase", AccessAuthenticated},
		{"POST", "/api/sweets/3/restock", AccessAdmin},
		{"POST", "/API/SWEETS/3/RESTOCK/", AccessAdmin},
		{"DELETE", "/api/sweets/3", AccessAdmin},
		{"delete", "/api/sweets/3/", AccessAdmin},
		{"GET", "/api/v1/admin", AccessAdmin},
		{"GET", "/api/v1/user", AccessUser},
		{"GET", "/api/otra", AccessAuthenticated},
		{"GET", "/api/authx", AccessAuthenticated},
		{"GET", "/", AccessAuthenticated},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, resolveAccess(rules, tc.method, tc.path), "%s %s", tc.method, tc.path)
	}
}

func TestResolveAccess_GanaLaPrimeraRegla(t *testing.T) {
	rules := []AccessRule{
		{Pattern: "/api/**", Access: AccessPublic},
		{Pattern: "/api/secret", Access: AccessAdmin},
	}
	assert.Equal(t, AccessPublic, resolveAccess(rules, "GET", "/api/secret"))
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/", normalizePath(""))
	assert.Equal(t, "/", normalizePath("/"))
	assert.Equal(t, "/api/sweets", normalizePath("/API/Sweets//"))
}
