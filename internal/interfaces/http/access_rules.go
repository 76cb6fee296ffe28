package http

import (
	"path"
	"strings"

	"github.com/jhoicas/sweetshop-api/internal/domain/entity"
)

// Access nivel exigido por una regla.
type Access struct {
	Public bool        // sin token
	Role   entity.Role // vacío = cualquier usuario autenticado
}

var (
	AccessPublic        = Access{Public: true}
	AccessAuthenticated = Access{}
	AccessAdmin         = Access{Role: entity.RoleAdmin}
	AccessUser          = Access{Role: entity.RoleUser}
)

// AccessRule asocia método + patrón de ruta a un nivel de acceso.
// Method vacío aplica a todos los métodos. Pattern usa la sintaxis de path.Match
// y además acepta el sufijo "/**": el prefijo y todo lo que cuelga de él.
type AccessRule struct {
	Method  string
	Pattern string
	Access  Access
}

// DefaultAccessRules reglas de la API en orden de evaluación (gana la primera).
// Lo que no coincide con ninguna exige autenticación.
func DefaultAccessRules() []AccessRule {
	return []AccessRule{
		{Pattern: "/api/auth/**", Access: AccessPublic},
		{Pattern: "/api/v1/auth/**", Access: AccessPublic},
		{Pattern: "/health", Access: AccessPublic},
		{Pattern: "/metrics", Access: AccessPublic},
		{Pattern: "/docs/**", Access: AccessPublic},
		{Method: "DELETE", Pattern: "/api/sweets/**", Access: AccessAdmin},
		{Pattern: "/api/sweets/*/restock", Access: AccessAdmin},
		{Pattern: "/api/sweets/**", Access: AccessAuthenticated},
		{Pattern: "/api/v1/admin/**", Access: AccessAdmin},
		{Pattern: "/api/v1/user/**", Access: AccessUser},
	}
}

func (r AccessRule) matches(method, p string) bool {
	if r.Method != "" && !strings.EqualFold(r.Method, method) {
		return false
	}
	pattern := strings.ToLower(r.Pattern)
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		return p == prefix || strings.HasPrefix(p, prefix+"/")
	}
	ok, err := path.Match(pattern, p)
	return err == nil && ok
}

// resolveAccess devuelve el nivel de la primera regla que coincide.
func resolveAccess(rules []AccessRule, method, rawPath string) Access {
	p := normalizePath(rawPath)
	for _, r := range rules {
		if r.matches(method, p) {
			return r.Access
		}
	}
	return AccessAuthenticated
}

// normalizePath replica cómo enruta Fiber por defecto (sin distinguir mayúsculas
// ni barra final) para que la regla evaluada sea la de la ruta que se ejecutará.
func normalizePath(p string) string {
	p = strings.ToLower(p)
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		return "/"
	}
	return p
}
