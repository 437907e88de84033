package domain

import "strings"

// Role is one of the four independent permission sets of a registry.
type Role string

const (
	RoleAdmin                 Role = "admin"
	RoleTokenizer             Role = "tokenizer"
	RoleTransformationHandler Role = "transformation_handler"
	RoleInformationHandler    Role = "information_handler"
)

// Roles lists every role in a stable order.
var Roles = []Role{RoleAdmin, RoleTokenizer, RoleTransformationHandler, RoleInformationHandler}

// ParseRole accepts the canonical names and a few spellings used by clients.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.NewReplacer("-", "_", " ", "_").Replace(strings.TrimSpace(s))) {
	case "admin":
		return RoleAdmin, true
	case "tokenizer":
		return RoleTokenizer, true
	case "transformation_handler", "transformationhandler":
		return RoleTransformationHandler, true
	case "information_handler", "informationhandler":
		return RoleInformationHandler, true
	}
	return "", false
}

// Registry names an independent role registry. The tokenizer and commodity ledgers
// share one; the composition ledger owns another.
type Registry string

const (
	RegistryCommodity   Registry = "commodity"
	RegistryComposition Registry = "composition"
)

// ParseRegistry validates a registry name.
func ParseRegistry(s string) (Registry, bool) {
	switch r := Registry(strings.ToLower(strings.TrimSpace(s))); r {
	case RegistryCommodity, RegistryComposition:
		return r, true
	}
	return "", false
}
