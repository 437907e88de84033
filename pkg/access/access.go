// Package access implements the role registries that gate every ledger operation.
//
// A registry holds four independent sets: Admin, Tokenizer, TransformationHandler and
// InformationHandler. Only an admin may change membership. Adding a member twice or
// removing an absent one succeeds without effect and emits nothing.
package access

import (
	"context"

	"github.com/aretw0/tradecoin/internal/runtime"
	"github.com/aretw0/tradecoin/internal/state"
	"github.com/aretw0/tradecoin/pkg/domain"
)

// Control is one role registry.
type Control struct {
	exec     *runtime.Executor
	registry domain.Registry
}

// New binds a registry to the executor that owns its state.
func New(exec *runtime.Executor, registry domain.Registry) *Control {
	return &Control{exec: exec, registry: registry}
}

// Registry returns the name of the registry.
func (c *Control) Registry() domain.Registry { return c.registry }

// Add grants role to who. The caller must be an admin of this registry.
func (c *Control) Add(ctx context.Context, caller domain.Address, role domain.Role, who domain.Address) error {
	return c.exec.Execute(ctx, "add_"+string(role), caller, func(tx *state.Tx) error {
		if !tx.HasRole(c.registry, domain.RoleAdmin, caller) {
			return domain.ErrNotAdmin
		}
		if who.IsZero() {
			return domain.ErrZeroAddress
		}
		if who.IsCustodian() {
			return domain.ErrCustodianAddress
		}
		Grant(tx, c.registry, role, who, caller)
		return nil
	})
}

// Remove revokes role from who. The caller must be an admin of this registry.
// Nothing prevents an admin from removing the last admin.
func (c *Control) Remove(ctx context.Context, caller domain.Address, role domain.Role, who domain.Address) error {
	return c.exec.Execute(ctx, "remove_"+string(role), caller, func(tx *state.Tx) error {
		if !tx.HasRole(c.registry, domain.RoleAdmin, caller) {
			return domain.ErrNotAdmin
		}
		if tx.RevokeRole(c.registry, role, who) {
			tx.Emit(roleEvent(domain.EventRoleRevoked, c.registry, role, who, caller))
		}
		return nil
	})
}

// Has reports whether who holds role. Admins do not implicitly hold other roles.
func (c *Control) Has(role domain.Role, who domain.Address) bool {
	var ok bool
	c.exec.View(func(w *state.World) { ok = w.HasRole(c.registry, role, who) })
	return ok
}

// Members lists the holders of role in sorted order.
func (c *Control) Members(role domain.Role) []domain.Address {
	var out []domain.Address
	c.exec.View(func(w *state.World) { out = w.Members(c.registry, role) })
	return out
}

func (c *Control) AddAdmin(ctx context.Context, caller, who domain.Address) error {
	return c.Add(ctx, caller, domain.RoleAdmin, who)
}

func (c *Control) RemoveAdmin(ctx context.Context, caller, who domain.Address) error {
	return c.Remove(ctx, caller, domain.RoleAdmin, who)
}

func (c *Control) IsAdmin(who domain.Address) bool { return c.Has(domain.RoleAdmin, who) }

func (c *Control) AddTokenizer(ctx context.Context, caller, who domain.Address) error {
	return c.Add(ctx, caller, domain.RoleTokenizer, who)
}

func (c *Control) RemoveTokenizer(ctx context.Context, caller, who domain.Address) error {
	return c.Remove(ctx, caller, domain.RoleTokenizer, who)
}

func (c *Control) IsTokenizer(who domain.Address) bool { return c.Has(domain.RoleTokenizer, who) }

func (c *Control) AddTransformationHandler(ctx context.Context, caller, who domain.Address) error {
	return c.Add(ctx, caller, domain.RoleTransformationHandler, who)
}

func (c *Control) RemoveTransformationHandler(ctx context.Context, caller, who domain.Address) error {
	return c.Remove(ctx, caller, domain.RoleTransformationHandler, who)
}

func (c *Control) IsTransformationHandler(who domain.Address) bool {
	return c.Has(domain.RoleTransformationHandler, who)
}

func (c *Control) AddInformationHandler(ctx context.Context, caller, who domain.Address) error {
	return c.Add(ctx, caller, domain.RoleInformationHandler, who)
}

func (c *Control) RemoveInformationHandler(ctx context.Context, caller, who domain.Address) error {
	return c.Remove(ctx, caller, domain.RoleInformationHandler, who)
}

func (c *Control) IsInformationHandler(who domain.Address) bool {
	return c.Has(domain.RoleInformationHandler, who)
}

// Grant adds who to role inside an open transaction, emitting RoleGranted only when
// membership changed. It performs no authorization; it is used for bootstrapping.
func Grant(tx *state.Tx, r domain.Registry, role domain.Role, who, actor domain.Address) {
	if tx.GrantRole(r, role, who) {
		tx.Emit(roleEvent(domain.EventRoleGranted, r, role, who, actor))
	}
}

// Require checks that who holds role in registry r, or is an admin there.
func Require(tx *state.Tx, r domain.Registry, role domain.Role, who domain.Address) error {
	if tx.HasRole(r, role, who) || tx.HasRole(r, domain.RoleAdmin, who) {
		return nil
	}
	switch role {
	case domain.RoleTokenizer:
		return domain.ErrNotTokenizer
	case domain.RoleTransformationHandler:
		return domain.ErrNotTransformationHandler
	case domain.RoleInformationHandler:
		return domain.ErrNotInformationHandler
	}
	return domain.ErrNotAdmin
}

func roleEvent(name domain.EventName, r domain.Registry, role domain.Role, who, actor domain.Address) domain.Event {
	return domain.Event{
		Ledger:       registryLedger(r),
		Name:         name,
		Actor:        actor,
		Counterparty: who,
		Registry:     r,
		Role:         role,
	}
}

func registryLedger(r domain.Registry) domain.Ledger {
	if r == domain.RegistryComposition {
		return domain.LedgerComposition
	}
	return domain.LedgerCommodity
}
