package rbac

import (
	"context"
	"sort"
	"strings"

	"github.com/brewops/brewops/internal/shared"
)

// permissionSet is a lower-cased permission lookup.
type permissionSet map[string]struct{}

func newPermissionSet(perms []string) permissionSet {
	set := make(permissionSet, len(perms))
	for _, p := range perms {
		if p = normalizePermission(p); p != "" {
			set[p] = struct{}{}
		}
	}
	return set
}

func (s permissionSet) has(perm string) bool {
	_, ok := s[perm]
	return ok
}

func (s permissionSet) sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func normalizePermission(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}

// Service resolves permissions from a static role table.
type Service struct {
	roles  map[string]Role
	grants map[string]permissionSet
}

// NewService constructs a Service. With no roles it uses DefaultRoles.
func NewService(roles ...Role) *Service {
	if len(roles) == 0 {
		roles = DefaultRoles
	}
	s := &Service{
		roles:  make(map[string]Role, len(roles)),
		grants: make(map[string]permissionSet, len(roles)),
	}
	for _, r := range roles {
		s.roles[r.Name] = r
		s.grants[r.Name] = newPermissionSet(r.Permissions)
	}
	return s
}

// ListRoles returns all roles ordered by name.
func (s *Service) ListRoles(ctx context.Context) []Role {
	out := make([]Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Service) grantsFor(role string) (permissionSet, bool) {
	set, ok := s.grants[shared.NormalizeRole(strings.ToLower(strings.TrimSpace(role)))]
	return set, ok
}

// EffectivePermissions returns the sorted permission set of a role. Unknown
// roles are forbidden.
func (s *Service) EffectivePermissions(ctx context.Context, role string) ([]string, error) {
	set, ok := s.grantsFor(role)
	if !ok {
		return nil, shared.ErrForbidden
	}
	return set.sorted(), nil
}

// Can reports whether role holds perm.
func (s *Service) Can(ctx context.Context, role, perm string) bool {
	set, ok := s.grantsFor(role)
	return ok && set.has(normalizePermission(perm))
}
