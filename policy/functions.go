// Package policy holds the privilege rules applied to session identities.
//
// Privilege is currently a naming convention on the identity id, not a
// claim issued by the identity service. It is kept behind this package so
// it can be swapped for a real role claim without touching callers.
package policy

import "strings"

// DefaultPrivilegedPrefix marks ids that may read aggregate analytics.
const DefaultPrivilegedPrefix = "manager_"

// Policy evaluates identity-level permissions.
type Policy struct {
	privilegedPrefix string
}

func New(privilegedPrefix string) *Policy {
	if privilegedPrefix == "" {
		privilegedPrefix = DefaultPrivilegedPrefix
	}
	return &Policy{privilegedPrefix: privilegedPrefix}
}

// IsPrivileged reports whether the id grants access to aggregate
// analytics.
func (p *Policy) IsPrivileged(id string) bool {
	return strings.HasPrefix(id, p.privilegedPrefix)
}

// IsPrivileged applies the default policy.
func IsPrivileged(id string) bool {
	return strings.HasPrefix(id, DefaultPrivilegedPrefix)
}
