// Package scope is the single authority on record visibility and mutation
// rights. Every read first filters through these predicates; every write
// consults them before touching the store. UI-level checks are advisory
// only.
//
// All functions here are pure domain logic - no I/O, no side effects. They
// are total over their inputs: an unknown role, a missing required region,
// or a zero actor resolves to no access (fail closed), never to an error
// that could be mishandled into a leak.
package scope

import (
	casemodels "sutura/internal/cases/models"
	taskmodels "sutura/internal/tasks/models"
	"sutura/pkg/domain"
)

// VisibleCase reports whether the actor may see the case.
//
// Rule priority:
//   - agent: only cases they created
//   - admin: only cases in their region
//   - super-admin: everything
func VisibleCase(actor domain.Actor, c *casemodels.Case) bool {
	if c == nil {
		return false
	}
	switch actor.Role {
	case domain.RoleAgent:
		return c.AgentID == actor.ID
	case domain.RoleAdmin:
		return actor.Region != "" && c.VictimRegion == actor.Region
	case domain.RoleSuperAdmin:
		return true
	}
	return false
}

// VisibleCases filters a case collection down to the actor's visible subset,
// preserving order.
func VisibleCases(actor domain.Actor, all []*casemodels.Case) []*casemodels.Case {
	visible := make([]*casemodels.Case, 0, len(all))
	for _, c := range all {
		if VisibleCase(actor, c) {
			visible = append(visible, c)
		}
	}
	return visible
}

// CanMutateCase reports whether the actor may update or delete the case.
// Mutation mirrors visibility except that an agent may only mutate records
// they created - which for cases coincides with their visibility rule, so
// the asymmetry lives in the task predicates.
func CanMutateCase(actor domain.Actor, c *casemodels.Case) bool {
	if c == nil {
		return false
	}
	switch actor.Role {
	case domain.RoleAgent:
		return c.AgentID == actor.ID
	case domain.RoleAdmin:
		return actor.Region != "" && c.VictimRegion == actor.Region
	case domain.RoleSuperAdmin:
		return true
	}
	return false
}

// VisibleTask reports whether the actor may see the task: they created it,
// are assigned to it, participate in it, or hold a role whose scope covers
// the task's region.
func VisibleTask(actor domain.Actor, t *taskmodels.Task) bool {
	if t == nil {
		return false
	}
	if t.CreatedBy == actor.ID || t.AssignedTo == actor.ID || t.HasParticipant(actor.ID) {
		return !actor.IsZero()
	}
	switch actor.Role {
	case domain.RoleAgent:
		return false
	case domain.RoleAdmin:
		return actor.Region != "" && t.Region == actor.Region
	case domain.RoleSuperAdmin:
		return true
	}
	return false
}

// VisibleTasks filters a task collection down to the actor's visible subset,
// preserving order.
func VisibleTasks(actor domain.Actor, all []*taskmodels.Task) []*taskmodels.Task {
	visible := make([]*taskmodels.Task, 0, len(all))
	for _, t := range all {
		if VisibleTask(actor, t) {
			visible = append(visible, t)
		}
	}
	return visible
}

// CanMutateTask applies the task edit-permission matrix, which is distinct
// from visibility:
//   - super-admin edits or deletes any task
//   - admin edits any task in scope except one created by a super-admin
//   - agent edits only tasks they created or are assigned to; participation
//     grants no edit rights
func CanMutateTask(actor domain.Actor, t *taskmodels.Task) bool {
	if t == nil {
		return false
	}
	switch actor.Role {
	case domain.RoleAgent:
		return t.AssignedTo == actor.ID || t.CreatedBy == actor.ID
	case domain.RoleAdmin:
		if t.CreatorRole == domain.RoleSuperAdmin {
			return false
		}
		return VisibleTask(actor, t)
	case domain.RoleSuperAdmin:
		return true
	}
	return false
}

// CanAssignTasks reports whether the actor may direct a task at another
// actor or populate its participant list. Everyone else is implicitly
// self-assigned.
func CanAssignTasks(actor domain.Actor) bool {
	return actor.Role == domain.RoleSuperAdmin
}
