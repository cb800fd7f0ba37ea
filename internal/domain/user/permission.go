package user

import "context"

// Action is a verb a caller may perform on a Resource.
type Action string

const (
	ActionView    Action = "view"
	ActionCreate  Action = "create"
	ActionRun     Action = "run"
	ActionCompute Action = "compute"
	ActionPay     Action = "pay"
	ActionDelete  Action = "delete"
)

type Resource string

const (
	ResourcePayroll      Resource = "payroll"
	ResourcePayrollEntry Resource = "payroll_entry"
)

// Capability is one (action, resource) pair.
type Capability struct {
	Action   Action
	Resource Resource
}

func (c Capability) String() string {
	return string(c.Resource) + "." + string(c.Action)
}

// Authorizer answers capability checks for the caller carried in ctx.
type Authorizer interface {
	Can(ctx context.Context, action Action, resource Resource) bool
}

// RoleCapabilities maps roles to their capability sets
var RoleCapabilities = map[Role][]Capability{
	RoleOwner: {
		{ActionView, ResourcePayroll},
		{ActionCreate, ResourcePayroll},
		{ActionRun, ResourcePayroll},
		{ActionPay, ResourcePayroll},
		{ActionDelete, ResourcePayroll},
		{ActionView, ResourcePayrollEntry},
		{ActionCompute, ResourcePayrollEntry},
		{ActionPay, ResourcePayrollEntry},
	},
	RoleManager: {
		{ActionView, ResourcePayroll},
		{ActionCreate, ResourcePayroll},
		{ActionRun, ResourcePayroll},
		{ActionView, ResourcePayrollEntry},
		{ActionCompute, ResourcePayrollEntry},
	},
	RoleSystem: {
		{ActionView, ResourcePayroll},
		{ActionRun, ResourcePayroll},
		{ActionPay, ResourcePayroll},
		{ActionView, ResourcePayrollEntry},
		{ActionCompute, ResourcePayrollEntry},
		{ActionPay, ResourcePayrollEntry},
	},
	RoleEmployee: {},
	RolePending:  {},
}

// HasCapability checks if a role has a specific capability
func HasCapability(role Role, action Action, resource Resource) bool {
	capabilities, exists := RoleCapabilities[role]
	if !exists {
		return false
	}

	for _, c := range capabilities {
		if c.Action == action && c.Resource == resource {
			return true
		}
	}

	return false
}
