package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"scores:view-own",
		"team:view-own",
		"user:change_password",
	},
	"ta": {
		"scores:view-own",
		"team:view-own",
		"team:view-any",
		"grades:view-report",
		"grades:edit",
		"grades:override",
		"submission:grade",
		"review:instructor",
	},
	"instructor": {
		"scores:view-own",
		"team:view-own",
		"team:view-any",
		"grades:*",
		"submission:grade",
		"review:instructor",
	},
	"admin": {
		"*", // everything
	},
}

// Privilege ranking used by the access-gate predicates. A role carries every
// privilege of the roles below it.
var privilegeRank = map[string]int{
	"student":    1,
	"ta":         2,
	"instructor": 3,
	"admin":      4,
}

// AtLeast reports whether role carries at least the privileges of min.
// Unknown roles rank below student.
func AtLeast(role, min string) bool {
	return privilegeRank[role] >= privilegeRank[min] && privilegeRank[min] > 0
}
