package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"course:view",
		"enrollment:create",
		"enrollment:view-own",
		"lesson:complete",
		"progress:view-own",
		"quiz:view",
		"attempt:create",
		"attempt:save",
		"attempt:submit",
		"attempt:view-own",
		"certificate:request",
		"certificate:view-own",
		"user:change_password",
	},
	"instructor": {
		"course:view",
		"course:create",
		"course:update_own",
		"course:submit",
		"module:create",
		"chapter:create",
		"lesson:create",
		"quiz:create",
		"quiz:view",
		"attempt:view-all",
		"progress:view-all",
	},
	"editor": {
		"course:view",
		"course:create",
		"course:update_own",
		"course:submit",
		"course:approve",
		"course:publish",
		"module:create",
		"chapter:create",
		"lesson:create",
		"quiz:create",
		"quiz:view",
	},
	"admin": {
		"*", // everything
	},
}
