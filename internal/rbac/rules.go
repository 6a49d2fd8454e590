package rbac

// Default policy. Faculty author quizzes and read any attempt; students
// take quizzes and read their own history.
var RolePermissions = map[string][]string{
	"student": {
		"quiz:view",
		"question:view",
		"attempt:submit",
		"attempt:view-own",
	},
	"faculty": {
		"quiz:*",
		"question:*",
		"attempt:view-all",
		"attempt:preview",
	},
	"admin": {
		"*", // everything
	},
}
