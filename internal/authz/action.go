package authz

// Action is the kind of operation a request performs on a resource.
type Action string

const (
	ActionList          Action = "list"
	ActionRead          Action = "read"
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionPartialUpdate Action = "partial_update"
	ActionDestroy       Action = "destroy"
)

// Safe reports whether the action is read-only.
func (a Action) Safe() bool {
	return a == ActionList || a == ActionRead
}

// Resource names a policy-governed resource type.
type Resource string

const (
	ResourceUser     Resource = "user"
	ResourceGroup    Resource = "group"
	ResourceProfile  Resource = "profile"
	ResourceTag      Resource = "tag"
	ResourcePost     Resource = "post"
	ResourceComment  Resource = "comment"
	ResourceReaction Resource = "reaction"
)
