package authz

// policies is the single policy table. Every (resource, action) pair the
// API serves has exactly one entry; a missing entry means the action is
// not defined for the resource at all (method not allowed), which is a
// different condition from an entry evaluating to deny.
//
// Write rules match the content model:
//   - tags are community data: authors add them, moderators curate them;
//   - posts/comments belong to their owner, moderators may intervene;
//   - reactions belong strictly to their owner;
//   - profiles are created and removed only with the user record itself;
//   - groups are administrative fixtures.
var policies = map[Resource]map[Action]Rule{
	ResourceTag: {
		ActionList:          Everyone,
		ActionRead:          Everyone,
		ActionCreate:        Role(RoleAuthor),
		ActionUpdate:        Role(RoleModerator),
		ActionPartialUpdate: Role(RoleModerator),
		ActionDestroy:       Role(RoleModerator),
	},
	ResourcePost: {
		ActionList:          Everyone,
		ActionRead:          Everyone,
		ActionCreate:        Role(RoleAuthor),
		ActionUpdate:        Or(And(Role(RoleAuthor), Owner), Role(RoleModerator)),
		ActionPartialUpdate: Or(And(Role(RoleAuthor), Owner), Role(RoleModerator)),
		ActionDestroy:       Or(And(Role(RoleAuthor), Owner), Role(RoleModerator)),
	},
	ResourceComment: {
		ActionList:          Everyone,
		ActionRead:          Everyone,
		ActionCreate:        Role(RoleCommenter),
		ActionUpdate:        Or(And(Role(RoleCommenter), Owner), Role(RoleModerator)),
		ActionPartialUpdate: Or(And(Role(RoleCommenter), Owner), Role(RoleModerator)),
		ActionDestroy:       Or(And(Role(RoleCommenter), Owner), Role(RoleModerator)),
	},
	ResourceReaction: {
		ActionList:          Everyone,
		ActionRead:          Everyone,
		ActionCreate:        Authenticated,
		ActionUpdate:        Owner,
		ActionPartialUpdate: Owner,
		ActionDestroy:       Owner,
	},
	ResourceProfile: {
		ActionList:          Everyone,
		ActionRead:          Everyone,
		ActionUpdate:        Owner,
		ActionPartialUpdate: Owner,
		// No create/destroy: a profile exists exactly as long as its user.
	},
	ResourceUser: {
		ActionList:          Authenticated,
		ActionRead:          Or(Owner, Role(RoleModerator), Admin),
		ActionCreate:        Everyone,
		ActionUpdate:        Or(Owner, Admin),
		ActionPartialUpdate: Or(Owner, Role(RoleModerator), Admin),
		ActionDestroy:       Or(Owner, Admin),
	},
	ResourceGroup: {
		ActionList:          Admin,
		ActionRead:          Admin,
		ActionCreate:        Admin,
		ActionUpdate:        Admin,
		ActionPartialUpdate: Admin,
		ActionDestroy:       Admin,
	},
}

// PolicyFor returns the rule governing (resource, action), and whether the
// action is defined for the resource.
func PolicyFor(res Resource, act Action) (Rule, bool) {
	table, ok := policies[res]
	if !ok {
		return nil, false
	}

	rule, ok := table[act]

	return rule, ok
}

// Defined reports whether the action exists for the resource.
func Defined(res Resource, act Action) bool {
	_, ok := PolicyFor(res, act)
	return ok
}

// Can evaluates the policy table for (identity, resource, action) against a
// target row's owner. The system identity is never subject to policy.
// Undefined actions always deny; callers distinguish them via Defined.
func Can(id Identity, res Resource, act Action, ownerID *uint) bool {
	if id.IsSystem() {
		return true
	}

	rule, ok := PolicyFor(res, act)
	if !ok {
		return false
	}

	return rule.Eval(id, act, ownerID)
}
