package authz

import "slices"

// GroupPatchAllowed is the guard on a moderator editing another user's
// role groups. Moderators exist to hand out (or take away) the author and
// commenter roles; they must not be able to mint or demote moderators,
// and they must not smuggle other field changes in alongside a group
// update.
//
// The guard passes only when:
//   - the patch payload touches exactly the groups field, and
//   - moderator membership in the patched group set equals the target's
//     current moderator membership.
//
// Administrators are not subject to the guard, and neither is a user
// patching their own record (role changes there are denied earlier by the
// policy table unless the actor is a moderator or admin).
func GroupPatchAllowed(actor Identity, targetID uint, payloadFields []string, currentGroups, patchedGroups []string) bool {
	if actor.IsSystem() || actor.IsAdmin {
		return true
	}

	if actor.Authenticated() && actor.UserID == targetID {
		return true
	}

	// Non-admin path: only moderators reach this guard, and only a pure
	// group patch is acceptable.
	if len(payloadFields) != 1 || payloadFields[0] == "" || payloadFields[0] != "groups" {
		return false
	}

	wasModerator := slices.Contains(currentGroups, RoleModerator)
	staysModerator := slices.Contains(patchedGroups, RoleModerator)

	return wasModerator == staysModerator
}
