// Package permission maps group roles to the actions they may perform.
// It replaces the scattered role-string checks of the old system with one
// static capability table consulted before every mutating operation.
package permission

// Role is a member's position in the group.
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleChairman  Role = "Chairman"
	RoleTreasurer Role = "Treasurer"
	RoleSecretary Role = "Secretary"
	RoleMember    Role = "Member"
)

// Action is something a role may be allowed to do.
type Action string

const (
	ActionManageFinances      Action = "manage_finances"
	ActionViewMembers         Action = "view_members"
	ActionApproveLoans        Action = "approve_loans"
	ActionRecordContributions Action = "record_contributions"
	ActionIssueFines          Action = "issue_fines"
	ActionPayFine             Action = "pay_fine"
	ActionManageAnnouncements Action = "manage_announcements"
	ActionRecordMeetings      Action = "record_meetings"
	ActionReviewMembership    Action = "review_membership"
	ActionViewOwnData         Action = "view_own_data"
	ActionApplyLoan           Action = "apply_loan"
	ActionViewAnnouncements   Action = "view_announcements"
)

// capabilities is the fixed role -> allowed-action table. Admin is handled
// separately and implicitly satisfies every action. Actions absent from the
// table (such as pay_fine) are therefore Admin-only.
var capabilities = map[Role]map[Action]struct{}{
	RoleChairman: actionSet(
		ActionManageFinances, ActionViewMembers, ActionApproveLoans,
		ActionRecordContributions, ActionIssueFines, ActionManageAnnouncements,
		ActionRecordMeetings, ActionReviewMembership,
	),
	RoleTreasurer: actionSet(
		ActionManageFinances, ActionViewMembers, ActionApproveLoans,
		ActionRecordContributions, ActionIssueFines,
	),
	RoleSecretary: actionSet(
		ActionManageAnnouncements, ActionRecordMeetings, ActionViewMembers,
	),
	RoleMember: actionSet(
		ActionViewOwnData, ActionApplyLoan, ActionViewAnnouncements,
	),
}

func actionSet(actions ...Action) map[Action]struct{} {
	s := make(map[Action]struct{}, len(actions))
	for _, a := range actions {
		s[a] = struct{}{}
	}
	return s
}

// Has reports whether role may perform action. Unknown roles and unknown
// actions fail closed.
func Has(role Role, action Action) bool {
	if role == RoleAdmin {
		return true
	}
	allowed, ok := capabilities[role]
	if !ok {
		return false
	}
	_, ok = allowed[action]
	return ok
}

// Holders lists all roles allowed to perform action, Admin included.
// Used for notification fan-out (e.g. everyone who can approve loans).
func Holders(action Action) []Role {
	roles := []Role{RoleAdmin}
	for _, r := range []Role{RoleChairman, RoleTreasurer, RoleSecretary, RoleMember} {
		if _, ok := capabilities[r][action]; ok {
			roles = append(roles, r)
		}
	}
	return roles
}
