package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHas(t *testing.T) {
	cases := []struct {
		role   Role
		action Action
		want   bool
	}{
		{RoleChairman, ActionApproveLoans, true},
		{RoleChairman, ActionRecordMeetings, true},
		{RoleChairman, ActionPayFine, false},
		{RoleTreasurer, ActionManageFinances, true},
		{RoleTreasurer, ActionManageAnnouncements, false},
		{RoleSecretary, ActionRecordMeetings, true},
		{RoleSecretary, ActionApproveLoans, false},
		{RoleSecretary, ActionManageFinances, false},
		{RoleMember, ActionApplyLoan, true},
		{RoleMember, ActionViewAnnouncements, true},
		{RoleMember, ActionIssueFines, false},
		// settling fines is granted to no role table entry, so admin only
		{RoleTreasurer, ActionPayFine, false},
		{RoleMember, ActionPayFine, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Has(tc.role, tc.action), "%s / %s", tc.role, tc.action)
	}
}

func TestAdminImplicitlyHasEverything(t *testing.T) {
	for _, action := range []Action{
		ActionManageFinances, ActionApproveLoans, ActionIssueFines, ActionPayFine,
		ActionRecordContributions, ActionManageAnnouncements, ActionRecordMeetings,
		ActionReviewMembership, ActionApplyLoan, ActionViewOwnData,
	} {
		assert.True(t, Has(RoleAdmin, action), "%s", action)
	}
}

func TestUnknownRoleFailsClosed(t *testing.T) {
	assert.False(t, Has(Role("Auditor"), ActionViewMembers))
	assert.False(t, Has(Role(""), ActionApplyLoan))
}

func TestHolders(t *testing.T) {
	holders := Holders(ActionApproveLoans)
	assert.ElementsMatch(t, []Role{RoleAdmin, RoleChairman, RoleTreasurer}, holders)

	// nobody but admin settles fines
	assert.Equal(t, []Role{RoleAdmin}, Holders(ActionPayFine))
}
