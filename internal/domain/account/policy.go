package account

// CreationPolicy holds the role and status a new account is created with.
type CreationPolicy struct {
	Role   string
	Status string
}

// SelectCreationPolicy decides the effective role and status for a new user.
// Accounts in the platform organization are either the platform operator
// (requested role admin) or a plain user, always active. Any other
// organization gets the caller-supplied role and status verbatim, which is
// how collaborated organizations create admin and staff accounts.
func SelectCreationPolicy(role, status string, organizationID int64) CreationPolicy {
	if organizationID == PlatformOrganizationID {
		if role == RoleAdmin {
			return CreationPolicy{Role: RolePlatformAdmin, Status: StatusActive}
		}
		return CreationPolicy{Role: RoleUser, Status: StatusActive}
	}
	return CreationPolicy{Role: role, Status: status}
}
