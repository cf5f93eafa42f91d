package auth

// HasPermission is the authorization gate: pure, stateless, and a display
// concern rather than a security boundary. An empty allow list denies.
func HasPermission(role Role, allowedRoles []Role) bool {
	if role == "" {
		return false
	}
	for _, allowed := range allowedRoles {
		if allowed == role {
			return true
		}
	}
	return false
}

// HRWriteRoles may mutate HR master data.
var HRWriteRoles = []Role{RoleAdmin, RoleHRManager}

// HRReadRoles may browse HR data.
var HRReadRoles = []Role{RoleAdmin, RoleHRManager, RoleSales, RoleFinance, RoleSupplyChain, RoleStaff}
