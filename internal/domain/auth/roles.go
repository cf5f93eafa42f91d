package auth

type Role = string

const (
	RoleAdmin       Role = "ADMIN"
	RoleHRManager   Role = "HR_MANAGER"
	RoleSales       Role = "SALES_CRM_MANAGER"
	RoleFinance     Role = "FINANCE_ACCOUNTING_MANAGER"
	RoleSupplyChain Role = "SUPPLY_CHAIN_MANAGER"
	RoleStaff       Role = "STAFF"
)

var Roles = []Role{
	RoleAdmin,
	RoleHRManager,
	RoleSales,
	RoleFinance,
	RoleSupplyChain,
	RoleStaff,
}

func ValidRole(role string) bool {
	for _, candidate := range Roles {
		if candidate == role {
			return true
		}
	}
	return false
}
