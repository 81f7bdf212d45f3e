package rbac

import "github.com/brewops/brewops/internal/shared"

// Role represents a high-level permission grouping.
type Role struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

var staffPermissions = []string{
	shared.PermSuppliersView,
	shared.PermSuppliersManage,
	shared.PermDeliveriesView,
	shared.PermDeliveriesRecord,
	shared.PermPaymentsView,
	shared.PermPaymentsSpotCash,
	shared.PermInventoryView,
	shared.PermInventoryManage,
}

var managerPermissions = append(append([]string{}, staffPermissions...),
	shared.PermDeliveriesEdit,
	shared.PermPaymentsManage,
	shared.PermUsersView,
	shared.PermNotificationsBroadcast,
	shared.PermReportsExport,
)

var adminPermissions = append(append([]string{}, managerPermissions...),
	shared.PermDeliveriesDelete,
	shared.PermUsersManage,
)

// DefaultRoles is the static role table.
var DefaultRoles = []Role{
	{Name: shared.RoleAdmin, Description: "Full access including user management", Permissions: adminPermissions},
	{Name: shared.RoleManager, Description: "Settles payments and edits deliveries", Permissions: managerPermissions},
	{Name: shared.RoleStaff, Description: "Records deliveries, suppliers and spot-cash payments", Permissions: staffPermissions},
}
