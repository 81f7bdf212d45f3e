package shared

// Role names carried in bearer tokens.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
	// RoleOperator is accepted on input and stored as RoleStaff.
	RoleOperator = "operator"
)

// Supplier permissions.
const (
	PermSuppliersView   = "suppliers.view"
	PermSuppliersManage = "suppliers.manage"
)

// Delivery permissions.
const (
	PermDeliveriesView   = "deliveries.view"
	PermDeliveriesRecord = "deliveries.record"
	PermDeliveriesEdit   = "deliveries.edit"
	PermDeliveriesDelete = "deliveries.delete"
)

// Payment permissions.
const (
	PermPaymentsView     = "payments.view"
	PermPaymentsSpotCash = "payments.spotcash"
	PermPaymentsManage   = "payments.manage"
)

// Inventory permissions.
const (
	PermInventoryView   = "inventory.view"
	PermInventoryManage = "inventory.manage"
)

// Platform permissions.
const (
	PermUsersView              = "users.view"
	PermUsersManage            = "users.manage"
	PermNotificationsBroadcast = "notifications.broadcast"
	PermReportsExport          = "reports.export"
)

// NormalizeRole maps accepted role aliases onto stored role names.
// It returns "" for unknown roles.
func NormalizeRole(role string) string {
	switch role {
	case RoleAdmin, RoleManager, RoleStaff:
		return role
	case RoleOperator:
		return RoleStaff
	default:
		return ""
	}
}
