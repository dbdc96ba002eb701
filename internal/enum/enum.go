package enum

// ── Order lifecycle (CHECK constrained in DB) ──

const (
	OrderStatusPending   = "pending"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
)

// OpenOrderStatuses are the statuses that still accept items and payments.
var OpenOrderStatuses = []string{OrderStatusPending, OrderStatusReady}

const (
	OrderTypeTable    = "table"
	OrderTypeTakeaway = "takeaway"
)

// ── Staff roles (CHECK constrained in DB) ──

const (
	UserRoleSuperadmin = "superadmin"
	UserRoleAdmin      = "admin"
	UserRoleWaiter     = "waiter"
	UserRoleFront      = "front"
	UserRoleKitchen    = "kitchen"
)

// ── Payment methods ──

const (
	PaymentMethodCash    = "cash"
	PaymentMethodCard    = "card"
	PaymentMethodMobile  = "mobile"
	PaymentMethodGift    = "gift"
	PaymentMethodLoyalty = "loyalty"

	// PaymentMethodMixed is only ever stored on the order header, never on a payment row.
	PaymentMethodMixed = "mixed"
)

func IsOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusReady, OrderStatusCompleted:
		return true
	}
	return false
}

func IsOpenStatus(s string) bool {
	return s == OrderStatusPending || s == OrderStatusReady
}

func IsOrderType(s string) bool {
	return s == OrderTypeTable || s == OrderTypeTakeaway
}

// IsTenderMethod reports whether s can be recorded on an individual payment.
func IsTenderMethod(s string) bool {
	switch s {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodMobile, PaymentMethodGift, PaymentMethodLoyalty:
		return true
	}
	return false
}

func IsRole(s string) bool {
	switch s {
	case UserRoleSuperadmin, UserRoleAdmin, UserRoleWaiter, UserRoleFront, UserRoleKitchen:
		return true
	}
	return false
}
