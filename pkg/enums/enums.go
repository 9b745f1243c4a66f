package enums

// UserRole identifies the access level of a system user.
type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleOperator UserRole = "operator"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRoleOperator:
		return true
	}
	return false
}

// PartyStatus tracks whether a vendor can still take inventory out.
type PartyStatus string

const (
	PartyStatusActive   PartyStatus = "active"
	PartyStatusInactive PartyStatus = "inactive"
)

func (s PartyStatus) IsValid() bool {
	switch s {
	case PartyStatusActive, PartyStatusInactive:
		return true
	}
	return false
}

// UnitKind declares how quantities of a product are counted. Fractional
// products (sold by weight, like dry ice) accept decimal quantities;
// discrete products only whole units.
type UnitKind string

const (
	UnitKindDiscrete   UnitKind = "discrete"
	UnitKindFractional UnitKind = "fractional"
)

func (k UnitKind) IsValid() bool {
	switch k {
	case UnitKindDiscrete, UnitKindFractional:
		return true
	}
	return false
}

// OrderStatus is the consignment order lifecycle: inventory goes out as
// checked_out and the order finalizes once the return is recorded.
type OrderStatus string

const (
	OrderStatusCheckedOut OrderStatus = "checked_out"
	OrderStatusFinalized  OrderStatus = "finalized"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusCheckedOut, OrderStatusFinalized:
		return true
	}
	return false
}

// DebtStatus follows a debt from registration to settlement.
type DebtStatus string

const (
	DebtStatusOpen          DebtStatus = "open"
	DebtStatusPartiallyPaid DebtStatus = "partially_paid"
	DebtStatusSettled       DebtStatus = "settled"
)

func (s DebtStatus) IsValid() bool {
	switch s {
	case DebtStatusOpen, DebtStatusPartiallyPaid, DebtStatusSettled:
		return true
	}
	return false
}

// ConsignmentOperation is the negotiated bulk-deal operation type.
type ConsignmentOperation string

const (
	ConsignmentOperationWithdrawal ConsignmentOperation = "withdrawal"
	ConsignmentOperationDevolution ConsignmentOperation = "devolution"
	ConsignmentOperationSettlement ConsignmentOperation = "settlement"
)

func (o ConsignmentOperation) IsValid() bool {
	switch o {
	case ConsignmentOperationWithdrawal, ConsignmentOperationDevolution, ConsignmentOperationSettlement:
		return true
	}
	return false
}

// ConsignmentStatus tracks the bulk-deal lifecycle.
type ConsignmentStatus string

const (
	ConsignmentStatusOpen     ConsignmentStatus = "open"
	ConsignmentStatusClosed   ConsignmentStatus = "closed"
	ConsignmentStatusCanceled ConsignmentStatus = "canceled"
)

func (s ConsignmentStatus) IsValid() bool {
	switch s {
	case ConsignmentStatusOpen, ConsignmentStatusClosed, ConsignmentStatusCanceled:
		return true
	}
	return false
}
