package enums

// OrderStatus tracks an order through its delivery lifecycle.
type OrderStatus string

const (
	OrderStatusPlaced   OrderStatus = "placed"
	OrderStatusDelivery OrderStatus = "delivery"
	OrderStatusSuccess  OrderStatus = "success"
	OrderStatusCancel   OrderStatus = "cancel"
)

// Terminal reports whether no further transitions are allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusSuccess || s == OrderStatusCancel
}

// EmployeeRole distinguishes back-office staff from delivery shippers.
type EmployeeRole string

const (
	EmployeeRoleStaff   EmployeeRole = "staff"
	EmployeeRoleShipper EmployeeRole = "shipper"
)

// ActorRole identifies the authenticated principal class on a request.
type ActorRole string

const (
	ActorRoleCustomer ActorRole = "customer"
	ActorRoleStaff    ActorRole = "staff"
	ActorRoleShipper  ActorRole = "shipper"
)

// ReviewStatus gates whether a review counts toward the product rating.
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusHidden   ReviewStatus = "hidden"
)
