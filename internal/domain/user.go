package domain

type Role string

const (
	RoleCustomer        Role = "customer"
	RoleRetailer        Role = "retailer"
	RoleDeliveryPartner Role = "delivery_partner"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleRetailer || r == RoleDeliveryPartner
}

// User is the contact record of any party; ids are opaque identity-provider subjects.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Role  Role   `json:"role"`
}
