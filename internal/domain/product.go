package domain

type Product struct {
	ID                string `json:"id"`
	RetailerID        string `json:"retailerId"`
	Name              string `json:"name"`
	Category          string `json:"category,omitempty"`
	ImageURL          string `json:"imageUrl,omitempty"`
	RentalPricePerDay int64  `json:"rentalPrice"`
	SecurityDeposit   int64  `json:"securityDeposit"`
	Available         bool   `json:"available"`
}
