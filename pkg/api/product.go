package api

// Product is the wire representation of a product owned by the product service.
type Product struct {
	ProductID      int    `json:"productId" binding:"required"`
	Name           string `json:"name"`
	Weight         int    `json:"weight"`
	ServiceAddress string `json:"serviceAddress,omitempty"`
}
