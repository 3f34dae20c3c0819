package api

// Review is the wire representation of a product review.
type Review struct {
	ProductID      int    `json:"productId" binding:"required"`
	ReviewID       int    `json:"reviewId"`
	Author         string `json:"author"`
	Subject        string `json:"subject"`
	Content        string `json:"content"`
	ServiceAddress string `json:"serviceAddress,omitempty"`
}
