package api

// Recommendation is the wire representation of a product recommendation.
type Recommendation struct {
	ProductID        int    `json:"productId" binding:"required"`
	RecommendationID int    `json:"recommendationId"`
	Author           string `json:"author"`
	Rate             int    `json:"rate"`
	Content          string `json:"content"`
	ServiceAddress   string `json:"serviceAddress,omitempty"`
}
