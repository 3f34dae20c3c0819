package api

// RecommendationSummary is the recommendation projection embedded in a
// product aggregate.
type RecommendationSummary struct {
	RecommendationID int    `json:"recommendationId"`
	Author           string `json:"author"`
	Rate             int    `json:"rate"`
	Content          string `json:"content"`
}

// ReviewSummary is the review projection embedded in a product aggregate.
type ReviewSummary struct {
	ReviewID int    `json:"reviewId"`
	Author   string `json:"author"`
	Subject  string `json:"subject"`
	Content  string `json:"content"`
}

// ServiceAddresses reports which instance of each service produced the
// aggregate. Diagnostic only.
type ServiceAddresses struct {
	CompositeAddress      string `json:"compositeAddress"`
	ProductAddress        string `json:"productAddress"`
	RecommendationAddress string `json:"recommendationAddress"`
	ReviewAddress         string `json:"reviewAddress"`
}

// ProductAggregate joins a product with its recommendations and reviews.
// It is assembled per request and never persisted.
type ProductAggregate struct {
	ProductID        int                     `json:"productId" binding:"required"`
	Name             string                  `json:"name"`
	Weight           int                     `json:"weight"`
	Recommendations  []RecommendationSummary `json:"recommendations"`
	Reviews          []ReviewSummary         `json:"reviews"`
	ServiceAddresses *ServiceAddresses       `json:"serviceAddresses,omitempty"`
}
