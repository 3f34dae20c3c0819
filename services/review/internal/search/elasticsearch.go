package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"example.com/productmesh/services/review/config"
	"example.com/productmesh/services/review/internal/models"
)

// Indexer mirrors reviews into a search index. All operations are
// best-effort: callers log failures and move on.
type Indexer interface {
	IndexReview(ctx context.Context, review *models.ReviewEntity) error
	DeleteByProductID(ctx context.Context, productID int) error
}

// ElasticIndexer is the Elasticsearch-backed Indexer.
type ElasticIndexer struct {
	client *elasticsearch.Client
	index  string
	log    *logrus.Logger
}

// NewElasticIndexer creates an indexer, or nil when disabled.
func NewElasticIndexer(cfg config.ElasticsearchConfig, log *logrus.Logger) (*ElasticIndexer, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.URLs,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Elasticsearch client")
	}

	return &ElasticIndexer{client: client, index: cfg.Index, log: log}, nil
}

// IndexReview indexes one review document keyed by its compound id.
func (c *ElasticIndexer) IndexReview(ctx context.Context, review *models.ReviewEntity) error {
	doc := map[string]interface{}{
		"productId": review.ProductID,
		"reviewId":  review.ReviewID,
		"author":    review.Author,
		"subject":   review.Subject,
		"content":   review.Content,
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to marshal review document")
	}

	req := esapi.IndexRequest{
		Index:      c.index,
		DocumentID: fmt.Sprintf("%d-%d", review.ProductID, review.ReviewID),
		Body:       bytes.NewReader(docJSON),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, "failed to index review")
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	if res.IsError() {
		return errors.Errorf("index request failed: %s", res.Status())
	}

	c.log.WithField("productId", review.ProductID).Debug("Indexed review")
	return nil
}

// DeleteByProductID purges every indexed review for a product.
func (c *ElasticIndexer) DeleteByProductID(ctx context.Context, productID int) error {
	query := fmt.Sprintf(`{"query":{"term":{"productId":%d}}}`, productID)

	req := esapi.DeleteByQueryRequest{
		Index: []string{c.index},
		Body:  bytes.NewReader([]byte(query)),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, "failed to delete reviews from index")
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	if res.IsError() {
		return errors.Errorf("delete-by-query request failed: %s", res.Status())
	}
	return nil
}
