package search

import (
	"fmt"
	"strings"

	"github.com/meilisearch/meilisearch-go"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// MeiliIndexer keeps one Meilisearch index per content kind
type MeiliIndexer struct {
	client *meilisearch.Client
	prefix string
}

func NewMeiliIndexer(host, apiKey string) *MeiliIndexer {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})

	return &MeiliIndexer{
		client: client,
		prefix: "igthar_",
	}
}

func (m *MeiliIndexer) index(kind string) string {
	return m.prefix + kind
}

// InitIndexes creates the per-kind indexes and their settings
func (m *MeiliIndexer) InitIndexes(kinds []string) error {
	for _, kind := range kinds {
		uid := m.index(kind)

		_, err := m.client.CreateIndex(&meilisearch.IndexConfig{
			Uid:        uid,
			PrimaryKey: "id",
		})
		// Ignore error if index already exists
		if err != nil && !strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("failed to create index %s: %w", uid, err)
		}

		if _, err := m.client.Index(uid).UpdateSearchableAttributes(&[]string{
			"title",
			"summary",
			"body",
			"category",
		}); err != nil {
			return fmt.Errorf("failed to configure index %s: %w", uid, err)
		}

		if _, err := m.client.Index(uid).UpdateFilterableAttributes(&[]string{
			"visible",
			"featured",
			"category",
		}); err != nil {
			return fmt.Errorf("failed to configure index %s: %w", uid, err)
		}
	}

	zap.S().Infof("[SEARCH] initialized %d Meilisearch indexes", len(kinds))
	return nil
}

func (m *MeiliIndexer) Enabled() bool {
	return true
}

// Upsert adds or replaces a document
func (m *MeiliIndexer) Upsert(kind string, doc Document) error {
	_, err := m.client.Index(m.index(kind)).AddDocuments([]Document{doc})
	return err
}

// Remove deletes a document
func (m *MeiliIndexer) Remove(kind string, id uint) error {
	_, err := m.client.Index(m.index(kind)).DeleteDocument(cast.ToString(id))
	return err
}

// Search returns visible documents of kind matching query
func (m *MeiliIndexer) Search(kind, query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 20
	}

	res, err := m.client.Index(m.index(kind)).Search(query, &meilisearch.SearchRequest{
		Limit:  int64(limit),
		Filter: "visible = true",
	})
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, raw := range res.Hits {
		hitMap, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		hits = append(hits, Hit{
			Kind:     kind,
			ID:       cast.ToUint(hitMap["id"]),
			Title:    cast.ToString(hitMap["title"]),
			Summary:  cast.ToString(hitMap["summary"]),
			Category: cast.ToString(hitMap["category"]),
			Image:    cast.ToString(hitMap["image"]),
		})
	}
	return hits, nil
}
