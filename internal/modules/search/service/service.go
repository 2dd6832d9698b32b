package service

import (
	"context"
	"encoding/json"
	"html"
	"log"
	"strings"

	"github.com/fitlogapp/fitlog-backend/internal/entity"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

// SearchService mirrors the user directory into Meilisearch so members can
// find each other by username or full name.
type SearchService interface {
	IndexUser(user *entity.User) error
	DeleteUser(id string) error
	SearchUsers(ctx context.Context, query string, limit int) ([]UserDoc, error)
}

type UserDoc struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
	CreatedAt int64  `json:"created_at"`
}

type searchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	return s
}

func (s *searchService) initIndexes() {
	sortableAttrs := []string{"created_at"}
	if _, err := s.client.Index("users").UpdateSortableAttributes(&sortableAttrs); err != nil {
		log.Printf("Failed to update users sortable attributes: %v", err)
	}

	searchableAttrs := []string{"username", "full_name", "bio"}
	if _, err := s.client.Index("users").UpdateSearchableAttributes(&searchableAttrs); err != nil {
		log.Printf("Failed to update users searchable attributes: %v", err)
	}

	log.Println("Meilisearch indexes initialized")
}

func (s *searchService) cleanForIndex(content string) string {
	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)
	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *searchService) IndexUser(user *entity.User) error {
	doc := UserDoc{
		ID:        user.ID.String(),
		Username:  user.Username,
		AvatarURL: getStringOrEmpty(user.AvatarURL),
		CreatedAt: user.CreatedAt.Unix(),
	}
	if user.Profile != nil {
		doc.FullName = user.Profile.FullName
		if user.Profile.Bio != nil {
			doc.Bio = s.cleanForIndex(*user.Profile.Bio)
		}
	}

	task, err := s.client.Index("users").AddDocuments([]UserDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed user %s, task id: %d", user.ID, task.TaskUID)
	return nil
}

func (s *searchService) DeleteUser(id string) error {
	_, err := s.client.Index("users").DeleteDocument(id)
	return err
}

func (s *searchService) SearchUsers(ctx context.Context, query string, limit int) ([]UserDoc, error) {
	resp, err := s.client.Index("users").SearchWithContext(ctx, query, &meilisearch.SearchRequest{
		Limit: int64(limit),
	})
	if err != nil {
		return nil, err
	}

	// Hits come back as raw documents; round-trip through JSON to decode.
	raw, err := json.Marshal(resp.Hits)
	if err != nil {
		return nil, err
	}
	var docs []UserDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func strPtr(s string) *string {
	return &s
}

func getStringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
