package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/postwavehq/postwave/internal/limits"
	"github.com/postwavehq/postwave/internal/models"
	"github.com/postwavehq/postwave/internal/repository"
	"github.com/postwavehq/postwave/internal/transfer"
)

// Generator produces post text from a prompt. The production implementation
// talks to the text generation service over HTTP.
type Generator interface {
	Generate(ctx context.Context, req *transfer.GenerateRequest) (*transfer.GeneratedText, error)
}

type httpGenerator struct {
	baseURL string
	client  *http.Client
}

func NewHTTPGenerator(baseURL string) Generator {
	return &httpGenerator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (g *httpGenerator) Generate(ctx context.Context, req *transfer.GenerateRequest) (*transfer.GeneratedText, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("generator returned status %d: %s", resp.StatusCode, payload)
	}

	var generated transfer.GeneratedText
	if err := json.NewDecoder(resp.Body).Decode(&generated); err != nil {
		return nil, err
	}
	return &generated, nil
}

type ContentService interface {
	Generate(ctx context.Context, userID int64, req *transfer.GenerateRequest) (*models.Content, error)
	Create(ctx context.Context, userID int64, title, body string) (*models.Content, error)
	Get(ctx context.Context, userID, contentID int64) (*models.Content, error)
	List(ctx context.Context, userID int64) ([]*models.Content, error)
}

type contentService struct {
	contents  repository.ContentRepository
	generator Generator
	quota     QuotaService
}

func NewContentService(
	contents repository.ContentRepository,
	generator Generator,
	quota QuotaService) ContentService {
	return &contentService{
		contents:  contents,
		generator: generator,
		quota:     quota,
	}
}

// Generate runs the prompt through the generator and stores the result as a
// generated content item. The daily generation quota is checked before the
// generator is called.
func (s *contentService) Generate(ctx context.Context, userID int64, req *transfer.GenerateRequest) (*models.Content, error) {
	if userID == 0 {
		return nil, errors.New("user id is not valid")
	}
	if req.Prompt == "" {
		return nil, errors.New("prompt is empty")
	}

	if err := s.quota.Enforce(ctx, userID, limits.LimitDailyGenerations); err != nil {
		return nil, err
	}

	generated, err := s.generator.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("error generating content: %w", err)
	}

	content := &models.Content{
		UserID:    userID,
		Title:     req.Title,
		Body:      generated.Text,
		Generated: true,
	}
	id, err := s.contents.Create(ctx, nil, content)
	if err != nil {
		return nil, err
	}
	content.ID = id
	return content, nil
}

func (s *contentService) Create(ctx context.Context, userID int64, title, body string) (*models.Content, error) {
	if userID == 0 {
		return nil, errors.New("user id is not valid")
	}
	if body == "" {
		return nil, errors.New("content body is empty")
	}

	content := &models.Content{
		UserID: userID,
		Title:  title,
		Body:   body,
	}
	id, err := s.contents.Create(ctx, nil, content)
	if err != nil {
		return nil, err
	}
	content.ID = id
	return content, nil
}

func (s *contentService) Get(ctx context.Context, userID, contentID int64) (*models.Content, error) {
	content, err := s.contents.GetByIDForUser(ctx, contentID, userID)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, errors.New("content doesn't exist")
	}
	return content, nil
}

func (s *contentService) List(ctx context.Context, userID int64) ([]*models.Content, error) {
	if userID == 0 {
		return nil, errors.New("user id is not valid")
	}
	return s.contents.ListByUserID(ctx, userID)
}
