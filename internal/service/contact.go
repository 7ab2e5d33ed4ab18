package service

import (
	"context"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/google/uuid"
)

type ContactService struct {
	Repo *repo.GormRepo
}

func (s *ContactService) Submit(ctx context.Context, req transport.ContactMessageRequest) (*models.ContactMessage, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)

	if err := validateStruct(req).orNil(); err != nil {
		return nil, err
	}

	m := &models.ContactMessage{Name: req.Name, Email: req.Email, Body: req.Message}
	if err := s.Repo.CreateContactMessage(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *ContactService) Get(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error) {
	m, err := s.Repo.GetContactMessage(ctx, id)
	if err != nil {
		return nil, translate(err, "contact message")
	}
	return m, nil
}

func (s *ContactService) List(ctx context.Context, q transport.ListContactMessagesQuery) ([]models.ContactMessage, util.Meta, error) {
	var processed *bool
	switch strings.ToLower(strings.TrimSpace(q.Processed)) {
	case "":
	case "1", "true":
		v := true
		processed = &v
	case "0", "false":
		v := false
		processed = &v
	default:
		return nil, util.Meta{}, fieldError("processed", "must be 0 or 1")
	}

	offset, limit := util.Calculate(q.Page, q.PerPage)
	total, msgs, err := s.Repo.ListContactMessages(ctx, repo.ContactFilter{
		Processed: processed,
		Query:     q.Q,
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		return nil, util.Meta{}, err
	}
	return msgs, util.NewMeta(q.Page, offset, limit, total), nil
}

// SetProcessed marks a message answered (stamping ProcessedAt) or reopens it.
func (s *ContactService) SetProcessed(ctx context.Context, id uuid.UUID, req transport.SetProcessedRequest) (*models.ContactMessage, error) {
	if err := validateStruct(req).orNil(); err != nil {
		return nil, err
	}

	m, err := s.Repo.GetContactMessage(ctx, id)
	if err != nil {
		return nil, translate(err, "contact message")
	}

	m.Processed = *req.Processed
	m.ProcessedAt = nil
	if m.Processed {
		now := time.Now().UTC()
		m.ProcessedAt = &now
	}
	if err := s.Repo.SaveContactMessage(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *ContactService) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(s.Repo.DeleteContactMessage(ctx, id), "contact message")
}
