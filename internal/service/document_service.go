package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"podium/internal/model"
	"podium/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// DocumentService manages committee artifacts through their review
// lifecycle. Delegates own what they submit and may edit it only while
// it is still in the sent state; the chair controls state and type at
// any time. Every change fans out on the documents channel and on the
// document's own channel.
type DocumentService struct {
	documentRepo repository.DocumentRepo
	countryRepo  repository.CountryRepo
	committeeSvc *CommitteeService
	broadcaster  Broadcaster
}

// NewDocumentService creates a new document service
func NewDocumentService(documentRepo repository.DocumentRepo, countryRepo repository.CountryRepo, committeeSvc *CommitteeService) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		countryRepo:  countryRepo,
		committeeSvc: committeeSvc,
	}
}

// SetBroadcaster sets the broadcaster for live updates
func (s *DocumentService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Submit files a new document for the caller's country (the chair may
// file for any country). New documents always start in the sent state.
func (s *DocumentService) Submit(ctx context.Context, caller *model.Caller, countryID string, docType model.DocumentType, title, docURL, comments string) (*model.Document, error) {
	committee, err := s.committeeSvc.Resolve(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !caller.IsChair() && !caller.Owns(countryID) {
		return nil, ErrForbidden
	}
	if !model.ValidDocumentType(docType) {
		return nil, fmt.Errorf("%w: unknown document type %q", ErrValidation, docType)
	}
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if err := validateURL(docURL); err != nil {
		return nil, err
	}

	country, err := s.countryRepo.GetByID(ctx, countryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get country: %w", err)
	}
	if country == nil || country.CommitteeID != committee.ID {
		return nil, fmt.Errorf("%w: country %s", ErrNotFound, countryID)
	}

	now := time.Now()
	doc := &model.Document{
		ID:          uuid.New().String(),
		CommitteeID: committee.ID,
		CountryID:   countryID,
		Type:        docType,
		State:       model.DocSent,
		Title:       title,
		URL:         docURL,
		Comments:    comments,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.documentRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	doc.Owner = country
	s.broadcaster.Broadcast(committee.ID, model.ChannelDocuments, model.UpdateEvent{
		Type: model.EventNew,
		Data: doc,
	})
	return doc, nil
}

// Get returns one document
func (s *DocumentService) Get(ctx context.Context, caller *model.Caller, documentID string) (*model.Document, error) {
	committee, err := s.committeeSvc.Resolve(ctx, caller)
	if err != nil {
		return nil, err
	}
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	if doc == nil || doc.CommitteeID != committee.ID {
		return nil, fmt.Errorf("%w: document %s", ErrNotFound, documentID)
	}
	doc.Owner, err = s.countryRepo.GetByID(ctx, doc.CountryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get country: %w", err)
	}
	return doc, nil
}

// List returns the committee's documents, least recently updated first
func (s *DocumentService) List(ctx context.Context, caller *model.Caller) ([]model.Document, error) {
	committee, err := s.committeeSvc.Resolve(ctx, caller)
	if err != nil {
		return nil, err
	}
	docs, err := s.documentRepo.List(ctx, committee.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	for i := range docs {
		docs[i].Owner, err = s.countryRepo.GetByID(ctx, docs[i].CountryID)
		if err != nil {
			return nil, fmt.Errorf("failed to get country: %w", err)
		}
	}
	if docs == nil {
		docs = []model.Document{}
	}
	return docs, nil
}

// Update edits a document. The owning delegate may change title, url
// and comments while the document is still sent; the chair may also
// change state and type, at any time.
func (s *DocumentService) Update(ctx context.Context, caller *model.Caller, documentID string, upd repository.DocumentUpdate) (*model.Document, error) {
	committee, err := s.committeeSvc.Resolve(ctx, caller)
	if err != nil {
		return nil, err
	}
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	if doc == nil || doc.CommitteeID != committee.ID {
		return nil, fmt.Errorf("%w: document %s", ErrNotFound, documentID)
	}

	if !caller.IsChair() {
		if !caller.Owns(doc.CountryID) {
			return nil, ErrForbidden
		}
		if doc.State != model.DocSent {
			return nil, fmt.Errorf("%w: document already reviewed", ErrPrecondition)
		}
		if upd.State != nil || upd.Type != nil {
			return nil, ErrForbidden
		}
	}
	if upd.State != nil && !model.ValidDocumentState(*upd.State) {
		return nil, fmt.Errorf("%w: unknown document state %q", ErrValidation, *upd.State)
	}
	if upd.Type != nil && !model.ValidDocumentType(*upd.Type) {
		return nil, fmt.Errorf("%w: unknown document type %q", ErrValidation, *upd.Type)
	}
	if upd.Title != nil && *upd.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if upd.URL != nil {
		if err := validateURL(*upd.URL); err != nil {
			return nil, err
		}
	}

	updated, err := s.documentRepo.Update(ctx, documentID, upd)
	if err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: document %s", ErrNotFound, documentID)
	}
	updated.Owner, err = s.countryRepo.GetByID(ctx, updated.CountryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get country: %w", err)
	}

	event := model.UpdateEvent{Type: model.EventUpdate, Data: updated}
	s.broadcaster.Broadcast(committee.ID, model.ChannelDocuments, event)
	s.broadcaster.BroadcastDocument(documentID, event)
	return updated, nil
}

// Delete removes a document: the chair at any time, the owning
// delegate only while it is still sent.
func (s *DocumentService) Delete(ctx context.Context, caller *model.Caller, documentID string) error {
	committee, err := s.committeeSvc.Resolve(ctx, caller)
	if err != nil {
		return err
	}
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}
	if doc == nil || doc.CommitteeID != committee.ID {
		return fmt.Errorf("%w: document %s", ErrNotFound, documentID)
	}
	if !caller.IsChair() {
		if !caller.Owns(doc.CountryID) {
			return ErrForbidden
		}
		if doc.State != model.DocSent {
			return fmt.Errorf("%w: document already reviewed", ErrPrecondition)
		}
	}

	if _, err := s.documentRepo.Delete(ctx, documentID); err != nil {
		if err == mongo.ErrNoDocuments {
			return fmt.Errorf("%w: document %s", ErrNotFound, documentID)
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}

	event := model.UpdateEvent{
		Type: model.EventDelete,
		Data: model.Partial{"id": documentID},
	}
	s.broadcaster.Broadcast(committee.ID, model.ChannelDocuments, event)
	s.broadcaster.BroadcastDocument(documentID, event)
	return nil
}

func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("%w: invalid url", ErrValidation)
	}
	return nil
}
