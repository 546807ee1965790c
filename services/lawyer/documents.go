package lawyer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"lexassist/models"
	"lexassist/services/audit"
	"lexassist/services/storage"
	"lexassist/utils"

	"github.com/google/uuid"
)

// UploadDocument stores one verification document in the user's private
// folder. The content type is sniffed from the bytes, not taken from the client.
func (s *DefaultLawyerService) UploadDocument(ctx context.Context, userID, kind, fileName string, r io.Reader) (*models.VerificationDocument, error) {
	if !validKind(kind) {
		return nil, ErrInvalidDocumentKind
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	switch {
	case len(data) == 0:
		return nil, ErrEmptyFile
	case len(data) > MaxDocumentSize:
		return nil, ErrFileTooLarge
	}

	contentType := http.DetectContentType(data)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, ErrUnsupportedType
	}
	if s.Storage == nil {
		return nil, storage.ErrNotConfigured
	}

	stored, err := s.Storage.UploadPrivate(ctx, bytes.NewReader(data), documentFolder(userID), uuid.New().String()+ext)
	if err != nil {
		return nil, err
	}
	name := utils.SanitizeText(fileName, 255)
	if name == "" {
		name = kind + ext
	}
	return &models.VerificationDocument{
		Kind:        kind,
		PublicID:    stored.PublicID,
		FileName:    name,
		ContentType: contentType,
		UploadedAt:  s.now(),
	}, nil
}

// DocumentURL returns a short-lived link to one document of a request.
// Every view is audited.
func (s *DefaultLawyerService) DocumentURL(ctx context.Context, actor audit.Actor, requestID string, index int) (string, error) {
	req, err := s.get(ctx, requestID)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(req.Documents) {
		return "", ErrDocumentNotFound
	}
	if s.Storage == nil {
		return "", storage.ErrNotConfigured
	}
	doc := req.Documents[index]
	link, err := s.Storage.SignedURL(doc.PublicID, DocumentURLTTL)
	if err != nil {
		return "", fmt.Errorf("failed to sign document url: %w", err)
	}
	s.record(ctx, actor.Entry(audit.ActionVerificationViewed, audit.TargetVerification, requestID, map[string]any{
		"index": index,
		"kind":  doc.Kind,
	}))
	return link, nil
}
