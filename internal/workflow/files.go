package workflow

import (
	"context"
	"fmt"
	"strings"

	"greenhome/db"
	"greenhome/models"
)

// Advisory attachment types. Other values are stored as given.
const (
	FileTypeProject     = "project_file"
	FileTypeContract    = "contract"
	FileTypeAuditReport = "audit_report"
	FileTypeCertificate = "certificate"
	FileTypeOther       = "other"
)

// ListFiles returns the attachments of a request in upload order.
func (s *Service) ListFiles(ctx context.Context, requestID int, userID string) ([]models.FileView, error) {
	if _, err := s.visibleRequest(ctx, requestID, userID); err != nil {
		return nil, err
	}
	files, err := s.store.ListFilesByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	out := make([]models.FileView, 0, len(files))
	for i := range files {
		out = append(out, fileView(&files[i]))
	}
	return out, nil
}

// CreateFile records an uploaded object as an attachment of a request the
// caller can see.
func (s *Service) CreateFile(ctx context.Context, userID string, in models.FileCreate) (*models.FileView, error) {
	if in.RequestID <= 0 {
		return nil, fmt.Errorf("%w: requestId must be positive", ErrValidation)
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.URL) == "" {
		return nil, fmt.Errorf("%w: name and url are required", ErrValidation)
	}
	if _, err := s.visibleRequest(ctx, in.RequestID, userID); err != nil {
		return nil, err
	}
	fileType := in.Type
	if fileType == "" {
		fileType = FileTypeOther
	}
	f := &db.File{
		RequestID: in.RequestID,
		UserID:    userID,
		Name:      in.Name,
		URL:       in.URL,
		Type:      fileType,
	}
	if err := s.store.CreateFile(ctx, f); err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	s.logger.InfoContext(ctx, "file attached", "request_id", f.RequestID, "file_id", f.ID, "type", f.Type)
	view := fileView(f)
	return &view, nil
}

func fileView(f *db.File) models.FileView {
	return models.FileView{
		ID:        f.ID,
		RequestID: f.RequestID,
		UserID:    f.UserID,
		Name:      f.Name,
		URL:       f.URL,
		Type:      f.Type,
		CreatedAt: f.CreatedAt,
	}
}
