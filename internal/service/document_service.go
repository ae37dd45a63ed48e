package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gperojohn83-art/Construction/internal/billing"
	"github.com/gperojohn83-art/Construction/internal/ids"
	"github.com/gperojohn83-art/Construction/internal/media/sniffer"
	"github.com/gperojohn83-art/Construction/internal/media/svg"
	"github.com/gperojohn83-art/Construction/internal/models"
	"github.com/gperojohn83-art/Construction/internal/security"
)

var ErrDocumentTampered = errors.New("document signature mismatch")

// ObjectStore is the blob storage behind documents.
type ObjectStore interface {
	Bucket() string
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (int64, error)
	Remove(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key, filename string) (string, time.Time, error)
}

type DocumentService struct {
	documents       DocumentStore
	projects        ProjectStore
	store           ObjectStore
	resolver        *MembershipResolver
	tasks           TaskEnqueuer
	signatureSecret string
	maxUploadBytes  int64
	log             zerolog.Logger
	now             func() time.Time
}

func NewDocumentService(
	documents DocumentStore,
	projects ProjectStore,
	store ObjectStore,
	resolver *MembershipResolver,
	tasks TaskEnqueuer,
	signatureSecret string,
	maxUploadBytes int64,
	log zerolog.Logger,
) *DocumentService {
	return &DocumentService{
		documents:       documents,
		projects:        projects,
		store:           store,
		resolver:        resolver,
		tasks:           tasks,
		signatureSecret: signatureSecret,
		maxUploadBytes:  maxUploadBytes,
		log:             log,
		now:             time.Now,
	}
}

type UploadInput struct {
	ProjectID    string
	Filename     string
	DeclaredType string
	File         io.Reader
}

type DownloadLink struct {
	URL       string
	ExpiresAt time.Time
}

// Upload stores a project document. Viewers cannot upload, the content type
// is taken from the bytes rather than the client, SVG drawings are stripped
// of active content and the plan's storage quota is enforced.
func (s *DocumentService) Upload(ctx context.Context, session models.Session, input UploadInput) (models.Document, error) {
	if input.File == nil {
		return models.Document{}, invalid("file", "file is required")
	}
	name := strings.TrimSpace(path.Base(strings.ReplaceAll(input.Filename, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return models.Document{}, invalid("file", "file name is required")
	}

	membership, err := currentMembership(ctx, s.resolver, session)
	if err != nil {
		return models.Document{}, err
	}
	if hasRole(membership, models.RoleViewer) {
		return models.Document{}, ErrForbidden
	}

	project, err := s.projects.GetByID(ctx, membership.OrganizationID, input.ProjectID)
	if err != nil {
		return models.Document{}, err
	}

	data, err := io.ReadAll(io.LimitReader(input.File, s.maxUploadBytes+1))
	if err != nil {
		return models.Document{}, fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return models.Document{}, invalid("file", "file is empty")
	}
	if int64(len(data)) > s.maxUploadBytes {
		return models.Document{}, invalid("file", "file exceeds %d bytes", s.maxUploadBytes)
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	result, err := sniffer.DetectHead(head, name)
	if err != nil {
		return models.Document{}, invalid("file", "unsupported document type")
	}
	if !sniffer.Compatible(input.DeclaredType, result) {
		return models.Document{}, invalid("file", "content type mismatch: declared %s, actual %s", input.DeclaredType, result.MIME)
	}

	if result.Type == sniffer.TypeSVG {
		clean, err := svg.Sanitize(data)
		if err != nil {
			return models.Document{}, invalid("file", "invalid svg document")
		}
		data = clean
	}

	_, used, err := s.documents.Usage(ctx, membership.OrganizationID)
	if err != nil {
		return models.Document{}, err
	}
	if used+int64(len(data)) > billing.StorageQuota(membership.Plan) {
		return models.Document{}, ErrPlanLimitReached
	}

	documentID := ids.New()
	objectKey := s.buildObjectKey(membership.OrganizationID, project.ID, documentID, string(result.Type))

	size, err := s.store.Put(ctx, objectKey, bytes.NewReader(data), int64(len(data)), result.MIME)
	if err != nil {
		return models.Document{}, err
	}

	sum := sha256.Sum256(data)
	document := models.Document{
		ID:             documentID,
		OrganizationID: membership.OrganizationID,
		ProjectID:      project.ID,
		UploadedBy:     session.UserID,
		Bucket:         s.store.Bucket(),
		ObjectKey:      objectKey,
		Name:           name,
		Format:         string(result.Type),
		SizeBytes:      size,
		Checksum:       sum[:],
		Signature:      security.SignResource(s.signatureSecret, documentID, objectKey),
		CreatedAt:      s.now().UTC(),
	}

	if err := s.documents.Create(ctx, document); err != nil {
		if rmErr := s.store.Remove(ctx, objectKey); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("object_key", objectKey).Msg("remove orphaned object failed")
		}
		return models.Document{}, fmt.Errorf("save metadata: %w", err)
	}

	notifyAdmins(ctx, s.tasks, s.log, membership.OrganizationID, "document.uploaded", "New document", name)

	return document, nil
}

func (s *DocumentService) buildObjectKey(orgID, projectID, documentID, ext string) string {
	datePrefix := s.now().UTC().Format("2006/01")
	return path.Join(orgID, projectID, datePrefix, fmt.Sprintf("%s.%s", documentID, ext))
}

func (s *DocumentService) List(ctx context.Context, session models.Session, projectID string) ([]models.Document, error) {
	if !session.HasOrganization() {
		return nil, ErrNoOrganization
	}
	if _, err := s.projects.GetByID(ctx, session.OrganizationID(), projectID); err != nil {
		return nil, err
	}
	return s.documents.ListByProject(ctx, session.OrganizationID(), projectID)
}

// DownloadURL returns a presigned link after checking the stored signature,
// so a row edited outside the API cannot point at another tenant's object.
func (s *DocumentService) DownloadURL(ctx context.Context, session models.Session, documentID string) (DownloadLink, error) {
	if !session.HasOrganization() {
		return DownloadLink{}, ErrNoOrganization
	}

	document, err := s.documents.GetByID(ctx, session.OrganizationID(), documentID)
	if err != nil {
		return DownloadLink{}, err
	}
	if !security.VerifyResource(s.signatureSecret, document.Signature, document.ID, document.ObjectKey) {
		s.log.Error().Str("document_id", document.ID).Msg("document signature mismatch")
		return DownloadLink{}, ErrDocumentTampered
	}

	url, expiresAt, err := s.store.PresignGet(ctx, document.ObjectKey, document.Name)
	if err != nil {
		return DownloadLink{}, err
	}
	return DownloadLink{URL: url, ExpiresAt: expiresAt}, nil
}
