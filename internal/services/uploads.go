package services

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kshadid/thegiftspace/internal/domain"
)

const uploadSessionTTL = time.Hour

type UploadsService struct {
	sessions   domain.UploadSessionRepository
	registries domain.RegistryRepository
	blobs      domain.BlobStore
	chunkSize  int64
	maxSize    int64
}

type UploadsServiceDependencies struct {
	Sessions   domain.UploadSessionRepository
	Registries domain.RegistryRepository
	Blobs      domain.BlobStore
	ChunkSize  int64
	MaxSize    int64
}

func NewUploadsService(deps UploadsServiceDependencies) domain.UploadService {
	return &UploadsService{
		sessions:   deps.Sessions,
		registries: deps.Registries,
		blobs:      deps.Blobs,
		chunkSize:  deps.ChunkSize,
		maxSize:    deps.MaxSize,
	}
}

// Initiate opens an upload session and tells the client the chunk size to
// use. The session starts expecting chunk index 0.
func (s *UploadsService) Initiate(ctx context.Context, params domain.InitiateUploadParams) (*domain.InitiateUploadResult, error) {
	if params.TotalSize <= 0 {
		return nil, fmt.Errorf("upload size must be positive")
	}
	if params.TotalSize > s.maxSize {
		return nil, domain.ErrFileTooLarge
	}

	registry, err := s.registries.GetByID(ctx, params.RegistryID)
	if err != nil {
		return nil, err
	}
	if !registry.CanEdit(params.UserID) {
		return nil, domain.ErrForbidden
	}
	if registry.Locked {
		return nil, domain.ErrRegistryLocked
	}

	now := time.Now()
	session := &domain.UploadSession{
		ID:          uuid.NewString(),
		RegistryID:  params.RegistryID,
		UserID:      params.UserID,
		Filename:    filepath.Base(params.Filename),
		ContentType: params.ContentType,
		TotalSize:   params.TotalSize,
		ChunkSize:   s.chunkSize,
		Status:      domain.UploadStatusPending,
		CreatedAt:   now,
		ExpiresAt:   now.Add(uploadSessionTTL),
	}

	if err := s.sessions.Insert(ctx, session); err != nil {
		return nil, err
	}

	return &domain.InitiateUploadResult{
		UploadID:  session.ID,
		ChunkSize: session.ChunkSize,
	}, nil
}

// AppendChunk accepts exactly the next chunk in sequence. Every chunk must
// be full sized except the final one, which must carry exactly the
// remaining bytes.
func (s *UploadsService) AppendChunk(ctx context.Context, params domain.AppendChunkParams) (*domain.AppendChunkResult, error) {
	session, err := s.sessions.GetByID(ctx, params.UploadID)
	if err != nil {
		return nil, err
	}

	if session.UserID != params.UserID {
		return nil, domain.ErrForbidden
	}
	if session.Status != domain.UploadStatusPending {
		return nil, domain.ErrUploadNotFound
	}

	if params.Index != session.NextIndex {
		return nil, fmt.Errorf("%w: got %d, expected %d", domain.ErrChunkOutOfSequence, params.Index, session.NextIndex)
	}

	remaining := session.TotalSize - session.ReceivedBytes
	expected := session.ChunkSize
	if remaining < expected {
		expected = remaining
	}
	if int64(len(params.Data)) != expected {
		return nil, fmt.Errorf("%w: got %d bytes, expected %d", domain.ErrChunkSizeMismatch, len(params.Data), expected)
	}

	if err := s.blobs.WriteChunk(session.ID, params.Index, params.Data); err != nil {
		return nil, err
	}

	session.NextIndex++
	session.ReceivedBytes += int64(len(params.Data))

	// Conditional on the stored next_index so a replayed chunk that raced
	// past the check above cannot double count.
	if err := s.sessions.AdvanceChunk(ctx, session, params.Index); err != nil {
		return nil, err
	}

	return &domain.AppendChunkResult{
		Index:         params.Index,
		ReceivedBytes: session.ReceivedBytes,
	}, nil
}

// Complete assembles the received chunks into the final object and returns
// its path relative to the API origin.
func (s *UploadsService) Complete(ctx context.Context, userID, uploadID string) (*domain.CompleteUploadResult, error) {
	session, err := s.sessions.GetByID(ctx, uploadID)
	if err != nil {
		return nil, err
	}

	if session.UserID != userID {
		return nil, domain.ErrForbidden
	}
	if session.Status == domain.UploadStatusCompleted {
		return &domain.CompleteUploadResult{URL: "/api/files/" + session.StoredPath}, nil
	}

	if session.ReceivedBytes != session.TotalSize {
		return nil, fmt.Errorf("%w: received %d of %d bytes", domain.ErrUploadIncomplete, session.ReceivedBytes, session.TotalSize)
	}

	key := path.Join("registry", session.RegistryID, session.ID+extensionFor(session))

	written, err := s.blobs.Assemble(session.ID, session.NextIndex, key)
	if err != nil {
		return nil, err
	}
	if written != session.TotalSize {
		return nil, fmt.Errorf("%w: assembled %d of %d bytes", domain.ErrUploadIncomplete, written, session.TotalSize)
	}

	session.Status = domain.UploadStatusCompleted
	session.StoredPath = key

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}

	log.Debug().
		Str("upload_id", session.ID).
		Str("key", key).
		Int64("size", written).
		Msg("Upload completed")

	return &domain.CompleteUploadResult{URL: "/api/files/" + key}, nil
}

// OpenFile resolves a stored object for serving and reports its content type.
func (s *UploadsService) OpenFile(ctx context.Context, key string) (io.ReadSeekCloser, string, error) {
	reader, err := s.blobs.Open(key)
	if err != nil {
		return nil, "", domain.ErrNotFound
	}

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return reader, contentType, nil
}

// CleanupExpired reclaims abandoned sessions: the chunk parts are discarded
// from the blob store first, then the session record is deleted. A session
// whose parts cannot be removed is kept for the next sweep.
func (s *UploadsService) CleanupExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.sessions.ListExpired(ctx, now)
	if err != nil {
		return 0, err
	}

	cleaned := 0
	for _, session := range expired {
		if err := s.blobs.Discard(session.ID); err != nil {
			log.Warn().Err(err).Str("upload_id", session.ID).Msg("Failed to discard chunk parts")
			continue
		}
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			log.Warn().Err(err).Str("upload_id", session.ID).Msg("Failed to delete expired upload session")
			continue
		}
		cleaned++
	}

	return cleaned, nil
}

func extensionFor(session *domain.UploadSession) string {
	if ext := path.Ext(session.Filename); ext != "" {
		return strings.ToLower(ext)
	}
	if exts, err := mime.ExtensionsByType(session.ContentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
