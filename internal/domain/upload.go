package domain

import (
	"context"
	"io"
	"time"
)

type UploadStatus string

const (
	UploadStatusPending   UploadStatus = "pending"
	UploadStatusCompleted UploadStatus = "completed"
)

// UploadSession tracks one in-flight chunked upload. The server owns the
// authoritative NextIndex; clients drive chunks strictly in order.
type UploadSession struct {
	ID            string       `json:"id" bson:"id"`
	RegistryID    string       `json:"registry_id" bson:"registry_id"`
	UserID        string       `json:"user_id" bson:"user_id"`
	Filename      string       `json:"filename" bson:"filename"`
	ContentType   string       `json:"content_type" bson:"content_type"`
	TotalSize     int64        `json:"total_size" bson:"total_size"`
	ChunkSize     int64        `json:"chunk_size" bson:"chunk_size"`
	NextIndex     int64        `json:"next_index" bson:"next_index"`
	ReceivedBytes int64        `json:"received_bytes" bson:"received_bytes"`
	Status        UploadStatus `json:"status" bson:"status"`
	StoredPath    string       `json:"stored_path,omitempty" bson:"stored_path"`
	CreatedAt     time.Time    `json:"created_at" bson:"created_at"`
	ExpiresAt     time.Time    `json:"expires_at" bson:"expires_at"`
}

type InitiateUploadParams struct {
	UserID      string
	RegistryID  string
	Filename    string
	ContentType string
	TotalSize   int64
}

type InitiateUploadResult struct {
	UploadID  string `json:"upload_id"`
	ChunkSize int64  `json:"chunk_size"`
}

type AppendChunkParams struct {
	UserID   string
	UploadID string
	Index    int64
	Data     []byte
}

type AppendChunkResult struct {
	Index         int64 `json:"index"`
	ReceivedBytes int64 `json:"received_bytes"`
}

type CompleteUploadResult struct {
	// URL is a path relative to the API origin, e.g.
	// /api/files/registry/<registry id>/<object name>.
	URL string `json:"url"`
}

type UploadSessionRepository interface {
	Insert(ctx context.Context, session *UploadSession) error
	Update(ctx context.Context, session *UploadSession) error
	// AdvanceChunk persists the session's chunk progress only if the stored
	// session still expects fromIndex; a lost race returns
	// ErrChunkOutOfSequence.
	AdvanceChunk(ctx context.Context, session *UploadSession, fromIndex int64) error
	GetByID(ctx context.Context, id string) (*UploadSession, error)
	ListExpired(ctx context.Context, now time.Time) ([]UploadSession, error)
	Delete(ctx context.Context, id string) error
}

// BlobStore persists chunk parts and assembled objects on durable storage.
type BlobStore interface {
	WriteChunk(uploadID string, index int64, data []byte) error
	// Assemble concatenates the session's chunks, in index order, into the
	// object at key and removes the parts.
	Assemble(uploadID string, chunkCount int64, key string) (int64, error)
	Open(key string) (io.ReadSeekCloser, error)
	Discard(uploadID string) error
}

type UploadService interface {
	Initiate(ctx context.Context, params InitiateUploadParams) (*InitiateUploadResult, error)
	AppendChunk(ctx context.Context, params AppendChunkParams) (*AppendChunkResult, error)
	Complete(ctx context.Context, userID, uploadID string) (*CompleteUploadResult, error)
	OpenFile(ctx context.Context, key string) (io.ReadSeekCloser, string, error)
	// CleanupExpired discards the chunk parts of expired pending sessions
	// and deletes their records.
	CleanupExpired(ctx context.Context, now time.Time) (int, error)
}
