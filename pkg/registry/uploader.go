package registry

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/kshadid/thegiftspace/pkg/clients/giftspace"
)

// UploadAPI is the slice of the giftspace client the upload pipeline needs.
// Satisfied by *giftspace.Client.
type UploadAPI interface {
	InitiateUpload(ctx context.Context, req *giftspace.InitiateUploadRequest) (*giftspace.InitiateUploadResponse, error)
	UploadChunk(ctx context.Context, uploadID string, index int64, chunk []byte) (*giftspace.UploadChunkResponse, error)
	CompleteUpload(ctx context.Context, uploadID string) (*giftspace.CompleteUploadResponse, error)
}

// ProgressFunc receives a whole percentage after each acknowledged chunk.
// The sequence is non-decreasing and ends at exactly 100.
type ProgressFunc func(percent int)

// UploadInput describes the file to move to remote storage. Size and Mime
// must be known up front; the remote side sizes chunks from them.
type UploadInput struct {
	Name       string
	Mime       string
	Size       int64
	RegistryID string
	Content    io.Reader
}

// UploadResult carries the relative stored path. Callers prefix it with the
// backend origin (AbsoluteURL) before using it as an image URL.
type UploadResult struct {
	UploadID string
	URL      string
}

// Uploader drives the chunked upload pipeline: initiate, strictly sequential
// chunk sends, complete. There is no retry and no resume; any failure aborts
// the session and a fresh upload must restart from initiation.
type Uploader struct {
	api UploadAPI
}

func NewUploader(api UploadAPI) *Uploader {
	return &Uploader{api: api}
}

// Upload moves the input to remote storage. Each chunk send is awaited
// before the next is issued, so chunk ordering is trivially sequential and
// the remote side never sees a partial-reassembly race.
func (u *Uploader) Upload(ctx context.Context, input UploadInput, progress ProgressFunc) (*UploadResult, error) {
	if input.Size < 0 {
		return nil, fmt.Errorf("upload size must be known")
	}

	session, err := u.api.InitiateUpload(ctx, &giftspace.InitiateUploadRequest{
		Filename:   input.Name,
		Size:       input.Size,
		Mime:       input.Mime,
		RegistryID: input.RegistryID,
	})
	if err != nil {
		return nil, &SessionInitError{Err: err}
	}

	chunkSize := session.ChunkSize
	if chunkSize <= 0 {
		return nil, &SessionInitError{Err: fmt.Errorf("remote returned invalid chunk size %d", chunkSize)}
	}

	var uploaded int64
	var index int64

	buf := make([]byte, chunkSize)

	for start := int64(0); start < input.Size; start += chunkSize {
		end := start + chunkSize
		if end > input.Size {
			end = input.Size
		}
		chunk := buf[:end-start]

		if _, err := io.ReadFull(input.Content, chunk); err != nil {
			return nil, fmt.Errorf("failed to read chunk %d: %w", index, err)
		}

		if _, err := u.api.UploadChunk(ctx, session.UploadID, index, chunk); err != nil {
			if apiErr, ok := giftspace.AsAPIError(err); ok && apiErr.IsClientError() {
				return nil, &ChunkSequenceError{Index: index, Err: err}
			}
			return nil, fmt.Errorf("failed to send chunk %d: %w", index, err)
		}

		uploaded = end
		index++

		if progress != nil {
			progress(int(math.Round(float64(uploaded) / float64(input.Size) * 100)))
		}
	}

	done, err := u.api.CompleteUpload(ctx, session.UploadID)
	if err != nil {
		if apiErr, ok := giftspace.AsAPIError(err); ok && apiErr.IsClientError() {
			return nil, &IncompleteUploadError{Err: err}
		}
		return nil, fmt.Errorf("failed to complete upload: %w", err)
	}

	return &UploadResult{
		UploadID: session.UploadID,
		URL:      done.URL,
	}, nil
}

// AbsoluteURL joins the backend origin with a relative stored path. The
// pipeline returns relative paths; this concatenation is the caller's
// explicit step.
func AbsoluteURL(baseURL, relativePath string) string {
	return strings.TrimRight(baseURL, "/") + relativePath
}
