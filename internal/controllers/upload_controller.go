package controllers

import (
	"io"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/kshadid/thegiftspace/internal/domain"
	"github.com/kshadid/thegiftspace/internal/middlewares"
)

type UploadController struct {
	uploadService domain.UploadService
}

type UploadControllerDependencies struct {
	UploadService domain.UploadService
}

func NewUploadController(deps UploadControllerDependencies) *UploadController {
	return &UploadController{
		uploadService: deps.UploadService,
	}
}

type initiateUploadRequest struct {
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
	Mime       string `json:"mime"`
	RegistryID string `json:"registry_id"`
}

// Initiate opens a chunked upload session.
func (c *UploadController) Initiate(ctx fiber.Ctx) error {
	user := middlewares.CurrentUser(ctx)

	var req initiateUploadRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	result, err := c.uploadService.Initiate(ctx.Context(), domain.InitiateUploadParams{
		UserID:      user.ID,
		RegistryID:  req.RegistryID,
		Filename:    req.Filename,
		ContentType: req.Mime,
		TotalSize:   req.Size,
	})
	if err != nil {
		switch err {
		case domain.ErrNotFound, domain.ErrForbidden, domain.ErrRegistryLocked, domain.ErrFileTooLarge:
			return toHTTPError(err)
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return ctx.Status(fiber.StatusCreated).JSON(result)
}

// Chunk accepts one multipart chunk. Chunks must arrive strictly in order;
// an out-of-sequence index is rejected and the client restarts the upload.
func (c *UploadController) Chunk(ctx fiber.Ctx) error {
	user := middlewares.CurrentUser(ctx)

	uploadID := ctx.FormValue("upload_id")
	if uploadID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "upload_id is required")
	}

	index, err := strconv.ParseInt(ctx.FormValue("index"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "index must be an integer")
	}

	fileHeader, err := ctx.FormFile("chunk")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "chunk file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Failed to open chunk")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Failed to read chunk")
	}

	result, err := c.uploadService.AppendChunk(ctx.Context(), domain.AppendChunkParams{
		UserID:   user.ID,
		UploadID: uploadID,
		Index:    index,
		Data:     data,
	})
	if err != nil {
		log.Debug().Err(err).Str("upload_id", uploadID).Int64("index", index).Msg("Chunk rejected")
		return toHTTPError(err)
	}

	return ctx.JSON(result)
}

type completeUploadRequest struct {
	UploadID string `json:"upload_id"`
}

// Complete assembles the chunks and returns the stored object's relative URL.
func (c *UploadController) Complete(ctx fiber.Ctx) error {
	user := middlewares.CurrentUser(ctx)

	var req completeUploadRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	result, err := c.uploadService.Complete(ctx.Context(), user.ID, req.UploadID)
	if err != nil {
		return toHTTPError(err)
	}

	return ctx.JSON(result)
}

// ServeFile streams an assembled object. Public, so guest pages can load
// hero and fund images.
func (c *UploadController) ServeFile(ctx fiber.Ctx) error {
	key := ctx.Params("*")
	if key == "" {
		return fiber.NewError(fiber.StatusNotFound, "File not found")
	}

	reader, contentType, err := c.uploadService.OpenFile(ctx.Context(), key)
	if err != nil {
		return toHTTPError(err)
	}

	ctx.Set(fiber.HeaderContentType, contentType)

	return ctx.SendStream(reader)
}
