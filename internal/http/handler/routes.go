package handler

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"mdrepo/internal/archive"
	"mdrepo/internal/http/middleware"
	"mdrepo/internal/model"
	"mdrepo/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Keep handlers minimal and free of business logic.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.FileService, apiKey string) {
	auth := middleware.APIKey(apiKey)

	// Health endpoint: checks DB connectivity only
	app.Get("/health", HealthCheck(db))
	// Simple liveness probe
	app.Get("/healthz", LivenessProbe())

	// Shared-secret gated API
	app.Post("/upload-file", auth, UploadFile(svc))
	app.Get("/files", auth, ListFiles(svc))
	app.Delete("/files/:id", auth, DeleteFile(svc))

	// Public read surface
	app.Get("/render/*", RenderFile(svc))
	app.Get("/", HomePage(svc))
}

// uploadRequest is the JSON body accepted by POST /upload-file.
type uploadRequest struct {
	Filepath      string     `json:"filepath"`
	ContentBase64 string     `json:"content_base64"`
	Tags          model.Tags `json:"tags,omitempty"`
}

type singleUploadResponse struct {
	Message  string         `json:"message"`
	ID       string         `json:"id"`
	Filename string         `json:"filename"`
	FileType model.FileType `json:"filetype"`
}

type zipUploadResponse struct {
	Message string                `json:"message"`
	Files   []service.FileSummary `json:"files"`
}

type deleteResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// HealthCheck reports whether the database dependency is reachable.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// UploadFile ingests a single file or a zip archive.
//
// @Summary  Upload a file or zip archive
// @Tags     files
// @Accept   json
// @Produce  json
// @Param    request body uploadRequest true "base64 payload"
// @Success  201 {object} singleUploadResponse
// @Failure  400 {object} errorPayload
// @Failure  401 {object} errorPayload
// @Security ApiKeyAuth
// @Router   /upload-file [post]
func UploadFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req uploadRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}
		if req.Filepath == "" || req.ContentBase64 == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "filepath and content_base64 are required")
		}

		res, err := svc.Ingest(c.UserContext(), service.IngestRequest{
			Filepath:      req.Filepath,
			ContentBase64: req.ContentBase64,
			Tags:          req.Tags,
		})
		if err != nil {
			return serviceError(c, err)
		}

		if res.Archive {
			return c.Status(fiber.StatusCreated).JSON(zipUploadResponse{
				Message: "Zip file extracted and files saved to database",
				Files:   res.Files,
			})
		}
		f := res.Files[0]
		return c.Status(fiber.StatusCreated).JSON(singleUploadResponse{
			Message:  "File saved to database",
			ID:       f.ID,
			Filename: f.Filename,
			FileType: f.FileType,
		})
	}
}

// ListFiles returns all stored files, newest first.
//
// @Summary  List stored files
// @Tags     files
// @Produce  json
// @Success  200 {array} model.UploadedFile
// @Failure  401 {object} errorPayload
// @Security ApiKeyAuth
// @Router   /files [get]
func ListFiles(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		files, err := svc.List(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(files)
	}
}

// DeleteFile removes one file by ID.
//
// @Summary  Delete a file by ID
// @Tags     files
// @Produce  json
// @Param    id path string true "file ID"
// @Success  200 {object} deleteResponse
// @Failure  404 {object} errorPayload
// @Security ApiKeyAuth
// @Router   /files/{id} [delete]
func DeleteFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(deleteResponse{Message: "File deleted", ID: id})
	}
}

// RenderFile serves a stored file: templated HTML for markdown, raw bytes
// with a derived mime type for everything else.
//
// @Summary  Render a stored file by name
// @Tags     render
// @Produce  html
// @Param    filename path string true "stored filename"
// @Success  200
// @Failure  404 {object} errorPayload
// @Router   /render/{filename} [get]
func RenderFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// The wildcard arrives percent-decoded already; decoding again would
		// mangle stored names containing literal %XX sequences.
		filename := c.Params("*")
		if filename == "" {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
		}

		payload, err := svc.Render(c.UserContext(), filename)
		if err != nil {
			return serviceError(c, err)
		}
		c.Set(fiber.HeaderContentType, payload.ContentType)
		return c.Send(payload.Body)
	}
}

// HomePage serves the grouped index view. It never errors on an empty
// repository; only a store failure produces a 500.
//
// @Summary  Home page with grouped file listing
// @Tags     render
// @Produce  html
// @Success  200
// @Router   / [get]
func HomePage(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := svc.Home(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return c.Type("html").SendString(page)
	}
}

// serviceError translates service sentinels into the standard error envelope.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
	case errors.Is(err, service.ErrInvalidPayload):
		return writeError(c, fiber.StatusBadRequest, "INVALID_PAYLOAD", "content is not valid base64")
	case errors.Is(err, archive.ErrInvalidArchive):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ARCHIVE", "archive could not be read")
	case errors.Is(err, service.ErrCorruptContent):
		return writeError(c, fiber.StatusInternalServerError, "DATA_CORRUPTION", "stored content is unreadable")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
