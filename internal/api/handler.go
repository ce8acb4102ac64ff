package api

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/insightdelivered/statement-extractor/internal/extract"
	"github.com/insightdelivered/statement-extractor/internal/extractor"
	"github.com/insightdelivered/statement-extractor/internal/models"
)

const version = "2.0.0"

// Handler exposes the extraction engine over HTTP.
type Handler struct {
	Engine *extract.Engine
	Log    *zap.SugaredLogger
}

// Register sets up the routes on the fiber app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/extract", h.HandleExtract)
}

// ExtractResponse is the JSON response from POST /api/extract.
type ExtractResponse struct {
	Success     bool       `json:"success"`
	Error       string     `json:"error,omitempty"`
	Institution string     `json:"institution,omitempty"`
	Source      string     `json:"source,omitempty"`
	DocumentID  string     `json:"documentId,omitempty"`
	Items       []ItemView `json:"items"`
	Count       int        `json:"count"`
	Failures    int        `json:"failures"`
}

// ItemView is one extracted item: a transaction, or a block failure.
type ItemView struct {
	Transaction *models.Transaction `json:"transaction,omitempty"`
	Warnings    []string            `json:"warnings,omitempty"`
	Error       string              `json:"error,omitempty"`
	BlockText   string              `json:"blockText,omitempty"`
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": version,
	})
}

// HandleExtract accepts either a raw "text" form value or an uploaded
// "file" (.txt or .pdf) and returns the extracted item sequence.
func (h *Handler) HandleExtract(c *fiber.Ctx) error {
	source, text, err := h.documentText(c)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err)
	}

	doc := extract.NewDocument(source, text)
	cls, err := h.Engine.Classify(doc)
	if err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, err)
	}
	items, err := h.Engine.Extract(doc)
	if err != nil {
		status := fiber.StatusUnprocessableEntity
		if !errors.IsAny(err, extract.ErrUnrecognizedDocument, extract.ErrMissingContext) {
			status = fiber.StatusInternalServerError
		}
		return writeError(c, status, err)
	}

	resp := ExtractResponse{
		Success:     true,
		Institution: cls.Config.Name,
		Source:      doc.Source,
		DocumentID:  doc.ID,
		Items:       make([]ItemView, 0, len(items)),
		Count:       len(items),
	}
	for _, item := range items {
		view := ItemView{
			Transaction: item.Transaction,
			Warnings:    item.Warnings,
		}
		if item.Failed() {
			view.Error = item.Err.Error()
			view.BlockText = item.BlockText
			resp.Failures++
		}
		resp.Items = append(resp.Items, view)
	}

	h.Log.Infow("extract request served",
		"source", doc.Source, "items", resp.Count, "failures", resp.Failures)
	return c.JSON(resp)
}

// documentText resolves the request into (source, plain text). Uploaded
// PDFs go through the text extractor; .txt uploads and the "text" form
// field are used as-is.
func (h *Handler) documentText(c *fiber.Ctx) (string, string, error) {
	if text := c.FormValue("text"); text != "" {
		return "inline", text, nil
	}

	header, err := c.FormFile("file")
	if err != nil {
		return "", "", errors.New(`no input: provide a "file" upload or a "text" form field`)
	}

	f, err := header.Open()
	if err != nil {
		return "", "", errors.Wrap(err, "open upload")
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".txt":
		data, err := io.ReadAll(f)
		if err != nil {
			return "", "", errors.Wrap(err, "read upload")
		}
		return header.Filename, string(data), nil

	case ".pdf":
		tmp, err := os.CreateTemp("", "statement-*.pdf")
		if err != nil {
			return "", "", errors.Wrap(err, "create temp file")
		}
		defer os.Remove(tmp.Name())
		if _, err := io.Copy(tmp, f); err != nil {
			tmp.Close()
			return "", "", errors.Wrap(err, "save upload")
		}
		tmp.Close()

		pages, err := extractor.ExtractText(tmp.Name())
		if err != nil {
			return "", "", err
		}
		return header.Filename, strings.Join(pages, "\n"), nil

	default:
		return "", "", errors.Newf("unsupported file type %q; use .pdf or .txt", filepath.Ext(header.Filename))
	}
}

func writeError(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(ExtractResponse{
		Success: false,
		Error:   err.Error(),
		Items:   []ItemView{},
	})
}
