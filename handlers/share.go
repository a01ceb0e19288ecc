package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
)

// SharedHandler resolves capability tokens. Resolution involves no identity
// check: holding the token is the entire credential, and it grants read and
// comment access to exactly the one bound PDF.
type SharedHandler struct {
	db     *sql.DB
	shares *ShareLogger
}

func NewSharedHandler(db *sql.DB) *SharedHandler {
	return &SharedHandler{
		db:     db,
		shares: NewShareLogger(),
	}
}

// SharedFile binds one capability token to one PDF
type SharedFile struct {
	ID         int64  `json:"id"`
	PdfID      int64  `json:"pdfId"`
	ShareToken string `json:"shareToken"`
}

// GuestCommentRequest is a comment submitted through a share link; the
// commenter names themselves, there is no session.
type GuestCommentRequest struct {
	Username string `json:"username"`
	Text     string `json:"text"`
}

// createShareToken mints a fresh capability token for the PDF and persists
// it. Every call produces a new, independent token; multiple live links per
// PDF are allowed. A uniqueness violation on the token column is reported as
// a retryable conflict rather than a generic server error.
func createShareToken(db *sql.DB, pdfID int64) (string, *APIError) {
	token := uuid.NewString()

	_, err := db.Exec(`
		INSERT INTO shared_files (pdf_id, share_token, created_at)
		VALUES ($1, $2, NOW())
	`, pdfID, token)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return "", NewAPIError(ErrCodeConflict, "Share token collision, retry the request")
		}
		return "", ErrInternal("Failed to create share link")
	}

	return token, nil
}

// Generate mints a capability token for a PDF owned by the principal and
// returns its access URL.
func (h *SharedHandler) Generate(c echo.Context) error {
	p, err := RequirePrincipal(c)
	if err != nil {
		return err
	}

	pdfID, err := strconv.ParseInt(c.Param("pdfId"), 10, 64)
	if err != nil {
		return RespondError(c, ErrBadRequest("Invalid PDF id"))
	}

	pdf, err := findPdfByID(h.db, pdfID)
	if err == sql.ErrNoRows {
		return RespondError(c, ErrNotFound("PDF"))
	}
	if err != nil {
		return RespondError(c, ErrInternal("Database error"))
	}

	if pdf.UploadedBy != p.Email {
		return RespondError(c, ErrForbidden("You are not authorized to share this PDF"))
	}

	token, apiErr := createShareToken(h.db, pdf.ID)
	if apiErr != nil {
		return RespondError(c, apiErr)
	}
	h.shares.LogIssued(p.Email, pdf.ID, token)

	return c.JSON(http.StatusOK, map[string]string{
		"shareUrl": "/api/shared/access/" + token,
	})
}

// Access resolves a capability token to its PDF's metadata and full comment
// list. An unknown token and a deleted PDF are indistinguishable: both are
// "Share not found".
func (h *SharedHandler) Access(c echo.Context) error {
	token := c.Param("shareToken")

	pdf, err := h.findPdfByToken(token)
	if err == sql.ErrNoRows {
		h.shares.LogResolved(token, 0, false)
		return RespondError(c, ErrNotFound("Share"))
	}
	if err != nil {
		return RespondError(c, ErrInternal("Database error"))
	}
	h.shares.LogResolved(token, pdf.ID, true)

	comments, err := loadComments(h.db, pdf.ID)
	if err != nil {
		return RespondError(c, ErrInternal("Failed to load comments"))
	}

	return c.JSON(http.StatusOK, NewPdfDetailsResponse(pdf, comments))
}

// Download streams the bound PDF to an anonymous caller.
func (h *SharedHandler) Download(c echo.Context) error {
	token := c.Param("shareToken")

	pdf, err := h.findPdfByToken(token)
	if err == sql.ErrNoRows {
		return RespondError(c, ErrNotFound("Share"))
	}
	if err != nil {
		return RespondError(c, ErrInternal("Database error"))
	}

	return inlineStoredFile(c, token, pdf)
}

// View serves the bound PDF inline for in-browser rendering.
func (h *SharedHandler) View(c echo.Context) error {
	token := c.Param("shareToken")

	pdf, err := h.findPdfByToken(token)
	if err == sql.ErrNoRows {
		return RespondError(c, ErrNotFound("Share"))
	}
	if err != nil {
		return RespondError(c, ErrInternal("Database error"))
	}

	return inlineStoredFile(c, token, pdf)
}

// inlineStoredFile streams a resolved PDF from disk. A missing file behind a
// live token is a data-integrity problem, not a bad token.
func inlineStoredFile(c echo.Context, token string, pdf PDFFile) error {
	if _, err := os.Stat(pdf.Filepath); err != nil {
		GetLogger().Error().Err(err).Str("token", token).Str("filepath", pdf.Filepath).
			Msg("stored file missing for live share token")
		return RespondError(c, ErrInternal("File unavailable"))
	}
	return c.Inline(pdf.Filepath, pdf.Filename)
}

// GuestComment appends a comment through a share link. The username comes
// from the request body; no identity is checked.
func (h *SharedHandler) GuestComment(c echo.Context) error {
	token := c.Param("shareToken")

	var req GuestCommentRequest
	if err := c.Bind(&req); err != nil || req.Text == "" {
		return RespondError(c, ErrBadRequest("Comment text is required"))
	}
	if req.Username == "" {
		req.Username = "guest"
	}

	pdf, err := h.findPdfByToken(token)
	if err == sql.ErrNoRows {
		return RespondError(c, ErrNotFound("Share"))
	}
	if err != nil {
		return RespondError(c, ErrInternal("Database error"))
	}

	if _, err := insertComment(h.db, pdf.ID, req.Username, req.Text); err != nil {
		return RespondError(c, ErrInternal("Failed to save comment"))
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Comment added",
	})
}

// findPdfByToken is the resolver's lookup: exact token match joined to the
// bound PDF. sql.ErrNoRows covers both never-issued tokens and PDFs that no
// longer exist.
func (h *SharedHandler) findPdfByToken(token string) (PDFFile, error) {
	var pdf PDFFile
	err := h.db.QueryRow(`
		SELECT p.id, p.filename, p.filepath, p.uploaded_by, p.upload_time
		FROM shared_files s
		JOIN pdf_files p ON p.id = s.pdf_id
		WHERE s.share_token = $1
	`, token).Scan(&pdf.ID, &pdf.Filename, &pdf.Filepath, &pdf.UploadedBy, &pdf.UploadTime)
	return pdf, err
}
