package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

type PDFHandler struct {
	db      *sql.DB
	store   *FileStore
	baseURL string
	shares  *ShareLogger
}

func NewPDFHandler(db *sql.DB, store *FileStore, baseURL string) *PDFHandler {
	return &PDFHandler{
		db:      db,
		store:   store,
		baseURL: baseURL,
		shares:  NewShareLogger(),
	}
}

// PDFFile represents a stored PDF document
type PDFFile struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	Filepath   string    `json:"-"`
	UploadedBy string    `json:"uploadedBy"` // owner email
	UploadTime time.Time `json:"uploadTime"`
}

// Comment represents a comment on a PDF
type Comment struct {
	ID          int64     `json:"id"`
	PdfID       int64     `json:"pdfId"`
	Username    string    `json:"username"`
	Text        string    `json:"text"`
	CommentTime time.Time `json:"commentTime"`
}

// CommentRequest represents a comment submission
type CommentRequest struct {
	Text string `json:"text"`
}

// Upload stores a PDF from a multipart form and records its metadata with
// the principal as owner.
func (h *PDFHandler) Upload(c echo.Context) error {
	p, err := RequirePrincipal(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return RespondError(c, ErrMissingParameter("file"))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return RespondError(c, ErrBadRequest("Failed to read uploaded file"))
	}
	defer src.Close()

	storedPath, err := h.store.Save(fileHeader.Filename, src)
	if err != nil {
		return RespondError(c, ErrBadRequest(err.Error()))
	}

	var pdfID int64
	err = h.db.QueryRow(`
		INSERT INTO pdf_files (filename, filepath, uploaded_by, upload_time)
		VALUES ($1, $2, $3, NOW())
		RETURNING id
	`, fileHeader.Filename, storedPath, p.Email).Scan(&pdfID)

	if err != nil {
		return RespondError(c, ErrInternal("Failed to save PDF metadata"))
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"id":      pdfID,
		"message": "PDF uploaded successfully",
	})
}

// MyFiles lists the principal's PDFs, newest first.
func (h *PDFHandler) MyFiles(c echo.Context) error {
	p, err := RequirePrincipal(c)
	if err != nil {
		return err
	}

	pdfs, err := h.queryPdfs(`
		SELECT id, filename, filepath, uploaded_by, upload_time
		FROM pdf_files
		WHERE uploaded_by = $1
		ORDER BY upload_time DESC
	`, p.Email)
	if err != nil {
		return RespondError(c, ErrInternal("Failed to list files"))
	}

	return c.JSON(http.StatusOK, NewPDFFileResponses(pdfs))
}

// SearchMyFiles filters the principal's PDFs by filename substring.
func (h *PDFHandler) SearchMyFiles(c echo.Context) error {
	p, err := RequirePrincipal(c)
	if err != nil {
		return err
	}

	query := c.QueryParam("q")
	pdfs, err := h.queryPdfs(`
		SELECT id, filename, filepath, uploaded_by, upload_time
		FROM pdf_files
		WHERE uploaded_by = $1 AND filename ILIKE '%' || $2 || '%'
		ORDER BY upload_time DESC
	`, p.Email, query)
	if err != nil {
		return RespondError(c, ErrInternal("Failed to search files"))
	}

	return c.JSON(http.StatusOK, NewPDFFileResponses(pdfs))
}

// Search is the cross-user filename search. It is a public route; no
// identity is consulted.
func (h *PDFHandler) Search(c echo.Context) error {
	query := c.QueryParam("q")

	pdfs, err := h.queryPdfs(`
		SELECT id, filename, filepath, uploaded_by, upload_time
		FROM pdf_files
		WHERE filename ILIKE '%' || $1 || '%'
		ORDER BY upload_time DESC
	`, query)
	if err != nil {
		return RespondError(c, ErrInternal("Failed to search files"))
	}

	results := make([]PdfSearchResult, 0, len(pdfs))
	for _, pdf := range pdfs {
		results = append(results, PdfSearchResult{
			ID:         pdf.ID,
			Filename:   pdf.Filename,
			UploadedBy: pdf.UploadedBy,
			UploadTime: pdf.UploadTime,
			URL:        "/api/pdf/" + strconv.FormatInt(pdf.ID, 10),
		})
	}

	return c.JSON(http.StatusOK, results)
}

// Details returns a PDF's metadata and full comment list.
func (h *PDFHandler) Details(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return RespondError(c, ErrBadRequest("Invalid PDF id"))
	}

	pdf, err := findPdfByID(h.db, id)
	if err == sql.ErrNoRows {
		return RespondError(c, ErrNotFound("PDF"))
	}
	if err != nil {
		return RespondError(c, ErrInternal("Database error"))
	}

	comments, err := loadComments(h.db, pdf.ID)
	if err != nil {
		return RespondError(c, ErrInternal("Failed to load comments"))
	}

	return c.JSON(http.StatusOK, NewPdfDetailsResponse(pdf, comments))
}

// Download serves a PDF to its owner. A non-owner gets an explicit ownership
// rejection, distinct from being unauthenticated.
func (h *PDFHandler) Download(c echo.Context) error {
	p, err := RequirePrincipal(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return RespondError(c, ErrBadRequest("Invalid PDF id"))
	}

	pdf, err := findPdfByID(h.db, id)
	if err == sql.ErrNoRows {
		return RespondError(c, ErrNotFound("PDF"))
	}
	if err != nil {
		return RespondError(c, ErrInternal("Database error"))
	}

	if pdf.UploadedBy != p.Email {
		return RespondError(c, ErrForbidden("You do not own this file"))
	}

	return c.Inline(pdf.Filepath, pdf.Filename)
}

// AddComment appends an authenticated comment; the commenter is recorded by
// the principal's email.
func (h *PDFHandler) AddComment(c echo.Context) error {
	p, err := RequirePrincipal(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return RespondError(c, ErrBadRequest("Invalid PDF id"))
	}

	var req CommentRequest
	if err := c.Bind(&req); err != nil || req.Text == "" {
		return RespondError(c, ErrBadRequest("Comment text is required"))
	}

	pdf, err := findPdfByID(h.db, id)
	if err == sql.ErrNoRows {
		return RespondError(c, ErrNotFound("PDF"))
	}
	if err != nil {
		return RespondError(c, ErrInternal("Database error"))
	}

	comment, err := insertComment(h.db, pdf.ID, p.Email, req.Text)
	if err != nil {
		return RespondError(c, ErrInternal("Failed to save comment"))
	}

	return c.JSON(http.StatusOK, NewCommentResponse(comment))
}

// SharePdf mints a capability token for a PDF owned by the principal and
// returns an externally reachable link embedding it.
func (h *PDFHandler) SharePdf(c echo.Context) error {
	p, err := RequirePrincipal(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return RespondError(c, ErrBadRequest("Invalid PDF id"))
	}

	pdf, err := findPdfByID(h.db, id)
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
		"shareableLink": h.baseURL + "/share/" + token,
		"shareToken":    token,
	})
}

func (h *PDFHandler) queryPdfs(query string, args ...interface{}) ([]PDFFile, error) {
	rows, err := h.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pdfs := []PDFFile{}
	for rows.Next() {
		var pdf PDFFile
		if err := rows.Scan(&pdf.ID, &pdf.Filename, &pdf.Filepath, &pdf.UploadedBy, &pdf.UploadTime); err != nil {
			return nil, err
		}
		pdfs = append(pdfs, pdf)
	}
	return pdfs, rows.Err()
}

func findPdfByID(db *sql.DB, id int64) (PDFFile, error) {
	var pdf PDFFile
	err := db.QueryRow(`
		SELECT id, filename, filepath, uploaded_by, upload_time
		FROM pdf_files WHERE id = $1
	`, id).Scan(&pdf.ID, &pdf.Filename, &pdf.Filepath, &pdf.UploadedBy, &pdf.UploadTime)
	return pdf, err
}

func loadComments(db *sql.DB, pdfID int64) ([]Comment, error) {
	rows, err := db.Query(`
		SELECT id, pdf_id, username, text, comment_time
		FROM comments
		WHERE pdf_id = $1
		ORDER BY comment_time ASC
	`, pdfID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var cm Comment
		if err := rows.Scan(&cm.ID, &cm.PdfID, &cm.Username, &cm.Text, &cm.CommentTime); err != nil {
			return nil, err
		}
		comments = append(comments, cm)
	}
	return comments, rows.Err()
}

func insertComment(db *sql.DB, pdfID int64, username, text string) (Comment, error) {
	cm := Comment{
		PdfID:    pdfID,
		Username: username,
		Text:     text,
	}
	err := db.QueryRow(`
		INSERT INTO comments (pdf_id, username, text, comment_time)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, comment_time
	`, pdfID, username, text).Scan(&cm.ID, &cm.CommentTime)
	return cm, err
}
