package handlers

import (
	"time"

	"github.com/samber/lo"
)

// PDFFileResponse is the metadata payload for a stored PDF. The storage path
// stays server-side.
type PDFFileResponse struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	UploadedBy string    `json:"uploadedBy"`
	UploadTime time.Time `json:"uploadTime"`
}

// PdfSearchResult is a cross-user search hit with a link to the document.
type PdfSearchResult struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	UploadedBy string    `json:"uploadedBy"`
	UploadTime time.Time `json:"uploadTime"`
	URL        string    `json:"url"`
}

// CommentResponse is a single comment payload.
type CommentResponse struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Text        string    `json:"text"`
	CommentTime time.Time `json:"commentTime"`
}

// PdfDetailsResponse bundles a PDF with its full comment list.
type PdfDetailsResponse struct {
	ID         int64             `json:"id"`
	Filename   string            `json:"filename"`
	UploadedBy string            `json:"uploadedBy"`
	UploadTime time.Time         `json:"uploadTime"`
	Comments   []CommentResponse `json:"comments"`
}

func NewPDFFileResponse(pdf PDFFile) PDFFileResponse {
	return PDFFileResponse{
		ID:         pdf.ID,
		Filename:   pdf.Filename,
		UploadedBy: pdf.UploadedBy,
		UploadTime: pdf.UploadTime,
	}
}

func NewPDFFileResponses(pdfs []PDFFile) []PDFFileResponse {
	return lo.Map(pdfs, func(pdf PDFFile, _ int) PDFFileResponse {
		return NewPDFFileResponse(pdf)
	})
}

func NewCommentResponse(cm Comment) CommentResponse {
	return CommentResponse{
		ID:          cm.ID,
		Username:    cm.Username,
		Text:        cm.Text,
		CommentTime: cm.CommentTime,
	}
}

func NewPdfDetailsResponse(pdf PDFFile, comments []Comment) PdfDetailsResponse {
	return PdfDetailsResponse{
		ID:         pdf.ID,
		Filename:   pdf.Filename,
		UploadedBy: pdf.UploadedBy,
		UploadTime: pdf.UploadTime,
		Comments: lo.Map(comments, func(cm Comment, _ int) CommentResponse {
			return NewCommentResponse(cm)
		}),
	}
}
