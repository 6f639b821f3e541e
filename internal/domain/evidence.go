package domain

import "time"

// Accepted evidence content types
const (
	ContentTypePDF  = "application/pdf"
	ContentTypePNG  = "image/png"
	ContentTypeJPEG = "image/jpeg"
)

// AllowedEvidenceType reports whether a declared content type may be uploaded.
func AllowedEvidenceType(contentType string) bool {
	switch contentType {
	case ContentTypePDF, ContentTypePNG, ContentTypeJPEG:
		return true
	}
	return false
}

// Evidence is an uploaded file proving a payment was completed.
// PaymentID is a back-reference only; deleting evidence never touches the payment.
type Evidence struct {
	ID          string    `json:"id" db:"id"`
	PaymentID   string    `json:"payment_id" db:"payment_id"`
	Filename    string    `json:"filename" db:"filename"`
	ContentType string    `json:"content_type" db:"content_type"`
	Size        int64     `json:"size" db:"size"`
	Content     []byte    `json:"-" db:"content"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// EvidenceUpload is a file handed to uploadEvidence.
type EvidenceUpload struct {
	Filename    string
	ContentType string
	Content     []byte
}

type UploadEvidenceResponse struct {
	EvidenceID string `json:"evidence_id"`
	PaymentID  string `json:"payment_id"`
	Status     string `json:"payee_payment_status"`
}
