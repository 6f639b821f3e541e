package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/segyhp/payment-tracker/internal/domain"
	customError "github.com/segyhp/payment-tracker/pkg/errors"
	"github.com/segyhp/payment-tracker/pkg/response"
)

// multipartOverhead is allowed on top of the file limit for form boundaries
// and headers.
const multipartOverhead = 1 << 20

// PaymentService is what the payment endpoints need from the service layer.
type PaymentService interface {
	ListPayments(ctx context.Context, q domain.ListQuery) (*domain.ListResult, error)
	GetPayment(ctx context.Context, id string) (*domain.Payment, error)
	CreatePayment(ctx context.Context, req *domain.CreatePaymentRequest) (*domain.Payment, error)
	UpdatePayment(ctx context.Context, id string, req *domain.UpdatePaymentRequest) (*domain.Payment, error)
	DeletePayment(ctx context.Context, id string) (*domain.DeleteResult, error)
	UploadEvidence(ctx context.Context, paymentID string, upload *domain.EvidenceUpload) (*domain.UploadEvidenceResponse, error)
	DownloadEvidence(ctx context.Context, paymentID string) (*domain.Evidence, error)
}

type PaymentHandler struct {
	service       PaymentService
	logger        *zap.Logger
	maxUploadSize int64
}

func NewPaymentHandler(service PaymentService, logger *zap.Logger, maxUploadSize int64) *PaymentHandler {
	return &PaymentHandler{
		service:       service,
		logger:        logger,
		maxUploadSize: maxUploadSize,
	}
}

// RegisterRoutes mounts the payment endpoints on an /api/v1 subrouter.
func (h *PaymentHandler) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/payments", h.ListPayments).Methods(http.MethodGet)
	api.HandleFunc("/payments", h.CreatePayment).Methods(http.MethodPost)
	api.HandleFunc("/payments/{paymentId}", h.GetPayment).Methods(http.MethodGet)
	api.HandleFunc("/payments/{paymentId}", h.UpdatePayment).Methods(http.MethodPut)
	api.HandleFunc("/payments/{paymentId}", h.DeletePayment).Methods(http.MethodDelete)
	api.HandleFunc("/payments/{paymentId}/evidence", h.UploadEvidence).Methods(http.MethodPost)
	api.HandleFunc("/payments/{paymentId}/evidence", h.DownloadEvidence).Methods(http.MethodGet)
}

// ListPayments handles GET /payments
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	page, err := intParam(params.Get("page"))
	if err != nil {
		response.BadRequest(w, customError.ErrCodeInvalidListParams, "page must be a positive integer")
		return
	}
	size, err := intParam(params.Get("size"))
	if err != nil {
		response.BadRequest(w, customError.ErrCodeInvalidListParams, "size must be a positive integer")
		return
	}

	result, err := h.service.ListPayments(r.Context(), domain.ListQuery{
		Status:    params.Get("status"),
		Search:    params.Get("search"),
		SortBy:    params.Get("sort_by"),
		SortOrder: params.Get("sort_order"),
		Page:      page,
		Size:      size,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Success(w, result)
}

// GetPayment handles GET /payments/{paymentId}
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := h.service.GetPayment(r.Context(), mux.Vars(r)["paymentId"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Success(w, payment)
}

// CreatePayment handles POST /payments
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, customError.ErrCodeValidation, err.Error())
		return
	}

	payment, err := h.service.CreatePayment(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Created(w, domain.CreatePaymentResponse{PaymentID: payment.ID})
}

// UpdatePayment handles PUT /payments/{paymentId}
func (h *PaymentHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdatePaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, customError.ErrCodeValidation, err.Error())
		return
	}

	payment, err := h.service.UpdatePayment(r.Context(), mux.Vars(r)["paymentId"], &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Success(w, payment)
}

// DeletePayment handles DELETE /payments/{paymentId}
func (h *PaymentHandler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.DeletePayment(r.Context(), mux.Vars(r)["paymentId"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Success(w, result)
}

// UploadEvidence handles POST /payments/{paymentId}/evidence with a
// multipart "file" field.
func (h *PaymentHandler) UploadEvidence(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.BadRequest(w, customError.ErrCodeFileTooLarge,
				fmt.Sprintf("file exceeds the %d byte limit", h.maxUploadSize))
			return
		}
		response.BadRequest(w, customError.ErrCodeValidation, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		response.BadRequest(w, customError.ErrCodeValidation, "could not read uploaded file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}

	result, err := h.service.UploadEvidence(r.Context(), mux.Vars(r)["paymentId"], &domain.EvidenceUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Content:     content,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Created(w, result)
}

// DownloadEvidence handles GET /payments/{paymentId}/evidence
func (h *PaymentHandler) DownloadEvidence(w http.ResponseWriter, r *http.Request) {
	evidence, err := h.service.DownloadEvidence(r.Context(), mux.Vars(r)["paymentId"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.File(w, evidence.Filename, evidence.ContentType, evidence.Content)
}

// writeError maps the error taxonomy onto HTTP status codes. Only failures
// the caller cannot fix are logged.
func (h *PaymentHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := customError.Code(err)
	message := err.Error()
	var be *customError.BusinessError
	if errors.As(err, &be) {
		message = be.Message
	}

	switch {
	case customError.IsValidation(err):
		response.BadRequest(w, code, message)
	case customError.IsNotFound(err):
		response.NotFound(w, code, message)
	case customError.IsConsistencyFault(err):
		h.logger.Error("consistency fault",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		response.InternalServerError(w, code, message)
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		if code == "" {
			code = customError.ErrCodeDatabaseError
		}
		response.InternalServerError(w, code, "internal server error")
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// intParam returns 0 for an absent parameter so the service applies its
// default. A present value must be a positive integer.
func intParam(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("%d is not positive", n)
	}
	return n, nil
}
