package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/service"
	"rentwear-backend/internal/storage"
	"rentwear-backend/internal/utils"
)

// UploadLimits bounds the inspection images accepted per request.
type UploadLimits struct {
	MaxFiles    int
	MaxFileSize int64
}

type ReturnHandler struct {
	returnSvc service.ReturnService
	limits    UploadLimits
}

func NewReturnHandler(returnSvc service.ReturnService, limits UploadLimits) *ReturnHandler {
	return &ReturnHandler{returnSvc: returnSvc, limits: limits}
}

type scheduleReturnBody struct {
	RentalID        string `json:"rentalId"`
	PickupDate      string `json:"pickupDate"`
	TimeSlot        string `json:"timeSlot"`
	AdditionalNotes string `json:"additionalNotes"`
}

type scheduledReturn struct {
	ReturnID   string          `json:"returnId"`
	PickupDate string          `json:"pickupDate"`
	TimeSlot   domain.TimeSlot `json:"timeSlot"`
}

type updateStatusBody struct {
	Status string `json:"status"`
}

func (h *ReturnHandler) ScheduleReturn(w http.ResponseWriter, r *http.Request) {
	caller, err := IdentityFromContext(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	var body scheduleReturnBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	if strings.TrimSpace(body.RentalID) == "" {
		respondError(w, r, domain.Validation("rentalId is required"))
		return
	}
	pickup, err := utils.ParseDate(body.PickupDate)
	if err != nil {
		respondError(w, r, domain.Validation("pickupDate: %v", err))
		return
	}

	ret, err := h.returnSvc.ScheduleReturn(r.Context(), caller.ID, service.ScheduleReturnRequest{
		RentalID:        body.RentalID,
		PickupDate:      pickup,
		TimeSlot:        body.TimeSlot,
		AdditionalNotes: body.AdditionalNotes,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "Return scheduled successfully", scheduledReturn{
		ReturnID:   ret.ReturnID,
		PickupDate: ret.PickupDate.Format(time.DateOnly),
		TimeSlot:   ret.TimeSlot,
	})
}

func (h *ReturnHandler) ListUserReturns(w http.ResponseWriter, r *http.Request) {
	caller, err := IdentityFromContext(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	returns, err := h.returnSvc.ListUserReturns(r.Context(), caller.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, returns)
}

func (h *ReturnHandler) ListPendingReturns(w http.ResponseWriter, r *http.Request) {
	caller, err := IdentityFromContext(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	returns, err := h.returnSvc.ListPendingReturns(r.Context(), caller.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, returns)
}

func (h *ReturnHandler) ListCompletedReturns(w http.ResponseWriter, r *http.Request) {
	caller, err := IdentityFromContext(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	returns, err := h.returnSvc.ListCompletedReturns(r.Context(), caller.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, returns)
}

func (h *ReturnHandler) GetReturn(w http.ResponseWriter, r *http.Request) {
	caller, err := IdentityFromContext(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	ret, err := h.returnSvc.GetReturn(r.Context(), caller.ID, caller.Role, mux.Vars(r)["returnId"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "", ret)
}

func (h *ReturnHandler) AssignReturn(w http.ResponseWriter, r *http.Request) {
	caller, err := IdentityFromContext(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	ret, err := h.returnSvc.AssignReturn(r.Context(), caller.ID, mux.Vars(r)["returnId"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Return assigned successfully", ret)
}

func (h *ReturnHandler) UpdateReturnStatus(w http.ResponseWriter, r *http.Request) {
	caller, err := IdentityFromContext(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	var body updateStatusBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	ret, err := h.returnSvc.UpdateReturnStatus(r.Context(), caller.ID, mux.Vars(r)["returnId"], body.Status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Return status updated successfully", ret)
}

func (h *ReturnHandler) SubmitInspection(w http.ResponseWriter, r *http.Request) {
	caller, err := IdentityFromContext(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	req, err := h.parseInspection(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	ret, err := h.returnSvc.SubmitInspection(r.Context(), caller.ID, mux.Vars(r)["returnId"], req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Inspection submitted successfully", ret)
}

func (h *ReturnHandler) CompleteReturn(w http.ResponseWriter, r *http.Request) {
	caller, err := IdentityFromContext(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	ret, err := h.returnSvc.CompleteReturn(r.Context(), caller.ID, mux.Vars(r)["returnId"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Return completed successfully", ret)
}

// parseInspection reads the multipart inspection form. Images are sniffed, not
// trusted by their declared type.
func (h *ReturnHandler) parseInspection(w http.ResponseWriter, r *http.Request) (service.InspectionRequest, error) {
	var req service.InspectionRequest

	// One extra megabyte leaves room for the text fields and multipart framing.
	limit := int64(h.limits.MaxFiles)*h.limits.MaxFileSize + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, domain.Validation("upload exceeds %d images of %d MB", h.limits.MaxFiles, h.limits.MaxFileSize>>20)
		}
		return req, domain.Validation("expected a multipart form")
	}
	form := r.MultipartForm
	defer form.RemoveAll()

	req.Condition = r.FormValue("condition")
	req.Comments = r.FormValue("comments")
	for _, raw := range append(form.Value["qualityIssues"], form.Value["qualityIssues[]"]...) {
		req.QualityIssues = append(req.QualityIssues, strings.Split(raw, ",")...)
	}

	files := append(form.File["images"], form.File["images[]"]...)
	if len(files) > h.limits.MaxFiles {
		return req, domain.Validation("at most %d images are allowed", h.limits.MaxFiles)
	}
	for _, fh := range files {
		img, err := h.readImage(fh)
		if err != nil {
			return req, err
		}
		req.Images = append(req.Images, img)
	}
	return req, nil
}

func (h *ReturnHandler) readImage(fh *multipart.FileHeader) (storage.Image, error) {
	if fh.Size > h.limits.MaxFileSize {
		return storage.Image{}, domain.Validation("image %s exceeds %d MB", fh.Filename, h.limits.MaxFileSize>>20)
	}
	f, err := fh.Open()
	if err != nil {
		return storage.Image{}, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.limits.MaxFileSize+1))
	if err != nil {
		return storage.Image{}, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
	}
	if int64(len(data)) > h.limits.MaxFileSize {
		return storage.Image{}, domain.Validation("image %s exceeds %d MB", fh.Filename, h.limits.MaxFileSize>>20)
	}
	contentType, err := storage.DetectImageType(data)
	if err != nil {
		return storage.Image{}, domain.Validation("only image files are allowed: %s", fh.Filename)
	}
	return storage.Image{Filename: fh.Filename, ContentType: contentType, Data: data}, nil
}
