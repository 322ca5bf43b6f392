package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/service"
)

type NotificationHandler struct {
	noteSvc service.NotificationService
}

func NewNotificationHandler(noteSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{noteSvc: noteSvc}
}

type notificationPage struct {
	Notifications []domain.Notification `json:"notifications"`
	Total         int32                 `json:"total"`
	Page          int32                 `json:"page"`
}

func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	caller, err := IdentityFromContext(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "pageSize", 20)

	notes, total, err := h.noteSvc.GetNotifications(r.Context(), caller.ID, page, pageSize)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if notes == nil {
		notes = []domain.Notification{}
	}
	if page < 1 {
		page = 1
	}
	respond(w, http.StatusOK, "", notificationPage{Notifications: notes, Total: total, Page: page})
}

func (h *NotificationHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	caller, err := IdentityFromContext(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, r, domain.Validation("invalid notification id"))
		return
	}
	if err := h.noteSvc.MarkAsRead(r.Context(), caller.ID, id); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Notification marked as read", nil)
}

func queryInt32(r *http.Request, key string, def int32) int32 {
	v, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 32)
	if err != nil {
		return def
	}
	return int32(v)
}
