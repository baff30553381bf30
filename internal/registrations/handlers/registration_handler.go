package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"curryhouse/internal/common/httpx"
	"curryhouse/internal/domain"
	"curryhouse/internal/registrations/repository"
)

type RegistrationHandler struct {
	db repository.RegistrationRepositoryInterface
}

func NewRegistrationHandler(db repository.RegistrationRepositoryInterface) *RegistrationHandler {
	return &RegistrationHandler{db: db}
}

func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" {
		httpx.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid email address")
		return
	}

	reg, err := h.db.Create(r.Context(), req.Name, req.Email)
	if errors.Is(err, domain.ErrDuplicate) {
		httpx.Error(w, http.StatusConflict, "this email is already registered")
		return
	}
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "server error")
		return
	}
	httpx.JSON(w, http.StatusCreated, reg)
}

func (h *RegistrationHandler) List(w http.ResponseWriter, r *http.Request) {
	regs, err := h.db.List(r.Context())
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "server error")
		return
	}
	httpx.JSON(w, http.StatusOK, regs)
}
