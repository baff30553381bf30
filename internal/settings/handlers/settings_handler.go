package handlers

import (
	"errors"
	"net/http"

	"curryhouse/internal/common/httpx"
	"curryhouse/internal/domain"
	"curryhouse/internal/settings/service"
)

type SettingsHandler struct {
	service service.SettingsServiceInterface
}

func NewSettingsHandler(s service.SettingsServiceInterface) *SettingsHandler {
	return &SettingsHandler{service: s}
}

func (h *SettingsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Latest(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

func (h *SettingsHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, all)
}

func (h *SettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var in domain.SettingsInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	st, err := h.service.Save(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, st)
}

func (h *SettingsHandler) GetPrinter(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Printer(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *SettingsHandler) SavePrinter(w http.ResponseWriter, r *http.Request) {
	var in domain.PrinterInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p, err := h.service.SavePrinter(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalid):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	default:
		httpx.Error(w, http.StatusInternalServerError, "server error")
	}
}
