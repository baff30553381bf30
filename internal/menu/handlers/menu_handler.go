package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"curryhouse/internal/common/httpx"
	"curryhouse/internal/domain"
	"curryhouse/internal/menu/service"
)

type MenuHandler struct {
	service service.MenuServiceInterface
}

func NewMenuHandler(s service.MenuServiceInterface) *MenuHandler {
	return &MenuHandler{service: s}
}

// GetMenu serves the customer-facing menu for today (or ?day=).
func (h *MenuHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	sections, err := h.service.MenuForDay(r.Context(), r.URL.Query().Get("day"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sections)
}

func (h *MenuHandler) GetAllSections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.service.AllSections(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sections)
}

func (h *MenuHandler) CreateSection(w http.ResponseWriter, r *http.Request) {
	var in domain.SectionInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	id, err := h.service.CreateSection(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *MenuHandler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var in domain.SectionInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.service.UpdateSection(r.Context(), id, in); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id})
}

func (h *MenuHandler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteSection(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MenuHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sectionID, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var in domain.ItemInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	section, err := h.service.AddItem(r.Context(), sectionID, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, section)
}

func (h *MenuHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	sectionID, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathInt(w, r, "itemId")
	if !ok {
		return
	}
	var in domain.ItemInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	section, err := h.service.UpdateItem(r.Context(), sectionID, itemID, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, section)
}

func (h *MenuHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	sectionID, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathInt(w, r, "itemId")
	if !ok {
		return
	}
	section, err := h.service.DeleteItem(r.Context(), sectionID, itemID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, section)
}

func pathInt(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	n, err := strconv.Atoi(mux.Vars(r)[key])
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid "+key)
		return 0, false
	}
	return n, true
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
