package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gopayout/internal/adapter/http/dto"
	"github.com/iho/gopayout/internal/domain"
)

// MerchantReader loads merchants.
type MerchantReader interface {
	GetByID(ctx context.Context, id string) (*domain.Merchant, error)
}

// MerchantHandler handles merchant lookups.
type MerchantHandler struct {
	reader MerchantReader
}

// NewMerchantHandler creates a new MerchantHandler.
func NewMerchantHandler(reader MerchantReader) *MerchantHandler {
	return &MerchantHandler{reader: reader}
}

// Get retrieves a merchant by ID.
func (h *MerchantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing merchant ID", "")
		return
	}

	merchant, err := h.reader.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get merchant", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MerchantFromDomain(merchant))
}
