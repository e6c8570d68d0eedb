package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/niveshpath/advisory-backend/internal/infra/export"
	"github.com/niveshpath/advisory-backend/internal/usecase"
)

type ExportHandler struct {
	Listing *usecase.ListLeadsUseCase
	Logger  *zap.Logger
}

func NewExportHandler(listing *usecase.ListLeadsUseCase, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{Listing: listing, Logger: logger}
}

const exportLimit = 200

// HandleExport downloads the filtered lead list as a spreadsheet. The same
// query parameters as the list endpoint apply.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	f := listFilterFromQuery(r)
	f.Limit = exportLimit

	page, err := h.Listing.Execute(r.Context(), f)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	filename := "leads-" + time.Now().Format("20060102-150405") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := export.WriteLeadsXLSX(w, page.Items); err != nil {
		h.Logger.Error("lead export failed", zap.Error(err))
	}
}
