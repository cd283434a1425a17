package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/zombor/receipt-builder/internal/imagedata"
	"github.com/zombor/receipt-builder/internal/receipt"
	"github.com/zombor/receipt-builder/internal/settings"
)

const (
	maxImageSize  = int64(20 << 20) // 20MB
	maxImportSize = int64(5 << 20)  // 5MB

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var validate = validator.New()

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// writeJSON writes v as a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError writes a JSON error response with CORS headers set
func writeError(w http.ResponseWriter, status int, message string) {
	setCORSHeaders(w)
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// handleGetReceipt returns the live receipt with its totals
func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stores.Editor.Snapshot())
}

// handleReplaceReceipt replaces the live receipt with the request body
func (s *Server) handleReplaceReceipt(w http.ResponseWriter, r *http.Request) {
	var doc receipt.Receipt
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := doc.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.stores.Editor.Replace(doc)
	writeJSON(w, http.StatusOK, s.stores.Editor.Snapshot())
}

// handlePatchReceipt changes the scalar receipt fields present in the request body
func (s *Server) handlePatchReceipt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaxRate      *float64 `json:"taxRate" validate:"omitempty,gte=0"`
		Discount     *float64 `json:"discount" validate:"omitempty,gte=0"`
		DiscountType *string  `json:"discountType" validate:"omitempty,oneof=percentage amount"`
		Notes        *string  `json:"notes"`
		Theme        *string  `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.stores.Editor.Update(func(doc *receipt.Receipt) {
		if req.TaxRate != nil {
			doc.TaxRate = *req.TaxRate
		}
		if req.Discount != nil {
			doc.Discount = *req.Discount
		}
		if req.DiscountType != nil {
			doc.DiscountType = receipt.DiscountType(*req.DiscountType)
		}
		if req.Notes != nil {
			doc.Notes = *req.Notes
		}
		if req.Theme != nil {
			doc.Theme = *req.Theme
		}
	})
	writeJSON(w, http.StatusOK, s.stores.Editor.Snapshot())
}

// handleReset starts a new receipt
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.stores.Editor.Reset()
	writeJSON(w, http.StatusOK, s.stores.Editor.Snapshot())
}

// handleSave saves the live receipt to the saved receipts map
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	id, err := s.stores.Editor.SaveToLocalStorage()
	if err != nil {
		slog.Error("Error saving receipt", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// handleImport replaces the line items from a CSV or XLSX body
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxImportSize)

	var imported bool
	contentType := strings.ToLower(strings.TrimSpace(strings.Split(r.Header.Get("Content-Type"), ";")[0]))
	switch contentType {
	case "text/csv", "text/plain":
		data, err := io.ReadAll(body)
		if err != nil {
			slog.Error("Error reading import body", "error", err)
			writeError(w, http.StatusBadRequest, "File is too large. Maximum size is 5MB.")
			return
		}
		imported = s.stores.Editor.ImportFromCSV(string(data))
	case xlsxContentType:
		imported = s.stores.Editor.ImportFromXLSX(body)
	default:
		writeError(w, http.StatusUnsupportedMediaType, "Import expects text/csv or an .xlsx workbook")
		return
	}

	status := http.StatusOK
	if !imported {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]interface{}{
		"imported": imported,
		"items":    len(s.stores.Editor.Receipt().Items),
	})
}

// handleExport downloads the live receipt as a workbook
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=receipt.xlsx")
	if err := s.stores.Editor.ExportXLSX(w); err != nil {
		slog.Error("Error exporting receipt", "error", err)
		http.Error(w, "Failed to write file", http.StatusInternalServerError)
	}
}

// handleSetPaymentMethod changes the payment method
func (s *Server) handleSetPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentMethod string `json:"paymentMethod" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Payment method required")
		return
	}

	s.stores.Editor.SetPaymentMethod(req.PaymentMethod)
	w.WriteHeader(http.StatusNoContent)
}

// readImage converts the uploaded "file" form field to a data URL. It writes
// the error response and returns false on failure.
func (s *Server) readImage(w http.ResponseWriter, r *http.Request) (string, bool) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "Error parsing form")
		return "", false
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		writeError(w, http.StatusBadRequest, "No file was selected. Please choose an image to upload.")
		return "", false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, "Error reading file. Please try again.")
		return "", false
	}

	url, err := imagedata.ToDataURL(data, header.Header.Get("Content-Type"), s.config.MaxImageWidth)
	if err != nil {
		slog.Error("Error converting image", "filename", header.Filename, "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return url, true
}

// handleSetLogo replaces the shop logo with an uploaded image
func (s *Server) handleSetLogo(w http.ResponseWriter, r *http.Request) {
	url, ok := s.readImage(w, r)
	if !ok {
		return
	}
	s.stores.Editor.SetShopLogo(&url)
	w.WriteHeader(http.StatusNoContent)
}

// handleClearLogo removes the shop logo
func (s *Server) handleClearLogo(w http.ResponseWriter, r *http.Request) {
	s.stores.Editor.SetShopLogo(nil)
	w.WriteHeader(http.StatusNoContent)
}

// handleAddItem appends a line item
func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var in receipt.ItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := s.stores.Editor.AddItem(in)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// handleRemoveItem removes the line item with the given ID
func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	s.stores.Editor.RemoveItem(receipt.ByID(r.PathValue("id")))
	w.WriteHeader(http.StatusNoContent)
}

// handleRemoveItemAt removes the line item at the "index" query parameter
func (s *Server) handleRemoveItemAt(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Item index required")
		return
	}
	s.stores.Editor.RemoveItem(receipt.At(index))
	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateImage replaces a line item image with an uploaded image
func (s *Server) handleUpdateImage(w http.ResponseWriter, r *http.Request) {
	url, ok := s.readImage(w, r)
	if !ok {
		return
	}
	s.stores.Editor.UpdateImage(r.PathValue("id"), &url)
	w.WriteHeader(http.StatusNoContent)
}

// handleClearImage removes a line item image
func (s *Server) handleClearImage(w http.ResponseWriter, r *http.Request) {
	s.stores.Editor.UpdateImage(r.PathValue("id"), nil)
	w.WriteHeader(http.StatusNoContent)
}

// handleListHistory returns the history, newest first
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stores.History.Entries())
}

// handleSaveToHistory adds the live receipt to the history
func (s *Server) handleSaveToHistory(w http.ResponseWriter, r *http.Request) {
	id, err := s.stores.History.SaveReceiptToHistory(s.stores.Editor.Receipt())
	if err != nil {
		slog.Error("Error saving receipt to history", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// handleGetHistoryEntry returns one history entry
func (s *Server) handleGetHistoryEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.stores.History.Entry(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Receipt not found")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// handleLoadFromHistory makes a history entry the live receipt
func (s *Server) handleLoadFromHistory(w http.ResponseWriter, r *http.Request) {
	found, err := s.stores.History.LoadReceiptFromHistory(r.PathValue("id"))
	if err != nil {
		slog.Error("Error loading receipt from history", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Receipt not found")
		return
	}
	writeJSON(w, http.StatusOK, s.stores.Editor.Snapshot())
}

// handleDeleteFromHistory removes a history entry
func (s *Server) handleDeleteFromHistory(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.stores.History.DeleteReceiptFromHistory(r.PathValue("id"))
	if err != nil {
		slog.Error("Error deleting receipt from history", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Receipt not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleClearHistory removes every history entry
func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.stores.History.ClearHistory(); err != nil {
		slog.Error("Error clearing history", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type settingsResponse struct {
	Language       string              `json:"language"`
	Locale         string              `json:"locale"`
	DarkMode       bool                `json:"darkMode"`
	Currency       string              `json:"currency"`
	CurrencySymbol string              `json:"currencySymbol"`
	Languages      []settings.Language `json:"languages"`
	Currencies     []settings.Currency `json:"currencies"`
}

func (s *Server) settingsResponse() settingsResponse {
	st := s.stores.Settings
	return settingsResponse{
		Language:       st.Language(),
		Locale:         s.stores.Locale.Tag().String(),
		DarkMode:       st.DarkMode(),
		Currency:       st.Currency(),
		CurrencySymbol: st.CurrencySymbol(),
		Languages:      settings.Languages,
		Currencies:     settings.Currencies,
	}
}

// handleGetSettings returns the preferences
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.settingsResponse())
}

// handleUpdateSettings changes the preferences present in the request body
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Language *string `json:"language" validate:"omitempty,min=2"`
		DarkMode *bool   `json:"darkMode"`
		Currency *string `json:"currency" validate:"omitempty,len=3,alpha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := s.stores.Settings.Apply(settings.Changes{
		Language: req.Language,
		DarkMode: req.DarkMode,
		Currency: req.Currency,
	})
	switch {
	case errors.Is(err, settings.ErrUnsupportedLanguage), errors.Is(err, settings.ErrUnsupportedCurrency):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("Error updating settings", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, s.settingsResponse())
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := indexTemplate.Execute(w, indexData{
		Lang:      s.stores.Locale.Code(),
		HTMLClass: s.htmlClass,
		Symbol:    s.stores.Settings.CurrencySymbol(),
	})
	if err != nil {
		slog.Error("Error rendering index", "error", err)
	}
}
