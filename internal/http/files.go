package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-localization/internal/langfiles"
)

const archiveName = "translations.zip"

type updatePayload struct {
	File         string                         `json:"file"`
	Translations map[string]*langfiles.Messages `json:"translations"`
}

func (api *AdminAPI) registerFileRoutes(handle func(string, http.HandlerFunc), base string) {
	handle("GET "+joinPath(base, "view"), api.handleView)
	handle("GET "+joinPath(base, "compare"), api.handleCompare)
	handle("POST "+joinPath(base, "update"), api.handleUpdate)
	handle("GET "+joinPath(base, "download-all"), api.handleDownloadAll)
}

func (api *AdminAPI) handleView(w http.ResponseWriter, r *http.Request) {
	if api.editor == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	index, err := api.editor.Index(r.Context())
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, index)
}

func (api *AdminAPI) handleCompare(w http.ResponseWriter, r *http.Request) {
	if api.editor == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	comparison, err := api.editor.Compare(r.Context(), r.URL.Query().Get("file"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comparison)
}

func (api *AdminAPI) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if api.editor == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	var payload updatePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	file := strings.TrimSpace(payload.File)
	if err := api.editor.ApplyUpdate(r.Context(), file, payload.Translations); err != nil {
		api.writeError(w, r, err)
		return
	}
	api.logger.Info("http.translations.updated", "file", file, "locales", len(payload.Translations))
	writeJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Successfully saved translations for %s", file),
		Count:   len(payload.Translations),
	})
}

func (api *AdminAPI) handleDownloadAll(w http.ResponseWriter, r *http.Request) {
	if api.archiver == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	var buf bytes.Buffer
	if err := api.archiver.Archive(r.Context(), &buf); err != nil {
		api.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+archiveName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
