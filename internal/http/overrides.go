package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-localization/internal/overrides"
	"github.com/goliatone/go-localization/internal/validation"
)

type overrideListResponse struct {
	Overrides []*overrides.Override `json:"overrides"`
	Locales   []string              `json:"locales"`
}

type searchResponse struct {
	Results []overrides.SearchResult `json:"results"`
}

type originalValuesResponse struct {
	Key    string            `json:"key"`
	Values map[string]string `json:"values"`
}

type storePayload struct {
	Overrides []overrides.Input `json:"overrides"`
}

type overrideUpdatePayload struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

type overrideDeletePayload struct {
	ID string `json:"id"`
}

func (api *AdminAPI) registerOverrideRoutes(handle func(string, http.HandlerFunc), base string) {
	root := joinPath(base, "overrides")
	handle("GET "+root, api.handleOverrideList)
	handle("GET "+root+"/search", api.handleOverrideSearch)
	handle("GET "+root+"/original-values", api.handleOriginalValues)
	handle("POST "+root+"/store", api.handleOverrideStore)
	handle("POST "+root+"/update", api.handleOverrideUpdate)
	handle("DELETE "+root+"/delete", api.handleOverrideDelete)
}

func (api *AdminAPI) handleOverrideList(w http.ResponseWriter, r *http.Request) {
	if api.overrides == nil {
		writeUnavailable(w)
		return
	}
	records, err := api.overrides.List(r.Context())
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	locales, err := api.overrides.Locales(r.Context())
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	if records == nil {
		records = []*overrides.Override{}
	}
	writeJSON(w, http.StatusOK, overrideListResponse{Overrides: records, Locales: locales})
}

func (api *AdminAPI) handleOverrideSearch(w http.ResponseWriter, r *http.Request) {
	if api.overrides == nil {
		writeUnavailable(w)
		return
	}
	results, err := api.overrides.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	if results == nil {
		results = []overrides.SearchResult{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: results})
}

func (api *AdminAPI) handleOriginalValues(w http.ResponseWriter, r *http.Request) {
	if api.overrides == nil {
		writeUnavailable(w)
		return
	}
	key := strings.TrimSpace(r.URL.Query().Get("key"))
	if key == "" {
		api.writeError(w, r, validation.NewError("key", "cannot be blank"))
		return
	}
	values, err := api.overrides.OriginalValues(r.Context(), key)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, originalValuesResponse{Key: key, Values: values})
}

func (api *AdminAPI) handleOverrideStore(w http.ResponseWriter, r *http.Request) {
	if api.overrides == nil {
		writeUnavailable(w)
		return
	}
	var payload storePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	count, err := api.overrides.Save(r.Context(), payload.Overrides)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Successfully saved %d override(s)", count),
		Count:   count,
	})
}

func (api *AdminAPI) handleOverrideUpdate(w http.ResponseWriter, r *http.Request) {
	if api.overrides == nil {
		writeUnavailable(w)
		return
	}
	var payload overrideUpdatePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	id, err := parseUUID(payload.ID)
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	record, err := api.overrides.Update(r.Context(), id, payload.Value)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Successfully updated", Data: record})
}

func (api *AdminAPI) handleOverrideDelete(w http.ResponseWriter, r *http.Request) {
	if api.overrides == nil {
		writeUnavailable(w)
		return
	}
	rawID := r.URL.Query().Get("id")
	if strings.TrimSpace(rawID) == "" && r.ContentLength != 0 {
		var payload overrideDeletePayload
		if err := decodeJSON(r, &payload); err != nil {
			writeBadRequest(w, "invalid request body")
			return
		}
		rawID = payload.ID
	}
	if strings.TrimSpace(rawID) == "" {
		writeBadRequest(w, "invalid id")
		return
	}
	id, err := parseUUID(rawID)
	if err != nil {
		// no stored override can carry a malformed id
		writeJSON(w, http.StatusOK, messageResponse{Message: "Successfully deleted"})
		return
	}
	if err := api.overrides.Delete(r.Context(), id); err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Successfully deleted"})
}
