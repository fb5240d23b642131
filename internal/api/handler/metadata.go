package handler

import (
	"net/http"

	"github.com/riverwatch/riverwatch/internal/api/models"
	"github.com/riverwatch/riverwatch/internal/api/response"
	"github.com/riverwatch/riverwatch/internal/hydrology"
)

// MetadataHandler serves the lookup lists used to build station searches.
type MetadataHandler struct {
	monitor *hydrology.Monitor
}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler(monitor *hydrology.Monitor) *MetadataHandler {
	return &MetadataHandler{monitor: monitor}
}

// ListMeasureKinds handles GET /v1/metadata/measures.
func (h *MetadataHandler) ListMeasureKinds(w http.ResponseWriter, r *http.Request) {
	kinds := hydrology.AllMeasureKinds()
	out := models.MeasureKinds{Items: make([]models.MeasureKindInfo, 0, len(kinds))}
	for _, k := range kinds {
		out.Items = append(out.Items, models.MeasureKindInfo{
			Name:      k.String(),
			Parameter: k.Parameter(),
			Qualifier: k.Qualifier(),
		})
	}
	response.JSON(w, r, http.StatusOK, out)
}

// ListRivers handles GET /v1/metadata/rivers.
func (h *MetadataHandler) ListRivers(w http.ResponseWriter, r *http.Request) {
	if !requireSession(w, r, h.monitor) {
		return
	}
	response.JSON(w, r, http.StatusOK, nameList(h.monitor.Rivers()))
}

// ListTowns handles GET /v1/metadata/towns?river=.
func (h *MetadataHandler) ListTowns(w http.ResponseWriter, r *http.Request) {
	if !requireSession(w, r, h.monitor) {
		return
	}
	river := r.URL.Query().Get("river")
	response.JSON(w, r, http.StatusOK, nameList(h.monitor.Towns(river)))
}

// ListLabels handles GET /v1/metadata/labels?river=&town=.
func (h *MetadataHandler) ListLabels(w http.ResponseWriter, r *http.Request) {
	if !requireSession(w, r, h.monitor) {
		return
	}
	q := r.URL.Query()
	response.JSON(w, r, http.StatusOK, nameList(h.monitor.Labels(q.Get("river"), q.Get("town"))))
}

func nameList(names []string) models.NameList {
	if names == nil {
		names = []string{}
	}
	return models.NameList{Count: len(names), Items: names}
}
