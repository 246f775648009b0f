package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/aswearingen91/skillcheck/internal/render"
	"github.com/aswearingen91/skillcheck/internal/skills"
	"github.com/aswearingen91/skillcheck/internal/steg"
	"github.com/aswearingen91/skillcheck/internal/store"
)

const maxFormMemory = 32 << 20

type Handler struct {
	codec  *steg.Codec
	store  store.Store
	theme  render.Config
	region steg.Region
	log    *slog.Logger
}

func NewHandler(codec *steg.Codec, st store.Store, theme render.Config, region steg.Region, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{codec: codec, store: st, theme: theme, region: region, log: log}
}

// Register wires every endpoint onto mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/encode", h.EncodeHandler)
	mux.HandleFunc("/decode", h.DecodeHandler)
	mux.HandleFunc("/export", h.ExportHandler)
	mux.HandleFunc("/import", h.ImportHandler)
	mux.HandleFunc("/skills", h.SkillsHandler)
	mux.HandleFunc("GET /images/{id}", h.ImageHandler)
}

// helper: JSON response
func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// statusFor maps codec and storage errors to HTTP status codes.
func statusFor(err error) int {
	var (
		ce *steg.ConfigError
		sm *steg.SizeMismatchError
		ca *steg.CapacityError
		cp *steg.CorruptPayloadError
		ue *store.UploadError
	)
	switch {
	case errors.As(err, &ce), errors.As(err, &sm):
		return http.StatusBadRequest
	case errors.As(err, &ca):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &cp):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &ue):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, what string, err error) {
	code := statusFor(err)
	if code >= 500 {
		h.log.Error(what+" failed", "path", r.URL.Path, "err", err, "codec", steg.IsCodecError(err))
	} else {
		h.log.Info(what+" rejected", "path", r.URL.Path, "status", code, "err", err)
	}
	writeError(w, code, what+" failed: "+err.Error())
}

// regionField reads an optional JSON region from a form field.
func regionField(r *http.Request, name string, def steg.Region) (steg.Region, error) {
	v := r.FormValue(name)
	if v == "" {
		return def, nil
	}
	return steg.ParseRegion([]byte(v))
}

// ------------------------------------------------------------
// EncodeHandler: multipart form: image (file), payload (JSON text),
// region (JSON, optional), compression (optional)
// ------------------------------------------------------------
func (h *Handler) EncodeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeError(w, http.StatusBadRequest, "bad form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image file")
		return
	}
	defer file.Close()

	payload := r.FormValue("payload")
	if payload == "" {
		writeError(w, http.StatusBadRequest, "missing payload")
		return
	}
	if !json.Valid([]byte(payload)) {
		writeError(w, http.StatusBadRequest, "payload is not valid JSON")
		return
	}

	region, err := regionField(r, "region", h.region)
	if err != nil {
		h.fail(w, r, "encode", err)
		return
	}

	codec := h.codec
	if c := r.FormValue("compression"); c != "" {
		comp, err := steg.ParseCompression(c)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		codec = steg.New(steg.WithCompression(comp))
	}

	img, format, err := decodeImage(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not decode image: "+err.Error())
		return
	}

	h.log.Info("encode: received image", "format", format, "name", header.Filename,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())

	st, err := codec.Encode(img, json.RawMessage(payload), region)
	if err != nil {
		h.fail(w, r, "encode", err)
		return
	}
	h.log.Debug("encode: done", "area", st.Area.String(), "bpp", st.Layout.Total(), "bytes", st.PayloadBytes)

	outPNG, err := encodePNG(img)
	if err != nil {
		h.fail(w, r, "encode", err)
		return
	}

	// return as downloadable PNG
	base := strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", base+"_skillcheck.png"))

	if _, err := io.Copy(w, bytes.NewReader(outPNG)); err != nil {
		h.log.Warn("error writing PNG to response", "err", err)
	}
}

// ------------------------------------------------------------
// DecodeHandler: multipart form: image (file), reference (file) or
// background (colour), region / reference_region (JSON, optional)
// ------------------------------------------------------------
func (h *Handler) DecodeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeError(w, http.StatusBadRequest, "bad form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image file")
		return
	}
	defer file.Close()

	carrier, _, err := decodeImage(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not decode image: "+err.Error())
		return
	}

	region, err := regionField(r, "region", h.region)
	if err != nil {
		h.fail(w, r, "decode", err)
		return
	}
	refRegion, err := regionField(r, "reference_region", region)
	if err != nil {
		h.fail(w, r, "decode", err)
		return
	}

	reference, err := h.referenceFor(r, carrier.Bounds().Dx(), carrier.Bounds().Dy())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var payload json.RawMessage
	if err := h.codec.DecodeRegions(carrier, region, reference, refRegion, &payload); err != nil {
		h.fail(w, r, "decode", err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// referenceFor returns the uploaded reference image, or a plain one in the
// given background colour (the theme background by default).
func (h *Handler) referenceFor(r *http.Request, width, height int) (*image.RGBA, error) {
	if file, _, err := r.FormFile("reference"); err == nil {
		defer file.Close()
		ref, _, err := decodeImage(file)
		if err != nil {
			return nil, fmt.Errorf("could not decode reference: %w", err)
		}
		return ref, nil
	}
	bg := r.FormValue("background")
	if bg == "" {
		bg = h.theme.Background
	}
	return render.Reference(width, height, bg)
}

// ------------------------------------------------------------
// ExportHandler: JSON body []SkillCategory -> rendered, encoded, stored
// ------------------------------------------------------------
func (h *Handler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}

	var categories []skills.SkillCategory
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormMemory))
	if err := dec.Decode(&categories); err != nil {
		writeError(w, http.StatusBadRequest, "bad categories: "+err.Error())
		return
	}
	for _, c := range categories {
		for _, s := range c.Skills {
			if s.Rating != nil && !s.Rating.Valid() {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown rating %q for %s/%s", *s.Rating, c.Name, s.Name))
				return
			}
		}
	}

	img, err := render.Draw(skills.FormatResult(categories), h.theme)
	if err != nil {
		h.fail(w, r, "export", err)
		return
	}
	// Ratings go in as indexes to keep the payload small.
	st, err := h.codec.Encode(img, skills.Compact(categories), h.region)
	if err != nil {
		h.fail(w, r, "export", err)
		return
	}

	id, err := h.store.Upload(r.Context(), img)
	if err != nil {
		h.fail(w, r, "export", err)
		return
	}
	h.log.Info("export: stored", "id", id, "categories", len(categories),
		"bpp", st.Layout.Total(), "bytes", st.PayloadBytes)

	writeJSON(w, http.StatusOK, map[string]any{
		"id":    id,
		"url":   h.store.URL(id),
		"stats": st,
	})
}

// ------------------------------------------------------------
// ImportHandler: GET ?id= -> stored image decoded back to categories
// ------------------------------------------------------------
func (h *Handler) ImportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "use GET")
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return
	}

	img, err := h.store.Download(r.Context(), id)
	if err != nil {
		h.fail(w, r, "import", err)
		return
	}
	reference, err := render.Reference(img.Bounds().Dx(), img.Bounds().Dy(), h.theme.Background)
	if err != nil {
		h.fail(w, r, "import", err)
		return
	}

	var compact []skills.CompactCategory
	if err := h.codec.Decode(img, reference, h.region, &compact); err != nil {
		h.fail(w, r, "import", err)
		return
	}
	writeJSON(w, http.StatusOK, skills.Expand(compact))
}

// SkillsHandler returns the unrated catalogue.
func (h *Handler) SkillsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "use GET")
		return
	}
	writeJSON(w, http.StatusOK, skills.Init(skills.BaseSkills()))
}

// ImageHandler serves images kept by the disk store.
func (h *Handler) ImageHandler(w http.ResponseWriter, r *http.Request) {
	disk, ok := h.store.(*store.Disk)
	if !ok {
		writeError(w, http.StatusNotFound, "images are not served by this storage backend")
		return
	}
	p, err := disk.Path(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "image", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, p)
}
