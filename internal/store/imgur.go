package store

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/aswearingen91/skillcheck/internal/steg"
)

// Imgur talks to the Imgur v3 API anonymously with a client ID.
type Imgur struct {
	ClientID string
	APIBase  string // https://api.imgur.com
	ImageURL string // https://i.imgur.com
	Client   *http.Client
}

// NewImgur returns a client for the public Imgur endpoints.
func NewImgur(clientID string) *Imgur {
	return &Imgur{
		ClientID: clientID,
		APIBase:  "https://api.imgur.com",
		ImageURL: "https://i.imgur.com",
		Client:   http.DefaultClient,
	}
}

const maxImageBytes = 20 << 20

func (s *Imgur) Upload(ctx context.Context, img *image.RGBA) (string, error) {
	var raw bytes.Buffer
	if err := png.Encode(&raw, img); err != nil {
		return "", fmt.Errorf("store: encode png: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("type", "base64")
	_ = mw.WriteField("image", base64.StdEncoding.EncodeToString(raw.Bytes()))
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("store: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.APIBase+"/3/image", &body)
	if err != nil {
		return "", fmt.Errorf("store: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+s.ClientID)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", &UploadError{Op: "upload", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &UploadError{Op: "upload", Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &UploadError{Op: "upload", Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &out); err != nil || out.Data.ID == "" {
		return "", &UploadError{Op: "upload", Status: resp.StatusCode, Body: "response without image id"}
	}
	return out.Data.ID, nil
}

func (s *Imgur) Download(ctx context.Context, id string) (*image.RGBA, error) {
	if id == "" || strings.ContainsAny(id, "/?#.") {
		return nil, ErrNotFound
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(id), nil)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, &UploadError{Op: "download", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &UploadError{Op: "download", Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	img, err := png.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, &UploadError{Op: "download", Status: resp.StatusCode, Err: fmt.Errorf("decode png: %w", err)}
	}
	return steg.ToRGBA(img), nil
}

func (s *Imgur) URL(id string) string {
	return s.ImageURL + "/" + id + ".png"
}
