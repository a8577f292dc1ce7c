package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// UploadImage pushes the file to the WhatsApp Graph media endpoint as a
// multipart form (file + type + messaging_product) with bearer auth and
// returns the assigned media id.
func (c *Client) UploadImage(ctx context.Context, path, mimeType string) (string, error) {
	body, contentType, err := buildMultipart(path, func(w *multipart.Writer) error {
		if err := w.WriteField("type", mimeType); err != nil {
			return err
		}
		return w.WriteField("messaging_product", "whatsapp")
	}, mimeType)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.GraphMediaEndpoint, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.opts.AccessToken)

	id, err := c.doUpload(req)
	if err != nil {
		return "", fmt.Errorf("image upload: %w", err)
	}
	return id, nil
}

// UploadVoice pushes the file to the companion API's media upload endpoint
// and returns the media id with the conventional "media_" prefix stripped.
func (c *Client) UploadVoice(ctx context.Context, path, mimeType string) (string, error) {
	body, contentType, err := buildMultipart(path, nil, mimeType)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.MediaUploadEndpoint, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)

	id, err := c.doUpload(req)
	if err != nil {
		return "", fmt.Errorf("voice upload: %w", err)
	}
	return strings.TrimPrefix(id, "media_"), nil
}

func (c *Client) doUpload(req *http.Request) (string, error) {
	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload returned status %d: %s", resp.StatusCode, raw)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("parsing upload response: %w", err)
	}
	return result.ID, nil
}

// buildMultipart assembles a multipart body containing the file part plus
// any extra form fields written by extra.
func buildMultipart(path string, extra func(*multipart.Writer) error, mimeType string) (*bytes.Buffer, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(path)))
	header.Set("Content-Type", mimeType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", err
	}
	if extra != nil {
		if err := extra(w); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}
