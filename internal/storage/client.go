// Package storage — клиент файлового сервиса. Сами байты аватаров и
// логотипов у нас не хранятся, только file_id; загрузка и выдача
// проксируются.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"identity/internal/apperr"
	"identity/internal/logs"
)

// Допустимые типы картинок. Всё остальное отклоняем до похода в сервис.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	maxBytes   int64
	cookieName string
}

func New(baseURL string, timeout time.Duration, maxMB int, cookieName string) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxMB <= 0 {
		maxMB = 5
	}
	if cookieName == "" {
		cookieName = "access_token"
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		maxBytes:   int64(maxMB) << 20,
		cookieName: cookieName,
	}
}

// MaxBytes — предел размера принимаемого файла в байтах.
func (c *Client) MaxBytes() int64 { return c.maxBytes }

// ValidateImage проверяет тип и размер до загрузки.
func (c *Client) ValidateImage(contentType string, size int64) error {
	if !allowedImageTypes[contentType] {
		return apperr.Wrap(apperr.ErrValidation,
			"unsupported image type %q", contentType)
	}
	if size > c.maxBytes {
		return apperr.Wrap(apperr.ErrValidation,
			"file too large: %d bytes, limit %d", size, c.maxBytes)
	}
	return nil
}

// Upload отправляет файл в сервис хранения и возвращает его file_id.
func (c *Client) Upload(ctx context.Context, rawToken, filename, contentType string, content io.Reader) (string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, content); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", pr)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrUpstream, "storage request build: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.forwardCredential(req, rawToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logs.Logger.Errorf("storage unreachable: %v", err)
		return "", apperr.Wrap(apperr.ErrUpstream, "storage unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		logs.Logger.Errorf("storage upload status %d", resp.StatusCode)
		return "", apperr.Wrap(apperr.ErrUpstream, "storage returned status %d", resp.StatusCode)
	}

	var out struct {
		FileID string `json:"file_id"`
		ID     string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperr.Wrap(apperr.ErrUpstream, "storage malformed response")
	}
	switch {
	case out.FileID != "":
		return out.FileID, nil
	case out.ID != "":
		return out.ID, nil
	default:
		return "", apperr.Wrap(apperr.ErrUpstream, "storage response without file id")
	}
}

// Download отдаёт поток файла и его content-type. Закрыть ReadCloser —
// обязанность вызывающего.
func (c *Client) Download(ctx context.Context, rawToken, fileID string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.fileURL(fileID), nil)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.ErrUpstream, "storage request build: %v", err)
	}
	c.forwardCredential(req, rawToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logs.Logger.Errorf("storage unreachable: %v", err)
		return nil, "", apperr.Wrap(apperr.ErrUpstream, "storage unreachable")
	}
	switch resp.StatusCode {
	case http.StatusOK:
		ct := resp.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}
		return resp.Body, ct, nil
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, "", apperr.Wrap(apperr.ErrNotFound, "file %s", fileID)
	default:
		resp.Body.Close()
		logs.Logger.Errorf("storage download status %d", resp.StatusCode)
		return nil, "", apperr.Wrap(apperr.ErrUpstream, "storage returned status %d", resp.StatusCode)
	}
}

// Delete удаляет файл. Отсутствие файла не ошибка: цель — чтобы его
// не стало.
func (c *Client) Delete(ctx context.Context, rawToken, fileID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.fileURL(fileID), nil)
	if err != nil {
		return apperr.Wrap(apperr.ErrUpstream, "storage request build: %v", err)
	}
	c.forwardCredential(req, rawToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logs.Logger.Errorf("storage unreachable: %v", err)
		return apperr.Wrap(apperr.ErrUpstream, "storage unreachable")
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		logs.Logger.Errorf("storage delete status %d", resp.StatusCode)
		return apperr.Wrap(apperr.ErrUpstream, "storage returned status %d", resp.StatusCode)
	}
}

func (c *Client) fileURL(fileID string) string {
	return fmt.Sprintf("%s/files/%s", c.baseURL, url.PathEscape(fileID))
}

func (c *Client) forwardCredential(req *http.Request, rawToken string) {
	if rawToken != "" {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: rawToken})
	}
}
