package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"identity/internal/apperr"
)

func newTestClient(srv *httptest.Server) *Client {
	return New(srv.URL, 2*time.Second, 5, "access_token")
}

func TestValidateImage(t *testing.T) {
	c := New("http://storage", time.Second, 5, "access_token")

	assert.NoError(t, c.ValidateImage("image/png", 1024))
	assert.NoError(t, c.ValidateImage("image/webp", 1024))

	err := c.ValidateImage("application/pdf", 1024)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	err = c.ValidateImage("image/png", c.MaxBytes()+1)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUploadReturnsFileID(t *testing.T) {
	for name, body := range map[string]string{
		"file_id key": `{"file_id": "f-42"}`,
		"id key":      `{"id": "f-42"}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, r.ParseMultipartForm(1<<20))
				f, hdr, err := r.FormFile("file")
				require.NoError(t, err)
				defer f.Close()
				content, _ := io.ReadAll(f)
				assert.Equal(t, "avatar.png", hdr.Filename)
				assert.Equal(t, "png-bytes", string(content))

				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			fileID, err := newTestClient(srv).Upload(context.Background(),
				"tok", "avatar.png", "image/png", strings.NewReader("png-bytes"))
			require.NoError(t, err)
			assert.Equal(t, "f-42", fileID)
		})
	}
}

func TestUploadUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Upload(context.Background(),
		"tok", "a.png", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, apperr.ErrUpstream)
}

func TestDownloadStreamsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/f-1", r.URL.Path)
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	body, contentType, err := newTestClient(srv).Download(context.Background(), "tok", "f-1")
	require.NoError(t, err)
	defer body.Close()

	assert.Equal(t, "image/jpeg", contentType)
	got, _ := io.ReadAll(body)
	assert.Equal(t, "jpeg-bytes", string(got))
}

func TestDownloadMissingFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, _, err := newTestClient(srv).Download(context.Background(), "tok", "ghost")
	assert.True(t, apperr.IsNotFound(err))
}

func TestDeleteToleratesMissingFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	assert.NoError(t, newTestClient(srv).Delete(context.Background(), "tok", "ghost"))
}

func TestDeleteUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	err := newTestClient(srv).Delete(context.Background(), "tok", "f-1")
	assert.ErrorIs(t, err, apperr.ErrUpstream)
}
