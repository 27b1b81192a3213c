package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/skinsight/DetectService/internal/auth"
	"github.com/skinsight/DetectService/internal/model"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/ginext"
)

func TestHistoryHandler_Ping(t *testing.T) {
	r := gin.New()
	h := NewHistoryHandler(nil, nil)

	r.GET("/ping", func(c *gin.Context) {
		h.SimplePinger((*ginext.Context)(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "pong", body["message"])
}

// asUser - подменяет auth-миддлварь в тестах
func asUser(id int64, next func(*ginext.Context)) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth.SetUser((*ginext.Context)(c), id)
		next((*ginext.Context)(c))
	}
}

func pngBytes(t *testing.T) []byte {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newDetectRequest(t *testing.T, field string, content []byte, cType string) *http.Request {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if field != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="photo.png"`)
		header.Set("Content-Type", cType)
		fw, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/detect", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHistoryHandler_Detect(t *testing.T) {
	tests := []struct {
		name       string
		req        *http.Request
		service    *mockHistoryService
		uploader   *mockUploader
		wantStatus int
	}{
		{
			name: "success",
			req:  newDetectRequest(t, "detectImage", pngBytes(t), model.PNG),
			service: &mockHistoryService{
				recordFn: func(ctx context.Context, userID int64, imageURL string) (*model.HistoryEntry, error) {
					require.Equal(t, int64(42), userID)
					require.Equal(t, "http://storage/bucket/detect/key.png", imageURL)
					return &model.HistoryEntry{
						ID:       7,
						UserID:   userID,
						ImageURL: imageURL,
						Diseases: []model.DiseaseScore{
							{Disease: "Acne", Percentage: 92},
							{Disease: "Eczema", Percentage: 91},
						},
					}, nil
				},
			},
			uploader: &mockUploader{
				uploadFn: func(ctx context.Context, key string, size int64, contentType string, r io.Reader) (string, error) {
					require.Contains(t, key, "detect/")
					require.Equal(t, model.PNG, contentType)
					return "http://storage/bucket/detect/key.png", nil
				},
			},
			wantStatus: 201,
		},
		{
			name:       "missing image",
			req:        newDetectRequest(t, "", nil, ""),
			service:    &mockHistoryService{},
			uploader:   &mockUploader{},
			wantStatus: 400,
		},
		{
			name:       "unsupported content-type",
			req:        newDetectRequest(t, "detectImage", []byte("plain text"), "text/plain"),
			service:    &mockHistoryService{},
			uploader:   &mockUploader{},
			wantStatus: 400,
		},
		{
			name:       "broken image payload",
			req:        newDetectRequest(t, "detectImage", []byte("not-a-png"), model.PNG),
			service:    &mockHistoryService{},
			uploader:   &mockUploader{},
			wantStatus: 400,
		},
		{
			name: "prediction failure",
			req:  newDetectRequest(t, "detectImage", pngBytes(t), model.PNG),
			service: &mockHistoryService{
				recordFn: func(ctx context.Context, userID int64, imageURL string) (*model.HistoryEntry, error) {
					return nil, model.ErrPredictFailed
				},
			},
			uploader: &mockUploader{
				uploadFn: func(ctx context.Context, key string, size int64, contentType string, r io.Reader) (string, error) {
					return "http://storage/bucket/detect/key.png", nil
				},
			},
			wantStatus: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := NewHistoryHandler(tt.service, tt.uploader)

			r.POST("/detect", asUser(42, h.Detect))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, tt.req)

			require.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus == 201 {
				var body struct {
					Message string            `json:"message"`
					Data    model.HistoryView `json:"data"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				require.Equal(t, "Success", body.Message)
				require.Equal(t, int64(7), body.Data.ID)
				// наружу проценты уходят дробью
				require.InDelta(t, 0.92, body.Data.Diseases[0].Percentage, 1e-9)
				require.InDelta(t, 0.91, body.Data.Diseases[1].Percentage, 1e-9)
			}
		})
	}
}

func TestHistoryHandler_Detect_Unauthorized(t *testing.T) {
	r := gin.New()
	h := NewHistoryHandler(&mockHistoryService{}, &mockUploader{})

	// без auth-миддлвари userID в контексте нет
	r.POST("/detect", func(c *gin.Context) {
		h.Detect((*ginext.Context)(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, newDetectRequest(t, "detectImage", pngBytes(t), model.PNG))

	require.Equal(t, 401, w.Code)
}

func TestHistoryHandler_GetAllHistory(t *testing.T) {
	svc := &mockHistoryService{
		listFn: func(ctx context.Context, userID int64) ([]model.HistoryEntry, error) {
			require.Equal(t, int64(42), userID)
			return []model.HistoryEntry{
				{ID: 1, UserID: 42, Diseases: []model.DiseaseScore{{Disease: "Acne", Percentage: 92}}},
				{ID: 2, UserID: 42, Diseases: []model.DiseaseScore{}},
			}, nil
		},
	}

	r := gin.New()
	h := NewHistoryHandler(svc, nil)
	r.GET("/history", asUser(42, h.GetAllHistory))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/history", nil))

	require.Equal(t, 200, w.Code)

	var body struct {
		Message string              `json:"message"`
		Data    []model.HistoryView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	require.InDelta(t, 0.92, body.Data[0].Diseases[0].Percentage, 1e-9)
}

func TestHistoryHandler_GetOneHistory(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		service    *mockHistoryService
		wantStatus int
	}{
		{
			name: "success with symptoms",
			path: "/history/7",
			service: &mockHistoryService{
				getFn: func(ctx context.Context, id, userID int64) (*model.HistoryEntry, error) {
					require.Equal(t, int64(7), id)
					require.Equal(t, int64(42), userID)
					return &model.HistoryEntry{
						ID:     7,
						UserID: 42,
						Diseases: []model.DiseaseScore{
							{Disease: "Acne", Percentage: 92, Symptoms: []string{"Oily skin"}},
						},
					}, nil
				},
			},
			wantStatus: 200,
		},
		{
			name:       "non-numeric id",
			path:       "/history/abc",
			service:    &mockHistoryService{},
			wantStatus: 400,
		},
		{
			name: "not found",
			path: "/history/9000",
			service: &mockHistoryService{
				getFn: func(ctx context.Context, id, userID int64) (*model.HistoryEntry, error) {
					return nil, model.ErrHistoryNotFound
				},
			},
			wantStatus: 404,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := NewHistoryHandler(tt.service, nil)
			r.GET("/history/:historyId", asUser(42, h.GetOneHistory))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus == 200 {
				var body struct {
					Message string            `json:"message"`
					Data    model.HistoryView `json:"data"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				require.Equal(t, []string{"Oily skin"}, body.Data.Diseases[0].Symptoms)
			}
		})
	}
}

func TestHistoryHandler_Delete(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		service    *mockHistoryService
		wantStatus int
	}{
		{
			name: "success",
			path: "/history/7",
			service: &mockHistoryService{
				deleteFn: func(ctx context.Context, id, userID int64) error {
					require.Equal(t, int64(7), id)
					return nil
				},
			},
			wantStatus: 200,
		},
		{
			name:       "non-numeric id",
			path:       "/history/abc",
			service:    &mockHistoryService{},
			wantStatus: 400,
		},
		{
			name: "not found",
			path: "/history/9000",
			service: &mockHistoryService{
				deleteFn: func(ctx context.Context, id, userID int64) error {
					return model.ErrHistoryNotFound
				},
			},
			wantStatus: 404,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := NewHistoryHandler(tt.service, nil)
			r.DELETE("/history/:historyId", asUser(42, h.Delete))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, tt.path, nil))

			require.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus == 200 {
				var body model.Envelope
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				require.Equal(t, "success", body.Message)
				require.Nil(t, body.Data)
			}
		})
	}
}
