package storage

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"classifieds/internal/domain"
	"classifieds/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	pdfHeader = []byte("%PDF-1.4\n%test")
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(t.TempDir(), "http://cdn.test", jwt.New("secret", time.Hour))
}

func TestDetect(t *testing.T) {
	mimeType, err := Detect(KindPhoto, File{Name: "a.png", Data: pngHeader})
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)

	_, err = Detect(KindPhoto, File{Name: "a.pdf", Data: pdfHeader})
	var upErr *domain.UploadError
	require.ErrorAs(t, err, &upErr)
	assert.True(t, upErr.BadType)

	mimeType, err = Detect(KindDocument, File{Name: "a.pdf", Data: pdfHeader})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", mimeType)

	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 5*mb)...)
	_, err = Detect(KindPhoto, File{Name: "big.png", Data: big})
	require.ErrorAs(t, err, &upErr)
	assert.True(t, upErr.TooLarge)
	assert.ErrorIs(t, err, domain.ErrUpload)

	_, err = Detect(KindPhoto, File{Name: "empty.png"})
	assert.ErrorIs(t, err, domain.ErrUpload)
}

func TestPut_PublicBucketHasURL(t *testing.T) {
	svc := newTestService(t)

	obj, err := svc.Put(context.Background(), BucketListingPhotos, "adv-1/listing-1", KindPhoto, File{Name: "front door.png", Data: pngHeader})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(obj.Path, "adv-1/listing-1/"))
	assert.True(t, strings.HasSuffix(obj.Path, "_front_door.png"))
	assert.Equal(t, "http://cdn.test/api/v1/files/listing-photos/"+obj.Path, obj.URL)

	_, err = os.Stat(svc.baseDir + "/listing-photos/" + obj.Path)
	assert.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), BucketListingPhotos, obj.Path))
	require.NoError(t, svc.Delete(context.Background(), BucketListingPhotos, obj.Path))
}

func TestPut_PrivateBucketHasNoURL(t *testing.T) {
	svc := newTestService(t)

	obj, err := svc.Put(context.Background(), BucketVerificationDocs, "adv-1", KindDocument, File{Name: "id.pdf", Data: pdfHeader})
	require.NoError(t, err)
	assert.Empty(t, obj.URL)
}

func TestResolve_RejectsTraversal(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Upload(context.Background(), BucketListingPhotos, "../../etc/passwd", []byte("x"), "text/plain")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestServe_PrivateRequiresSignedToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestService(t)
	obj, err := svc.Put(context.Background(), BucketVerificationDocs, "adv-1", KindDocument, File{Name: "id.pdf", Data: pdfHeader})
	require.NoError(t, err)

	router := gin.New()
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/files/verification-docs/"+obj.Path, nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	signed, err := svc.SignedURL(BucketVerificationDocs, obj.Path, time.Minute)
	require.NoError(t, err)
	u, err := url.Parse(signed)
	require.NoError(t, err)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, u.RequestURI(), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pdfHeader, w.Body.Bytes())
}

func TestServe_PublicAndMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestService(t)
	obj, err := svc.Put(context.Background(), BucketHighlights, "l-1", KindHighlight, File{Name: "s.png", Data: pngHeader})
	require.NoError(t, err)

	router := gin.New()
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/files/highlights/"+obj.Path, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/files/highlights/l-1/nope.png", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/files/other/x.png", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
