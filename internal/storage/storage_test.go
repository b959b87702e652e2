package storage

import (
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSaveOpenRoundTrip(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, st.Save("abc/photo-1.jpg", strings.NewReader("jpegdata")))

	rc, err := st.Open("abc/photo-1.jpg")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "jpegdata", string(data))
}

func TestStoreOpenMissing(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = st.Open("abc/nope.jpg")
	assert.ErrorIs(t, err, ErrObjectMissing)
}

func TestStoreRejectsTraversal(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	for _, p := range []string{"..", "../x", "a/../../x", ""} {
		assert.ErrorIs(t, st.Save(p, strings.NewReader("x")), ErrInvalidPath, p)
	}
}

func TestStoreListAndRemoveAll(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, st.Save("p1/a.jpg", strings.NewReader("a")))
	require.NoError(t, st.Save("p1/b.jpg", strings.NewReader("b")))
	require.NoError(t, st.Save("p2/c.jpg", strings.NewReader("c")))

	got, err := st.List("p1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p1/a.jpg", "p1/b.jpg"}, got)

	// prefixo inexistente: vazio, sem erro
	got, err = st.List("p3")
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, st.RemoveAll("p1"))
	got, err = st.List("p1")
	require.NoError(t, err)
	assert.Empty(t, got)

	// p2 intacto
	got, err = st.List("p2")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewURLSigner([]byte("test-secret-test-secret-test-sec"), "http://localhost:8080")

	u, err := signer.SignedURL("p1/photo.jpg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "http://localhost:8080/files?token="))

	parsed, err := url.Parse(u)
	require.NoError(t, err)
	obj, err := signer.Verify(parsed.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, "p1/photo.jpg", obj)
}

func TestSignedURLExpired(t *testing.T) {
	signer := NewURLSigner([]byte("test-secret-test-secret-test-sec"), "http://localhost:8080")
	signer.ttl = -time.Minute

	u, err := signer.SignedURL("p1/photo.jpg")
	require.NoError(t, err)
	parsed, _ := url.Parse(u)

	_, err = signer.Verify(parsed.Query().Get("token"))
	assert.ErrorIs(t, err, ErrBadToken)
}

func TestSignedURLWrongSecret(t *testing.T) {
	a := NewURLSigner([]byte("test-secret-test-secret-test-sec"), "http://localhost:8080")
	b := NewURLSigner([]byte("other-secret-other-secret-other!"), "http://localhost:8080")

	u, err := a.SignedURL("p1/photo.jpg")
	require.NoError(t, err)
	parsed, _ := url.Parse(u)

	_, err = b.Verify(parsed.Query().Get("token"))
	assert.ErrorIs(t, err, ErrBadToken)
}
