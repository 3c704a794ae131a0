package service

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/deck-tracker-api/pkg/errors"
	"github.com/noah-isme/deck-tracker-api/pkg/storage"
)

func newExportServiceForTest(t *testing.T) (*ExportService, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	svc := NewExportService(store, signer, ExportConfig{APIPrefix: "/api/v1/", ResultTTL: time.Hour}, zap.NewNop())
	return svc, store
}

func TestExportServicePublishAndResolve(t *testing.T) {
	svc, store := newExportServiceForTest(t)

	result, err := svc.Publish("abc123", "import errors.csv", []byte("a,error\n1,bad\n"))
	require.NoError(t, err)
	require.Equal(t, "import_errors.csv", result.RelativePath)
	require.Equal(t, "/api/v1/static/"+result.Token, result.URL)

	_, err = os.Stat(store.Path(result.RelativePath))
	require.NoError(t, err)

	file, obj, err := svc.Resolve(result.Token)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck
	body, err := io.ReadAll(file)
	require.NoError(t, err)
	require.Equal(t, "a,error\n1,bad\n", string(body))
	require.Equal(t, "abc123", obj.ID)
}

func TestExportServiceResolveRejectsBadTokens(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	_, _, err := svc.Resolve("not-a-token")
	requireCode(t, err, appErrors.ErrNotFound)

	result, err := svc.Publish("gone", "gone.csv", []byte("x"))
	require.NoError(t, err)
	_, err = svc.Cleanup(-1)
	require.NoError(t, err)
	_, err = svc.Cleanup(time.Nanosecond)
	require.NoError(t, err)
	_, _, err = svc.Resolve(result.Token)
	requireCode(t, err, appErrors.ErrNotFound)
}

func TestSanitizeFilename(t *testing.T) {
	require.Equal(t, "na", sanitizeFilename(""))
	require.Equal(t, "a-b_c.csv", sanitizeFilename("a/b c.csv"))
}
