package service_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rolodexapp/rolodex-server/internal/service"
	"github.com/rolodexapp/rolodex-server/internal/store/sqlstore"
	"github.com/rolodexapp/rolodex-server/internal/validation"
)

type testServices struct {
	contacts *service.ContactService
	tags     *service.TagService
	store    *sqlstore.Store
}

func setupServices(t *testing.T) *testServices {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	st, err := sqlstore.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	v := validation.New()
	return &testServices{
		contacts: service.NewContactService(st, v, logger),
		tags:     service.NewTagService(st, v, logger),
		store:    st,
	}
}

func ptr(s string) *string { return &s }
