package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presentation-quality-server/internal/domain"
)

func TestOpen(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress logs during testing
	ctx := context.Background()

	t.Run("none", func(t *testing.T) {
		for _, backend := range []string{"", BackendNone} {
			store, err := Open(ctx, domain.HistoryConfig{Backend: backend}, logger)
			require.NoError(t, err)
			assert.Nil(t, store)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "h.db")
		store, err := Open(ctx, domain.HistoryConfig{Backend: BackendSQLite, SQLitePath: path}, logger)
		require.NoError(t, err)
		require.NotNil(t, store)
		defer store.Close()

		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		store, err := Open(ctx, domain.HistoryConfig{Backend: "mongo"}, logger)
		assert.Error(t, err)
		assert.Nil(t, store)
	})
}
