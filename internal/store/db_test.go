package store

import (
	"testing"

	"github.com/stacklok/mbean-bridge/database"
)

func TestDBSink(t *testing.T) {
	t.Parallel()

	pool, cleanup := database.SetupTestDB(t)
	t.Cleanup(cleanup)

	exerciseSink(t, NewDBSink(pool))
}
