package activityrepo

import (
	"testing"

	"github.com/mergington/activities/internal/adapters/contracttest"
	"github.com/mergington/activities/internal/adapters/postgres/testutil"
	activityrepoport "github.com/mergington/activities/internal/ports/out/activityrepo"
)

func TestContract_PostgresActivityRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunActivityRepo(t, func(t *testing.T) (activityrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
