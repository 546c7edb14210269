package mongo_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xraph/folio/id"
	"github.com/xraph/folio/store"
	"github.com/xraph/folio/store/mongo"
	"github.com/xraph/folio/store/storetest"
)

// Set FOLIO_TEST_MONGO_URI to a replica-set deployment to run these tests.
const uriEnv = "FOLIO_TEST_MONGO_URI"

func TestStoreContract(t *testing.T) {
	uri := os.Getenv(uriEnv)
	if uri == "" {
		t.Skipf("%s not set", uriEnv)
	}

	storetest.Run(t, func(t *testing.T) store.Store {
		ctx := context.Background()
		// A fresh database per case keeps the contract cases isolated.
		s, err := mongo.Open(ctx, uri, "folio_test_"+id.NewClientID().String())
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = s.DB().Drop(context.Background())
			_ = s.Close()
		})
		require.NoError(t, s.Migrate(ctx))
		return s
	})
}
