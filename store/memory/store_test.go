package memory_test

import (
	"testing"

	"github.com/xraph/folio/store"
	"github.com/xraph/folio/store/memory"
	"github.com/xraph/folio/store/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(*testing.T) store.Store { return memory.New() })
}
