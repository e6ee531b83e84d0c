package memory_test

import (
	"testing"

	"github.com/aretw0/hsmgen/pkg/adapters/memory"
	"github.com/aretw0/hsmgen/pkg/ports"
)

func TestMemoryCache_Contract(t *testing.T) {
	cache := memory.NewCache()
	ports.RunModelCacheContract(t, cache)
}
