package logger

import (
	"context"
	"sort"
	"sync"
)

var (
	registryMu         sync.RWMutex
	contextKeyRegistry = make(map[any]string)
)

// RegisterContextKey makes the *Ctx log methods emit ctx.Value(ctxKey) as logField.
func RegisterContextKey(ctxKey any, logField string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	contextKeyRegistry[ctxKey] = logField
}

func UnregisterContextKey(ctxKey any) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(contextKeyRegistry, ctxKey)
}

// withContext returns the registered fields present in ctx as key/value
// pairs, ordered by field name.
func withContext(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	registryMu.RLock()
	type pair struct {
		field string
		val   any
	}
	pairs := make([]pair, 0, len(contextKeyRegistry))
	for key, field := range contextKeyRegistry {
		if val := ctx.Value(key); val != nil {
			pairs = append(pairs, pair{field, val})
		}
	}
	registryMu.RUnlock()

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].field < pairs[j].field })
	fields := make([]any, 0, len(pairs)*2)
	for _, p := range pairs {
		fields = append(fields, p.field, p.val)
	}
	return fields
}
