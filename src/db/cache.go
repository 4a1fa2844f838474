package db

import (
	"log"
	"sync"

	"github.com/dgraph-io/ristretto"
)

// Storing cache keys in concurrent data structures to allow for clearing all caches of a certain type
// If you're reading this and you know a better way to do this, please let me know!
var (
	Cache           *ristretto.Cache
	BudgetCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
	CategoryCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
	StatisticsCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
)

func InitCache() {
	var err error
	Cache, err = ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		log.Fatalf("failed to initialize cache: %v", err)
	}
}

// Budget Cache Functions
func SetBudgetCache(cacheKey string, value interface{}) {
	BudgetCacheKeys.Lock()
	BudgetCacheKeys.m[cacheKey] = struct{}{}
	BudgetCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func DelBudgetCache(cacheKey string) {
	BudgetCacheKeys.Lock()
	delete(BudgetCacheKeys.m, cacheKey)
	BudgetCacheKeys.Unlock()
	Cache.Del(cacheKey)
}

func ClearAllBudgetCaches() {
	BudgetCacheKeys.Lock()
	for key := range BudgetCacheKeys.m {
		Cache.Del(key)
	}
	BudgetCacheKeys.m = make(map[string]struct{})
	BudgetCacheKeys.Unlock()
}

// Category Cache Functions
func SetCategoryCache(cacheKey string, value interface{}) {
	CategoryCacheKeys.Lock()
	CategoryCacheKeys.m[cacheKey] = struct{}{}
	CategoryCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func DelCategoryCache(cacheKey string) {
	CategoryCacheKeys.Lock()
	delete(CategoryCacheKeys.m, cacheKey)
	CategoryCacheKeys.Unlock()
	Cache.Del(cacheKey)
}

func ClearAllCategoryCaches() {
	CategoryCacheKeys.Lock()
	for key := range CategoryCacheKeys.m {
		Cache.Del(key)
	}
	CategoryCacheKeys.m = make(map[string]struct{})
	CategoryCacheKeys.Unlock()
}

// Statistics Cache Functions
func SetStatisticsCache(cacheKey string, value interface{}) {
	StatisticsCacheKeys.Lock()
	StatisticsCacheKeys.m[cacheKey] = struct{}{}
	StatisticsCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func DelStatisticsCache(cacheKey string) {
	StatisticsCacheKeys.Lock()
	delete(StatisticsCacheKeys.m, cacheKey)
	StatisticsCacheKeys.Unlock()
	Cache.Del(cacheKey)
}

func ClearAllStatisticsCaches() {
	StatisticsCacheKeys.Lock()
	for key := range StatisticsCacheKeys.m {
		Cache.Del(key)
	}
	StatisticsCacheKeys.m = make(map[string]struct{})
	StatisticsCacheKeys.Unlock()
}
