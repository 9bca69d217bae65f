package usecase

// CacheKey exposes cache key construction for tests
func CacheKey(namespace, operation string, params any) (string, error) {
	return cacheKey(namespace, operation, params)
}
