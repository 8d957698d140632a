package cache

import "fmt"

// Key builders. Keeping these in one place makes DeletePattern calls
// and their Set counterparts hard to drift apart.

// StoreByIDKey caches a store config lookup by ID
func StoreByIDKey(storeID string) string {
	return "store:config:" + storeID
}

// StoreByDomainKey caches a store lookup by custom domain
func StoreByDomainKey(domain string) string {
	return "store:domain:" + domain
}

// DefaultStoreKey caches the default-store fallback
func DefaultStoreKey() string {
	return "store:default"
}

// CatalogKey caches one catalog item for a store
func CatalogKey(storeID, itemID string) string {
	return fmt.Sprintf("store:%s:catalog:%s", storeID, itemID)
}

// CatalogPattern matches every cached catalog entry for a store
func CatalogPattern(storeID string) string {
	return fmt.Sprintf("store:%s:catalog:*", storeID)
}

// InventoryKey caches one item's inventory snapshot
func InventoryKey(storeID, itemID string) string {
	return fmt.Sprintf("store:%s:inventory:%s", storeID, itemID)
}

// RateLimitKey is the fixed-window counter bucket for an identifier
func RateLimitKey(identifier, endpointClass string, bucket int64) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", identifier, endpointClass, bucket)
}
