package cache

// Key namespace for cached responses in the kv store.
const keyPrefix = "edge:cache:"

// Key builds the store key for a cacheable request. The query string is part
// of the key so that parameterized reads (pagination, filters) cache
// independently. The raw query is used as-is: the origin already treats
// parameter order as significant, so no reordering is performed here.
func Key(path, rawQuery string) string {
	if rawQuery == "" {
		return keyPrefix + path
	}
	return keyPrefix + path + "?" + rawQuery
}
