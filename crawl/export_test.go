package crawl

// DedupeWith exposes URL deduplication with a caller-supplied filter.
func DedupeWith(urls []string, filter interface{ TestAndAdd(string) bool }) []string {
	return dedupeWith(urls, filter)
}
