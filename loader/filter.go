package loader

// shouldAdmit decides whether the filtered load keeps a record: the adult
// flag must be falsy and both poster_path and overview non-empty. Evaluated
// before splitting so rejected records cost nothing.
func shouldAdmit(rec record) bool {
	if rec.truthy("adult") {
		return false
	}
	if rec.str("poster_path") == "" {
		return false
	}
	if rec.str("overview") == "" {
		return false
	}
	return true
}
