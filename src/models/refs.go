package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ContainsID reports whether id is present in ids.
func ContainsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

// addRef appends id to the relation array and resyncs its counter.
// A nil counter means the array has no mirrored count.
func addRef(ids *[]primitive.ObjectID, count *int, id primitive.ObjectID) bool {
	if ContainsID(*ids, id) {
		return false
	}
	*ids = append(*ids, id)
	if count != nil {
		*count = len(*ids)
	}
	return true
}

// removeRef drops every occurrence of id and resyncs the counter.
func removeRef(ids *[]primitive.ObjectID, count *int, id primitive.ObjectID) bool {
	kept := make([]primitive.ObjectID, 0, len(*ids))
	removed := false
	for _, existing := range *ids {
		if existing == id {
			removed = true
			continue
		}
		kept = append(kept, existing)
	}
	*ids = kept
	if count != nil {
		*count = len(*ids)
	}
	return removed
}
