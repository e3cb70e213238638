package models

// Collection names in the document store.
const (
	ServicesCollection = "services"
	BookingsCollection = "bookings"
	ReviewsCollection  = "reviews"
	UsersCollection    = "users"
)

// IDField is the field under which stores surface a document's identifier.
const IDField = "_id"

// RoleAdmin is the only role value with elevated capability.
const RoleAdmin = "admin"

// Document is a schema-less record. Values are limited to what a JSON
// decoder produces: string, float64, bool, nil, []any and map[string]any.
// Stores convert their native values back to this set on read.
type Document map[string]any

// String returns the field as a string and whether it was one.
func (d Document) String(field string) (string, bool) {
	v, ok := d[field].(string)
	return v, ok
}

// Clone returns a deep copy so callers can't mutate stored state.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies maps and slices inside a document value.
func CloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(Document(t).Clone())
	case Document:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CloneValue(e)
		}
		return out
	default:
		return v
	}
}

// IsAdmin reports whether the user document carries the literal admin role.
func IsAdmin(user Document) bool {
	if user == nil {
		return false
	}
	role, ok := user.String("role")
	return ok && role == RoleAdmin
}
