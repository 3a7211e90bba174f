package repository

import (
	"reflect"
	"sort"
	"time"

	"github.com/Evolvus/evolvus-application/schema"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// validatePatch checks an update patch against the given descriptor and
// returns the fields that actually change the stored document.
func validatePatch(desc *schema.Descriptor, current bson.M, patch map[string]any) (bson.M, error) {
	if err := desc.ValidatePatch(patch); err != nil {
		return nil, err
	}
	return diffPatch(current, patch), nil
}

// diffPatch keeps only the patch fields whose value differs from the
// stored document. An empty result means the update would be a no-op.
func diffPatch(current bson.M, patch map[string]any) bson.M {
	changes := bson.M{}
	for name, value := range patch {
		if !equalValue(current[name], value) {
			changes[name] = value
		}
	}
	return changes
}

// equalValue compares a stored BSON value with a patch value after
// normalizing the type shapes the two sides produce (BSON int widths,
// millisecond datetime precision).
func equalValue(a, b any) bool {
	na, nb := normalize(a), normalize(b)
	if na == nil || nb == nil {
		return na == nb
	}
	if reflect.TypeOf(na).Comparable() && reflect.TypeOf(nb).Comparable() {
		return na == nb
	}
	return reflect.DeepEqual(na, nb)
}

func normalize(v any) any {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case int64:
		return t
	case float64:
		if t == float64(int64(t)) {
			return int64(t)
		}
		return t
	case bson.DateTime:
		return t.Time().UTC().Truncate(time.Millisecond)
	case time.Time:
		// the store keeps millisecond precision
		return t.UTC().Truncate(time.Millisecond)
	}
	return v
}

// toFilter renders an equality query map as a bson.D with sorted keys,
// so the same query always produces the same filter document.
func toFilter(query map[string]any) bson.D {
	keys := lo.Keys(query)
	sort.Strings(keys)
	filter := make(bson.D, 0, len(keys))
	for _, k := range keys {
		filter = append(filter, bson.E{Key: k, Value: query[k]})
	}
	return filter
}
