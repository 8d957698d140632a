package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// Fingerprint computes a stable hash over the sync-relevant fields of a
// record: name, MRP, selling price and quantity. Volatile fields
// (timestamps, free text) are excluded so that a record is only "changed"
// when something a storefront reader can observe changed.
//
// The encoding is order-independent: fields are serialised as sorted
// key=value pairs, and decimals are rendered at a fixed scale so that
// 75, 75.0 and 75.00 fingerprint identically.
//
// Collisions are tolerated. A collision only suppresses one delta update,
// and the next full sync overwrites unconditionally, so the damage is a
// delayed refresh rather than corruption.
func Fingerprint(f SyncFields) string {
	pairs := map[string]string{
		"name":          f.Name,
		"mrp":           f.MRP.StringFixed(4),
		"selling_price": f.SellingPrice.StringFixed(4),
		"quantity":      strconv.Itoa(f.Quantity),
	}

	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(pairs[k])
		b.WriteByte('\n')
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
