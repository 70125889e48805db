package sandbox

import (
	"time"

	"github.com/tidwall/btree"
)

// purchaseIndex keeps purchases ordered by purchase time, then id, so that
// listings come back oldest first like the store's own API.
type purchaseIndex struct {
	tree *btree.BTreeG[PurchaseRecord]
}

func purchaseTime(r PurchaseRecord) time.Time {
	if r.PurchaseTime == nil {
		return time.Time{}
	}
	return *r.PurchaseTime
}

func newPurchaseIndex() *purchaseIndex {
	return &purchaseIndex{
		tree: btree.NewBTreeG(func(a, b PurchaseRecord) bool {
			ta, tb := purchaseTime(a), purchaseTime(b)
			if !ta.Equal(tb) {
				return ta.Before(tb)
			}
			return a.ID() < b.ID()
		}),
	}
}

func (x *purchaseIndex) Set(rec PurchaseRecord) {
	x.tree.Set(rec)
}

func (x *purchaseIndex) Delete(rec PurchaseRecord) {
	x.tree.Delete(rec)
}

func (x *purchaseIndex) Len() int {
	return x.tree.Len()
}

// ForApp returns the purchases of one console application in order.
func (x *purchaseIndex) ForApp(appID string) []PurchaseRecord {
	var out []PurchaseRecord
	x.tree.Scan(func(rec PurchaseRecord) bool {
		if rec.AppID == appID {
			out = append(out, rec)
		}
		return true
	})
	return out
}
