package stock

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const conflictKey = "stock.conflict"

var messages = func() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	_ = b.SetString(language.English, conflictKey, "Only %d can be ordered for this item.")
	_ = b.SetString(language.Vietnamese, conflictKey, "Chỉ có thể đặt tối đa %d sản phẩm này.")
	return b
}()

// ConflictMessage renders the user-facing stock conflict notice for tag.
func ConflictMessage(tag language.Tag, maxQty int) string {
	p := message.NewPrinter(tag, message.Catalog(messages))
	return p.Sprintf(conflictKey, maxQty)
}
