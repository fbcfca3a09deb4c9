package checkout

import (
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"pgregory.net/rapid"
)

func lineItem(seller cart.SellerRef, price int64, qty int) cart.LineItem {
	return cart.LineItem{
		ID:       uuid.New(),
		Quantity: qty,
		Product:  cart.ProductSnapshot{ID: uuid.New(), Name: "product", Price: price, Stock: 99},
		Seller:   seller,
	}
}

type scenario struct {
	sellerA, sellerB cart.SellerRef
	itemA, itemB     cart.LineItem
	groups           []cart.Group
}

func newScenario() scenario {
	a := cart.SellerRef{ID: uuid.New(), Name: "Seller A"}
	b := cart.SellerRef{ID: uuid.New(), Name: "Seller B"}
	itemA := lineItem(a, 100000, 2)
	itemB := lineItem(b, 50000, 1)
	return scenario{
		sellerA: a, sellerB: b,
		itemA: itemA, itemB: itemB,
		groups: cart.GroupBySeller([]cart.LineItem{itemA, itemB}),
	}
}

func TestDecomposeTwoSellers(t *testing.T) {
	s := newScenario()
	plan := Decompose(s.groups, cart.NewItemSet(s.itemA.ID, s.itemB.ID), DefaultShippingFee)

	if len(plan.Buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(plan.Buckets))
	}
	want := []struct {
		seller          uuid.UUID
		subtotal, total int64
	}{
		{s.sellerA.ID, 200000, 230000},
		{s.sellerB.ID, 50000, 80000},
	}
	for i, w := range want {
		b := plan.Buckets[i]
		if b.Seller.ID != w.seller || b.Subtotal != w.subtotal || b.ShippingFee != 30000 || b.Total != w.total {
			t.Fatalf("bucket %d = %+v, want seller=%s subtotal=%d total=%d", i, b, w.seller, w.subtotal, w.total)
		}
	}
	if plan.GrandTotal != 310000 {
		t.Fatalf("expected grand total 310000, got %d", plan.GrandTotal)
	}
}

func TestDecomposeSingleSellerSelection(t *testing.T) {
	s := newScenario()
	plan := Decompose(s.groups, cart.NewItemSet(s.itemA.ID), DefaultShippingFee)

	if len(plan.Buckets) != 1 || plan.Buckets[0].Seller.ID != s.sellerA.ID {
		t.Fatalf("expected only seller A, got %+v", plan.Buckets)
	}
	if _, ok := plan.Bucket(s.sellerB.ID); ok {
		t.Fatalf("seller B has nothing selected and must not get a bucket")
	}
	if len(s.groups[1].Items) != 1 || s.groups[1].Items[0].ID != s.itemB.ID {
		t.Fatalf("seller B's cart group must be untouched")
	}
}

func TestConfirmBlocksEmptySelection(t *testing.T) {
	s := newScenario()
	address := uuid.New()
	_, requests, err := Confirm(s.groups, cart.NewItemSet(), DefaultShippingFee, ConfirmInput{AddressID: &address})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if requests != nil {
		t.Fatalf("no request may be built for an empty selection")
	}
}

func TestConfirmRequiresAddressBeforeDecomposing(t *testing.T) {
	s := newScenario()
	plan, requests, err := Confirm(s.groups, cart.NewItemSet(s.itemA.ID), DefaultShippingFee, ConfirmInput{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, _ := typed.Details().(map[string]string)
	if _, ok := details["addressId"]; !ok {
		t.Fatalf("expected addressId field error, got %v", typed.Details())
	}
	if !plan.IsEmpty() || requests != nil {
		t.Fatalf("nothing should be decomposed without an address")
	}
}

func TestOrderRequestsShareBuyerChoices(t *testing.T) {
	s := newScenario()
	address := uuid.New()
	_, requests, err := Confirm(s.groups, cart.NewItemSet(s.itemA.ID, s.itemB.ID), DefaultShippingFee, ConfirmInput{
		AddressID:     &address,
		Note:          "  call before delivery ",
		PaymentMethod: enums.PaymentMethodBankTransfer,
	})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if len(requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(requests))
	}
	for _, r := range requests {
		if r.AddressID != address || r.Note != "call before delivery" || r.PaymentMethod != enums.PaymentMethodBankTransfer {
			t.Fatalf("shared fields not propagated: %+v", r)
		}
		if r.ShippingFee != DefaultShippingFee {
			t.Fatalf("unexpected shipping fee %d", r.ShippingFee)
		}
	}
	first := requests[0]
	if first.SellerID != s.sellerA.ID || first.TotalPrice != 230000 {
		t.Fatalf("unexpected first request %+v", first)
	}
	if len(first.OrderDetails) != 1 || first.OrderDetails[0].ProductID != s.itemA.Product.ID || first.OrderDetails[0].Quantity != 2 {
		t.Fatalf("unexpected details %+v", first.OrderDetails)
	}
}

func TestOrderRequestsDefaultToCashOnDelivery(t *testing.T) {
	s := newScenario()
	address := uuid.New()
	_, requests, err := Confirm(s.groups, cart.NewItemSet(s.itemB.ID), DefaultShippingFee, ConfirmInput{AddressID: &address})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if requests[0].PaymentMethod != enums.PaymentMethodCOD {
		t.Fatalf("expected cod, got %s", requests[0].PaymentMethod)
	}
}

func TestConfirmRejectsUnknownPaymentMethod(t *testing.T) {
	s := newScenario()
	address := uuid.New()
	_, _, err := Confirm(s.groups, cart.NewItemSet(s.itemB.ID), DefaultShippingFee, ConfirmInput{AddressID: &address, PaymentMethod: "card"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func drawGroups(t *rapid.T) ([]cart.Group, cart.ItemSet) {
	sellers := make([]cart.SellerRef, rapid.IntRange(1, 5).Draw(t, "sellers"))
	for i := range sellers {
		sellers[i] = cart.SellerRef{ID: uuid.New()}
	}
	n := rapid.IntRange(0, 20).Draw(t, "items")
	items := make([]cart.LineItem, n)
	selected := cart.NewItemSet()
	for i := range items {
		seller := sellers[rapid.IntRange(0, len(sellers)-1).Draw(t, "seller")]
		items[i] = lineItem(seller, rapid.Int64Range(0, 10_000_000).Draw(t, "price"), rapid.IntRange(1, 99).Draw(t, "qty"))
		if rapid.Bool().Draw(t, "selected") {
			selected[items[i].ID] = struct{}{}
		}
	}
	return cart.GroupBySeller(items), selected
}

func TestDecomposeSubtotalsMatchSelection(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		groups, selected := drawGroups(t)
		fee := rapid.Int64Range(0, 100000).Draw(t, "fee")
		plan := Decompose(groups, selected, fee)

		var want int64
		sellersWithSelection := map[uuid.UUID]bool{}
		for _, item := range cart.Flatten(groups) {
			if selected.Has(item.ID) {
				want += item.Product.Price * int64(item.Quantity)
				sellersWithSelection[item.Seller.ID] = true
			}
		}

		var subtotals, totals int64
		seen := map[uuid.UUID]bool{}
		for _, b := range plan.Buckets {
			if seen[b.Seller.ID] {
				t.Fatalf("seller %s has two buckets", b.Seller.ID)
			}
			seen[b.Seller.ID] = true
			if len(b.Items) == 0 {
				t.Fatalf("empty bucket")
			}
			if b.Total != b.Subtotal+fee {
				t.Fatalf("bucket total %d != subtotal %d + fee %d", b.Total, b.Subtotal, fee)
			}
			subtotals += b.Subtotal
			totals += b.Total
		}
		if len(seen) != len(sellersWithSelection) {
			t.Fatalf("expected %d buckets, got %d", len(sellersWithSelection), len(seen))
		}
		if subtotals != want {
			t.Fatalf("subtotals %d != selected sum %d", subtotals, want)
		}
		if plan.GrandTotal != totals {
			t.Fatalf("grand total %d != sum of totals %d", plan.GrandTotal, totals)
		}
	})
}

func TestBucketFeeDoesNotLeakAcrossBuckets(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		groups, selected := drawGroups(t)
		plan := Decompose(groups, selected, DefaultShippingFee)
		if len(plan.Buckets) < 2 {
			return
		}
		before := plan.Buckets[1].Total
		plan.Buckets[0].ShippingFee += 10000
		plan.Buckets[0].Total += 10000
		if plan.Buckets[1].Total != before {
			t.Fatalf("changing one bucket's fee moved another bucket's total")
		}
	})
}
