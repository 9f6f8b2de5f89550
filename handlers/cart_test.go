package handlers

import (
	"net/http"
	"strings"
	"testing"

	"farmstore-backend/cart"
	"farmstore-backend/models"
)

func addChicks(v *visitor) {
	v.do("POST", "/api/cart/items", map[string]interface{}{
		"product": "day-old-chicks",
		"name":    "Day Old Chicks",
		"price":   1.5,
	})
}

func TestAddToCartSuccess(t *testing.T) {
	app := setupRouter(t, freshDB())
	v := app.newVisitor()

	w := v.do("POST", "/api/cart/items", map[string]interface{}{
		"product": "day-old-chicks",
		"name":    "Day Old Chicks",
		"price":   1.5,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	if resp["item_count"].(float64) != 1 {
		t.Errorf("expected item_count 1, got %v", resp["item_count"])
	}
	if resp["total_display"] != "USD 1.50" {
		t.Errorf("expected total USD 1.50, got %v", resp["total_display"])
	}
	if msg := lastToast(resp); msg != "Day Old Chicks added to cart!" {
		t.Errorf("expected add toast, got %q", msg)
	}
}

func TestAddToCartMergesSameProduct(t *testing.T) {
	app := setupRouter(t, freshDB())
	v := app.newVisitor()

	addChicks(v)
	addChicks(v)
	w := v.do("GET", "/api/cart", nil)

	resp := parseResponse(w)
	items := resp["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(items))
	}
	line := items[0].(map[string]interface{})
	if line["quantity"].(float64) != 2 {
		t.Errorf("expected quantity 2, got %v", line["quantity"])
	}
	if resp["total_display"] != "USD 3.00" {
		t.Errorf("expected USD 3.00, got %v", resp["total_display"])
	}
}

func TestAddToCartUsesCatalogNameWhenMissing(t *testing.T) {
	app := setupRouter(t, freshDB())
	v := app.newVisitor()

	w := v.do("POST", "/api/cart/items", map[string]interface{}{"product": "calcium", "price": "4.50"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	items := parseResponse(w)["items"].([]interface{})
	if name := items[0].(map[string]interface{})["name"]; name != "Calcium Supplement" {
		t.Errorf("expected catalog name, got %v", name)
	}
}

func TestAddToCartAcceptsProductsOutsideCatalog(t *testing.T) {
	app := setupRouter(t, freshDB())
	v := app.newVisitor()

	w := v.do("POST", "/api/cart/items", map[string]interface{}{"product": "custom-feed", "name": "Custom Feed", "price": 0})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if parseResponse(w)["total_display"] != "USD 0.00" {
		t.Errorf("expected free item total USD 0.00, got %v", parseResponse(w)["total_display"])
	}
}

func TestAddToCartInvalidInput(t *testing.T) {
	app := setupRouter(t, freshDB())

	cases := map[string]map[string]interface{}{
		"missing product": {"name": "X", "price": 1},
		"missing price":   {"product": "x", "name": "X"},
		"negative price":  {"product": "x", "name": "X", "price": -1},
		"bad price":       {"product": "x", "name": "X", "price": "cheap"},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			v := app.newVisitor()
			w := v.do("POST", "/api/cart/items", body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if _, ok := parseResponse(w)["error"]; !ok {
				t.Error("expected error message")
			}
		})
	}
}

func TestChangeQuantity(t *testing.T) {
	app := setupRouter(t, freshDB())
	v := app.newVisitor()
	addChicks(v)

	w := v.do("PATCH", "/api/cart/items/day-old-chicks", map[string]interface{}{"delta": 2})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if parseResponse(w)["item_count"].(float64) != 3 {
		t.Errorf("expected 3 items, got %v", parseResponse(w)["item_count"])
	}

	w = v.do("PATCH", "/api/cart/items/day-old-chicks", map[string]interface{}{"delta": -3})
	resp := parseResponse(w)
	if len(resp["items"].([]interface{})) != 0 {
		t.Errorf("expected line removed at zero quantity, got %v", resp["items"])
	}
	if msg := lastToast(resp); msg != "Item removed from cart" {
		t.Errorf("expected removal toast, got %q", msg)
	}
}

func TestChangeQuantityUnknownProduct(t *testing.T) {
	app := setupRouter(t, freshDB())
	v := app.newVisitor()
	addChicks(v)

	w := v.do("PATCH", "/api/cart/items/ghost", map[string]interface{}{"delta": 5})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if parseResponse(w)["item_count"].(float64) != 1 {
		t.Errorf("expected cart unchanged, got %v", parseResponse(w)["item_count"])
	}
}

func TestChangeQuantityRequiresDelta(t *testing.T) {
	app := setupRouter(t, freshDB())
	v := app.newVisitor()

	w := v.do("PATCH", "/api/cart/items/day-old-chicks", map[string]interface{}{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestChangeQuantityAboveLimit(t *testing.T) {
	app := setupRouter(t, freshDB())
	v := app.newVisitor()
	addChicks(v)

	w := v.do("PATCH", "/api/cart/items/day-old-chicks", map[string]interface{}{"delta": cart.MaxQuantity})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	w = v.do("GET", "/api/cart", nil)
	if parseResponse(w)["item_count"].(float64) != 1 {
		t.Errorf("expected cart unchanged, got %v", parseResponse(w)["item_count"])
	}
}

func TestAddToCartUnknownProductWithoutName(t *testing.T) {
	app := setupRouter(t, freshDB())
	v := app.newVisitor()

	w := v.do("POST", "/api/cart/items", map[string]interface{}{"product": "custom-feed", "price": "2.00"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	items := parseResponse(w)["items"].([]interface{})
	if name := items[0].(map[string]interface{})["name"]; name != "custom-feed" {
		t.Errorf("expected product id as name, got %v", name)
	}
	if msg := lastToast(parseResponse(w)); msg != "custom-feed added to cart!" {
		t.Errorf("unexpected toast %q", msg)
	}
}

func TestRemoveFromCart(t *testing.T) {
	app := setupRouter(t, freshDB())
	v := app.newVisitor()
	addChicks(v)

	w := v.do("DELETE", "/api/cart/items/day-old-chicks", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if parseResponse(w)["item_count"].(float64) != 0 {
		t.Error("expected empty cart")
	}

	w = v.do("DELETE", "/api/cart/items/not-there", nil)
	if w.Code != http.StatusOK {
		t.Errorf("removing an absent product should succeed, got %d", w.Code)
	}
}

func TestClearCart(t *testing.T) {
	app := setupRouter(t, freshDB())
	v := app.newVisitor()
	addChicks(v)
	v.do("POST", "/api/cart/items", map[string]interface{}{"product": "syringes", "name": "Syringes", "price": 2})

	w := v.do("DELETE", "/api/cart", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp["item_count"].(float64) != 0 || resp["total_display"] != "USD 0.00" {
		t.Errorf("expected empty cart, got %v", resp)
	}
}

func TestGetCartView(t *testing.T) {
	app := setupRouter(t, freshDB())
	v := app.newVisitor()

	w := v.do("GET", "/api/cart/view", nil)
	if !strings.Contains(w.Body.String(), "Your cart is empty") {
		t.Errorf("expected empty state, got %s", w.Body.String())
	}

	addChicks(v)
	w = v.do("GET", "/api/cart/view", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		t.Errorf("expected html, got %s", w.Header().Get("Content-Type"))
	}
	if w.Header().Get("X-Cart-Count") != "1" || w.Header().Get("X-Cart-Total") != "USD 1.50" {
		t.Errorf("unexpected cart headers %v", w.Header())
	}
	if !strings.Contains(w.Body.String(), "Day Old Chicks") || !strings.Contains(w.Body.String(), "🐤") {
		t.Errorf("expected rendered line, got %s", w.Body.String())
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	app := setupRouter(t, freshDB())
	v := app.newVisitor()

	w := v.do("POST", "/api/cart/checkout", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp["error"] != "Your cart is empty!" {
		t.Errorf("expected empty cart error, got %v", resp["error"])
	}
	if msg := lastToast(resp); msg != "Your cart is empty!" {
		t.Errorf("expected error toast, got %q", msg)
	}

	draft := parseResponse(v.do("GET", "/api/contact/draft", nil))
	if draft["message"] != "" {
		t.Errorf("expected no draft, got %v", draft["message"])
	}
}

func TestCheckoutFillsContactDraft(t *testing.T) {
	app := setupRouter(t, freshDB())
	v := app.newVisitor()
	addChicks(v)
	addChicks(v)

	w := v.do("POST", "/api/cart/checkout", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	message := parseResponse(w)["message"].(string)
	want := "I would like to order:\n\nDay Old Chicks x2 = USD 3.00\n\nTotal: USD 3.00\n\nPlease contact me to complete this order."
	if message != want {
		t.Errorf("unexpected summary:\n%q\nwant\n%q", message, want)
	}

	draft := parseResponse(v.do("GET", "/api/contact/draft", nil))
	if draft["message"] != want {
		t.Errorf("expected draft to hold the summary, got %v", draft["message"])
	}

	cartResp := parseResponse(v.do("GET", "/api/cart", nil))
	if cartResp["item_count"].(float64) != 2 {
		t.Error("checkout should leave the cart intact")
	}
}

func TestCartIsPerVisitor(t *testing.T) {
	app := setupRouter(t, freshDB())
	a := app.newVisitor()
	b := app.newVisitor()

	addChicks(a)
	w := b.do("GET", "/api/cart", nil)

	if parseResponse(w)["item_count"].(float64) != 0 {
		t.Error("second visitor should not see the first visitor's cart")
	}
}

func TestCartPersistsAcrossRestart(t *testing.T) {
	db := freshDB()
	first := setupRouter(t, db)
	v := first.newVisitor()
	addChicks(v)

	var entry models.StorageEntry
	if err := db.Where("slot_key = ?", cart.SlotKey).First(&entry).Error; err != nil {
		t.Fatalf("expected stored cart snapshot: %v", err)
	}
	if !strings.Contains(entry.Value, `"id":"day-old-chicks"`) || !strings.Contains(entry.Value, `"quantity":1`) {
		t.Errorf("unexpected snapshot %s", entry.Value)
	}

	first.registry.Close()
	second := setupRouter(t, db)
	revisit := &visitor{app: second, token: v.token}

	resp := parseResponse(revisit.do("GET", "/api/cart", nil))
	if resp["item_count"].(float64) != 1 {
		t.Errorf("expected restored cart, got %v", resp)
	}
}

func TestCorruptSnapshotLoadsEmpty(t *testing.T) {
	db := freshDB()
	app := setupRouter(t, db)
	v := app.newVisitor()
	v.do("GET", "/api/cart", nil)

	claims, err := app.issuer.Validate(v.token)
	if err != nil {
		t.Fatal(err)
	}
	db.Create(&models.StorageEntry{Namespace: claims.SessionID, Key: cart.SlotKey, Value: "{not json"})

	app.registry.Close()
	restarted := setupRouter(t, db)
	w := (&visitor{app: restarted, token: v.token}).do("GET", "/api/cart", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if parseResponse(w)["item_count"].(float64) != 0 {
		t.Error("expected corrupt snapshot to load as an empty cart")
	}
}

func TestAddToCartPersistFailure(t *testing.T) {
	db := freshDB()
	app := setupRouter(t, db)
	v := app.newVisitor()
	addChicks(v)

	if err := db.Migrator().DropTable(&models.StorageEntry{}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { freshDB() })

	w := v.do("POST", "/api/cart/items", map[string]interface{}{"product": "calcium", "name": "Calcium", "price": 4.5})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if parseResponse(w)["error"] != "Failed to save cart" {
		t.Errorf("unexpected error %v", parseResponse(w)["error"])
	}

	resp := parseResponse(v.do("GET", "/api/cart", nil))
	if resp["item_count"].(float64) != 1 {
		t.Errorf("failed add must leave the cart as it was, got %v", resp["item_count"])
	}
}
