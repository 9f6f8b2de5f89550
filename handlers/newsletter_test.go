package handlers

import (
	"net/http"
	"testing"

	"farmstore-backend/models"

	"golang.org/x/crypto/bcrypt"
)

func validSubscription() map[string]interface{} {
	return map[string]interface{}{
		"full_name": "Peter Mwangi",
		"email":     "peter@farm.test",
		"farm_size": "small",
		"tips":      true,
		"market":    false,
		"offers":    true,
	}
}

func TestSubscribeValidation(t *testing.T) {
	app := setupRouter(t, freshDB())

	tests := []struct {
		name  string
		field string
		value string
		want  string
	}{
		{"missing name", "full_name", "", "Please enter your full name"},
		{"missing email", "email", " ", "Please enter your email address"},
		{"invalid email", "email", "peter.farm.test", "Please enter a valid email address"},
		{"missing farm size", "farm_size", "", "Please select your farm size"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := validSubscription()
			body[tc.field] = tc.value

			w := app.newVisitor().do("POST", "/api/newsletter", body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			if got := parseResponse(w)["error"]; got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestSubscribeSuccess(t *testing.T) {
	db := freshDB()
	app := setupRouter(t, db)
	v := app.newVisitor()

	w := v.do("POST", "/api/newsletter", validSubscription())
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	if parseResponse(w)["message"] != "Successfully subscribed! Check your email for a confirmation message." {
		t.Errorf("unexpected message %v", parseResponse(w)["message"])
	}

	var sub models.NewsletterSubscriber
	if err := db.Where("email = ?", "peter@farm.test").First(&sub).Error; err != nil {
		t.Fatal(err)
	}
	if !sub.Tips || sub.Market || !sub.Offers {
		t.Errorf("unexpected preferences %+v", sub)
	}
	if sub.UnsubscribeTokenHash == "" {
		t.Error("expected hashed unsubscribe token")
	}
}

func TestSubscribeAgainUpdatesPreferences(t *testing.T) {
	db := freshDB()
	app := setupRouter(t, db)
	v := app.newVisitor()

	v.do("POST", "/api/newsletter", validSubscription())
	again := validSubscription()
	again["email"] = "Peter@Farm.test"
	again["farm_size"] = "large"
	again["market"] = true
	w := v.do("POST", "/api/newsletter", again)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}

	if n := countRows(db, &models.NewsletterSubscriber{}); n != 1 {
		t.Fatalf("expected one subscriber, got %d", n)
	}
	var sub models.NewsletterSubscriber
	db.First(&sub)
	if sub.FarmSize != "large" || !sub.Market {
		t.Errorf("expected updated preferences, got %+v", sub)
	}
}

func TestSubscriberCount(t *testing.T) {
	app := setupRouter(t, freshDB())
	v := app.newVisitor()

	resp := parseResponse(v.do("GET", "/api/newsletter/count", nil))
	if resp["count"].(float64) != 0 || resp["display"] != "" {
		t.Errorf("expected no subscribers, got %v", resp)
	}

	v.do("POST", "/api/newsletter", validSubscription())
	second := validSubscription()
	second["email"] = "mary@farm.test"
	v.do("POST", "/api/newsletter", second)

	resp = parseResponse(v.do("GET", "/api/newsletter/count", nil))
	if resp["count"].(float64) != 2 {
		t.Errorf("expected 2 subscribers, got %v", resp["count"])
	}
	if resp["display"] != "2+ Farmers Subscribed" {
		t.Errorf("unexpected display %v", resp["display"])
	}
}

func seedSubscriber(t *testing.T, email, token string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	sub := models.NewsletterSubscriber{FullName: "Seeded", Email: email, FarmSize: "medium", UnsubscribeTokenHash: string(hash)}
	if err := testDB.Create(&sub).Error; err != nil {
		t.Fatal(err)
	}
}

func TestUnsubscribe(t *testing.T) {
	db := freshDB()
	app := setupRouter(t, db)
	v := app.newVisitor()
	seedSubscriber(t, "leave@farm.test", "known-token")

	w := v.do("POST", "/api/newsletter/unsubscribe", map[string]interface{}{"email": "leave@farm.test", "token": "wrong"})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for wrong token, got %d", w.Code)
	}

	w = v.do("POST", "/api/newsletter/unsubscribe", map[string]interface{}{"email": "leave@farm.test", "token": "known-token"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var sub models.NewsletterSubscriber
	db.Where("email = ?", "leave@farm.test").First(&sub)
	if sub.Active() {
		t.Error("expected subscriber to be unsubscribed")
	}
	if parseResponse(v.do("GET", "/api/newsletter/count", nil))["count"].(float64) != 0 {
		t.Error("unsubscribed farmers should not be counted")
	}
}

func TestUnsubscribeUnknownEmail(t *testing.T) {
	app := setupRouter(t, freshDB())

	w := app.newVisitor().do("POST", "/api/newsletter/unsubscribe", map[string]interface{}{"email": "nobody@farm.test", "token": "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestUnsubscribeRequiresFields(t *testing.T) {
	app := setupRouter(t, freshDB())

	w := app.newVisitor().do("POST", "/api/newsletter/unsubscribe", map[string]interface{}{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
