package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"animal-shelter-api/internal/router"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	t.Cleanup(ts.Close)
	return ts
}

func rexPayload() map[string]any {
	return map[string]any{
		"name":         "Rex",
		"species":      "dog",
		"breed":        "mixed",
		"age":          3,
		"gender":       "male",
		"colors":       []string{"brown"},
		"adoptable":    true,
		"microchipped": false,
	}
}

func havenPayload(name string) map[string]any {
	return map[string]any{
		"name":    name,
		"address": "1 Main St",
		"contact": map[string]any{"email": "haven@example.org", "phone": "555-0100"},
	}
}

func TestHTTP_EndToEnd_RexHavenScenario(t *testing.T) {
	ts := newServer(t)
	owner := "auth0|owner"

	rexID := createAnimal(t, ts.URL, "", rexPayload())
	havenID := createEntity(t, ts.URL, "/shelters", owner, havenPayload("Haven"))

	// 1) Rex entra al refugio
	{
		st, body := doReq(t, ts.URL, "PUT", "/animals/"+rexID+"/shelters/"+havenID, owner, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 assign shelter, got %d body=%s", st, string(body))
		}
		var a struct {
			Location struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
				Type string `json:"type"`
				Self string `json:"self"`
			} `json:"location"`
		}
		_ = json.Unmarshal(body, &a)
		if a.Location.Name != "Haven" || a.Location.Type != "shelter" {
			t.Fatalf("unexpected location after assign: %s", string(body))
		}
		if !strings.HasSuffix(a.Location.Self, "/shelters/"+havenID) {
			t.Fatalf("location self link: %q", a.Location.Self)
		}
	}

	// 2) el refugio lo lista
	{
		st, body := doReq(t, ts.URL, "GET", "/shelters/"+havenID, owner, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get shelter, got %d body=%s", st, string(body))
		}
		var sh struct {
			Animals []struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
			} `json:"animals"`
		}
		_ = json.Unmarshal(body, &sh)
		if len(sh.Animals) != 1 || sh.Animals[0].Name != "Rex" {
			t.Fatalf("expected Rex in shelter animals, body=%s", string(body))
		}
	}

	// 3) renombrar el refugio actualiza la ubicación del animal
	{
		st, body := doReq(t, ts.URL, "PATCH", "/shelters/"+havenID, owner, map[string]any{"name": "Safe Haven"})
		if st != http.StatusOK {
			t.Fatalf("expected 200 rename shelter, got %d body=%s", st, string(body))
		}
		_, body = doReq(t, ts.URL, "GET", "/animals/"+rexID, "", nil)
		if !strings.Contains(string(body), `"name":"Safe Haven"`) {
			t.Fatalf("expected renamed location, body=%s", string(body))
		}
	}

	// 4) borrar el refugio deja a Rex sin ubicación
	{
		st, body := doReq(t, ts.URL, "DELETE", "/shelters/"+havenID, owner, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 delete shelter, got %d body=%s", st, string(body))
		}
		st, body = doReq(t, ts.URL, "GET", "/animals/"+rexID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get animal, got %d body=%s", st, string(body))
		}
		if !strings.Contains(string(body), `"location":null`) {
			t.Fatalf("expected null location after shelter delete, body=%s", string(body))
		}
	}
}

func TestHTTP_AdoptionFromShelter(t *testing.T) {
	ts := newServer(t)
	owner := "auth0|owner"

	rexID := createAnimal(t, ts.URL, "", rexPayload())
	havenID := createEntity(t, ts.URL, "/shelters", owner, havenPayload("Haven"))
	anaID := createEntity(t, ts.URL, "/adopters", owner, map[string]any{
		"name": "Ana", "email": "ana@example.org", "phone_number": "555-0101",
	})

	if st, body := doReq(t, ts.URL, "PUT", "/shelters/"+havenID+"/animals/"+rexID, owner, nil); st != http.StatusNoContent {
		t.Fatalf("expected 204 shelter add, got %d body=%s", st, string(body))
	}

	st, body := doReq(t, ts.URL, "PUT", "/adopters/"+anaID+"/animals/"+rexID, owner, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 adopt, got %d body=%s", st, string(body))
	}
	if !strings.Contains(string(body), `"name":"Rex"`) {
		t.Fatalf("expected Rex in adopter pets, body=%s", string(body))
	}

	_, body = doReq(t, ts.URL, "GET", "/shelters/"+havenID, owner, nil)
	if !strings.Contains(string(body), `"animals":[]`) {
		t.Fatalf("expected shelter emptied after adoption, body=%s", string(body))
	}

	// ya adoptado: no puede volver a un refugio
	if st, body := doReq(t, ts.URL, "PUT", "/animals/"+rexID+"/shelters/"+havenID, owner, nil); st != http.StatusForbidden {
		t.Fatalf("expected 403 assigning adopted animal, got %d body=%s", st, string(body))
	}

	// quitarlo dos veces: la segunda es 404
	if st, body := doReq(t, ts.URL, "DELETE", "/animals/"+rexID+"/adopters/"+anaID, owner, nil); st != http.StatusNoContent {
		t.Fatalf("expected 204 release, got %d body=%s", st, string(body))
	}
	if st, body := doReq(t, ts.URL, "DELETE", "/animals/"+rexID+"/adopters/"+anaID, owner, nil); st != http.StatusNotFound {
		t.Fatalf("expected 404 second release, got %d body=%s", st, string(body))
	}
}

func TestHTTP_ShelterOwnership(t *testing.T) {
	ts := newServer(t)
	owner, other := "auth0|owner", "auth0|other"

	havenID := createEntity(t, ts.URL, "/shelters", owner, havenPayload("Haven"))
	rexID := createAnimal(t, ts.URL, "", rexPayload())

	cases := []struct {
		name   string
		method string
		path   string
		caller string
		body   any
		want   int
	}{
		{"list without jwt", "GET", "/shelters", "", nil, http.StatusUnauthorized},
		{"create without jwt", "POST", "/shelters", "", havenPayload("Other"), http.StatusUnauthorized},
		{"get other owner", "GET", "/shelters/" + havenID, other, nil, http.StatusForbidden},
		{"patch other owner", "PATCH", "/shelters/" + havenID, other, map[string]any{"name": "Mine"}, http.StatusForbidden},
		{"put other owner", "PUT", "/shelters/" + havenID, other, havenPayload("Mine"), http.StatusForbidden},
		{"delete other owner", "DELETE", "/shelters/" + havenID, other, nil, http.StatusForbidden},
		{"assign other owner", "PUT", "/animals/" + rexID + "/shelters/" + havenID, other, nil, http.StatusForbidden},
		{"unassign other owner", "DELETE", "/animals/" + rexID + "/shelters/" + havenID, other, nil, http.StatusForbidden},
		{"add member other owner", "PUT", "/shelters/" + havenID + "/animals/" + rexID, other, nil, http.StatusForbidden},
		{"remove member other owner", "DELETE", "/shelters/" + havenID + "/animals/" + rexID, other, nil, http.StatusForbidden},
		{"assign without jwt", "PUT", "/animals/" + rexID + "/shelters/" + havenID, "", nil, http.StatusUnauthorized},
		{"missing shelter", "GET", "/shelters/999", owner, nil, http.StatusNotFound},
		{"malformed id", "GET", "/shelters/abc", owner, nil, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, body := doReq(t, ts.URL, tc.method, tc.path, tc.caller, tc.body)
			if st != tc.want {
				t.Fatalf("expected %d, got %d body=%s", tc.want, st, string(body))
			}
		})
	}

	// cada usuario ve solo sus refugios
	_ = createEntity(t, ts.URL, "/shelters", other, havenPayload("Other Haven"))
	_, body := doReq(t, ts.URL, "GET", "/shelters", other, nil)
	var page struct {
		Shelters   []struct{ Name string } `json:"shelters"`
		TotalItems int                     `json:"total_items"`
	}
	_ = json.Unmarshal(body, &page)
	if page.TotalItems != 1 || page.Shelters[0].Name != "Other Haven" {
		t.Fatalf("expected only own shelters, body=%s", string(body))
	}
}

func TestHTTP_AdopterOwnership(t *testing.T) {
	ts := newServer(t)
	owner, other := "auth0|owner", "auth0|other"

	anaID := createEntity(t, ts.URL, "/adopters", owner, anaPayload())
	rexID := createAnimal(t, ts.URL, "", rexPayload())

	cases := []struct {
		name   string
		method string
		path   string
		caller string
		body   any
		want   int
	}{
		{"list without jwt", "GET", "/adopters", "", nil, http.StatusUnauthorized},
		{"create without jwt", "POST", "/adopters", "", anaPayload(), http.StatusUnauthorized},
		{"get other owner", "GET", "/adopters/" + anaID, other, nil, http.StatusForbidden},
		{"patch other owner", "PATCH", "/adopters/" + anaID, other, map[string]any{"name": "Mine"}, http.StatusForbidden},
		{"put other owner", "PUT", "/adopters/" + anaID, other, anaPayload(), http.StatusForbidden},
		{"delete other owner", "DELETE", "/adopters/" + anaID, other, nil, http.StatusForbidden},
		{"adopt other owner", "PUT", "/adopters/" + anaID + "/animals/" + rexID, other, nil, http.StatusForbidden},
		{"release other owner", "DELETE", "/adopters/" + anaID + "/animals/" + rexID, other, nil, http.StatusForbidden},
		{"assign other owner", "PUT", "/animals/" + rexID + "/adopters/" + anaID, other, nil, http.StatusForbidden},
		{"unassign other owner", "DELETE", "/animals/" + rexID + "/adopters/" + anaID, other, nil, http.StatusForbidden},
		{"assign without jwt", "PUT", "/animals/" + rexID + "/adopters/" + anaID, "", nil, http.StatusUnauthorized},
		{"missing adopter", "GET", "/adopters/999", owner, nil, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, body := doReq(t, ts.URL, tc.method, tc.path, tc.caller, tc.body)
			if st != tc.want {
				t.Fatalf("expected %d, got %d body=%s", tc.want, st, string(body))
			}
		})
	}

	// nada de lo anterior movió al animal
	_, body := doReq(t, ts.URL, "GET", "/animals/"+rexID, "", nil)
	if !strings.Contains(string(body), `"location":null`) {
		t.Fatalf("expected Rex still unlocated, body=%s", string(body))
	}
	if st, body := doReq(t, ts.URL, "GET", "/adopters/"+anaID, owner, nil); st != http.StatusOK || !strings.Contains(string(body), `"name":"Ana"`) {
		t.Fatalf("expected adopter untouched, got %d body=%s", st, string(body))
	}

	// cada usuario ve solo sus adoptantes
	_ = createEntity(t, ts.URL, "/adopters", other, map[string]any{
		"name": "Bruno", "email": "bruno@example.org", "phone_number": "555-0102",
	})
	_, body = doReq(t, ts.URL, "GET", "/adopters", other, nil)
	var page struct {
		Adopters   []struct{ Name string } `json:"adopters"`
		TotalItems int                     `json:"total_items"`
	}
	_ = json.Unmarshal(body, &page)
	if page.TotalItems != 1 || page.Adopters[0].Name != "Bruno" {
		t.Fatalf("expected only own adopters, body=%s", string(body))
	}
}

func TestHTTP_ShelterNameUnique(t *testing.T) {
	ts := newServer(t)
	owner := "auth0|owner"

	havenID := createEntity(t, ts.URL, "/shelters", owner, havenPayload("Haven"))
	otherID := createEntity(t, ts.URL, "/shelters", owner, havenPayload("Refuge"))

	if st, body := doReq(t, ts.URL, "POST", "/shelters", "auth0|someone", havenPayload("Haven")); st != http.StatusForbidden {
		t.Fatalf("expected 403 duplicate name, got %d body=%s", st, string(body))
	}
	if st, body := doReq(t, ts.URL, "PATCH", "/shelters/"+otherID, owner, map[string]any{"name": "Haven"}); st != http.StatusForbidden {
		t.Fatalf("expected 403 rename to taken name, got %d body=%s", st, string(body))
	}
	// renombrar a su propio nombre no es conflicto
	if st, body := doReq(t, ts.URL, "PUT", "/shelters/"+havenID, owner, havenPayload("Haven")); st != http.StatusOK {
		t.Fatalf("expected 200 self rename, got %d body=%s", st, string(body))
	}
}

func TestHTTP_AnimalValidation(t *testing.T) {
	ts := newServer(t)

	missing := rexPayload()
	delete(missing, "breed")
	if st, body := doReq(t, ts.URL, "POST", "/animals", "", missing); st != http.StatusBadRequest {
		t.Fatalf("expected 400 missing attribute, got %d body=%s", st, string(body))
	}

	withLocation := rexPayload()
	withLocation["location"] = map[string]any{"id": 1, "type": "shelter"}
	if st, body := doReq(t, ts.URL, "POST", "/animals", "", withLocation); st != http.StatusBadRequest {
		t.Fatalf("expected 400 location on create, got %d body=%s", st, string(body))
	}

	// false y 0 son valores válidos
	zero := rexPayload()
	zero["age"] = 0
	zero["adoptable"] = false
	rexID := createAnimal(t, ts.URL, "", zero)

	if st, body := doReq(t, ts.URL, "PUT", "/animals/"+rexID, "", map[string]any{"name": "Max"}); st != http.StatusBadRequest {
		t.Fatalf("expected 400 partial PUT, got %d body=%s", st, string(body))
	}
	if st, body := doReq(t, ts.URL, "PATCH", "/animals/"+rexID, "", map[string]any{"location": nil}); st != http.StatusBadRequest {
		t.Fatalf("expected 400 location on patch, got %d body=%s", st, string(body))
	}
	st, body := doReq(t, ts.URL, "PATCH", "/animals/"+rexID, "", map[string]any{"name": "Max"})
	if st != http.StatusOK || !strings.Contains(string(body), `"name":"Max"`) {
		t.Fatalf("expected 200 patch, got %d body=%s", st, string(body))
	}

	if st, body := doReq(t, ts.URL, "DELETE", "/animals/"+rexID, "", nil); st != http.StatusNoContent {
		t.Fatalf("expected 204 delete, got %d body=%s", st, string(body))
	}
	if st, body := doReq(t, ts.URL, "GET", "/animals/"+rexID, "", nil); st != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d body=%s", st, string(body))
	}
}

func TestHTTP_ContentNegotiation(t *testing.T) {
	ts := newServer(t)

	// 415: body que no es JSON
	req, _ := http.NewRequest("POST", ts.URL+"/animals", strings.NewReader("name=Rex"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if st := statusOf(t, req); st != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", st)
	}

	// 406: cliente que solo acepta HTML
	req, _ = http.NewRequest("GET", ts.URL+"/animals", nil)
	req.Header.Set("Accept", "text/html")
	if st := statusOf(t, req); st != http.StatusNotAcceptable {
		t.Fatalf("expected 406, got %d", st)
	}

	// 405 con Allow en las raíces de colección
	for _, path := range []string{"/animals", "/shelters", "/adopters"} {
		for _, method := range []string{"PUT", "DELETE"} {
			req, _ = http.NewRequest(method, ts.URL+path, nil)
			res, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("do request: %v", err)
			}
			_ = res.Body.Close()
			if res.StatusCode != http.StatusMethodNotAllowed {
				t.Fatalf("%s %s: expected 405, got %d", method, path, res.StatusCode)
			}
			if got := res.Header.Get("Allow"); got != "GET, POST" {
				t.Fatalf("%s %s: unexpected Allow %q", method, path, got)
			}
		}
	}
}

func TestHTTP_AnimalPagination(t *testing.T) {
	ts := newServer(t)
	for i := 0; i < 7; i++ {
		p := rexPayload()
		p["name"] = "Rex " + strconv.Itoa(i)
		createAnimal(t, ts.URL, "", p)
	}

	type page struct {
		Animals    []struct{ Self string } `json:"animals"`
		TotalItems int                     `json:"total_items"`
		Previous   string                  `json:"previous"`
		Next       string                  `json:"next"`
	}

	_, body := doReq(t, ts.URL, "GET", "/animals", "", nil)
	var first page
	_ = json.Unmarshal(body, &first)
	if first.TotalItems != 5 || first.Next == "" || first.Previous != "" {
		t.Fatalf("unexpected first page: %s", string(body))
	}
	if !strings.HasPrefix(first.Animals[0].Self, ts.URL+"/animals/") {
		t.Fatalf("self link: %q", first.Animals[0].Self)
	}

	next := strings.TrimPrefix(first.Next, ts.URL)
	_, body = doReq(t, ts.URL, "GET", next, "", nil)
	var second page
	_ = json.Unmarshal(body, &second)
	if second.TotalItems != 2 || second.Next != "" || second.Previous == "" {
		t.Fatalf("unexpected second page: %s", string(body))
	}

	if st, body := doReq(t, ts.URL, "GET", "/animals?cursor=bm9wZQ", "", nil); st != http.StatusBadRequest {
		t.Fatalf("expected 400 bad cursor, got %d body=%s", st, string(body))
	}
}

func TestHTTP_UsersCreatedOnFirstRequest(t *testing.T) {
	ts := newServer(t)
	owner := "auth0|owner"

	_ = createEntity(t, ts.URL, "/shelters", owner, havenPayload("Haven"))
	// mismo usuario otra vez: no se duplica
	_ = createEntity(t, ts.URL, "/adopters", owner, map[string]any{
		"name": "Ana", "email": "ana@example.org", "phone_number": "555-0101",
	})

	st, body := doReq(t, ts.URL, "GET", "/users", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list users, got %d body=%s", st, string(body))
	}
	var list struct {
		Users []struct {
			ID       int64  `json:"id"`
			UserID   string `json:"user_id"`
			Shelters []struct {
				Name string `json:"name"`
			} `json:"shelters"`
			Adopters []struct {
				Name string `json:"name"`
			} `json:"adopters"`
		} `json:"users"`
		TotalItems int `json:"total_items"`
	}
	_ = json.Unmarshal(body, &list)
	if list.TotalItems != 1 || list.Users[0].UserID != owner {
		t.Fatalf("expected a single user, body=%s", string(body))
	}
	u := list.Users[0]
	if len(u.Shelters) != 1 || u.Shelters[0].Name != "Haven" || len(u.Adopters) != 1 {
		t.Fatalf("expected owned shelters and adopters, body=%s", string(body))
	}

	if st, body := doReq(t, ts.URL, "GET", "/users/"+strconv.FormatInt(u.ID, 10), "", nil); st != http.StatusOK {
		t.Fatalf("expected 200 get user, got %d body=%s", st, string(body))
	}
	if st, body := doReq(t, ts.URL, "GET", "/users/999", "", nil); st != http.StatusNotFound {
		t.Fatalf("expected 404 unknown user, got %d body=%s", st, string(body))
	}
	if st, body := doReq(t, ts.URL, "POST", "/users", "", map[string]any{}); st != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 POST /users, got %d body=%s", st, string(body))
	}
}

func TestHTTP_HealthAndMetrics(t *testing.T) {
	ts := newServer(t)

	if st, body := doReq(t, ts.URL, "GET", "/health", "", nil); st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("expected 200 ok, got %d body=%s", st, string(body))
	}
	_, _ = doReq(t, ts.URL, "GET", "/animals", "", nil)

	st, body := doReq(t, ts.URL, "GET", "/metrics", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 metrics, got %d", st)
	}
	if !strings.Contains(string(body), `shelter_http_requests_total{method="GET",route="/animals",status="200"}`) {
		t.Fatalf("expected request counter for /animals, body=%s", string(body))
	}
}

func anaPayload() map[string]any {
	return map[string]any{"name": "Ana", "email": "ana@example.org", "phone_number": "555-0101"}
}

func createAnimal(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()
	return createEntity(t, baseURL, "/animals", userID, payload)
}

func createEntity(t *testing.T, baseURL, collection, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", collection, userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create %s, got %d body=%s", collection, st, string(body))
	}

	var resp struct {
		ID int64 `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == 0 {
		t.Fatalf("create %s: missing id body=%s", collection, string(body))
	}
	return strconv.FormatInt(resp.ID, 10)
}

func statusOf(t *testing.T, req *http.Request) int {
	t.Helper()
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	return res.StatusCode
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
