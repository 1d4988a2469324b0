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

	"livestock-ledger/internal/router"
)

func TestHTTP_EndToEnd_HerdLifecycle(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	ownerID := "1"
	outsiderID := "2"

	// 1) Granja, potrero y dos lotes
	farmID := createID(t, ts.URL, "/farms", ownerID, map[string]any{"name": "La Esperanza"})
	paddockID := createID(t, ts.URL, "/paddocks", ownerID, map[string]any{
		"farm_id": farmID,
		"name":    "Norte",
		"boundary": map[string]any{
			"type": "Polygon",
			"coordinates": [][][]float64{{
				{-58.0, -34.0}, {-58.0, -34.01}, {-58.01, -34.01}, {-58.01, -34.0}, {-58.0, -34.0},
			}},
		},
	})
	lotA := createID(t, ts.URL, "/lots", ownerID, map[string]any{"paddock_id": paddockID, "name": "Cría"})
	lotB := createID(t, ts.URL, "/lots", ownerID, map[string]any{"paddock_id": paddockID, "name": "Destete"})

	// 2) Madre y ternero
	motherID := createID(t, ts.URL, "/animals", ownerID, map[string]any{
		"tag":           "M001",
		"pedigree_code": "PC-M001",
		"sex":           "female",
		"lot_id":        lotA,
	})
	calfID := createID(t, ts.URL, "/animals", ownerID, map[string]any{
		"tag":           "A001",
		"pedigree_code": "PC-A001",
		"sex":           "male",
		"birth_date":    "2024-03-01",
		"mother_id":     motherID,
		"lot_id":        lotA,
	})

	// 3) Dueños
	ownerA := createID(t, ts.URL, "/owners", ownerID, map[string]any{"name": "Ana"})
	ownerB := createID(t, ts.URL, "/owners", ownerID, map[string]any{"name": "Beto"})
	{
		st, body := doReq(t, ts.URL, "PUT", "/animals/"+itoa(calfID)+"/owners", ownerID, map[string]any{
			"owners": []map[string]any{
				{"owner_id": ownerA, "share_percent": "60"},
				{"owner_id": ownerB, "share_percent": 40},
			},
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 replace owners, got %d body=%s", st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "PUT", "/animals/"+itoa(calfID)+"/owners", ownerID, map[string]any{
			"owners": []map[string]any{
				{"owner_id": ownerA, "share_percent": "60"},
				{"owner_id": ownerB, "share_percent": "50"},
			},
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for shares over 100, got %d body=%s", st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/animals/"+itoa(calfID)+"/owners", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get owners, got %d body=%s", st, string(body))
		}
		var holdings []map[string]any
		_ = json.Unmarshal(body, &holdings)
		if len(holdings) != 2 {
			t.Fatalf("expected 2 owners after failed replace, got %d body=%s", len(holdings), string(body))
		}
	}

	// 4) Destete: A001 pasa de lote
	{
		st, body := doReq(t, ts.URL, "POST", "/animals/"+itoa(calfID)+"/relocate", ownerID, map[string]any{
			"to_lot_id": lotB,
			"reason":    "weaning",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 relocate, got %d body=%s", st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/animals/"+itoa(calfID)+"/relocate", ownerID, map[string]any{
			"to_lot_id": lotB,
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 relocating to current lot, got %d body=%s", st, string(body))
		}
	}

	// 5) Historial: más nuevo primero, con nombres de lote
	{
		st, body := doReq(t, ts.URL, "GET", "/animals/"+itoa(calfID)+"/movements", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 history, got %d body=%s", st, string(body))
		}
		var history []struct {
			FromID   *int64  `json:"from_id"`
			ToID     int64   `json:"to_id"`
			ToName   *string `json:"to_name"`
			Reason   string  `json:"reason"`
			Location string  `json:"location_kind"`
		}
		if err := json.Unmarshal(body, &history); err != nil {
			t.Fatalf("decode history: %v body=%s", err, string(body))
		}
		if len(history) != 2 {
			t.Fatalf("expected 2 movements, got %d body=%s", len(history), string(body))
		}
		if history[0].Reason != "weaning" || history[0].ToID != lotB {
			t.Fatalf("expected weaning to lot %d first, got %+v", lotB, history[0])
		}
		if history[0].FromID == nil || *history[0].FromID != lotA {
			t.Fatalf("expected from lot %d, got %v", lotA, history[0].FromID)
		}
		if history[0].ToName == nil || *history[0].ToName != "Destete" {
			t.Fatalf("expected to_name Destete, got %v", history[0].ToName)
		}
		if history[0].Location != "LOT" {
			t.Fatalf("expected location_kind LOT, got %q", history[0].Location)
		}
		if history[1].Reason != "registration" || history[1].FromID != nil {
			t.Fatalf("expected registration with no origin last, got %+v", history[1])
		}
	}
	{
		st, body, hdr := doRawReq(t, ts.URL, "GET", "/animals/"+itoa(calfID)+"/movements?format=xlsx", ownerID)
		if st != http.StatusOK {
			t.Fatalf("expected 200 xlsx history, got %d", st)
		}
		if !strings.Contains(hdr.Get("Content-Disposition"), "animal-"+itoa(calfID)+"-movements.xlsx") {
			t.Fatalf("unexpected content-disposition %q", hdr.Get("Content-Disposition"))
		}
		// xlsx es un zip
		if len(body) < 2 || string(body[:2]) != "PK" {
			t.Fatalf("expected zip payload, got %d bytes", len(body))
		}
	}

	// 6) Genealogía de la madre: A001 aparece como hijo
	{
		st, body := doReq(t, ts.URL, "GET", "/animals/"+itoa(motherID)+"/genealogy", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 genealogy, got %d body=%s", st, string(body))
		}
		var root struct {
			ID       int64 `json:"id"`
			Children []struct {
				ID  int64  `json:"id"`
				Tag string `json:"tag"`
			} `json:"children"`
		}
		_ = json.Unmarshal(body, &root)
		if root.ID != motherID || len(root.Children) != 1 || root.Children[0].Tag != "A001" {
			t.Fatalf("unexpected genealogy body=%s", string(body))
		}
	}

	// 7) El lote destino tiene al ternero y no se puede borrar
	{
		st, body := doReq(t, ts.URL, "GET", "/lots/"+itoa(lotB)+"/animals", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list animals, got %d body=%s", st, string(body))
		}
		var animals []map[string]any
		_ = json.Unmarshal(body, &animals)
		if len(animals) != 1 {
			t.Fatalf("expected 1 animal in lot %d, got %d", lotB, len(animals))
		}
	}
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/lots/"+itoa(lotB), ownerID, nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 deleting occupied lot, got %d", st)
		}
	}

	// 8) Ajeno a la granja: 403; sin usuario: 401
	{
		st, _ := doReq(t, ts.URL, "GET", "/animals/"+itoa(calfID), outsiderID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 for non-member, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/animals/"+itoa(calfID)+"/genealogy", outsiderID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 genealogy for non-member, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/animals/"+itoa(calfID)+"/movements", "", nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without user, got %d", st)
		}
	}

	// 9) Tras sumarlo como miembro, el otro usuario ya puede leer
	{
		st, body := doReq(t, ts.URL, "POST", "/farms/"+itoa(farmID)+"/members", ownerID, map[string]any{
			"user_id": 2,
		})
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 add member, got %d body=%s", st, string(body))
		}
		st, _ = doReq(t, ts.URL, "GET", "/animals/"+itoa(calfID), outsiderID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 after membership, got %d", st)
		}
	}
}

func TestHTTP_Genealogy_CycleIsConflict(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	userID := "1"
	farmID := createID(t, ts.URL, "/farms", userID, map[string]any{"name": "F"})
	paddockID := createID(t, ts.URL, "/paddocks", userID, map[string]any{"farm_id": farmID, "name": "P"})
	lotID := createID(t, ts.URL, "/lots", userID, map[string]any{"paddock_id": paddockID, "name": "L"})

	a := createID(t, ts.URL, "/animals", userID, map[string]any{
		"tag": "X1", "pedigree_code": "X1", "sex": "female", "lot_id": lotID,
	})
	b := createID(t, ts.URL, "/animals", userID, map[string]any{
		"tag": "X2", "pedigree_code": "X2", "sex": "female", "lot_id": lotID, "mother_id": a,
	})

	// cierra el ciclo a -> b -> a
	{
		st, body := doReq(t, ts.URL, "PATCH", "/animals/"+itoa(a), userID, map[string]any{"mother_id": b})
		if st != http.StatusOK {
			t.Fatalf("expected 200 patch, got %d body=%s", st, string(body))
		}
	}

	st, body := doReq(t, ts.URL, "GET", "/animals/"+itoa(a)+"/genealogy", userID, nil)
	if st != http.StatusConflict {
		t.Fatalf("expected 409 for cyclic pedigree, got %d body=%s", st, string(body))
	}
	var resp struct {
		Path []int64 `json:"path"`
	}
	_ = json.Unmarshal(body, &resp)
	if len(resp.Path) < 2 || resp.Path[0] != resp.Path[len(resp.Path)-1] {
		t.Fatalf("expected closed cycle path, got %v", resp.Path)
	}
}

func TestHTTP_Genealogy_TreeTooLargeIs422(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil, GenealogyMaxNodes: 1}))
	defer ts.Close()

	userID := "1"
	farmID := createID(t, ts.URL, "/farms", userID, map[string]any{"name": "F"})
	paddockID := createID(t, ts.URL, "/paddocks", userID, map[string]any{"farm_id": farmID, "name": "P"})
	lotID := createID(t, ts.URL, "/lots", userID, map[string]any{"paddock_id": paddockID, "name": "L"})

	mother := createID(t, ts.URL, "/animals", userID, map[string]any{
		"tag": "M1", "pedigree_code": "M1", "sex": "female", "lot_id": lotID,
	})
	calf := createID(t, ts.URL, "/animals", userID, map[string]any{
		"tag": "C1", "pedigree_code": "C1", "sex": "male", "lot_id": lotID, "mother_id": mother,
	})

	// raíz + madre = 2 nodos, el tope es 1
	st, body := doReq(t, ts.URL, "GET", "/animals/"+itoa(calf)+"/genealogy", userID, nil)
	if st != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for oversized tree, got %d body=%s", st, string(body))
	}
}

func TestHTTP_Animals_RejectsUnknownLot(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	st, _ := doReq(t, ts.URL, "POST", "/animals", "1", map[string]any{
		"tag": "Z1", "pedigree_code": "Z1", "sex": "male", "lot_id": 999,
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown lot, got %d", st)
	}
}

func TestHTTP_Health(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	st, body := doReq(t, ts.URL, "GET", "/health", "", nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("expected 200 ok, got %d %q", st, string(body))
	}
	st, _ = doReq(t, ts.URL, "GET", "/metrics", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 metrics, got %d", st)
	}
}

func createID(t *testing.T, baseURL, path, userID string, payload map[string]any) int64 {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", path, userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 POST %s, got %d body=%s", path, st, string(body))
	}

	var resp struct {
		ID int64 `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID <= 0 {
		t.Fatalf("POST %s: missing id body=%s", path, string(body))
	}
	return resp.ID
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

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

func doRawReq(t *testing.T, baseURL, method, path, debugUserID string) (int, []byte, http.Header) {
	t.Helper()

	req, err := http.NewRequest(method, baseURL+path, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("X-Debug-User-ID", debugUserID)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody, res.Header
}
