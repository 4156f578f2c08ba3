package tests

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/sweet-shop/internal/adapter/auth"
	"github.com/rl1809/sweet-shop/internal/adapter/handler"
	"github.com/rl1809/sweet-shop/internal/adapter/storage"
	"github.com/rl1809/sweet-shop/internal/core/service"
	"github.com/rl1809/sweet-shop/internal/obs"
	"github.com/rl1809/sweet-shop/internal/port"
)

type testEnv struct {
	server *httptest.Server
	client *http.Client
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	obs.InitLogger()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "root:root@tcp(localhost:3306)/sweetshop?parseTime=true"
	}

	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	adapter := storage.NewMySQLAdapter(db)
	if err := adapter.InitSchema(context.Background()); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	// Redis is optional; without it the replay guard is simply off.
	var cache port.CacheRepository
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(context.Background()).Err(); err == nil {
		cache = storage.NewRedisAdapter(rdb)
	}

	tokens, err := auth.NewJWTService("integration-secret", "HS256", time.Hour)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}

	h := handler.NewHTTPHandler(
		service.NewAuthService(adapter.Users, auth.NewBcryptHasher(), tokens),
		service.NewCategoryService(adapter.Categories),
		service.NewSweetService(adapter.Sweets, adapter.Categories, cache),
		tokens,
	)

	server := httptest.NewServer(handler.NewRouter(h))
	t.Cleanup(func() {
		server.Close()
		rdb.Close()
		db.Close()
	})

	return &testEnv{server: server, client: server.Client()}
}

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message *string         `json:"message"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, env
}

func (e *testEnv) registerAndLogin(t *testing.T, isAdmin bool) string {
	t.Helper()

	email := fmt.Sprintf("it-%s@example.com", uuid.NewString())
	status, _ := e.do(t, "POST", "/api/auth/register", "", map[string]any{
		"username": "Integration",
		"email":    email,
		"password": "Password123",
		"is_admin": isAdmin,
	})
	if status != http.StatusCreated {
		t.Fatalf("register returned %d", status)
	}

	status, env := e.do(t, "POST", "/api/auth/login", "", map[string]any{
		"email":    email,
		"password": "Password123",
	})
	if status != http.StatusOK {
		t.Fatalf("login returned %d", status)
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	return data.Token
}

type sweetData struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Category struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	} `json:"category"`
}

func (e *testEnv) createSweet(t *testing.T, token string, quantity int) sweetData {
	t.Helper()

	categoryName := "IT " + uuid.NewString()[:8]
	status, env := e.do(t, "POST", "/api/sweets/categories", token, map[string]any{"name": categoryName})
	if status != http.StatusCreated {
		t.Fatalf("create category returned %d", status)
	}
	var category struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(env.Data, &category); err != nil {
		t.Fatalf("decode category: %v", err)
	}

	status, env = e.do(t, "POST", "/api/sweets", token, map[string]any{
		"name":     "Ladoo",
		"category": category.ID,
		"price":    10,
		"quantity": quantity,
	})
	if status != http.StatusCreated {
		t.Fatalf("create sweet returned %d", status)
	}
	var sweet sweetData
	if err := json.Unmarshal(env.Data, &sweet); err != nil {
		t.Fatalf("decode sweet: %v", err)
	}
	return sweet
}

func TestIntegration_InventoryScenario(t *testing.T) {
	env := setupTestEnv(t)
	token := env.registerAndLogin(t, true)

	sweet := env.createSweet(t, token, 100)
	if sweet.Quantity != 100 {
		t.Fatalf("expected quantity 100, got %d", sweet.Quantity)
	}
	if sweet.Category.Name == "" {
		t.Fatal("expected expanded category")
	}

	status, resp := env.do(t, "POST", "/api/sweets/"+sweet.ID+"/purchase", token, map[string]any{"quantity": 5})
	if status != http.StatusOK {
		t.Fatalf("purchase returned %d", status)
	}
	var after sweetData
	json.Unmarshal(resp.Data, &after)
	if after.Quantity != 95 {
		t.Errorf("after purchase: expected 95, got %d", after.Quantity)
	}

	status, resp = env.do(t, "POST", "/api/sweets/"+sweet.ID+"/restock", token, map[string]any{"quantity": 10})
	if status != http.StatusOK {
		t.Fatalf("restock returned %d", status)
	}
	json.Unmarshal(resp.Data, &after)
	if after.Quantity != 105 {
		t.Errorf("after restock: expected 105, got %d", after.Quantity)
	}

	status, _ = env.do(t, "POST", "/api/sweets/"+sweet.ID+"/purchase", token, map[string]any{"quantity": 1000})
	if status != http.StatusConflict {
		t.Errorf("oversized purchase: expected 409, got %d", status)
	}

	query := url.Values{"name": {"Ladoo"}, "category": {sweet.Category.Name}}
	status, resp = env.do(t, "GET", "/api/sweets/search?"+query.Encode(), token, nil)
	if status != http.StatusOK {
		t.Fatalf("search returned %d", status)
	}
	var results []sweetData
	json.Unmarshal(resp.Data, &results)
	if len(results) != 1 || results[0].Quantity != 105 {
		t.Errorf("expected one sweet at quantity 105, got %+v", results)
	}
}

func TestIntegration_ConcurrentPurchases(t *testing.T) {
	env := setupTestEnv(t)
	token := env.registerAndLogin(t, true)

	initialStock := 20
	totalRequests := 50

	sweet := env.createSweet(t, token, initialStock)

	var successCount atomic.Int32
	var conflictCount atomic.Int32
	var wg sync.WaitGroup

	purchase := func() (int, error) {
		body := bytes.NewBufferString(`{"quantity": 1}`)
		req, err := http.NewRequest("POST", env.server.URL+"/api/sweets/"+sweet.ID+"/purchase", body)
		if err != nil {
			return 0, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := env.client.Do(req)
		if err != nil {
			return 0, err
		}
		resp.Body.Close()
		return resp.StatusCode, nil
	}

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, err := purchase()
			if err != nil {
				t.Errorf("purchase request failed: %v", err)
				return
			}
			switch status {
			case http.StatusOK:
				successCount.Add(1)
			case http.StatusConflict:
				conflictCount.Add(1)
			default:
				t.Errorf("unexpected status %d", status)
			}
		}()
	}

	wg.Wait()

	if successCount.Load() != int32(initialStock) {
		t.Errorf("expected %d successful purchases, got %d", initialStock, successCount.Load())
	}
	if conflictCount.Load() != int32(totalRequests-initialStock) {
		t.Errorf("expected %d conflicts, got %d", totalRequests-initialStock, conflictCount.Load())
	}

	query := url.Values{"name": {"Ladoo"}, "min_quantity": {"0"}, "category": {sweet.Category.Name}}
	status, resp := env.do(t, "GET", "/api/sweets/search?"+query.Encode(), token, nil)
	if status != http.StatusOK {
		t.Fatalf("search returned %d", status)
	}
	var results []sweetData
	json.Unmarshal(resp.Data, &results)
	if len(results) != 1 || results[0].Quantity != 0 {
		t.Errorf("expected quantity 0, got %+v", results)
	}
}

func TestIntegration_AdminGating(t *testing.T) {
	env := setupTestEnv(t)
	adminToken := env.registerAndLogin(t, true)
	userToken := env.registerAndLogin(t, false)

	sweet := env.createSweet(t, adminToken, 10)

	status, _ := env.do(t, "POST", "/api/sweets/"+sweet.ID+"/restock", userToken, map[string]any{"quantity": 5})
	if status != http.StatusForbidden {
		t.Errorf("non-admin restock: expected 403, got %d", status)
	}

	status, _ = env.do(t, "DELETE", "/api/sweets/"+sweet.ID, userToken, nil)
	if status != http.StatusForbidden {
		t.Errorf("non-admin delete: expected 403, got %d", status)
	}

	status, _ = env.do(t, "DELETE", "/api/sweets/"+sweet.ID, adminToken, nil)
	if status != http.StatusOK {
		t.Errorf("admin delete: expected 200, got %d", status)
	}
}
