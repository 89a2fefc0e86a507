package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/lumo/internal/config"
	"github.com/example/lumo/internal/database"
	"github.com/example/lumo/internal/models"
	"github.com/example/lumo/internal/routes"
	"github.com/example/lumo/internal/services"
	"github.com/example/lumo/internal/utils"
)

const testSecret = "test-jwt-secret"

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		AppPort:           "0",
		JWTSecret:         testSecret,
		OrderConfirmation: config.ConfirmationManual,
		Currency:          "usd",
		StorageDriver:     config.StorageLocal,
		UploadDir:         t.TempDir(),
		UploadBaseURL:     "/uploads",
	}
}

func newTestApp(t *testing.T, db *gorm.DB, cfg *config.Config) *fiber.App {
	t.Helper()

	app := fiber.New()
	require.NoError(t, routes.Register(app, db, cfg))
	return app
}

func seedUser(t *testing.T, db *gorm.DB, clerkID, email string) *models.User {
	t.Helper()

	user, err := services.EnsureUser(db, clerkID, email)
	require.NoError(t, err)
	return user
}

func authToken(t *testing.T, clerkID string) string {
	t.Helper()

	token, err := utils.GenerateToken(testSecret, clerkID, time.Hour)
	require.NoError(t, err)
	return token
}

func seedService(t *testing.T, db *gorm.DB, owner *models.User, title string, price int64) *models.Service {
	t.Helper()

	service := &models.Service{
		UserID:       owner.ID,
		Title:        title,
		Description:  title + " description",
		ShortDesc:    title + " short",
		Category:     "design",
		Subcategory:  "logo-design",
		Price:        price,
		DeliveryTime: 3,
		Revisions:    2,
		Features:     []string{"source files", "commercial use"},
		Images:       []models.ServiceImage{{URL: "/uploads/seed.png", StorageID: "seed.png"}},
	}
	require.NoError(t, db.Create(service).Error)
	return service
}

func seedOrder(t *testing.T, db *gorm.DB, buyer *models.User, service *models.Service, completed bool) *models.Order {
	t.Helper()

	order := &models.Order{
		BuyerID:     buyer.ID,
		ServiceID:   service.ID,
		Price:       service.Price,
		IsCompleted: completed,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func doJSON(t *testing.T, app *fiber.App, method, target, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func imagesForm(t *testing.T, names ...string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, name := range names {
		part, err := writer.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes for " + name))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}
