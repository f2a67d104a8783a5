package http

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"pettech-backend/internal/bootstrap"
	"pettech-backend/internal/config"
	"pettech-backend/internal/platform/database"
)

type fixedEngine struct {
	scores []float32
}

func (e *fixedEngine) Run([]float32) ([]float32, error) {
	return append([]float32(nil), e.scores...), nil
}
func (e *fixedEngine) InputShape() []int64 { return []int64{1, 4, 4, 3} }
func (e *fixedEngine) Close() error        { return nil }

func setupRouter(t *testing.T) (*gin.Engine, *bootstrap.App) {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Name = "pettech-test"
	cfg.App.GinMode = gin.TestMode
	cfg.App.PublicBaseURL = "http://127.0.0.1:20000"
	cfg.App.CORSOrigins = []string{"http://localhost:5000"}
	cfg.App.MaxUploadMB = 1
	cfg.Auth.PasswordMode = "plain"
	cfg.Database.Driver = "sqlite"
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "pettech.sqlite")
	cfg.Database.AutoMigrate = true
	cfg.Vision.ModelPath = "optimized_model.onnx"
	cfg.Vision.UploadDir = filepath.Join(t.TempDir(), "uploads")
	cfg.Vision.InputSize = 4

	db, err := database.New(context.Background(), database.Options{Driver: "sqlite", DSN: cfg.DSN()})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := bootstrap.Assemble(context.Background(), cfg, logger, bootstrap.Deps{
		DB:     db,
		Engine: &fixedEngine{scores: []float32{0.1, 0.8725, 0.0275}},
	})
	if err != nil {
		t.Fatalf("assemble app: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })

	return NewRouter(app), app
}

func postJSON(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(nethttp.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func uploadFile(t *testing.T, router *gin.Engine, field, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(nethttp.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

const registration = `{"owner_name":"Ana","owner_mobile":"5550100","animal_type":"dog","animal_age":3,"owner_email":"ana@pets.test","password":"s3cret"}`

func TestRouter_RegisterAndLogin(t *testing.T) {
	router, _ := setupRouter(t)

	for want := 1.0; want <= 2; want++ {
		rec := postJSON(t, router, "/save_user_registration_details", registration)
		if rec.Code != nethttp.StatusOK {
			t.Fatalf("register status = %d body=%s", rec.Code, rec.Body.String())
		}
		body := decode(t, rec)
		if body["message"] != "Registration successful" {
			t.Fatalf("unexpected message %v", body["message"])
		}
		details := body["details"].(map[string]any)
		if details["registration_number"] != want {
			t.Fatalf("registration_number = %v, want %v", details["registration_number"], want)
		}
	}

	rec := postJSON(t, router, "/verify_login", `{"owner_email":"ana@pets.test","password":"s3cret"}`)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("login status = %d body=%s", rec.Code, rec.Body.String())
	}
	details := decode(t, rec)["details"].(map[string]any)
	if details["owner_name"] != "Ana" || details["id"] != 1.0 {
		t.Fatalf("unexpected login details %v", details)
	}

	for _, body := range []string{
		`{"owner_email":"ana@pets.test","password":"S3CRET"}`,
		`{"owner_email":"ANA@pets.test","password":"s3cret"}`,
		`{"owner_email":"nobody@pets.test","password":"s3cret"}`,
	} {
		rec := postJSON(t, router, "/verify_login", body)
		if rec.Code != nethttp.StatusUnauthorized {
			t.Fatalf("login %s status = %d, want 401", body, rec.Code)
		}
		if got := decode(t, rec)["detail"]; got != "Invalid email or password" {
			t.Fatalf("detail = %v", got)
		}
	}
}

func TestRouter_RegistrationValidation(t *testing.T) {
	router, _ := setupRouter(t)

	tests := []struct {
		name       string
		body       string
		wantDetail string
	}{
		{"missing email", `{"owner_name":"Ana","owner_mobile":"1","animal_type":"dog","animal_age":3,"password":"x"}`, "owner_email is required"},
		{"age as text", `{"owner_name":"Ana","owner_mobile":"1","animal_type":"dog","animal_age":"three","owner_email":"a@b","password":"x"}`, "animal_age must be int"},
		{"negative age", `{"owner_name":"Ana","owner_mobile":"1","animal_type":"dog","animal_age":-1,"owner_email":"a@b","password":"x"}`, "animal_age must be >= 0"},
		{"not json", `owner_name=Ana`, "body must be a JSON object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, router, "/save_user_registration_details", tt.body)
			if rec.Code != nethttp.StatusBadRequest {
				t.Fatalf("status = %d, want 400 body=%s", rec.Code, rec.Body.String())
			}
			detail, _ := decode(t, rec)["detail"].(string)
			if !strings.Contains(detail, tt.wantDetail) {
				t.Fatalf("detail = %q, want it to contain %q", detail, tt.wantDetail)
			}
		})
	}
}

func TestRouter_SaveAppointmentEchoesID(t *testing.T) {
	router, _ := setupRouter(t)

	body := `{"appointment_id":"APT-42","name":"Ana","email":"ana@pets.test","mobile":"5550100","date":"2026-10-20","time":"09:30","message":"limping"}`
	for i := 0; i < 2; i++ {
		rec := postJSON(t, router, "/save_appointment/", body)
		if rec.Code != nethttp.StatusOK {
			t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
		}
		out := decode(t, rec)
		details := out["details"].(map[string]any)
		if out["success"] != true || details["appointment_id"] != "APT-42" {
			t.Fatalf("unexpected body %v", out)
		}
	}

	rec := postJSON(t, router, "/save_appointment/", `{"appointment_id":"APT-43"}`)
	if rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("incomplete appointment status = %d, want 400", rec.Code)
	}
}

func TestRouter_UploadClassifiesAndServesImage(t *testing.T) {
	router, _ := setupRouter(t)
	data := pngBytes(t)

	rec := uploadFile(t, router, "file", "pet.png", data)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("upload status = %d body=%s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["disease"] != "Fungal" || body["confidence"] != 87.25 {
		t.Fatalf("unexpected prediction %v", body)
	}
	if body["image_path"] != "http://127.0.0.1:20000/uploads/pet.png" {
		t.Fatalf("image_path = %v", body["image_path"])
	}
	if body["explanation"] != "The model detected 'Fungal' with 87.25% confidence." {
		t.Fatalf("explanation = %v", body["explanation"])
	}
	if body["message"] != "Upload successful! Prediction complete." {
		t.Fatalf("message = %v", body["message"])
	}

	get := httptest.NewRecorder()
	router.ServeHTTP(get, httptest.NewRequest(nethttp.MethodGet, "/uploads/pet.png", nil))
	if get.Code != nethttp.StatusOK || !bytes.Equal(get.Body.Bytes(), data) {
		t.Fatalf("static upload status = %d, bytes equal = %v", get.Code, bytes.Equal(get.Body.Bytes(), data))
	}

	rec = uploadFile(t, router, "file", "pet.png", data)
	if got := decode(t, rec)["image_path"]; got != "http://127.0.0.1:20000/uploads/pet_old.png" {
		t.Fatalf("second upload image_path = %v", got)
	}
}

func TestRouter_UploadFailures(t *testing.T) {
	router, _ := setupRouter(t)

	rec := uploadFile(t, router, "image", "pet.png", pngBytes(t))
	if rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("wrong field status = %d, want 400", rec.Code)
	}

	rec = uploadFile(t, router, "file", "notes.png", []byte("not an image"))
	if rec.Code != nethttp.StatusInternalServerError {
		t.Fatalf("undecodable status = %d, want 500", rec.Code)
	}
	if detail, _ := decode(t, rec)["detail"].(string); !strings.HasPrefix(detail, "An error occurred: ") {
		t.Fatalf("detail = %q", detail)
	}

	rec = uploadFile(t, router, "file", "big.png", bytes.Repeat([]byte{0}, 2<<20))
	if rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("oversize status = %d, want 400", rec.Code)
	}
}

func TestRouter_HealthMetricsAndCORS(t *testing.T) {
	router, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/healthz", nil))
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("healthz status = %d body=%s", rec.Code, rec.Body.String())
	}
	deps := decode(t, rec)["dependencies"].(map[string]any)
	for _, name := range []string{"database", "redis", "rabbitmq", "model"} {
		status := deps[name].(map[string]any)
		if status["ok"] != true {
			t.Fatalf("%s not ok: %v", name, status)
		}
	}

	uploadFile(t, router, "file", "pet.png", pngBytes(t))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `classifications_total{label="Fungal"} 1`) {
		t.Fatalf("metrics missing classification counter:\n%s", rec.Body.String())
	}

	req := httptest.NewRequest(nethttp.MethodOptions, "/upload", nil)
	req.Header.Set("Origin", "http://localhost:5000")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != nethttp.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5000" {
		t.Fatalf("missing CORS header")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing request id")
	}
}

func TestRouter_RequiredMeansPresent(t *testing.T) {
	router, _ := setupRouter(t)

	noMessage := `{"appointment_id":"APT-50","name":"Ana","email":"ana@pets.test","mobile":"5550100","date":"2026-10-20","time":"09:30"}`
	rec := postJSON(t, router, "/save_appointment/", noMessage)
	if rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("missing message status = %d, want 400", rec.Code)
	}
	if detail, _ := decode(t, rec)["detail"].(string); !strings.Contains(detail, "message is required") {
		t.Fatalf("detail = %q", detail)
	}

	emptyMessage := `{"appointment_id":"APT-51","name":"Ana","email":"ana@pets.test","mobile":"5550100","date":"2026-10-20","time":"09:30","message":""}`
	if rec := postJSON(t, router, "/save_appointment/", emptyMessage); rec.Code != nethttp.StatusOK {
		t.Fatalf("empty message status = %d body=%s", rec.Code, rec.Body.String())
	}

	emptyPassword := `{"owner_name":"Ana","owner_mobile":"","animal_type":"dog","animal_age":3,"owner_email":"ana@pets.test","password":""}`
	if rec := postJSON(t, router, "/save_user_registration_details", emptyPassword); rec.Code != nethttp.StatusOK {
		t.Fatalf("empty password status = %d body=%s", rec.Code, rec.Body.String())
	}
	if rec := postJSON(t, router, "/verify_login", `{"owner_email":"ana@pets.test","password":""}`); rec.Code != nethttp.StatusOK {
		t.Fatalf("empty password login status = %d body=%s", rec.Code, rec.Body.String())
	}
	if rec := postJSON(t, router, "/verify_login", `{"owner_email":"ana@pets.test"}`); rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("absent password login status = %d, want 400", rec.Code)
	}
}
