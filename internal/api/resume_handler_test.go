package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/harshshukla07/SwiftCV/internal/database"
	"github.com/harshshukla07/SwiftCV/internal/resume"
)

func newResumeHandlerForTest(db *gorm.DB, uploader ImageUploader) *ResumeHandler {
	return NewResumeHandler(db, uploader, "")
}

func seedResume(t *testing.T, db *gorm.DB, userID uint, title string, doc resume.Document) database.Resume {
	t.Helper()
	doc.Normalize()
	model := database.Resume{
		UserID:      userID,
		Title:       title,
		Template:    defaultTemplate,
		AccentColor: defaultAccentColor,
		Document:    datatypes.NewJSONType(doc),
	}
	if err := db.Create(&model).Error; err != nil {
		t.Fatalf("seed resume: %v", err)
	}
	return model
}

func sampleDocument() resume.Document {
	doc := resume.Document{
		ProfessionalSummary: "Backend engineer with a storage focus.",
		Skills:              []string{"Go", "PostgreSQL"},
		PersonalInfo: resume.PersonalInfo{
			FullName:   "Jane Doe",
			Profession: "Software Engineer",
			Email:      "jane@example.com",
		},
		Experience: []resume.Experience{{
			Company:     "Acme",
			Position:    "Engineer",
			StartDate:   "2021-01",
			EndDate:     "2023-06",
			Description: "Built the billing pipeline.",
		}},
	}
	doc.Normalize()
	return doc
}

func resumeFromBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	body := decodeBody(t, w)
	r, ok := body["resume"].(map[string]any)
	if !ok {
		t.Fatalf("response has no resume object: %v", body)
	}
	return r
}

func TestCreateResumeDefaults(t *testing.T) {
	db := newTestDB(t)
	handler := newResumeHandlerForTest(db, &fakeUploader{})
	user := seedUser(t, db, "jane@example.com")

	c, w := jsonContext(t, http.MethodPost, "/api/resumes/create", map[string]string{"title": "My Resume"})
	c.Set("userID", user.ID)
	handler.CreateResume(c)
	expectStatus(t, w, http.StatusCreated)

	r := resumeFromBody(t, w)
	if r["title"] != "My Resume" {
		t.Fatalf("title = %v", r["title"])
	}
	if r["template"] != defaultTemplate || r["accent_color"] != defaultAccentColor {
		t.Fatalf("defaults not applied: template=%v accent=%v", r["template"], r["accent_color"])
	}
	for _, key := range []string{"skills", "experience", "education", "projects"} {
		arr, ok := r[key].([]any)
		if !ok {
			t.Fatalf("%s should be an empty array, got %v", key, r[key])
		}
		if len(arr) != 0 {
			t.Fatalf("%s should start empty, got %v", key, arr)
		}
	}
}

func TestCreateResumeMissingTitle(t *testing.T) {
	db := newTestDB(t)
	handler := newResumeHandlerForTest(db, &fakeUploader{})
	user := seedUser(t, db, "jane@example.com")

	for _, payload := range []any{map[string]string{"title": "   "}, map[string]string{}} {
		c, w := jsonContext(t, http.MethodPost, "/api/resumes/create", payload)
		c.Set("userID", user.ID)
		handler.CreateResume(c)
		expectStatus(t, w, http.StatusBadRequest)
		if got := decodeBody(t, w)["message"]; got != "Title is required" {
			t.Fatalf("unexpected message %q", got)
		}
	}
}

func TestGetResumeOwnershipIsolation(t *testing.T) {
	db := newTestDB(t)
	handler := newResumeHandlerForTest(db, &fakeUploader{})
	owner := seedUser(t, db, "owner@example.com")
	intruder := seedUser(t, db, "intruder@example.com")
	model := seedResume(t, db, owner.ID, "Private", sampleDocument())

	c, w := jsonContext(t, http.MethodGet, "/api/resumes/get/1", nil)
	c.Set("userID", intruder.ID)
	c.Params = gin.Params{{Key: "id", Value: itoa(model.ID)}}
	handler.GetResume(c)
	expectStatus(t, w, http.StatusNotFound)

	if got := decodeBody(t, w)["message"]; got != "Resume not found" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestGetResumeOmitsTimestamps(t *testing.T) {
	db := newTestDB(t)
	handler := newResumeHandlerForTest(db, &fakeUploader{})
	user := seedUser(t, db, "jane@example.com")
	model := seedResume(t, db, user.ID, "Draft", sampleDocument())

	c, w := jsonContext(t, http.MethodGet, "/api/resumes/get/1", nil)
	c.Set("userID", user.ID)
	c.Params = gin.Params{{Key: "id", Value: itoa(model.ID)}}
	handler.GetResume(c)
	expectStatus(t, w, http.StatusOK)

	r := resumeFromBody(t, w)
	if _, present := r["created_at"]; present {
		t.Fatal("owner read should not expose created_at")
	}
	if _, present := r["updated_at"]; present {
		t.Fatal("owner read should not expose updated_at")
	}
	if r["professional_summary"] != "Backend engineer with a storage focus." {
		t.Fatalf("document not returned: %v", r["professional_summary"])
	}
}

func TestGetPublicResumeRespectsFlag(t *testing.T) {
	db := newTestDB(t)
	handler := newResumeHandlerForTest(db, &fakeUploader{})
	user := seedUser(t, db, "jane@example.com")
	model := seedResume(t, db, user.ID, "Draft", sampleDocument())

	c, w := jsonContext(t, http.MethodGet, "/api/resumes/public/1", nil)
	c.Params = gin.Params{{Key: "id", Value: itoa(model.ID)}}
	handler.GetPublicResume(c)
	expectStatus(t, w, http.StatusNotFound)
	if got := decodeBody(t, w)["message"]; got != "Resume not found or is not public" {
		t.Fatalf("unexpected message %q", got)
	}

	if err := db.Model(&database.Resume{}).Where("id = ?", model.ID).Update("public", true).Error; err != nil {
		t.Fatalf("flip public flag: %v", err)
	}

	c, w = jsonContext(t, http.MethodGet, "/api/resumes/public/1", nil)
	c.Params = gin.Params{{Key: "id", Value: itoa(model.ID)}}
	handler.GetPublicResume(c)
	expectStatus(t, w, http.StatusOK)

	r := resumeFromBody(t, w)
	if uint(r["id"].(float64)) != model.ID {
		t.Fatalf("wrong resume returned: %v", r["id"])
	}
}

func TestUpdateResumeRoundTrip(t *testing.T) {
	db := newTestDB(t)
	handler := newResumeHandlerForTest(db, &fakeUploader{})
	user := seedUser(t, db, "jane@example.com")
	model := seedResume(t, db, user.ID, "Draft", resume.Document{})

	payload := map[string]any{
		"resumeId": model.ID,
		"resumeData": map[string]any{
			"title":                "Updated Draft",
			"public":               true,
			"template":             "classic",
			"accent_color":         "#123456",
			"professional_summary": "Rewritten summary.",
			"skills":               []string{"Go"},
			"personal_info":        map[string]any{"full_name": "Jane Doe"},
			"experience": []map[string]any{{
				"company":  "Acme",
				"position": "Engineer",
			}},
		},
	}
	c, w := jsonContext(t, http.MethodPut, "/api/resumes/update", payload)
	c.Set("userID", user.ID)
	handler.UpdateResume(c)
	expectStatus(t, w, http.StatusOK)

	// The owner read returns exactly what was submitted, sans timestamps.
	c, w = jsonContext(t, http.MethodGet, "/api/resumes/get/1", nil)
	c.Set("userID", user.ID)
	c.Params = gin.Params{{Key: "id", Value: itoa(model.ID)}}
	handler.GetResume(c)
	expectStatus(t, w, http.StatusOK)

	r := resumeFromBody(t, w)
	if r["title"] != "Updated Draft" || r["template"] != "classic" || r["accent_color"] != "#123456" {
		t.Fatalf("columns not replaced: %v", r)
	}
	if r["public"] != true {
		t.Fatal("public flag not persisted")
	}
	if r["professional_summary"] != "Rewritten summary." {
		t.Fatalf("summary not replaced: %v", r["professional_summary"])
	}
	exp, _ := r["experience"].([]any)
	if len(exp) != 1 {
		t.Fatalf("expected 1 experience entry, got %v", r["experience"])
	}
	if entry := exp[0].(map[string]any); entry["company"] != "Acme" {
		t.Fatalf("experience not persisted: %v", entry)
	}
}

func TestUpdateResumeRejectsUnknownFields(t *testing.T) {
	db := newTestDB(t)
	handler := newResumeHandlerForTest(db, &fakeUploader{})
	user := seedUser(t, db, "jane@example.com")
	model := seedResume(t, db, user.ID, "Draft", sampleDocument())

	payload := map[string]any{
		"resumeId": model.ID,
		"resumeData": map[string]any{
			"title":     "Draft",
			"hobbies":   []string{"golf"},
			"is_public": true,
		},
	}
	c, w := jsonContext(t, http.MethodPut, "/api/resumes/update", payload)
	c.Set("userID", user.ID)
	handler.UpdateResume(c)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestUpdateResumeMissingTarget(t *testing.T) {
	db := newTestDB(t)
	handler := newResumeHandlerForTest(db, &fakeUploader{})
	user := seedUser(t, db, "jane@example.com")

	payload := map[string]any{
		"resumeId":   9999,
		"resumeData": map[string]any{"title": "Ghost"},
	}
	c, w := jsonContext(t, http.MethodPut, "/api/resumes/update", payload)
	c.Set("userID", user.ID)
	handler.UpdateResume(c)
	expectStatus(t, w, http.StatusNotFound)

	if got := decodeBody(t, w)["message"]; got != "Resume not found" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestUpdateResumeMultipartImage(t *testing.T) {
	db := newTestDB(t)
	uploader := &fakeUploader{url: "https://cdn.example.com/profile.png"}
	handler := newResumeHandlerForTest(db, uploader)
	user := seedUser(t, db, "jane@example.com")
	model := seedResume(t, db, user.ID, "Draft", sampleDocument())

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("resumeId", itoa(model.ID)); err != nil {
		t.Fatalf("write resumeId: %v", err)
	}
	if err := form.WriteField("resumeData", `{"title":"Draft"}`); err != nil {
		t.Fatalf("write resumeData: %v", err)
	}
	if err := form.WriteField("removeBackground", "true"); err != nil {
		t.Fatalf("write removeBackground: %v", err)
	}
	part, err := form.CreateFormFile("image", "headshot.png")
	if err != nil {
		t.Fatalf("create image part: %v", err)
	}
	part.Write([]byte("fake png bytes"))
	form.Close()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/api/resumes/update", &buf)
	c.Request.Header.Set("Content-Type", form.FormDataContentType())
	c.Set("userID", user.ID)
	handler.UpdateResume(c)
	expectStatus(t, w, http.StatusOK)

	if uploader.calls != 1 {
		t.Fatalf("expected one upload, got %d", uploader.calls)
	}
	if !uploader.removeBackground {
		t.Fatal("removeBackground flag not forwarded")
	}

	r := resumeFromBody(t, w)
	info, _ := r["personal_info"].(map[string]any)
	if info == nil || info["image"] != uploader.url {
		t.Fatalf("hosted image url not stored: %v", r["personal_info"])
	}
}

func TestDeleteResumeIdempotent(t *testing.T) {
	db := newTestDB(t)
	handler := newResumeHandlerForTest(db, &fakeUploader{})
	user := seedUser(t, db, "jane@example.com")
	model := seedResume(t, db, user.ID, "Draft", sampleDocument())

	for i := 0; i < 2; i++ {
		c, w := jsonContext(t, http.MethodDelete, "/api/resumes/delete/1", nil)
		c.Set("userID", user.ID)
		c.Params = gin.Params{{Key: "id", Value: itoa(model.ID)}}
		handler.DeleteResume(c)
		expectStatus(t, w, http.StatusOK)
		if got := decodeBody(t, w)["message"]; got != "Resume deleted successfully" {
			t.Fatalf("pass %d: unexpected message %q", i, got)
		}
	}

	var count int64
	if err := db.Model(&database.Resume{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("resume still present after delete, count=%d", count)
	}
}

func TestDuplicateResumeTitleChain(t *testing.T) {
	db := newTestDB(t)
	handler := newResumeHandlerForTest(db, &fakeUploader{})
	user := seedUser(t, db, "jane@example.com")
	source := seedResume(t, db, user.ID, "Draft", sampleDocument())

	duplicate := func(id uint) map[string]any {
		c, w := jsonContext(t, http.MethodPost, "/api/resumes/duplicate", map[string]uint{"resumeId": id})
		c.Set("userID", user.ID)
		handler.DuplicateResume(c)
		expectStatus(t, w, http.StatusCreated)
		return resumeFromBody(t, w)
	}

	first := duplicate(source.ID)
	if first["title"] != "Draft (Copy)" {
		t.Fatalf("first copy title = %v", first["title"])
	}
	if uint(first["id"].(float64)) == source.ID {
		t.Fatal("duplicate reused the source id")
	}

	second := duplicate(source.ID)
	if second["title"] != "Draft (Copy 2)" {
		t.Fatalf("second copy title = %v", second["title"])
	}

	// Duplicating a copy collapses the suffix instead of stacking it.
	third := duplicate(uint(first["id"].(float64)))
	if third["title"] != "Draft (Copy 3)" {
		t.Fatalf("copy-of-copy title = %v", third["title"])
	}

	// Content matches the source even though the title differs.
	skills, _ := first["skills"].([]any)
	if len(skills) != 2 || skills[0] != "Go" {
		t.Fatalf("skills not copied: %v", first["skills"])
	}
	exp, _ := first["experience"].([]any)
	if len(exp) != 1 || exp[0].(map[string]any)["company"] != "Acme" {
		t.Fatalf("experience not copied: %v", first["experience"])
	}
}

func TestDuplicateResumeMissingSource(t *testing.T) {
	db := newTestDB(t)
	handler := newResumeHandlerForTest(db, &fakeUploader{})
	user := seedUser(t, db, "jane@example.com")

	c, w := jsonContext(t, http.MethodPost, "/api/resumes/duplicate", map[string]uint{"resumeId": 404})
	c.Set("userID", user.ID)
	handler.DuplicateResume(c)
	expectStatus(t, w, http.StatusNotFound)
}
