package blog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ad/go-telegram-blog/internal/models"
)

func TestMeta(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/bot/meta/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q, want Bearer secret", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.BlogMeta{
			Categories: []models.Category{{Title: "Go", Slug: "go"}},
			Tags:       []models.Tag{{Title: "Bots", Slug: "bots"}, {Title: "Web", Slug: "web"}},
		})
	}))
	defer server.Close()

	client := New(server.URL+"/", "secret")

	meta, err := client.Meta(context.Background())
	if err != nil {
		t.Fatalf("Meta returned error: %v", err)
	}
	if len(meta.Categories) != 1 || meta.Categories[0].Slug != "go" {
		t.Errorf("unexpected categories: %+v", meta.Categories)
	}
	if len(meta.Tags) != 2 {
		t.Errorf("unexpected tags: %+v", meta.Tags)
	}
}

func TestMetaNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	client := New(server.URL, "secret")

	if _, err := client.Meta(context.Background()); err == nil {
		t.Fatal("expected error on 403, got nil")
	}
}

func TestCreatePostWithoutImageSendsForm(t *testing.T) {
	var gotForm map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/bot/post/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
			t.Errorf("Content-Type = %q, want urlencoded form", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		gotForm = map[string]string{}
		for key := range r.PostForm {
			gotForm[key] = r.PostForm.Get(key)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"ok": true, "url": "https://blog.example/posts/my-title"}`)
	}))
	defer server.Close()

	client := New(server.URL, "secret")
	draft := &models.Draft{
		Title:        "My Title",
		Body:         "My Body",
		Description:  "Desc",
		CategorySlug: "go",
		SelectedTags: []string{"bots", "web"},
	}

	url, err := client.CreatePost(context.Background(), draft, nil)
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if url != "https://blog.example/posts/my-title" {
		t.Errorf("url = %q", url)
	}

	want := map[string]string{
		"title":         "My Title",
		"body":          "My Body",
		"description":   "Desc",
		"category_slug": "go",
		"tag_slugs":     "bots,web",
	}
	for key, value := range want {
		if gotForm[key] != value {
			t.Errorf("form[%q] = %q, want %q", key, gotForm[key], value)
		}
	}
}

func TestCreatePostWithImageSendsMultipart(t *testing.T) {
	image := []byte{0xff, 0xd8, 0xff, 0x00}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/form-data") {
			t.Errorf("Content-Type = %q, want multipart", ct)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatal(err)
		}
		if got := r.FormValue("title"); got != "With Cover" {
			t.Errorf("title = %q", got)
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			t.Fatalf("missing image part: %v", err)
		}
		defer file.Close()
		if header.Filename != "post.jpg" {
			t.Errorf("filename = %q", header.Filename)
		}
		data, _ := io.ReadAll(file)
		if len(data) != len(image) {
			t.Errorf("image size = %d, want %d", len(data), len(image))
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"ok": true, "url": "https://blog.example/posts/with-cover"}`)
	}))
	defer server.Close()

	client := New(server.URL, "secret")
	draft := &models.Draft{Title: "With Cover", Body: "b", CategorySlug: "go"}

	url, err := client.CreatePost(context.Background(), draft, image)
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if url != "https://blog.example/posts/with-cover" {
		t.Errorf("url = %q", url)
	}
}

func TestCreatePostFailures(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
	}{
		{"server error", http.StatusInternalServerError, "text/plain", "boom"},
		{"api rejects", http.StatusOK, "application/json", `{"ok": false}`},
		{"non-json success", http.StatusOK, "text/html", "<html>login</html>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			client := New(server.URL, "secret")
			if _, err := client.CreatePost(context.Background(), &models.Draft{Title: "t"}, nil); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestBaseURLTrailingSlashTrimmed(t *testing.T) {
	client := New("https://blog.example///", "secret")
	if client.baseURL != "https://blog.example" {
		t.Errorf("baseURL = %q", client.baseURL)
	}
}
