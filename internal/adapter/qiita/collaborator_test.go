package qiita

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/bornholm/crosspost/internal/core/port"
	"github.com/bornholm/crosspost/internal/setup"
	"github.com/bornholm/crosspost/pkg/qiita"
	"github.com/pkg/errors"
)

func TestPublish(t *testing.T) {
	var received []qiita.ItemPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if e, g := "Bearer secret", r.Header.Get("Authorization"); e != g {
			t.Errorf("Authorization: expected '%v', got '%v'", e, g)
		}

		var payload qiita.ItemPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("%+v", errors.WithStack(err))
		}

		received = append(received, payload)

		id := "c686397e4a0f4f11683d"

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v2/items":
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodPatch && r.URL.Path == "/api/v2/items/"+id:
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}

		json.NewEncoder(w).Encode(qiita.Item{
			ID:    id,
			Title: payload.Title,
			URL:   "https://qiita.com/tinou/items/" + id,
		})
	}))
	defer server.Close()

	collaborator, err := setup.Collaborator.From(collaboratorURL(server, "secret") + "&private=true")
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	variant := &model.Variant{
		Platform: "qiita",
		Content:  "# First\n\nSummary.\n",
		Metadata: model.VariantMetadata{
			Title: "First",
			Slug:  "first-article",
			Tags:  []string{"go", "markdown"},
		},
	}

	ref, err := collaborator.Publish(context.Background(), variant)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := "https://qiita.com/tinou/items/c686397e4a0f4f11683d", ref.URL; e != g {
		t.Errorf("ref.URL: expected '%v', got '%v'", e, g)
	}

	variant.Metadata.ID = ref.ID

	if _, err := collaborator.Publish(context.Background(), variant); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := 2, len(received); e != g {
		t.Fatalf("len(received): expected '%v', got '%v'", e, g)
	}

	first := received[0]

	if e, g := variant.Content, first.Body; e != g {
		t.Errorf("first.Body: expected '%v', got '%v'", e, g)
	}

	if e, g := 2, len(first.Tags); e != g {
		t.Fatalf("len(first.Tags): expected '%v', got '%v'", e, g)
	}

	if e, g := "markdown", first.Tags[1].Name; e != g {
		t.Errorf("first.Tags[1].Name: expected '%v', got '%v'", e, g)
	}

	if !first.Private {
		t.Errorf("first.Private: expected true")
	}
}

func TestPublishErrors(t *testing.T) {
	type testCase struct {
		StatusCode  int
		ExpectedErr error
	}

	testCases := []testCase{
		{StatusCode: http.StatusUnauthorized, ExpectedErr: port.ErrUnauthorized},
		{StatusCode: http.StatusForbidden, ExpectedErr: port.ErrUnauthorized},
		{StatusCode: http.StatusUnprocessableEntity, ExpectedErr: port.ErrRejected},
		{StatusCode: http.StatusBadRequest, ExpectedErr: port.ErrRejected},
		{StatusCode: http.StatusInternalServerError, ExpectedErr: port.ErrUnavailable},
	}

	for _, tc := range testCases {
		t.Run(http.StatusText(tc.StatusCode), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.StatusCode)
				w.Write([]byte(`{"message":"error","type":"error"}`))
			}))
			defer server.Close()

			collaborator, err := FromURL(mustParseURL(t, collaboratorURL(server, "secret")))
			if err != nil {
				t.Fatalf("%+v", errors.WithStack(err))
			}

			variant := &model.Variant{
				Platform: "qiita",
				Metadata: model.VariantMetadata{Title: "First", Tags: []string{"go"}},
			}

			if _, err := collaborator.Publish(context.Background(), variant); !errors.Is(err, tc.ExpectedErr) {
				t.Errorf("err: expected '%v', got '%v'", tc.ExpectedErr, err)
			}
		})
	}
}

func TestPublishCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	collaborator, err := FromURL(mustParseURL(t, collaboratorURL(server, "secret")))
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	variant := &model.Variant{Platform: "qiita", Metadata: model.VariantMetadata{Title: "First"}}

	if _, err := collaborator.Publish(ctx, variant); !errors.Is(err, port.ErrCanceled) {
		t.Errorf("err: expected '%v', got '%v'", port.ErrCanceled, err)
	}
}

func collaboratorURL(server *httptest.Server, token string) string {
	u, _ := url.Parse(server.URL)
	return "qiita://" + u.Host + "?scheme=http&token=" + token
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}
	return u
}
