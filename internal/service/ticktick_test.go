package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ananyateklu/second-brain-sub000/internal/model"
)

func newTickTickTestServer(t *testing.T, handler http.HandlerFunc) (*TickTickClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewTickTickClient(srv.URL)
	return client, srv
}

func TestFetchProjectTasks(t *testing.T) {
	client, _ := newTickTickTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/open/v1/project/p1/data" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("auth header = %q", got)
		}
		w.Write([]byte(`{
			"project": {"id": "p1", "name": "Inbox"},
			"tasks": [
				{"id": "r1", "title": "Buy milk", "priority": 5, "status": 0},
				{"id": "r2", "title": "Ship release", "status": 2, "tags": ["work"]}
			]
		}`))
	})

	tasks, err := client.FetchProjectTasks(context.Background(), "tok", "p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 {
		t.Fatalf("tasks = %d, want 2", len(tasks))
	}
	if tasks[0].Title != "Buy milk" || tasks[0].Priority != 5 {
		t.Errorf("first task = %+v", tasks[0])
	}
	if tasks[1].Status != 2 || len(tasks[1].Tags) != 1 {
		t.Errorf("second task = %+v", tasks[1])
	}
}

func TestFetchProjectTasksProviderError(t *testing.T) {
	client, _ := newTickTickTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"errorCode": "forbidden", "errorMessage": "project not accessible"}`))
	})

	_, err := client.FetchProjectTasks(context.Background(), "tok", "p1")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "project not accessible") {
		t.Errorf("err = %v, want the provider message surfaced", err)
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("err = %v, want the status code included", err)
	}
}

func TestFetchProjectTasksMalformedBody(t *testing.T) {
	client, _ := newTickTickTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	if _, err := client.FetchProjectTasks(context.Background(), "tok", "p1"); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestCreateTaskRoundTrip(t *testing.T) {
	client, _ := newTickTickTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/open/v1/task" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("content type = %q", got)
		}
		w.Write([]byte(`{"id": "assigned-by-remote", "projectId": "p1", "title": "pushed"}`))
	})

	local := model.Task{ID: "l1", Title: "pushed", Priority: model.PriorityHigh}
	created, err := client.CreateTask(context.Background(), "tok",
		remoteTaskFromLocal(&local, "p1", "", true))
	if err != nil {
		t.Fatal(err)
	}
	if created.ID != "assigned-by-remote" {
		t.Errorf("created id = %q", created.ID)
	}
}

func TestDeleteTaskPath(t *testing.T) {
	var gotPath, gotMethod string
	client, _ := newTickTickTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		w.WriteHeader(http.StatusOK)
	})

	if err := client.DeleteTask(context.Background(), "tok", "p1", "r1"); err != nil {
		t.Fatal(err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/open/v1/project/p1/task/r1" {
		t.Errorf("%s %s", gotMethod, gotPath)
	}
}
