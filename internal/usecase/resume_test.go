package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/handlegpt/cv/internal/core/domain"
)

func newTestResumeService(t *testing.T) (*ResumeService, *stubResumeRepository, *recordingPublisher) {
	t.Helper()

	resumes := newStubResumeRepository()
	publisher := &recordingPublisher{}
	service, err := NewResumeService(resumes, publisher, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewResumeService returned error: %v", err)
	}

	return service, resumes, publisher
}

func TestResumeService_CreateDefaults(t *testing.T) {
	service, _, publisher := newTestResumeService(t)

	resume, err := service.Create(context.Background(), "user-1", CreateResumeInput{Title: "Backend Engineer"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if resume.Status != domain.ResumeStatusDraft {
		t.Fatalf("expected draft status, got %s", resume.Status)
	}
	if resume.Language != "en" || resume.Template != "modern" {
		t.Fatalf("expected defaults, got language=%s template=%s", resume.Language, resume.Template)
	}
	if resume.Version != 1 {
		t.Fatalf("expected version 1, got %d", resume.Version)
	}
	if string(resume.Sections) != "{}" || string(resume.Settings) != "{}" {
		t.Fatalf("expected empty json documents, got %s / %s", resume.Sections, resume.Settings)
	}

	if len(publisher.resumes) != 1 || publisher.resumes[0].Action != "created" {
		t.Fatalf("expected a created event, got %+v", publisher.resumes)
	}
}

func TestResumeService_CreateValidation(t *testing.T) {
	service, _, _ := newTestResumeService(t)

	if _, err := service.Create(context.Background(), "user-1", CreateResumeInput{Title: "  "}); !errors.Is(err, ErrInvalidResume) {
		t.Fatalf("expected ErrInvalidResume for blank title, got %v", err)
	}
	if _, err := service.Create(context.Background(), "user-1", CreateResumeInput{
		Title:    "Title",
		Sections: json.RawMessage(`{not json`),
	}); !errors.Is(err, ErrInvalidResume) {
		t.Fatalf("expected ErrInvalidResume for invalid sections, got %v", err)
	}
}

func TestResumeService_UpdateBumpsVersion(t *testing.T) {
	service, _, publisher := newTestResumeService(t)

	resume, err := service.Create(context.Background(), "user-1", CreateResumeInput{Title: "Backend Engineer"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	title := "Platform Engineer"
	status := domain.ResumeStatusPublished
	updated, err := service.Update(context.Background(), "user-1", resume.ID, UpdateResumeInput{
		Title:  &title,
		Status: &status,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if updated.Version != 2 {
		t.Fatalf("expected version 2, got %d", updated.Version)
	}
	if updated.Title != title || updated.Status != status {
		t.Fatalf("expected changes applied, got %+v", updated)
	}

	last := publisher.resumes[len(publisher.resumes)-1]
	if last.Action != "updated" || last.Version != 2 {
		t.Fatalf("expected updated event with version 2, got %+v", last)
	}
}

func TestResumeService_UpdateRejectsUnknownStatus(t *testing.T) {
	service, _, _ := newTestResumeService(t)

	resume, err := service.Create(context.Background(), "user-1", CreateResumeInput{Title: "Backend Engineer"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	bogus := domain.ResumeStatus("archived")
	if _, err := service.Update(context.Background(), "user-1", resume.ID, UpdateResumeInput{Status: &bogus}); !errors.Is(err, ErrInvalidResume) {
		t.Fatalf("expected ErrInvalidResume, got %v", err)
	}
}

func TestResumeService_OwnerScoping(t *testing.T) {
	service, _, _ := newTestResumeService(t)

	resume, err := service.Create(context.Background(), "user-1", CreateResumeInput{Title: "Backend Engineer"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := service.Get(context.Background(), "user-2", resume.ID); !errors.Is(err, ErrResumeNotFound) {
		t.Fatalf("expected ErrResumeNotFound for foreign reader, got %v", err)
	}

	title := "Hijacked"
	if _, err := service.Update(context.Background(), "user-2", resume.ID, UpdateResumeInput{Title: &title}); !errors.Is(err, ErrResumeNotFound) {
		t.Fatalf("expected ErrResumeNotFound for foreign writer, got %v", err)
	}

	if err := service.Delete(context.Background(), "user-2", resume.ID); !errors.Is(err, ErrResumeNotFound) {
		t.Fatalf("expected ErrResumeNotFound for foreign delete, got %v", err)
	}

	// The owner still sees the resume untouched.
	got, err := service.Get(context.Background(), "user-1", resume.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Title != "Backend Engineer" {
		t.Fatalf("expected title unchanged, got %s", got.Title)
	}
}

func TestResumeService_DeletePublishesEvent(t *testing.T) {
	service, _, publisher := newTestResumeService(t)

	resume, err := service.Create(context.Background(), "user-1", CreateResumeInput{Title: "Backend Engineer"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := service.Delete(context.Background(), "user-1", resume.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, err := service.Get(context.Background(), "user-1", resume.ID); !errors.Is(err, ErrResumeNotFound) {
		t.Fatalf("expected resume gone, got %v", err)
	}

	last := publisher.resumes[len(publisher.resumes)-1]
	if last.Action != "deleted" || last.ResumeID != resume.ID {
		t.Fatalf("expected deleted event, got %+v", last)
	}
}
