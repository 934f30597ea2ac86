package doctor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	doctors map[uuid.UUID]*Doctor
}

func newMockRepo() *mockRepo {
	return &mockRepo{doctors: make(map[uuid.UUID]*Doctor)}
}

func (m *mockRepo) Create(_ context.Context, d *Doctor) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = time.Now()
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *mockRepo) Update(_ context.Context, d *Doctor) error {
	if _, ok := m.doctors[d.ID]; !ok {
		return ErrNotFound
	}
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.doctors[id]; !ok {
		return ErrNotFound
	}
	delete(m.doctors, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, params map[string]string, limit, offset int) ([]*Doctor, int, error) {
	var result []*Doctor
	for _, d := range m.doctors {
		if s, ok := params["speciality"]; ok && d.Speciality != s {
			continue
		}
		result = append(result, d)
	}
	return result, len(result), nil
}

func (m *mockRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	d, ok := m.doctors[id]
	return ok && d.Active, nil
}

// -- Tests --

func TestCreateDoctor(t *testing.T) {
	svc := NewService(newMockRepo())

	d := &Doctor{Name: "Dr. Mehta", Speciality: "Dermatology", Fee: 500}
	if err := svc.Create(context.Background(), d); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.ID == uuid.Nil {
		t.Error("expected an ID to be assigned")
	}
	if !d.Active {
		t.Error("new doctors should be active")
	}
}

func TestCreateDoctor_Validation(t *testing.T) {
	svc := NewService(newMockRepo())

	err := svc.Create(context.Background(), &Doctor{Speciality: "ENT", Fee: -1})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Fields) != 2 {
		t.Errorf("expected 2 field errors, got %v", ve.Fields)
	}
}

func TestGetDoctor_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Get(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListDoctors_FilterBySpeciality(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	for _, sp := range []string{"Dermatology", "Dermatology", "ENT"} {
		if err := svc.Create(context.Background(), &Doctor{Name: "Dr. X", Speciality: sp}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	items, total, err := svc.List(context.Background(), map[string]string{"speciality": "Dermatology"}, 20, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("expected 2 dermatologists, got %d", total)
	}
}

func TestDoctorExists(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	d := &Doctor{Name: "Dr. Rao", Speciality: "Cardiology"}
	if err := svc.Create(context.Background(), d); err != nil {
		t.Fatalf("Create: %v", err)
	}

	ok, err := svc.Exists(context.Background(), d.ID)
	if err != nil || !ok {
		t.Errorf("expected doctor to exist, ok=%v err=%v", ok, err)
	}

	ok, err = svc.Exists(context.Background(), uuid.New())
	if err != nil || ok {
		t.Errorf("expected unknown doctor to not exist, ok=%v err=%v", ok, err)
	}
}
