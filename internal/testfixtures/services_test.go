package testfixtures

import (
	"context"
	"testing"

	"github.com/example/workspace-booking/internal/application"
)

type capturingAreaRepo struct {
	created application.Area
}

func (c *capturingAreaRepo) CreateArea(ctx context.Context, area application.Area) (application.Area, error) {
	c.created = area
	return area, nil
}

func (c *capturingAreaRepo) GetArea(ctx context.Context, id string) (application.Area, error) {
	return application.Area{}, application.ErrNotFound
}

func (c *capturingAreaRepo) UpdateArea(ctx context.Context, area application.Area) (application.Area, error) {
	return area, nil
}

func (c *capturingAreaRepo) DeleteArea(ctx context.Context, id string) error {
	return nil
}

func (c *capturingAreaRepo) ListAreas(ctx context.Context) ([]application.Area, error) {
	return nil, nil
}

func (c *capturingAreaRepo) AreaHasReservations(ctx context.Context, id string) (bool, error) {
	return false, nil
}

func TestServiceFactoryNewAreaService(t *testing.T) {
	factory := NewServiceFactory()
	repo := &capturingAreaRepo{}

	svc := factory.NewAreaService(AreaServiceDeps{Areas: repo})
	principal := application.Principal{UserID: "admin", IsAdmin: true}
	input := application.AreaInput{Name: "Sala Ipê", Category: "MEETING_ROOM", Capacity: 8, MinMinutes: 30, MaxMinutes: 240}

	area, err := svc.CreateArea(context.Background(), application.CreateAreaParams{Principal: principal, Input: input})
	if err != nil {
		t.Fatalf("CreateArea returned error: %v", err)
	}

	if area.ID != "id-1" {
		t.Fatalf("expected generated ID id-1, got %q", area.ID)
	}
	if repo.created.ID != area.ID {
		t.Fatalf("repository received unexpected ID: %q", repo.created.ID)
	}
	if !area.CreatedAt.Equal(factory.Clock.Current()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Current(), area.CreatedAt)
	}
}
