package catalog

import "testing"

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	if len(c.Services()) != 5 {
		t.Fatalf("expected 5 services, got %d", len(c.Services()))
	}
	svc, ok := c.Service("4")
	if !ok || svc.Name != "Kleuren + Knip" || svc.DurationMinutes != 120 || *svc.Price != 65 {
		t.Fatalf("unexpected service %+v", svc)
	}
	if _, ok := c.Service("99"); ok {
		t.Fatal("unknown service should not resolve")
	}
	if len(c.TimeSlots()) != 14 {
		t.Fatalf("expected 14 slots, got %d", len(c.TimeSlots()))
	}
	slot, ok := c.Slot("10:00")
	if !ok || slot.Available {
		t.Fatalf("expected unavailable 10:00 slot, got %+v (%v)", slot, ok)
	}
	if _, ok := c.Slot("12:00"); ok {
		t.Fatal("12:00 is not a slot")
	}
}

func TestServiceSnapshotIsIndependent(t *testing.T) {
	c := Default()
	svc, _ := c.Service("1")
	*svc.Price = 999

	again, _ := c.Service("1")
	if *again.Price != 35 {
		t.Fatalf("catalog price mutated through snapshot: %v", *again.Price)
	}

	slots := c.TimeSlots()
	slots[0].Available = false
	if !c.TimeSlots()[0].Available {
		t.Fatal("catalog slots mutated through copy")
	}
}

func TestDemoAppointments(t *testing.T) {
	appts := Default().DemoAppointments("provider1")
	if len(appts) != 4 {
		t.Fatalf("expected 4 demo appointments, got %d", len(appts))
	}
	for _, a := range appts {
		if a.ProviderID != "provider1" || a.Service.ID == "" || a.CreatedAt.IsZero() {
			t.Fatalf("incomplete demo appointment %+v", a)
		}
	}
}
